package leonardo

import (
	"errors"
	"io"
	"log"
	"sync"

	"fable/pkg/schema"
	"fable/pkg/utils"
)

type Queue struct {
	client *Client
	stop   chan struct{}
	items  chan *Item
	mu     sync.Mutex
}

type Item struct {
	Request  *schema.ImageRequest
	Response chan []io.Reader
	Error    chan error
}

func New(token string) *Queue {
	return &Queue{
		client: NewClient(token),
		items:  make(chan *Item, 100),
		stop:   make(chan struct{}),
	}
}

func (q *Queue) Start() {
	go q.processLoop()
}

func (q *Queue) Stop() {
	close(q.stop)
}

func (q *Queue) Add(req *schema.ImageRequest) (chan []io.Reader, chan error, error) {
	respCh := make(chan []io.Reader, 1)
	errCh := make(chan error, 1)

	select {
	case q.items <- &Item{
		Request:  req,
		Response: respCh,
		Error:    errCh,
	}:
		return respCh, errCh, nil
	default:
		return nil, nil, errors.New("queue is full")
	}
}

func (q *Queue) processLoop() {
	log.Println("Leonardo Queue started")
	for {
		select {
		case <-q.stop:
			log.Println("Leonardo Queue stopped")
			return
		case item := <-q.items:
			q.processItem(item)
		}
	}
}

func (q *Queue) processItem(item *Item) {
	req := item.Request

	log.Printf("Processing generation: %s...", utils.LimitStr(req.Prompt, 50))

	images, err := q.client.Inference(req)
	if err != nil {
		log.Printf("Generation failed: %v", err)
		item.Error <- err
		close(item.Response)
		return
	}

	item.Response <- images
	close(item.Error)
}

package queue

import (
	"io"

	"fable/pkg/schema"
)

type Queue interface {
	Start()
	Stop()
	Add(req *schema.ImageRequest) (chan []io.Reader, chan error, error)
}

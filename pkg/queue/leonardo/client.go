package leonardo

import (
	"bytes"
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"fable/pkg/schema"
)

const baseURL = "https://cloud.leonardo.ai/api/rest/v1"

// Client talks to the Leonardo generation API: create a generation job,
// poll it until complete, download the resulting images.
type Client struct {
	token   string
	modelID string
	http    *http.Client
}

func NewClient(token string) *Client {
	return &Client{
		token:   token,
		modelID: "b24e16ff-06e3-43eb-8d33-4416c2d75876",
		http:    &http.Client{Timeout: 2 * time.Minute},
	}
}

type generationResponse struct {
	Job struct {
		GenerationID string `json:"generationId"`
	} `json:"sdGenerationJob"`
}

type generationStatus struct {
	Generation struct {
		Status string `json:"status"`
		Images []struct {
			URL string `json:"url"`
		} `json:"generated_images"`
	} `json:"generations_by_pk"`
}

// Inference runs one generation to completion and returns image readers.
func (c *Client) Inference(req *schema.ImageRequest) ([]io.Reader, error) {
	id, err := c.create(req)
	if err != nil {
		return nil, err
	}

	urls, err := c.poll(id)
	if err != nil {
		return nil, err
	}

	images := make([]io.Reader, 0, len(urls))
	for _, u := range urls {
		data, err := c.download(u)
		if err != nil {
			return nil, err
		}
		images = append(images, bytes.NewReader(data))
	}
	return images, nil
}

func (c *Client) create(req *schema.ImageRequest) (string, error) {
	body, err := json.Marshal(map[string]any{
		"prompt":          req.Prompt,
		"negative_prompt": req.Negative,
		"modelId":         c.modelID,
		"width":           cmp.Or(req.Width, 832),
		"height":          cmp.Or(req.Height, 1216),
		"num_images":      cmp.Or(req.Count, 1),
	})
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequest(http.MethodPost, baseURL+"/generations", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.token)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("leonardo create: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("leonardo create: status %d: %s", resp.StatusCode, raw)
	}

	var gen generationResponse
	if err := json.Unmarshal(raw, &gen); err != nil {
		return "", fmt.Errorf("leonardo create: parse: %w (%s)", err, raw)
	}
	if gen.Job.GenerationID == "" {
		return "", errors.New("leonardo create: empty generation id")
	}
	return gen.Job.GenerationID, nil
}

func (c *Client) poll(id string) ([]string, error) {
	const (
		interval = 3 * time.Second
		maxPolls = 40
	)
	for i := 0; i < maxPolls; i++ {
		time.Sleep(interval)

		httpReq, err := http.NewRequest(http.MethodGet, baseURL+"/generations/"+id, nil)
		if err != nil {
			return nil, err
		}
		httpReq.Header.Set("Authorization", "Bearer "+c.token)

		resp, err := c.http.Do(httpReq)
		if err != nil {
			return nil, fmt.Errorf("leonardo poll: %w", err)
		}
		raw, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("leonardo poll: status %d: %s", resp.StatusCode, raw)
		}

		var st generationStatus
		if err := json.Unmarshal(raw, &st); err != nil {
			return nil, fmt.Errorf("leonardo poll: parse: %w", err)
		}
		switch st.Generation.Status {
		case "COMPLETE":
			urls := make([]string, 0, len(st.Generation.Images))
			for _, img := range st.Generation.Images {
				urls = append(urls, img.URL)
			}
			if len(urls) == 0 {
				return nil, errors.New("leonardo poll: complete with no images")
			}
			return urls, nil
		case "FAILED":
			return nil, errors.New("leonardo poll: generation failed")
		}
	}
	return nil, errors.New("leonardo poll: timed out")
}

func (c *Client) download(url string) ([]byte, error) {
	resp, err := c.http.Get(url)
	if err != nil {
		return nil, fmt.Errorf("leonardo download: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("leonardo download: status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

package batch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strings"
	"time"

	"sign-translate-client/internal/models"
)

// APIClient talks to the external upload and processing endpoints over
// HTTP. It implements both Uploader and Processor.
type APIClient struct {
	base string
	hc   *http.Client
}

// NewAPIClient creates a client for the given API base URL.
func NewAPIClient(base string) *APIClient {
	return &APIClient{
		base: strings.TrimRight(base, "/"),
		hc:   &http.Client{Timeout: 5 * time.Minute},
	}
}

// Upload streams the file as multipart form data to the upload endpoint.
func (c *APIClient) Upload(ctx context.Context, file FileInfo, userID string) (models.UploadResponse, error) {
	var out models.UploadResponse

	f, err := os.Open(file.Path)
	if err != nil {
		return out, fmt.Errorf("open %s: %w", file.Path, err)
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", file.Name)
	if err != nil {
		return out, err
	}
	if _, err := io.Copy(part, f); err != nil {
		return out, fmt.Errorf("read %s: %w", file.Path, err)
	}
	if userID != "" {
		if err := mw.WriteField("userId", userID); err != nil {
			return out, err
		}
	}
	if err := mw.Close(); err != nil {
		return out, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/videos/upload", &body)
	if err != nil {
		return out, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	if err := c.do(req, &out); err != nil {
		return out, fmt.Errorf("upload: %w", err)
	}
	return out, nil
}

// Process triggers the translation job for an uploaded video and waits for
// the endpoint's reply.
func (c *APIClient) Process(ctx context.Context, videoID, language string) (models.ProcessResponse, error) {
	var out models.ProcessResponse

	payload, err := json.Marshal(models.ProcessRequest{VideoID: videoID, Language: language})
	if err != nil {
		return out, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/videos/process", bytes.NewReader(payload))
	if err != nil {
		return out, err
	}
	req.Header.Set("Content-Type", "application/json")

	if err := c.do(req, &out); err != nil {
		return out, fmt.Errorf("process: %w", err)
	}
	return out, nil
}

func (c *APIClient) do(req *http.Request, out any) error {
	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s: %s", resp.Status, strings.TrimSpace(string(snippet)))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

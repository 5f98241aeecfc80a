package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"go.uber.org/zap"
)

const (
	OpGenerate         = "generate"
	OpGenerateTemplate = "generate_template"
	OpUpload           = "upload"
	OpDelete           = "delete"
	OpSummarize        = "summarize"
)

// HTTPClient talks to the drafting and ingestion backend over JSON/HTTP.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	metrics    *Metrics
}

var _ Gateway = (*HTTPClient)(nil)

func NewHTTPClient(baseURL string, opts ...Option) *HTTPClient {
	settings := applyOptions(opts)
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: settings.httpClient,
		metrics:    settings.metrics,
	}
}

func (c *HTTPClient) Generate(ctx context.Context, req DraftRequest) (*DraftResponse, error) {
	var resp DraftResponse
	if err := c.postJSON(ctx, OpGenerate, "/write", draftPayload(req), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) GenerateWithTemplate(ctx context.Context, req DraftRequest) (*DraftResponse, error) {
	var resp DraftResponse
	if err := c.postJSON(ctx, OpGenerateTemplate, "/write_with_template", draftPayload(req), &resp); err != nil {
		return nil, err
	}
	resp.Sources = nil
	return &resp, nil
}

func (c *HTTPClient) Upload(ctx context.Context, files []File) (*UploadResponse, error) {
	start := time.Now()
	batch := uploadBatch{Files: files}
	if err := Validate(batch); err != nil {
		c.metrics.observe(OpUpload, start, err)
		return nil, err
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for _, f := range files {
		part, err := writer.CreateFormFile("files", f.Name)
		if err != nil {
			return nil, fmt.Errorf("error creating form file: %w", err)
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, fmt.Errorf("error writing form file: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("error closing multipart body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", &body)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	var resp UploadResponse
	err = c.do(httpReq, OpUpload, &resp)
	c.metrics.observe(OpUpload, start, err)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) Delete(ctx context.Context, fileNames []string) (*DeleteResponse, error) {
	var resp DeleteResponse
	if err := c.postJSON(ctx, OpDelete, "/delete", DeleteRequest{FileNames: fileNames}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResponse, error) {
	var resp SummarizeResponse
	if err := c.postJSON(ctx, OpSummarize, "/summarize", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) postJSON(ctx context.Context, op, path string, payload, out any) error {
	start := time.Now()
	if err := Validate(payload); err != nil {
		c.metrics.observe(op, start, err)
		return err
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("error marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	err = c.do(req, op, out)
	c.metrics.observe(op, start, err)
	return err
}

// do performs the round trip and decodes a 2xx body into out. Every other
// outcome becomes a *Error.
func (c *HTTPClient) do(req *http.Request, op string, out any) error {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Error("Backend request failed", zap.String("op", op), zap.Error(err))
		return newNetworkError(op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return newNetworkError(op, fmt.Errorf("error reading response: %w", err))
	}

	logger.Debug("Backend responded",
		zap.String("op", op),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		gwErr := newStatusError(op, resp.StatusCode, body)
		logger.Error("Backend returned failure status",
			zap.String("op", op), zap.Int("status", resp.StatusCode), zap.String("message", gwErr.Message))
		return gwErr
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &Error{
			Op:         op,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("invalid response body: %v", err),
			Err:        err,
		}
	}
	return nil
}

// draftPayload guarantees history encodes as [] rather than null.
func draftPayload(req DraftRequest) DraftRequest {
	if req.History == nil {
		req.History = []Message{}
	}
	return req
}

type uploadBatch struct {
	Files []File `validate:"min=1,dive"`
}

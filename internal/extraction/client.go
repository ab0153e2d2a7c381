package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"

	"github.com/zombor/receipt-uploader/internal/intake"
	"github.com/zombor/receipt-uploader/internal/receipt"
)

// DefaultEndpoint is used when no upload endpoint is configured
const DefaultEndpoint = "http://app/api/v1/test"

// Client posts receipts to the remote extraction API
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// NewClient creates a Client. A zero timeout leaves the transport default in place.
func NewClient(endpoint string, timeout time.Duration) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Endpoint returns the configured upload URL
func (c *Client) Endpoint() string {
	return c.endpoint
}

// uploadResponse is the extraction API response body
type uploadResponse struct {
	Success bool    `json:"success"`
	Data    *Result `json:"data,omitempty"`
	Message string  `json:"message,omitempty"`
}

// Extract uploads the file as multipart/form-data with the document and docType fields
func (c *Client) Extract(ctx context.Context, file intake.PendingFile, bank receipt.Bank) (*Result, error) {
	if err := checkInput(file, bank); err != nil {
		return nil, err
	}

	body, contentType, err := encodeForm(file, bank)
	if err != nil {
		return nil, fmt.Errorf("encoding upload form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Error("Upload request failed", "endpoint", c.endpoint, "error", err)
		return nil, &TransportError{Message: MessageNetworkError, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		slog.Error("Upload rejected",
			"endpoint", c.endpoint,
			"status", resp.StatusCode,
			"body", string(respBody),
		)
		return nil, &TransportError{
			StatusCode: resp.StatusCode,
			Message:    ClassifyStatus(resp.StatusCode),
			Err:        fmt.Errorf("extraction API returned status %d", resp.StatusCode),
		}
	}

	var out uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		slog.Error("Error decoding upload response", "endpoint", c.endpoint, "error", err)
		return nil, &TransportError{
			StatusCode: resp.StatusCode,
			Message:    MessageNetworkError,
			Err:        fmt.Errorf("decoding response: %w", err),
		}
	}

	if !out.Success {
		msg := out.Message
		if msg == "" {
			msg = MessageProcessFailed
		}
		return nil, &ApplicationError{Message: msg}
	}

	if out.Data == nil {
		return &Result{Info: receipt.ExtractedInfo{}}, nil
	}
	if out.Data.Info == nil {
		out.Data.Info = receipt.ExtractedInfo{}
	}
	return out.Data, nil
}

// Close is a no-op for the HTTP client
func (c *Client) Close() error {
	return nil
}

func encodeForm(file intake.PendingFile, bank receipt.Bank) (io.Reader, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="document"; filename=%q`, file.Name))
	h.Set("Content-Type", file.ContentType)
	part, err := writer.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("creating document part: %w", err)
	}
	if _, err := part.Write(file.Data); err != nil {
		return nil, "", fmt.Errorf("writing document part: %w", err)
	}

	if err := writer.WriteField("docType", bank.DocType()); err != nil {
		return nil, "", fmt.Errorf("writing docType: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("closing writer: %w", err)
	}
	return &buf, writer.FormDataContentType(), nil
}

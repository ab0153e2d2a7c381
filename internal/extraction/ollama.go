package extraction

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/zombor/receipt-uploader/internal/intake"
	"github.com/zombor/receipt-uploader/internal/receipt"
)

// Ollama extracts receipt fields with a local Ollama vision model
type Ollama struct {
	baseURL string
	model   string
	client  *http.Client
}

// NewOllama creates a new Ollama extractor. llava and qwen2-vl read receipts well.
func NewOllama(baseURL string, modelName string) *Ollama {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if modelName == "" {
		modelName = "llava"
	}

	return &Ollama{
		baseURL: baseURL,
		model:   modelName,
		client: &http.Client{
			Timeout: 120 * time.Second, // vision models are slow
		},
	}
}

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Format   string          `json:"format,omitempty"`
}

type ollamaMessage struct {
	Role    string   `json:"role"`
	Content string   `json:"content"`
	Images  []string `json:"images,omitempty"`
}

type ollamaChatResponse struct {
	Message ollamaMessage `json:"message"`
	Done    bool          `json:"done"`
}

// Extract sends the receipt image to Ollama's chat API and parses the reply
func (o *Ollama) Extract(ctx context.Context, file intake.PendingFile, bank receipt.Bank) (*Result, error) {
	if err := checkInput(file, bank); err != nil {
		return nil, err
	}

	reqBody := ollamaChatRequest{
		Model:  o.model,
		Stream: false,
		Format: "json",
		Messages: []ollamaMessage{
			{
				Role:    "system",
				Content: "You are an expert at reading bank transfer receipts and spotting tampered documents.",
			},
			{
				Role:    "user",
				Content: extractPrompt(bank),
				Images:  []string{base64.StdEncoding.EncodeToString(file.Data)},
			},
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	url := fmt.Sprintf("%s/api/chat", o.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		slog.Error("Ollama request failed", "url", url, "error", err)
		return nil, &TransportError{Message: MessageNetworkError, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		slog.Error("Ollama API error", "status", resp.StatusCode, "body", string(body))
		return nil, &TransportError{
			StatusCode: resp.StatusCode,
			Message:    ClassifyStatus(resp.StatusCode),
			Err:        fmt.Errorf("ollama API error (status %d)", resp.StatusCode),
		}
	}

	var chatResp ollamaChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return nil, &TransportError{
			StatusCode: resp.StatusCode,
			Message:    MessageNetworkError,
			Err:        fmt.Errorf("decoding response: %w", err),
		}
	}

	result, err := parseModelJSON(chatResp.Message.Content)
	if err != nil {
		slog.Error("Error parsing ollama reply", "filename", file.Name, "error", err)
		return nil, &ApplicationError{Message: MessageProcessFailed}
	}
	return result, nil
}

// Close is a no-op for the HTTP client
func (o *Ollama) Close() error {
	return nil
}

package extraction

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/zombor/receipt-uploader/internal/intake"
	"github.com/zombor/receipt-uploader/internal/receipt"
)

// Gemini extracts receipt fields with a Google Gemini vision model
type Gemini struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGemini creates a new Gemini extractor
func NewGemini(apiKey string, modelName string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if modelName == "" {
		modelName = "gemini-2.5-pro"
	}

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	return &Gemini{
		client: client,
		model:  client.GenerativeModel(modelName),
	}, nil
}

// Extract sends the receipt image and prompt to Gemini and parses the reply
func (g *Gemini) Extract(ctx context.Context, file intake.PendingFile, bank receipt.Bank) (*Result, error) {
	if err := checkInput(file, bank); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	// genai.ImageData expects the format suffix ("png"), not the full MIME type
	format := strings.TrimPrefix(file.ContentType, "image/")
	if format == "jpg" {
		format = "jpeg"
	}

	resp, err := g.model.GenerateContent(ctx,
		genai.ImageData(format, file.Data),
		genai.Text(extractPrompt(bank)),
	)
	if err != nil {
		slog.Error("Gemini extraction failed", "filename", file.Name, "error", err)
		return nil, &TransportError{Message: MessageServerError, Err: err}
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, &ApplicationError{Message: MessageProcessFailed}
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}

	result, err := parseModelJSON(text.String())
	if err != nil {
		slog.Error("Error parsing gemini reply", "filename", file.Name, "error", err)
		return nil, &ApplicationError{Message: MessageProcessFailed}
	}
	return result, nil
}

// Close closes the Gemini client
func (g *Gemini) Close() error {
	return g.client.Close()
}

package extraction

import (
	"context"
	"net/http"

	"github.com/zombor/receipt-uploader/internal/intake"
	"github.com/zombor/receipt-uploader/internal/receipt"
)

// Result holds the raw fields extracted from a receipt and the server's risk status
type Result struct {
	Info       receipt.ExtractedInfo `json:"extractedInfo"`
	RiskStatus string                `json:"riskStatus,omitempty"`
}

// Extractor sends a receipt to an extraction backend
type Extractor interface {
	// Extract returns the fields found on the receipt. Exactly one backend call is made.
	Extract(ctx context.Context, file intake.PendingFile, bank receipt.Bank) (*Result, error)
	// Close releases backend resources
	Close() error
}

// User-facing messages for transport failures
const (
	MessageServerError     = "Server error. Please try again later."
	MessageBadRequest      = "Invalid request. Please check the file and bank selection."
	MessageUnsupportedType = "Unsupported file type. Please upload a JPG or PNG image."
	MessageNetworkError    = "Network error. Please check your connection and try again."
	MessageProcessFailed   = "Failed to process receipt."
)

// TransportError is a network failure or non-2xx response
type TransportError struct {
	StatusCode int // 0 when no response was received
	Message    string
	Err        error
}

func (e *TransportError) Error() string {
	return e.Message
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ApplicationError is a 2xx response whose body reports failure
type ApplicationError struct {
	Message string
}

func (e *ApplicationError) Error() string {
	return e.Message
}

// ClassifyStatus returns the user-facing message for an HTTP status code
func ClassifyStatus(code int) string {
	switch code {
	case http.StatusInternalServerError:
		return MessageServerError
	case http.StatusBadRequest:
		return MessageBadRequest
	case http.StatusUnsupportedMediaType:
		return MessageUnsupportedType
	}
	return MessageNetworkError
}

// checkInput rejects a missing file or bank before any backend call
func checkInput(file intake.PendingFile, bank receipt.Bank) error {
	if len(file.Data) == 0 || !bank.Valid() {
		return &receipt.ValidationError{Message: "Please select a file and bank before uploading."}
	}
	return nil
}

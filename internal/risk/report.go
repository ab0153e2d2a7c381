package risk

import (
	"context"
	"strings"
	"time"

	"github.com/zombor/receipt-uploader/internal/receipt"
)

// Type is the category of a risk report
type Type string

const (
	TypeFraud      Type = "fraud"
	TypeSuspicious Type = "suspicious"
	TypeOther      Type = "other"
)

// Types lists the report categories in display order
var Types = []Type{TypeFraud, TypeSuspicious, TypeOther}

// Label returns the display text for t
func (t Type) Label() string {
	switch t {
	case TypeFraud:
		return "Fraud"
	case TypeSuspicious:
		return "Suspicious Transaction"
	case TypeOther:
		return "Other"
	}
	return string(t)
}

// Valid reports whether t is one of the enumerated categories
func (t Type) Valid() bool {
	for _, v := range Types {
		if t == v {
			return true
		}
	}
	return false
}

// Report is a user's claim that a receipt is risky
type Report struct {
	ID        string    `json:"id"`
	ReceiptID string    `json:"receipt_id"`
	Type      Type      `json:"risk_type"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// Validate checks that the report names a receipt, a known category and has a comment
func (r Report) Validate() error {
	switch {
	case strings.TrimSpace(r.ReceiptID) == "":
		return &receipt.ValidationError{Field: "receipt_id", Message: "Receipt ID is required."}
	case !r.Type.Valid():
		return &receipt.ValidationError{Field: "risk_type", Message: "Please select a risk type."}
	case strings.TrimSpace(r.Comment) == "":
		return &receipt.ValidationError{Field: "comment", Message: "Please describe the risk."}
	}
	return nil
}

// Submitter delivers risk reports. A failed submission is never retried automatically.
type Submitter interface {
	Submit(ctx context.Context, report Report) error
}

package workflow

import (
	"errors"

	"github.com/zombor/receipt-uploader/internal/intake"
	"github.com/zombor/receipt-uploader/internal/receipt"
	"github.com/zombor/receipt-uploader/internal/risk"
)

// State is the position of the workflow in the upload/review cycle.
//
//	idle       --Upload-->        uploading
//	uploading  --success-->       reviewing
//	uploading  --failure-->       idle (file kept)
//	reviewing  --OpenReport-->    reporting
//	reporting  --submit/cancel--> reviewing
//	any        --Reset-->         idle (refused while a report is submitting)
type State string

const (
	StateIdle      State = "idle"
	StateUploading State = "uploading"
	StateReviewing State = "reviewing"
	StateReporting State = "reporting"
)

var (
	// ErrUploadInProgress is returned when an upload is triggered while one is pending
	ErrUploadInProgress = errors.New("an upload is already in progress")
	// ErrReviewOpen is returned for intake actions while a result is being reviewed
	ErrReviewOpen = errors.New("close the current receipt before uploading another")
	// ErrNoResult is returned for review actions before a successful upload
	ErrNoResult = errors.New("no receipt has been extracted")
	// ErrReportInProgress is returned when closing the panel during a report submission
	ErrReportInProgress = errors.New("a risk report is being submitted")
	// ErrSubmissionInProgress is returned when a report is submitted twice
	ErrSubmissionInProgress = risk.ErrSubmitting
	// ErrStaleResult is returned when an upload settles after the workflow was reset
	ErrStaleResult = errors.New("upload result discarded after reset")
)

// ExportFilename is the download name for CSV exports
const ExportFilename = "receipt_details.csv"

// NotificationKind selects the toast styling
type NotificationKind string

const (
	NotificationSuccess NotificationKind = "success"
	NotificationError   NotificationKind = "error"
)

// Notification is a transient toast message
type Notification struct {
	Kind    NotificationKind `json:"kind"`
	Title   string           `json:"title"`
	Message string           `json:"message"`
}

// FileInfo describes the selected file without its contents
type FileInfo struct {
	Name        string        `json:"name"`
	ContentType string        `json:"content_type"`
	Size        int64         `json:"size"`
	Source      intake.Source `json:"source"`
}

// Snapshot is a read-only copy of the workflow state for rendering
type Snapshot struct {
	State             State               `json:"state"`
	File              *FileInfo           `json:"file,omitempty"`
	Bank              receipt.Bank        `json:"bank,omitempty"`
	ValidationError   string              `json:"validation_error,omitempty"`
	CanUpload         bool                `json:"can_upload"`
	Fields            receipt.Fields      `json:"fields,omitempty"`
	Risk              *receipt.RiskStatus `json:"risk,omitempty"`
	Report            risk.ModalSnapshot  `json:"report"`
	ErrorDialog       string              `json:"error_dialog,omitempty"`
	Notification      *Notification       `json:"notification,omitempty"`
	AllowedExtensions []string            `json:"allowed_extensions"`
	MaxFileSize       int64               `json:"max_file_size"`
}

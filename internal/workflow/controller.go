package workflow

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/zombor/receipt-uploader/internal/extraction"
	"github.com/zombor/receipt-uploader/internal/intake"
	"github.com/zombor/receipt-uploader/internal/receipt"
	"github.com/zombor/receipt-uploader/internal/risk"
)

// Toast messages
const (
	MessageUploadSucceeded = "Receipt uploaded successfully!"
	MessageReportSucceeded = "Risk report submitted successfully."
	MessageReportFailed    = "Failed to submit risk report. Please try again."
	MessageCopied          = "Receipt details copied to clipboard."
	messageMissingInput    = "Please select a file and bank before uploading."
)

// Controller owns the state of one upload/review workflow.
// The mutex is never held across extractor or submitter calls.
type Controller struct {
	extractor extraction.Extractor
	submitter risk.Submitter

	mu           sync.Mutex
	state        State
	generation   uint64
	intake       *intake.Intake
	bank         receipt.Bank
	inputErr     error
	fields       receipt.Fields
	riskStatus   *receipt.RiskStatus
	modal        *risk.Modal
	dialog       string
	notification *Notification
}

// New creates a Controller in the idle state
func New(extractor extraction.Extractor, submitter risk.Submitter, validator *intake.Validator) *Controller {
	return &Controller{
		extractor: extractor,
		submitter: submitter,
		state:     StateIdle,
		intake:    intake.New(validator),
		modal:     risk.NewModal(),
	}
}

// SelectFile validates f and makes it the current selection.
// A rejected file leaves the previous selection in place.
func (c *Controller) SelectFile(f intake.PendingFile) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.intakeOpen(); err != nil {
		return err
	}

	c.inputErr = nil
	if err := c.intake.Accept(f); err != nil {
		slog.Warn("Rejected file", "filename", f.Name, "size", f.Size, "source", f.Source, "error", err)
		return err
	}
	slog.Info("File selected", "filename", f.Name, "size", f.Size, "source", f.Source)
	return nil
}

// RejectFile records an intake failure that happened before a file could be read,
// such as a malformed or oversized request. The previous selection is kept.
func (c *Controller) RejectFile(err error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if openErr := c.intakeOpen(); openErr != nil {
		return openErr
	}
	slog.Warn("Rejected file", "error", err)
	c.inputErr = nil
	c.intake.Fail(err)
	return err
}

// SelectBank sets the bank whose template the extraction API should use
func (c *Controller) SelectBank(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.intakeOpen(); err != nil {
		return err
	}

	bank, err := receipt.ParseBank(name)
	if err != nil {
		c.inputErr = err
		return err
	}
	c.bank = bank
	c.inputErr = nil
	return nil
}

// Upload sends the selected file to the extractor.
// A result that settles after Reset is discarded and ErrStaleResult returned.
func (c *Controller) Upload(ctx context.Context) error {
	c.mu.Lock()
	if err := c.intakeOpen(); err != nil {
		c.mu.Unlock()
		return err
	}
	if err := c.intake.Err(); err != nil {
		c.mu.Unlock()
		return err
	}
	if c.inputErr != nil {
		err := c.inputErr
		c.mu.Unlock()
		return err
	}
	file, ok := c.intake.File()
	if !ok || !c.bank.Valid() {
		err := &receipt.ValidationError{Message: messageMissingInput}
		c.inputErr = err
		c.mu.Unlock()
		return err
	}

	bank := c.bank
	gen := c.generation
	c.state = StateUploading
	c.dialog = ""
	c.mu.Unlock()

	slog.Info("Uploading receipt", "filename", file.Name, "bank", bank)
	result, err := c.extractor.Extract(ctx, file, bank)

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		slog.Warn("Discarding upload result after reset", "filename", file.Name, "error", err)
		return ErrStaleResult
	}

	if err != nil {
		c.state = StateIdle
		msg := userMessage(err)
		var verr *receipt.ValidationError
		if errors.As(err, &verr) {
			c.inputErr = verr
			return err
		}
		slog.Error("Upload failed", "filename", file.Name, "bank", bank, "error", err)
		c.dialog = msg
		c.notification = &Notification{Kind: NotificationError, Title: "Error", Message: msg}
		return err
	}

	rs := receipt.ClassifyRisk(result.RiskStatus)
	c.fields = receipt.Format(result.Info)
	c.riskStatus = &rs
	c.intake.Reset()
	c.state = StateReviewing
	c.notification = &Notification{Kind: NotificationSuccess, Title: "Success", Message: MessageUploadSucceeded}
	slog.Info("Receipt extracted", "transaction_no", c.fields.TransactionNo(), "risk", rs.Level)
	return nil
}

// Reset closes the review panel and returns the workflow to its empty state.
// It is refused while a risk report is being submitted.
func (c *Controller) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.modal.State() == risk.ModalSubmitting {
		return ErrReportInProgress
	}

	c.generation++
	c.state = StateIdle
	c.intake.Reset()
	c.bank = ""
	c.inputErr = nil
	c.fields = nil
	c.riskStatus = nil
	c.modal = risk.NewModal()
	c.dialog = ""
	return nil
}

// ExportCSV returns the review fields as CSV
func (c *Controller) ExportCSV() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.fields == nil {
		return "", ErrNoResult
	}
	return c.fields.CSV(), nil
}

// ClipboardText returns the review fields as clipboard text
func (c *Controller) ClipboardText() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.fields == nil {
		return "", ErrNoResult
	}
	return c.fields.ClipboardText(), nil
}

// CopyFinished settles a clipboard write. Failures are only logged; success
// shows a toast unless the review panel was closed in the meantime.
func (c *Controller) CopyFinished(err error) {
	if err != nil {
		slog.Error("Failed to copy receipt details", "error", err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fields != nil {
		c.notification = &Notification{Kind: NotificationSuccess, Title: "Copied", Message: MessageCopied}
	}
}

// OpenReport opens the risk report form for the current receipt
func (c *Controller) OpenReport() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.fields == nil {
		return ErrNoResult
	}
	if err := c.modal.Open(c.fields.TransactionNo()); err != nil {
		return err
	}
	c.state = StateReporting
	return nil
}

// UpdateReport replaces the report draft
func (c *Controller) UpdateReport(riskType risk.Type, comment string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.modal.Update(riskType, comment)
}

// SubmitReport sends the drafted report. On failure the form stays open for a manual retry.
func (c *Controller) SubmitReport(ctx context.Context) error {
	c.mu.Lock()
	report, err := c.modal.Begin()
	c.mu.Unlock()
	if err != nil {
		return err
	}

	err = c.submitter.Submit(ctx, report)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.modal.Finish(err)
	if err != nil {
		slog.Error("Error submitting risk report", "receipt_id", report.ReceiptID, "error", err)
		c.notification = &Notification{Kind: NotificationError, Title: "Error", Message: MessageReportFailed}
		return err
	}
	c.state = StateReviewing
	c.notification = &Notification{Kind: NotificationSuccess, Title: "Success", Message: MessageReportSucceeded}
	return nil
}

// CancelReport closes the report form unless it is submitting
func (c *Controller) CancelReport() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.modal.Cancel(); err != nil {
		return err
	}
	if c.fields != nil {
		c.state = StateReviewing
	}
	return nil
}

// DismissNotification clears the toast
func (c *Controller) DismissNotification() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.notification = nil
}

// DismissError closes the error dialog
func (c *Controller) DismissError() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.dialog = ""
}

// Snapshot returns a copy of the current state
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		State:             c.state,
		Bank:              c.bank,
		CanUpload:         c.canUpload(),
		Report:            c.modal.Snapshot(),
		ErrorDialog:       c.dialog,
		AllowedExtensions: c.intake.Validator().AllowedExtensions(),
		MaxFileSize:       c.intake.Validator().MaxSize(),
	}
	if f, ok := c.intake.File(); ok {
		snap.File = &FileInfo{Name: f.Name, ContentType: f.ContentType, Size: f.Size, Source: f.Source}
	}
	if err := c.intake.Err(); err != nil {
		snap.ValidationError = err.Error()
	} else if c.inputErr != nil {
		snap.ValidationError = c.inputErr.Error()
	}
	if c.fields != nil {
		snap.Fields = append(receipt.Fields(nil), c.fields...)
	}
	if c.riskStatus != nil {
		rs := *c.riskStatus
		snap.Risk = &rs
	}
	if c.notification != nil {
		n := *c.notification
		snap.Notification = &n
	}
	return snap
}

// canUpload requires a file, a bank, no outstanding validation error and an idle workflow
func (c *Controller) canUpload() bool {
	_, hasFile := c.intake.File()
	return c.state == StateIdle && hasFile && c.bank.Valid() && c.intake.Err() == nil && c.inputErr == nil
}

// intakeOpen reports whether intake actions are allowed in the current state
func (c *Controller) intakeOpen() error {
	switch c.state {
	case StateUploading:
		return ErrUploadInProgress
	case StateReviewing, StateReporting:
		return ErrReviewOpen
	}
	return nil
}

// userMessage returns the text shown to the user for an upload failure
func userMessage(err error) string {
	var (
		verr   *receipt.ValidationError
		tErr   *extraction.TransportError
		appErr *extraction.ApplicationError
	)
	switch {
	case errors.As(err, &verr):
		return verr.Message
	case errors.As(err, &tErr):
		return tErr.Message
	case errors.As(err, &appErr):
		return appErr.Message
	}
	return extraction.MessageNetworkError
}

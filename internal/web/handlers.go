package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/zombor/receipt-uploader/internal/extraction"
	"github.com/zombor/receipt-uploader/internal/intake"
	"github.com/zombor/receipt-uploader/internal/receipt"
	"github.com/zombor/receipt-uploader/internal/risk"
	"github.com/zombor/receipt-uploader/internal/workflow"
)

// wantsJSON reports whether the caller asked for a JSON snapshot instead of a redirect
func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

// writeJSON encodes v with the given status
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// jsonError writes an error response with CORS headers set
func jsonError(w http.ResponseWriter, message string, code int) {
	setCORSHeaders(w)
	writeJSON(w, code, map[string]string{"error": message})
}

// errorStatus maps an action error to an HTTP status
func errorStatus(err error) int {
	var (
		verr   *receipt.ValidationError
		tErr   *extraction.TransportError
		appErr *extraction.ApplicationError
	)
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.As(err, &tErr), errors.As(err, &appErr):
		return http.StatusBadGateway
	case errors.Is(err, workflow.ErrUploadInProgress),
		errors.Is(err, workflow.ErrReviewOpen),
		errors.Is(err, workflow.ErrNoResult),
		errors.Is(err, workflow.ErrReportInProgress),
		errors.Is(err, workflow.ErrSubmissionInProgress),
		errors.Is(err, workflow.ErrStaleResult),
		errors.Is(err, risk.ErrModalNotOpen):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// errorMessage returns the text shown for an action error
func errorMessage(err error) string {
	if errorStatus(err) == http.StatusInternalServerError {
		return extraction.MessageNetworkError
	}
	return err.Error()
}

// respond finishes a workflow action: JSON callers get the snapshot or the error,
// form posts are redirected back to the page which renders the new state.
func respond(w http.ResponseWriter, r *http.Request, ctrl *workflow.Controller, err error) {
	if !wantsJSON(r) {
		if err != nil {
			slog.Warn("Action failed", "path", r.URL.Path, "error", err)
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if err != nil {
		jsonError(w, errorMessage(err), errorStatus(err))
		return
	}
	writeJSON(w, http.StatusOK, ctrl.Snapshot())
}

// handleIndex renders the page from the session's snapshot
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctrl := s.sessions.Controller(w, r)
	data := newPageData(ctrl.Snapshot())
	if data.Reviewing {
		previous, err := s.reports.ReportsFor(data.Fields.TransactionNo())
		if err != nil {
			slog.Error("Error listing risk reports for receipt", "receipt_id", data.Fields.TransactionNo(), "error", err)
		}
		data.PreviousReports = previous
	}

	setCORSHeaders(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := renderIndex(w, data); err != nil {
		slog.Error("Error rendering page", "error", err)
	}
}

// handleState returns the session's snapshot. Callers without a session
// get the initial state; no session is started for them.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := s.sessions.Lookup(r)
	if !ok {
		ctrl = s.sessions.factory()
	}
	writeJSON(w, http.StatusOK, ctrl.Snapshot())
}

// handleSelectFile accepts one file from the picker, a drop or a paste
func (s *Server) handleSelectFile(w http.ResponseWriter, r *http.Request) {
	ctrl := s.sessions.Controller(w, r)
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodySize)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		slog.Error("Error parsing multipart form", "error", err)
		msg := "Error parsing form"
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			msg = fmt.Sprintf("File size exceeds %s limit.", intake.FormatSize(ctrl.Snapshot().MaxFileSize))
		}
		respond(w, r, ctrl, ctrl.RejectFile(&receipt.ValidationError{Field: "file", Message: msg}))
		return
	}

	f, header, err := r.FormFile("file")
	if err != nil {
		slog.Error("Error getting file from form", "error", err)
		respond(w, r, ctrl, ctrl.RejectFile(&receipt.ValidationError{Field: "file", Message: "No file was selected. Please choose a file to upload."}))
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		slog.Error("Error reading file data", "error", err, "filename", header.Filename)
		respond(w, r, ctrl, ctrl.RejectFile(&receipt.ValidationError{Field: "file", Message: "Error reading file. Please try again."}))
		return
	}

	file := intake.NewPendingFile(intake.ParseSource(r.FormValue("source")), header.Filename, header.Header.Get("Content-Type"), data)
	respond(w, r, ctrl, ctrl.SelectFile(file))
}

// handleClearFile drops the selection
func (s *Server) handleClearFile(w http.ResponseWriter, r *http.Request) {
	ctrl := s.sessions.Controller(w, r)
	respond(w, r, ctrl, ctrl.Reset())
}

// handleSelectBank sets the bank
func (s *Server) handleSelectBank(w http.ResponseWriter, r *http.Request) {
	ctrl := s.sessions.Controller(w, r)
	respond(w, r, ctrl, ctrl.SelectBank(r.FormValue("bank")))
}

// handleUpload sends the selected file for extraction.
// The upload outlives the request so a closed tab cannot leave the workflow stuck.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	ctrl := s.sessions.Controller(w, r)
	err := ctrl.Upload(context.WithoutCancel(r.Context()))
	respond(w, r, ctrl, err)
}

// handleReset closes the review panel
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	ctrl := s.sessions.Controller(w, r)
	respond(w, r, ctrl, ctrl.Reset())
}

// handleDismissNotification clears the toast
func (s *Server) handleDismissNotification(w http.ResponseWriter, r *http.Request) {
	ctrl := s.sessions.Controller(w, r)
	ctrl.DismissNotification()
	respond(w, r, ctrl, nil)
}

// handleDismissError closes the error dialog
func (s *Server) handleDismissError(w http.ResponseWriter, r *http.Request) {
	ctrl := s.sessions.Controller(w, r)
	ctrl.DismissError()
	respond(w, r, ctrl, nil)
}

// handleExportCSV downloads the review fields
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := s.sessions.Lookup(r)
	if !ok {
		jsonError(w, workflow.ErrNoResult.Error(), http.StatusConflict)
		return
	}
	csv, err := ctrl.ExportCSV()
	if err != nil {
		jsonError(w, err.Error(), errorStatus(err))
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", workflow.ExportFilename))
	io.WriteString(w, csv)
}

// handleCopy returns the clipboard text; the page script writes it to the
// system clipboard and reports the outcome to clipboard-ok or clipboard-error
func (s *Server) handleCopy(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := s.sessions.Lookup(r)
	if !ok {
		jsonError(w, workflow.ErrNoResult.Error(), http.StatusConflict)
		return
	}
	text, err := ctrl.ClipboardText()
	if err != nil {
		jsonError(w, err.Error(), errorStatus(err))
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, text)
}

// handleClipboardOK records a clipboard write confirmed by the page script
func (s *Server) handleClipboardOK(w http.ResponseWriter, r *http.Request) {
	if ctrl, ok := s.sessions.Lookup(r); ok {
		ctrl.CopyFinished(nil)
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleClipboardError logs a clipboard failure reported by the page script
func (s *Server) handleClipboardError(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, 4<<10)).Decode(&req); err != nil {
		jsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	err := errors.New(req.Error)
	if ctrl, ok := s.sessions.Lookup(r); ok {
		ctrl.CopyFinished(err)
	} else {
		slog.Error("Failed to copy receipt details", "error", err)
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleOpenReport opens the risk report form
func (s *Server) handleOpenReport(w http.ResponseWriter, r *http.Request) {
	ctrl := s.sessions.Controller(w, r)
	respond(w, r, ctrl, ctrl.OpenReport())
}

// handleCancelReport closes the risk report form
func (s *Server) handleCancelReport(w http.ResponseWriter, r *http.Request) {
	ctrl := s.sessions.Controller(w, r)
	respond(w, r, ctrl, ctrl.CancelReport())
}

// handleSubmitReport saves the draft and submits it
func (s *Server) handleSubmitReport(w http.ResponseWriter, r *http.Request) {
	ctrl := s.sessions.Controller(w, r)
	riskType := risk.Type(strings.TrimSpace(r.FormValue("risk_type")))
	if err := ctrl.UpdateReport(riskType, r.FormValue("comment")); err != nil {
		respond(w, r, ctrl, err)
		return
	}
	respond(w, r, ctrl, ctrl.SubmitReport(context.WithoutCancel(r.Context())))
}

// handleListReports returns the persisted risk reports, optionally only those for ?receipt_id=
func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	var (
		reports []*risk.Report
		err     error
	)
	if receiptID := r.URL.Query().Get("receipt_id"); receiptID != "" {
		reports, err = s.reports.ReportsFor(receiptID)
	} else {
		reports, err = s.reports.ListReports()
	}
	if err != nil {
		slog.Error("Error listing risk reports", "error", err)
		jsonError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	// Ensure we always return an array, not nil
	if reports == nil {
		reports = []*risk.Report{}
	}

	writeJSON(w, http.StatusOK, reports)
}

// handleGetReport returns a single risk report
func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		jsonError(w, "Report ID required", http.StatusBadRequest)
		return
	}
	report, err := s.reports.GetReport(id)
	if err != nil {
		jsonError(w, "Report not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// handleStaticCSS serves the CSS file
func (s *Server) handleStaticCSS(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "text/css")
	w.Write(appCSS)
}

// handleStaticJS serves the JavaScript file
func (s *Server) handleStaticJS(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Write(appJS)
}

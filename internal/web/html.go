package web

import (
	_ "embed"
	"html/template"
	"io"
	"strings"

	"github.com/zombor/receipt-uploader/internal/intake"
	"github.com/zombor/receipt-uploader/internal/receipt"
	"github.com/zombor/receipt-uploader/internal/risk"
	"github.com/zombor/receipt-uploader/internal/workflow"
)

//go:embed static/index.html
var indexHTML string

//go:embed static/app.css
var appCSS []byte

//go:embed static/app.js
var appJS []byte

var indexTemplate = template.Must(template.New("index").Parse(indexHTML))

// pageData is what the index template renders
type pageData struct {
	workflow.Snapshot
	Banks         []receipt.Bank
	RiskTypes     []risk.Type
	Accept        string
	MaxSizeLabel  string
	Uploading     bool
	Reviewing     bool
	ReportOpen    bool
	ReportBlocked bool

	// PreviousReports are earlier risk reports filed against the reviewed receipt
	PreviousReports []*risk.Report
}

func newPageData(snap workflow.Snapshot) pageData {
	return pageData{
		Snapshot:      snap,
		Banks:         receipt.Banks,
		RiskTypes:     risk.Types,
		Accept:        strings.Join(snap.AllowedExtensions, ","),
		MaxSizeLabel:  intake.FormatSize(snap.MaxFileSize),
		Uploading:     snap.State == workflow.StateUploading,
		Reviewing:     snap.Fields != nil,
		ReportOpen:    snap.Report.State != risk.ModalClosed,
		ReportBlocked: snap.Report.State == risk.ModalSubmitting,
	}
}

func renderIndex(w io.Writer, data pageData) error {
	return indexTemplate.Execute(w, data)
}

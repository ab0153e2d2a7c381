package risk

import (
	"errors"
	"strings"
)

// ModalState is the lifecycle state of the report form
type ModalState string

const (
	ModalClosed     ModalState = "closed"
	ModalOpen       ModalState = "open"
	ModalSubmitting ModalState = "submitting"
)

var (
	// ErrModalNotOpen is returned when editing or submitting a closed form
	ErrModalNotOpen = errors.New("risk report form is not open")
	// ErrSubmitting is returned while a submission is in flight
	ErrSubmitting = errors.New("risk report submission in progress")
)

// Modal is the report form state machine: closed -> open -> submitting -> closed.
// A failed submission returns to open with the draft intact.
// It is owned by a single workflow and is not safe for concurrent use.
type Modal struct {
	state     ModalState
	receiptID string
	riskType  Type
	comment   string
	err       error
}

// ModalSnapshot is a read-only view of the form
type ModalSnapshot struct {
	State     ModalState `json:"state"`
	ReceiptID string     `json:"receipt_id,omitempty"`
	RiskType  Type       `json:"risk_type,omitempty"`
	Comment   string     `json:"comment,omitempty"`
	CanSubmit bool       `json:"can_submit"`
	Error     string     `json:"error,omitempty"`
}

// NewModal returns a closed form
func NewModal() *Modal {
	return &Modal{state: ModalClosed}
}

// Open shows an empty form for receiptID
func (m *Modal) Open(receiptID string) error {
	if m.state == ModalSubmitting {
		return ErrSubmitting
	}
	*m = Modal{state: ModalOpen, receiptID: receiptID}
	return nil
}

// Update replaces the draft
func (m *Modal) Update(riskType Type, comment string) error {
	switch m.state {
	case ModalClosed:
		return ErrModalNotOpen
	case ModalSubmitting:
		return ErrSubmitting
	}
	m.riskType = riskType
	m.comment = comment
	m.err = nil
	return nil
}

// CanSubmit reports whether the draft is complete and the form is idle
func (m *Modal) CanSubmit() bool {
	return m.state == ModalOpen && m.riskType.Valid() && strings.TrimSpace(m.comment) != ""
}

// Begin moves an open, complete form to submitting and returns the report to send
func (m *Modal) Begin() (Report, error) {
	switch m.state {
	case ModalClosed:
		return Report{}, ErrModalNotOpen
	case ModalSubmitting:
		return Report{}, ErrSubmitting
	}
	report := Report{ReceiptID: m.receiptID, Type: m.riskType, Comment: strings.TrimSpace(m.comment)}
	if err := report.Validate(); err != nil {
		// Kept on the form until the draft changes
		m.err = err
		return Report{}, err
	}
	m.state = ModalSubmitting
	return report, nil
}

// Finish settles a submission: success closes the form, failure reopens it
func (m *Modal) Finish(err error) {
	if m.state != ModalSubmitting {
		return
	}
	if err != nil {
		m.state = ModalOpen
		return
	}
	*m = Modal{state: ModalClosed}
}

// Cancel closes the form unless a submission is in flight
func (m *Modal) Cancel() error {
	if m.state == ModalSubmitting {
		return ErrSubmitting
	}
	*m = Modal{state: ModalClosed}
	return nil
}

// State returns the current state
func (m *Modal) State() ModalState {
	return m.state
}

// Snapshot returns a copy of the form
func (m *Modal) Snapshot() ModalSnapshot {
	snap := ModalSnapshot{
		State:     m.state,
		ReceiptID: m.receiptID,
		RiskType:  m.riskType,
		Comment:   m.comment,
		CanSubmit: m.CanSubmit(),
	}
	if m.err != nil {
		snap.Error = m.err.Error()
	}
	return snap
}

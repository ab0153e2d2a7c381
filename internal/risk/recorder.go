package risk

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// IDGenerator generates unique IDs for reports
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

type uuidGenerator struct{}

func (uuidGenerator) Generate() string {
	return uuid.NewString()
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// Recorder is a Submitter that stores reports locally
type Recorder struct {
	db          DB
	idGenerator IDGenerator
	timeSource  TimeSource
}

// NewRecorder creates a Recorder with UUID ids and the system clock
func NewRecorder(db DB) *Recorder {
	return NewRecorderWithDeps(db, uuidGenerator{}, systemClock{})
}

// NewRecorderWithDeps creates a Recorder with custom dependencies for testing
func NewRecorderWithDeps(db DB, idGen IDGenerator, timeSrc TimeSource) *Recorder {
	return &Recorder{db: db, idGenerator: idGen, timeSource: timeSrc}
}

// Submit validates the report, stamps it and saves it
func (r *Recorder) Submit(ctx context.Context, report Report) error {
	if err := report.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	report.ID = r.idGenerator.Generate()
	report.CreatedAt = r.timeSource.Now()

	if err := r.db.SaveReport(&report); err != nil {
		return fmt.Errorf("saving risk report: %w", err)
	}

	slog.Info("Risk report submitted",
		"id", report.ID,
		"receipt_id", report.ReceiptID,
		"risk_type", report.Type,
	)
	return nil
}

// ListReports returns every stored report
func (r *Recorder) ListReports() ([]*Report, error) {
	reports, err := r.db.ListReports()
	if err != nil {
		return nil, fmt.Errorf("listing risk reports: %w", err)
	}
	return reports, nil
}

// GetReport returns the report with the given ID
func (r *Recorder) GetReport(id string) (*Report, error) {
	report, err := r.db.GetReport(id)
	if err != nil {
		return nil, fmt.Errorf("getting risk report: %w", err)
	}
	return report, nil
}

// ReportsFor returns the reports filed against receiptID
func (r *Recorder) ReportsFor(receiptID string) ([]*Report, error) {
	all, err := r.ListReports()
	if err != nil {
		return nil, err
	}
	reports := make([]*Report, 0)
	for _, report := range all {
		if report.ReceiptID == receiptID {
			reports = append(reports, report)
		}
	}
	return reports, nil
}

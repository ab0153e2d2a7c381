package receipt

import "strings"

// RiskLevel is the classified risk of a receipt
type RiskLevel string

const (
	RiskHigh    RiskLevel = "high"
	RiskMedium  RiskLevel = "medium"
	RiskLow     RiskLevel = "low"
	RiskUnknown RiskLevel = "unknown"
)

// BadgeKind selects the badge styling for a risk level
type BadgeKind string

const (
	BadgeError   BadgeKind = "error"
	BadgeWarning BadgeKind = "warning"
	BadgeSuccess BadgeKind = "success"
)

// RiskStatus is the risk badge derived from the server's free-text status
type RiskStatus struct {
	Raw   string    `json:"raw"`
	Level RiskLevel `json:"level"`
	Kind  BadgeKind `json:"kind"`
}

// ClassifyRisk maps a server status string to a RiskStatus.
// Matching is case-insensitive; unrecognized input is unknown with warning styling.
func ClassifyRisk(status string) RiskStatus {
	rs := RiskStatus{Raw: status, Level: RiskUnknown, Kind: BadgeWarning}
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "high risk":
		rs.Level, rs.Kind = RiskHigh, BadgeError
	case "medium risk":
		rs.Level, rs.Kind = RiskMedium, BadgeWarning
	case "low risk":
		rs.Level, rs.Kind = RiskLow, BadgeSuccess
	}
	return rs
}

// Label returns the text shown on the badge
func (r RiskStatus) Label() string {
	switch r.Level {
	case RiskHigh:
		return "High Risk"
	case RiskMedium:
		return "Medium Risk"
	case RiskLow:
		return "Low Risk"
	}
	if r.Raw != "" {
		return r.Raw
	}
	return "Unknown"
}

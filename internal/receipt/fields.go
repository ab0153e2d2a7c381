package receipt

import "strings"

// NotAvailable is rendered for fields the extraction API did not return
const NotAvailable = "N/A"

// Display labels, in the order the review panel shows them
const (
	LabelFullName      = "Full Name"
	LabelRecipient     = "Recipient"
	LabelTransactionNo = "Transaction No"
	LabelDate          = "Date"
	LabelAmount        = "Amount"
)

// fieldTable maps raw API keys to display labels
var fieldTable = []struct {
	key   string
	label string
}{
	{"adSoyad", LabelFullName},
	{"alici", LabelRecipient},
	{"islemNo", LabelTransactionNo},
	{"tarih", LabelDate},
	{"tutar", LabelAmount},
}

// Field is a single labelled value shown in the review panel
type Field struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Fields is an ordered set of labelled values
type Fields []Field

// Format maps raw extracted info onto the fixed display field set.
// Every label is always present; missing or blank values become NotAvailable.
func Format(info ExtractedInfo) Fields {
	fields := make(Fields, 0, len(fieldTable))
	for _, entry := range fieldTable {
		value := strings.TrimSpace(info[entry.key])
		if value == "" {
			value = NotAvailable
		}
		fields = append(fields, Field{Label: entry.label, Value: value})
	}
	return fields
}

// Get returns the value for label
func (f Fields) Get(label string) (string, bool) {
	for _, field := range f {
		if field.Label == label {
			return field.Value, true
		}
	}
	return "", false
}

// TransactionNo returns the receipt identifier used for risk reports
func (f Fields) TransactionNo() string {
	v, _ := f.Get(LabelTransactionNo)
	return v
}

// CSV serializes the fields as "label,value" lines joined by newlines.
// Values are written as-is; no quoting or escaping is applied.
func (f Fields) CSV() string {
	return f.join(",")
}

// ClipboardText serializes the fields as "label: value" lines joined by newlines
func (f Fields) ClipboardText() string {
	return f.join(": ")
}

func (f Fields) join(sep string) string {
	lines := make([]string, 0, len(f))
	for _, field := range f {
		lines = append(lines, field.Label+sep+field.Value)
	}
	return strings.Join(lines, "\n")
}

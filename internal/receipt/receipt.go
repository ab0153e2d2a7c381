package receipt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Bank identifies the bank whose receipt template the extraction API should apply
type Bank string

const (
	BankA     Bank = "Bank A"
	BankB     Bank = "Bank B"
	BankC     Bank = "Bank C"
	BankOther Bank = "Other"
)

// Banks lists the supported banks in display order
var Banks = []Bank{BankA, BankB, BankC, BankOther}

var docTypes = map[Bank]string{
	BankA:     "bank_a",
	BankB:     "bank_b",
	BankC:     "bank_c",
	BankOther: "other",
}

// ParseBank returns the Bank matching name, or a validation error
func ParseBank(name string) (Bank, error) {
	name = strings.TrimSpace(name)
	for _, b := range Banks {
		if string(b) == name {
			return b, nil
		}
	}
	return "", &ValidationError{Field: "bank", Message: fmt.Sprintf("Unsupported bank: %q", name)}
}

// DocType returns the constant document type sent to the extraction API
func (b Bank) DocType() string {
	return docTypes[b]
}

// Valid reports whether b is one of the supported banks
func (b Bank) Valid() bool {
	_, ok := docTypes[b]
	return ok
}

// ExtractedInfo holds the raw key/value pairs returned by the extraction API
type ExtractedInfo map[string]string

// UnmarshalJSON accepts string, number, boolean and null values.
// Numbers keep their literal form, null values are dropped.
func (e *ExtractedInfo) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	info := make(ExtractedInfo, len(raw))
	for key, value := range raw {
		value = bytes.TrimSpace(value)
		if len(value) == 0 || bytes.Equal(value, []byte("null")) {
			continue
		}
		switch value[0] {
		case '"':
			var s string
			if err := json.Unmarshal(value, &s); err != nil {
				return fmt.Errorf("decoding %s: %w", key, err)
			}
			info[key] = s
		case 't', 'f':
			b, err := strconv.ParseBool(string(value))
			if err != nil {
				return fmt.Errorf("decoding %s: %w", key, err)
			}
			info[key] = strconv.FormatBool(b)
		case '{', '[':
			return fmt.Errorf("decoding %s: nested values are not supported", key)
		default:
			info[key] = string(value)
		}
	}
	*e = info
	return nil
}

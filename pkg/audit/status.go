package audit

import (
	"encoding/json"
	"fmt"
)

// Status classifies one audited dependency.
type Status int

const (
	StatusUpToDate     Status = iota // installed matches latest
	StatusOutdated                   // installed differs from latest
	StatusNotInstalled               // not declared, or declared without a range
	StatusError                      // the registry lookup failed
)

var statusCodes = [...]string{
	StatusUpToDate:     "up-to-date",
	StatusOutdated:     "outdated",
	StatusNotInstalled: "not-installed",
	StatusError:        "error",
}

// Statuses lists every status in display order.
func Statuses() []Status {
	return []Status{StatusUpToDate, StatusOutdated, StatusNotInstalled, StatusError}
}

// String returns the machine code of the status.
func (s Status) String() string {
	if s < 0 || int(s) >= len(statusCodes) {
		return fmt.Sprintf("Status(%d)", int(s))
	}
	return statusCodes[s]
}

// ParseStatus maps a machine code back to its Status.
func ParseStatus(code string) (Status, error) {
	for i, c := range statusCodes {
		if c == code {
			return Status(i), nil
		}
	}
	return 0, fmt.Errorf("unknown status %q", code)
}

// MarshalJSON encodes the status as its machine code.
func (s Status) MarshalJSON() ([]byte, error) {
	if s < 0 || int(s) >= len(statusCodes) {
		return nil, fmt.Errorf("unknown status %d", int(s))
	}
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a machine code.
func (s *Status) UnmarshalJSON(data []byte) error {
	var code string
	if err := json.Unmarshal(data, &code); err != nil {
		return err
	}
	parsed, err := ParseStatus(code)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

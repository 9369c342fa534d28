package audit

import "encoding/json"

// Result is the resolution outcome for one target package.
// Empty strings mean "absent" and encode as JSON null.
type Result struct {
	Name      string
	Installed string // declared range without its leading ^ or ~
	Latest    string
	Status    Status
	Error     string
}

// Record is a Result joined with the optional unused classification.
type Record struct {
	Result
	Unused *bool // nil when the unused check did not run
}

type recordJSON struct {
	Name      string  `json:"name"`
	Installed *string `json:"installed"`
	Latest    *string `json:"latest"`
	Status    Status  `json:"status"`
	Error     *string `json:"error"`
	Unused    *bool   `json:"unused,omitempty"`
}

// MarshalJSON encodes empty fields as null.
func (r Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.toJSON())
}

// MarshalJSON encodes the record with an "unused" field when the
// classification is present.
func (r Record) MarshalJSON() ([]byte, error) {
	v := r.Result.toJSON()
	v.Unused = r.Unused
	return json.Marshal(v)
}

// UnmarshalJSON decodes the form produced by MarshalJSON.
func (r *Record) UnmarshalJSON(data []byte) error {
	var v recordJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*r = Record{
		Result: Result{
			Name:      v.Name,
			Installed: deref(v.Installed),
			Latest:    deref(v.Latest),
			Status:    v.Status,
			Error:     deref(v.Error),
		},
		Unused: v.Unused,
	}
	return nil
}

func (r Result) toJSON() recordJSON {
	return recordJSON{
		Name:      r.Name,
		Installed: nullable(r.Installed),
		Latest:    nullable(r.Latest),
		Status:    r.Status,
		Error:     nullable(r.Error),
	}
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

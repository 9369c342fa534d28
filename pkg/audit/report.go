package audit

import (
	"github.com/matzehuels/depcheck/pkg/manifest"
	"github.com/matzehuels/depcheck/pkg/usage"
)

// UsageReport lists runtime dependencies no scanned source file references.
type UsageReport struct {
	Unused []string // manifest order
	Files  int      // source files the classification is based on
}

// IsUnused reports whether name was classified as unused.
func (u *UsageReport) IsUnused(name string) bool {
	for _, n := range u.Unused {
		if n == name {
			return true
		}
	}
	return false
}

// ClassifyUsage returns the runtime dependencies absent from used.
func ClassifyUsage(runtime []manifest.Dependency, used usage.Index) *UsageReport {
	report := &UsageReport{}
	for _, d := range runtime {
		if !used.Has(d.Name) {
			report.Unused = append(report.Unused, d.Name)
		}
	}
	return report
}

// Report joins resolution results with the optional usage classification.
// Order is preserved. With a nil usage report no record carries Unused.
func Report(results []Result, u *UsageReport) []Record {
	records := make([]Record, len(results))
	for i, res := range results {
		records[i] = Record{Result: res}
		if u != nil {
			unused := u.IsUnused(res.Name)
			records[i].Unused = &unused
		}
	}
	return records
}

// Summary counts a report.
type Summary struct {
	Total    int
	ByStatus map[Status]int
	Unused   []string // names with Unused set, report order
}

// Count returns the number of records with status s.
func (s Summary) Count(status Status) int { return s.ByStatus[status] }

// Outdated returns the records eligible for an update, in report order.
func Outdated(records []Record) []Record {
	var out []Record
	for _, r := range records {
		if r.Status == StatusOutdated {
			out = append(out, r)
		}
	}
	return out
}

// Summarize counts records per status and collects unused names.
func Summarize(records []Record) Summary {
	s := Summary{Total: len(records), ByStatus: make(map[Status]int, len(statusCodes))}
	for _, r := range records {
		s.ByStatus[r.Status]++
		if r.Unused != nil && *r.Unused {
			s.Unused = append(s.Unused, r.Name)
		}
	}
	return s
}

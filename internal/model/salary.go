package model

import "time"

// SalaryShape classifies a salary sub-record before it is flattened into a
// (from, to) pair.
type SalaryShape uint8

const (
	SalaryMissing  SalaryShape = iota // no salary object, or salary: null
	SalaryBoth                        // from and to set
	SalaryFromOnly                    // to absent or null
	SalaryToOnly                      // from absent or null
	SalaryEmpty                       // object present, both bounds absent or null
)

func (s SalaryShape) String() string {
	switch s {
	case SalaryMissing:
		return "missing"
	case SalaryBoth:
		return "both"
	case SalaryFromOnly:
		return "from-only"
	case SalaryToOnly:
		return "to-only"
	case SalaryEmpty:
		return "empty"
	}
	return "unknown"
}

// NormalizeSalary flattens s into integer bounds, using 0 for a missing bound.
// Every shape yields (0, 0) for the bounds it lacks; callers decide what to
// do with SalaryEmpty.
func NormalizeSalary(s Optional[SalaryRange]) (from, to int, shape SalaryShape) {
	r, ok := s.Get()
	if !ok {
		return 0, 0, SalaryMissing
	}

	f, hasFrom := r.From.Get()
	t, hasTo := r.To.Get()

	switch {
	case hasFrom && hasTo:
		return f, t, SalaryBoth
	case hasFrom:
		return f, 0, SalaryFromOnly
	case hasTo:
		return 0, t, SalaryToOnly
	default:
		return 0, 0, SalaryEmpty
	}
}

var publishedLayouts = []string{
	"2006-01-02T15:04:05-0700",
	time.RFC3339,
	time.DateOnly,
}

// PublishDate parses the published_at timestamp hh.ru returns
// ("2024-03-01T10:15:00+0300"). ok is false for empty or unparseable input.
func PublishDate(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range publishedLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

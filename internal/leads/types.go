// Package leads defines core types shared across the qualification pipeline.
package leads

import "time"

// Company is one row of discovery output. The Website field is the
// processing key; Extra carries input columns we pass through untouched.
type Company struct {
	Name     string            `json:"company_name"`
	Website  string            `json:"website"`
	Vertical string            `json:"vertical,omitempty"`
	Extra    map[string]string `json:"extra,omitempty"`
}

// Rule identifies which detector check produced a positive verdict.
type Rule int

// Detector rules in evaluation order.
const (
	RuleTelInput     Rule = 1
	RuleAttrKeyword  Rule = 2
	RuleLabelKeyword Rule = 3
)

// Detection records what matched, for diagnostics and CSV output.
type Detection struct {
	Rule    Rule   `json:"rule"`
	Page    string `json:"page"`
	Element string `json:"element"`
	Matched string `json:"matched"`
}

// Result is the qualification verdict for one company. Exactly one Result
// exists per non-skipped input row; it is never mutated after creation.
type Result struct {
	Index         int        `json:"index"`
	Company       Company    `json:"company"`
	HasPhoneField bool       `json:"has_phone_field"`
	Detection     *Detection `json:"detection,omitempty"`
	PagesChecked  int        `json:"pages_checked"`
	Err           error      `json:"-"`
	ErrDetail     string     `json:"error_detail,omitempty"`
	Skipped       bool       `json:"skipped,omitempty"`
	Elapsed       time.Duration
}

// Qualified reports whether the result belongs in the qualified output.
func (r Result) Qualified() bool {
	return !r.Skipped && r.Err == nil && r.HasPhoneField
}

// Page is a fetched candidate page ready for detection.
type Page struct {
	URL        string
	FinalURL   string
	StatusCode int
	Body       []byte
	Duration   time.Duration
}

// Package validation collects findings about a settlement: rule checks on
// the decoded config, JSON-schema checks on the raw document, and the
// spatial checks run on a generated scene.
package validation

import "fmt"

// Stage names the check that produced a finding.
type Stage string

const (
	StageSchema   Stage = "schema"
	StageDocument Stage = "document"
	StageSpatial  Stage = "spatial"
)

// Severity ranks a finding. Only errors make a report invalid.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Result is one finding. Path is a dotted settlement path
// ("city.overrides[2].wall_height") or a scene location.
type Result struct {
	Stage    Stage    `json:"stage"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Path     string   `json:"path"`
	Got      any      `json:"got,omitempty"`
	Want     string   `json:"want,omitempty"`
	Related  string   `json:"related,omitempty"`
	Hints    []string `json:"hints,omitempty"`
}

// Report holds findings bucketed by severity.
type Report struct {
	Valid    bool     `json:"valid"`
	Errors   []Result `json:"errors"`
	Warnings []Result `json:"warnings"`
	Info     []Result `json:"info"`
	Summary  string   `json:"summary"`
}

// NewReport returns an empty, valid report.
func NewReport() *Report {
	r := &Report{Valid: true, Errors: []Result{}, Warnings: []Result{}, Info: []Result{}}
	r.summarize()
	return r
}

func (r *Report) AddError(res Result)   { r.add(SeverityError, res) }
func (r *Report) AddWarning(res Result) { r.add(SeverityWarning, res) }
func (r *Report) AddInfo(res Result)    { r.add(SeverityInfo, res) }

func (r *Report) add(sev Severity, res Result) {
	res.Severity = sev
	*r.bucket(sev) = append(*r.bucket(sev), res)
	if sev == SeverityError {
		r.Valid = false
	}
	r.summarize()
}

func (r *Report) bucket(sev Severity) *[]Result {
	switch sev {
	case SeverityError:
		return &r.Errors
	case SeverityWarning:
		return &r.Warnings
	default:
		return &r.Info
	}
}

// Merge appends other's findings. A nil other is ignored.
func (r *Report) Merge(other *Report) {
	if other == nil {
		return
	}
	for _, sev := range []Severity{SeverityError, SeverityWarning, SeverityInfo} {
		*r.bucket(sev) = append(*r.bucket(sev), *other.bucket(sev)...)
	}
	r.Valid = r.Valid && other.Valid
	r.summarize()
}

func (r *Report) summarize() {
	r.Summary = fmt.Sprintf("%d errors, %d warnings, %d info", len(r.Errors), len(r.Warnings), len(r.Info))
}

// At returns the findings of one stage, errors first.
func (r *Report) At(stage Stage) []Result {
	var out []Result
	for _, sev := range []Severity{SeverityError, SeverityWarning, SeverityInfo} {
		for _, res := range *r.bucket(sev) {
			if res.Stage == stage {
				out = append(out, res)
			}
		}
	}
	return out
}

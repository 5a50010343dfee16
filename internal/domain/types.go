package domain

import "github.com/goccy/go-json"

// Well-known input column names.
const (
	ColTestID         = "Test ID"
	ColTestType       = "Test Type"
	ColProjectKey     = "Project Key"
	ColSummary        = "Summary"
	ColDescription    = "Description"
	ColFolder         = "Repository Folder"
	ColTestSets       = "Test Sets"
	ColStep           = "Step"
	ColData           = "Data"
	ColExpectedResult = "Expected Result"
)

// DefaultTestType is used when a row carries no Test Type.
const DefaultTestType = "Manual"

// TestCaseRow is one input record keyed by column name.
type TestCaseRow map[string]string

// Get returns the value of column, or "" when absent.
func (r TestCaseRow) Get(column string) string {
	return r[column]
}

// Table holds the rows read from a single source file.
type Table struct {
	Source  string
	Columns []string // header names in file order, whitespace trimmed
	Rows    []TestCaseRow
}

// HasColumn reports whether the table header contains name.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// TestDocument is one test in the Xray bulk import format.
type TestDocument struct {
	TestType string       `json:"testtype"`
	Fields   TestFields   `json:"fields"`
	Steps    []StepRecord `json:"steps"`
	Folder   string       `json:"xray_test_repository_folder,omitempty"`
	TestSets []string     `json:"xray_test_sets,omitempty"`

	// Extra holds members this tool does not model, kept as written.
	Extra map[string]json.RawMessage `json:"-"`
}

// TestFields holds the Jira issue fields of a test.
type TestFields struct {
	Project     ProjectRef `json:"project"`
	Summary     string     `json:"summary"`
	Description string     `json:"description"`

	// Extra holds members this tool does not model, kept as written.
	Extra map[string]json.RawMessage `json:"-"`
}

// ProjectRef identifies the Jira project a test is created in.
type ProjectRef struct {
	Key string `json:"key"`

	// Extra holds members this tool does not model, kept as written.
	Extra map[string]json.RawMessage `json:"-"`
}

// StepRecord is a single manual test step.
type StepRecord struct {
	Action string `json:"action"`
	Data   string `json:"data"`
	Result string `json:"result"`

	// Extra holds members this tool does not model, kept as written.
	Extra map[string]json.RawMessage `json:"-"`
}

// Failure pairs a processed path with the reason it failed.
type Failure struct {
	Path   string
	Reason string
}

// BatchResult collects the outcome of a batch operation in processing order.
type BatchResult struct {
	Succeeded []string
	Failed    []Failure
}

// AddSuccess records a processed path.
func (b *BatchResult) AddSuccess(path string) {
	b.Succeeded = append(b.Succeeded, path)
}

// AddFailure records a path that failed with err.
func (b *BatchResult) AddFailure(path string, err error) {
	b.Failed = append(b.Failed, Failure{Path: path, Reason: err.Error()})
}

// Total returns the number of processed paths.
func (b BatchResult) Total() int {
	return len(b.Succeeded) + len(b.Failed)
}

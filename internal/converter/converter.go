package converter

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/fjglira/xraysync/internal/document"
	"github.com/fjglira/xraysync/internal/domain"
)

// Converter transforms tables of test-case rows into Xray test documents.
type Converter interface {
	Convert(table *domain.Table, projectKey string) ([]domain.TestDocument, error)
}

// DefaultConverter implements Converter.
type DefaultConverter struct{}

// NewConverter creates a new DefaultConverter.
func NewConverter() *DefaultConverter {
	return &DefaultConverter{}
}

var requiredColumns = []string{domain.ColSummary, domain.ColStep}

var testSetSeparator = regexp.MustCompile(`[,;]`)

// Convert groups the rows of table into test documents. Rows sharing a
// Test ID (or, without that column, a Summary) form one test whose first row
// supplies the test fields. Groups keep the order in which their key first
// appears and steps keep row order.
func (c *DefaultConverter) Convert(table *domain.Table, projectKey string) ([]domain.TestDocument, error) {
	if err := checkColumns(table); err != nil {
		return nil, err
	}

	rows := nonEmptyRows(table.Rows)
	keyOf := groupKeyFunc(table)

	// Group rows by key, maintaining insertion order
	var groupOrder []string
	groupRows := make(map[string][]domain.TestCaseRow)
	for _, row := range rows {
		key := keyOf(row)
		if _, seen := groupRows[key]; !seen {
			groupOrder = append(groupOrder, key)
		}
		groupRows[key] = append(groupRows[key], row)
	}

	docs := make([]domain.TestDocument, 0, len(groupOrder))
	for _, key := range groupOrder {
		docs = append(docs, buildDocument(groupRows[key], projectKey))
	}

	return document.Clean(docs), nil
}

// checkColumns verifies the required columns are present.
func checkColumns(table *domain.Table) error {
	var missing []string
	for _, col := range requiredColumns {
		if !table.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return domain.NewErrorWithSuggestion(domain.PhaseSchema, table.Source,
		"missing required columns: "+strings.Join(missing, ", "),
		"the file may use a different field separator than the configured one",
		nil)
}

// nonEmptyRows drops rows whose values are all blank.
func nonEmptyRows(rows []domain.TestCaseRow) []domain.TestCaseRow {
	kept := make([]domain.TestCaseRow, 0, len(rows))
	for _, row := range rows {
		for _, v := range row {
			if strings.TrimSpace(v) != "" {
				kept = append(kept, row)
				break
			}
		}
	}
	return kept
}

// groupKeyFunc returns the grouping key of a row: the Test ID when the
// column exists, otherwise a number assigned per distinct Summary in order
// of first appearance.
func groupKeyFunc(table *domain.Table) func(domain.TestCaseRow) string {
	if table.HasColumn(domain.ColTestID) {
		return func(row domain.TestCaseRow) string {
			return row.Get(domain.ColTestID)
		}
	}

	ids := make(map[string]int)
	return func(row domain.TestCaseRow) string {
		summary := row.Get(domain.ColSummary)
		id, ok := ids[summary]
		if !ok {
			id = len(ids)
			ids[summary] = id
		}
		return strconv.Itoa(id)
	}
}

// buildDocument creates a test from its group. The first row is the header row.
func buildDocument(rows []domain.TestCaseRow, projectKey string) domain.TestDocument {
	first := rows[0]

	testType := strings.TrimSpace(first.Get(domain.ColTestType))
	if testType == "" {
		testType = domain.DefaultTestType
	}

	key := strings.TrimSpace(first.Get(domain.ColProjectKey))
	if key == "" {
		key = projectKey
	}

	doc := domain.TestDocument{
		TestType: testType,
		Fields: domain.TestFields{
			Project:     domain.ProjectRef{Key: key},
			Summary:     first.Get(domain.ColSummary),
			Description: first.Get(domain.ColDescription),
		},
		Steps:    []domain.StepRecord{},
		Folder:   strings.TrimSpace(first.Get(domain.ColFolder)),
		TestSets: SplitTestSets(first.Get(domain.ColTestSets)),
	}

	for _, row := range rows {
		action := row.Get(domain.ColStep)
		if strings.TrimSpace(action) == "" {
			continue
		}
		doc.Steps = append(doc.Steps, domain.StepRecord{
			Action: action,
			Data:   row.Get(domain.ColData),
			Result: row.Get(domain.ColExpectedResult),
		})
	}

	return doc
}

// SplitTestSets splits a list of test set keys on "," or ";". Blank pieces
// are dropped and nil is returned when nothing is left.
func SplitTestSets(value string) []string {
	var sets []string
	for _, piece := range testSetSeparator.Split(value, -1) {
		if piece = strings.TrimSpace(piece); piece != "" {
			sets = append(sets, piece)
		}
	}
	return sets
}

// EmptySummaries returns the zero-based indexes of documents without a summary.
func EmptySummaries(docs []domain.TestDocument) []int {
	var idx []int
	for i, d := range docs {
		if d.Fields.Summary == "" {
			idx = append(idx, i)
		}
	}
	return idx
}

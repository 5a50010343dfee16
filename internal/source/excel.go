package source

import (
	"github.com/xuri/excelize/v2"

	"github.com/fjglira/xraysync/internal/domain"
)

// ExcelReader reads the first worksheet of an Excel workbook.
type ExcelReader struct{}

// NewExcelReader creates a new ExcelReader.
func NewExcelReader() *ExcelReader {
	return &ExcelReader{}
}

// SupportedExtensions returns the file extensions this reader handles.
func (r *ExcelReader) SupportedExtensions() []string {
	return []string{".xlsx", ".xlsm"}
}

// Read loads the first worksheet of the workbook at path.
func (r *ExcelReader) Read(path string) (*domain.Table, error) {
	records, err := readSheet(path)
	if err != nil {
		return nil, err
	}
	return buildTable(path, records)
}

// ExcelToCSV converts the first worksheet of src into a CSV file at dst.
// Every record is padded to the widest row so the output is rectangular.
func ExcelToCSV(src, dst string, sep rune) error {
	records, err := readSheet(src)
	if err != nil {
		return err
	}
	width := 0
	for _, rec := range records {
		width = max(width, len(rec))
	}
	for i, rec := range records {
		for len(rec) < width {
			rec = append(rec, "")
		}
		records[i] = rec
	}
	return WriteCSV(dst, records, sep)
}

func readSheet(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, domain.NewError(domain.PhaseIO, path, "failed to open workbook", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, domain.NewError(domain.PhaseParse, path, "workbook has no worksheets", nil)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, domain.NewError(domain.PhaseParse, path, "failed to read worksheet "+sheets[0], err)
	}
	return rows, nil
}

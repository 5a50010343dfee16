package generator

import (
	"path/filepath"

	"github.com/fjglira/xraysync/internal/domain"
	"github.com/fjglira/xraysync/internal/scanner"
	"github.com/fjglira/xraysync/internal/source"
)

// ExcelExtensions are the workbook formats accepted for CSV export. Legacy
// .xls files are not supported by excelize and are skipped.
var ExcelExtensions = []string{".xlsx", ".xlsm"}

// ExportCSV writes the first worksheet of the workbook src as CSV to dst.
func (g *DefaultGenerator) ExportCSV(src, dst string, sep rune) error {
	if g.DryRun {
		g.log.Infof("[DRY-RUN] Would export %s to %s", src, dst)
		return nil
	}
	if err := source.ExcelToCSV(src, dst, sep); err != nil {
		return err
	}
	g.log.Infof("Generated %s from %s", dst, src)
	return nil
}

// ExportDirectory exports every workbook directly inside excelDir to csvDir.
// Successes are reported by CSV path and failures by workbook path.
func (g *DefaultGenerator) ExportDirectory(excelDir, csvDir string, sep rune) (domain.BatchResult, error) {
	var result domain.BatchResult

	files, err := g.scanner.List(excelDir, ExcelExtensions...)
	if err != nil {
		return result, err
	}
	if len(files) == 0 {
		g.log.Warnf("No workbooks found in %s", excelDir)
		return result, nil
	}

	for _, src := range files {
		dst := filepath.Join(csvDir, scanner.Stem(src)+".csv")
		if err := g.ExportCSV(src, dst, sep); err != nil {
			g.log.Warnf("Export failed for %s: %v", src, err)
			result.AddFailure(src, err)
			continue
		}
		result.AddSuccess(dst)
	}
	return result, nil
}

package generator_test

import (
	"io"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"github.com/fjglira/xraysync/internal/converter"
	"github.com/fjglira/xraysync/internal/document"
	"github.com/fjglira/xraysync/internal/generator"
	"github.com/fjglira/xraysync/internal/scanner"
	"github.com/fjglira/xraysync/internal/source"
)

var _ = Describe("Generator", func() {
	var (
		gen       *generator.DefaultGenerator
		outputDir string
		csvDir    string
	)

	BeforeEach(func() {
		log := logrus.New()
		log.SetOutput(io.Discard)

		outputDir = GinkgoT().TempDir()
		csvDir = filepath.Join("..", "..", "testdata", "csv")

		gen = generator.NewGenerator(
			scanner.NewScanner(),
			source.NewDefaultRegistry(','),
			converter.NewConverter(),
			log,
		)
	})

	Describe("GenerateFile", func() {
		It("should convert a CSV file into a JSON document", func() {
			dst := filepath.Join(outputDir, "login.json")
			docs, err := gen.GenerateFile(filepath.Join(csvDir, "login.csv"), dst, "QA")
			Expect(err).ToNot(HaveOccurred())
			Expect(docs).To(HaveLen(2))
			Expect(docs[0].TestSets).To(Equal([]string{"SET-1", "SET-2", "SET-3"}))
			Expect(docs[0].Folder).To(Equal("/Auth/Login"))
			Expect(docs[0].Steps).To(HaveLen(2))
			Expect(docs[1].Fields.Description).To(Equal("Rejects bad passwords"))

			written, err := document.Read(dst)
			Expect(err).ToNot(HaveOccurred())
			Expect(written).To(Equal(docs))
		})

		It("should keep non-ASCII characters literal in the output", func() {
			dst := filepath.Join(outputDir, "search.json")
			_, err := gen.GenerateFile(filepath.Join(csvDir, "search.csv"), dst, "QA")
			Expect(err).ToNot(HaveOccurred())

			content, err := os.ReadFile(dst)
			Expect(err).ToNot(HaveOccurred())
			Expect(string(content)).To(ContainSubstring(`"summary": "Búsqueda por nombre"`))
			Expect(string(content)).To(ContainSubstring(`"action": "Escribir \"Peña\" en el buscador"`))
			Expect(string(content)).To(ContainSubstring(`"result": "Se listan <resultados> & más"`))
		})

		It("should convert a Markdown table", func() {
			dst := filepath.Join(outputDir, "cases.json")
			docs, err := gen.GenerateFile(filepath.Join("..", "..", "testdata", "markdown", "cases.md"), dst, "QA")
			Expect(err).ToNot(HaveOccurred())
			Expect(docs).To(HaveLen(2))
			Expect(docs[0].Steps).To(HaveLen(2))
		})

		It("should fail with the file name for the wrong separator", func() {
			_, err := gen.GenerateFile(filepath.Join(csvDir, "broken.csv"), filepath.Join(outputDir, "broken.json"), "QA")
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("broken.csv"))
			Expect(err.Error()).To(ContainSubstring("Summary, Step"))
			Expect(filepath.Join(outputDir, "broken.json")).ToNot(BeAnExistingFile())
		})

		It("should reject unsupported extensions", func() {
			_, err := gen.GenerateFile("cases.pdf", filepath.Join(outputDir, "cases.json"), "QA")
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring(".csv"))
		})

		It("should respect dry-run mode", func() {
			gen.DryRun = true
			docs, err := gen.GenerateFile(filepath.Join(csvDir, "checkout.csv"), filepath.Join(outputDir, "checkout.json"), "QA")
			Expect(err).ToNot(HaveOccurred())
			Expect(docs).To(HaveLen(2))

			entries, err := os.ReadDir(outputDir)
			Expect(err).ToNot(HaveOccurred())
			Expect(entries).To(BeEmpty())
		})
	})

	Describe("GenerateDirectory", func() {
		It("should convert valid files and report the malformed one", func() {
			result, err := gen.GenerateDirectory(csvDir, outputDir, "QA", ".csv")
			Expect(err).ToNot(HaveOccurred())
			Expect(result.Succeeded).To(HaveLen(3))
			Expect(result.Failed).To(HaveLen(1))
			Expect(result.Failed[0].Path).To(HaveSuffix("broken.csv"))
			Expect(result.Failed[0].Reason).To(ContainSubstring("broken.csv"))

			for _, name := range []string{"checkout.json", "login.json", "search.json"} {
				Expect(filepath.Join(outputDir, name)).To(BeAnExistingFile())
			}
		})

		It("should process files in sorted order", func() {
			result, err := gen.GenerateDirectory(csvDir, outputDir, "QA", ".csv")
			Expect(err).ToNot(HaveOccurred())
			var names []string
			for _, p := range result.Succeeded {
				names = append(names, filepath.Base(p))
			}
			Expect(names).To(Equal([]string{"checkout.csv", "login.csv", "search.csv"}))
		})

		It("should handle empty directory gracefully", func() {
			result, err := gen.GenerateDirectory(GinkgoT().TempDir(), outputDir, "QA")
			Expect(err).ToNot(HaveOccurred())
			Expect(result.Total()).To(BeZero())
		})

		It("should fail for a missing directory", func() {
			_, err := gen.GenerateDirectory("missing-dir", outputDir, "QA")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Excel export", func() {
		var excelDir string

		BeforeEach(func() {
			excelDir = GinkgoT().TempDir()
			f := excelize.NewFile()
			defer f.Close()
			sheet := f.GetSheetName(0)
			Expect(f.SetSheetRow(sheet, "A1", &[]any{"Summary", "Step"})).To(Succeed())
			Expect(f.SetSheetRow(sheet, "A2", &[]any{"From Excel", "Open"})).To(Succeed())
			Expect(f.SaveAs(filepath.Join(excelDir, "sheet.xlsx"))).To(Succeed())
			Expect(os.WriteFile(filepath.Join(excelDir, "corrupt.xlsx"), []byte("junk"), 0644)).To(Succeed())
		})

		It("should export workbooks and report failures", func() {
			result, err := gen.ExportDirectory(excelDir, outputDir, ';')
			Expect(err).ToNot(HaveOccurred())
			Expect(result.Succeeded).To(Equal([]string{filepath.Join(outputDir, "sheet.csv")}))
			Expect(result.Failed).To(HaveLen(1))
			Expect(result.Failed[0].Path).To(HaveSuffix("corrupt.xlsx"))

			content, err := os.ReadFile(filepath.Join(outputDir, "sheet.csv"))
			Expect(err).ToNot(HaveOccurred())
			Expect(string(content)).To(Equal("Summary;Step\nFrom Excel;Open\n"))
		})

		It("should skip legacy .xls workbooks", func() {
			Expect(os.WriteFile(filepath.Join(excelDir, "legacy.xls"), []byte("binary"), 0644)).To(Succeed())
			result, err := gen.ExportDirectory(excelDir, outputDir, ',')
			Expect(err).ToNot(HaveOccurred())
			Expect(result.Total()).To(Equal(2))
			Expect(filepath.Join(outputDir, "legacy.csv")).ToNot(BeAnExistingFile())
		})

		It("should feed the exported CSV to the converter", func() {
			Expect(gen.ExportCSV(filepath.Join(excelDir, "sheet.xlsx"), filepath.Join(outputDir, "sheet.csv"), ',')).To(Succeed())
			docs, err := gen.GenerateFile(filepath.Join(outputDir, "sheet.csv"), filepath.Join(outputDir, "sheet.json"), "QA")
			Expect(err).ToNot(HaveOccurred())
			Expect(docs).To(HaveLen(1))
			Expect(docs[0].Fields.Summary).To(Equal("From Excel"))
		})
	})
})

package generator

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/fjglira/xraysync/internal/converter"
	"github.com/fjglira/xraysync/internal/document"
	"github.com/fjglira/xraysync/internal/domain"
	"github.com/fjglira/xraysync/internal/scanner"
	"github.com/fjglira/xraysync/internal/source"
)

// Generator is the top-level conversion orchestrator.
type Generator interface {
	GenerateFile(src, dst, projectKey string) ([]domain.TestDocument, error)
	GenerateDirectory(srcDir, dstDir, projectKey string, exts ...string) (domain.BatchResult, error)
}

// DefaultGenerator implements Generator by wiring all components together.
type DefaultGenerator struct {
	scanner   scanner.Scanner
	registry  source.Registry
	converter converter.Converter
	log       *logrus.Logger

	// DryRun reads and converts sources without writing output files.
	DryRun bool
}

// NewGenerator creates a new DefaultGenerator with all dependencies.
func NewGenerator(
	s scanner.Scanner,
	r source.Registry,
	c converter.Converter,
	log *logrus.Logger,
) *DefaultGenerator {
	return &DefaultGenerator{
		scanner:   s,
		registry:  r,
		converter: c,
		log:       log,
	}
}

// GenerateFile runs the pipeline for a single file: read → convert → write.
func (g *DefaultGenerator) GenerateFile(src, dst, projectKey string) ([]domain.TestDocument, error) {
	g.log.Debugf("Processing: %s", src)

	reader, err := g.registry.ReaderFor(filepath.Ext(src))
	if err != nil {
		return nil, domain.NewErrorWithSuggestion(domain.PhaseParse, src,
			"unsupported source file",
			"use one of "+joinExts(g.registry.Extensions()),
			err)
	}

	table, err := reader.Read(src)
	if err != nil {
		return nil, err
	}
	g.log.Debugf("Read %d row(s) and %d column(s) from %s", len(table.Rows), len(table.Columns), src)

	docs, err := g.converter.Convert(table, projectKey)
	if err != nil {
		return nil, err
	}

	for _, idx := range converter.EmptySummaries(docs) {
		g.log.Warnf("Test %d in %s has an empty summary; Xray will reject it", idx+1, src)
	}

	if g.DryRun {
		g.log.Infof("[DRY-RUN] Would write %d test(s) to %s", len(docs), dst)
		return docs, nil
	}

	if err := document.Write(dst, docs); err != nil {
		return nil, err
	}
	g.log.Infof("Generated %d test(s) in %s", len(docs), dst)
	return docs, nil
}

// GenerateDirectory converts every source file directly inside srcDir whose
// extension is one of exts (all registered extensions when empty). Output
// files are named after the source stem. A failing file is recorded and the
// remaining files are still processed.
func (g *DefaultGenerator) GenerateDirectory(srcDir, dstDir, projectKey string, exts ...string) (domain.BatchResult, error) {
	var result domain.BatchResult
	if len(exts) == 0 {
		exts = g.registry.Extensions()
	}

	log := g.log.WithField("run", shortID())
	log.Debugf("Scanning directory: %s (%s)", srcDir, joinExts(exts))

	files, err := g.scanner.List(srcDir, exts...)
	if err != nil {
		return result, err
	}
	if len(files) == 0 {
		log.Warnf("No source files found in %s", srcDir)
		return result, nil
	}
	log.Infof("Found %d source file(s)", len(files))

	for _, src := range files {
		dst := filepath.Join(dstDir, scanner.Stem(src)+".json")
		if _, err := g.GenerateFile(src, dst, projectKey); err != nil {
			log.Warnf("Conversion failed for %s: %v", src, err)
			result.AddFailure(src, err)
			continue
		}
		result.AddSuccess(src)
	}

	log.Infof("Conversion complete: %d succeeded, %d failed", len(result.Succeeded), len(result.Failed))
	return result, nil
}

// shortID returns a short identifier used to correlate the log lines of one batch.
func shortID() string {
	return uuid.NewString()[:8]
}

func joinExts(exts []string) string {
	return strings.Join(exts, ", ")
}

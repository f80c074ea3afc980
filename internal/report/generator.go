// Package report renders aggregation results into spreadsheet, document and CSV
// artifacts and publishes them atomically in the output directory.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"autosales/salesdash/internal/fileutils"
	"autosales/salesdash/internal/logging"
	"autosales/salesdash/internal/models"
	"autosales/salesdash/internal/pipelineerror"
)

// TimestampLayout is the timestamp part of generated file names.
const TimestampLayout = "20060102_150405"

// Renderer writes one artifact for result to w.
type Renderer func(w io.Writer, result *models.AggregationResult) error

// OutputDirResolver yields the directory artifacts are published in.
type OutputDirResolver interface {
	ResolveOutputDir() (string, error)
}

// filePrefixes name the artifacts of each format.
var filePrefixes = map[models.ReportFormat]string{
	models.FormatSpreadsheet: "sales_report",
	models.FormatDocument:    "summary",
	models.FormatCSV:         "chart_series",
}

// Generator creates report artifacts.
type Generator struct {
	dirs           OutputDirResolver
	keepLatestCopy bool
	logger         logging.Logger

	mu        sync.Mutex
	now       func() time.Time
	renderers map[models.ReportFormat]Renderer
}

// NewGenerator creates a Generator publishing into the directory given by dirs.
// With keepLatestCopy, PublishLatest copies artifacts to stable names such as
// sales_report.xlsx.
func NewGenerator(dirs OutputDirResolver, keepLatestCopy bool, logger logging.Logger) *Generator {
	return &Generator{
		dirs:           dirs,
		keepLatestCopy: keepLatestCopy,
		logger:         logger,
		now:            time.Now,
		renderers: map[models.ReportFormat]Renderer{
			models.FormatSpreadsheet: RenderSpreadsheet,
			models.FormatDocument:    RenderDocument,
			models.FormatCSV:         RenderSeriesCSV,
		},
	}
}

// SetRenderer replaces the renderer of a format.
func (g *Generator) SetRenderer(format models.ReportFormat, r Renderer) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.renderers[format] = r
}

// SetClock replaces the time source used for file names and timestamps.
func (g *Generator) SetClock(now func() time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.now = now
}

// Generate renders result in format and publishes it under a fresh file name.
// A render failure yields a GenerationError and a failure to write or publish
// yields a WriteError; in both cases nothing is left in the output directory.
func (g *Generator) Generate(result *models.AggregationResult, format models.ReportFormat) (*models.ReportArtifact, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.generate(result, format)
}

// GenerateAll generates every format in order. If one fails, artifacts already
// published by this call are removed and the error is returned.
func (g *Generator) GenerateAll(result *models.AggregationResult, formats []models.ReportFormat) ([]models.ReportArtifact, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	artifacts := make([]models.ReportArtifact, 0, len(formats))
	for _, format := range formats {
		artifact, err := g.generate(result, format)
		if err != nil {
			for _, published := range artifacts {
				if rmErr := os.Remove(published.Path); rmErr != nil {
					g.logger.WithError(rmErr).Warn("Failed to remove artifact after failed generation",
						logging.F(logging.FieldOutputFile, published.Path))
				}
			}
			return nil, err
		}
		artifacts = append(artifacts, *artifact)
	}
	return artifacts, nil
}

// PublishLatest copies each artifact to the stable name of its format. It is a
// no-op unless the generator keeps latest copies. Callers publish only once the
// run that produced the artifacts can no longer fail.
func (g *Generator) PublishLatest(artifacts []models.ReportArtifact) {
	if !g.keepLatestCopy {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, a := range artifacts {
		g.publishLatestCopy(a)
	}
}

func (g *Generator) generate(result *models.AggregationResult, format models.ReportFormat) (*models.ReportArtifact, error) {
	render, ok := g.renderers[format]
	if !ok {
		return nil, &pipelineerror.GenerationError{Format: string(format), Err: fmt.Errorf("unsupported report format")}
	}

	dir, err := g.dirs.ResolveOutputDir()
	if err != nil {
		return nil, err
	}

	createdAt := g.now()
	name := uniqueName(dir, filePrefixes[format], createdAt.Format(TimestampLayout), format.Extension())
	path := filepath.Join(dir, name)

	var renderErr error
	err = fileutils.WriteAtomic(path, 0644, func(w io.Writer) error {
		if err := render(w, result); err != nil {
			renderErr = err
			return err
		}
		return nil
	})
	if renderErr != nil {
		g.logger.WithError(renderErr).Error("Failed to render report", logging.F(logging.FieldFormat, string(format)))
		return nil, &pipelineerror.GenerationError{Format: string(format), Err: renderErr}
	}
	if err != nil {
		g.logger.WithError(err).Error("Failed to write report", logging.F(logging.FieldOutputFile, path))
		return nil, &pipelineerror.WriteError{Path: path, Err: err}
	}

	g.logger.Info("Published report",
		logging.F(logging.FieldFormat, string(format)),
		logging.F(logging.FieldOutputFile, path))

	return &models.ReportArtifact{
		Format:    format,
		Name:      name,
		Path:      path,
		CreatedAt: createdAt,
		Summary:   result.KPIs,
	}, nil
}

// publishLatestCopy copies an artifact to its stable name. Failures are logged
// only; the timestamped artifact stays valid.
func (g *Generator) publishLatestCopy(a models.ReportArtifact) {
	dst := filepath.Join(filepath.Dir(a.Path), LatestName(a.Format))
	if err := fileutils.CopyFileAtomic(a.Path, dst, 0644); err != nil {
		g.logger.WithError(err).Warn("Failed to publish latest report copy",
			logging.F(logging.FieldOutputFile, dst))
	}
}

// LatestName returns the stable file name of the latest artifact of format.
func LatestName(format models.ReportFormat) string {
	return filePrefixes[format] + format.Extension()
}

// uniqueName returns <prefix>_<stamp><ext>, adding _2, _3, ... while a file of
// that name already exists.
func uniqueName(dir, prefix, stamp, ext string) string {
	base := prefix + "_" + stamp
	name := base + ext
	for n := 2; fileutils.FileExists(filepath.Join(dir, name)); n++ {
		name = fmt.Sprintf("%s_%d%s", base, n, ext)
	}
	return name
}

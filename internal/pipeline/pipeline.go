// Package pipeline runs an uploaded sales table through column resolution, time
// bucketing and aggregation, then publishes the report artifacts and records the
// chart in the history.
package pipeline

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"autosales/salesdash/internal/aggregate"
	"autosales/salesdash/internal/bucket"
	"autosales/salesdash/internal/common"
	"autosales/salesdash/internal/logging"
	"autosales/salesdash/internal/mapper"
	"autosales/salesdash/internal/models"
	"autosales/salesdash/internal/pipelineerror"
	"autosales/salesdash/internal/store"
)

// ErrNoInput is returned when a request names neither a file, an upload token
// nor inline data.
var ErrNoInput = errors.New("no input table given")

// UploadResolver maps an upload token to the stored file.
type UploadResolver interface {
	OpenUpload(token string) (string, error)
}

// ReportWriter publishes report artifacts for a result. PublishLatest refreshes
// the stable copies and is only called for runs that completed.
type ReportWriter interface {
	GenerateAll(result *models.AggregationResult, formats []models.ReportFormat) ([]models.ReportArtifact, error)
	PublishLatest(artifacts []models.ReportArtifact)
}

// RunObserver is told about every finished run, successful or not.
type RunObserver interface {
	ObserveRun(mode models.TimeMode, audit *models.Audit, artifacts []models.ReportArtifact, err error, elapsed time.Duration)
}

// Request describes one pipeline run. Exactly one of Data, Token and Path is
// used, in that order of preference.
type Request struct {
	Data   []byte
	Source string
	Token  string
	Path   string

	Mapping models.ColumnMapping
	Mode    models.TimeMode

	// Formats to generate; nil means the pipeline defaults.
	Formats     []models.ReportFormat
	SkipReports bool

	// Name of the history entry; empty generates one.
	Name        string
	SkipHistory bool
	Reinsert    bool
}

// Result is what a successful run hands back to the caller.
type Result struct {
	Source      string                    `json:"source"`
	Aggregation *models.AggregationResult `json:"result"`
	Artifacts   []models.ReportArtifact   `json:"reports"`
	ChartName   string                    `json:"chart_name,omitempty"`
}

// Dependencies are the collaborators of a Pipeline.
type Dependencies struct {
	Reader         *common.TableReader
	Mapper         *mapper.Mapper
	Bucketizer     *bucket.Bucketizer
	Aggregator     *aggregate.Aggregator
	Uploads        UploadResolver
	Reports        ReportWriter
	History        store.ChartHistory
	DefaultFormats []models.ReportFormat
	Observer       RunObserver
	Logger         logging.Logger
}

// Pipeline orchestrates a run. It holds no per-run state and can be shared.
type Pipeline struct {
	deps Dependencies
}

// New creates a Pipeline. Missing stage implementations are created with the
// given logger.
func New(deps Dependencies) *Pipeline {
	if deps.Logger == nil {
		deps.Logger = logging.NewLogrusAdapter("info", "text")
	}
	if deps.Reader == nil {
		deps.Reader = common.NewTableReader(common.DefaultDelimiter, deps.Logger)
	}
	if deps.Mapper == nil {
		deps.Mapper = mapper.NewMapper(deps.Logger)
	}
	if deps.Bucketizer == nil {
		deps.Bucketizer = bucket.NewBucketizer(deps.Logger)
	}
	if deps.Aggregator == nil {
		deps.Aggregator = aggregate.NewAggregator(deps.Logger)
	}
	if len(deps.DefaultFormats) == 0 {
		deps.DefaultFormats = models.DefaultReportFormats
	}
	return &Pipeline{deps: deps}
}

// Run executes the request. Any error aborts the run without a partial result:
// artifacts published before a failing history save are removed again, and the
// stable latest copies are only refreshed after the history save succeeded.
func (p *Pipeline) Run(req Request) (res *Result, err error) {
	start := time.Now()
	log := p.deps.Logger
	if p.deps.Observer != nil {
		defer func() {
			var audit *models.Audit
			var artifacts []models.ReportArtifact
			if res != nil {
				audit = &res.Aggregation.Audit
				artifacts = res.Artifacts
			}
			p.deps.Observer.ObserveRun(req.Mode, audit, artifacts, err, time.Since(start))
		}()
	}

	table, err := p.LoadTable(req)
	if err != nil {
		return nil, err
	}

	result, err := p.Aggregate(table, req.Mapping, req.Mode)
	if err != nil {
		return nil, err
	}

	out := &Result{Source: filepath.Base(table.Source), Aggregation: result}

	if !req.SkipReports && p.deps.Reports != nil {
		formats := req.Formats
		if formats == nil {
			formats = p.deps.DefaultFormats
		}
		artifacts, err := p.deps.Reports.GenerateAll(result, formats)
		if err != nil {
			return nil, err
		}
		out.Artifacts = artifacts
	}

	if !req.SkipHistory && p.deps.History != nil {
		entry, err := p.deps.History.Save(models.ChartHistoryEntry{
			Name:       req.Name,
			SourceFile: out.Source,
			Mapping:    req.Mapping.Normalized(),
			Mode:       req.Mode,
			Result:     result,
		}, store.SaveOptions{Reinsert: req.Reinsert})
		if err != nil {
			p.discard(out.Artifacts)
			return nil, err
		}
		out.ChartName = entry.Name
	}

	if len(out.Artifacts) > 0 {
		p.deps.Reports.PublishLatest(out.Artifacts)
	}

	log.Info("Pipeline run completed",
		logging.F(logging.FieldFile, out.Source),
		logging.F(logging.FieldMode, req.Mode.String()),
		logging.F(logging.FieldCount, len(out.Artifacts)),
		logging.F(logging.FieldDuration, time.Since(start).Milliseconds()))
	return out, nil
}

// LoadTable reads the table a request refers to.
func (p *Pipeline) LoadTable(req Request) (*models.RawTable, error) {
	switch {
	case req.Data != nil:
		source := req.Source
		if source == "" {
			source = "upload"
		}
		return p.deps.Reader.Parse(req.Data, source)
	case req.Token != "":
		if p.deps.Uploads == nil {
			return nil, &pipelineerror.NotFoundError{Kind: "upload", Name: req.Token}
		}
		path, err := p.deps.Uploads.OpenUpload(req.Token)
		if err != nil {
			return nil, err
		}
		p.deps.Logger.Debug("Resolved upload token", logging.F(logging.FieldInputFile, path))
		return p.deps.Reader.ReadFile(path)
	case req.Path != "":
		p.deps.Logger.Debug("Reading input file", logging.F(logging.FieldInputFile, req.Path))
		return p.deps.Reader.ReadFile(req.Path)
	}
	return nil, ErrNoInput
}

// Aggregate resolves, buckets and aggregates a table. It fails with
// NoValidRowsError when no row survives column resolution.
func (p *Pipeline) Aggregate(table *models.RawTable, mapping models.ColumnMapping, mode models.TimeMode) (*models.AggregationResult, error) {
	resolved, err := p.deps.Mapper.Resolve(table, mapping)
	if err != nil {
		return nil, err
	}

	// Bucketing first so an unusable mode is reported even for an empty table.
	bucketed, err := p.deps.Bucketizer.Bucket(resolved, mode, mapping)
	if err != nil {
		return nil, err
	}
	if len(resolved.Rows) == 0 {
		return nil, &pipelineerror.NoValidRowsError{TotalRows: resolved.TotalRows}
	}
	return p.deps.Aggregator.Aggregate(bucketed), nil
}

func (p *Pipeline) discard(artifacts []models.ReportArtifact) {
	for _, a := range artifacts {
		if err := os.Remove(a.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			p.deps.Logger.WithError(err).Warn("Failed to remove report after aborted run",
				logging.F(logging.FieldOutputFile, a.Path))
		}
	}
}

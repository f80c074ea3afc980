// Package container provides dependency injection for the salesdash application.
// It centralizes the creation and wiring of all application dependencies,
// making them explicit and testable.
package container

import (
	"fmt"
	"path/filepath"

	"autosales/salesdash/internal/aggregate"
	"autosales/salesdash/internal/bucket"
	"autosales/salesdash/internal/common"
	"autosales/salesdash/internal/config"
	"autosales/salesdash/internal/logging"
	"autosales/salesdash/internal/mapper"
	"autosales/salesdash/internal/metrics"
	"autosales/salesdash/internal/pipeline"
	"autosales/salesdash/internal/report"
	"autosales/salesdash/internal/storage"
	"autosales/salesdash/internal/store"
)

// Container holds all application dependencies and provides methods to access them.
// It acts as the central registry for dependency injection, ensuring that all
// components receive their required dependencies through constructors.
//
// Container is immutable after creation - all fields are private and can only
// be accessed through getter methods.
type Container struct {
	logger logging.Logger
	config *config.Config

	storage  *storage.Manager
	history  *store.ChartHistoryStore
	reports  *report.Generator
	reader   *common.TableReader
	pipeline *pipeline.Pipeline
	metrics  *metrics.Recorder
}

// NewContainer creates and wires all application dependencies.
// This is the main entry point for dependency injection in the application.
func NewContainer(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	return NewContainerWithLogger(cfg, logging.NewLogrusAdapter(cfg.Log.Level, cfg.Log.Format))
}

// NewContainerWithLogger wires the dependencies around an existing logger.
func NewContainerWithLogger(cfg *config.Config, logger logging.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	// Storage locations come first: history and reports live under them
	storageManager, err := storage.NewManager(
		cfg.Storage.BaseDir,
		storage.Paths{UploadDir: cfg.Storage.UploadDir, OutputDir: cfg.Storage.OutputDir},
		cfg.Storage.SettingsFile,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	historyFile := cfg.History.File
	if !filepath.IsAbs(historyFile) {
		historyFile = filepath.Join(storageManager.BaseDir(), historyFile)
	}
	history := store.NewChartHistoryStore(historyFile, cfg.History.MaxEntries, logger)

	reports := report.NewGenerator(storageManager, cfg.Report.KeepLatestCopy, logger)
	reader := common.NewTableReader(cfg.Delimiter(), logger)
	recorder := metrics.NewRecorder()

	p := pipeline.New(pipeline.Dependencies{
		Reader:         reader,
		Mapper:         mapper.NewMapper(logger),
		Bucketizer:     bucket.NewBucketizer(logger),
		Aggregator:     aggregate.NewAggregator(logger),
		Uploads:        storageManager,
		Reports:        reports,
		History:        history,
		DefaultFormats: cfg.ReportFormats(),
		Observer:       recorder,
		Logger:         logger,
	})

	logger.Debug("Container initialized successfully",
		logging.F(logging.FieldHistory, historyFile),
		logging.F(logging.FieldDirectory, storageManager.BaseDir()))

	return &Container{
		logger:   logger,
		config:   cfg,
		storage:  storageManager,
		history:  history,
		reports:  reports,
		reader:   reader,
		pipeline: p,
		metrics:  recorder,
	}, nil
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetStorage returns the storage manager.
func (c *Container) GetStorage() *storage.Manager {
	return c.storage
}

// GetHistory returns the chart history store.
func (c *Container) GetHistory() *store.ChartHistoryStore {
	return c.history
}

// GetReports returns the report generator.
func (c *Container) GetReports() *report.Generator {
	return c.reports
}

// GetReader returns the table reader configured with the CSV delimiter.
func (c *Container) GetReader() *common.TableReader {
	return c.reader
}

// GetPipeline returns the wired pipeline.
func (c *Container) GetPipeline() *pipeline.Pipeline {
	return c.pipeline
}

// GetMetrics returns the Prometheus recorder fed by the pipeline.
func (c *Container) GetMetrics() *metrics.Recorder {
	return c.metrics
}

// Close performs cleanup of container resources.
// Every component flushes on each mutation, so there is nothing to release.
func (c *Container) Close() error {
	c.logger.Debug("Container closed")
	return nil
}

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/sinuca-magalhaes/caixa/internal/domain"
	"github.com/sinuca-magalhaes/caixa/internal/lock"
	"github.com/sinuca-magalhaes/caixa/internal/metrics"
	"github.com/sinuca-magalhaes/caixa/internal/report"
	"github.com/sinuca-magalhaes/caixa/internal/repository"
	"github.com/sinuca-magalhaes/caixa/internal/storage"
)

// DefaultMaxReportTransactions bounds a report when no limit is configured.
const DefaultMaxReportTransactions = 5000

// reportLockTTL caps how long a crashed generation can block its owner.
const reportLockTTL = 2 * time.Minute

// ReportServiceConfig contains configuration for the ReportService.
type ReportServiceConfig struct {
	// MaxTransactions is the most rows a single report may contain.
	MaxTransactions int

	// ArchivePrefix is the object key prefix for archived reports.
	ArchivePrefix string
}

// ReportService builds PDF statements for a user and period.
type ReportService struct {
	txRepo    repository.TransactionRepository
	generator *report.Generator
	archive   storage.Archive
	metrics   *metrics.Metrics
	locker    lock.Locker
	config    ReportServiceConfig
	now       func() time.Time
	logger    zerolog.Logger
}

// ReportServiceOption configures optional ReportService collaborators.
type ReportServiceOption func(*ReportService)

// WithReportLocker allows one report generation at a time per owner.
func WithReportLocker(l lock.Locker) ReportServiceOption {
	return func(s *ReportService) { s.locker = l }
}

// NewReportService creates a new ReportService. archive and m may be nil.
func NewReportService(
	txRepo repository.TransactionRepository,
	generator *report.Generator,
	archive storage.Archive,
	m *metrics.Metrics,
	config ReportServiceConfig,
	logger zerolog.Logger,
	opts ...ReportServiceOption,
) *ReportService {
	if config.MaxTransactions <= 0 {
		config.MaxTransactions = DefaultMaxReportTransactions
	}
	if archive == nil {
		archive = storage.NoopArchive{}
	}
	s := &ReportService{
		txRepo:    txRepo,
		generator: generator,
		archive:   archive,
		metrics:   m,
		locker:    lock.NoOpLocker{},
		config:    config,
		now:       func() time.Time { return time.Now().UTC() },
		logger:    logger.With().Str("service", "report").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ReportOutput is a generated report ready to be sent.
type ReportOutput struct {
	Document *report.Document
	Filename string
}

// Generate renders the owner's transactions inside period as a PDF.
func (s *ReportService) Generate(ctx context.Context, owner *domain.User, period domain.Period) (*ReportOutput, error) {
	key := lock.Keys.Report(owner.ID)
	acquired, err := s.locker.Acquire(ctx, key, reportLockTTL)
	if err != nil {
		s.logger.Error().Err(err).Int64("owner_id", owner.ID).Msg("failed to acquire report lock")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	if !acquired {
		return nil, ErrReportInProgress
	}
	defer func() {
		if _, err := s.locker.Release(context.WithoutCancel(ctx), key); err != nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("failed to release report lock")
		}
	}()

	start := s.now()

	txs, err := s.txRepo.List(ctx, owner.ID, repository.TransactionFilter{
		Period: period,
		Limit:  s.config.MaxTransactions + 1,
	})
	if err != nil {
		s.logger.Error().Err(err).Int64("owner_id", owner.ID).Msg("failed to load report transactions")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	if len(txs) > s.config.MaxTransactions {
		return nil, fmt.Errorf("%w: limit is %d, narrow the date range", ErrReportTooLarge, s.config.MaxTransactions)
	}

	doc, err := s.generator.Generate(txs, owner.Username, period.Label())
	if err != nil {
		s.logger.Error().Err(err).Int64("owner_id", owner.ID).Msg("failed to render report")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.archiveDocument(ctx, owner, doc)
	s.metrics.RecordReport(len(txs), s.now().Sub(start))

	s.logger.Info().
		Int64("owner_id", owner.ID).
		Int("transactions", len(txs)).
		Int("pages", doc.Pages).
		Msg("report generated")

	return &ReportOutput{
		Document: doc,
		Filename: fmt.Sprintf("report_%s.pdf", period.Slug()),
	}, nil
}

// archiveDocument stores a copy of the report. Failures are logged only.
func (s *ReportService) archiveDocument(ctx context.Context, owner *domain.User, doc *report.Document) {
	if !s.archive.Enabled() {
		return
	}

	key := storage.ReportKey(s.config.ArchivePrefix, owner.Username, s.now())
	err := s.archive.Put(ctx, key, doc.Bytes)
	s.metrics.RecordArchiveUpload(err == nil)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("failed to archive report")
		return
	}
	s.logger.Debug().Str("key", key).Msg("report archived")
}

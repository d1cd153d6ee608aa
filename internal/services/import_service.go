package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/errgroup"

	"pledgecli/internal/config"
	apperrors "pledgecli/internal/errors"
	"pledgecli/internal/ingest"
	"pledgecli/pkg/contracts/domain"
)

var (
	filesIngested = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pledge_files_ingested_total",
		Help: "Number of transaction export files ingested",
	})
	rowsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pledge_rows_processed_total",
		Help: "Number of data rows processed, by outcome",
	}, []string{"outcome"})
	accountsExcluded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pledge_accounts_excluded_total",
		Help: "Number of accounts excluded at comparison-row build time",
	})
	importFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pledge_import_failures_total",
		Help: "Number of import requests that failed before producing rows",
	})
)

// UploadedFile is a single file submitted for import.
type UploadedFile struct {
	Name string
	Data []byte
}

// ImportService runs the full transaction-export pipeline: read each file,
// parse and aggregate its rows, combine the per-file results, and build the
// year-over-year comparison rows.
type ImportService struct {
	logger *slog.Logger
	cfg    config.ImportConfig
	policy ingest.MergePolicy
}

// NewImportService creates an import service from configuration.
func NewImportService(cfg config.ImportConfig, logger *slog.Logger) (*ImportService, error) {
	if logger == nil {
		logger = slog.Default()
	}
	policy, err := cfg.Policy()
	if err != nil {
		return nil, apperrors.NewConfigError("invalid import configuration", err)
	}
	return &ImportService{
		logger: logger,
		cfg:    cfg,
		policy: policy,
	}, nil
}

// ImportFiles parses the given files and returns comparison rows plus the
// per-row errors collected along the way. Bad data rows never fail the
// import; structural problems (unreadable file, unknown format, too few
// fiscal years) do.
func (s *ImportService) ImportFiles(ctx context.Context, files []UploadedFile) (*domain.ImportResult, error) {
	if len(files) == 0 {
		return nil, apperrors.NewAppValidationError("no files provided")
	}

	s.logger.InfoContext(ctx, "starting import",
		slog.Int("files", len(files)),
		slog.String("category", s.cfg.CategoryKeyword),
		slog.String("merge_policy", s.policy.String()),
	)

	opts := ingest.ParseOptions{
		CategoryKeyword: s.cfg.CategoryKeyword,
		Signature:       s.cfg.Signature(),
	}

	// Files are independent until the combine step, so parse them in
	// parallel. Results are slotted by index to keep file order stable.
	results := make([]*ingest.FileResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	for i, file := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			headers, rows, err := ingest.ReadTable(file.Data, file.Name)
			if err != nil {
				return apperrors.NewParsingError(fmt.Sprintf("failed to read %s", file.Name), err)
			}
			result, err := ingest.ParseRows(headers, rows, opts)
			if err != nil {
				return apperrors.NewFormatError(fmt.Sprintf("failed to parse %s", file.Name), err)
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		importFailures.Inc()
		return nil, err
	}

	for i, result := range results {
		filesIngested.Inc()
		rowsProcessed.WithLabelValues("accepted").Add(float64(result.RowsAccepted))
		rowsProcessed.WithLabelValues("skipped").Add(float64(result.RowsSkipped))
		rowsProcessed.WithLabelValues("rejected").Add(float64(len(result.Errors)))
		s.logger.InfoContext(ctx, "file parsed",
			slog.String("file", files[i].Name),
			slog.Int("accepted", result.RowsAccepted),
			slog.Int("skipped", result.RowsSkipped),
			slog.Int("rejected", len(result.Errors)),
		)
	}

	combined, err := ingest.Combine(results, s.policy)
	if err != nil {
		importFailures.Inc()
		return nil, apperrors.NewAppValidationError(err.Error())
	}

	rows, accountErrors := ingest.BuildRows(combined)
	accountsExcluded.Add(float64(len(accountErrors)))
	current, prior, _ := combined.CurrentPrior()

	result := &domain.ImportResult{
		Rows:   rows,
		Errors: append(combined.Errors, accountErrors...),
		Stats: domain.ImportStats{
			FilesProcessed:   len(files),
			RowsRejected:     len(combined.Errors),
			AccountsExcluded: len(accountErrors),
			FiscalYears:      combined.AllYears,
			CurrentYear:      current,
			PriorYear:        prior,
		},
	}
	for _, fr := range results {
		result.Stats.RowsAccepted += fr.RowsAccepted
		result.Stats.RowsSkipped += fr.RowsSkipped
	}

	s.logger.InfoContext(ctx, "import complete",
		slog.Int("accounts", len(rows)),
		slog.Int("errors", len(result.Errors)),
		slog.Int("current_year", current),
		slog.Int("prior_year", prior),
	)
	return result, nil
}

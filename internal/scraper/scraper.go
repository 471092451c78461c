// Package scraper orchestrates the full export pipeline: chunk the requested
// range into calendar months, fetch each chunk sequentially, extract and
// accumulate raw price points, normalize them into a sorted daily series,
// forward-fill the gaps, and write the Monarch Money CSV.
package scraper

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/haffinnih/cargurus-to-monarch-money/internal/cargurus"
	"github.com/haffinnih/cargurus-to-monarch-money/internal/errkind"
	"github.com/haffinnih/cargurus-to-monarch-money/internal/export"
	"github.com/haffinnih/cargurus-to-monarch-money/internal/models"
	"github.com/haffinnih/cargurus-to-monarch-money/internal/timeseries"
)

// PriceFetcher retrieves the decoded price-history document for one vehicle
// entity over one calendar-month chunk. *cargurus.Client satisfies this.
type PriceFetcher interface {
	FetchPriceHistory(ctx context.Context, modelPath, entityID string, chunk models.DateRange) (any, error)
}

// Request holds the validated parameters for one export run. Start and End
// are assumed to have passed validate.Range.
type Request struct {
	ModelPath   string
	EntityID    string
	AccountName string
	Start       time.Time
	End         time.Time
}

// Validate checks required fields and the range invariant.
func (r Request) Validate() error {
	const op = "scraper.Request.Validate"

	if r.ModelPath == "" {
		return errkind.New(errkind.InvalidArgument, op, "missing required parameter: model path")
	}
	if r.EntityID == "" {
		return errkind.New(errkind.InvalidArgument, op, "missing required parameter: entity ID")
	}
	if r.AccountName == "" {
		return errkind.New(errkind.InvalidArgument, op, "missing required parameter: account name")
	}
	if r.Start.IsZero() || r.End.IsZero() {
		return errkind.New(errkind.InvalidDateRange, op, "start and end dates are required")
	}
	if !r.Start.Before(r.End) {
		return errkind.New(errkind.InvalidDateRange, op, "start date must be before end date")
	}
	return nil
}

// Scraper runs export pipelines. Fetches within a run are strictly
// sequential; the client's rate limiter provides the courtesy pause between
// chunks.
type Scraper struct {
	fetcher   PriceFetcher
	logger    *slog.Logger
	outputDir string
	location  *time.Location
}

// Option configures a Scraper.
type Option func(*Scraper)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scraper) { s.logger = logger }
}

// WithOutputDir sets the directory CSV files are written to.
func WithOutputDir(dir string) Option {
	return func(s *Scraper) { s.outputDir = dir }
}

// WithLocation sets the timezone used to convert upstream timestamps to
// calendar dates. Defaults to UTC.
func WithLocation(loc *time.Location) Option {
	return func(s *Scraper) { s.location = loc }
}

// New creates a Scraper around the given fetcher.
func New(fetcher PriceFetcher, opts ...Option) *Scraper {
	s := &Scraper{
		fetcher:   fetcher,
		logger:    slog.Default(),
		outputDir: "output",
		location:  time.UTC,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run executes one export and returns the path of the written CSV.
//
// A chunk that yields no data contributes zero points and the run continues;
// every other error aborts. If the aggregate series is empty after all chunks
// the run fails with kind NoPriceDataAvailable.
func (s *Scraper) Run(ctx context.Context, req Request) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	log := s.logger.With(
		"run_id", uuid.NewString(),
		"model_path", req.ModelPath,
		"entity_id", req.EntityID,
	)

	chunks := timeseries.MonthlyChunks(req.Start, req.End)
	log.Info("fetching price data in monthly chunks",
		"chunks", len(chunks),
		"start", req.Start.Format(models.DateLayout),
		"end", req.End.Format(models.DateLayout))

	var raw []models.RawPricePoint
	for i, chunk := range chunks {
		// Cancellation is the user's decision, not a transport failure;
		// it propagates unclassified.
		if err := ctx.Err(); err != nil {
			return "", err
		}

		log.Debug("fetching chunk", "index", i+1, "total", len(chunks), "chunk", chunk.String())

		doc, err := s.fetcher.FetchPriceHistory(ctx, req.ModelPath, req.EntityID, chunk)
		if err != nil {
			if errkind.IsRecoverable(err) {
				log.Info("no data for chunk, continuing", "chunk", chunk.String())
				continue
			}
			return "", err
		}

		points, err := cargurus.ExtractPricePoints(doc)
		if err != nil {
			if errkind.IsRecoverable(err) {
				log.Info("no data for chunk, continuing", "chunk", chunk.String())
				continue
			}
			return "", err
		}

		log.Debug("chunk fetched", "chunk", chunk.String(), "points", len(points))
		raw = append(raw, points...)
	}

	log.Info("data fetching complete", "total_points", len(raw))

	series := timeseries.Normalize(raw, s.location)
	log.Info("normalized price points", "points", len(series))

	filled, err := timeseries.ForwardFill(series, req.Start, req.End)
	if err != nil {
		return "", err
	}
	if len(filled) > 0 && filled[len(filled)-1].Date != series[len(series)-1].Date {
		log.Info("forward-filled past last observation",
			"last_observed", series[len(series)-1].Date,
			"filled_through", filled[len(filled)-1].Date)
	}

	path, err := export.WriteFile(filled, req.AccountName,
		req.Start.Format(models.DateLayout), req.End.Format(models.DateLayout), s.outputDir)
	if err != nil {
		return "", err
	}

	log.Info("CSV export complete", "path", path, "rows", len(filled))
	return path, nil
}

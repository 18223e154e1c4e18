package cxc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// ErrUnitNotFound indicates the requested unit does not exist.
var ErrUnitNotFound = errors.New("cxc: unit not found")

// RepositoryPort defines the document-history access the service needs.
// The repository owns all database access; the engine never touches a
// connection (see Replay).
type RepositoryPort interface {
	ListUnitDocuments(ctx context.Context, unitID int64) ([]SourceDocument, error)
	ListUnitIDs(ctx context.Context) ([]int64, error)
}

// ServiceConfig tunes the service without touching engine semantics.
type ServiceConfig struct {
	AgingCacheTTL    time.Duration
	AgingConcurrency int
}

// Service orchestrates loader and engine for the receivable endpoints.
// It is stateless: concurrent calls for different units are safe.
type Service struct {
	repo   RepositoryPort
	engine *Engine
	cache  *redis.Client
	logger *slog.Logger
	cfg    ServiceConfig
}

// NewService builds a Service instance. cache may be nil; the aging report
// is then recomputed on every call.
func NewService(repo RepositoryPort, engine *Engine, cache *redis.Client, logger *slog.Logger, cfg ServiceConfig) *Service {
	if cfg.AgingCacheTTL <= 0 {
		cfg.AgingCacheTTL = 10 * time.Minute
	}
	if cfg.AgingConcurrency <= 0 {
		cfg.AgingConcurrency = 8
	}
	return &Service{repo: repo, engine: engine, cache: cache, logger: logger, cfg: cfg}
}

// UnitStatement replays a unit's full document history. A non-zero asOf also
// yields the historical snapshot at that date.
func (s *Service) UnitStatement(ctx context.Context, unitID int64, asOf time.Time) (*ReplayResult, error) {
	documents, err := s.repo.ListUnitDocuments(ctx, unitID)
	if err != nil {
		return nil, err
	}
	result, err := s.engine.Replay(documents, asOf)
	if err != nil {
		return nil, err
	}
	for _, warning := range result.Warnings {
		s.logger.Warn("replay anomaly", slog.Int64("unit_id", unitID), slog.String("warning", warning))
	}
	return result, nil
}

// UnitStatementAsOf reconstructs the statement at a historical cutoff.
func (s *Service) UnitStatementAsOf(ctx context.Context, unitID int64, cutoff time.Time) (*Statement, error) {
	documents, err := s.repo.ListUnitDocuments(ctx, unitID)
	if err != nil {
		return nil, err
	}
	return s.engine.StatementAsOf(documents, cutoff)
}

// PreviewUnitPayment simulates a proposed payment against the unit's current
// pending debts, so the registration form can default the receivable account
// from the category the payment would extinguish first.
func (s *Service) PreviewUnitPayment(ctx context.Context, unitID int64, amount decimal.Decimal) (*PaymentPreview, error) {
	documents, err := s.repo.ListUnitDocuments(ctx, unitID)
	if err != nil {
		return nil, err
	}
	return s.engine.PreviewPayment(documents, amount)
}

// UnitAging is one unit's bucket totals inside the portfolio report.
type UnitAging struct {
	UnitID  int64         `json:"unit_id"`
	Buckets []AgingBucket `json:"buckets"`
}

// AgingReport is the portfolio-wide aging view. WarningCount totals the
// replay anomalies surfaced across all units while building the report.
type AgingReport struct {
	AsOf         time.Time     `json:"as_of"`
	Units        []UnitAging   `json:"units"`
	Totals       []AgingBucket `json:"totals"`
	WarningCount int           `json:"warning_count"`
}

// PortfolioAging computes the aging report across every unit with posted
// documents. Units replay in parallel; results merge in unit order so the
// report is deterministic. A short-lived cache absorbs dashboard refreshes.
func (s *Service) PortfolioAging(ctx context.Context, asOf time.Time) (*AgingReport, error) {
	if asOf.IsZero() {
		asOf = time.Now().UTC().Truncate(24 * time.Hour)
	}
	cacheKey := fmt.Sprintf("cxc:aging:%s", asOf.Format("2006-01-02"))
	if cached := s.cachedAging(ctx, cacheKey); cached != nil {
		return cached, nil
	}

	unitIDs, err := s.repo.ListUnitIDs(ctx)
	if err != nil {
		return nil, err
	}

	units := make([]UnitAging, len(unitIDs))
	warningCounts := make([]int, len(unitIDs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.AgingConcurrency)
	for i, unitID := range unitIDs {
		g.Go(func() error {
			documents, err := s.repo.ListUnitDocuments(gctx, unitID)
			if err != nil {
				return fmt.Errorf("unit %d: %w", unitID, err)
			}
			result, err := s.engine.Replay(documents, time.Time{})
			if err != nil {
				return fmt.Errorf("unit %d: %w", unitID, err)
			}
			units[i] = UnitAging{
				UnitID:  unitID,
				Buckets: ClassifyAging(result.PendingDebts, result.CreditBalance, asOf),
			}
			warningCounts[i] = len(result.Warnings)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &AgingReport{AsOf: asOf, Units: units, Totals: mergeBuckets(units)}
	for _, count := range warningCounts {
		report.WarningCount += count
	}
	s.storeAging(ctx, cacheKey, report)
	return report, nil
}

// mergeBuckets sums per-unit totals into portfolio totals, bucket by bucket.
func mergeBuckets(units []UnitAging) []AgingBucket {
	totals := make(map[AgingLabel]decimal.Decimal, len(agingLabels))
	for _, unit := range units {
		for _, bucket := range unit.Buckets {
			totals[bucket.Label] = totals[bucket.Label].Add(bucket.Total)
		}
	}
	merged := make([]AgingBucket, 0, len(agingLabels))
	for _, label := range agingLabels {
		merged = append(merged, AgingBucket{Label: label, Total: totals[label]})
	}
	return merged
}

func (s *Service) cachedAging(ctx context.Context, key string) *AgingReport {
	if s.cache == nil {
		return nil
	}
	data, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("aging cache read", slog.Any("error", err))
		}
		return nil
	}
	var report AgingReport
	if err := json.Unmarshal(data, &report); err != nil {
		s.logger.Warn("aging cache decode", slog.Any("error", err))
		return nil
	}
	return &report
}

func (s *Service) storeAging(ctx context.Context, key string, report *AgingReport) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(report)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, s.cfg.AgingCacheTTL).Err(); err != nil {
		s.logger.Warn("aging cache write", slog.Any("error", err))
	}
}

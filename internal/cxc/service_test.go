package cxc

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	documents map[int64][]SourceDocument
	calls     map[int64]int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{documents: make(map[int64][]SourceDocument), calls: make(map[int64]int)}
}

func (r *memoryRepo) ListUnitDocuments(ctx context.Context, unitID int64) ([]SourceDocument, error) {
	docs, ok := r.documents[unitID]
	if !ok {
		return nil, ErrUnitNotFound
	}
	r.calls[unitID]++
	return docs, nil
}

func (r *memoryRepo) ListUnitIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	for id := int64(1); id <= int64(len(r.documents)); id++ {
		if _, ok := r.documents[id]; ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func newTestService(t *testing.T, repo RepositoryPort, cache *redis.Client) *Service {
	t.Helper()
	return NewService(repo, testEngine(), cache, testLogger(), ServiceConfig{})
}

func TestUnitStatement(t *testing.T) {
	repo := newMemoryRepo()
	repo.documents[1] = []SourceDocument{
		debtDoc(1, day(2025, time.January, 1), DocumentLine{Description: "Cuota", Amount: dec(100000), AccountID: 5}),
		creditDoc(2, day(2025, time.January, 20), dec(40000)),
	}
	svc := newTestService(t, repo, nil)

	result, err := svc.UnitStatement(context.Background(), 1, time.Time{})
	require.NoError(t, err)
	require.True(t, result.CurrentBalance.Equal(dec(60000)))
	require.Nil(t, result.Snapshot)
}

func TestUnitStatementUnknownUnit(t *testing.T) {
	svc := newTestService(t, newMemoryRepo(), nil)

	_, err := svc.UnitStatement(context.Background(), 42, time.Time{})
	require.ErrorIs(t, err, ErrUnitNotFound)
}

func TestUnitStatementAsOfMatchesReplaySnapshot(t *testing.T) {
	docs := []SourceDocument{
		debtDoc(1, day(2025, time.January, 1), DocumentLine{Description: "Cuota", Amount: dec(100000), AccountID: 5}),
		creditDoc(2, day(2025, time.March, 1), dec(100000)),
	}
	repo := newMemoryRepo()
	repo.documents[1] = docs
	svc := newTestService(t, repo, nil)
	cutoff := day(2025, time.February, 1)

	statement, err := svc.UnitStatementAsOf(context.Background(), 1, cutoff)
	require.NoError(t, err)

	replayed, err := svc.UnitStatement(context.Background(), 1, cutoff)
	require.NoError(t, err)
	require.True(t, statement.Balance.Equal(replayed.Snapshot.Balance))
	require.Equal(t, replayed.Snapshot.PendingDebts, statement.PendingDebts)
}

func TestPreviewUnitPayment(t *testing.T) {
	repo := newMemoryRepo()
	repo.documents[1] = []SourceDocument{
		debtDoc(1, day(2025, time.January, 1), DocumentLine{Description: "Interes de mora", Amount: dec(5000), AccountID: 4101}),
	}
	svc := newTestService(t, repo, nil)

	preview, err := svc.PreviewUnitPayment(context.Background(), 1, dec(5000))
	require.NoError(t, err)
	require.Equal(t, CategoryInterest, preview.PrimaryCategory)
	require.True(t, preview.Surplus.IsZero())
}

func TestPortfolioAgingMergesUnits(t *testing.T) {
	repo := newMemoryRepo()
	repo.documents[1] = []SourceDocument{
		debtDoc(1, day(2025, time.January, 1), DocumentLine{Description: "Cuota", Amount: dec(100000), AccountID: 5}),
	}
	repo.documents[2] = []SourceDocument{
		debtDoc(1, day(2025, time.January, 1), DocumentLine{Description: "Cuota", Amount: dec(50000), AccountID: 5}),
		creditDoc(2, day(2025, time.January, 10), dec(80000)),
	}
	svc := newTestService(t, repo, nil)

	report, err := svc.PortfolioAging(context.Background(), day(2025, time.June, 1))
	require.NoError(t, err)
	require.Len(t, report.Units, 2)

	// Unit 1 owes 100000 over 90 days; unit 2 holds a 30000 credit balance.
	over90 := bucketByLabel(t, report.Totals, AgingOver90)
	require.True(t, over90.Total.Equal(dec(100000)))
	current := bucketByLabel(t, report.Totals, AgingCurrent)
	require.True(t, current.Total.Equal(dec(-30000)))
}

func TestPortfolioAgingUsesCache(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = cache.Close() })

	repo := newMemoryRepo()
	repo.documents[1] = []SourceDocument{
		debtDoc(1, day(2025, time.January, 1), DocumentLine{Description: "Cuota", Amount: dec(100000), AccountID: 5}),
	}
	svc := newTestService(t, repo, cache)
	asOf := day(2025, time.June, 1)

	first, err := svc.PortfolioAging(context.Background(), asOf)
	require.NoError(t, err)
	require.Equal(t, 1, repo.calls[1])

	second, err := svc.PortfolioAging(context.Background(), asOf)
	require.NoError(t, err)
	require.Equal(t, 1, repo.calls[1], "second call must come from cache")
	require.Equal(t, first.AsOf.Unix(), second.AsOf.Unix())
	require.True(t, bucketByLabel(t, second.Totals, AgingOver90).Total.Equal(dec(100000)))
}

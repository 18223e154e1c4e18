package cxc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func bucketByLabel(t *testing.T, buckets []AgingBucket, label AgingLabel) AgingBucket {
	t.Helper()
	for _, b := range buckets {
		if b.Label == label {
			return b
		}
	}
	t.Fatalf("bucket %s not found", label)
	return AgingBucket{}
}

func TestClassifyAgingBuckets(t *testing.T) {
	reference := day(2025, time.December, 31)
	debts := []Debt{
		{ID: 1, Date: day(2025, time.December, 31), Category: CategoryCapital, RemainingBalance: dec(100), Description: "hoy"},
		{ID: 2, Date: day(2025, time.December, 15), Category: CategoryCapital, RemainingBalance: dec(200), Description: "16 dias"},
		{ID: 3, Date: day(2025, time.November, 10), Category: CategoryCapital, RemainingBalance: dec(300), Description: "51 dias"},
		{ID: 4, Date: day(2025, time.October, 10), Category: CategoryFine, RemainingBalance: dec(400), Description: "82 dias"},
		{ID: 5, Date: day(2025, time.June, 1), Category: CategoryInterest, RemainingBalance: dec(500), Description: "213 dias"},
	}

	buckets := ClassifyAging(debts, dec(0), reference)
	require.Len(t, buckets, 5)

	require.True(t, bucketByLabel(t, buckets, AgingCurrent).Total.Equal(dec(100)))
	require.True(t, bucketByLabel(t, buckets, Aging0To30).Total.Equal(dec(200)))
	require.True(t, bucketByLabel(t, buckets, Aging31To60).Total.Equal(dec(300)))
	require.True(t, bucketByLabel(t, buckets, Aging61To90).Total.Equal(dec(400)))
	require.True(t, bucketByLabel(t, buckets, AgingOver90).Total.Equal(dec(500)))
}

func TestClassifyAgingCreditBalanceIsNegativeCurrentEntry(t *testing.T) {
	reference := day(2025, time.December, 31)
	debts := []Debt{
		{ID: 1, Date: day(2025, time.December, 31), Category: CategoryCapital, RemainingBalance: dec(100)},
	}

	buckets := ClassifyAging(debts, dec(40), reference)
	current := bucketByLabel(t, buckets, AgingCurrent)

	require.True(t, current.Total.Equal(dec(60)))
	require.Len(t, current.Entries, 2)
	require.Equal(t, "Saldo a favor", current.Entries[0].Description)
	require.True(t, current.Entries[0].Amount.Equal(dec(-40)))
}

func TestClassifyAgingKeepsDebtOrderWithinBucket(t *testing.T) {
	reference := day(2025, time.December, 31)
	debts := []Debt{
		{ID: 1, Date: day(2025, time.June, 1), RemainingBalance: dec(10)},
		{ID: 2, Date: day(2025, time.June, 5), RemainingBalance: dec(20)},
		{ID: 3, Date: day(2025, time.June, 9), RemainingBalance: dec(30)},
	}

	buckets := ClassifyAging(debts, dec(0), reference)
	over90 := bucketByLabel(t, buckets, AgingOver90)
	require.Len(t, over90.Entries, 3)
	require.Equal(t, int64(1), over90.Entries[0].DebtID)
	require.Equal(t, int64(2), over90.Entries[1].DebtID)
	require.Equal(t, int64(3), over90.Entries[2].DebtID)
}

func TestClassifyAgingEmptyPortfolioStillReportsAllBuckets(t *testing.T) {
	buckets := ClassifyAging(nil, dec(0), day(2025, time.December, 31))
	require.Len(t, buckets, 5)
	for _, b := range buckets {
		require.True(t, b.Total.IsZero())
		require.Empty(t, b.Entries)
	}
}

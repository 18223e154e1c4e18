package cxc

import (
	"time"

	"github.com/shopspring/decimal"
)

// agingLabels fixes the bucket order for reports.
var agingLabels = []AgingLabel{AgingCurrent, Aging0To30, Aging31To60, Aging61To90, AgingOver90}

// ClassifyAging buckets pending debts by how many days overdue they are at
// the reference date. A positive credit balance is reported as a negative
// entry inside CURRENT so statement totals reconcile with the replay balance.
// Entries keep the original debt order within each bucket.
func ClassifyAging(pendingDebts []Debt, creditBalance decimal.Decimal, referenceDate time.Time) []AgingBucket {
	grouped := make(map[AgingLabel][]AgingEntry, len(agingLabels))

	if creditBalance.IsPositive() {
		grouped[AgingCurrent] = append(grouped[AgingCurrent], AgingEntry{
			Description: "Saldo a favor",
			Date:        referenceDate,
			Amount:      creditBalance.Neg(),
		})
	}

	for _, debt := range pendingDebts {
		label := bucketFor(debt.Date, referenceDate)
		grouped[label] = append(grouped[label], AgingEntry{
			DebtID:      debt.ID,
			Category:    debt.Category,
			Description: debt.Description,
			Date:        debt.Date,
			Amount:      debt.RemainingBalance,
		})
	}

	buckets := make([]AgingBucket, 0, len(agingLabels))
	for _, label := range agingLabels {
		total := decimal.Zero
		for _, entry := range grouped[label] {
			total = total.Add(entry.Amount)
		}
		buckets = append(buckets, AgingBucket{Label: label, Total: total, Entries: grouped[label]})
	}
	return buckets
}

func bucketFor(debtDate, referenceDate time.Time) AgingLabel {
	days := int(referenceDate.Sub(debtDate).Hours() / 24)
	switch {
	case days <= 0:
		return AgingCurrent
	case days <= 30:
		return Aging0To30
	case days <= 60:
		return Aging31To60
	case days <= 90:
		return Aging61To90
	default:
		return AgingOver90
	}
}

package cxc

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentPreview describes how a proposed payment would be applied without
// registering anything.
type PaymentPreview struct {
	Allocations []Allocation    `json:"allocations"`
	Surplus     decimal.Decimal `json:"surplus"`
	// PrimaryCategory is the category of the first debt the payment would
	// extinguish; the registration form defaults the receivable account
	// from it. Empty when the whole amount becomes credit balance.
	PrimaryCategory Category `json:"primary_category,omitempty"`
	// ReceivableAccountIDs lists the configured receivable accounts the
	// registration form may post against, in stable order.
	ReceivableAccountIDs []int64 `json:"receivable_account_ids,omitempty"`
}

// PreviewPayment replays the history and simulates allocating amount against
// the resulting pending debts under the standard priority rule. The replayed
// state is discarded; nothing is persisted.
func (e *Engine) PreviewPayment(documents []SourceDocument, amount decimal.Decimal) (*PaymentPreview, error) {
	if !amount.IsPositive() {
		return nil, &ValidationError{Reason: "payment amount must be positive"}
	}
	result, err := e.Replay(documents, time.Time{})
	if err != nil {
		return nil, err
	}

	st := &replayState{}
	for i := range result.PendingDebts {
		debt := result.PendingDebts[i]
		st.debts = append(st.debts, &debt)
	}
	allocations, leftover := st.allocate(amount)

	preview := &PaymentPreview{
		Allocations:          allocations,
		Surplus:              leftover,
		ReceivableAccountIDs: sortedAccountIDs(e.cfg.ReceivableAccountIDs),
	}
	if len(allocations) > 0 {
		preview.PrimaryCategory = allocations[0].Category
	}
	return preview, nil
}

func sortedAccountIDs(set map[int64]struct{}) []int64 {
	if len(set) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

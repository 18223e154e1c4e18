package cxc

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// ValidationError marks input the engine refuses to replay. It aborts the
// computation; no partial result is returned.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "cxc: " + e.Reason
}

// Engine replays a unit's document history and reconstructs which debt each
// payment extinguished under the legal payment priority (interest, then
// fines, then principal). It is stateless: every call operates on caller
// owned data and identical input yields identical output.
type Engine struct {
	cfg Config
}

// NewEngine builds an engine with the classification config injected.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// creditLedger tracks unapplied payment surplus (saldo a favor).
// The balance never goes negative.
type creditLedger struct {
	balance decimal.Decimal
}

func (l *creditLedger) add(amount decimal.Decimal) {
	l.balance = l.balance.Add(amount)
}

// consume takes up to amount from the ledger and returns how much it took.
func (l *creditLedger) consume(amount decimal.Decimal) decimal.Decimal {
	taken := decimal.Min(l.balance, amount)
	if taken.IsNegative() {
		return decimal.Zero
	}
	l.balance = l.balance.Sub(taken)
	return taken
}

// replayState is the accumulator for one replay pass.
type replayState struct {
	debts        []*Debt
	credit       creditLedger
	transactions []Transaction
	warnings     []string
	nextDebtID   int64
}

func (st *replayState) balance() decimal.Decimal {
	total := decimal.Zero
	for _, d := range st.debts {
		total = total.Add(d.RemainingBalance)
	}
	return total.Sub(st.credit.balance)
}

// candidates returns open debts ordered by (category priority, creation
// order). The stable sort keeps earlier debts first within a category.
func (st *replayState) candidates() []*Debt {
	var open []*Debt
	for _, d := range st.debts {
		if d.RemainingBalance.IsPositive() {
			open = append(open, d)
		}
	}
	sort.SliceStable(open, func(i, j int) bool {
		return categoryPriority(open[i].Category) < categoryPriority(open[j].Category)
	})
	return open
}

// allocate applies available funds to open debts in priority order and
// returns the allocations made plus whatever could not be applied.
func (st *replayState) allocate(available decimal.Decimal) ([]Allocation, decimal.Decimal) {
	var allocations []Allocation
	for _, debt := range st.candidates() {
		if !available.IsPositive() {
			break
		}
		applied := decimal.Min(debt.RemainingBalance, available)
		debt.RemainingBalance = debt.RemainingBalance.Sub(applied)
		available = available.Sub(applied)
		allocations = append(allocations, Allocation{
			DebtID:        debt.ID,
			Category:      debt.Category,
			AmountApplied: applied,
		})
	}
	return allocations, available
}

// snapshot copies the current open debts and credit balance by value.
func (st *replayState) snapshot(date time.Time) *Snapshot {
	snap := &Snapshot{
		Date:          date,
		CreditBalance: st.credit.balance,
		Balance:       st.balance(),
	}
	for _, d := range st.debts {
		if d.RemainingBalance.IsPositive() {
			snap.PendingDebts = append(snap.PendingDebts, *d)
		}
	}
	return snap
}

// Replay consumes the unit's documents in order and returns the
// reconstructed receivable state. Documents must arrive sorted by
// (date, id); the engine checks the ordering but never re-sorts.
// A non-zero asOf additionally captures a Snapshot at the last document
// dated on or before it, in the same pass.
func (e *Engine) Replay(documents []SourceDocument, asOf time.Time) (*ReplayResult, error) {
	if err := checkOrder(documents); err != nil {
		return nil, err
	}

	st := &replayState{}
	wantSnapshot := !asOf.IsZero()
	var snap *Snapshot
	if wantSnapshot {
		// Covers the case where every document postdates the cutoff.
		snap = st.snapshot(asOf)
	}

	for _, doc := range documents {
		var allocations []Allocation
		switch doc.Kind {
		case KindDebt:
			allocations = st.applyDebtDocument(doc, e.cfg)
		case KindCredit:
			var err error
			allocations, err = st.applyCreditDocument(doc)
			if err != nil {
				return nil, err
			}
		default:
			return nil, &ValidationError{Reason: fmt.Sprintf("document %d has unknown kind %q", doc.ID, doc.Kind)}
		}

		st.transactions = append(st.transactions, Transaction{
			SourceDocumentID: doc.ID,
			Date:             doc.Date,
			RunningBalance:   st.balance(),
			Allocations:      allocations,
		})

		if wantSnapshot && !doc.Date.After(asOf) {
			snap = st.snapshot(doc.Date)
		}
	}

	result := &ReplayResult{
		Transactions:   st.transactions,
		CurrentBalance: st.balance(),
		CreditBalance:  st.credit.balance,
		Snapshot:       snap,
		Warnings:       st.warnings,
	}
	for _, d := range st.debts {
		if d.RemainingBalance.IsPositive() {
			result.PendingDebts = append(result.PendingDebts, *d)
		}
	}
	return result, nil
}

// applyDebtDocument creates one debt per qualifying line, then immediately
// consumes any standing credit balance against the new debts under the same
// priority rule as payments. This models advances paid before invoicing.
func (st *replayState) applyDebtDocument(doc SourceDocument, cfg Config) []Allocation {
	if doc.Total().IsZero() {
		// Offsetting lines cancel each other out; the document leaves the
		// receivable untouched.
		st.warnings = append(st.warnings, fmt.Sprintf("document %d: lines sum to zero, no debt recorded", doc.ID))
		return nil
	}
	for _, line := range doc.Lines {
		if !line.Amount.IsPositive() {
			st.warnings = append(st.warnings, fmt.Sprintf("document %d: line %q has non-positive amount %s, skipped", doc.ID, line.Description, line.Amount))
			continue
		}
		category, matched := Classify(line, cfg)
		if !matched {
			st.warnings = append(st.warnings, fmt.Sprintf("document %d: line %q matched no classification rule, defaulted to CAPITAL", doc.ID, line.Description))
		}
		st.nextDebtID++
		st.debts = append(st.debts, &Debt{
			ID:               st.nextDebtID,
			SourceDocumentID: doc.ID,
			Date:             doc.Date,
			Category:         category,
			OriginalAmount:   line.Amount,
			RemainingBalance: line.Amount,
			Description:      line.Description,
		})
	}
	if !st.credit.balance.IsPositive() {
		return nil
	}
	available := st.credit.consume(st.credit.balance)
	allocations, leftover := st.allocate(available)
	st.credit.add(leftover)
	return allocations
}

// applyCreditDocument allocates a payment or credit note across open debts;
// any surplus is kept as credit balance for future invoices.
func (st *replayState) applyCreditDocument(doc SourceDocument) ([]Allocation, error) {
	available := doc.Total()
	if !available.IsPositive() {
		return nil, &ValidationError{Reason: fmt.Sprintf("credit document %d has non-positive amount %s", doc.ID, available)}
	}
	allocations, leftover := st.allocate(available)
	if leftover.IsPositive() {
		st.credit.add(leftover)
	}
	return allocations, nil
}

// checkOrder verifies the (date, id) precondition in one linear pass.
func checkOrder(documents []SourceDocument) error {
	for i := 1; i < len(documents); i++ {
		prev, cur := documents[i-1], documents[i]
		if cur.Date.Before(prev.Date) || (cur.Date.Equal(prev.Date) && cur.ID <= prev.ID) {
			return &ValidationError{Reason: fmt.Sprintf("documents out of order: %d before %d", prev.ID, cur.ID)}
		}
	}
	return nil
}

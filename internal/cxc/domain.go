package cxc

import (
	"time"

	"github.com/shopspring/decimal"
)

// DocumentKind distinguishes charge documents from payment/credit documents.
type DocumentKind string

const (
	KindDebt   DocumentKind = "DEBT"
	KindCredit DocumentKind = "CREDIT"
)

// Category classifies a debt line for payment priority purposes.
type Category string

const (
	CategoryInterest Category = "INTEREST"
	CategoryFine     Category = "FINE"
	CategoryCapital  Category = "CAPITAL"
)

// categoryPriority orders categories for payment application. Lower applies first.
func categoryPriority(c Category) int {
	switch c {
	case CategoryInterest:
		return 1
	case CategoryFine:
		return 2
	default:
		return 3
	}
}

// DocumentLine is a raw, unclassified line from a posted document.
type DocumentLine struct {
	Description string
	Amount      decimal.Decimal
	AccountID   int64
}

// SourceDocument is an immutable posted document supplied by the ledger.
// Voided documents are excluded upstream and never reach the engine.
type SourceDocument struct {
	ID    int64
	Date  time.Time
	Kind  DocumentKind
	Lines []DocumentLine
}

// Total sums the document lines.
func (d SourceDocument) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range d.Lines {
		total = total.Add(line.Amount)
	}
	return total
}

// Debt is an outstanding obligation derived from an invoice line during replay.
// It exists only for the duration of one replay call.
type Debt struct {
	ID               int64           `json:"id"`
	SourceDocumentID int64           `json:"source_document_id"`
	Date             time.Time       `json:"date"`
	Category         Category        `json:"category"`
	OriginalAmount   decimal.Decimal `json:"original_amount"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
	Description      string          `json:"description"`
}

// Allocation records how much of a payment reduced a specific debt.
type Allocation struct {
	DebtID        int64           `json:"debt_id"`
	Category      Category        `json:"category"`
	AmountApplied decimal.Decimal `json:"amount_applied"`
}

// Transaction is one audit-log entry per processed document.
type Transaction struct {
	SourceDocumentID int64           `json:"source_document_id"`
	Date             time.Time       `json:"date"`
	RunningBalance   decimal.Decimal `json:"running_balance"`
	Allocations      []Allocation    `json:"allocations"`
}

// Snapshot freezes the replay state as of a cutoff date.
type Snapshot struct {
	Date          time.Time       `json:"date"`
	PendingDebts  []Debt          `json:"pending_debts"`
	CreditBalance decimal.Decimal `json:"credit_balance"`
	Balance       decimal.Decimal `json:"balance"`
}

// ReplayResult is the full outcome of one replay pass.
type ReplayResult struct {
	PendingDebts   []Debt
	Transactions   []Transaction
	CurrentBalance decimal.Decimal
	CreditBalance  decimal.Decimal
	Snapshot       *Snapshot
	Warnings       []string
}

// Statement is the snapshot view exposed by StatementAsOf.
type Statement struct {
	PendingDebts  []Debt
	Balance       decimal.Decimal
	CreditBalance decimal.Decimal
}

// AgingLabel names an overdue-age bucket.
type AgingLabel string

const (
	AgingCurrent AgingLabel = "CURRENT"
	Aging0To30   AgingLabel = "0_30"
	Aging31To60  AgingLabel = "31_60"
	Aging61To90  AgingLabel = "61_90"
	AgingOver90  AgingLabel = "OVER_90"
)

// AgingEntry is one line inside an aging bucket. A positive credit balance
// shows up as a negative entry inside the CURRENT bucket.
type AgingEntry struct {
	DebtID      int64           `json:"debt_id,omitempty"`
	Category    Category        `json:"category,omitempty"`
	Description string          `json:"description"`
	Date        time.Time       `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
}

// AgingBucket groups outstanding debts by overdue age.
type AgingBucket struct {
	Label   AgingLabel      `json:"label"`
	Total   decimal.Decimal `json:"total"`
	Entries []AgingEntry    `json:"entries,omitempty"`
}

// Config drives debt classification and receivable-account defaults.
// It is injected per call; the engine itself holds no mutable state.
type Config struct {
	InterestAccountIDs   map[int64]struct{}
	FineAccountIDs       map[int64]struct{}
	ReceivableAccountIDs map[int64]struct{}
}

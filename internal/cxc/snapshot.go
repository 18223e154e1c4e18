package cxc

import (
	"time"
)

// StatementAsOf reconstructs a unit's statement at a historical cutoff date.
// It is a naming wrapper over Replay with the cutoff set: the snapshot is
// captured during the same pass, never by a second replay. A zero cutoff
// means "no cutoff" and returns the current state.
func (e *Engine) StatementAsOf(documents []SourceDocument, cutoff time.Time) (*Statement, error) {
	result, err := e.Replay(documents, cutoff)
	if err != nil {
		return nil, err
	}
	if result.Snapshot == nil {
		return &Statement{
			PendingDebts:  result.PendingDebts,
			Balance:       result.CurrentBalance,
			CreditBalance: result.CreditBalance,
		}, nil
	}
	snap := result.Snapshot
	return &Statement{
		PendingDebts:  snap.PendingDebts,
		Balance:       snap.Balance,
		CreditBalance: snap.CreditBalance,
	}, nil
}

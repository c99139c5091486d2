package mocks

import (
	"context"

	"github.com/taskdeck/taskdeck/internal/store"
)

// PassthroughTxRunner implements tasks.TxRunner without a database:
// the function runs directly with a nil transaction. Paired with the
// in-memory stores (whose WithTx returns themselves) it lets service
// tests exercise full transactional flows.
type PassthroughTxRunner struct {
	// Err, when set, is returned without running the function.
	Err error
}

// RunInTransaction executes fn immediately with a nil transaction.
func (r *PassthroughTxRunner) RunInTransaction(ctx context.Context, fn store.TxFn) error {
	if r.Err != nil {
		return r.Err
	}
	return fn(ctx, nil)
}

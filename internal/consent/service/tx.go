package service

import "context"

// TxRunner wraps a consent write and its paired audit entry in one
// transactional boundary. The PostgreSQL runner lives in cmd/server where the
// *sql.DB is wired; stores pick the transaction up from context.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// NoopTx executes the closure directly. Used with the in-memory stores, which
// have no transactions; the write pair is then best-effort sequential.
type NoopTx struct{}

func (NoopTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

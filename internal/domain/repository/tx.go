package repository

import "context"

// TxManager runs a function inside a single store transaction. The
// transaction handle travels in the context; every repository call made with
// that context joins the same transaction. The transaction commits when fn
// returns nil and rolls back when fn returns an error, panics, or the
// context is cancelled — no partial writes ever become visible.
type TxManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

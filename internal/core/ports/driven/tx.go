package driven

import "context"

// Tx is an opaque unit-of-work handle. The postgres adapter backs it with a
// *sql.Tx; in-memory mocks ignore it. Services never inspect the handle,
// they only thread it through store calls via WithTx.
type Tx interface{}

// TxManager opens a unit of work and runs fn inside it. The transaction is
// committed when fn returns nil and rolled back entirely on any error - no
// step of a multi-step operation is individually committed.
type TxManager interface {
	InTx(ctx context.Context, fn func(tx Tx) error) error
}

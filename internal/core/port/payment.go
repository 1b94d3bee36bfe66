package port

import (
	"context"
	"errors"
	"math/big"

	"reward-ledger/internal/core/domain"
)

// ErrPaymentRejected is wrapped by Payment implementations when a transfer
// is refused, for example for lack of balance.
var ErrPaymentRejected = errors.New("payment rejected")

// Payment is the external token transfer capability. The ledger uses it to
// pull campaign funding from creators, pay claimants and return unspent
// funds. A returned error aborts the enclosing ledger operation.
type Payment interface {
	Transfer(ctx context.Context, token, from, to domain.Address, amount *big.Int) error
}

// TxPayment is a Payment whose balances live in the ledger's own KVStore.
// The ledger stages its transfers in the transaction of the operation that
// causes them, so the payout and the ledger writes commit or roll back
// together.
type TxPayment interface {
	Payment
	TransferTx(ctx context.Context, tx KVTx, token, from, to domain.Address, amount *big.Int) error
}

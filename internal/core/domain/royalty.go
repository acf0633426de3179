package domain

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// FeeDenominator is the basis point scale of the royalty fee.
const FeeDenominator = 10_000

// Royalty is the single collection-wide royalty. It is not per campaign.
type Royalty struct {
	Receiver       common.Address
	FeeBasisPoints uint16
}

// NewRoyalty validates a royalty setting.
func NewRoyalty(receiver common.Address, feeBasisPoints uint16) (Royalty, error) {
	if feeBasisPoints > FeeDenominator {
		return Royalty{}, ErrFeeTooHigh
	}
	return Royalty{Receiver: receiver, FeeBasisPoints: feeBasisPoints}, nil
}

// Configured reports whether a royalty has been set and not cleared.
func (r Royalty) Configured() bool {
	return r.Receiver != NullAccount
}

// Info returns the receiver and fee owed for a sale at salePrice.
// amount = salePrice * fee / 10000, truncated. An unset royalty yields
// (NullAccount, 0).
func (r Royalty) Info(salePrice uint256.Int) (common.Address, uint256.Int) {
	var amount uint256.Int
	if !r.Configured() {
		return NullAccount, amount
	}
	// The quotient never exceeds salePrice, so the overflow flag is unused.
	amount.MulDivOverflow(&salePrice, uint256.NewInt(uint64(r.FeeBasisPoints)), uint256.NewInt(FeeDenominator))
	return r.Receiver, amount
}

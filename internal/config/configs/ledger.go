package configs

import "github.com/ethereum/go-ethereum/common"

// Ledger identifies the collection and its privileged operator.
type Ledger struct {
	// Operator is the only account allowed to create, mint, fund, pause and
	// configure royalties. It must be a 0x-prefixed hex address.
	Operator common.Address `env:"OPERATOR"`
	Name     string         `env:"NAME" envDefault:"The Real Dream"`
	Symbol   string         `env:"SYMBOL" envDefault:"TRD"`
}

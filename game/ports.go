package game

import (
	"context"

	"github.com/brson/contract-game/internal/abi"
	"github.com/brson/contract-game/internal/model"
)

// Connector opens a transport to a node endpoint.
type Connector interface {
	Connect(ctx context.Context, endpoint string) (Node, error)
}

// Node is an open link to one chain node.
type Node interface {
	Chain(ctx context.Context) (string, error)
	NodeName(ctx context.Context) (string, error)
	NodeVersion(ctx context.Context) (string, error)
	// AccountBalance reads the System.Account entry of an account ID
	AccountBalance(ctx context.Context, accountID []byte) (*model.AccountBalance, error)
	// Contract binds a deployed contract to its interface descriptor
	Contract(address abi.AccountID, md *abi.Metadata) (ContractGateway, error)
	Close()
}

// ContractGateway calls the entry points of one deployed contract.
type ContractGateway interface {
	// Read performs a zero-value read-only call on behalf of origin
	Read(ctx context.Context, origin abi.AccountID, message string, args ...interface{}) (*model.CallResult, error)
	// Exec submits a signed state-mutating call and waits for its inclusion.
	// gasLimit <= 0 selects the call-weight ceiling.
	Exec(ctx context.Context, signer *model.SignerIdentity, message string, gasLimit int64, args ...interface{}) (*model.TxOutcome, error)
}

// Keyring derives signer identities from secrets.
type Keyring interface {
	Derive(secret string) (*model.SignerIdentity, error)
}

// MetadataSource loads the contract interface descriptor.
type MetadataSource interface {
	Load(ctx context.Context) (*abi.Metadata, error)
}

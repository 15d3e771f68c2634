package game

import (
	"context"
	"errors"
	"fmt"

	"github.com/brson/contract-game/internal/abi"
	"github.com/brson/contract-game/internal/crypto"
)

const (
	msgGameReady = "game_ready"

	// gameReadyExpected is compared byte for byte with the raw probe output.
	// The leading "(" is 0x28, the SCALE compact length prefix of the
	// 10-byte string "heck, yeah".
	gameReadyExpected = "(heck, yeah"
)

// Contract is the session handle for a contract that passed the liveness probe
type Contract struct {
	Address   string
	AccountID abi.AccountID
	Metadata  *abi.Metadata
	Gateway   ContractGateway
}

// CheckContract binds the contract at address to md and probes game_ready.
// It succeeds only if the call succeeds and the output equals the expected
// literal exactly.
func CheckContract(ctx context.Context, conn *Connection, md *abi.Metadata, address string) (*Contract, error) {
	const op = "check contract"

	if conn == nil || conn.Node == nil {
		return nil, stepError(KindInput, op, ErrPrerequisite)
	}
	if md == nil {
		return nil, stepError(KindDescriptor, op, errors.New("contract metadata not loaded"))
	}

	raw, _, err := crypto.DecodeAddress(address)
	if err != nil {
		return nil, stepError(KindInput, op, fmt.Errorf("invalid contract address: %w", err))
	}
	accountID, err := abi.NewAccountID(raw)
	if err != nil {
		return nil, stepError(KindInput, op, err)
	}

	gateway, err := conn.Node.Contract(accountID, md)
	if err != nil {
		return nil, stepError(KindDescriptor, op, err)
	}

	res, err := gateway.Read(ctx, accountID, msgGameReady)
	if err != nil {
		return nil, stepError(KindTransport, op, err)
	}
	if res.Failed() {
		return nil, stepError(KindContract, op, ErrContractNotReady)
	}
	if string(res.Data) != gameReadyExpected {
		return nil, stepError(KindMismatch, op, ErrContractNotReady)
	}

	return &Contract{
		Address:   address,
		AccountID: accountID,
		Metadata:  md,
		Gateway:   gateway,
	}, nil
}

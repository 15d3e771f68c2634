package game

import (
	"context"
	"fmt"

	"github.com/brson/contract-game/internal/model"
)

// Authenticate derives the signer identity for secret and reads its balance
// as a connectivity check. On a failed balance read the derived identity is
// still returned alongside the error.
func Authenticate(ctx context.Context, keyring Keyring, conn *Connection, secret string) (*model.SignerIdentity, *model.AccountBalance, error) {
	const op = "authenticate"

	if conn == nil || conn.Node == nil {
		return nil, nil, stepError(KindInput, op, ErrPrerequisite)
	}

	identity, err := keyring.Derive(secret)
	if err != nil {
		return nil, nil, stepError(KindInput, op, err)
	}

	balance, err := conn.Node.AccountBalance(ctx, identity.PublicKey)
	if err != nil {
		return identity, nil, stepError(KindTransport, op, fmt.Errorf("failed to read account %s: %w", identity.Address, err))
	}
	balance.Address = identity.Address

	return identity, balance, nil
}

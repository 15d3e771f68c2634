package crypto

import (
	"errors"
	"fmt"
	"strings"

	"github.com/brson/contract-game/internal/model"

	"github.com/vedhavyas/go-subkey/v2"
	"github.com/vedhavyas/go-subkey/v2/sr25519"
)

// Keyring derives sr25519 keypairs from secret URIs such as "//Alice"
// or "<mnemonic>//hard/soft///password".
type Keyring struct {
	network uint16
}

// NewKeyring creates a keyring that renders addresses for the given SS58 network
func NewKeyring(network uint16) *Keyring {
	return &Keyring{network: network}
}

// Derive derives the signer identity for a secret.
// The result depends only on the secret and the keyring network.
func (k *Keyring) Derive(secret string) (*model.SignerIdentity, error) {
	if secret == "" {
		return nil, errors.New("secret cannot be empty")
	}

	kp, err := subkey.DeriveKeyPair(sr25519.Scheme{}, secret)
	if err != nil {
		return nil, fmt.Errorf("failed to derive keypair: %w", err)
	}

	public := kp.Public()
	address, err := EncodeAddress(public, k.network)
	if err != nil {
		return nil, fmt.Errorf("failed to encode address: %w", err)
	}

	return &model.SignerIdentity{
		Name:      displayName(secret),
		Address:   address,
		PublicKey: public,
		Secret:    secret,
	}, nil
}

// displayName names dev accounts after their last junction ("//Alice" -> "Alice").
// Phrases stay anonymous.
func displayName(secret string) string {
	if !strings.HasPrefix(secret, "//") {
		return ""
	}
	path := secret
	if i := strings.Index(path, "///"); i >= 0 {
		path = path[:i]
	}
	parts := strings.FieldsFunc(path, func(r rune) bool { return r == '/' })
	if len(parts) == 0 {
		return ""
	}
	return parts[len(parts)-1]
}

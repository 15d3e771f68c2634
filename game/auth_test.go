package game

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthenticate(t *testing.T) {
	chain := newFakeChain()

	identity, balance, err := Authenticate(context.Background(), testKeyring(), connected(t, chain), "//Alice")
	require.NoError(t, err)
	assert.Equal(t, aliceAddress, identity.Address)
	assert.Equal(t, "Alice", identity.Name)
	assert.Equal(t, aliceAddress, balance.Address)
	assert.Equal(t, "1000.000000000000", balance.Free)
}

func TestAuthenticateEmptySecret(t *testing.T) {
	identity, _, err := Authenticate(context.Background(), testKeyring(), connected(t, newFakeChain()), "")
	assert.Nil(t, identity)
	assert.Equal(t, KindInput, KindOf(err))
}

func TestAuthenticateBalanceFailure(t *testing.T) {
	chain := newFakeChain()
	chain.balanceErr = errors.New("state_getStorage: timeout")

	identity, balance, err := Authenticate(context.Background(), testKeyring(), connected(t, chain), "//Alice")
	assert.Equal(t, KindTransport, KindOf(err))
	assert.Contains(t, err.Error(), aliceAddress)
	assert.Nil(t, balance)
	require.NotNil(t, identity)
	assert.Equal(t, aliceAddress, identity.Address)
}

func TestAuthenticateWithoutConnection(t *testing.T) {
	_, _, err := Authenticate(context.Background(), testKeyring(), nil, "//Alice")
	assert.ErrorIs(t, err, ErrPrerequisite)
}

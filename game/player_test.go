package game

import (
	"context"
	"errors"
	"testing"

	"github.com/brson/contract-game/internal/abi"
	"github.com/brson/contract-game/internal/model"

	"github.com/centrifuge/go-substrate-rpc-client/v4/types/codec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryPlayerAccountNeverCreated(t *testing.T) {
	chain := newFakeChain()

	info, err := QueryPlayerAccount(context.Background(), checked(t, chain), alice(t))
	require.NoError(t, err)
	assert.Equal(t, model.PlayerAccountInfo{Status: model.PlayerStatusNone, Exists: false, Level: -1}, info)
	assert.NotContains(t, chain.reads, msgGetPlayerAccount)
}

func TestCreateThenQueryPlayerAccount(t *testing.T) {
	chain := newFakeChain()
	contract := checked(t, chain)
	signer := alice(t)

	out, err := CreatePlayerAccount(context.Background(), contract, signer)
	require.NoError(t, err)
	assert.Equal(t, model.TxStatusInBlock, out.Status)
	assert.Equal(t, []string{msgCreatePlayerAccount}, chain.execs)

	info, err := QueryPlayerAccount(context.Background(), contract, signer)
	require.NoError(t, err)
	assert.Equal(t, model.PlayerAccountInfo{Status: model.PlayerStatusActive, Exists: true, Level: 0}, info)
}

func TestQueryPlayerAccountTransportFailure(t *testing.T) {
	chain := newFakeChain()
	contract := checked(t, chain)
	chain.readErr[msgHavePlayerAccount] = errors.New("connection reset")

	info, err := QueryPlayerAccount(context.Background(), contract, alice(t))
	assert.Equal(t, KindTransport, KindOf(err))
	assert.Equal(t, model.UnknownPlayer(), info)
}

func TestQueryPlayerAccountReverted(t *testing.T) {
	chain := newFakeChain()
	contract := checked(t, chain)
	chain.readFlags[msgHavePlayerAccount] = 1

	info, err := QueryPlayerAccount(context.Background(), contract, alice(t))
	assert.Equal(t, KindContract, KindOf(err))
	assert.Contains(t, err.Error(), "unable to load player account")
	assert.Equal(t, model.PlayerStatusUnknown, info.Status)
	assert.Equal(t, int64(model.UnknownLevel), info.Level)
}

func TestQueryPlayerAccountLevelError(t *testing.T) {
	chain := newFakeChain()
	contract := checked(t, chain)
	signer := alice(t)
	_, err := CreatePlayerAccount(context.Background(), contract, signer)
	require.NoError(t, err)

	code := byte(6)
	chain.getErr = &code

	info, err := QueryPlayerAccount(context.Background(), contract, signer)
	assert.Equal(t, KindContract, KindOf(err))
	assert.True(t, IsContractError(err, "LevelContractCallFailed"))
	assert.Equal(t, model.PlayerAccountInfo{Status: model.PlayerStatusActive, Exists: true, Level: -1}, info)
}

func TestQueryPlayerAccountMalformedOutput(t *testing.T) {
	chain := newFakeChain()
	contract := checked(t, chain)
	contract.Gateway = &malformedGateway{ContractGateway: contract.Gateway}

	info, err := QueryPlayerAccount(context.Background(), contract, alice(t))
	assert.Equal(t, KindMismatch, KindOf(err))
	assert.Equal(t, model.UnknownPlayer(), info)
}

// malformedGateway returns an empty output for every read
type malformedGateway struct {
	ContractGateway
}

func (g *malformedGateway) Read(ctx context.Context, origin abi.AccountID, message string, args ...interface{}) (*model.CallResult, error) {
	return &model.CallResult{}, nil
}

func TestCreatePlayerAccountNotIncluded(t *testing.T) {
	chain := newFakeChain()
	contract := checked(t, chain)
	chain.execStatus = model.TxStatusDropped

	out, err := CreatePlayerAccount(context.Background(), contract, alice(t))
	assert.Equal(t, KindContract, KindOf(err))
	require.NotNil(t, out)
	assert.Equal(t, model.TxStatusDropped, out.Status)
}

func TestCreatePlayerAccountDispatchFailure(t *testing.T) {
	chain := newFakeChain()
	contract := checked(t, chain)
	chain.execFailure = "Module{index: 18, error: 6}"

	out, err := CreatePlayerAccount(context.Background(), contract, alice(t))
	assert.Equal(t, KindContract, KindOf(err))
	assert.EqualError(t, err, "create_player_account failed: Module{index: 18, error: 6}")
	require.NotNil(t, out)
	assert.Equal(t, model.TxStatusInBlock, out.Status)
	assert.True(t, out.Failed())

	info, err := QueryPlayerAccount(context.Background(), contract, alice(t))
	require.NoError(t, err)
	assert.Equal(t, model.PlayerStatusNone, info.Status)
}

func TestCreatePlayerAccountTransportFailure(t *testing.T) {
	chain := newFakeChain()
	contract := checked(t, chain)
	chain.execErr = errors.New("author_submitAndWatchExtrinsic: 1010: Invalid Transaction")

	_, err := CreatePlayerAccount(context.Background(), contract, alice(t))
	assert.Equal(t, KindTransport, KindOf(err))
}

func TestSubmitAndRunLevel(t *testing.T) {
	chain := newFakeChain()
	contract := checked(t, chain)
	signer := alice(t)
	_, err := CreatePlayerAccount(context.Background(), contract, signer)
	require.NoError(t, err)

	_, err = SubmitLevel(context.Background(), contract, signer, 0, testContract)
	require.NoError(t, err)
	_, err = RunLevel(context.Background(), contract, signer, 0)
	require.NoError(t, err)

	info, err := QueryPlayerAccount(context.Background(), contract, signer)
	require.NoError(t, err)
	assert.Equal(t, int64(1), info.Level)
	assert.Equal(t, []string{msgCreatePlayerAccount, msgSubmitLevel, msgRunLevel}, chain.execs)
}

func TestSubmitLevelInvalidAddress(t *testing.T) {
	chain := newFakeChain()

	_, err := SubmitLevel(context.Background(), checked(t, chain), alice(t), 0, "5Fxxx")
	assert.Equal(t, KindInput, KindOf(err))
	assert.Empty(t, chain.execs)
}

func TestPlayerAccountDecode(t *testing.T) {
	var contract abi.AccountID
	contract[0] = 0xaa

	data := []byte{3, 0, 0, 0, 1 << 2, 2, 0, 0, 0}
	data = append(data, contract[:]...)

	var p PlayerAccount
	require.NoError(t, codec.Decode(data, &p))
	assert.Equal(t, uint32(3), p.Level)
	assert.Equal(t, map[uint32]abi.AccountID{2: contract}, p.LevelContracts)
}

func TestPlayerAccountResultDecode(t *testing.T) {
	var r playerAccountResult
	require.NoError(t, codec.Decode(encodePlayerOk(7), &r))
	require.NotNil(t, r.ok)
	assert.Equal(t, uint32(7), r.ok.Level)

	r = playerAccountResult{}
	require.NoError(t, codec.Decode([]byte{1, 2}, &r))
	assert.Nil(t, r.ok)
	assert.Equal(t, byte(2), r.errCode)

	assert.Error(t, codec.Decode([]byte{9}, &r))
}

func TestContractErrorName(t *testing.T) {
	err := &ContractError{Message: msgCreatePlayerAccount, Index: 1}
	assert.Equal(t, "create_player_account returned AccountExists", err.Error())
	assert.Equal(t, "Error(42)", (&ContractError{Index: 42}).Name())
}

package client

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/brson/contract-game/internal/abi"
	"github.com/brson/contract-game/internal/config"
	"github.com/brson/contract-game/internal/model"

	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types/codec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGasLimit(t *testing.T) {
	g := &ContractGateway{node: &SubstrateNode{opts: SubstrateOptions{CallWeightCeiling: 500}}}

	assert.Equal(t, uint64(500), g.gasLimit(0))
	assert.Equal(t, uint64(500), g.gasLimit(-1))
	assert.Equal(t, uint64(42), g.gasLimit(42))
}

func TestNewSubstrateConnectorDefaults(t *testing.T) {
	c := NewSubstrateConnector(SubstrateOptions{Network: 42}, nil)
	assert.Equal(t, uint64(1_280_000_000_000), c.opts.CallWeightCeiling)
	assert.Equal(t, config.AddressFormatAccountID, c.opts.AddressFormat)
	assert.NotNil(t, c.log)
}

func TestContractExecResultJSON(t *testing.T) {
	okBody := `{"gasConsumed":1234,"debugMessage":"0x","result":{"Ok":{"flags":0,"data":"0x286865636b2c2079656168"}}}`
	var res contractExecResult
	require.NoError(t, json.Unmarshal([]byte(okBody), &res))
	require.NotNil(t, res.Result.Ok)
	assert.Equal(t, uint64(1234), res.GasConsumed)

	data, err := codec.HexDecodeString(res.Result.Ok.Data)
	require.NoError(t, err)
	assert.Equal(t, "(heck, yeah", string(data))

	errBody := `{"gasConsumed":0,"debugMessage":"0x","result":{"Err":{"Module":{"index":18,"error":6}}}}`
	res = contractExecResult{}
	require.NoError(t, json.Unmarshal([]byte(errBody), &res))
	assert.Nil(t, res.Result.Ok)
	assert.JSONEq(t, `{"Module":{"index":18,"error":6}}`, string(res.Result.Err))
}

func TestMultiAddressEncoding(t *testing.T) {
	var id abi.AccountID
	id[0], id[31] = 0xd4, 0x7d

	raw, err := codec.Encode(multiAddressID{ID: id})
	require.NoError(t, err)
	require.Len(t, raw, 33)
	assert.Equal(t, byte(0), raw[0])
	assert.Equal(t, id[:], raw[1:])

	raw, err = codec.Encode(id)
	require.NoError(t, err)
	assert.Equal(t, id[:], raw)
}

func TestWithContext(t *testing.T) {
	assert.NoError(t, withContext(context.Background(), func() error { return nil }))

	boom := errors.New("boom")
	assert.ErrorIs(t, withContext(context.Background(), func() error { return boom }), boom)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	assert.ErrorIs(t, withContext(ctx, func() error { called = true; return nil }), context.Canceled)
	assert.False(t, called)

	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	release := make(chan struct{})
	defer close(release)
	err := withContext(ctx, func() error { <-release; return nil })
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestContractRequiresMessages(t *testing.T) {
	n := &SubstrateNode{}
	_, err := n.Contract(abi.AccountID{}, nil)
	assert.Error(t, err)

	_, err = n.Contract(abi.AccountID{}, &abi.Metadata{Name: "empty"})
	assert.Error(t, err)

	gw, err := n.Contract(abi.AccountID{}, &abi.Metadata{Name: "game", Messages: []abi.Message{{Name: "game_ready"}}})
	require.NoError(t, err)
	_, err = gw.(*ContractGateway).encode("flip", nil)
	assert.ErrorIs(t, err, abi.ErrMessageNotFound)
}

func applyPhase(index uint32) types.Phase {
	return types.Phase{IsApplyExtrinsic: true, AsApplyExtrinsic: index}
}

func TestExtrinsicFailure(t *testing.T) {
	events := &types.EventRecords{
		System_ExtrinsicSuccess: []types.EventSystemExtrinsicSuccess{
			{Phase: applyPhase(0)},
			{Phase: applyPhase(2)},
		},
		System_ExtrinsicFailed: []types.EventSystemExtrinsicFailed{
			{
				Phase: applyPhase(1),
				DispatchError: types.DispatchError{
					IsModule:    true,
					ModuleError: types.ModuleError{Index: 18, Error: [4]types.U8{6}},
				},
			},
		},
	}

	reason, err := extrinsicFailure(events, 1)
	require.NoError(t, err)
	assert.Equal(t, "Module{index: 18, error: 6}", reason)

	reason, err = extrinsicFailure(events, 2)
	require.NoError(t, err)
	assert.Empty(t, reason)

	_, err = extrinsicFailure(events, 3)
	assert.EqualError(t, err, "no dispatch event for extrinsic 3")
}

func TestRenderDispatchError(t *testing.T) {
	assert.Equal(t, "BadOrigin", renderDispatchError(types.DispatchError{IsBadOrigin: true}))
	assert.Equal(t, "Other", renderDispatchError(types.DispatchError{IsOther: true}))
}

func TestExtrinsicIndex(t *testing.T) {
	extrinsics := []types.Extrinsic{
		types.NewExtrinsic(types.Call{CallIndex: types.CallIndex{SectionIndex: 3, MethodIndex: 0}, Args: types.Args{1}}),
		types.NewExtrinsic(types.Call{CallIndex: types.CallIndex{SectionIndex: 18, MethodIndex: 0}, Args: types.Args{2}}),
	}

	want, err := codec.Encode(extrinsics[1])
	require.NoError(t, err)
	index, err := extrinsicIndex(extrinsics, want)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), index)

	other, err := codec.Encode(types.NewExtrinsic(types.Call{CallIndex: types.CallIndex{SectionIndex: 18, MethodIndex: 0}, Args: types.Args{3}}))
	require.NoError(t, err)
	_, err = extrinsicIndex(extrinsics, other)
	assert.Error(t, err)
}

func TestWaitForInclusion(t *testing.T) {
	ctx := context.Background()

	statuses := make(chan types.ExtrinsicStatus, 3)
	statuses <- types.ExtrinsicStatus{IsReady: true}
	statuses <- types.ExtrinsicStatus{IsBroadcast: true, AsBroadcast: []types.Text{"peer"}}
	statuses <- types.ExtrinsicStatus{IsInBlock: true, AsInBlock: types.Hash{1}}
	out, block, err := waitForInclusion(ctx, "run_level", statuses, nil)
	require.NoError(t, err)
	assert.Equal(t, model.TxStatusInBlock, out.Status)
	assert.Equal(t, types.Hash{1}, block)
	assert.Equal(t, block.Hex(), out.BlockHash)

	statuses = make(chan types.ExtrinsicStatus, 1)
	statuses <- types.ExtrinsicStatus{IsDropped: true}
	out, _, err = waitForInclusion(ctx, "run_level", statuses, nil)
	require.NoError(t, err)
	assert.Equal(t, model.TxStatusDropped, out.Status)
	assert.Empty(t, out.BlockHash)

	errs := make(chan error, 1)
	errs <- errors.New("websocket closed")
	_, _, err = waitForInclusion(ctx, "run_level", nil, errs)
	assert.EqualError(t, err, "extrinsic subscription failed: websocket closed")
}

func TestWaitForInclusionClosedSubscription(t *testing.T) {
	statuses := make(chan types.ExtrinsicStatus, 1)
	statuses <- types.ExtrinsicStatus{IsFuture: true}
	close(statuses)

	_, _, err := waitForInclusion(context.Background(), "create_player_account", statuses, nil)
	assert.EqualError(t, err, "extrinsic subscription for create_player_account closed before inclusion")
}

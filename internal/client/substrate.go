package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/brson/contract-game/game"
	"github.com/brson/contract-game/internal/abi"
	"github.com/brson/contract-game/internal/common"
	"github.com/brson/contract-game/internal/config"
	"github.com/brson/contract-game/internal/crypto"
	"github.com/brson/contract-game/internal/model"

	gsrpc "github.com/centrifuge/go-substrate-rpc-client/v4"
	"github.com/centrifuge/go-substrate-rpc-client/v4/signature"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types/codec"
	"go.uber.org/zap"
)

const (
	contractsCallMethod = "contracts_call"
	contractsCallName   = "Contracts.call"
)

// SubstrateOptions tunes how the connector talks to a node
type SubstrateOptions struct {
	// Network is the SS58 prefix used to render addresses in RPC requests
	Network uint16
	// CallWeightCeiling replaces any gas limit <= 0
	CallWeightCeiling uint64
	// AddressFormat selects how Contracts.call encodes its destination
	AddressFormat string
}

// OptionsFromConfig builds connector options from the loaded configuration
func OptionsFromConfig(c *config.Config) SubstrateOptions {
	return SubstrateOptions{
		Network:           c.SS58Prefix,
		CallWeightCeiling: c.CallWeightCeiling,
		AddressFormat:     c.AddressFormat,
	}
}

// SubstrateConnector opens websocket connections to Substrate nodes
type SubstrateConnector struct {
	opts SubstrateOptions
	log  *zap.Logger
}

// NewSubstrateConnector creates a connector with the given options
func NewSubstrateConnector(opts SubstrateOptions, log *zap.Logger) *SubstrateConnector {
	if opts.CallWeightCeiling == 0 {
		opts.CallWeightCeiling = 1_280_000_000_000
	}
	if opts.AddressFormat == "" {
		opts.AddressFormat = config.AddressFormatAccountID
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &SubstrateConnector{opts: opts, log: log}
}

// Connect dials endpoint and returns a node handle
func (c *SubstrateConnector) Connect(ctx context.Context, endpoint string) (game.Node, error) {
	opened := make(chan *gsrpc.SubstrateAPI, 1)
	err := withContext(ctx, func() error {
		api, err := gsrpc.NewSubstrateAPI(endpoint)
		opened <- api
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", endpoint, err)
	}
	api := <-opened
	c.log.Debug("websocket open", zap.String("endpoint", endpoint))
	return &SubstrateNode{api: api, opts: c.opts, log: c.log.With(zap.String("endpoint", endpoint))}, nil
}

// SubstrateNode is an open link to one node
type SubstrateNode struct {
	api  *gsrpc.SubstrateAPI
	opts SubstrateOptions
	log  *zap.Logger

	metaOnce sync.Once
	meta     *types.Metadata
	metaErr  error
}

// Chain returns the chain name reported by system_chain
func (n *SubstrateNode) Chain(ctx context.Context) (string, error) {
	return n.systemText(ctx, n.api.RPC.System.Chain)
}

// NodeName returns the node implementation name reported by system_name
func (n *SubstrateNode) NodeName(ctx context.Context) (string, error) {
	return n.systemText(ctx, n.api.RPC.System.Name)
}

// NodeVersion returns the node version reported by system_version
func (n *SubstrateNode) NodeVersion(ctx context.Context) (string, error) {
	return n.systemText(ctx, n.api.RPC.System.Version)
}

func (n *SubstrateNode) systemText(ctx context.Context, query func() (types.Text, error)) (string, error) {
	done := make(chan string, 1)
	err := withContext(ctx, func() error {
		v, err := query()
		done <- string(v)
		return err
	})
	if err != nil {
		return "", err
	}
	return <-done, nil
}

// runtimeMetadata fetches the runtime metadata once per connection
func (n *SubstrateNode) runtimeMetadata(ctx context.Context) (*types.Metadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	n.metaOnce.Do(func() {
		n.meta, n.metaErr = n.api.RPC.State.GetMetadataLatest()
	})
	if n.metaErr != nil {
		return nil, fmt.Errorf("failed to get runtime metadata: %w", n.metaErr)
	}
	return n.meta, nil
}

func (n *SubstrateNode) accountInfo(ctx context.Context, accountID []byte) (*types.AccountInfo, error) {
	meta, err := n.runtimeMetadata(ctx)
	if err != nil {
		return nil, err
	}

	key, err := types.CreateStorageKey(meta, "System", "Account", accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage key: %w", err)
	}

	info := new(types.AccountInfo)
	found := make(chan bool, 1)
	err = withContext(ctx, func() error {
		ok, err := n.api.RPC.State.GetStorageLatest(key, info)
		found <- ok
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get account info: %w", err)
	}
	if !<-found {
		// An account that never received funds has no entry; it reads as zero.
		return &types.AccountInfo{}, nil
	}
	return info, nil
}

// AccountBalance reads the System.Account entry for accountID
func (n *SubstrateNode) AccountBalance(ctx context.Context, accountID []byte) (*model.AccountBalance, error) {
	info, err := n.accountInfo(ctx, accountID)
	if err != nil {
		return nil, err
	}

	address, err := crypto.EncodeAddress(accountID, n.opts.Network)
	if err != nil {
		return nil, err
	}

	return &model.AccountBalance{
		Address:  address,
		Nonce:    uint32(info.Nonce),
		Free:     common.PlanckToUnits(u128(info.Data.Free)),
		Reserved: common.PlanckToUnits(u128(info.Data.Reserved)),
	}, nil
}

func u128(v types.U128) *big.Int {
	if v.Int == nil {
		return new(big.Int)
	}
	return v.Int
}

// Contract binds a deployed contract to its descriptor
func (n *SubstrateNode) Contract(address abi.AccountID, md *abi.Metadata) (game.ContractGateway, error) {
	if md == nil {
		return nil, errors.New("contract metadata is required")
	}
	if len(md.Messages) == 0 {
		return nil, fmt.Errorf("contract metadata for %q declares no messages", md.Name)
	}
	return &ContractGateway{node: n, address: address, md: md}, nil
}

// Close closes the websocket
func (n *SubstrateNode) Close() {
	if c, ok := n.api.Client.(interface{ Close() }); ok {
		c.Close()
	}
	n.log.Debug("websocket closed")
}

// ContractGateway calls the messages of one deployed contract
type ContractGateway struct {
	node    *SubstrateNode
	address abi.AccountID
	md      *abi.Metadata
}

// contractCallRequest is the contracts_call RPC parameter
type contractCallRequest struct {
	Origin    string `json:"origin"`
	Dest      string `json:"dest"`
	Value     uint64 `json:"value"`
	GasLimit  uint64 `json:"gasLimit"`
	InputData string `json:"inputData"`
}

// contractExecResult is the contracts_call RPC result
type contractExecResult struct {
	GasConsumed  uint64 `json:"gasConsumed"`
	DebugMessage string `json:"debugMessage"`
	Result       struct {
		Ok *struct {
			Flags uint32 `json:"flags"`
			Data  string `json:"data"`
		} `json:"ok"`
		Err json.RawMessage `json:"err"`
	} `json:"result"`
}

// Read performs a zero-value read-only call through the contracts_call RPC
func (g *ContractGateway) Read(ctx context.Context, origin abi.AccountID, message string, args ...interface{}) (*model.CallResult, error) {
	input, err := g.encode(message, args)
	if err != nil {
		return nil, err
	}

	originAddr, err := crypto.EncodeAddress(origin[:], g.node.opts.Network)
	if err != nil {
		return nil, err
	}
	destAddr, err := crypto.EncodeAddress(g.address[:], g.node.opts.Network)
	if err != nil {
		return nil, err
	}

	req := contractCallRequest{
		Origin:    originAddr,
		Dest:      destAddr,
		Value:     0,
		GasLimit:  g.gasLimit(0),
		InputData: codec.HexEncodeToString(input),
	}

	res := new(contractExecResult)
	err = withContext(ctx, func() error {
		return g.node.api.Client.Call(res, contractsCallMethod, req)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to call %s: %w", message, err)
	}

	out := &model.CallResult{GasConsumed: res.GasConsumed}
	if res.DebugMessage != "" && res.DebugMessage != "0x" {
		if msg, err := codec.HexDecodeString(res.DebugMessage); err == nil {
			out.DebugMessage = string(msg)
		}
	}

	switch {
	case res.Result.Ok != nil:
		out.Flags = res.Result.Ok.Flags
		out.Data, err = codec.HexDecodeString(res.Result.Ok.Data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s output: %w", message, err)
		}
	case len(res.Result.Err) > 0:
		out.DispatchError = string(res.Result.Err)
	default:
		return nil, fmt.Errorf("empty result for %s", message)
	}

	g.node.log.Debug("contract read",
		zap.String("message", message),
		zap.Uint32("flags", out.Flags),
		zap.Uint64("gasConsumed", out.GasConsumed),
		zap.String("dispatchError", out.DispatchError),
	)
	return out, nil
}

// multiAddressID is MultiAddress::Id(AccountId)
type multiAddressID struct {
	Tag byte
	ID  abi.AccountID
}

// Exec signs and submits Contracts.call and waits for the extrinsic to be
// included in a block or rejected.
func (g *ContractGateway) Exec(ctx context.Context, signer *model.SignerIdentity, message string, gasLimit int64, args ...interface{}) (*model.TxOutcome, error) {
	if signer == nil {
		return nil, errors.New("signer is required")
	}
	input, err := g.encode(message, args)
	if err != nil {
		return nil, err
	}

	meta, err := g.node.runtimeMetadata(ctx)
	if err != nil {
		return nil, err
	}

	var dest interface{} = g.address
	if g.node.opts.AddressFormat == config.AddressFormatMultiAddress {
		dest = multiAddressID{Tag: 0, ID: g.address}
	}

	call, err := types.NewCall(meta, contractsCallName,
		dest,
		types.NewUCompactFromUInt(0),
		types.NewUCompactFromUInt(g.gasLimit(gasLimit)),
		types.NewBytes(input),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create call: %w", err)
	}

	opts, err := g.signatureOptions(ctx, signer)
	if err != nil {
		return nil, err
	}

	ext := types.NewExtrinsic(call)
	pair := signature.KeyringPair{URI: signer.Secret, Address: signer.Address, PublicKey: signer.PublicKey}
	if err := ext.Sign(pair, opts); err != nil {
		return nil, fmt.Errorf("failed to sign extrinsic: %w", err)
	}

	sub, err := g.node.api.RPC.Author.SubmitAndWatchExtrinsic(ext)
	if err != nil {
		return nil, fmt.Errorf("failed to submit extrinsic: %w", err)
	}
	defer sub.Unsubscribe()

	g.node.log.Info("extrinsic submitted", zap.String("message", message), zap.String("signer", signer.Address))

	out, block, err := waitForInclusion(ctx, message, sub.Chan(), sub.Err())
	if err != nil {
		return nil, err
	}
	if out.Status.Included() {
		out.DispatchError, err = g.node.dispatchError(ctx, meta, block, ext)
		if err != nil {
			return nil, err
		}
	}
	g.node.log.Info("extrinsic status",
		zap.String("message", message),
		zap.String("status", string(out.Status)),
		zap.String("block", out.BlockHash),
		zap.String("dispatchError", out.DispatchError),
	)
	return out, nil
}

// waitForInclusion waits for the first terminal status of a submitted
// extrinsic. Ready, future and broadcast statuses are skipped.
func waitForInclusion(ctx context.Context, message string, statuses <-chan types.ExtrinsicStatus, errs <-chan error) (*model.TxOutcome, types.Hash, error) {
	for {
		select {
		case <-ctx.Done():
			return nil, types.Hash{}, ctx.Err()
		case err := <-errs:
			return nil, types.Hash{}, fmt.Errorf("extrinsic subscription failed: %w", err)
		case status, ok := <-statuses:
			if !ok {
				return nil, types.Hash{}, fmt.Errorf("extrinsic subscription for %s closed before inclusion", message)
			}
			out := &model.TxOutcome{Message: message}
			var block types.Hash
			switch {
			case status.IsInBlock:
				block, out.Status = status.AsInBlock, model.TxStatusInBlock
			case status.IsFinalized:
				block, out.Status = status.AsFinalized, model.TxStatusFinalized
			case status.IsDropped:
				out.Status = model.TxStatusDropped
			case status.IsInvalid:
				out.Status = model.TxStatusInvalid
			case status.IsUsurped:
				out.Status = model.TxStatusUsurped
			default:
				continue
			}
			if out.Status.Included() {
				out.BlockHash = block.Hex()
			}
			return out, block, nil
		}
	}
}

// dispatchError looks up the System events of block for ext and returns
// the rendered failure, or "" when the extrinsic dispatched successfully.
func (n *SubstrateNode) dispatchError(ctx context.Context, meta *types.Metadata, block types.Hash, ext types.Extrinsic) (string, error) {
	want, err := codec.Encode(ext)
	if err != nil {
		return "", fmt.Errorf("failed to encode extrinsic: %w", err)
	}

	signed := make(chan *types.SignedBlock, 1)
	err = withContext(ctx, func() error {
		b, err := n.api.RPC.Chain.GetBlock(block)
		signed <- b
		return err
	})
	if err != nil {
		return "", fmt.Errorf("failed to get block %s: %w", block.Hex(), err)
	}
	index, err := extrinsicIndex((<-signed).Block.Extrinsics, want)
	if err != nil {
		return "", fmt.Errorf("block %s: %w", block.Hex(), err)
	}

	key, err := types.CreateStorageKey(meta, "System", "Events", nil)
	if err != nil {
		return "", fmt.Errorf("failed to create storage key: %w", err)
	}
	raw := make(chan *types.StorageDataRaw, 1)
	err = withContext(ctx, func() error {
		r, err := n.api.RPC.State.GetStorageRaw(key, block)
		raw <- r
		return err
	})
	if err != nil {
		return "", fmt.Errorf("failed to get events for block %s: %w", block.Hex(), err)
	}

	data := <-raw
	if data == nil {
		return "", fmt.Errorf("no events stored for block %s", block.Hex())
	}
	events := types.EventRecords{}
	if err := types.EventRecordsRaw(*data).DecodeEventRecords(meta, &events); err != nil {
		return "", fmt.Errorf("failed to decode events for block %s: %w", block.Hex(), err)
	}
	return extrinsicFailure(&events, index)
}

// extrinsicIndex finds the position of the encoded extrinsic want in a block
func extrinsicIndex(extrinsics []types.Extrinsic, want []byte) (uint32, error) {
	for i, e := range extrinsics {
		got, err := codec.Encode(e)
		if err != nil {
			return 0, fmt.Errorf("failed to encode extrinsic %d: %w", i, err)
		}
		if bytes.Equal(got, want) {
			return uint32(i), nil
		}
	}
	return 0, errors.New("submitted extrinsic not found in block")
}

// extrinsicFailure reports the ExtrinsicFailed event applied at index.
// An extrinsic with neither a success nor a failure event is an error.
func extrinsicFailure(events *types.EventRecords, index uint32) (string, error) {
	for _, e := range events.System_ExtrinsicFailed {
		if e.Phase.IsApplyExtrinsic && e.Phase.AsApplyExtrinsic == index {
			return renderDispatchError(e.DispatchError), nil
		}
	}
	for _, e := range events.System_ExtrinsicSuccess {
		if e.Phase.IsApplyExtrinsic && e.Phase.AsApplyExtrinsic == index {
			return "", nil
		}
	}
	return "", fmt.Errorf("no dispatch event for extrinsic %d", index)
}

func renderDispatchError(d types.DispatchError) string {
	switch {
	case d.IsModule:
		return fmt.Sprintf("Module{index: %d, error: %d}", d.ModuleError.Index, d.ModuleError.Error[0])
	case d.IsBadOrigin:
		return "BadOrigin"
	case d.IsCannotLookup:
		return "CannotLookup"
	case d.IsConsumerRemaining:
		return "ConsumerRemaining"
	case d.IsNoProviders:
		return "NoProviders"
	case d.IsTooManyConsumers:
		return "TooManyConsumers"
	case d.IsToken:
		return "Token"
	case d.IsArithmetic:
		return "Arithmetic"
	case d.IsTransactional:
		return "Transactional"
	default:
		return "Other"
	}
}

func (g *ContractGateway) signatureOptions(ctx context.Context, signer *model.SignerIdentity) (types.SignatureOptions, error) {
	genesisHash, err := g.node.api.RPC.Chain.GetBlockHash(0)
	if err != nil {
		return types.SignatureOptions{}, fmt.Errorf("failed to get genesis hash: %w", err)
	}

	rv, err := g.node.api.RPC.State.GetRuntimeVersionLatest()
	if err != nil {
		return types.SignatureOptions{}, fmt.Errorf("failed to get runtime version: %w", err)
	}

	info, err := g.node.accountInfo(ctx, signer.PublicKey)
	if err != nil {
		return types.SignatureOptions{}, err
	}

	return types.SignatureOptions{
		BlockHash:          genesisHash,
		Era:                types.ExtrinsicEra{IsMortalEra: false},
		GenesisHash:        genesisHash,
		Nonce:              types.NewUCompactFromUInt(uint64(info.Nonce)),
		SpecVersion:        rv.SpecVersion,
		Tip:                types.NewUCompactFromUInt(0),
		TransactionVersion: rv.TransactionVersion,
	}, nil
}

func (g *ContractGateway) encode(message string, args []interface{}) ([]byte, error) {
	msg, err := g.md.Message(message)
	if err != nil {
		return nil, err
	}
	return msg.Encode(args...)
}

// gasLimit resolves a requested limit; anything <= 0 means the ceiling
func (g *ContractGateway) gasLimit(requested int64) uint64 {
	if requested <= 0 {
		return g.node.opts.CallWeightCeiling
	}
	return uint64(requested)
}

// withContext runs fn and stops waiting for it once ctx is done.
// The RPC client has no context support of its own.
func withContext(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	done := make(chan error, 1)
	go func() { done <- fn() }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

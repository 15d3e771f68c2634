package game

import (
	"context"
	"errors"
	"fmt"

	"github.com/brson/contract-game/internal/abi"
	"github.com/brson/contract-game/internal/crypto"
	"github.com/brson/contract-game/internal/model"

	"github.com/centrifuge/go-substrate-rpc-client/v4/scale"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types/codec"
)

const (
	msgHavePlayerAccount   = "have_player_account"
	msgGetPlayerAccount    = "get_player_account"
	msgCreatePlayerAccount = "create_player_account"
	msgSubmitLevel         = "submit_level"
	msgRunLevel            = "run_level"
)

// PlayerAccount is the contract's record for a player
type PlayerAccount struct {
	Level          uint32
	LevelContracts map[uint32]abi.AccountID
}

// Decode implements scale.Decodeable
func (p *PlayerAccount) Decode(decoder scale.Decoder) error {
	if err := decoder.Decode(&p.Level); err != nil {
		return fmt.Errorf("failed to decode level: %w", err)
	}

	n, err := decoder.DecodeUintCompact()
	if err != nil {
		return fmt.Errorf("failed to decode level contracts length: %w", err)
	}
	if !n.IsUint64() {
		return errors.New("level contracts length out of range")
	}

	count := n.Uint64()
	p.LevelContracts = make(map[uint32]abi.AccountID, count)
	for i := uint64(0); i < count; i++ {
		var level uint32
		var contract abi.AccountID
		if err := decoder.Decode(&level); err != nil {
			return fmt.Errorf("failed to decode level contract key: %w", err)
		}
		if err := decoder.Decode(&contract); err != nil {
			return fmt.Errorf("failed to decode level contract: %w", err)
		}
		p.LevelContracts[level] = contract
	}
	return nil
}

// playerAccountResult is Result<PlayerAccount, Error> as returned by get_player_account
type playerAccountResult struct {
	ok      *PlayerAccount
	errCode byte
}

// Decode implements scale.Decodeable
func (r *playerAccountResult) Decode(decoder scale.Decoder) error {
	tag, err := decoder.ReadOneByte()
	if err != nil {
		return err
	}
	switch tag {
	case 0:
		r.ok = &PlayerAccount{}
		return decoder.Decode(r.ok)
	case 1:
		r.errCode, err = decoder.ReadOneByte()
		return err
	default:
		return fmt.Errorf("invalid result tag %d", tag)
	}
}

// QueryPlayerAccount reads whether signer has a player account and, if so,
// its level. The returned info is always usable: anything that could not be
// read is reported as unknown (level -1) together with a classified error.
func QueryPlayerAccount(ctx context.Context, contract *Contract, signer *model.SignerIdentity) (model.PlayerAccountInfo, error) {
	const op = "query player account"

	info := model.UnknownPlayer()
	if contract == nil || signer == nil {
		return info, stepError(KindInput, op, ErrPrerequisite)
	}

	who, err := abi.NewAccountID(signer.PublicKey)
	if err != nil {
		return info, stepError(KindInput, op, err)
	}

	res, err := contract.Gateway.Read(ctx, who, msgHavePlayerAccount, who)
	if err != nil {
		return info, stepError(KindTransport, op, err)
	}
	if res.Failed() {
		return info, stepError(KindContract, op, fmt.Errorf("unable to load player account: %s", failureText(res)))
	}

	var exists bool
	if err := codec.Decode(res.Data, &exists); err != nil {
		return info, stepError(KindMismatch, op, fmt.Errorf("failed to decode %s output: %w", msgHavePlayerAccount, err))
	}
	if !exists {
		return model.PlayerAccountInfo{Status: model.PlayerStatusNone, Level: model.UnknownLevel}, nil
	}

	// The account exists from here on; only the level can still be unknown.
	info = model.PlayerAccountInfo{Status: model.PlayerStatusActive, Exists: true, Level: model.UnknownLevel}

	res, err = contract.Gateway.Read(ctx, who, msgGetPlayerAccount, who)
	if err != nil {
		return info, stepError(KindTransport, op, err)
	}
	if res.Failed() {
		return info, stepError(KindContract, op, fmt.Errorf("unable to load player level: %s", failureText(res)))
	}

	var result playerAccountResult
	if err := codec.Decode(res.Data, &result); err != nil {
		return info, stepError(KindMismatch, op, fmt.Errorf("failed to decode %s output: %w", msgGetPlayerAccount, err))
	}
	if result.ok == nil {
		return info, stepError(KindContract, op, &ContractError{Message: msgGetPlayerAccount, Index: result.errCode})
	}

	info.Level = int64(result.ok.Level)
	return info, nil
}

// CreatePlayerAccount submits create_player_account signed by signer.
// The account is not re-queried; call QueryPlayerAccount to observe it.
func CreatePlayerAccount(ctx context.Context, contract *Contract, signer *model.SignerIdentity) (*model.TxOutcome, error) {
	return exec(ctx, "create player account", contract, signer, msgCreatePlayerAccount)
}

// SubmitLevel submits a level contract for a puzzle level
func SubmitLevel(ctx context.Context, contract *Contract, signer *model.SignerIdentity, level uint32, levelContract string) (*model.TxOutcome, error) {
	const op = "submit level"

	raw, _, err := crypto.DecodeAddress(levelContract)
	if err != nil {
		return nil, stepError(KindInput, op, fmt.Errorf("invalid level contract address: %w", err))
	}
	id, err := abi.NewAccountID(raw)
	if err != nil {
		return nil, stepError(KindInput, op, err)
	}
	return exec(ctx, op, contract, signer, msgSubmitLevel, level, id)
}

// RunLevel asks the game contract to run the submitted program for level
func RunLevel(ctx context.Context, contract *Contract, signer *model.SignerIdentity, level uint32) (*model.TxOutcome, error) {
	return exec(ctx, "run level", contract, signer, msgRunLevel, level)
}

func exec(ctx context.Context, op string, contract *Contract, signer *model.SignerIdentity, message string, args ...interface{}) (*model.TxOutcome, error) {
	if contract == nil || signer == nil {
		return nil, stepError(KindInput, op, ErrPrerequisite)
	}

	out, err := contract.Gateway.Exec(ctx, signer, message, model.GasUnbounded, args...)
	if err != nil {
		return nil, stepError(KindTransport, op, err)
	}
	if !out.Status.Included() {
		return out, stepError(KindContract, op, fmt.Errorf("%s was not included: %s", message, out.Status))
	}
	if out.Failed() {
		return out, stepError(KindContract, op, fmt.Errorf("%s failed: %s", message, out.DispatchError))
	}
	return out, nil
}

func failureText(res *model.CallResult) string {
	if res.DispatchError != "" {
		return res.DispatchError
	}
	return "contract reverted"
}

package game

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/brson/contract-game/internal/model"

	"go.uber.org/zap"
)

// Step names one user-triggered action of the workflow
type Step string

const (
	StepConnect       Step = "connect"
	StepCheckContract Step = "check-contract"
	StepAuthenticate  Step = "authenticate"
	StepQueryPlayer   Step = "query-player"
	StepCreatePlayer  Step = "create-player"
	StepLevels        Step = "levels"
)

var allSteps = []Step{StepConnect, StepCheckContract, StepAuthenticate, StepQueryPlayer, StepCreatePlayer, StepLevels}

// Session holds the handles produced by successful steps
type Session struct {
	Connection *Connection
	Contract   *Contract
	Signer     *model.SignerIdentity
	Balance    *model.AccountBalance
	Player     *model.PlayerAccountInfo
}

// Dependencies are the external collaborators the controller sequences
type Dependencies struct {
	Connector Connector
	Keyring   Keyring
	Metadata  MetadataSource
}

// Controller drives the connect, check, authenticate and player account steps
// for one session. Each step runs Idle -> InFlight -> Succeeded|Failed and
// may only start once the step it depends on has succeeded.
type Controller struct {
	deps     Dependencies
	defaults model.SessionDefaults
	log      *zap.Logger

	mu         sync.Mutex
	session    Session
	steps      map[Step]model.StepState
	indicators map[string]model.Indicator
}

// NewController creates a controller with every step idle
func NewController(deps Dependencies, defaults model.SessionDefaults, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Controller{
		deps:       deps,
		defaults:   defaults,
		log:        log,
		steps:      make(map[Step]model.StepState, len(allSteps)),
		indicators: make(map[string]model.Indicator),
	}
	for _, s := range allSteps {
		c.steps[s] = model.StepIdle
	}
	for _, name := range []string{
		model.IndicatorNode,
		model.IndicatorGame,
		model.IndicatorKeyring,
		model.IndicatorPlayerAccount,
		model.IndicatorPlayerLevel,
		model.IndicatorLevels,
	} {
		c.indicators[name] = model.Indicator{State: model.IndicatorNeutral}
	}
	return c
}

// Connect runs the connection step. An empty endpoint uses the default one.
func (c *Controller) Connect(ctx context.Context, endpoint string) error {
	if endpoint == "" {
		endpoint = c.defaults.Endpoint
	}
	if err := c.begin(StepConnect, model.IndicatorNode); err != nil {
		return err
	}

	c.log.Info("connecting to node", zap.String("endpoint", endpoint))
	conn, msg, err := Connect(ctx, c.deps.Connector, endpoint)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.log.Warn("node connection failed", zap.String("endpoint", endpoint), zap.Error(err))
		c.fail(StepConnect, model.IndicatorNode, err)
		return err
	}

	c.session.Connection = conn
	c.log.Info(msg, zap.String("endpoint", endpoint))
	c.succeed(StepConnect, model.IndicatorNode, msg)
	return nil
}

// CheckContract loads the interface descriptor and probes the game contract.
// An empty address uses the pre-filled devnet contract.
func (c *Controller) CheckContract(ctx context.Context, address string) error {
	if address == "" {
		address = c.defaults.ContractAddress
	}
	if err := c.begin(StepCheckContract, model.IndicatorGame); err != nil {
		return err
	}

	c.mu.Lock()
	conn := c.session.Connection
	c.mu.Unlock()

	contract, err := c.checkContract(ctx, conn, address)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.log.Warn("game contract check failed", zap.String("contract", address), zap.Error(err))
		c.fail(StepCheckContract, model.IndicatorGame, err)
		return err
	}

	c.session.Contract = contract
	c.log.Info("game contract online", zap.String("contract", address), zap.String("name", contract.Metadata.Name))
	c.succeed(StepCheckContract, model.IndicatorGame, "Online")
	return nil
}

func (c *Controller) checkContract(ctx context.Context, conn *Connection, address string) (*Contract, error) {
	md, err := c.deps.Metadata.Load(ctx)
	if err != nil {
		return nil, stepError(KindDescriptor, "check contract", err)
	}
	return CheckContract(ctx, conn, md, address)
}

// Authenticate derives the signer and, once authenticated, chains into the
// player account query. A failed query is reported on the player indicators
// and does not fail authentication.
func (c *Controller) Authenticate(ctx context.Context, secret string) error {
	if err := c.begin(StepAuthenticate, model.IndicatorKeyring); err != nil {
		return err
	}

	c.mu.Lock()
	conn := c.session.Connection
	c.mu.Unlock()

	identity, balance, err := Authenticate(ctx, c.deps.Keyring, conn, secret)

	c.mu.Lock()
	if err != nil {
		// The balance read is the sanity check; an identity that fails it is discarded.
		c.log.Warn("authentication failed", zap.Error(err))
		c.fail(StepAuthenticate, model.IndicatorKeyring, err)
		c.mu.Unlock()
		return err
	}
	c.session.Signer = identity
	c.session.Balance = balance
	c.log.Info("authenticated",
		zap.String("address", identity.Address),
		zap.String("name", identity.Name),
		zap.String("free", balance.Free),
	)
	c.succeed(StepAuthenticate, model.IndicatorKeyring, "Connected as "+identity.Address)
	c.mu.Unlock()

	if err := c.RefreshPlayerAccount(ctx); err != nil {
		c.log.Warn("player account query after authentication failed", zap.Error(err))
	}
	return nil
}

// RefreshPlayerAccount queries the signer's player account
func (c *Controller) RefreshPlayerAccount(ctx context.Context) error {
	if err := c.begin(StepQueryPlayer, model.IndicatorPlayerAccount); err != nil {
		return err
	}

	c.mu.Lock()
	contract, signer := c.session.Contract, c.session.Signer
	c.mu.Unlock()

	info, err := QueryPlayerAccount(ctx, contract, signer)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.session.Player = &info

	if err != nil {
		c.log.Warn("player account query failed", zap.String("status", string(info.Status)), zap.Error(err))
		c.steps[StepQueryPlayer] = model.StepFailed
		if info.Exists {
			c.setIndicator(model.IndicatorPlayerAccount, model.IndicatorSuccess, string(info.Status))
			c.setIndicator(model.IndicatorPlayerLevel, model.IndicatorFail, err.Error())
		} else {
			c.setIndicator(model.IndicatorPlayerAccount, model.IndicatorFail, err.Error())
			c.setIndicator(model.IndicatorPlayerLevel, model.IndicatorNeutral, "")
		}
		return err
	}

	c.log.Info("player account loaded", zap.String("status", string(info.Status)), zap.Int64("level", info.Level))
	c.succeed(StepQueryPlayer, model.IndicatorPlayerAccount, string(info.Status))
	if info.Exists {
		c.setIndicator(model.IndicatorPlayerLevel, model.IndicatorSuccess, strconv.FormatInt(info.Level, 10))
	} else {
		c.setIndicator(model.IndicatorPlayerLevel, model.IndicatorNeutral, "")
		if c.steps[StepCreatePlayer] != model.StepInFlight {
			c.steps[StepCreatePlayer] = model.StepIdle
		}
	}
	return nil
}

// CreatePlayerAccount creates the signer's player account. It does not
// re-query; the caller refreshes to observe the new account.
func (c *Controller) CreatePlayerAccount(ctx context.Context) (*model.TxOutcome, error) {
	if err := c.begin(StepCreatePlayer, model.IndicatorPlayerAccount); err != nil {
		return nil, err
	}

	c.mu.Lock()
	contract, signer := c.session.Contract, c.session.Signer
	c.mu.Unlock()

	c.log.Info("calling "+msgCreatePlayerAccount, zap.String("address", signer.Address))
	out, err := CreatePlayerAccount(ctx, contract, signer)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.log.Warn("create player account failed", zap.Error(err))
		c.fail(StepCreatePlayer, model.IndicatorPlayerAccount, err)
		return out, err
	}

	c.log.Info("player account created", zap.String("status", string(out.Status)), zap.String("block", out.BlockHash))
	c.succeed(StepCreatePlayer, model.IndicatorPlayerAccount, fmt.Sprintf("Created (%s)", out.Status))
	return out, nil
}

// SubmitLevel submits a level contract for the signer's player account
func (c *Controller) SubmitLevel(ctx context.Context, level uint32, levelContract string) (*model.TxOutcome, error) {
	return c.runLevelStep(ctx, "submit level "+strconv.FormatUint(uint64(level), 10), func(contract *Contract, signer *model.SignerIdentity) (*model.TxOutcome, error) {
		return SubmitLevel(ctx, contract, signer, level, levelContract)
	})
}

// RunLevel runs the submitted program for level
func (c *Controller) RunLevel(ctx context.Context, level uint32) (*model.TxOutcome, error) {
	return c.runLevelStep(ctx, "run level "+strconv.FormatUint(uint64(level), 10), func(contract *Contract, signer *model.SignerIdentity) (*model.TxOutcome, error) {
		return RunLevel(ctx, contract, signer, level)
	})
}

func (c *Controller) runLevelStep(ctx context.Context, what string, call func(*Contract, *model.SignerIdentity) (*model.TxOutcome, error)) (*model.TxOutcome, error) {
	if err := c.begin(StepLevels, model.IndicatorLevels); err != nil {
		return nil, err
	}

	c.mu.Lock()
	contract, signer := c.session.Contract, c.session.Signer
	c.mu.Unlock()

	out, err := call(contract, signer)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.log.Warn(what+" failed", zap.Error(err))
		c.fail(StepLevels, model.IndicatorLevels, err)
		return out, err
	}

	c.log.Info(what, zap.String("status", string(out.Status)), zap.String("block", out.BlockHash))
	c.succeed(StepLevels, model.IndicatorLevels, fmt.Sprintf("%s: %s", what, out.Status))
	return out, nil
}

// Snapshot returns a copy of the session state for display
func (c *Controller) Snapshot() model.SessionView {
	c.mu.Lock()
	defer c.mu.Unlock()

	view := model.SessionView{
		Indicators: make(map[string]model.Indicator, len(c.indicators)),
		Steps:      make(map[string]model.StepState, len(c.steps)),
		Enabled:    make(map[string]bool, len(c.steps)),
		Defaults:   c.defaults,
	}
	for name, ind := range c.indicators {
		view.Indicators[name] = ind
	}
	for step, state := range c.steps {
		view.Steps[string(step)] = state
		view.Enabled[string(step)] = c.enabled(step)
	}
	if conn := c.session.Connection; conn != nil {
		meta := conn.Meta
		view.Chain = &meta
	}
	if contract := c.session.Contract; contract != nil {
		view.Contract = contract.Address
	}
	if signer := c.session.Signer; signer != nil {
		s := *signer
		view.Signer = &s
	}
	if player := c.session.Player; player != nil {
		p := *player
		view.Player = &p
	}
	return view
}

// Signer returns the authenticated identity, nil before authentication
func (c *Controller) Signer() *model.SignerIdentity {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.Signer
}

// Close closes the node connection held by the session
func (c *Controller) Close() {
	c.mu.Lock()
	conn := c.session.Connection
	c.session = Session{}
	c.mu.Unlock()
	conn.Close()
}

// begin moves step to InFlight if it is enabled
func (c *Controller) begin(step Step, indicator string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.steps[step] == model.StepInFlight {
		return fmt.Errorf("%s: %w", step, ErrStepInFlight)
	}
	if !c.enabled(step) {
		return fmt.Errorf("%s: %w", step, ErrPrerequisite)
	}

	c.steps[step] = model.StepInFlight
	c.setIndicator(indicator, model.IndicatorNeutral, "waiting")
	return nil
}

// enabled reports whether step may be triggered now. Caller holds mu.
func (c *Controller) enabled(step Step) bool {
	state := c.steps[step]
	if state == model.StepInFlight {
		return false
	}
	retryable := state == model.StepIdle || state == model.StepFailed

	switch step {
	case StepConnect:
		return retryable
	case StepCheckContract:
		return retryable && c.succeeded(StepConnect) && c.session.Connection != nil
	case StepAuthenticate:
		return retryable && c.succeeded(StepCheckContract) && c.session.Contract != nil
	case StepQueryPlayer:
		return c.authenticated()
	case StepCreatePlayer:
		return retryable && c.authenticated() &&
			c.session.Player != nil && c.session.Player.Status == model.PlayerStatusNone
	case StepLevels:
		return c.authenticated() && c.session.Player != nil && c.session.Player.Exists
	default:
		return false
	}
}

func (c *Controller) succeeded(step Step) bool {
	return c.steps[step] == model.StepSucceeded
}

func (c *Controller) authenticated() bool {
	return c.succeeded(StepAuthenticate) && c.session.Contract != nil && c.session.Signer != nil
}

func (c *Controller) succeed(step Step, indicator, text string) {
	c.steps[step] = model.StepSucceeded
	c.setIndicator(indicator, model.IndicatorSuccess, text)
}

func (c *Controller) fail(step Step, indicator string, err error) {
	c.steps[step] = model.StepFailed
	c.setIndicator(indicator, model.IndicatorFail, err.Error())
}

func (c *Controller) setIndicator(name string, state model.IndicatorState, text string) {
	c.indicators[name] = model.Indicator{State: state, Text: text}
}

// IsBusy checks if err is a refusal to start a step (in flight or not yet enabled)
func IsBusy(err error) bool {
	return errors.Is(err, ErrStepInFlight) || errors.Is(err, ErrPrerequisite)
}

package game

import (
	"context"
	"encoding/binary"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/brson/contract-game/internal/abi"
	"github.com/brson/contract-game/internal/crypto"
	"github.com/brson/contract-game/internal/model"

	"github.com/stretchr/testify/require"
)

const (
	testEndpoint = "ws://127.0.0.1:9944"
	// Bob's account doubles as the game contract address in tests
	testContract = "5FHneW46xGXgs5mUiveU4sbTyGBzmstUspZC92UhjJM694ty"
	aliceAddress = "5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY"
)

// readyOutput is the raw output of a healthy game_ready call
var readyOutput = append([]byte{0x28}, "heck, yeah"...)

// fakeChain emulates a dev node running the game contract
type fakeChain struct {
	mu sync.Mutex

	players map[abi.AccountID]*PlayerAccount
	ready   []byte

	connectErr error
	chainErr   error
	nameErr    error
	versionErr error
	balanceErr error
	readErr    map[string]error
	readFlags  map[string]uint32
	execStatus model.TxStatus
	execErr    error
	// execFailure is the ExtrinsicFailed reason for included calls
	execFailure string

	// getErr makes get_player_account return Err(getErr) for existing accounts
	getErr *byte

	// barrier, when set, holds each system query until all three have started
	barrier *sync.WaitGroup

	// connectGate, when set, blocks Connect until it is closed
	connectGate  chan struct{}
	connectEnter chan struct{}

	connects int
	closed   int
	reads    []string
	execs    []string
}

func newFakeChain() *fakeChain {
	return &fakeChain{
		players:    make(map[abi.AccountID]*PlayerAccount),
		ready:      readyOutput,
		readErr:    make(map[string]error),
		readFlags:  make(map[string]uint32),
		execStatus: model.TxStatusInBlock,
	}
}

func (f *fakeChain) Connect(ctx context.Context, endpoint string) (Node, error) {
	f.mu.Lock()
	f.connects++
	gate, enter := f.connectGate, f.connectEnter
	err := f.connectErr
	f.mu.Unlock()

	if gate != nil {
		if enter != nil {
			close(enter)
		}
		<-gate
	}
	if err != nil {
		return nil, err
	}
	return &fakeNode{chain: f}, nil
}

type fakeNode struct {
	chain *fakeChain
}

// systemQuery waits at the barrier, if any, and returns the configured value
func (n *fakeNode) systemQuery(ctx context.Context, value string, errp *error) (string, error) {
	n.chain.mu.Lock()
	barrier := n.chain.barrier
	n.chain.mu.Unlock()

	if barrier != nil {
		barrier.Done()
		released := make(chan struct{})
		go func() {
			barrier.Wait()
			close(released)
		}()
		select {
		case <-released:
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(time.Second):
			return "", errors.New("system queries did not overlap")
		}
	}

	n.chain.mu.Lock()
	defer n.chain.mu.Unlock()
	if *errp != nil {
		return "", *errp
	}
	return value, nil
}

func (n *fakeNode) Chain(ctx context.Context) (string, error) {
	return n.systemQuery(ctx, "Development", &n.chain.chainErr)
}

func (n *fakeNode) NodeName(ctx context.Context) (string, error) {
	return n.systemQuery(ctx, "Substrate Node", &n.chain.nameErr)
}

func (n *fakeNode) NodeVersion(ctx context.Context) (string, error) {
	return n.systemQuery(ctx, "3.0.0-dev", &n.chain.versionErr)
}

func (n *fakeNode) AccountBalance(ctx context.Context, accountID []byte) (*model.AccountBalance, error) {
	n.chain.mu.Lock()
	defer n.chain.mu.Unlock()
	if n.chain.balanceErr != nil {
		return nil, n.chain.balanceErr
	}
	return &model.AccountBalance{Nonce: 0, Free: "1000.000000000000", Reserved: "0.000000000000"}, nil
}

func (n *fakeNode) Contract(address abi.AccountID, md *abi.Metadata) (ContractGateway, error) {
	if _, err := md.Message(msgGameReady); err != nil {
		return nil, err
	}
	return &fakeGateway{chain: n.chain, md: md}, nil
}

func (n *fakeNode) Close() {
	n.chain.mu.Lock()
	n.chain.closed++
	n.chain.mu.Unlock()
}

type fakeGateway struct {
	chain *fakeChain
	md    *abi.Metadata
}

func (g *fakeGateway) encode(message string, args []interface{}) error {
	msg, err := g.md.Message(message)
	if err != nil {
		return err
	}
	_, err = msg.Encode(args...)
	return err
}

func (g *fakeGateway) Read(ctx context.Context, origin abi.AccountID, message string, args ...interface{}) (*model.CallResult, error) {
	if err := g.encode(message, args); err != nil {
		return nil, err
	}

	f := g.chain
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads = append(f.reads, message)

	if err := f.readErr[message]; err != nil {
		return nil, err
	}
	res := &model.CallResult{Flags: f.readFlags[message]}

	switch message {
	case msgGameReady:
		res.Data = f.ready
	case msgHavePlayerAccount:
		if _, ok := f.players[args[0].(abi.AccountID)]; ok {
			res.Data = []byte{1}
		} else {
			res.Data = []byte{0}
		}
	case msgGetPlayerAccount:
		p, ok := f.players[args[0].(abi.AccountID)]
		switch {
		case !ok:
			res.Data = []byte{1, 2} // Err(AccountNotExists)
		case f.getErr != nil:
			res.Data = []byte{1, *f.getErr}
		default:
			res.Data = encodePlayerOk(p.Level)
		}
	default:
		return nil, errors.New("unexpected read " + message)
	}
	return res, nil
}

func (g *fakeGateway) Exec(ctx context.Context, signer *model.SignerIdentity, message string, gasLimit int64, args ...interface{}) (*model.TxOutcome, error) {
	if err := g.encode(message, args); err != nil {
		return nil, err
	}

	f := g.chain
	f.mu.Lock()
	defer f.mu.Unlock()
	f.execs = append(f.execs, message)

	if f.execErr != nil {
		return nil, f.execErr
	}
	out := &model.TxOutcome{Message: message, Status: f.execStatus, BlockHash: "0x01"}
	if !f.execStatus.Included() {
		return out, nil
	}
	if f.execFailure != "" {
		out.DispatchError = f.execFailure
		return out, nil
	}

	who, err := abi.NewAccountID(signer.PublicKey)
	if err != nil {
		return nil, err
	}
	switch message {
	case msgCreatePlayerAccount:
		if _, ok := f.players[who]; !ok {
			f.players[who] = &PlayerAccount{LevelContracts: map[uint32]abi.AccountID{}}
		}
	case msgSubmitLevel:
		if p, ok := f.players[who]; ok {
			p.LevelContracts[args[0].(uint32)] = args[1].(abi.AccountID)
		}
	case msgRunLevel:
		if p, ok := f.players[who]; ok {
			level := args[0].(uint32)
			if _, submitted := p.LevelContracts[level]; submitted && level == p.Level {
				p.Level++
			}
		}
	}
	return out, nil
}

// encodePlayerOk builds Ok(PlayerAccount { level, level_contracts: {} })
func encodePlayerOk(level uint32) []byte {
	out := []byte{0}
	out = binary.LittleEndian.AppendUint32(out, level)
	return append(out, 0) // compact(0) map length
}

type fileMetadata struct {
	path string
	err  error
}

func (m fileMetadata) Load(ctx context.Context) (*abi.Metadata, error) {
	if m.err != nil {
		return nil, m.err
	}
	data, err := os.ReadFile(m.path)
	if err != nil {
		return nil, err
	}
	return abi.Parse(data)
}

func gameMetadata(t *testing.T) *abi.Metadata {
	t.Helper()
	md, err := fileMetadata{path: "../game-metadata.json"}.Load(context.Background())
	require.NoError(t, err)
	return md
}

func testKeyring() Keyring {
	return crypto.NewKeyring(crypto.DefaultNetwork)
}

// connected returns a connection to chain
func connected(t *testing.T, chain *fakeChain) *Connection {
	t.Helper()
	conn, _, err := Connect(context.Background(), chain, testEndpoint)
	require.NoError(t, err)
	return conn
}

// checked returns a contract handle that passed the liveness probe
func checked(t *testing.T, chain *fakeChain) *Contract {
	t.Helper()
	contract, err := CheckContract(context.Background(), connected(t, chain), gameMetadata(t), testContract)
	require.NoError(t, err)
	return contract
}

func alice(t *testing.T) *model.SignerIdentity {
	t.Helper()
	id, err := testKeyring().Derive("//Alice")
	require.NoError(t, err)
	return id
}

package game

import (
	"errors"
	"fmt"
)

// ErrorKind classifies step failures
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	// KindInput is a value rejected before any call was made
	KindInput
	// KindTransport covers connection and RPC failures
	KindTransport
	// KindDescriptor covers fetching or parsing the contract metadata
	KindDescriptor
	// KindContract is a logical failure reported by the chain or the contract
	KindContract
	// KindMismatch is a decoded value that is not what the step expects
	KindMismatch
)

func (k ErrorKind) String() string {
	switch k {
	case KindInput:
		return "input"
	case KindTransport:
		return "transport"
	case KindDescriptor:
		return "descriptor"
	case KindContract:
		return "contract"
	case KindMismatch:
		return "mismatch"
	default:
		return "unknown"
	}
}

var (
	// ErrStepInFlight is returned when a step is triggered while it is still running
	ErrStepInFlight = errors.New("step already in flight")
	// ErrPrerequisite is returned when a step is triggered before the step it depends on succeeded
	ErrPrerequisite = errors.New("prerequisite step has not succeeded")
	// ErrContractNotReady is the failure raised by the game_ready probe
	ErrContractNotReady = errors.New("game contract failed init test")
)

// StepError is a classified step failure.
// Error() returns the underlying text verbatim so it can be shown as is.
type StepError struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *StepError) Error() string {
	return e.Err.Error()
}

func (e *StepError) Unwrap() error {
	return e.Err
}

func stepError(kind ErrorKind, op string, err error) error {
	return &StepError{Kind: kind, Op: op, Err: err}
}

// KindOf returns the kind of a step failure, KindUnknown for anything else
func KindOf(err error) ErrorKind {
	var se *StepError
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindUnknown
}

// contractErrorNames are the variants of the game contract's Error enum, in declaration order
var contractErrorNames = []string{
	"InsufficiantBalance",
	"AccountExists",
	"AccountNotExists",
	"SubmitLevelContractFailed",
	"SubmittedGreaterLevel",
	"LevelContractNotExists",
	"LevelContractCallFailed",
}

// ContractError is an Err value returned by a game contract message
type ContractError struct {
	Message string
	Index   byte
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("%s returned %s", e.Message, e.Name())
}

// Name returns the enum variant name
func (e *ContractError) Name() string {
	if int(e.Index) < len(contractErrorNames) {
		return contractErrorNames[e.Index]
	}
	return fmt.Sprintf("Error(%d)", e.Index)
}

// IsContractError checks if error is a ContractError with the given variant name
func IsContractError(err error, name string) bool {
	var ce *ContractError
	return errors.As(err, &ce) && ce.Name() == name
}

package abi

import (
	"fmt"

	"github.com/centrifuge/go-substrate-rpc-client/v4/types/codec"
)

// AccountID is a 32-byte account identifier, SCALE-encoded as raw bytes
type AccountID [32]byte

// NewAccountID copies b into an AccountID
func NewAccountID(b []byte) (AccountID, error) {
	var id AccountID
	if len(b) != len(id) {
		return id, fmt.Errorf("account id must be %d bytes, got %d", len(id), len(b))
	}
	copy(id[:], b)
	return id, nil
}

// Encode builds the call input: the selector followed by the SCALE-encoded arguments
func (m *Message) Encode(args ...interface{}) ([]byte, error) {
	if len(args) != len(m.Args) {
		return nil, fmt.Errorf("message %s takes %d arguments, got %d", m.Name, len(m.Args), len(args))
	}

	input := make([]byte, 0, SelectorLen+32*len(args))
	input = append(input, m.Selector[:]...)
	for i, arg := range args {
		enc, err := codec.Encode(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to encode argument %s of %s: %w", m.Args[i].Name, m.Name, err)
		}
		input = append(input, enc...)
	}
	return input, nil
}

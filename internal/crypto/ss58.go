package crypto

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/blake2b"
)

const (
	// AccountIDLen is the length of a Substrate account ID (sr25519 public key)
	AccountIDLen = 32

	// DefaultNetwork is the generic Substrate SS58 prefix
	DefaultNetwork = 42

	ss58ChecksumLen = 2
	maxSimplePrefix = 63
	maxFullPrefix   = 16383
)

var ss58Context = []byte("SS58PRE")

// ErrInvalidAddress is returned for addresses that fail to decode
var ErrInvalidAddress = errors.New("invalid SS58 address")

// EncodeAddress encodes a 32-byte account ID as an SS58 address for the given network
func EncodeAddress(accountID []byte, network uint16) (string, error) {
	if len(accountID) != AccountIDLen {
		return "", fmt.Errorf("account id must be %d bytes, got %d", AccountIDLen, len(accountID))
	}
	if network > maxFullPrefix {
		return "", fmt.Errorf("network prefix %d out of range", network)
	}

	var payload []byte
	if network <= maxSimplePrefix {
		payload = append(payload, byte(network))
	} else {
		// Two-byte prefix layout for networks 64..16383
		first := byte((network&0x00fc)>>2) | 0x40
		second := byte(network>>8) | byte((network&0x0003)<<6)
		payload = append(payload, first, second)
	}
	payload = append(payload, accountID...)

	sum := ss58Checksum(payload)
	return base58.Encode(append(payload, sum[:ss58ChecksumLen]...)), nil
}

// DecodeAddress decodes an SS58 address into its account ID and network prefix.
// The checksum is verified.
func DecodeAddress(address string) ([]byte, uint16, error) {
	raw, err := base58.Decode(address)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	if len(raw) == 0 {
		return nil, 0, ErrInvalidAddress
	}

	var network uint16
	prefixLen := 1
	switch {
	case raw[0] <= maxSimplePrefix:
		network = uint16(raw[0])
	case raw[0] < 128:
		if len(raw) < 2 {
			return nil, 0, ErrInvalidAddress
		}
		lower := (raw[0] << 2) | (raw[1] >> 6)
		upper := raw[1] & 0x3f
		network = uint16(lower) | uint16(upper)<<8
		prefixLen = 2
	default:
		return nil, 0, fmt.Errorf("%w: reserved prefix byte %d", ErrInvalidAddress, raw[0])
	}

	if len(raw) != prefixLen+AccountIDLen+ss58ChecksumLen {
		return nil, 0, fmt.Errorf("%w: unexpected length %d", ErrInvalidAddress, len(raw))
	}

	payload := raw[:prefixLen+AccountIDLen]
	sum := ss58Checksum(payload)
	if !bytes.Equal(sum[:ss58ChecksumLen], raw[prefixLen+AccountIDLen:]) {
		return nil, 0, fmt.Errorf("%w: checksum mismatch", ErrInvalidAddress)
	}

	accountID := make([]byte, AccountIDLen)
	copy(accountID, raw[prefixLen:])
	return accountID, network, nil
}

func ss58Checksum(payload []byte) [blake2b.Size]byte {
	buf := make([]byte, 0, len(ss58Context)+len(payload))
	buf = append(buf, ss58Context...)
	buf = append(buf, payload...)
	return blake2b.Sum512(buf)
}

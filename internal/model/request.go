package model

import (
	"errors"
	"strings"
)

// ConnectRequest represents request for POST /node/connect.
// An empty endpoint falls back to the pre-filled one.
type ConnectRequest struct {
	Endpoint string `json:"endpoint"`
}

// Validate validates ConnectRequest.
func (r *ConnectRequest) Validate() error {
	if r.Endpoint != "" && strings.TrimSpace(r.Endpoint) == "" {
		return errors.New("endpoint cannot be blank")
	}
	return nil
}

// CheckRequest represents request for POST /game/check.
// An empty address falls back to the pre-filled devnet contract.
type CheckRequest struct {
	ContractAddress string `json:"contractAddress"`
}

// KeyringRequest represents request for POST /keyring/connect
type KeyringRequest struct {
	Secret string `json:"secret"`
}

// Validate validates KeyringRequest.
func (r *KeyringRequest) Validate() error {
	if r.Secret == "" {
		return errors.New("secret is required")
	}
	return nil
}

// SubmitLevelRequest represents request for POST /player/levels/submit
type SubmitLevelRequest struct {
	Level         uint32 `json:"level"`
	LevelContract string `json:"levelContract"`
}

// Validate validates SubmitLevelRequest.
func (r *SubmitLevelRequest) Validate() error {
	if strings.TrimSpace(r.LevelContract) == "" {
		return errors.New("levelContract is required")
	}
	return nil
}

// RunLevelRequest represents request for POST /player/levels/run
type RunLevelRequest struct {
	Level uint32 `json:"level"`
}

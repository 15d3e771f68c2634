package model

// IndicatorState is the visual state of a status indicator
type IndicatorState string

const (
	IndicatorNeutral IndicatorState = "neutral"
	IndicatorSuccess IndicatorState = "success"
	IndicatorFail    IndicatorState = "fail"
)

// Indicator is one status line of the front end
type Indicator struct {
	State IndicatorState `json:"state"`
	Text  string         `json:"text"`
}

// Indicator names
const (
	IndicatorNode          = "node"
	IndicatorGame          = "game"
	IndicatorKeyring       = "keyring"
	IndicatorPlayerAccount = "player-account"
	IndicatorPlayerLevel   = "player-level"
	IndicatorLevels        = "levels"
)

// StepState is the lifecycle of one workflow step
type StepState string

const (
	StepIdle      StepState = "IDLE"
	StepInFlight  StepState = "IN_FLIGHT"
	StepSucceeded StepState = "SUCCEEDED"
	StepFailed    StepState = "FAILED"
)

// SessionView is the snapshot returned by GET /session
type SessionView struct {
	Indicators map[string]Indicator `json:"indicators"`
	Steps      map[string]StepState `json:"steps"`
	// Enabled lists the steps whose control may be triggered now
	Enabled  map[string]bool    `json:"enabled"`
	Defaults SessionDefaults    `json:"defaults"`
	Signer   *SignerIdentity    `json:"signer,omitempty"`
	Player   *PlayerAccountInfo `json:"player,omitempty"`
	Chain    *ChainMetadata     `json:"chain,omitempty"`
	Contract string             `json:"contract,omitempty"`
}

// SessionDefaults are the values pre-filled in the controls
type SessionDefaults struct {
	Endpoint        string `json:"endpoint"`
	ContractAddress string `json:"contractAddress"`
}

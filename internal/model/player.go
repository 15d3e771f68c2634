package model

// UnknownLevel is reported when the player level could not be read
const UnknownLevel = -1

// PlayerStatus is the outcome of a player account query
type PlayerStatus string

const (
	PlayerStatusActive  PlayerStatus = "Active"
	PlayerStatusNone    PlayerStatus = "None"
	PlayerStatusUnknown PlayerStatus = "Unknown"
)

// PlayerAccountInfo is game-specific contract state for a signer.
// It is fetched fresh on every query.
type PlayerAccountInfo struct {
	Status PlayerStatus `json:"status"`
	Exists bool         `json:"exists"`
	Level  int64        `json:"level"`
}

// UnknownPlayer is the result when existence could not be established
func UnknownPlayer() PlayerAccountInfo {
	return PlayerAccountInfo{Status: PlayerStatusUnknown, Level: UnknownLevel}
}

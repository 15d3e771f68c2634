package model

// AccountBalance is the System.Account entry read for a signer address.
// Amounts are decimal strings in whole units (no float precision loss).
type AccountBalance struct {
	Address  string `json:"address"`
	Nonce    uint32 `json:"nonce"`
	Free     string `json:"free"`
	Reserved string `json:"reserved"`
}

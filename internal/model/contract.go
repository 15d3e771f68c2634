package model

// GasUnbounded asks the gateway to use the call-weight ceiling.
// Reads pass 0, which resolves the same way.
const GasUnbounded int64 = -1

// CallResult is the typed outcome of a read-only contract call.
type CallResult struct {
	Flags        uint32 `json:"flags"`
	Data         []byte `json:"data"`
	GasConsumed  uint64 `json:"gasConsumed"`
	DebugMessage string `json:"debugMessage,omitempty"`
	// DispatchError is set when the call completed but the chain
	// reported a failure. It is empty on success.
	DispatchError string `json:"dispatchError,omitempty"`
}

// flagRevert is set by the contract when the message reverted
const flagRevert = 1

// Failed reports whether the call failed on chain (dispatch error or revert)
func (r *CallResult) Failed() bool {
	return r.DispatchError != "" || r.Flags&flagRevert != 0
}

// TxStatus is the last status seen for a submitted extrinsic
type TxStatus string

const (
	TxStatusInBlock   TxStatus = "IN_BLOCK"
	TxStatusFinalized TxStatus = "FINALIZED"
	TxStatusDropped   TxStatus = "DROPPED"
	TxStatusInvalid   TxStatus = "INVALID"
	TxStatusUsurped   TxStatus = "USURPED"
)

// Included reports whether the extrinsic made it into a block
func (s TxStatus) Included() bool {
	return s == TxStatusInBlock || s == TxStatusFinalized
}

// TxOutcome represents the result of a signed contract call
type TxOutcome struct {
	Message   string   `json:"message"`
	Status    TxStatus `json:"status"`
	BlockHash string   `json:"blockHash,omitempty"`
	// DispatchError is set when the extrinsic was included but its
	// System.ExtrinsicFailed event reported a failure.
	DispatchError string `json:"dispatchError,omitempty"`
}

// Failed reports whether an included extrinsic failed to dispatch
func (o *TxOutcome) Failed() bool {
	return o.DispatchError != ""
}

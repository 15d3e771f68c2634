package model

// SignerIdentity is a keypair derived from a secret URI or phrase.
// Secret stays in memory and is never serialized.
type SignerIdentity struct {
	Name      string `json:"name"`
	Address   string `json:"address"`
	PublicKey []byte `json:"publicKey"`
	Secret    string `json:"-"`
}

package model

// ChainMetadata holds the three system queries answered by a node on connect
type ChainMetadata struct {
	Chain       string `json:"chain"`
	NodeName    string `json:"nodeName"`
	NodeVersion string `json:"nodeVersion"`
}

package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/brson/contract-game/internal/abi"
)

// MetadataFileName is the descriptor name served next to the front end
const MetadataFileName = "game-metadata.json"

// maxMetadataSize bounds the descriptor download
const maxMetadataSize = 8 << 20

// MetadataClient loads the game contract descriptor over HTTP, or from a
// local file when no base URL is configured
type MetadataClient struct {
	baseURL string
	file    string
	client  *http.Client
}

// NewMetadataClient creates a descriptor client.
// baseURL takes precedence over file when both are set.
func NewMetadataClient(baseURL, file string) *MetadataClient {
	return &MetadataClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		file:    file,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Load fetches and parses the descriptor
func (c *MetadataClient) Load(ctx context.Context) (*abi.Metadata, error) {
	var data []byte
	var err error
	if c.baseURL != "" {
		data, err = c.fetch(ctx)
	} else {
		data, err = c.readFile()
	}
	if err != nil {
		return nil, err
	}

	md, err := abi.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse contract metadata: %w", err)
	}
	return md, nil
}

func (c *MetadataClient) fetch(ctx context.Context) ([]byte, error) {
	url := fmt.Sprintf("%s/%s", c.baseURL, MetadataFileName)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build metadata request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get contract metadata: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to get contract metadata: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxMetadataSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read contract metadata: %w", err)
	}
	return data, nil
}

func (c *MetadataClient) readFile() ([]byte, error) {
	if c.file == "" {
		return nil, fmt.Errorf("no contract metadata source configured")
	}
	data, err := os.ReadFile(c.file)
	if err != nil {
		return nil, fmt.Errorf("failed to read contract metadata: %w", err)
	}
	return data, nil
}

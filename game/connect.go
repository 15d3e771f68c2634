package game

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/brson/contract-game/internal/model"

	"golang.org/x/sync/errgroup"
)

// Connection is the session handle for an open node link
type Connection struct {
	Endpoint string
	Node     Node
	Meta     model.ChainMetadata
}

// Close closes the underlying transport
func (c *Connection) Close() {
	if c != nil && c.Node != nil {
		c.Node.Close()
	}
}

// Connect opens a transport to endpoint and queries chain name, node name and
// node version concurrently. All three must succeed; on failure the transport
// is closed and no handle is returned.
func Connect(ctx context.Context, connector Connector, endpoint string) (*Connection, string, error) {
	const op = "connect"

	if strings.TrimSpace(endpoint) == "" {
		return nil, "", stepError(KindInput, op, errors.New("endpoint cannot be empty"))
	}

	node, err := connector.Connect(ctx, endpoint)
	if err != nil {
		return nil, "", stepError(KindTransport, op, err)
	}

	meta, err := chainMetadata(ctx, node)
	if err != nil {
		node.Close()
		return nil, "", stepError(KindTransport, op, err)
	}

	msg := fmt.Sprintf("Connected to %s using %s v%s", meta.Chain, meta.NodeName, meta.NodeVersion)
	return &Connection{Endpoint: endpoint, Node: node, Meta: meta}, msg, nil
}

// chainMetadata fans out the three system queries and waits for all of them
func chainMetadata(ctx context.Context, node Node) (model.ChainMetadata, error) {
	var meta model.ChainMetadata

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := node.Chain(gctx)
		if err != nil {
			return fmt.Errorf("failed to get chain name: %w", err)
		}
		meta.Chain = v
		return nil
	})
	g.Go(func() error {
		v, err := node.NodeName(gctx)
		if err != nil {
			return fmt.Errorf("failed to get node name: %w", err)
		}
		meta.NodeName = v
		return nil
	})
	g.Go(func() error {
		v, err := node.NodeVersion(gctx)
		if err != nil {
			return fmt.Errorf("failed to get node version: %w", err)
		}
		meta.NodeVersion = v
		return nil
	})

	if err := g.Wait(); err != nil {
		return model.ChainMetadata{}, err
	}
	return meta, nil
}

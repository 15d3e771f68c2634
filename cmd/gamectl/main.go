// Drives the game workflow from a terminal.
// Usage: go run ./cmd/gamectl run --create
package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/brson/contract-game/game"
	"github.com/brson/contract-game/internal/client"
	"github.com/brson/contract-game/internal/config"
	"github.com/brson/contract-game/internal/crypto"
	"github.com/brson/contract-game/internal/model"

	"github.com/urfave/cli/v2"
)

var (
	endpointFlag = &cli.StringFlag{
		Name:  "endpoint",
		Usage: "node websocket endpoint (default GAME_NODE_ENDPOINT)",
	}
	contractFlag = &cli.StringFlag{
		Name:  "contract",
		Usage: "game contract address (default GAME_CONTRACT_ADDRESS)",
	}
	metadataFlag = &cli.StringFlag{
		Name:  "metadata",
		Usage: "contract metadata file or base URL serving game-metadata.json",
	}
	createFlag = &cli.BoolFlag{
		Name:  "create",
		Usage: "create the player account when it does not exist",
	}
	secretFlag = &cli.StringFlag{
		Name:  "secret",
		Usage: "signer secret URI; prompted without echo when omitted",
	}
)

func main() {
	app := &cli.App{
		Name:  "gamectl",
		Usage: "connect to a node, check the game contract and manage a player account",
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "connect, check the contract, authenticate and query the player account",
				Flags:  []cli.Flag{endpointFlag, contractFlag, metadataFlag, createFlag, secretFlag},
				Action: run,
			},
			{
				Name:      "address",
				Usage:     "print the address derived from a secret URI",
				ArgsUsage: "<secret>",
				Action:    address,
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := cfg.NewLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	baseURL, file := cfg.AssetBaseURL, cfg.MetadataFile
	if m := c.String(metadataFlag.Name); m != "" {
		if isURL(m) {
			baseURL, file = m, ""
		} else {
			baseURL, file = "", m
		}
	}

	secret := c.String(secretFlag.Name)
	if secret == "" {
		secret, err = config.PromptForSecret("Enter signer secret (e.g. //Alice): ")
		if err != nil {
			return err
		}
	}

	ctrl := game.NewController(game.Dependencies{
		Connector: client.NewSubstrateConnector(client.OptionsFromConfig(cfg), log.Named("substrate")),
		Keyring:   crypto.NewKeyring(cfg.SS58Prefix),
		Metadata:  client.NewMetadataClient(baseURL, file),
	}, model.SessionDefaults{
		Endpoint:        cfg.NodeEndpoint,
		ContractAddress: cfg.ContractAddress,
	}, log.Named("game"))
	defer ctrl.Close()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt)
	defer stop()

	if err := ctrl.Connect(ctx, c.String(endpointFlag.Name)); err != nil {
		return report(ctrl, err)
	}
	if err := ctrl.CheckContract(ctx, c.String(contractFlag.Name)); err != nil {
		return report(ctrl, err)
	}
	if err := ctrl.Authenticate(ctx, secret); err != nil {
		return report(ctrl, err)
	}

	view := ctrl.Snapshot()
	if c.Bool(createFlag.Name) && view.Enabled[string(game.StepCreatePlayer)] {
		out, err := ctrl.CreatePlayerAccount(ctx)
		if err != nil {
			return report(ctrl, err)
		}
		fmt.Printf("create_player_account: %s %s\n", out.Status, out.BlockHash)
		if err := ctrl.RefreshPlayerAccount(ctx); err != nil {
			return report(ctrl, err)
		}
	}

	return report(ctrl, nil)
}

// indicatorOrder is the display order of the status lines
var indicatorOrder = []struct{ name, label string }{
	{model.IndicatorNode, "node"},
	{model.IndicatorGame, "game"},
	{model.IndicatorKeyring, "keyring"},
	{model.IndicatorPlayerAccount, "player account"},
	{model.IndicatorPlayerLevel, "player level"},
	{model.IndicatorLevels, "levels"},
}

// report prints the status lines and passes err through
func report(ctrl *game.Controller, err error) error {
	view := ctrl.Snapshot()
	for _, ind := range indicatorOrder {
		i := view.Indicators[ind.name]
		if i.Text == "" {
			continue
		}
		fmt.Printf("%-15s %-8s %s\n", ind.label, i.State, i.Text)
	}
	if err != nil && game.KindOf(err) != game.KindUnknown {
		return fmt.Errorf("%s error: %w", game.KindOf(err), err)
	}
	return err
}

func address(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("expected exactly one secret argument")
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	id, err := crypto.NewKeyring(cfg.SS58Prefix).Derive(c.Args().First())
	if err != nil {
		return err
	}
	fmt.Println(id.Address)
	return nil
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

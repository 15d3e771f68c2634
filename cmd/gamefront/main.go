// Serves the game front end API.
// Usage: go run ./cmd/gamefront [--authenticate]
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/brson/contract-game/docs"
	"github.com/brson/contract-game/game"
	"github.com/brson/contract-game/internal/api"
	"github.com/brson/contract-game/internal/client"
	"github.com/brson/contract-game/internal/config"
	"github.com/brson/contract-game/internal/crypto"
	"github.com/brson/contract-game/internal/handler"
	"github.com/brson/contract-game/internal/model"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	app := &cli.App{
		Name:  "gamefront",
		Usage: "serve the contract game API",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "authenticate",
				Usage: "prompt for a signer secret and run connect, check and authenticate at startup",
			},
		},
		Action: serve,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serve(c *cli.Context) error {
	if err := config.Init(); err != nil {
		return err
	}
	cfg := config.Get()

	log, err := cfg.NewLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	ctrl := game.NewController(game.Dependencies{
		Connector: client.NewSubstrateConnector(client.OptionsFromConfig(cfg), log.Named("substrate")),
		Keyring:   crypto.NewKeyring(cfg.SS58Prefix),
		Metadata:  client.NewMetadataClient(cfg.AssetBaseURL, cfg.MetadataFile),
	}, model.SessionDefaults{
		Endpoint:        cfg.NodeEndpoint,
		ContractAddress: cfg.ContractAddress,
	}, log.Named("game"))
	defer ctrl.Close()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if c.Bool("authenticate") {
		if err := config.PromptForSignerSecret(); err != nil {
			return err
		}
		if err := startSession(ctx, ctrl); err != nil {
			// The session stays usable from the API; every failed step can be retried.
			log.Warn("startup session incomplete", zap.Error(err))
		}
	}

	gameHandler, err := handler.NewGameHandler(ctrl, cfg.MetadataFile, log.Named("http"))
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + config.GetPort(),
		Handler:           api.SetupRouter(gameHandler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", srv.Addr), zap.String("endpoint", cfg.NodeEndpoint))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// startSession runs the steps up to authentication with the prompted secret
func startSession(ctx context.Context, ctrl *game.Controller) error {
	secret, err := config.GetSignerSecret()
	if err != nil {
		return err
	}
	if err := ctrl.Connect(ctx, ""); err != nil {
		return err
	}
	if err := ctrl.CheckContract(ctx, ""); err != nil {
		return err
	}
	return ctrl.Authenticate(ctx, secret)
}

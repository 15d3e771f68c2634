package api

import (
	"net/http"

	"github.com/brson/contract-game/internal/handler"

	httpSwagger "github.com/swaggo/http-swagger"
)

// SetupRouter sets up router with handlers
func SetupRouter(gameHandler *handler.GameHandler) http.Handler {
	mux := http.NewServeMux()

	// Swagger UI
	mux.HandleFunc("/swagger/", httpSwagger.WrapHandler)

	mux.HandleFunc("/session", gameHandler.Session)
	mux.HandleFunc("/node/connect", gameHandler.Connect)
	mux.HandleFunc("/game/check", gameHandler.CheckContract)
	mux.HandleFunc("/game-metadata.json", gameHandler.Metadata)

	// Signer endpoints
	mux.HandleFunc("/keyring/connect", gameHandler.Authenticate)
	mux.HandleFunc("/keyring/qr", gameHandler.AddressQR)

	// Player account endpoints
	mux.HandleFunc("/player/refresh", gameHandler.RefreshPlayer)
	mux.HandleFunc("/player/create", gameHandler.CreatePlayer)
	mux.HandleFunc("/player/levels/submit", gameHandler.SubmitLevel)
	mux.HandleFunc("/player/levels/run", gameHandler.RunLevel)

	return mux
}

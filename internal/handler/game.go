package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/brson/contract-game/game"
	"github.com/brson/contract-game/internal/model"

	qrcode "github.com/skip2/go-qrcode"
	"go.uber.org/zap"
)

// Error codes carried in model.ErrorResponse
const (
	CodeStepInFlight = "STEP_IN_FLIGHT"
	CodePrerequisite = "PREREQUISITE"
	CodeBadRequest   = "BAD_REQUEST"
)

// GameHandler exposes the game workflow steps over HTTP
type GameHandler struct {
	ctrl         *game.Controller
	metadataFile string
	log          *zap.Logger
}

// NewGameHandler creates a new GameHandler
func NewGameHandler(ctrl *game.Controller, metadataFile string, log *zap.Logger) (*GameHandler, error) {
	if ctrl == nil {
		return nil, errors.New("controller is required")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &GameHandler{ctrl: ctrl, metadataFile: metadataFile, log: log}, nil
}

// Session handles GET /session
// @Summary      Session snapshot
// @Description  Returns status indicators, step states, enabled controls and the signer identity
// @Tags         session
// @Produce      json
// @Success      200  {object}  model.SessionView
// @Router       /session [get]
func (h *GameHandler) Session(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. Should be GET", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, h.ctrl.Snapshot())
}

// Connect handles POST /node/connect
// @Summary      Connect to node
// @Description  Opens a websocket to the node and reads chain name, node name and node version
// @Tags         node
// @Accept       json
// @Produce      json
// @Param        request  body      model.ConnectRequest  true  "Node endpoint, empty for the default"
// @Success      200      {object}  model.SessionView
// @Failure      502      {object}  model.ErrorResponse
// @Router       /node/connect [post]
func (h *GameHandler) Connect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	var req model.ConnectRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err)
		return
	}

	if err := h.ctrl.Connect(r.Context(), req.Endpoint); err != nil {
		h.writeStepError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.ctrl.Snapshot())
}

// CheckContract handles POST /game/check
// @Summary      Check game contract
// @Description  Loads the contract metadata and calls game_ready on the contract
// @Tags         game
// @Accept       json
// @Produce      json
// @Param        request  body      model.CheckRequest  true  "Contract address, empty for the default"
// @Success      200      {object}  model.SessionView
// @Failure      400      {object}  model.ErrorResponse
// @Failure      409      {object}  model.ErrorResponse
// @Failure      502      {object}  model.ErrorResponse
// @Router       /game/check [post]
func (h *GameHandler) CheckContract(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	var req model.CheckRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	if err := h.ctrl.CheckContract(r.Context(), req.ContractAddress); err != nil {
		h.writeStepError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.ctrl.Snapshot())
}

// Authenticate handles POST /keyring/connect
// @Summary      Authenticate signer
// @Description  Derives the signer from a secret URI or phrase, reads its balance and queries its player account
// @Tags         keyring
// @Accept       json
// @Produce      json
// @Param        request  body      model.KeyringRequest  true  "Secret URI, e.g. //Alice"
// @Success      200      {object}  model.SessionView
// @Failure      400      {object}  model.ErrorResponse
// @Failure      409      {object}  model.ErrorResponse
// @Failure      502      {object}  model.ErrorResponse
// @Router       /keyring/connect [post]
func (h *GameHandler) Authenticate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	var req model.KeyringRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err)
		return
	}

	err := h.ctrl.Authenticate(r.Context(), req.Secret)
	req.Secret = ""
	if err != nil {
		h.writeStepError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.ctrl.Snapshot())
}

// AddressQR handles GET /keyring/qr
// @Summary      Signer address QR code
// @Description  Returns a PNG QR code of the authenticated signer's address
// @Tags         keyring
// @Produce      png
// @Success      200
// @Failure      409  {object}  model.ErrorResponse
// @Router       /keyring/qr [get]
func (h *GameHandler) AddressQR(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. Should be GET", http.StatusMethodNotAllowed)
		return
	}

	signer := h.ctrl.Signer()
	if signer == nil {
		writeError(w, http.StatusConflict, CodePrerequisite, errors.New("no signer authenticated"))
		return
	}

	png, err := AddressQR(signer.Address)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "", err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// AddressQR encodes address as a 256px PNG QR code
func AddressQR(address string) ([]byte, error) {
	qr, err := qrcode.New(address, qrcode.Medium)
	if err != nil {
		return nil, err
	}
	return qr.PNG(256)
}

// RefreshPlayer handles POST /player/refresh
// @Summary      Query player account
// @Description  Reads whether the signer has a player account and its level
// @Tags         player
// @Produce      json
// @Success      200  {object}  model.PlayerAccountInfo
// @Failure      409  {object}  model.ErrorResponse
// @Failure      502  {object}  model.ErrorResponse
// @Router       /player/refresh [post]
func (h *GameHandler) RefreshPlayer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	if err := h.ctrl.RefreshPlayerAccount(r.Context()); err != nil {
		h.writeStepError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.ctrl.Snapshot().Player)
}

// CreatePlayer handles POST /player/create
// @Summary      Create player account
// @Description  Submits create_player_account signed by the authenticated signer. Query again to observe the account.
// @Tags         player
// @Produce      json
// @Success      200  {object}  model.TxOutcome
// @Failure      409  {object}  model.ErrorResponse
// @Failure      502  {object}  model.ErrorResponse
// @Router       /player/create [post]
func (h *GameHandler) CreatePlayer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	out, err := h.ctrl.CreatePlayerAccount(r.Context())
	if err != nil {
		h.writeStepError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// SubmitLevel handles POST /player/levels/submit
// @Summary      Submit level contract
// @Description  Registers a deployed contract as the player's solution for a level
// @Tags         player
// @Accept       json
// @Produce      json
// @Param        request  body      model.SubmitLevelRequest  true  "Level and level contract address"
// @Success      200      {object}  model.TxOutcome
// @Failure      400      {object}  model.ErrorResponse
// @Failure      409      {object}  model.ErrorResponse
// @Failure      502      {object}  model.ErrorResponse
// @Router       /player/levels/submit [post]
func (h *GameHandler) SubmitLevel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	var req model.SubmitLevelRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err)
		return
	}

	out, err := h.ctrl.SubmitLevel(r.Context(), req.Level, req.LevelContract)
	if err != nil {
		h.writeStepError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// RunLevel handles POST /player/levels/run
// @Summary      Run level
// @Description  Runs the player's submitted contract for a level
// @Tags         player
// @Accept       json
// @Produce      json
// @Param        request  body      model.RunLevelRequest  true  "Level"
// @Success      200      {object}  model.TxOutcome
// @Failure      409      {object}  model.ErrorResponse
// @Failure      502      {object}  model.ErrorResponse
// @Router       /player/levels/run [post]
func (h *GameHandler) RunLevel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	var req model.RunLevelRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	out, err := h.ctrl.RunLevel(r.Context(), req.Level)
	if err != nil {
		h.writeStepError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Metadata handles GET /game-metadata.json
// @Summary      Contract metadata
// @Description  Serves the game contract's interface descriptor
// @Tags         game
// @Produce      json
// @Success      200
// @Router       /game-metadata.json [get]
func (h *GameHandler) Metadata(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. Should be GET", http.StatusMethodNotAllowed)
		return
	}
	if h.metadataFile == "" {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	http.ServeFile(w, r, h.metadataFile)
}

// writeStepError maps a step failure to a status code
func (h *GameHandler) writeStepError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, game.ErrStepInFlight):
		writeError(w, http.StatusConflict, CodeStepInFlight, err)
		return
	case errors.Is(err, game.ErrPrerequisite):
		writeError(w, http.StatusConflict, CodePrerequisite, err)
		return
	}

	kind := game.KindOf(err)
	status := http.StatusBadGateway
	switch kind {
	case game.KindInput, game.KindDescriptor:
		status = http.StatusBadRequest
	case game.KindUnknown:
		status = http.StatusInternalServerError
	}
	h.log.Debug("step failed", zap.String("kind", kind.String()), zap.Int("status", status), zap.Error(err))
	writeError(w, status, kind.String(), err)
}

func decodeRequest(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if r.Body == nil || r.ContentLength == 0 {
		return true
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	writeJSON(w, status, model.ErrorResponse{Error: err.Error(), Code: code})
}

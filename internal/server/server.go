package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/stacks-chat-assistant/server/internal/assistant/engine"
	"github.com/stacks-chat-assistant/server/internal/assistant/model"
	errx "github.com/stacks-chat-assistant/server/internal/core/error"
	"github.com/stacks-chat-assistant/server/internal/stacks"
	logx "github.com/stacks-chat-assistant/server/pkg/logger"
)

// ResponseGenerator is the engine surface the HTTP layer depends on.
type ResponseGenerator interface {
	GenerateResponse(ctx context.Context, req engine.GenerateRequest) (*model.EngineResponse, error)
	Model() string
}

// BalanceFetcher supplies the engine's balance input.
type BalanceFetcher interface {
	GetSTXBalance(ctx context.Context, address string) (float64, error)
}

// Server wires the engine and its collaborators behind a chi router.
type Server struct {
	engine    ResponseGenerator
	chats     model.ChatRepository
	transfers model.TransferRepository
	balances  BalanceFetcher
	network   stacks.Network
	reg       *prometheus.Registry
	durations func(http.Handler) http.Handler
}

// New builds a Server. balances may be nil when no balance source is
// configured; chat requests then run with balance unknown.
func New(
	eng ResponseGenerator,
	chats model.ChatRepository,
	transfers model.TransferRepository,
	balances BalanceFetcher,
	network stacks.Network,
	reg *prometheus.Registry,
) *Server {
	s := &Server{
		engine:    eng,
		chats:     chats,
		transfers: transfers,
		balances:  balances,
		network:   network,
		reg:       reg,
	}
	if reg != nil {
		s.durations = requestDuration(reg)
	}
	return s
}

// Handler assembles the HTTP routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestLogger)
	if s.durations != nil {
		r.Use(s.durations)
	}

	r.Post("/api/chat", s.handleChat)
	r.Delete("/api/conversations/{id}", s.handleClearConversation)
	r.Post("/api/transfers", s.handleRecordTransfer)
	r.Get("/api/transfers/{address}", s.handleListTransfers)
	r.Get("/healthz", s.handleHealth)
	if s.reg != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.reg, promhttp.HandlerOpts{}))
	}
	return r
}

type chatRequest struct {
	ConversationID string `json:"conversation_id"`
	Message        string `json:"message"`
	Address        string `json:"address,omitempty"`
}

type chatResponse struct {
	Message string                     `json:"message"`
	Action  *model.Action              `json:"action,omitempty"`
	Context *model.ConversationContext `json:"context,omitempty"`
	Model   string                     `json:"model"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var body chatRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(body.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}
	if body.ConversationID == "" {
		writeError(w, http.StatusBadRequest, "conversation_id is required")
		return
	}

	ctx := r.Context()

	history, err := s.chats.LoadHistory(ctx, body.ConversationID)
	if err != nil {
		writeAppError(w, err)
		return
	}

	var balance *float64
	if body.Address != "" && s.balances != nil {
		if v, err := s.balances.GetSTXBalance(ctx, body.Address); err == nil {
			balance = &v
		} else {
			// Balance is a best-effort input; the engine degrades to
			// "unknown" rather than failing the chat.
			logx.Warn().Err(err).Str("address", body.Address).Msg("balance lookup failed")
		}
	}

	resp, err := s.engine.GenerateResponse(ctx, engine.GenerateRequest{
		Message: body.Message,
		History: history.Turns,
		Address: body.Address,
		Balance: balance,
		Network: s.network.Name(),
	})
	if err != nil {
		writeAppError(w, err)
		return
	}

	if err := s.chats.AddTurn(ctx, body.ConversationID, model.UserTurn(body.Message)); err != nil {
		logx.Error().Err(err).Str("conversation_id", body.ConversationID).Msg("failed to save user turn")
	}
	if err := s.chats.AddTurn(ctx, body.ConversationID, model.AssistantTurn(resp.Message)); err != nil {
		logx.Error().Err(err).Str("conversation_id", body.ConversationID).Msg("failed to save assistant turn")
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Message: resp.Message,
		Action:  resp.Action,
		Context: resp.Context,
		Model:   s.engine.Model(),
	})
}

func (s *Server) handleClearConversation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.chats.ClearHistory(r.Context(), id); err != nil {
		writeAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type recordTransferRequest struct {
	ID        string  `json:"id"`
	Sender    string  `json:"sender"`
	Recipient string  `json:"recipient"`
	Amount    float64 `json:"amount"`
	Memo      string  `json:"memo,omitempty"`
}

func (s *Server) handleRecordTransfer(w http.ResponseWriter, r *http.Request) {
	var body recordTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Amount <= 0 {
		writeError(w, http.StatusBadRequest, "amount must be positive")
		return
	}
	if !stacks.IsValidAddress(body.Recipient) {
		writeError(w, http.StatusBadRequest, "recipient is not a valid address")
		return
	}

	rec := model.TransferRecord{
		ID:        body.ID,
		Sender:    body.Sender,
		Recipient: body.Recipient,
		Amount:    body.Amount,
		Memo:      body.Memo,
		Network:   s.network.Name(),
		Status:    "pending",
		Timestamp: time.Now().UTC(),
	}
	if err := s.transfers.RecordTransfer(r.Context(), rec); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleListTransfers(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")
	records, err := s.transfers.ListTransfers(r.Context(), address)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"transfers": records})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"network": s.network.Name(),
		"model":   s.engine.Model(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logx.Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeAppError maps errx.AppError statuses through; anything else is an
// internal error.
func writeAppError(w http.ResponseWriter, err error) {
	var appErr *errx.AppError
	if errors.As(err, &appErr) {
		writeError(w, appErr.Status, appErr.Message)
		return
	}
	writeError(w, http.StatusInternalServerError, errx.SystemErrorMessage)
}

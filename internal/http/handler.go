package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/ardalanebrahimi/mini-coder-sub001/internal/domain"
	"github.com/ardalanebrahimi/mini-coder-sub001/internal/ledger"
	"github.com/ardalanebrahimi/mini-coder-sub001/internal/observability"
)

// Handler handles HTTP requests.
type Handler struct {
	service *domain.GenerationService
	tokens  *ledger.TokenLedger
	likes   domain.LikeStore
}

// NewHandler creates a new HTTP handler (DI constructor).
func NewHandler(service *domain.GenerationService, tokens *ledger.TokenLedger, likes domain.LikeStore) *Handler {
	return &Handler{
		service: service,
		tokens:  tokens,
		likes:   likes,
	}
}

type generateRequest struct {
	Prompt          string  `json:"prompt"`
	Language        string  `json:"language,omitempty"`
	ExistingCode    string  `json:"existing_code,omitempty"`
	MaxOutputTokens int     `json:"max_output_tokens,omitempty"`
	Temperature     float64 `json:"temperature,omitempty"`
}

type likeRequest struct {
	ProjectID string `json:"project_id"`
}

type likeResponse struct {
	ProjectID  string `json:"project_id"`
	Liked      bool   `json:"liked"`
	TotalLikes int64  `json:"total_likes"`
}

type balanceResponse struct {
	AccountID string `json:"account_id"`
	Tokens    int64  `json:"tokens"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// HandleGenerate processes app generation requests (composite flow: app
// code plus a short app name under one token charge).
func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}

	accountID, ok := h.accountID(w, r)
	if !ok {
		return
	}
	ctx = observability.WithAccountID(ctx, accountID)

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", fmt.Sprintf("invalid request body: %v", err))
		return
	}

	logger := observability.FromContext(ctx)
	logger.Info("generate request received", zap.Int("prompt_chars", len(req.Prompt)))

	result, err := h.service.GenerateApp(ctx, accountID, &domain.GenerationRequest{
		Prompt:          req.Prompt,
		Language:        req.Language,
		MaxOutputTokens: req.MaxOutputTokens,
		Temperature:     req.Temperature,
	})
	if err != nil {
		h.writeServiceError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, result)
}

// HandleModify processes modification requests against an existing artifact.
func (h *Handler) HandleModify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}

	accountID, ok := h.accountID(w, r)
	if !ok {
		return
	}
	ctx = observability.WithAccountID(ctx, accountID)

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", fmt.Sprintf("invalid request body: %v", err))
		return
	}

	result, err := h.service.Modify(ctx, accountID, &domain.GenerationRequest{
		Prompt:          req.Prompt,
		Language:        req.Language,
		MaxOutputTokens: req.MaxOutputTokens,
		Temperature:     req.Temperature,
	}, req.ExistingCode)
	if err != nil {
		h.writeServiceError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, result)
}

// HandleBalance returns the account's remaining tokens.
func (h *Handler) HandleBalance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}

	accountID, ok := h.accountID(w, r)
	if !ok {
		return
	}

	balance, err := h.tokens.BalanceOf(ctx, accountID)
	if err != nil {
		h.writeServiceError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, balanceResponse{AccountID: accountID, Tokens: balance})
}

// HandleLike toggles the account's like on a public project.
func (h *Handler) HandleLike(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}

	accountID, ok := h.accountID(w, r)
	if !ok {
		return
	}

	var req likeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if req.ProjectID == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "project_id must not be empty")
		return
	}

	liked, total, err := h.likes.Toggle(ctx, req.ProjectID, accountID)
	if err != nil {
		observability.FromContext(ctx).Error("like toggle failed", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "store_unavailable", "like store unavailable")
		return
	}

	writeJSON(ctx, w, http.StatusOK, likeResponse{
		ProjectID:  req.ProjectID,
		Liked:      liked,
		TotalLikes: total,
	})
}

// HandleHealth handles health check requests.
func (h *Handler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(map[string]string{
		"status": "healthy",
	}); err != nil {
		// Already written status, can't change it, just log.
		return
	}
}

// accountID extracts the account identity from the request. Identity
// verification itself is out of scope; a trusted gateway fills the header.
func (h *Handler) accountID(w http.ResponseWriter, r *http.Request) (string, bool) {
	accountID := r.Header.Get("X-Account-Id")
	if accountID == "" {
		writeError(w, http.StatusBadRequest, "missing_account", "account not specified in X-Account-Id header")
		return "", false
	}
	return accountID, true
}

// writeServiceError maps domain and ledger errors to HTTP statuses with a
// machine-readable code.
func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	logger := observability.FromContext(ctx)

	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		writeError(w, http.StatusBadRequest, "validation_failed", validationErr.Error())
		return
	}

	var balanceErr *ledger.InsufficientBalanceError
	if errors.As(err, &balanceErr) {
		logger.Info("request rejected for insufficient tokens",
			zap.Int64("available", balanceErr.Available),
			zap.Int64("required", balanceErr.Required),
		)
		writeError(w, http.StatusPaymentRequired, "insufficient_tokens", balanceErr.Error())
		return
	}

	var upstreamErr *domain.UpstreamError
	if errors.As(err, &upstreamErr) {
		logger.Error("generation request failed", zap.Error(err))

		status := http.StatusBadGateway
		if upstreamErr.Kind == domain.FailureRateLimited {
			status = http.StatusTooManyRequests
		}
		writeError(w, status, string(upstreamErr.Kind), upstreamErr.Error())
		return
	}

	if errors.Is(err, ledger.ErrUnavailable) {
		logger.Error("token ledger unavailable", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "ledger_unavailable", "token ledger unavailable, retry later")
		return
	}

	logger.Error("request failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		observability.FromContext(ctx).Error("failed to encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Code: code, Message: message})
}

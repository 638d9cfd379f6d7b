package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/BradenHooton/loginguard/internal/models"
	"github.com/BradenHooton/loginguard/internal/services"
	pkghttp "github.com/BradenHooton/loginguard/pkg/http"
)

// Guard action names as they appear on the wire
const (
	actionCheck         = "check"
	actionRecordFailure = "record-failure"
	actionRecordSuccess = "record-success"
)

const (
	msgRateLimited   = "Too many login attempts. Please try again later."
	msgInvalidAction = "Invalid action. Use: check, record-failure, or record-success"
	msgInternalError = "Internal server error"
)

// GuardServiceInterface defines the interface for guard business logic
type GuardServiceInterface interface {
	Check(ctx context.Context, identity models.Identity) (services.Decision, error)
	RecordFailure(ctx context.Context, identity models.Identity) (services.Decision, error)
	RecordSuccess(ctx context.Context, identity models.Identity) error
}

// GuardHandler handles rate-limit guard HTTP requests
type GuardHandler struct {
	service GuardServiceInterface
	logger  *slog.Logger
}

// NewGuardHandler creates a new GuardHandler
func NewGuardHandler(service GuardServiceInterface, logger *slog.Logger) *GuardHandler {
	return &GuardHandler{
		service: service,
		logger:  logger,
	}
}

// GuardRequest represents the request body for all guard actions
type GuardRequest struct {
	Action string `json:"action" validate:"required"`
	Email  string `json:"email" validate:"omitempty,max=320"`
}

// Response DTOs; field names are part of the wire contract

type checkAllowedResponse struct {
	Allowed           bool `json:"allowed"`
	RemainingAttempts int  `json:"remainingAttempts"`
}

type checkDeniedResponse struct {
	Allowed    bool   `json:"allowed"`
	Error      string `json:"error"`
	RetryAfter int    `json:"retryAfter"`
}

type recordFailureResponse struct {
	Recorded          bool `json:"recorded"`
	RemainingAttempts int  `json:"remainingAttempts"`
	Locked            bool `json:"locked"`
	RetryAfter        int  `json:"retryAfter,omitempty"`
}

type recordSuccessResponse struct {
	Reset bool `json:"reset"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Handle dispatches a guard request by its action field.
// @Summary Rate-limit guard
// @Accept json
// @Param request body GuardRequest true "Guard request"
// @Produce json
// @Success 200 {object} recordFailureResponse
// @Failure 400 {object} errorResponse
// @Failure 429 {object} checkDeniedResponse
// @Failure 500 {object} errorResponse
// @Router /rate-limit [post]
func (h *GuardHandler) Handle(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			h.logger.Error("panic in guard handler", slog.Any("panic", rec))
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: msgInternalError})
		}
	}()

	var req GuardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: msgInvalidAction})
		return
	}
	if err := ValidateRequest(req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: msgInvalidAction})
		return
	}

	identity := models.Identity{
		Origin:  pkghttp.ClientOrigin(r),
		Account: req.Email,
	}

	switch req.Action {
	case actionCheck:
		h.check(w, r, identity)
	case actionRecordFailure:
		h.recordFailure(w, r, identity)
	case actionRecordSuccess:
		h.recordSuccess(w, r, identity)
	default:
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: msgInvalidAction})
	}
}

func (h *GuardHandler) check(w http.ResponseWriter, r *http.Request, identity models.Identity) {
	decision, err := h.service.Check(r.Context(), identity)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	if !decision.Allowed {
		w.Header().Set("Retry-After", strconv.Itoa(decision.RetryAfter))
		writeJSON(w, http.StatusTooManyRequests, checkDeniedResponse{
			Allowed:    false,
			Error:      msgRateLimited,
			RetryAfter: decision.RetryAfter,
		})
		return
	}

	writeJSON(w, http.StatusOK, checkAllowedResponse{
		Allowed:           true,
		RemainingAttempts: decision.Remaining,
	})
}

func (h *GuardHandler) recordFailure(w http.ResponseWriter, r *http.Request, identity models.Identity) {
	decision, err := h.service.RecordFailure(r.Context(), identity)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, recordFailureResponse{
		Recorded:          true,
		RemainingAttempts: decision.Remaining,
		Locked:            decision.Locked,
		RetryAfter:        decision.RetryAfter,
	})
}

func (h *GuardHandler) recordSuccess(w http.ResponseWriter, r *http.Request, identity models.Identity) {
	if err := h.service.RecordSuccess(r.Context(), identity); err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, recordSuccessResponse{Reset: true})
}

func (h *GuardHandler) writeServiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, models.ErrInvalidIdentity) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid identity"})
		return
	}

	h.logger.Error("guard operation failed", slog.Any("error", err))
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: msgInternalError})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

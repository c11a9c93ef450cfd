package service

import (
	"encoding/json"
	"io"
	"net/http"

	apperrors "github.com/kr8tiv/platform-core/pkg/app/errors"
	apphttp "github.com/kr8tiv/platform-core/pkg/app/http"
	"github.com/kr8tiv/platform-core/pkg/staking"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// HTTP wraps the Service to provide HTTP endpoints
type HTTP struct {
	service  Service
	validate *validator.Validate
	logger   *zap.Logger
}

// RegisterRoutes registers HTTP endpoints for the staking service on the given chi router
func RegisterRoutes(r chi.Router, service Service, logger *zap.Logger) {
	h := &HTTP{
		service:  service,
		validate: validator.New(),
		logger:   logger,
	}

	r.Route("/staking", func(r chi.Router) {
		r.Post("/stake", apphttp.HandleError(h.stake))
		r.Post("/unstake", apphttp.HandleError(h.unstake))
		r.Post("/claim", apphttp.HandleError(h.claim))
		r.Get("/stakers/{wallet}/pending", apphttp.HandleError(h.pending))
		r.Put("/pool/paused", apphttp.HandleError(h.setPaused))
	})
}

func (h *HTTP) stake(w http.ResponseWriter, r *http.Request) error {
	var req staking.StakeRequest
	if err := h.decode(r, &req); err != nil {
		return err
	}

	result, err := h.service.Stake(r.Context(), &req)
	if err != nil {
		return err
	}

	h.writeJSON(w, http.StatusOK, result)
	return nil
}

func (h *HTTP) unstake(w http.ResponseWriter, r *http.Request) error {
	var req staking.UnstakeRequest
	if err := h.decode(r, &req); err != nil {
		return err
	}

	result, err := h.service.Unstake(r.Context(), &req)
	if err != nil {
		return err
	}

	h.writeJSON(w, http.StatusOK, result)
	return nil
}

type claimRequest struct {
	Wallet string `json:"wallet" validate:"required"`
}

func (h *HTTP) claim(w http.ResponseWriter, r *http.Request) error {
	var req claimRequest
	if err := h.decode(r, &req); err != nil {
		return err
	}

	result, err := h.service.Claim(r.Context(), req.Wallet)
	if err != nil {
		return err
	}

	h.writeJSON(w, http.StatusOK, result)
	return nil
}

type pendingResponse struct {
	Wallet  string `json:"wallet"`
	Pending uint64 `json:"pending"`
}

func (h *HTTP) pending(w http.ResponseWriter, r *http.Request) error {
	wallet := chi.URLParam(r, "wallet")
	if wallet == "" {
		return apperrors.BadRequestError(nil, "wallet is required")
	}

	pending, err := h.service.Pending(r.Context(), wallet)
	if err != nil {
		return err
	}

	h.writeJSON(w, http.StatusOK, &pendingResponse{Wallet: wallet, Pending: pending})
	return nil
}

type pausedRequest struct {
	Paused bool `json:"paused"`
}

func (h *HTTP) setPaused(w http.ResponseWriter, r *http.Request) error {
	var req pausedRequest
	if err := h.decode(r, &req); err != nil {
		return err
	}

	h.service.SetPaused(req.Paused)
	h.logger.Info("Staking pool pause flag updated", zap.Bool("paused", req.Paused))

	h.writeJSON(w, http.StatusOK, &req)
	return nil
}

// decode reads, parses and validates a JSON request body
func (h *HTTP) decode(r *http.Request, dst any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20)) // 1MB limit
	if err != nil {
		return apperrors.BadRequestError(err, "failed to read request")
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return apperrors.BadRequestError(err, "invalid JSON")
	}
	if err := h.validate.Struct(dst); err != nil {
		return apperrors.BadRequestError(err, "invalid request")
	}
	return nil
}

func (h *HTTP) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

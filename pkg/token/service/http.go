package service

import (
	"encoding/json"
	"io"
	"net/http"

	apperrors "github.com/kr8tiv/platform-core/pkg/app/errors"
	apphttp "github.com/kr8tiv/platform-core/pkg/app/http"
	"github.com/kr8tiv/platform-core/pkg/distribution"

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

// RegisterRoutes registers HTTP endpoints for the token registry on the given chi router
func RegisterRoutes(r chi.Router, service Service, logger *zap.Logger) {
	h := &HTTP{
		service:  service,
		validate: validator.New(),
		logger:   logger,
	}

	r.Route("/tokens", func(r chi.Router) {
		r.Post("/", apphttp.HandleError(h.register))
		r.Get("/", apphttp.HandleError(h.list))
		r.Get("/{mint}", apphttp.HandleError(h.get))
		r.Put("/{mint}/split", apphttp.HandleError(h.updateSplit))
		r.Put("/{mint}/automation", apphttp.HandleError(h.setAutomation))
	})
}

func (h *HTTP) register(w http.ResponseWriter, r *http.Request) error {
	var req RegisterRequest
	if err := h.decode(r, &req); err != nil {
		return err
	}

	tok, err := h.service.Register(r.Context(), &req)
	if err != nil {
		return err
	}

	h.writeJSON(w, http.StatusCreated, tok)
	return nil
}

func (h *HTTP) list(w http.ResponseWriter, r *http.Request) error {
	tokens, err := h.service.List(r.Context())
	if err != nil {
		return err
	}

	h.writeJSON(w, http.StatusOK, tokens)
	return nil
}

func (h *HTTP) get(w http.ResponseWriter, r *http.Request) error {
	tok, err := h.service.Get(r.Context(), chi.URLParam(r, "mint"))
	if err != nil {
		return err
	}

	h.writeJSON(w, http.StatusOK, tok)
	return nil
}

func (h *HTTP) updateSplit(w http.ResponseWriter, r *http.Request) error {
	var split distribution.SplitConfig
	if err := h.decode(r, &split); err != nil {
		return err
	}

	tok, err := h.service.UpdateSplit(r.Context(), chi.URLParam(r, "mint"), split)
	if err != nil {
		return err
	}

	h.writeJSON(w, http.StatusOK, tok)
	return nil
}

type automationRequest struct {
	Enabled bool `json:"enabled"`
}

func (h *HTTP) setAutomation(w http.ResponseWriter, r *http.Request) error {
	var req automationRequest
	if err := h.decode(r, &req); err != nil {
		return err
	}

	tok, err := h.service.SetAutomation(r.Context(), chi.URLParam(r, "mint"), req.Enabled)
	if err != nil {
		return err
	}

	h.writeJSON(w, http.StatusOK, tok)
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

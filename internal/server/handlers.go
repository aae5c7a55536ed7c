package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tjfontaine/vaccine-proof-api/internal/core/domain"
	"github.com/tjfontaine/vaccine-proof-api/internal/services"
)

// maxBodyBytes caps request payloads.
const maxBodyBytes = 1 << 20

// errorResponse is the JSON body of every failed request.
type errorResponse struct {
	Error *domain.APIError `json:"error"`
}

// MountService routes the REST methods of svc under /<path>.
func (s *Server) MountService(svc *services.Service) {
	base := "/" + svc.Path()

	s.Router.Route(base, func(r chi.Router) {
		r.Get("/", s.handle(svc, domain.MethodFind, http.StatusOK))
		r.Post("/", s.handle(svc, domain.MethodCreate, http.StatusCreated))
		r.Get("/{id}", s.handle(svc, domain.MethodGet, http.StatusOK))
		r.Put("/{id}", s.handle(svc, domain.MethodUpdate, http.StatusOK))
		r.Patch("/{id}", s.handle(svc, domain.MethodPatch, http.StatusOK))
		r.Delete("/{id}", s.handle(svc, domain.MethodRemove, http.StatusOK))
	})

	s.logger.Info("registered service", slog.String("path", base))
}

// MountRegistry mounts every service in reg.
func (s *Server) MountRegistry(reg *services.Registry) {
	for _, path := range reg.Paths() {
		svc, _ := reg.Service(path)
		s.MountService(svc)
	}
}

func (s *Server) handle(svc *services.Service, method domain.Method, status int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id := chi.URLParam(r, "id")
		AddLogField(ctx, "service_method", string(method))
		AddLogField(ctx, "proof_id", id)

		var data map[string]any
		switch method {
		case domain.MethodCreate, domain.MethodUpdate, domain.MethodPatch:
			var err error
			if data, err = decodeBody(w, r); err != nil {
				writeError(ctx, w, err)
				return
			}
		}

		result, err := svc.Call(ctx, method, id, data, queryParams(r))
		if err != nil {
			writeError(ctx, w, err)
			return
		}

		writeJSON(w, status, result)
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request) (map[string]any, error) {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))

	var data map[string]any
	if err := dec.Decode(&data); err != nil {
		return nil, domain.ErrInvalidRequest(fmt.Sprintf("request body must be a JSON object: %v", err)).
			WithCode(domain.ErrorCodeUnsupportedPayload)
	}
	if data == nil {
		return nil, domain.ErrInvalidRequest("request body must be a JSON object").
			WithCode(domain.ErrorCodeUnsupportedPayload)
	}
	return data, nil
}

func queryParams(r *http.Request) domain.Params {
	params := domain.Params{}
	for key, values := range r.URL.Query() {
		if len(values) > 0 {
			params[key] = values[0]
		}
	}
	return params
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError renders err as an API error. Errors that are not API errors are
// reported as server errors without their text.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	AddError(ctx, err)

	apiErr, ok := domain.AsAPIError(err)
	if !ok {
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			apiErr = domain.ErrServer("request timed out").WithStatusCode(http.StatusGatewayTimeout)
		case errors.Is(err, context.Canceled):
			apiErr = domain.ErrServer("request cancelled").WithStatusCode(http.StatusServiceUnavailable)
		default:
			apiErr = domain.ErrServer("internal server error")
		}
	}

	writeJSON(w, apiErr.HTTPStatusCode(), errorResponse{Error: apiErr})
}

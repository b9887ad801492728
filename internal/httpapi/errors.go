package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"keyboardai/internal/locator"
	"keyboardai/internal/remote"
	"keyboardai/internal/router"
	"keyboardai/pkg/types"
)

// HTTPError allows services to provide an HTTP status code for an error.
type HTTPError interface {
	error
	StatusCode() int
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeErrorResponse(w, types.ErrorResponse{Error: msg, Code: status})
}

func writeErrorResponse(w http.ResponseWriter, body types.ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(body.Code)
	_ = json.NewEncoder(w).Encode(body)
}

// errorResponse maps well-known service errors to an HTTP payload.
func errorResponse(err error) types.ErrorResponse {
	resp := types.ErrorResponse{Error: err.Error(), Code: http.StatusInternalServerError}
	var he HTTPError
	switch {
	case router.IsLocalModelUnavailable(err):
		resp.Code = http.StatusServiceUnavailable
		resp.InstallHint = router.InstallHint
	case remote.IsBadResponse(err), remote.IsServerError(err):
		resp.Code = http.StatusBadGateway
	case errors.Is(err, router.ErrRemoteNotConfigured):
		resp.Code = http.StatusServiceUnavailable
	case locator.IsModelNotFound(err):
		resp.Code = http.StatusNotFound
	case locator.IsContainerUnavailable(err):
		resp.Code = http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		resp.Code = http.StatusGatewayTimeout
	case errors.As(err, &he):
		resp.Code = he.StatusCode()
	}
	return resp
}

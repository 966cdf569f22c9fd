package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/AnshRaj112/videotube-backend/pkg/utils"
	"github.com/go-chi/chi/v5/middleware"
)

// HandlerFunc is an http handler that reports failure by returning an error
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// Wrap adapts fn to http.HandlerFunc. An *utils.APIError is rendered with
// its own status; any other error is logged and rendered as a 500.
func Wrap(logger *slog.Logger, fn HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := fn(w, r)
		if err == nil {
			return
		}

		var apiErr *utils.APIError
		if errors.As(err, &apiErr) {
			if apiErr.StatusCode >= http.StatusInternalServerError {
				logger.ErrorContext(r.Context(), apiErr.Message,
					slog.String("path", r.URL.Path),
					slog.String("request_id", middleware.GetReqID(r.Context())),
				)
			}
			utils.WriteError(w, apiErr)
			return
		}

		logger.ErrorContext(r.Context(), "unhandled error",
			slog.String("error", err.Error()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
		utils.WriteError(w, utils.NewAPIError(http.StatusInternalServerError, "Internal server error"))
	}
}

// outcome buckets a handler result for metrics labels
func outcome(err error) string {
	if err == nil {
		return "success"
	}
	var apiErr *utils.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode < http.StatusInternalServerError {
		return "rejected"
	}
	return "error"
}

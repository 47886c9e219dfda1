package routes

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"helpdesk/helpdesk/utils/apperr"
	httputils "helpdesk/helpdesk/utils/http"
	"helpdesk/helpdesk/utils/logging"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const maxBodyBytes = 64 << 10

// handleJSON runs fn and writes its result as JSON, or the error envelope.
func handleJSON(fn func(r *http.Request) (interface{}, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := fn(r)
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		httputils.WriteJSON(w, http.StatusOK, resp)
	}
}

func writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.KindOf(err)
	status := apperr.HTTPStatus(kind)
	if status >= http.StatusInternalServerError {
		logging.ErrorLogger.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("kind", kind.String()),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err))
	}
	httputils.WriteError(w, status, apperr.PublicMessage(err))
}

func decodeBody(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Invalid("decode body", "Request body is required")
		}
		return apperr.Invalid("decode body", "Invalid JSON body")
	}
	return nil
}

package routes

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"helpdesk/helpdesk/controllers"
	"helpdesk/helpdesk/types"
	"helpdesk/helpdesk/utils/apperr"
	"helpdesk/helpdesk/utils/logging"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func ChatRoutes(ctrl *controllers.ChatController, timeout time.Duration) chi.Router {
	r := chi.NewRouter()
	r.Group(func(gr chi.Router) {
		gr.Use(middleware.Timeout(timeout))

		gr.Get("/test", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{"status": "ok", "message": "Chat API is working"})
		})

		// POST /api/chat : one turn
		gr.Post("/", handleJSON(func(r *http.Request) (interface{}, error) {
			var req types.ChatRequest
			if err := decodeBody(r, &req); err != nil {
				return nil, err
			}
			return ctrl.Chat(r.Context(), req)
		}))

		// GET /api/chat/history?sessionId=
		gr.Get("/history", handleJSON(func(r *http.Request) (interface{}, error) {
			return ctrl.History(r.Context(), r.URL.Query().Get("sessionId"))
		}))

		// POST /api/chat/archive?sessionId=
		gr.Post("/archive", handleJSON(func(r *http.Request) (interface{}, error) {
			return ctrl.Archive(r.Context(), r.URL.Query().Get("sessionId"))
		}))
	})

	// no timeout: the socket lives as long as the client keeps it
	r.Get("/ws", chatSocket(ctrl, timeout))
	return r
}

type socketError struct {
	Error string `json:"error"`
}

// chatSocket serves one turn per text frame until the client goes away.
func chatSocket(ctrl *controllers.ChatController, turnTimeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusInternalError, "internal error")

		ctx := r.Context()
		log := logging.AppLogger.With(zap.String("request_id", middleware.GetReqID(ctx)))
		log.Info("Chat socket opened")

		for {
			typ, data, err := conn.Read(ctx)
			if err != nil {
				if websocket.CloseStatus(err) != websocket.StatusNormalClosure && websocket.CloseStatus(err) != websocket.StatusGoingAway {
					log.Info("Chat socket closed", zap.Error(err))
				}
				return
			}
			if typ != websocket.MessageText {
				conn.Close(websocket.StatusUnsupportedData, "unsupported data")
				return
			}

			var req types.ChatRequest
			if err := json.Unmarshal(data, &req); err != nil {
				if err := wsjson.Write(ctx, conn, socketError{Error: "Invalid JSON body"}); err != nil {
					return
				}
				continue
			}

			turnCtx, cancel := context.WithTimeout(ctx, turnTimeout)
			resp, err := ctrl.Chat(turnCtx, req)
			cancel()

			var out interface{} = resp
			if err != nil {
				if errors.Is(err, context.Canceled) && ctx.Err() != nil {
					return
				}
				out = socketError{Error: apperr.PublicMessage(err)}
			}
			if err := wsjson.Write(ctx, conn, out); err != nil {
				return
			}
		}
	}
}

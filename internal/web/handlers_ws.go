package web

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	wsReadLimit      = 4096
	wsRequestTimeout = 30 * time.Second
	wsWriteTimeout   = 10 * time.Second
	wsIdleTimeout    = 5 * time.Minute
)

type wsError struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

// handleChartSocket answers each {id, days} message with a chart refresh payload.
func (s *Server) handleChartSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("WS upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()
	conn.SetReadLimit(wsReadLimit)

	log := s.logger.With(zap.String("request_id", RequestID(r.Context())))
	log.Debug("WS client connected")

	for {
		conn.SetReadDeadline(time.Now().Add(wsIdleTimeout))
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn("WS read error", zap.Error(err))
			}
			return
		}

		var reply any
		var req coinRequest
		if err := json.Unmarshal(message, &req); err != nil {
			reply = wsError{Error: msgInvalidRequest, Status: http.StatusBadRequest}
		} else {
			reply = s.refreshForSocket(r.Context(), req, log)
		}

		conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := conn.WriteJSON(reply); err != nil {
			log.Warn("WS write error", zap.Error(err))
			return
		}
	}
}

func (s *Server) refreshForSocket(ctx context.Context, req coinRequest, log *zap.Logger) any {
	ctx, cancel := context.WithTimeout(ctx, wsRequestTimeout)
	defer cancel()

	ref, err := s.snapshots.RefreshChart(ctx, req.ID, string(req.Days))
	if err != nil {
		status, msg := statusFor(err, req.ID)
		if status >= http.StatusInternalServerError {
			log.Error("WS chart refresh failed", zap.String("coin", req.ID), zap.Error(err))
		}
		return wsError{Error: msg, Status: status}
	}
	return toChartResponse(ref)
}

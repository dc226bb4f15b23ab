package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/vitos/coin_dashboard/internal/domain"
	"github.com/vitos/coin_dashboard/internal/view"
	"go.uber.org/zap"
)

const (
	maxBodyBytes     = 1 << 20
	errorDetailLimit = 200

	msgInvalidRequest = "Invalid request. JSON payload expected."
	msgMissingID      = "Cryptocurrency ID is required."
	msgUnreachable    = "Could not connect to CoinGecko API. Please try again later."
	msgUnexpected     = "An unexpected server error occurred: "
)

// coinRequest is the body of both coin endpoints.
type coinRequest struct {
	ID   string    `json:"id"`
	Days daysParam `json:"days"`
}

// daysParam accepts the window as a JSON string or number. Other types read as empty.
type daysParam string

func (d *daysParam) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*d = daysParam(s)
	case len(b) > 0 && (b[0] == '-' || (b[0] >= '0' && b[0] <= '9')):
		*d = daysParam(b)
	default:
		*d = ""
	}
	return nil
}

type snapshotResponse struct {
	HTML  string `json:"html"`
	Trend string `json:"trend"`
}

type chartResponse struct {
	ChartHTML    string `json:"chart_html"`
	ChangesTable string `json:"changes_table"`
	Trend        string `json:"trend"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.logger, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := view.Index(w); err != nil {
		s.logger.Error("Template error", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeCoinRequest(w, r)
	if !ok {
		return
	}

	snap, err := s.snapshots.BuildSnapshot(r.Context(), req.ID, string(req.Days))
	if err != nil {
		s.writeServiceError(w, r, req.ID, err)
		return
	}
	writeJSON(w, s.logger, http.StatusOK, snapshotResponse{
		HTML:  snap.HTML,
		Trend: string(snap.Trend.Direction),
	})
}

func (s *Server) handleChartRefresh(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeCoinRequest(w, r)
	if !ok {
		return
	}

	ref, err := s.snapshots.RefreshChart(r.Context(), req.ID, string(req.Days))
	if err != nil {
		s.writeServiceError(w, r, req.ID, err)
		return
	}
	writeJSON(w, s.logger, http.StatusOK, toChartResponse(ref))
}

func toChartResponse(ref *domain.ChartRefresh) chartResponse {
	return chartResponse{
		ChartHTML:    ref.ChartHTML,
		ChangesTable: ref.ChangesTable,
		Trend:        string(ref.Trend.Direction),
	}
}

func (s *Server) decodeCoinRequest(w http.ResponseWriter, r *http.Request) (coinRequest, bool) {
	var req coinRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.logger.Info("Rejected request body",
			zap.String("request_id", RequestID(r.Context())),
			zap.Error(err))
		writeError(w, s.logger, http.StatusBadRequest, msgInvalidRequest)
		return req, false
	}
	return req, true
}

func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, coinID string, err error) {
	status, msg := statusFor(err, coinID)
	if status >= http.StatusInternalServerError {
		s.logger.Error("Request failed",
			zap.String("request_id", RequestID(r.Context())),
			zap.String("coin", coinID),
			zap.Int("status", status),
			zap.Error(err))
	}
	writeError(w, s.logger, status, msg)
}

// statusFor maps the error taxonomy to an HTTP status and a client-facing message.
// coinID is echoed in its normalized form whatever transport supplied it.
func statusFor(err error, coinID string) (int, string) {
	coinID = strings.ToLower(strings.TrimSpace(coinID))
	var (
		notFound *domain.NotFoundError
		upstream *domain.UpstreamStatusError
	)
	switch {
	case errors.Is(err, domain.ErrMissingCoinID):
		return http.StatusBadRequest, msgMissingID
	case errors.As(err, &notFound):
		return http.StatusNotFound, notFound.Error()
	case errors.As(err, &upstream):
		status := upstream.StatusCode
		if status < 400 || status > 599 {
			status = http.StatusBadGateway
		}
		return status, fmt.Sprintf("CoinGecko API error: HTTP %d %s.", upstream.StatusCode, http.StatusText(upstream.StatusCode))
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return http.StatusServiceUnavailable, msgUnreachable
	case errors.Is(err, domain.ErrIncompleteData):
		return http.StatusInternalServerError, fmt.Sprintf("Incomplete data received for %q. Market data missing.", coinID)
	default:
		return http.StatusInternalServerError, msgUnexpected + truncate(err.Error(), errorDetailLimit)
	}
}

func writeJSON(w http.ResponseWriter, logger *zap.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, logger *zap.Logger, status int, msg string) {
	writeJSON(w, logger, status, errorResponse{Error: msg})
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

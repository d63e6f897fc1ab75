// Package webapi exposes the session over REST for the local web UI.
package webapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/locoxsoco/GG-Assist/internal/links"
	"github.com/locoxsoco/GG-Assist/internal/models"
	"github.com/locoxsoco/GG-Assist/internal/session"
	"github.com/locoxsoco/GG-Assist/internal/workflow"
)

// Version is set at build time or defaults to dev.
var Version = "0.2.0"

// Handlers holds the HTTP handler methods for the web API.
type Handlers struct {
	sess *session.Session
}

// NewHandlers creates a new Handlers around the given session.
func NewHandlers(sess *session.Session) *Handlers {
	return &Handlers{sess: sess}
}

// HandleHealth returns a simple health check response.
func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: Version,
	})
}

// HandleStatus reports the session processing state.
func (h *Handlers) HandleStatus(w http.ResponseWriter, _ *http.Request) {
	status, errMsg := h.sess.CurrentStatus()
	writeJSON(w, http.StatusOK, StatusResponse{
		Status: string(status),
		Error:  errMsg,
	})
}

// HandleTranscript returns the full conversation in append order.
func (h *Handlers) HandleTranscript(w http.ResponseWriter, _ *http.Request) {
	entries := h.sess.Transcript()
	out := make([]TranscriptEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toEntryResponse(e))
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleEmails returns the current email context.
func (h *Handlers) HandleEmails(w http.ResponseWriter, _ *http.Request) {
	emails := h.sess.Emails()
	out := EmailListResponse{
		FilterDate: h.sess.Mailbox.FilterDate(),
		Emails:     make([]EmailResponse, 0, len(emails)),
	}
	for _, e := range emails {
		out.Emails = append(out.Emails, EmailResponse{
			ID:           e.ID,
			Snippet:      e.Snippet,
			InternalDate: e.InternalDate.Time(),
			GmailURL:     links.GmailMessage(e.ID),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleRefreshEmails refetches the email context for the requested date.
// A failed fetch keeps the previous context and reports 502.
func (h *Handlers) HandleRefreshEmails(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.FilterDate == "" {
		writeError(w, http.StatusBadRequest, "filterDate is required")
		return
	}

	if err := h.sess.RefreshEmails(r.Context(), req.FilterDate); err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	h.HandleEmails(w, r)
}

// HandleSendMessage dispatches a user message. The response is sent once the
// whole workflow, including any batch run, has finished; the UI polls the
// transcript for live progress in the meantime.
func (h *Handlers) HandleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	entryID, err := h.sess.Dispatch(r.Context(), req.Message)
	if err != nil {
		if errors.Is(err, workflow.ErrBusy) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		// The failure is already recorded in the transcript; 502 tells the
		// UI the backend misbehaved rather than this server.
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, SendMessageResponse{EntryID: string(entryID)})
}

// toEntryResponse converts a transcript entry, resolving deep links for
// every card in the payload.
func toEntryResponse(e models.TranscriptEntry) TranscriptEntryResponse {
	out := TranscriptEntryResponse{
		ID:        string(e.ID),
		Role:      string(e.Role),
		Text:      e.Text,
		Kind:      string(e.Kind),
		Timestamp: e.Timestamp,
	}
	if e.Kind == models.KindPlainMessage {
		out.Kind = ""
	}

	for _, ev := range e.Payload.Events {
		card := EventCard{
			EmailID:  ev.EmailID,
			Event:    ev.Event,
			DateTime: ev.DateTime,
			GmailURL: links.GmailMessage(ev.EmailID),
		}
		if t := links.ParseEventTime(ev.DateTime); !t.IsZero() {
			card.CalendarURL = links.CalendarEvent(ev.Event, t)
		}
		out.Events = append(out.Events, card)
	}
	for _, s := range e.Payload.Summaries {
		out.Summaries = append(out.Summaries, SummaryCard{
			EmailID:  s.EmailID,
			Snippet:  s.Snippet,
			Summary:  s.Summary,
			GmailURL: links.GmailMessage(s.EmailID),
		})
	}
	for _, ls := range e.Payload.Labels {
		out.Labels = append(out.Labels, LabelCard{
			EmailID:  ls.EmailID,
			Snippet:  ls.Snippet,
			Labels:   ls.Labels,
			GmailURL: links.GmailMessage(ls.EmailID),
		})
	}
	return out
}

// RegisterRoutes registers all web API routes on the given mux.
func RegisterRoutes(mux *http.ServeMux, sess *session.Session) {
	h := NewHandlers(sess)
	mux.HandleFunc("GET /api/health", h.HandleHealth)
	mux.HandleFunc("GET /api/status", h.HandleStatus)
	mux.HandleFunc("GET /api/transcript", h.HandleTranscript)
	mux.HandleFunc("GET /api/emails", h.HandleEmails)
	mux.HandleFunc("POST /api/refresh-emails", h.HandleRefreshEmails)
	mux.HandleFunc("POST /api/send-message", h.HandleSendMessage)
}

// CORSMiddleware wraps a handler with CORS headers.
// If allowedOrigins is empty, no CORS header is set (same-origin only).
// Otherwise, the request Origin is checked against the allowed list.
func CORSMiddleware(next http.Handler, allowedOrigins ...string) http.Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if len(allowedOrigins) > 0 && origin != "" && allowed[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, ErrorResponse{Error: msg, Code: code})
}

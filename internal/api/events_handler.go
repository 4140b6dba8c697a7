package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mattjoyce/mira-bridge/internal/events"
	"github.com/mattjoyce/mira-bridge/internal/window"
)

// handleEvents streams activity events, replaying what the hub still holds
// after Last-Event-ID.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := startSSE(w)
	if !ok {
		s.writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	lastID := parseLastEventID(r.Header.Get("Last-Event-ID"))
	// Subscribe before the snapshot so nothing published in between is lost.
	ch, cancel := s.deps.Events.Subscribe()
	defer cancel()

	for _, ev := range s.deps.Events.SnapshotSince(lastID) {
		if err := writeSSE(w, strconv.FormatInt(ev.ID, 10), ev.Type, ev.Data); err != nil {
			return
		}
		lastID = ev.ID
	}
	flusher.Flush()

	keepAlive := time.NewTicker(s.config.KeepAlive)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			if ev.ID <= lastID {
				continue
			}
			if err := writeSSE(w, strconv.FormatInt(ev.ID, 10), ev.Type, ev.Data); err != nil {
				return
			}
			flusher.Flush()
		case <-keepAlive.C:
			if err := writeKeepAlive(w); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

// handleWindowStream attaches the caller as a UI stream of the remote host
// window. Each command is sent as event window.<op> with the command id.
func (s *Server) handleWindowStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := startSSE(w)
	if !ok {
		s.writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	ch, detach := s.deps.Window.Attach()
	defer func() {
		detach()
		if s.deps.Events != nil {
			s.deps.Events.Publish(events.TypeWindowDetached, map[string]any{"streams": s.deps.Window.Streams()})
		}
	}()
	flusher.Flush()

	keepAlive := time.NewTicker(s.config.KeepAlive)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case cmd, ok := <-ch:
			if !ok {
				return
			}
			data, err := json.Marshal(cmd)
			if err != nil {
				s.logger.Error("failed to encode window command", "op", cmd.Op, "error", err)
				continue
			}
			if err := writeSSE(w, cmd.ID, window.EventType(cmd.Op), data); err != nil {
				return
			}
			flusher.Flush()
		case <-keepAlive.C:
			if err := writeKeepAlive(w); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

// handleWindowAck handles POST /window/ack/{id}.
func (s *Server) handleWindowAck(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var ack window.Ack
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}
	if err := json.Unmarshal(body, &ack); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := s.deps.Window.Ack(id, ack); err != nil {
		if errors.Is(err, window.ErrUnknownCommand) {
			s.writeError(w, http.StatusNotFound, err.Error())
			return
		}
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func startSSE(w http.ResponseWriter) (http.Flusher, bool) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, false
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	return flusher, true
}

func parseLastEventID(v string) int64 {
	if v == "" {
		return 0
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func writeSSE(w io.Writer, id, eventType string, data []byte) error {
	// SSE framing: https://html.spec.whatwg.org/multipage/server-sent-events.html
	if id != "" {
		if _, err := fmt.Fprintf(w, "id: %s\n", id); err != nil {
			return err
		}
	}
	if eventType != "" {
		if _, err := fmt.Fprintf(w, "event: %s\n", eventType); err != nil {
			return err
		}
	}
	// Payloads are single-line JSON.
	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return err
	}
	return nil
}

func writeKeepAlive(w io.Writer) error {
	_, err := fmt.Fprint(w, ": keep-alive\n\n")
	return err
}

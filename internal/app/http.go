package app

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"morningdeck/api/internal/session"
	"morningdeck/api/internal/store"
)

type HTTPServer struct {
	service    *Service
	corsOrigin string
}

func NewHTTPServer(service *Service, corsOrigin string) *HTTPServer {
	return &HTTPServer{service: service, corsOrigin: corsOrigin}
}

func (s *HTTPServer) Handler() http.Handler {
	return s.withMiddleware(http.HandlerFunc(s.handle))
}

func (s *HTTPServer) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		writeJSON(w, http.StatusNoContent, map[string]any{})
		return
	}

	if (r.Method == http.MethodGet || r.Method == http.MethodHead) && r.URL.Path == "/api/health" {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}

	if (r.Method == http.MethodGet || r.Method == http.MethodHead) && r.URL.Path == "/api/ready" {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		status := "ready"
		statusCode := http.StatusOK
		checks := map[string]any{
			"database": map[string]any{"status": "ok"},
		}

		if err := s.service.Ping(ctx); err != nil {
			status = "not_ready"
			statusCode = http.StatusServiceUnavailable
			checks["database"] = map[string]any{
				"status": "error",
				"error":  err.Error(),
			}
		}

		writeJSON(w, statusCode, map[string]any{
			"ok":     status == "ready",
			"status": status,
			"checks": checks,
		})
		return
	}

	if r.Method == http.MethodPost && r.URL.Path == "/api/session/login" {
		var body struct {
			OwnerID string `json:"ownerId"`
			Name    string `json:"name"`
			Email   string `json:"email"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		sess, err := s.service.Login(r.Context(), body.OwnerID, body.Name, body.Email)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "LOGIN_FAILED", "Login failed", nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"token":   sess.Token,
			"ownerId": sess.OwnerID,
			"name":    sess.Name,
			"email":   sess.Email,
		})
		return
	}

	if r.Method == http.MethodGet && r.URL.Path == "/api/session" {
		token := bearerToken(r)
		if token == "" {
			writeJSON(w, http.StatusOK, map[string]any{"authenticated": false})
			return
		}
		sess, err := s.service.SessionFromToken(r.Context(), token)
		if err != nil {
			writeJSON(w, http.StatusOK, map[string]any{"authenticated": false})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"authenticated": true,
			"ownerId":       sess.OwnerID,
			"name":          sess.Name,
			"email":         sess.Email,
		})
		return
	}

	if r.Method == http.MethodPost && r.URL.Path == "/api/session/logout" {
		_ = s.service.Logout(r.Context(), bearerToken(r))
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}

	// Everything below requires a session.
	sess, err := s.service.SessionFromToken(r.Context(), bearerToken(r))
	if err != nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
		return
	}

	parts := splitPath(r.URL.Path)
	if len(parts) < 2 || parts[0] != "api" {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
		return
	}
	parts = parts[1:]

	switch parts[0] {
	case "deck":
		if r.Method == http.MethodGet && len(parts) == 2 && parts[1] == "today" {
			deckResp, err := s.service.GetOrCreateTodayRun(r.Context(), sess)
			if err != nil {
				writeMappedError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, todayDeckPayload(deckResp))
			return
		}
	case "runs":
		if r.Method == http.MethodGet && len(parts) == 3 && parts[2] == "items" {
			runID, err := parseID(parts[1])
			if err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid run id", nil)
				return
			}
			items, err := s.service.GetRunLineItems(r.Context(), sess, runID)
			if err != nil {
				writeMappedError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"items": runItemPayloads(items)})
			return
		}
	case "items":
		if r.Method == http.MethodPost && len(parts) == 3 {
			itemID, err := parseID(parts[1])
			if err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid item id", nil)
				return
			}
			switch parts[2] {
			case "mark":
				var body struct {
					Outcome string `json:"outcome"`
					Note    string `json:"note"`
				}
				if err := decodeBody(r, &body); err != nil {
					writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
					return
				}
				item, err := s.service.MarkItem(r.Context(), sess, itemID, body.Outcome, body.Note)
				if err != nil {
					writeMappedError(w, err)
					return
				}
				writeJSON(w, http.StatusOK, runItemPayload(item))
				return
			case "contact":
				var body struct {
					Made bool `json:"made"`
				}
				if err := decodeBody(r, &body); err != nil {
					writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
					return
				}
				item, err := s.service.SetContactMade(r.Context(), sess, itemID, body.Made)
				if err != nil {
					writeMappedError(w, err)
					return
				}
				writeJSON(w, http.StatusOK, runItemPayload(item))
				return
			}
		}
	case "dashboard":
		if r.Method == http.MethodGet && len(parts) == 1 {
			summary, err := s.service.GetDashboardSummary(r.Context(), sess)
			if err != nil {
				writeMappedError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, dashboardPayload(summary))
			return
		}
	case "focus-note":
		if len(parts) == 1 {
			switch r.Method {
			case http.MethodGet:
				note, err := s.service.GetFocusNote(r.Context(), sess, r.URL.Query().Get("day"))
				if err != nil {
					writeMappedError(w, err)
					return
				}
				if note == nil {
					writeJSON(w, http.StatusOK, map[string]any{"note": nil})
					return
				}
				writeJSON(w, http.StatusOK, map[string]any{"note": focusNotePayload(*note)})
				return
			case http.MethodPut:
				var body struct {
					Body string `json:"body"`
				}
				if err := decodeBody(r, &body); err != nil {
					writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
					return
				}
				note, err := s.service.SaveFocusNote(r.Context(), sess, body.Body)
				if err != nil {
					writeMappedError(w, err)
					return
				}
				writeJSON(w, http.StatusOK, map[string]any{"note": focusNotePayload(note)})
				return
			}
		}
	case "history":
		if r.Method == http.MethodGet && len(parts) == 1 {
			limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
			summaries, err := s.service.ReviewHistory(r.Context(), sess, limit)
			if err != nil {
				writeMappedError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"runs": runSummaryPayloads(summaries)})
			return
		}
	case "search":
		if r.Method == http.MethodGet && len(parts) == 1 {
			query := r.URL.Query()
			limit, _ := strconv.Atoi(query.Get("limit"))
			offset, _ := strconv.Atoi(query.Get("offset"))
			resp := s.service.Search(sess, query.Get("q"), query.Get("type"), limit, offset)
			writeJSON(w, http.StatusOK, resp)
			return
		}
	case "clients":
		s.handleClients(w, r, sess, parts)
		return
	case "contacts":
		s.handleContacts(w, r, sess, parts)
		return
	case "notes":
		s.handleNotes(w, r, sess, parts)
		return
	case "tasks":
		s.handleTasks(w, r, sess, parts)
		return
	case "tags":
		s.handleTags(w, r, sess, parts)
		return
	case "activity":
		if r.Method == http.MethodGet && len(parts) == 1 {
			query := r.URL.Query()
			clientID, _ := strconv.ParseInt(query.Get("clientId"), 10, 64)
			limit, _ := strconv.Atoi(query.Get("limit"))
			entries, err := s.service.ListActivity(r.Context(), sess, clientID, limit)
			if err != nil {
				writeMappedError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"activity": activityPayloads(entries)})
			return
		}
	}

	writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
}

func (s *HTTPServer) handleClients(w http.ResponseWriter, r *http.Request, sess Session, parts []string) {
	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		clients, err := s.service.ListClients(r.Context(), sess, r.URL.Query().Get("status"))
		if err != nil {
			writeMappedError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"clients": clientPayloads(clients)})
	case len(parts) == 1 && r.Method == http.MethodPost:
		var body ClientInput
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		client, err := s.service.CreateClient(r.Context(), sess, body)
		if err != nil {
			writeMappedError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, clientPayload(client))
	case len(parts) == 2:
		clientID, err := parseID(parts[1])
		if err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid client id", nil)
			return
		}
		switch r.Method {
		case http.MethodGet:
			client, err := s.service.GetClient(r.Context(), sess, clientID)
			if err != nil {
				writeMappedError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, clientPayload(client))
		case http.MethodPut:
			var body ClientUpdateInput
			if err := decodeBody(r, &body); err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
				return
			}
			client, err := s.service.UpdateClient(r.Context(), sess, clientID, body)
			if err != nil {
				writeMappedError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, clientPayload(client))
		case http.MethodDelete:
			if err := s.service.DeleteClient(r.Context(), sess, clientID); err != nil {
				writeMappedError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		default:
			writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
		}
	case len(parts) == 3 && parts[2] == "tags" && r.Method == http.MethodGet:
		clientID, err := parseID(parts[1])
		if err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid client id", nil)
			return
		}
		tags, err := s.service.ListClientTags(r.Context(), sess, clientID)
		if err != nil {
			writeMappedError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"tags": clientTagPayloads(tags)})
	case len(parts) == 4 && parts[2] == "tags":
		clientID, err := parseID(parts[1])
		if err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid client id", nil)
			return
		}
		tagID, err := parseID(parts[3])
		if err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid tag id", nil)
			return
		}
		switch r.Method {
		case http.MethodPost:
			if err := s.service.AddClientTag(r.Context(), sess, clientID, tagID); err != nil {
				writeMappedError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		case http.MethodDelete:
			if err := s.service.RemoveClientTag(r.Context(), sess, clientID, tagID); err != nil {
				writeMappedError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		default:
			writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
		}
	default:
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
	}
}

func (s *HTTPServer) handleContacts(w http.ResponseWriter, r *http.Request, sess Session, parts []string) {
	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		clientID, _ := strconv.ParseInt(r.URL.Query().Get("clientId"), 10, 64)
		contacts, err := s.service.ListContacts(r.Context(), sess, clientID)
		if err != nil {
			writeMappedError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"contacts": contactPayloads(contacts)})
	case len(parts) == 1 && r.Method == http.MethodPost:
		var body ContactInput
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		id, err := s.service.CreateContact(r.Context(), sess, body)
		if err != nil {
			writeMappedError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"id": id})
	case len(parts) == 2:
		contactID, err := parseID(parts[1])
		if err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid contact id", nil)
			return
		}
		switch r.Method {
		case http.MethodPut:
			var body ContactUpdateInput
			if err := decodeBody(r, &body); err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
				return
			}
			if err := s.service.UpdateContact(r.Context(), sess, contactID, body); err != nil {
				writeMappedError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		case http.MethodDelete:
			if err := s.service.DeleteContact(r.Context(), sess, contactID); err != nil {
				writeMappedError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		default:
			writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
		}
	default:
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
	}
}

func (s *HTTPServer) handleNotes(w http.ResponseWriter, r *http.Request, sess Session, parts []string) {
	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		clientID, _ := strconv.ParseInt(r.URL.Query().Get("clientId"), 10, 64)
		notes, err := s.service.ListNotes(r.Context(), sess, clientID)
		if err != nil {
			writeMappedError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"notes": notePayloads(notes)})
	case len(parts) == 1 && r.Method == http.MethodPost:
		var body NoteInput
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		id, err := s.service.CreateNote(r.Context(), sess, body)
		if err != nil {
			writeMappedError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"id": id})
	case len(parts) == 2:
		noteID, err := parseID(parts[1])
		if err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid note id", nil)
			return
		}
		switch r.Method {
		case http.MethodPut:
			var body NoteUpdateInput
			if err := decodeBody(r, &body); err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
				return
			}
			if err := s.service.UpdateNote(r.Context(), sess, noteID, body); err != nil {
				writeMappedError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		case http.MethodDelete:
			if err := s.service.DeleteNote(r.Context(), sess, noteID); err != nil {
				writeMappedError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		default:
			writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
		}
	default:
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
	}
}

func (s *HTTPServer) handleTasks(w http.ResponseWriter, r *http.Request, sess Session, parts []string) {
	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		query := r.URL.Query()
		clientID, _ := strconv.ParseInt(query.Get("clientId"), 10, 64)
		tasks, err := s.service.ListTasks(r.Context(), sess, clientID, query.Get("status"))
		if err != nil {
			writeMappedError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"tasks": taskPayloads(tasks)})
	case len(parts) == 1 && r.Method == http.MethodPost:
		var body TaskInput
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		id, err := s.service.CreateTask(r.Context(), sess, body)
		if err != nil {
			writeMappedError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"id": id})
	case len(parts) == 2 && parts[1] == "upcoming" && r.Method == http.MethodGet:
		query := r.URL.Query()
		clientID, _ := strconv.ParseInt(query.Get("clientId"), 10, 64)
		limit, _ := strconv.Atoi(query.Get("limit"))
		tasks, err := s.service.UpcomingTasks(r.Context(), sess, clientID, limit)
		if err != nil {
			writeMappedError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"tasks": taskPayloads(tasks)})
	case len(parts) == 2:
		taskID, err := parseID(parts[1])
		if err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid task id", nil)
			return
		}
		switch r.Method {
		case http.MethodPut:
			var body TaskUpdateInput
			if err := decodeBody(r, &body); err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
				return
			}
			if err := s.service.UpdateTask(r.Context(), sess, taskID, body); err != nil {
				writeMappedError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		case http.MethodDelete:
			if err := s.service.DeleteTask(r.Context(), sess, taskID); err != nil {
				writeMappedError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		default:
			writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
		}
	default:
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
	}
}

func (s *HTTPServer) handleTags(w http.ResponseWriter, r *http.Request, sess Session, parts []string) {
	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		tags, err := s.service.ListTags(r.Context(), sess)
		if err != nil {
			writeMappedError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"tags": tagPayloads(tags)})
	case len(parts) == 1 && r.Method == http.MethodPost:
		var body TagInput
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		id, err := s.service.CreateTag(r.Context(), sess, body)
		if err != nil {
			writeMappedError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"id": id})
	case len(parts) == 2:
		tagID, err := parseID(parts[1])
		if err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid tag id", nil)
			return
		}
		switch r.Method {
		case http.MethodPut:
			var body struct {
				Name  *string `json:"name"`
				Color *string `json:"color"`
			}
			if err := decodeBody(r, &body); err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
				return
			}
			if err := s.service.UpdateTag(r.Context(), sess, tagID, body.Name, body.Color); err != nil {
				writeMappedError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		case http.MethodDelete:
			if err := s.service.DeleteTag(r.Context(), sess, tagID); err != nil {
				writeMappedError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		default:
			writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
		}
	default:
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
	}
}

func (s *HTTPServer) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = randomRequestID()
		}
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		started := time.Now()
		writer := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		setCORSHeaders(writer.Header(), s.corsOrigin)
		writer.Header().Set("X-Request-ID", requestID)

		next.ServeHTTP(writer, r)

		log.Printf(`{"request_id":"%s","method":"%s","path":"%s","status":%d,"duration_ms":%d}`,
			requestID,
			r.Method,
			r.URL.Path,
			writer.status,
			time.Since(started).Milliseconds(),
		)
	})
}

type requestIDKey struct{}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func randomRequestID() string {
	buf := make([]byte, 8)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

func setCORSHeaders(header http.Header, corsOrigin string) {
	header.Set("Access-Control-Allow-Origin", corsOrigin)
	header.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
	header.Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
	header.Set("Cache-Control", "no-store")
	header.Set("Content-Type", "application/json")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string, details any) {
	response := map[string]any{
		"code":  code,
		"error": message,
	}
	if details != nil {
		response["details"] = details
	}
	writeJSON(w, status, response)
}

func writeMappedError(w http.ResponseWriter, err error) {
	status, code, message, details := mapError(err)
	writeError(w, status, code, message, details)
}

func decodeBody(r *http.Request, target any) error {
	if r.Body == nil {
		return nil
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(target); err != nil {
		if errors.Is(err, http.ErrBodyReadAfterClose) {
			return nil
		}
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

func mapError(err error) (status int, code, message string, details any) {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Status, domainErr.Code, domainErr.Message, domainErr.Details
	}
	if errors.Is(err, store.ErrUnavailable) {
		return http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", "Storage unavailable, retry shortly", nil
	}
	if errors.Is(err, store.ErrColumnMissing) {
		return http.StatusConflict, "SCHEMA_DRIFT", "Database schema is missing a required column", nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return http.StatusNotFound, "NOT_FOUND", "Not found", nil
	}
	if errors.Is(err, session.ErrNotFound) {
		return http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil
	}
	return http.StatusInternalServerError, "SERVER_ERROR", "Server error", nil
}

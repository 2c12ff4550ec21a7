// Package v1 exposes the chat pipeline over HTTP: one query endpoint
// that keeps a session per caller-provided id, plus a health probe.
package v1

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"raporbot/internal/chat"
	"raporbot/internal/config"
)

const sessionTTL = time.Hour

type QueryParams struct {
	SessionID string `json:"session_id"`
	Question  string `json:"question"`
}

type QueryResponse struct {
	SessionID string `json:"session_id"`
	Reply     string `json:"reply"`
	Done      bool   `json:"done"`
}

// sessionEntry tracks one conversation and when it was last used.
type sessionEntry struct {
	session  *chat.Session
	lastUsed time.Time
}

// Handler serves the query API. Sessions are created lazily per
// session id and expire after an hour of silence.
type Handler struct {
	cfg        *config.Config
	log        *logrus.Logger
	newSession func() *chat.Session

	mu       sync.Mutex
	sessions map[string]*sessionEntry
}

func NewHandler(cfg *config.Config, log *logrus.Logger, newSession func() *chat.Session) *Handler {
	return &Handler{
		cfg:        cfg,
		log:        log,
		newSession: newSession,
		sessions:   make(map[string]*sessionEntry),
	}
}

// Register mounts the v1 routes on the app.
func (h *Handler) Register(app *fiber.App) {
	group := app.Group("/api/v1")
	group.Get("/health", h.Health)
	group.Post("/query", RequireAPIKey(h.cfg, h.log), h.Query)
}

func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (h *Handler) Query(c *fiber.Ctx) error {
	var params QueryParams
	if err := c.BodyParser(&params); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if strings.TrimSpace(params.Question) == "" {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "question is required",
		})
	}

	sessionID := params.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	session := h.sessionFor(sessionID)
	reply, done := session.Process(c.Context(), params.Question)
	if done {
		h.dropSession(sessionID)
	}

	h.log.WithFields(logrus.Fields{
		"session": sessionID,
		"done":    done,
	}).Info("query answered")

	return c.JSON(QueryResponse{
		SessionID: sessionID,
		Reply:     reply,
		Done:      done,
	})
}

func (h *Handler) sessionFor(id string) *chat.Session {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := time.Now()
	for key, entry := range h.sessions {
		if now.Sub(entry.lastUsed) > sessionTTL {
			delete(h.sessions, key)
		}
	}

	entry, ok := h.sessions[id]
	if !ok {
		entry = &sessionEntry{session: h.newSession()}
		h.sessions[id] = entry
	}
	entry.lastUsed = now
	return entry.session
}

func (h *Handler) dropSession(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.sessions, id)
}

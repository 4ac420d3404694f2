package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"vector/internal/config"
	"vector/internal/feedback"
	"vector/internal/livesession"
	"vector/internal/matching"
	"vector/internal/models"
	"vector/internal/presence"
	"vector/internal/realtime"
	"vector/internal/store"
	"vector/internal/users"
	"vector/internal/utils"
)

// QuestionGetter resolves a question by id for session payloads.
// Satisfied by questions.Client.
type QuestionGetter interface {
	Get(ctx context.Context, id string) (*models.Question, error)
}

// Handlers carries the wired service dependencies for the HTTP surface.
type Handlers struct {
	engine    *matching.Engine
	live      *livesession.Service
	collector *feedback.Collector
	tracker   *presence.Tracker
	sessions  *store.SessionStore
	hub       *realtime.Hub
	directory *users.Directory
	questions QuestionGetter
	cfg       *config.Config
	log       *zap.Logger
	upgrader  websocket.Upgrader
}

func New(engine *matching.Engine, live *livesession.Service, collector *feedback.Collector,
	tracker *presence.Tracker, sessions *store.SessionStore, hub *realtime.Hub,
	directory *users.Directory, questions QuestionGetter, cfg *config.Config, log *zap.Logger) *Handlers {
	return &Handlers{
		engine:    engine,
		live:      live,
		collector: collector,
		tracker:   tracker,
		sessions:  sessions,
		hub:       hub,
		directory: directory,
		questions: questions,
		cfg:       cfg,
		log:       log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	_, _ = w.Write([]byte("ok"))
}

// --- Matching ---

func (h *Handlers) StartMatching(w http.ResponseWriter, r *http.Request) {
	var req models.StartMatchingReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, models.Resp{OK: false, Info: "invalid json"})
		return
	}

	state, err := h.engine.StartMatching(r.Context(), req)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, models.Resp{OK: true, Info: state})
}

func (h *Handlers) ConfirmMatch(w http.ResponseWriter, r *http.Request) {
	var req models.ConfirmMatchReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, models.Resp{OK: false, Info: "invalid json"})
		return
	}

	state, err := h.engine.ConfirmMatch(r.Context(), req.RequestID, req.UserID)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, models.Resp{OK: true, Info: state})
}

func (h *Handlers) CancelMatching(w http.ResponseWriter, r *http.Request) {
	var req models.CancelMatchingReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, models.Resp{OK: false, Info: "invalid json"})
		return
	}

	if err := h.engine.CancelMatching(r.Context(), req.RequestID, req.UserID); err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, models.Resp{OK: true, Info: "cancelled"})
}

func (h *Handlers) MatchStatus(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	scheduledSessionID := r.URL.Query().Get("scheduledSessionId")
	if userID == "" || scheduledSessionID == "" {
		utils.WriteJSON(w, http.StatusBadRequest, models.Resp{OK: false, Info: "userId and scheduledSessionId required"})
		return
	}

	state, err := h.engine.Status(r.Context(), userID, scheduledSessionID)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, models.Resp{OK: true, Info: state})
}

// --- Presence ---

func (h *Handlers) PresenceOpen(w http.ResponseWriter, r *http.Request) {
	var req models.PresenceReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, models.Resp{OK: false, Info: "invalid json"})
		return
	}
	h.tracker.SetUserActive(req.UserID, req.ScheduledSessionID)
	utils.WriteJSON(w, http.StatusOK, models.Resp{OK: true, Info: "presence recorded"})
}

func (h *Handlers) PresenceClose(w http.ResponseWriter, r *http.Request) {
	var req models.PresenceReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, models.Resp{OK: false, Info: "invalid json"})
		return
	}
	h.tracker.SetUserInactive(req.UserID, req.ScheduledSessionID)
	utils.WriteJSON(w, http.StatusOK, models.Resp{OK: true, Info: "presence cleared"})
}

func (h *Handlers) PresenceQuery(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	scheduledSessionID := r.URL.Query().Get("scheduledSessionId")
	if userID == "" || scheduledSessionID == "" {
		utils.WriteJSON(w, http.StatusBadRequest, models.Resp{OK: false, Info: "userId and scheduledSessionId required"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, models.Resp{OK: true, Info: map[string]bool{
		"partnerActive": h.tracker.AnyOtherActive(scheduledSessionID, userID),
	}})
}

// --- Live session ---

func (h *Handlers) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	userID := r.URL.Query().Get("userId")

	session, err := h.live.Get(r.Context(), sessionID, userID)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	view := models.SessionView{Session: session}
	if h.directory != nil {
		ids := make([]string, 0, len(session.Participants))
		for _, p := range session.Participants {
			ids = append(ids, p.UserID)
		}
		view.Profiles = h.directory.GetMany(r.Context(), ids)
	}
	if h.questions != nil && session.ActiveQuestionID != "" {
		// Best-effort enrichment; the session is usable without the title.
		if q, err := h.questions.Get(r.Context(), session.ActiveQuestionID); err == nil {
			view.ActiveQuestion = q
		}
	}
	utils.WriteJSON(w, http.StatusOK, models.Resp{OK: true, Info: view})
}

func (h *Handlers) ChangeQuestion(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	var req models.ChangeQuestionReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, models.Resp{OK: false, Info: "invalid json"})
		return
	}

	session, err := h.live.ChangeActiveQuestion(r.Context(), sessionID, req.UserID, req.QuestionID)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	h.hub.BroadcastToSession(sessionID, nil, models.EventFrame{
		Type: models.EventQuestionChanged,
		Data: mustJSON(models.QuestionChanged{QuestionID: session.ActiveQuestionID}),
	})
	utils.WriteJSON(w, http.StatusOK, models.Resp{OK: true, Info: models.SessionView{Session: session}})
}

func (h *Handlers) SwitchRoles(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	var req models.SwitchRolesReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, models.Resp{OK: false, Info: "invalid json"})
		return
	}

	session, err := h.live.SwitchRoles(r.Context(), sessionID, req.UserID)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	h.hub.BroadcastToSession(sessionID, nil, models.EventFrame{
		Type: models.EventRolesSwitched,
		Data: mustJSON(models.RolesSwitched{Participants: session.Participants}),
	})
	utils.WriteJSON(w, http.StatusOK, models.Resp{OK: true, Info: models.SessionView{Session: session}})
}

func (h *Handlers) EndSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	var req models.EndSessionReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, models.Resp{OK: false, Info: "invalid json"})
		return
	}

	session, err := h.live.EndSession(r.Context(), sessionID, req.UserID)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	h.hub.BroadcastToSession(sessionID, nil, models.EventFrame{Type: models.EventSessionEnded})
	utils.WriteJSON(w, http.StatusOK, models.Resp{OK: true, Info: models.SessionView{Session: session}})
}

// --- Feedback ---

func (h *Handlers) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	var req models.SubmitFeedbackReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, models.Resp{OK: false, Info: "invalid json"})
		return
	}

	fb, err := h.collector.SubmitFeedback(r.Context(), sessionID, req)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, models.Resp{OK: true, Info: fb})
}

func (h *Handlers) GetFeedbackStatus(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		utils.WriteJSON(w, http.StatusBadRequest, models.Resp{OK: false, Info: "userId required"})
		return
	}

	status, err := h.collector.GetFeedbackStatus(r.Context(), sessionID, userID)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, models.Resp{OK: true, Info: status})
}

func mustJSON(v interface{}) json.RawMessage {
	data, _ := json.Marshal(v)
	return data
}

package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"vector/internal/models"
	"vector/internal/realtime"
	"vector/internal/utils"
)

func (h *Handlers) parseToken(token string) (sessionID, userID string, err error) {
	return utils.ParseSessionToken(token, h.cfg.JWTSecret)
}

// MatchWS is the per-user notification channel. Matching events (match
// found, session ready, requeued) arrive here while the user waits. The
// connection doubles as a presence signal for the scheduled session.
func (h *Handlers) MatchWS(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		http.Error(w, "userId required", http.StatusBadRequest)
		return
	}
	scheduledSessionID := r.URL.Query().Get("scheduledSessionId")

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}

	client := realtime.NewClient(conn, userID, "")
	h.hub.RegisterUser(userID, client)
	if scheduledSessionID != "" {
		h.tracker.SetUserActive(userID, scheduledSessionID)
	}
	h.log.Info("match ws connected", zap.String("userId", userID))

	for {
		if _, _, err := conn.NextReader(); err != nil {
			break
		}
	}

	h.hub.UnregisterUser(userID, client)
	h.tracker.ClearUserPresence(userID)
	conn.Close()
	h.log.Info("match ws disconnected", zap.String("userId", userID))
}

// SessionWS is the live session's collaboration channel. Access requires the
// session token handed out on match confirmation. Incoming frames must be
// one of the known collaboration event shapes; anything else is rejected.
// Delivery to the partner is best-effort, most recent wins.
func (h *Handlers) SessionWS(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	tokenSessionID, userID, err := h.parseToken(r.URL.Query().Get("token"))
	if err != nil || tokenSessionID != sessionID {
		http.Error(w, "invalid session token", http.StatusUnauthorized)
		return
	}

	session, err := h.sessions.GetByID(sessionID)
	if err != nil || session.Participant(userID) == nil {
		http.Error(w, "not a participant", http.StatusForbidden)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}

	client := realtime.NewClient(conn, userID, sessionID)
	room := h.hub.GetOrCreate(sessionID)
	room.Join(client)
	_ = h.sessions.SetParticipantActive(sessionID, userID, true)
	room.Broadcast(client, models.EventFrame{
		Type: models.EventPartnerPresence,
		Data: mustJSON(models.PartnerPresence{UserID: userID, Active: true}),
	})
	h.log.Info("session ws connected",
		zap.String("sessionId", sessionID), zap.String("userId", userID))

	for {
		var frame models.EventFrame
		if err := conn.ReadJSON(&frame); err != nil {
			break
		}
		if _, err := models.DecodeEvent(frame); err != nil {
			client.Send(models.Resp{OK: false, Info: err.Error()})
			continue
		}
		room.Broadcast(client, frame)
	}

	_ = h.sessions.SetParticipantActive(sessionID, userID, false)
	h.hub.BroadcastToSession(sessionID, client, models.EventFrame{
		Type: models.EventPartnerPresence,
		Data: mustJSON(models.PartnerPresence{UserID: userID, Active: false}),
	})
	h.hub.Leave(sessionID, client)
	conn.Close()
	h.log.Info("session ws disconnected",
		zap.String("sessionId", sessionID), zap.String("userId", userID))
}

// AbandonOnEmpty wires the hub's empty-room callback to the session state
// machine: when both participants drop without ending, the session is marked
// abandoned.
func (h *Handlers) AbandonOnEmpty(sessionID string) {
	session, err := h.sessions.GetByID(sessionID)
	if err != nil || session.Status.Terminal() {
		return
	}
	if err := h.live.Abandon(context.Background(), sessionID); err != nil {
		h.log.Warn("failed to abandon empty session",
			zap.String("sessionId", sessionID), zap.Error(err))
	}
}

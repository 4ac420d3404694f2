package livesession

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"vector/internal/metrics"
	"vector/internal/models"
	"vector/internal/questions"
	"vector/internal/store"
)

// Service drives a live session through its lifecycle: question changes,
// role switches and termination.
type Service struct {
	sessions *store.SessionStore
	pool     questions.Pool
	rdb      *redis.Client
	log      *zap.Logger
}

func NewService(sessions *store.SessionStore, pool questions.Pool, rdb *redis.Client, log *zap.Logger) *Service {
	return &Service{sessions: sessions, pool: pool, rdb: rdb, log: log}
}

// ensureSecondQuestion backfills the second question slot from the pool when
// a session was created with only one question available.
func (s *Service) ensureSecondQuestion(ctx context.Context, session *models.LiveInterviewSession) error {
	if session.SecondQuestionID != "" {
		return nil
	}
	q, err := s.pool.Random(ctx, "", "", session.FirstQuestionID)
	if err != nil {
		return fmt.Errorf("failed to pick replacement question: %w", err)
	}
	if err := s.sessions.SetSecondQuestion(session.ID, q.ID); err != nil {
		return err
	}
	session.SecondQuestionID = q.ID
	return nil
}

// Get returns the session payload for a participant.
func (s *Service) Get(ctx context.Context, sessionID, userID string) (*models.LiveInterviewSession, error) {
	session, err := s.sessions.GetByID(sessionID)
	if err != nil {
		return nil, err
	}
	if session.Participant(userID) == nil {
		return nil, fmt.Errorf("%w: not a participant of this session", models.ErrForbidden)
	}
	return session, nil
}

// ChangeActiveQuestion switches the session to the requested question, or to
// the other pre-assigned question when none is requested. The requested id
// must be one of the session's two questions.
func (s *Service) ChangeActiveQuestion(ctx context.Context, sessionID, userID, requestedID string) (*models.LiveInterviewSession, error) {
	session, err := s.Get(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	if session.Status != models.SessionInProgress {
		return nil, fmt.Errorf("%w: session is %s", models.ErrInvalidState, session.Status)
	}
	if err := s.ensureSecondQuestion(ctx, session); err != nil {
		return nil, err
	}

	next := requestedID
	if next == "" {
		// Toggle to the other of the two pre-assigned questions.
		if session.ActiveQuestionID == session.FirstQuestionID {
			next = session.SecondQuestionID
		} else {
			next = session.FirstQuestionID
		}
	}
	if next != session.FirstQuestionID && next != session.SecondQuestionID {
		return nil, fmt.Errorf("%w: question %s is not assigned to this session", models.ErrInvalidInput, requestedID)
	}

	if err := s.sessions.SetActiveQuestion(sessionID, next); err != nil {
		return nil, err
	}
	session.ActiveQuestionID = next

	s.log.Info("active question changed",
		zap.String("sessionId", sessionID),
		zap.String("questionId", next))
	return session, nil
}

// SwitchRoles swaps interviewer and interviewee between the two active
// participants. Only a participant of an in-progress session may call it.
func (s *Service) SwitchRoles(ctx context.Context, sessionID, userID string) (*models.LiveInterviewSession, error) {
	session, err := s.Get(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	if session.Status != models.SessionInProgress {
		return nil, fmt.Errorf("%w: session is %s", models.ErrInvalidState, session.Status)
	}

	if err := s.sessions.SwapRoles(session); err != nil {
		return nil, err
	}

	s.log.Info("roles switched", zap.String("sessionId", sessionID))
	return session, nil
}

// EndSession completes an in-progress session. Idempotent once terminal.
func (s *Service) EndSession(ctx context.Context, sessionID, userID string) (*models.LiveInterviewSession, error) {
	session, err := s.Get(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	return s.finish(ctx, session, models.SessionCompleted)
}

// Abandon terminates a session both participants disconnected from without
// ending. Called by the hub when a session room empties.
func (s *Service) Abandon(ctx context.Context, sessionID string) error {
	session, err := s.sessions.GetByID(sessionID)
	if err != nil {
		return err
	}
	_, err = s.finish(ctx, session, models.SessionAbandoned)
	return err
}

func (s *Service) finish(ctx context.Context, session *models.LiveInterviewSession, status models.SessionStatus) (*models.LiveInterviewSession, error) {
	now := time.Now()
	changed, err := s.sessions.Finish(session.ID, status, now)
	if err != nil {
		return nil, err
	}
	if !changed {
		// Already terminal; repeated EndSession calls are a no-op.
		return s.sessions.GetByID(session.ID)
	}

	session.Status = status
	session.EndedAt = &now
	metrics.SessionsActive.Dec()

	s.publishEnded(ctx, session)
	s.log.Info("session finished",
		zap.String("sessionId", session.ID),
		zap.String("status", string(status)))
	return session, nil
}

func (s *Service) publishEnded(ctx context.Context, session *models.LiveInterviewSession) {
	if len(session.Participants) != 2 {
		return
	}
	event := models.SessionEndedEvent{
		Type:        "session_ended",
		SessionID:   session.ID,
		User1:       session.Participants[0].UserID,
		User2:       session.Participants[1].UserID,
		Status:      string(session.Status),
		EndedAt:     session.EndedAt.Format(time.RFC3339),
		DurationSec: int(session.EndedAt.Sub(session.StartedAt).Seconds()),
	}
	data, _ := json.Marshal(event)
	if err := s.rdb.Publish(ctx, models.ChannelSessions, data).Err(); err != nil {
		s.log.Warn("failed to publish session_ended", zap.Error(err))
	}
}

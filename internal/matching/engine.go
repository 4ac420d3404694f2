package matching

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"vector/internal/config"
	"vector/internal/metrics"
	"vector/internal/models"
	"vector/internal/questions"
	"vector/internal/store"
	"vector/internal/utils"
)

// Notifier pushes matching notifications to a user's open connection.
// Satisfied by realtime.Hub.
type Notifier interface {
	NotifyUser(userID string, v interface{})
}

// Engine pairs compatible matching requests and drives them through the
// confirm handshake into a live session.
type Engine struct {
	requests *store.RequestStore
	sessions *store.SessionStore
	pool     questions.Pool
	rdb      *redis.Client
	notifier Notifier
	cfg      *config.Config
	log      *zap.Logger
}

func NewEngine(requests *store.RequestStore, sessions *store.SessionStore, pool questions.Pool,
	rdb *redis.Client, notifier Notifier, cfg *config.Config, log *zap.Logger) *Engine {
	return &Engine{
		requests: requests,
		sessions: sessions,
		pool:     pool,
		rdb:      rdb,
		notifier: notifier,
		cfg:      cfg,
		log:      log,
	}
}

// StartMatching registers the caller's intent to be matched and attempts a
// pairing immediately. Idempotent while an unexpired request already exists.
func (e *Engine) StartMatching(ctx context.Context, in models.StartMatchingReq) (*models.MatchState, error) {
	if in.UserID == "" || in.ScheduledSessionID == "" ||
		in.InterviewType == "" || in.PracticeType == "" || in.InterviewLevel == "" {
		return nil, fmt.Errorf("%w: userId, scheduledSessionId, interviewType, practiceType and interviewLevel are required", models.ErrInvalidInput)
	}

	req, err := e.requests.ActiveForUser(in.UserID, in.ScheduledSessionID)
	switch {
	case err == nil:
		if req.Status == models.MatchStatusPending && req.Expired(time.Now()) {
			if err := e.requests.Expire(req.ID); err != nil {
				return nil, err
			}
			req = nil
		} else if req.Status != models.MatchStatusPending {
			// Already matched or confirmed; report where things stand.
			return e.stateFor(ctx, req)
		}
	case errors.Is(err, models.ErrNotFound):
		req = nil
	default:
		return nil, err
	}

	if req == nil {
		now := time.Now()
		req = &models.MatchingRequest{
			ID:                 uuid.New().String(),
			UserID:             in.UserID,
			ScheduledSessionID: in.ScheduledSessionID,
			InterviewType:      in.InterviewType,
			PracticeType:       in.PracticeType,
			InterviewLevel:     in.InterviewLevel,
			ScheduledStartAt:   in.ScheduledStartAt,
			Status:             models.MatchStatusPending,
			ExpiresAt:          now.Add(e.cfg.RequestTTL),
		}
		if err := e.requests.Create(req); err != nil {
			return nil, err
		}
		metrics.RequestsWaiting.Inc()
	}

	matched, err := e.tryPair(ctx, req)
	if err != nil {
		return nil, err
	}
	if !matched {
		return &models.MatchState{Request: req, Waiting: true}, nil
	}

	req, err = e.requests.GetByID(req.ID)
	if err != nil {
		return nil, err
	}
	return &models.MatchState{Request: req}, nil
}

// tryPair searches for a compatible pending request and claims it. The
// criteria bucket is guarded by a Redis lock so two engines racing on the
// same candidates cannot both win; a lost CAS inside the lock re-runs the
// search once before giving up for this attempt.
func (e *Engine) tryPair(ctx context.Context, req *models.MatchingRequest) (bool, error) {
	lockKey := e.lockKey(req)
	locked, err := e.acquireLock(ctx, lockKey)
	if err != nil {
		return false, err
	}
	if !locked {
		// Another engine is pairing this bucket right now. Stay pending;
		// either it pairs us or the next attempt will.
		return false, nil
	}
	defer e.rdb.Del(ctx, lockKey)

	for attempt := 0; attempt < 2; attempt++ {
		candidates, err := e.requests.FindCompatiblePending(req, e.cfg.StartWindow)
		if err != nil {
			return false, err
		}
		if len(candidates) == 0 {
			return false, nil
		}

		// FIFO: oldest candidate first.
		candidate := candidates[0]
		err = e.requests.MarkMatched(req, &candidate)
		if errors.Is(err, models.ErrConflict) {
			continue
		}
		if err != nil {
			return false, err
		}

		metrics.MatchesCreated.Inc()
		metrics.RequestsWaiting.Sub(2)
		e.log.Info("matched requests",
			zap.String("requestId", req.ID),
			zap.String("candidateId", candidate.ID))

		deadline := time.Now().Add(e.cfg.ConfirmTimeout)
		e.notifyMatchFound(req.ID, req.UserID, candidate.UserID, deadline)
		e.notifyMatchFound(candidate.ID, candidate.UserID, req.UserID, deadline)
		return true, nil
	}
	return false, nil
}

func (e *Engine) notifyMatchFound(requestID, userID, partnerID string, deadline time.Time) {
	e.notifier.NotifyUser(userID, map[string]interface{}{
		"type":          "match_found",
		"requestId":     requestID,
		"matchedUserId": partnerID,
		"confirmBy":     deadline.Format(time.RFC3339),
	})
}

// ConfirmMatch marks the caller's side of a matched pair as confirmed. When
// both sides have confirmed it creates the live session, exactly once.
func (e *Engine) ConfirmMatch(ctx context.Context, requestID, userID string) (*models.MatchState, error) {
	req, err := e.requests.GetByID(requestID)
	if err != nil {
		return nil, err
	}
	if req.UserID != userID {
		return nil, fmt.Errorf("%w: request belongs to another user", models.ErrForbidden)
	}
	if req.Status == models.MatchStatusConfirmed {
		return e.stateFor(ctx, req)
	}
	if req.Status != models.MatchStatusMatched {
		return nil, fmt.Errorf("%w: cannot confirm a %s request", models.ErrInvalidState, req.Status)
	}

	counterpart, err := e.requests.MatchedCounterpart(req)
	if err != nil {
		return nil, err
	}
	if err := e.requests.SetConfirmFlags(req.ID, counterpart.ID); err != nil {
		return nil, err
	}

	req, err = e.requests.GetByID(req.ID)
	if err != nil {
		return nil, err
	}
	if !req.UserConfirmed || !req.MatchedUserConfirmed {
		return &models.MatchState{Request: req, Waiting: true}, nil
	}

	if err := e.createSession(ctx, req, counterpart); err != nil {
		if errors.Is(err, models.ErrConflict) {
			// The other side's confirm created it first. Use theirs.
			req, rerr := e.requests.GetByID(req.ID)
			if rerr != nil {
				return nil, rerr
			}
			return e.stateFor(ctx, req)
		}
		return nil, err
	}

	req, err = e.requests.GetByID(req.ID)
	if err != nil {
		return nil, err
	}
	return e.stateFor(ctx, req)
}

// createSession builds the live session for a mutually confirmed pair. The
// ClaimSession CAS guarantees a single winner per pair.
func (e *Engine) createSession(ctx context.Context, req, counterpart *models.MatchingRequest) error {
	first, err := e.pool.Random(ctx, req.InterviewType, req.InterviewLevel, "")
	if err != nil {
		return fmt.Errorf("failed to pick first question: %w", err)
	}
	second, err := e.pool.Random(ctx, req.InterviewType, req.InterviewLevel, first.ID)
	if err != nil {
		return fmt.Errorf("failed to pick second question: %w", err)
	}

	sessionID := uuid.New().String()

	// The older request's owner interviews first.
	interviewer, interviewee := req, counterpart
	if counterpart.CreatedAt.Before(req.CreatedAt) {
		interviewer, interviewee = counterpart, req
	}

	now := time.Now()
	session := &models.LiveInterviewSession{
		ID:                 sessionID,
		ScheduledSessionID: req.ScheduledSessionID,
		FirstQuestionID:    first.ID,
		SecondQuestionID:   second.ID,
		ActiveQuestionID:   first.ID,
		Status:             models.SessionInProgress,
		StartedAt:          now,
		Participants: []models.SessionParticipant{
			{ID: uuid.New().String(), UserID: interviewer.UserID, Role: models.RoleInterviewer, IsActive: true, JoinedAt: now},
			{ID: uuid.New().String(), UserID: interviewee.UserID, Role: models.RoleInterviewee, IsActive: true, JoinedAt: now},
		},
	}

	// The claim and the session insert commit or roll back together. A failed
	// insert must not leave the pair Confirmed pointing at a session that was
	// never written, since nothing could ever recover it from there.
	if err := e.requests.DB.Transaction(func(tx *gorm.DB) error {
		if err := e.requests.WithTx(tx).ClaimSession(req.ID, counterpart.ID, sessionID); err != nil {
			return err
		}
		return e.sessions.WithTx(tx).Create(session)
	}); err != nil {
		return err
	}

	metrics.SessionsCreated.Inc()
	metrics.SessionsActive.Inc()
	e.log.Info("live session created",
		zap.String("sessionId", sessionID),
		zap.String("interviewer", interviewer.UserID),
		zap.String("interviewee", interviewee.UserID))

	e.publishCreated(ctx, session)
	e.notifySessionReady(session, req.UserID)
	e.notifySessionReady(session, counterpart.UserID)
	return nil
}

func (e *Engine) publishCreated(ctx context.Context, session *models.LiveInterviewSession) {
	event := models.SessionCreatedEvent{
		Type:      "session_created",
		SessionID: session.ID,
		User1:     session.Participants[0].UserID,
		User2:     session.Participants[1].UserID,
		CreatedAt: session.StartedAt.Format(time.RFC3339),
	}
	data, _ := json.Marshal(event)
	if err := e.rdb.Publish(ctx, models.ChannelSessions, data).Err(); err != nil {
		e.log.Warn("failed to publish session_created", zap.Error(err))
	}
}

func (e *Engine) notifySessionReady(session *models.LiveInterviewSession, userID string) {
	token, err := utils.GenerateSessionToken(session.ID, userID, e.cfg.JWTSecret)
	if err != nil {
		e.log.Error("failed to sign session token", zap.Error(err))
	}
	e.notifier.NotifyUser(userID, map[string]interface{}{
		"type":      "session_ready",
		"sessionId": session.ID,
		"token":     token,
	})
}

// CancelMatching terminates the caller's request. A matched counterpart is
// released back to pending with its original queue position.
func (e *Engine) CancelMatching(ctx context.Context, requestID, userID string) error {
	req, err := e.requests.GetByID(requestID)
	if err != nil {
		return err
	}
	if req.UserID != userID {
		return fmt.Errorf("%w: request belongs to another user", models.ErrForbidden)
	}

	var counterpart *models.MatchingRequest
	if req.Status == models.MatchStatusMatched {
		counterpart, err = e.requests.MatchedCounterpart(req)
		if err != nil && !errors.Is(err, models.ErrNotFound) {
			return err
		}
	}

	if err := e.requests.Cancel(req.ID); err != nil {
		return err
	}
	if req.Status == models.MatchStatusPending {
		metrics.RequestsWaiting.Dec()
	}

	if counterpart != nil {
		if err := e.requests.Unmatch(counterpart.ID); err != nil {
			return err
		}
		metrics.RequestsWaiting.Inc()
		e.notifier.NotifyUser(counterpart.UserID, map[string]interface{}{
			"type":    "requeued",
			"message": "Your match cancelled. You are back in the queue.",
		})
	}
	return nil
}

// Status reports where the caller's request stands for a scheduled session.
func (e *Engine) Status(ctx context.Context, userID, scheduledSessionID string) (*models.MatchState, error) {
	req, err := e.requests.ActiveForUser(userID, scheduledSessionID)
	if err != nil {
		return nil, err
	}
	return e.stateFor(ctx, req)
}

func (e *Engine) stateFor(ctx context.Context, req *models.MatchingRequest) (*models.MatchState, error) {
	state := &models.MatchState{Request: req, Waiting: req.Status == models.MatchStatusPending}
	if req.LiveSessionID != "" {
		session, err := e.sessions.GetByID(req.LiveSessionID)
		if err != nil {
			return nil, err
		}
		state.Session = session
		token, err := utils.GenerateSessionToken(session.ID, req.UserID, e.cfg.JWTSecret)
		if err != nil {
			e.log.Error("failed to sign session token", zap.Error(err))
		}
		state.Token = token
	}
	return state, nil
}

// RevertStaleMatches gives matched-but-unconfirmed pairs a bounded wait: the
// side that confirmed goes back to pending keeping its queue position, the
// silent side expires. Called periodically by the sweeper.
func (e *Engine) RevertStaleMatches(ctx context.Context) (int, error) {
	stale, err := e.requests.StaleMatched(e.cfg.ConfirmTimeout)
	if err != nil {
		return 0, err
	}
	for i := range stale {
		req := &stale[i]
		if req.UserConfirmed {
			if err := e.requests.Unmatch(req.ID); err != nil {
				e.log.Warn("failed to unmatch stale request", zap.String("requestId", req.ID), zap.Error(err))
				continue
			}
			metrics.RequestsWaiting.Inc()
			e.notifier.NotifyUser(req.UserID, map[string]interface{}{
				"type":    "requeued",
				"message": "Your match did not confirm in time. You are back in the queue.",
			})
		} else {
			if err := e.requests.Expire(req.ID); err != nil {
				e.log.Warn("failed to expire stale request", zap.String("requestId", req.ID), zap.Error(err))
				continue
			}
			e.notifier.NotifyUser(req.UserID, map[string]interface{}{
				"type":    "match_timeout",
				"message": "Match expired - you did not confirm in time.",
			})
		}
		metrics.ConfirmTimeouts.Inc()
	}
	return len(stale), nil
}

func (e *Engine) lockKey(req *models.MatchingRequest) string {
	bucket := req.ScheduledStartAt.Truncate(e.cfg.StartWindow).Unix()
	return fmt.Sprintf("matchlock:%s:%s:%s:%d",
		req.InterviewType, req.PracticeType, req.InterviewLevel, bucket)
}

func (e *Engine) acquireLock(ctx context.Context, key string) (bool, error) {
	for i := 0; i < 3; i++ {
		ok, err := e.rdb.SetNX(ctx, key, "1", 5*time.Second).Result()
		if err != nil {
			return false, fmt.Errorf("failed to acquire match lock: %w", err)
		}
		if ok {
			return true, nil
		}
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(50 * time.Millisecond):
		}
	}
	return false, nil
}

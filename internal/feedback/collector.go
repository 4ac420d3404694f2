package feedback

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"vector/internal/metrics"
	"vector/internal/models"
	"vector/internal/store"
)

// Collector accepts post-session ratings. Each participant may rate only the
// other; resubmission updates the existing record in place.
type Collector struct {
	feedback *store.FeedbackStore
	sessions *store.SessionStore
	log      *zap.Logger
}

func NewCollector(feedback *store.FeedbackStore, sessions *store.SessionStore, log *zap.Logger) *Collector {
	return &Collector{feedback: feedback, sessions: sessions, log: log}
}

// SubmitFeedback records a participant's rating of the other participant.
// The session must have completed first.
func (c *Collector) SubmitFeedback(ctx context.Context, sessionID string, in models.SubmitFeedbackReq) (*models.InterviewFeedback, error) {
	if in.ReviewerID == "" || in.RevieweeID == "" {
		return nil, fmt.Errorf("%w: reviewerId and revieweeId are required", models.ErrInvalidInput)
	}
	if in.ReviewerID == in.RevieweeID {
		return nil, fmt.Errorf("%w: cannot review yourself", models.ErrInvalidInput)
	}
	for _, rating := range []*int{in.ProblemSolving, in.CodingSkills, in.Communication, in.InterviewerPerformance} {
		if rating != nil && (*rating < 1 || *rating > 5) {
			return nil, fmt.Errorf("%w: ratings must be between 1 and 5", models.ErrInvalidInput)
		}
	}

	session, err := c.sessions.GetByID(sessionID)
	if err != nil {
		return nil, err
	}
	if session.Participant(in.ReviewerID) == nil || session.Participant(in.RevieweeID) == nil {
		return nil, fmt.Errorf("%w: both users must be participants of this session", models.ErrForbidden)
	}
	if !session.Status.Terminal() {
		return nil, fmt.Errorf("%w: session has not ended", models.ErrInvalidState)
	}

	fb := &models.InterviewFeedback{
		ID:                     uuid.New().String(),
		LiveSessionID:          sessionID,
		ReviewerID:             in.ReviewerID,
		RevieweeID:             in.RevieweeID,
		ProblemSolving:         in.ProblemSolving,
		CodingSkills:           in.CodingSkills,
		Communication:          in.Communication,
		InterviewerPerformance: in.InterviewerPerformance,
		Strengths:              in.Strengths,
		AreasToImprove:         in.AreasToImprove,
		CreatedAt:              time.Now(),
	}
	if err := c.feedback.Upsert(fb); err != nil {
		return nil, err
	}

	metrics.FeedbackSubmitted.Inc()
	c.log.Info("feedback submitted",
		zap.String("sessionId", sessionID),
		zap.String("reviewerId", in.ReviewerID))
	return fb, nil
}

// GetFeedbackStatus reports whether each side has submitted, and returns the
// feedback written about the caller once it exists.
func (c *Collector) GetFeedbackStatus(ctx context.Context, sessionID, userID string) (*models.FeedbackStatus, error) {
	session, err := c.sessions.GetByID(sessionID)
	if err != nil {
		return nil, err
	}
	me := session.Participant(userID)
	if me == nil {
		return nil, fmt.Errorf("%w: not a participant of this session", models.ErrForbidden)
	}
	opponent := session.OtherParticipant(userID)
	if opponent == nil {
		return nil, fmt.Errorf("%w: session has no second participant", models.ErrInvalidState)
	}

	status := &models.FeedbackStatus{}
	status.SubmittedByMe, err = c.feedback.Exists(sessionID, userID, opponent.UserID)
	if err != nil {
		return nil, err
	}

	received, err := c.feedback.Get(sessionID, opponent.UserID, userID)
	switch {
	case err == nil:
		status.SubmittedByOpponent = true
		status.Received = received
	case errors.Is(err, models.ErrNotFound):
	default:
		return nil, err
	}
	return status, nil
}

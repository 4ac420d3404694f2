package livesession

import (
	"context"
	"testing"
	"time"

	"vector/internal/models"
	"vector/internal/store"
	"vector/internal/testhelpers"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubPool struct {
	question *models.Question
}

func (p *stubPool) Random(_ context.Context, _, _, _ string) (*models.Question, error) {
	return p.question, nil
}

func setupService(t *testing.T) (*Service, *store.SessionStore) {
	t.Helper()
	db := testhelpers.SetupTestDB(t)
	_, rdb := testhelpers.SetupTestRedis(t)

	sessions := &store.SessionStore{DB: db}
	pool := &stubPool{question: &models.Question{ID: "q9", Title: "Backfill"}}
	return NewService(sessions, pool, rdb, zap.NewNop()), sessions
}

func seedSession(t *testing.T, sessions *store.SessionStore, mutate ...func(*models.LiveInterviewSession)) *models.LiveInterviewSession {
	t.Helper()
	now := time.Now()
	session := &models.LiveInterviewSession{
		ID:               uuid.New().String(),
		FirstQuestionID:  "q1",
		SecondQuestionID: "q2",
		ActiveQuestionID: "q1",
		Status:           models.SessionInProgress,
		StartedAt:        now,
		Participants: []models.SessionParticipant{
			{ID: uuid.New().String(), UserID: "alice", Role: models.RoleInterviewer, IsActive: true, JoinedAt: now},
			{ID: uuid.New().String(), UserID: "bob", Role: models.RoleInterviewee, IsActive: true, JoinedAt: now},
		},
	}
	for _, m := range mutate {
		m(session)
	}
	require.NoError(t, sessions.Create(session))
	return session
}

func TestGet_NonParticipant(t *testing.T) {
	svc, sessions := setupService(t)
	session := seedSession(t, sessions)

	_, err := svc.Get(context.Background(), session.ID, "mallory")
	assert.ErrorIs(t, err, models.ErrForbidden)

	got, err := svc.Get(context.Background(), session.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, session.ID, got.ID)
}

func TestChangeActiveQuestion_Toggle(t *testing.T) {
	svc, sessions := setupService(t)
	session := seedSession(t, sessions)
	ctx := context.Background()

	got, err := svc.ChangeActiveQuestion(ctx, session.ID, "alice", "")
	require.NoError(t, err)
	assert.Equal(t, "q2", got.ActiveQuestionID)

	got, err = svc.ChangeActiveQuestion(ctx, session.ID, "bob", "")
	require.NoError(t, err)
	assert.Equal(t, "q1", got.ActiveQuestionID)
}

func TestChangeActiveQuestion_Explicit(t *testing.T) {
	svc, sessions := setupService(t)
	session := seedSession(t, sessions)

	got, err := svc.ChangeActiveQuestion(context.Background(), session.ID, "alice", "q2")
	require.NoError(t, err)
	assert.Equal(t, "q2", got.ActiveQuestionID)

	stored, _ := sessions.GetByID(session.ID)
	assert.Equal(t, "q2", stored.ActiveQuestionID)
}

func TestChangeActiveQuestion_UnassignedQuestion(t *testing.T) {
	svc, sessions := setupService(t)
	session := seedSession(t, sessions)

	_, err := svc.ChangeActiveQuestion(context.Background(), session.ID, "alice", "q404")
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestChangeActiveQuestion_BackfillsSecondQuestion(t *testing.T) {
	svc, sessions := setupService(t)
	session := seedSession(t, sessions, func(s *models.LiveInterviewSession) {
		s.SecondQuestionID = ""
	})

	got, err := svc.ChangeActiveQuestion(context.Background(), session.ID, "alice", "")
	require.NoError(t, err)
	assert.Equal(t, "q9", got.ActiveQuestionID)

	stored, _ := sessions.GetByID(session.ID)
	assert.Equal(t, "q9", stored.SecondQuestionID)
}

func TestChangeActiveQuestion_TerminalSession(t *testing.T) {
	svc, sessions := setupService(t)
	session := seedSession(t, sessions)
	_, err := sessions.Finish(session.ID, models.SessionCompleted, time.Now())
	require.NoError(t, err)

	_, err = svc.ChangeActiveQuestion(context.Background(), session.ID, "alice", "q2")
	assert.ErrorIs(t, err, models.ErrInvalidState)
}

func TestSwitchRoles_RoundTrip(t *testing.T) {
	svc, sessions := setupService(t)
	session := seedSession(t, sessions)
	ctx := context.Background()

	got, err := svc.SwitchRoles(ctx, session.ID, "bob")
	require.NoError(t, err)
	assert.Equal(t, models.RoleInterviewee, got.Participant("alice").Role)
	assert.Equal(t, models.RoleInterviewer, got.Participant("bob").Role)

	got, err = svc.SwitchRoles(ctx, session.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, models.RoleInterviewer, got.Participant("alice").Role)
	assert.Equal(t, models.RoleInterviewee, got.Participant("bob").Role)
}

func TestSwitchRoles_NonParticipant(t *testing.T) {
	svc, sessions := setupService(t)
	session := seedSession(t, sessions)

	_, err := svc.SwitchRoles(context.Background(), session.ID, "mallory")
	assert.ErrorIs(t, err, models.ErrForbidden)
}

func TestEndSession_Idempotent(t *testing.T) {
	svc, sessions := setupService(t)
	session := seedSession(t, sessions)
	ctx := context.Background()

	got, err := svc.EndSession(ctx, session.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, models.SessionCompleted, got.Status)
	require.NotNil(t, got.EndedAt)

	// The other participant ending again is a no-op
	got, err = svc.EndSession(ctx, session.ID, "bob")
	require.NoError(t, err)
	assert.Equal(t, models.SessionCompleted, got.Status)
}

func TestAbandon(t *testing.T) {
	svc, sessions := setupService(t)
	session := seedSession(t, sessions)

	require.NoError(t, svc.Abandon(context.Background(), session.ID))

	got, _ := sessions.GetByID(session.ID)
	assert.Equal(t, models.SessionAbandoned, got.Status)
	assert.NotNil(t, got.EndedAt)
}

func TestAbandon_DoesNotOverrideCompleted(t *testing.T) {
	svc, sessions := setupService(t)
	session := seedSession(t, sessions)
	ctx := context.Background()

	_, err := svc.EndSession(ctx, session.ID, "alice")
	require.NoError(t, err)

	require.NoError(t, svc.Abandon(ctx, session.ID))

	got, _ := sessions.GetByID(session.ID)
	assert.Equal(t, models.SessionCompleted, got.Status)
}

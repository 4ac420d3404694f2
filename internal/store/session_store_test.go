package store

import (
	"testing"
	"time"

	"vector/internal/models"
	"vector/internal/testhelpers"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSession() *models.LiveInterviewSession {
	now := time.Now()
	return &models.LiveInterviewSession{
		ID:               uuid.New().String(),
		FirstQuestionID:  "q1",
		SecondQuestionID: "q2",
		ActiveQuestionID: "q1",
		Status:           models.SessionInProgress,
		StartedAt:        now,
		Participants: []models.SessionParticipant{
			{ID: uuid.New().String(), UserID: "user1", Role: models.RoleInterviewer, IsActive: true, JoinedAt: now},
			{ID: uuid.New().String(), UserID: "user2", Role: models.RoleInterviewee, IsActive: true, JoinedAt: now},
		},
	}
}

func TestSessionCreate(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	s := &SessionStore{DB: db}

	session := newSession()
	require.NoError(t, s.Create(session))

	got, err := s.GetByID(session.ID)
	require.NoError(t, err)
	assert.Len(t, got.Participants, 2)
	assert.Equal(t, models.SessionInProgress, got.Status)
	assert.Equal(t, "q1", got.ActiveQuestionID)
}

func TestSessionCreate_RequiresTwoParticipants(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	s := &SessionStore{DB: db}

	session := newSession()
	session.Participants = session.Participants[:1]

	err := s.Create(session)
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestSetActiveQuestion(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	s := &SessionStore{DB: db}

	session := newSession()
	require.NoError(t, s.Create(session))

	require.NoError(t, s.SetActiveQuestion(session.ID, "q2"))

	got, _ := s.GetByID(session.ID)
	assert.Equal(t, "q2", got.ActiveQuestionID)
}

func TestSetActiveQuestion_TerminalSession(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	s := &SessionStore{DB: db}

	session := newSession()
	require.NoError(t, s.Create(session))
	_, err := s.Finish(session.ID, models.SessionCompleted, time.Now())
	require.NoError(t, err)

	err = s.SetActiveQuestion(session.ID, "q2")
	assert.ErrorIs(t, err, models.ErrInvalidState)
}

func TestSwapRoles(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	s := &SessionStore{DB: db}

	session := newSession()
	require.NoError(t, s.Create(session))

	require.NoError(t, s.SwapRoles(session))

	got, _ := s.GetByID(session.ID)
	assert.Equal(t, models.RoleInterviewee, got.Participant("user1").Role)
	assert.Equal(t, models.RoleInterviewer, got.Participant("user2").Role)
}

func TestFinish_Idempotent(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	s := &SessionStore{DB: db}

	session := newSession()
	require.NoError(t, s.Create(session))

	changed, err := s.Finish(session.ID, models.SessionCompleted, time.Now())
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = s.Finish(session.ID, models.SessionAbandoned, time.Now())
	require.NoError(t, err)
	assert.False(t, changed)

	got, _ := s.GetByID(session.ID)
	assert.Equal(t, models.SessionCompleted, got.Status)
	assert.NotNil(t, got.EndedAt)
}

func TestSetParticipantActive(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	s := &SessionStore{DB: db}

	session := newSession()
	require.NoError(t, s.Create(session))

	require.NoError(t, s.SetParticipantActive(session.ID, "user1", false))

	got, _ := s.GetByID(session.ID)
	assert.False(t, got.Participant("user1").IsActive)
	assert.True(t, got.Participant("user2").IsActive)
}

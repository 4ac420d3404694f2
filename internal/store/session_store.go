package store

import (
	"errors"
	"fmt"
	"time"

	"vector/internal/models"

	"gorm.io/gorm"
)

// SessionStore persists live interview sessions and their participants.
type SessionStore struct {
	DB *gorm.DB
}

// WithTx returns a store bound to the given transaction.
func (s *SessionStore) WithTx(tx *gorm.DB) *SessionStore {
	return &SessionStore{DB: tx}
}

// Create inserts a session together with its two participants.
func (s *SessionStore) Create(session *models.LiveInterviewSession) error {
	if len(session.Participants) != 2 {
		return fmt.Errorf("%w: a session needs exactly two participants", models.ErrInvalidInput)
	}
	return s.DB.Transaction(func(tx *gorm.DB) error {
		participants := session.Participants
		session.Participants = nil
		if err := tx.Create(session).Error; err != nil {
			return err
		}
		for i := range participants {
			participants[i].SessionID = session.ID
			if err := tx.Create(&participants[i]).Error; err != nil {
				return err
			}
		}
		session.Participants = participants
		return nil
	})
}

// GetByID retrieves a session with its participants.
func (s *SessionStore) GetByID(id string) (*models.LiveInterviewSession, error) {
	var session models.LiveInterviewSession
	err := s.DB.Preload("Participants").First(&session, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: session %s", models.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// SetActiveQuestion updates the session's active question. Only valid while
// the session is in progress.
func (s *SessionStore) SetActiveQuestion(id, questionID string) error {
	res := s.DB.Model(&models.LiveInterviewSession{}).
		Where("id = ? AND status = ?", id, models.SessionInProgress).
		Update("active_question_id", questionID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected != 1 {
		return fmt.Errorf("%w: session is not in progress", models.ErrInvalidState)
	}
	return nil
}

// SetSecondQuestion backfills the second question slot.
func (s *SessionStore) SetSecondQuestion(id, questionID string) error {
	return s.DB.Model(&models.LiveInterviewSession{}).
		Where("id = ?", id).
		Update("second_question_id", questionID).Error
}

// SwapRoles exchanges the two participants' roles in one transaction.
func (s *SessionStore) SwapRoles(session *models.LiveInterviewSession) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		for i := range session.Participants {
			p := &session.Participants[i]
			p.Role = p.Role.Other()
			if err := tx.Model(&models.SessionParticipant{}).
				Where("id = ?", p.ID).
				Update("role", p.Role).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Finish moves an in-progress session to a terminal status. Repeated calls
// once terminal are a no-op so EndSession stays idempotent.
func (s *SessionStore) Finish(id string, status models.SessionStatus, endedAt time.Time) (bool, error) {
	res := s.DB.Model(&models.LiveInterviewSession{}).
		Where("id = ? AND status = ?", id, models.SessionInProgress).
		Updates(map[string]interface{}{
			"status":   status,
			"ended_at": endedAt,
		})
	return res.RowsAffected == 1, res.Error
}

// SetParticipantActive flips a participant's isActive flag.
func (s *SessionStore) SetParticipantActive(sessionID, userID string, active bool) error {
	return s.DB.Model(&models.SessionParticipant{}).
		Where("session_id = ? AND user_id = ?", sessionID, userID).
		Update("is_active", active).Error
}

// CountActive returns how many sessions are currently in progress.
func (s *SessionStore) CountActive() (int64, error) {
	var n int64
	err := s.DB.Model(&models.LiveInterviewSession{}).
		Where("status = ?", models.SessionInProgress).
		Count(&n).Error
	return n, err
}

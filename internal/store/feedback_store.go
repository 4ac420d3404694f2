package store

import (
	"errors"
	"fmt"

	"vector/internal/models"

	"gorm.io/gorm"
)

// FeedbackStore persists post-session feedback.
type FeedbackStore struct {
	DB *gorm.DB
}

// Upsert creates the feedback row for its (session, reviewer, reviewee)
// triple, or updates the existing row in place on resubmission.
func (s *FeedbackStore) Upsert(fb *models.InterviewFeedback) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var existing models.InterviewFeedback
		err := tx.
			Where("live_session_id = ? AND reviewer_id = ? AND reviewee_id = ?",
				fb.LiveSessionID, fb.ReviewerID, fb.RevieweeID).
			First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(fb).Error
		}
		if err != nil {
			return err
		}
		fb.ID = existing.ID
		fb.CreatedAt = existing.CreatedAt
		return tx.Model(&existing).Updates(map[string]interface{}{
			"problem_solving":         fb.ProblemSolving,
			"coding_skills":           fb.CodingSkills,
			"communication":           fb.Communication,
			"interviewer_performance": fb.InterviewerPerformance,
			"strengths":               fb.Strengths,
			"areas_to_improve":        fb.AreasToImprove,
		}).Error
	})
}

// Get returns the feedback row for a triple, or ErrNotFound.
func (s *FeedbackStore) Get(sessionID, reviewerID, revieweeID string) (*models.InterviewFeedback, error) {
	var fb models.InterviewFeedback
	err := s.DB.
		Where("live_session_id = ? AND reviewer_id = ? AND reviewee_id = ?",
			sessionID, reviewerID, revieweeID).
		First(&fb).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: feedback", models.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &fb, nil
}

// Exists reports whether feedback has been submitted for a triple.
func (s *FeedbackStore) Exists(sessionID, reviewerID, revieweeID string) (bool, error) {
	var n int64
	err := s.DB.Model(&models.InterviewFeedback{}).
		Where("live_session_id = ? AND reviewer_id = ? AND reviewee_id = ?",
			sessionID, reviewerID, revieweeID).
		Count(&n).Error
	return n > 0, err
}

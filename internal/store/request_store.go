package store

import (
	"errors"
	"fmt"
	"time"

	"vector/internal/models"

	"gorm.io/gorm"
)

// RequestStore persists matching requests.
type RequestStore struct {
	DB *gorm.DB
}

// WithTx returns a store bound to the given transaction, so callers can
// compose request updates with other writes atomically.
func (s *RequestStore) WithTx(tx *gorm.DB) *RequestStore {
	return &RequestStore{DB: tx}
}

var activeStatuses = []models.MatchStatus{
	models.MatchStatusPending,
	models.MatchStatusMatched,
	models.MatchStatusConfirmed,
}

// Create inserts a new request. Fails with ErrConflict if the user already
// has a non-terminal request for the same scheduled session.
func (s *RequestStore) Create(req *models.MatchingRequest) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var existing models.MatchingRequest
		err := tx.
			Where("user_id = ? AND scheduled_session_id = ? AND status IN ?",
				req.UserID, req.ScheduledSessionID, activeStatuses).
			First(&existing).Error
		if err == nil {
			return fmt.Errorf("%w: user already has an active request for this session", models.ErrConflict)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return tx.Create(req).Error
	})
}

// GetByID retrieves a request by id.
func (s *RequestStore) GetByID(id string) (*models.MatchingRequest, error) {
	var req models.MatchingRequest
	err := s.DB.First(&req, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: matching request %s", models.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// ActiveForUser returns the user's non-terminal request for a scheduled
// session, or ErrNotFound.
func (s *RequestStore) ActiveForUser(userID, scheduledSessionID string) (*models.MatchingRequest, error) {
	var req models.MatchingRequest
	err := s.DB.
		Where("user_id = ? AND scheduled_session_id = ? AND status IN ?",
			userID, scheduledSessionID, activeStatuses).
		First(&req).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: no active request", models.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// MatchedCounterpart returns the request on the other side of a matched
// pair.
func (s *RequestStore) MatchedCounterpart(req *models.MatchingRequest) (*models.MatchingRequest, error) {
	var other models.MatchingRequest
	err := s.DB.
		Where("user_id = ? AND matched_user_id = ? AND status IN ?",
			req.MatchedUserID, req.UserID,
			[]models.MatchStatus{models.MatchStatusMatched, models.MatchStatusConfirmed}).
		First(&other).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: counterpart request", models.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &other, nil
}

// FindCompatiblePending returns pending, unexpired requests matching the
// given request's criteria with a scheduled start inside the window,
// excluding the requester, oldest first.
func (s *RequestStore) FindCompatiblePending(req *models.MatchingRequest, window time.Duration) ([]models.MatchingRequest, error) {
	now := time.Now()
	var candidates []models.MatchingRequest
	err := s.DB.
		Where("status = ? AND user_id <> ? AND expires_at > ?",
			models.MatchStatusPending, req.UserID, now).
		Where("interview_type = ? AND practice_type = ? AND interview_level = ?",
			req.InterviewType, req.PracticeType, req.InterviewLevel).
		Where("scheduled_start_at BETWEEN ? AND ?",
			req.ScheduledStartAt.Add(-window), req.ScheduledStartAt.Add(window)).
		Order("created_at ASC").
		Find(&candidates).Error
	return candidates, err
}

// ExpireStale flips pending requests past their expiry to expired and
// returns how many were swept.
func (s *RequestStore) ExpireStale() (int64, error) {
	res := s.DB.Model(&models.MatchingRequest{}).
		Where("status = ? AND expires_at <= ?", models.MatchStatusPending, time.Now()).
		Updates(map[string]interface{}{"status": models.MatchStatusExpired})
	return res.RowsAffected, res.Error
}

// MarkMatched transitions two pending requests to matched and points them at
// each other. Both updates are compare-and-set on status inside one
// transaction; losing the race to a concurrent matcher returns ErrConflict
// and leaves both rows untouched.
func (s *RequestStore) MarkMatched(a, b *models.MatchingRequest) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		for _, pair := range []struct {
			req     *models.MatchingRequest
			partner string
		}{{a, b.UserID}, {b, a.UserID}} {
			res := tx.Model(&models.MatchingRequest{}).
				Where("id = ? AND status = ?", pair.req.ID, models.MatchStatusPending).
				Updates(map[string]interface{}{
					"status":          models.MatchStatusMatched,
					"matched_user_id": pair.partner,
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected != 1 {
				return fmt.Errorf("%w: request %s no longer pending", models.ErrConflict, pair.req.ID)
			}
		}
		return nil
	})
}

// SetConfirmFlags records which sides of a matched pair have confirmed. The
// caller's own request gets user_confirmed, the counterpart gets
// matched_user_confirmed.
func (s *RequestStore) SetConfirmFlags(ownID, counterpartID string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.MatchingRequest{}).
			Where("id = ? AND status = ?", ownID, models.MatchStatusMatched).
			Update("user_confirmed", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			return fmt.Errorf("%w: request %s is not awaiting confirmation", models.ErrInvalidState, ownID)
		}
		return tx.Model(&models.MatchingRequest{}).
			Where("id = ? AND status = ?", counterpartID, models.MatchStatusMatched).
			Update("matched_user_confirmed", true).Error
	})
}

// ClaimSession atomically attaches a session id to both matched requests and
// flips them to confirmed. Exactly one caller wins; everyone else gets
// ErrConflict. This is the guard that prevents double session creation.
func (s *RequestStore) ClaimSession(id1, id2, sessionID string) error {
	res := s.DB.Model(&models.MatchingRequest{}).
		Where("id IN ? AND status = ? AND (live_session_id IS NULL OR live_session_id = '')",
			[]string{id1, id2}, models.MatchStatusMatched).
		Updates(map[string]interface{}{
			"status":          models.MatchStatusConfirmed,
			"live_session_id": sessionID,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected != 2 {
		return fmt.Errorf("%w: session already claimed for this pair", models.ErrConflict)
	}
	return nil
}

// Unmatch reverts a matched request to pending, clearing the partner link and
// confirmation flags. CreatedAt is untouched so the request keeps its queue
// position.
func (s *RequestStore) Unmatch(id string) error {
	return s.DB.Model(&models.MatchingRequest{}).
		Where("id = ? AND status = ?", id, models.MatchStatusMatched).
		Updates(map[string]interface{}{
			"status":                 models.MatchStatusPending,
			"matched_user_id":        "",
			"user_confirmed":         false,
			"matched_user_confirmed": false,
		}).Error
}

// Cancel terminates a pending or matched request at its owner's demand. For
// matched requests the caller is responsible for releasing the counterpart.
func (s *RequestStore) Cancel(id string) error {
	res := s.DB.Model(&models.MatchingRequest{}).
		Where("id = ? AND status IN ?", id,
			[]models.MatchStatus{models.MatchStatusPending, models.MatchStatusMatched}).
		Updates(map[string]interface{}{
			"status":                 models.MatchStatusCancelled,
			"matched_user_id":        "",
			"user_confirmed":         false,
			"matched_user_confirmed": false,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected != 1 {
		return fmt.Errorf("%w: request cannot be cancelled in its current state", models.ErrInvalidState)
	}
	return nil
}

// StaleMatched returns matched requests whose pairing is older than the
// confirm deadline, for the sweeper to revert.
func (s *RequestStore) StaleMatched(deadline time.Duration) ([]models.MatchingRequest, error) {
	var reqs []models.MatchingRequest
	err := s.DB.
		Where("status = ? AND updated_at <= ?", models.MatchStatusMatched, time.Now().Add(-deadline)).
		Find(&reqs).Error
	return reqs, err
}

// Expire flips a single request to expired regardless of its expiry time.
func (s *RequestStore) Expire(id string) error {
	return s.DB.Model(&models.MatchingRequest{}).
		Where("id = ? AND status IN ?", id,
			[]models.MatchStatus{models.MatchStatusPending, models.MatchStatusMatched}).
		Updates(map[string]interface{}{
			"status":                 models.MatchStatusExpired,
			"matched_user_id":        "",
			"user_confirmed":         false,
			"matched_user_confirmed": false,
		}).Error
}

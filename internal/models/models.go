package models

import (
	"time"
)

// Matching request statuses
type MatchStatus string

const (
	MatchStatusPending   MatchStatus = "pending"
	MatchStatusMatched   MatchStatus = "matched"
	MatchStatusConfirmed MatchStatus = "confirmed"
	MatchStatusExpired   MatchStatus = "expired"
	MatchStatusCancelled MatchStatus = "cancelled"
)

// Terminal reports whether no further transitions are allowed.
func (s MatchStatus) Terminal() bool {
	return s == MatchStatusConfirmed || s == MatchStatusExpired || s == MatchStatusCancelled
}

// Live session statuses
type SessionStatus string

const (
	SessionInProgress SessionStatus = "in_progress"
	SessionCompleted  SessionStatus = "completed"
	SessionAbandoned  SessionStatus = "abandoned"
)

func (s SessionStatus) Terminal() bool { return s != SessionInProgress }

// Participant roles
type Role string

const (
	RoleInterviewer Role = "interviewer"
	RoleInterviewee Role = "interviewee"
)

// Other returns the complementary role.
func (r Role) Other() Role {
	if r == RoleInterviewer {
		return RoleInterviewee
	}
	return RoleInterviewer
}

// Interview levels
const (
	LevelBeginner     = "beginner"
	LevelIntermediate = "intermediate"
	LevelAdvanced     = "advanced"
)

// MatchingRequest is a user's durable intent to be paired for a scheduled
// interview slot. MatchedUserID and LiveSessionID are empty until the request
// reaches the corresponding status.
type MatchingRequest struct {
	ID                   string      `gorm:"primaryKey" json:"id"`
	UserID               string      `gorm:"not null;index" json:"userId"`
	ScheduledSessionID   string      `gorm:"not null;index" json:"scheduledSessionId"`
	InterviewType        string      `gorm:"not null" json:"interviewType"`
	PracticeType         string      `gorm:"not null" json:"practiceType"`
	InterviewLevel       string      `gorm:"not null" json:"interviewLevel"`
	ScheduledStartAt     time.Time   `json:"scheduledStartAt"`
	Status               MatchStatus `gorm:"not null;index" json:"status"`
	MatchedUserID        string      `json:"matchedUserId,omitempty"`
	LiveSessionID        string      `json:"liveSessionId,omitempty"`
	UserConfirmed        bool        `json:"userConfirmed"`
	MatchedUserConfirmed bool        `json:"matchedUserConfirmed"`
	ExpiresAt            time.Time   `gorm:"index" json:"expiresAt"`
	CreatedAt            time.Time   `json:"createdAt"`
	UpdatedAt            time.Time   `json:"updatedAt"`
}

// Expired reports whether the request's expiry has passed, regardless of
// whether the sweeper has flipped its status yet.
func (r *MatchingRequest) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// LiveInterviewSession is an in-progress paired interview.
type LiveInterviewSession struct {
	ID                 string               `gorm:"primaryKey" json:"id"`
	ScheduledSessionID string               `gorm:"index" json:"scheduledSessionId,omitempty"`
	FirstQuestionID    string               `json:"firstQuestionId"`
	SecondQuestionID   string               `json:"secondQuestionId"`
	ActiveQuestionID   string               `json:"activeQuestionId,omitempty"`
	Status             SessionStatus        `gorm:"not null;index" json:"status"`
	StartedAt          time.Time            `json:"startedAt"`
	EndedAt            *time.Time           `json:"endedAt,omitempty"`
	CreatedAt          time.Time            `json:"createdAt"`
	UpdatedAt          time.Time            `json:"updatedAt"`
	Participants       []SessionParticipant `gorm:"foreignKey:SessionID" json:"participants"`
}

// Participant returns the participant row for userID, or nil.
func (s *LiveInterviewSession) Participant(userID string) *SessionParticipant {
	for i := range s.Participants {
		if s.Participants[i].UserID == userID {
			return &s.Participants[i]
		}
	}
	return nil
}

// OtherParticipant returns the participant row that is not userID, or nil.
func (s *LiveInterviewSession) OtherParticipant(userID string) *SessionParticipant {
	for i := range s.Participants {
		if s.Participants[i].UserID != userID {
			return &s.Participants[i]
		}
	}
	return nil
}

// SessionParticipant is a user's role membership within a live session.
type SessionParticipant struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	SessionID string    `gorm:"not null;uniqueIndex:idx_session_user" json:"sessionId"`
	UserID    string    `gorm:"not null;uniqueIndex:idx_session_user" json:"userId"`
	Role      Role      `gorm:"not null" json:"role"`
	IsActive  bool      `json:"isActive"`
	JoinedAt  time.Time `json:"joinedAt"`
}

// InterviewFeedback is a post-session rating one participant leaves about the
// other. Ratings are 1-5, nil when the reviewer skipped a category. At most
// one row exists per (session, reviewer, reviewee) triple; resubmission
// updates in place.
type InterviewFeedback struct {
	ID                     string    `gorm:"primaryKey" json:"id"`
	LiveSessionID          string    `gorm:"not null;uniqueIndex:idx_feedback_triple" json:"liveSessionId"`
	ReviewerID             string    `gorm:"not null;uniqueIndex:idx_feedback_triple" json:"reviewerId"`
	RevieweeID             string    `gorm:"not null;uniqueIndex:idx_feedback_triple" json:"revieweeId"`
	ProblemSolving         *int      `json:"problemSolving,omitempty"`
	CodingSkills           *int      `json:"codingSkills,omitempty"`
	Communication          *int      `json:"communication,omitempty"`
	InterviewerPerformance *int      `json:"interviewerPerformance,omitempty"`
	Strengths              string    `gorm:"type:text" json:"strengths,omitempty"`
	AreasToImprove         string    `gorm:"type:text" json:"areasToImprove,omitempty"`
	CreatedAt              time.Time `json:"createdAt"`
	UpdatedAt              time.Time `json:"updatedAt"`
}

// Question is the slice of the question service's model this service needs.
type Question struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Difficulty string   `json:"difficulty"`
	TopicTags  []string `json:"topic_tags,omitempty"`
}

// UserProfile is the slice of the user service's model used for enrichment.
type UserProfile struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email,omitempty"`
}

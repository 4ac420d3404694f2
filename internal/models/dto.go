package models

import "time"

// Resp is the generic API envelope.
type Resp struct {
	OK   bool        `json:"ok"`
	Info interface{} `json:"info"`
}

type StartMatchingReq struct {
	UserID             string    `json:"userId"`
	ScheduledSessionID string    `json:"scheduledSessionId"`
	InterviewType      string    `json:"interviewType"`
	PracticeType       string    `json:"practiceType"`
	InterviewLevel     string    `json:"interviewLevel"`
	ScheduledStartAt   time.Time `json:"scheduledStartAt"`
}

type ConfirmMatchReq struct {
	UserID    string `json:"userId"`
	RequestID string `json:"requestId"`
}

type CancelMatchingReq struct {
	UserID    string `json:"userId"`
	RequestID string `json:"requestId"`
}

type PresenceReq struct {
	UserID             string `json:"userId"`
	ScheduledSessionID string `json:"scheduledSessionId"`
}

type ChangeQuestionReq struct {
	UserID     string `json:"userId"`
	QuestionID string `json:"questionId,omitempty"`
}

type SwitchRolesReq struct {
	UserID string `json:"userId"`
}

type EndSessionReq struct {
	UserID string `json:"userId"`
}

type SubmitFeedbackReq struct {
	ReviewerID             string `json:"reviewerId"`
	RevieweeID             string `json:"revieweeId"`
	ProblemSolving         *int   `json:"problemSolving,omitempty"`
	CodingSkills           *int   `json:"codingSkills,omitempty"`
	Communication          *int   `json:"communication,omitempty"`
	InterviewerPerformance *int   `json:"interviewerPerformance,omitempty"`
	Strengths              string `json:"strengths,omitempty"`
	AreasToImprove         string `json:"areasToImprove,omitempty"`
}

// MatchState is the engine's answer to "where is my request right now".
type MatchState struct {
	Request *MatchingRequest      `json:"request"`
	Waiting bool                  `json:"waiting"`
	Session *LiveInterviewSession `json:"session,omitempty"`
	Token   string                `json:"token,omitempty"`
}

// SessionView is the session payload returned by live-session operations,
// enriched with the resolved active question and participant names.
type SessionView struct {
	Session        *LiveInterviewSession  `json:"session"`
	ActiveQuestion *Question              `json:"activeQuestion,omitempty"`
	Profiles       map[string]UserProfile `json:"profiles,omitempty"`
}

// FeedbackStatus tells a participant whether each side has submitted and
// carries the feedback written about the caller once it exists.
type FeedbackStatus struct {
	SubmittedByMe       bool               `json:"submittedByMe"`
	SubmittedByOpponent bool               `json:"submittedByOpponent"`
	Received            *InterviewFeedback `json:"received,omitempty"`
}

package models

import (
	"encoding/json"
	"fmt"
)

// Realtime event types carried over the session websocket channel. Frames
// with any other type are rejected at the hub boundary.
const (
	EventCodeUpdated        = "code_updated"
	EventCursorMoved        = "cursor_moved"
	EventSelectionChanged   = "selection_changed"
	EventTestResultsUpdated = "test_results_updated"
	EventQuestionChanged    = "question_changed"
	EventRolesSwitched      = "roles_switched"
	EventPartnerPresence    = "partner_presence"
	EventSessionEnded       = "session_ended"
)

// EventFrame is the wire envelope for realtime events.
type EventFrame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type CodeUpdated struct {
	UserID string `json:"userId"`
	Code   string `json:"code"`
}

type CursorMoved struct {
	UserID string `json:"userId"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

type SelectionChanged struct {
	UserID      string `json:"userId"`
	StartLine   int    `json:"startLine"`
	StartColumn int    `json:"startColumn"`
	EndLine     int    `json:"endLine"`
	EndColumn   int    `json:"endColumn"`
}

type TestResultsUpdated struct {
	UserID  string `json:"userId"`
	Passed  int    `json:"passed"`
	Failed  int    `json:"failed"`
	Details string `json:"details,omitempty"`
}

type QuestionChanged struct {
	QuestionID string `json:"questionId"`
	Title      string `json:"title,omitempty"`
}

type RolesSwitched struct {
	Participants []SessionParticipant `json:"participants"`
}

type PartnerPresence struct {
	UserID string `json:"userId"`
	Active bool   `json:"active"`
}

// DecodeEvent validates a frame against the known event shapes and returns
// the decoded payload. Unrecognized types are an error, not a passthrough.
func DecodeEvent(frame EventFrame) (interface{}, error) {
	var (
		payload interface{}
		err     error
	)
	switch frame.Type {
	case EventCodeUpdated:
		var e CodeUpdated
		err = json.Unmarshal(frame.Data, &e)
		payload = e
	case EventCursorMoved:
		var e CursorMoved
		err = json.Unmarshal(frame.Data, &e)
		payload = e
	case EventSelectionChanged:
		var e SelectionChanged
		err = json.Unmarshal(frame.Data, &e)
		payload = e
	case EventTestResultsUpdated:
		var e TestResultsUpdated
		err = json.Unmarshal(frame.Data, &e)
		payload = e
	default:
		return nil, fmt.Errorf("%w: unknown event type %q", ErrInvalidInput, frame.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: malformed %s payload", ErrInvalidInput, frame.Type)
	}
	return payload, nil
}

// Lifecycle events published on Redis for sibling services.
const (
	ChannelSessions = "sessions"
)

type SessionCreatedEvent struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionId"`
	User1     string `json:"user1"`
	User2     string `json:"user2"`
	CreatedAt string `json:"createdAt"`
}

type SessionEndedEvent struct {
	Type        string `json:"type"`
	SessionID   string `json:"sessionId"`
	User1       string `json:"user1"`
	User2       string `json:"user2"`
	Status      string `json:"status"`
	EndedAt     string `json:"endedAt"`
	DurationSec int    `json:"durationSeconds"`
}

package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEvent_CodeUpdated(t *testing.T) {
	frame := EventFrame{
		Type: EventCodeUpdated,
		Data: json.RawMessage(`{"userId":"alice","code":"func main() {}"}`),
	}

	payload, err := DecodeEvent(frame)

	require.NoError(t, err)
	e, ok := payload.(CodeUpdated)
	require.True(t, ok)
	assert.Equal(t, "alice", e.UserID)
	assert.Equal(t, "func main() {}", e.Code)
}

func TestDecodeEvent_CursorMoved(t *testing.T) {
	frame := EventFrame{
		Type: EventCursorMoved,
		Data: json.RawMessage(`{"userId":"bob","line":12,"column":4}`),
	}

	payload, err := DecodeEvent(frame)

	require.NoError(t, err)
	e := payload.(CursorMoved)
	assert.Equal(t, 12, e.Line)
	assert.Equal(t, 4, e.Column)
}

func TestDecodeEvent_TestResultsUpdated(t *testing.T) {
	frame := EventFrame{
		Type: EventTestResultsUpdated,
		Data: json.RawMessage(`{"userId":"alice","passed":3,"failed":1}`),
	}

	payload, err := DecodeEvent(frame)

	require.NoError(t, err)
	e := payload.(TestResultsUpdated)
	assert.Equal(t, 3, e.Passed)
	assert.Equal(t, 1, e.Failed)
}

func TestDecodeEvent_UnknownType(t *testing.T) {
	frame := EventFrame{Type: "rm_rf", Data: json.RawMessage(`{}`)}

	_, err := DecodeEvent(frame)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDecodeEvent_MalformedPayload(t *testing.T) {
	frame := EventFrame{Type: EventCodeUpdated, Data: json.RawMessage(`not json`)}

	_, err := DecodeEvent(frame)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDecodeEvent_ServerOnlyTypesRejected(t *testing.T) {
	// Lifecycle types are broadcast by the server, never accepted from clients.
	for _, typ := range []string{EventQuestionChanged, EventRolesSwitched, EventPartnerPresence, EventSessionEnded} {
		_, err := DecodeEvent(EventFrame{Type: typ, Data: json.RawMessage(`{}`)})
		assert.ErrorIs(t, err, ErrInvalidInput, typ)
	}
}

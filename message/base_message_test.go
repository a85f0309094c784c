package message

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeKey(t *testing.T) {
	mt := Type{Domain: "tsv", Category: "bad", Version: "v1"}
	assert.Equal(t, "tsv.bad.v1", mt.Key())
	assert.Equal(t, mt.Key(), mt.String())
	assert.True(t, mt.IsValid())
	assert.False(t, Type{Domain: "tsv"}.IsValid())
	assert.True(t, mt.Equal(Type{Domain: "tsv", Category: "bad", Version: "v1"}))
	assert.False(t, mt.Equal(Type{Domain: "tsv", Category: "bad", Version: "v2"}))
}

func TestNewBaseMessage(t *testing.T) {
	payload := &BadRecordPayload{Record: "a\tb", Errors: []string{"field 1: bad"}}
	msg := NewBaseMessage(BadRecordMessage, payload, "tsv-validator")

	assert.NotEmpty(t, msg.ID())
	assert.Equal(t, BadRecordMessage, msg.Type())
	assert.Equal(t, payload, msg.Payload())
	assert.Equal(t, "tsv-validator", msg.Meta().Source())
	require.NoError(t, msg.Validate())
	assert.NotEmpty(t, msg.Hash())
}

func TestBaseMessageWithTime(t *testing.T) {
	createdAt := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	payload := &RepairedRecordPayload{Record: "a\tb"}
	msg := NewBaseMessage(RepairedRecordMessage, payload, "tsv-repair", WithTime(createdAt))

	assert.Equal(t, createdAt, msg.Meta().CreatedAt().UTC())
}

func TestBaseMessageRoundTrip(t *testing.T) {
	payload := &BadRecordPayload{
		Record: "alice\t\t42",
		Errors: []string{"field 2: missing email", "field 3: out of range"},
	}
	msg := NewBaseMessage(BadRecordMessage, payload, "tsv-validator")

	data, err := json.Marshal(msg)
	require.NoError(t, err)

	var decoded BaseMessage
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, msg.ID(), decoded.ID())
	assert.Equal(t, BadRecordMessage, decoded.Type())
	assert.Equal(t, "tsv-validator", decoded.Meta().Source())

	got, ok := decoded.Payload().(*BadRecordPayload)
	require.True(t, ok, "payload recreated as typed BadRecordPayload")
	assert.Equal(t, payload.Record, got.Record)
	assert.Equal(t, payload.Errors, got.Errors, "error order preserved")
}

func TestBaseMessageUnmarshalUnknownType(t *testing.T) {
	raw := `{"id":"x","type":{"Domain":"tsv","Category":"nope","Version":"v9"},"payload":{},"meta":{}}`

	var decoded BaseMessage
	err := json.Unmarshal([]byte(raw), &decoded)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unregistered payload type")
}

func TestBaseMessageValidate(t *testing.T) {
	msg := NewBaseMessage(Type{Domain: "tsv"}, &RepairedRecordPayload{}, "src")
	assert.Error(t, msg.Validate(), "incomplete type rejected")

	msg = NewBaseMessage(BadRecordMessage, nil, "src")
	assert.Error(t, msg.Validate(), "nil payload rejected")

	msg = NewBaseMessage(BadRecordMessage, &BadRecordPayload{Record: "r"}, "src")
	assert.Error(t, msg.Validate(), "nil errors list rejected")

	msg = NewBaseMessage(BadRecordMessage, &BadRecordPayload{Record: "r", Errors: []string{}}, "src")
	assert.NoError(t, msg.Validate(), "empty errors list accepted")
}

func TestBadRecordPayloadJSON(t *testing.T) {
	payload := &BadRecordPayload{Record: "a\tb\t", Errors: []string{"e1", "e2"}}

	data, err := payload.MarshalJSON()
	require.NoError(t, err)

	var decoded BadRecordPayload
	require.NoError(t, decoded.UnmarshalJSON(data))
	assert.Equal(t, payload.Record, decoded.Record, "trailing tab survives the round trip")
	assert.Equal(t, payload.Errors, decoded.Errors)
}

package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeBase(t *testing.T) {
	base, err := DecodeBase([]byte(`{"type":"act","protocol_version":"1"}`))
	require.NoError(t, err)
	assert.Equal(t, TypeAct, base.Type)
	assert.Equal(t, Version, base.ProtocolVersion)

	_, err = DecodeBase([]byte(`not json`))
	assert.Error(t, err)
}

func TestActMsgDecoding(t *testing.T) {
	raw := `{
		"type": "act",
		"protocol_version": "1",
		"tick": 42,
		"actions": [
			{"continuous": [0.5, -1.0, 0.0], "discrete": 1},
			{"continuous": [0.0, 0.0, 0.0], "discrete": 0}
		]
	}`

	var act ActMsg
	require.NoError(t, json.Unmarshal([]byte(raw), &act))
	assert.Equal(t, int64(42), act.Tick)
	require.Len(t, act.Actions, 2)
	assert.Equal(t, [3]float32{0.5, -1.0, 0.0}, act.Actions[0].Continuous)
	assert.Equal(t, 1, act.Actions[0].Discrete)
}

func TestObsMsgFieldNames(t *testing.T) {
	msg := ObsMsg{
		Type:            TypeObs,
		ProtocolVersion: Version,
		Tick:            7,
		Phase:           "seek",
		RemainingHiders: 2,
		Agents: []AgentObs{
			{ID: 0, Team: "hider", Obs: []float32{0.1, 0.2}, Reward: 1.5, Done: true},
		},
	}

	data, err := json.Marshal(msg)
	require.NoError(t, err)

	// The trainer parses by field name; these are part of the contract.
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Contains(t, decoded, "protocol_version")
	assert.Contains(t, decoded, "remaining_hiders")
	assert.Contains(t, decoded, "time_remaining")

	agents := decoded["agents"].([]any)
	agent := agents[0].(map[string]any)
	assert.Equal(t, "hider", agent["team"])
	assert.Equal(t, true, agent["done"])
}

// Package protocol defines the JSON messages exchanged with an external
// trainer over the websocket channel. Vector shapes are fixed: any change
// here breaks the trainer's tensor contract.
package protocol

import (
	"encoding/json"
	"fmt"
)

// Version is the protocol version string; mismatched acts are rejected.
const Version = "1"

// Message types.
const (
	TypeHello = "hello"
	TypeObs   = "obs"
	TypeAct   = "act"
)

// Base is the envelope common to every message.
type Base struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
}

// DecodeBase extracts the envelope from a raw message.
func DecodeBase(data []byte) (Base, error) {
	var b Base
	if err := json.Unmarshal(data, &b); err != nil {
		return Base{}, fmt.Errorf("decoding message envelope: %w", err)
	}
	return b, nil
}

// HelloMsg opens a trainer session.
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
}

// ActMsg carries one tick's actions for the whole roster, in roster order
// (hiders then seekers).
type ActMsg struct {
	Type            string        `json:"type"`
	ProtocolVersion string        `json:"protocol_version"`
	Tick            int64         `json:"tick"`
	Actions         []AgentAction `json:"actions"`
}

// AgentAction is one agent's action vector: three continuous scalars (only
// the first two are used) and one discrete selector in {0,1,2}.
type AgentAction struct {
	Continuous [3]float32 `json:"continuous"`
	Discrete   int        `json:"discrete"`
}

// ObsMsg carries one tick's observations, rewards and done flags for the
// whole roster, plus the episode status surface.
type ObsMsg struct {
	Type            string  `json:"type"`
	ProtocolVersion string  `json:"protocol_version"`
	Tick            int64   `json:"tick"`
	Episode         int     `json:"episode"`
	Phase           string  `json:"phase"`
	TimeRemaining   float32 `json:"time_remaining"`
	RemainingHiders int     `json:"remaining_hiders"`

	Agents []AgentObs `json:"agents"`
}

// AgentObs is one agent's step output.
type AgentObs struct {
	ID     int       `json:"id"`   // roster index
	Team   string    `json:"team"` // "hider" or "seeker"
	Obs    []float32 `json:"obs"`  // fixed length, stable across phases
	Reward float32   `json:"reward"`
	Done   bool      `json:"done"`
}

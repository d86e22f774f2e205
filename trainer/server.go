// Package trainer serves the environment to an external RL trainer over a
// lockstep websocket channel: one act message in, one simulation tick, one
// obs message out.
package trainer

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/pthm-cable/hideseek/components"
	"github.com/pthm-cable/hideseek/game"
	"github.com/pthm-cable/hideseek/protocol"
)

// Server drives a game.Env from a single trainer connection. The
// environment never advances a tick without a complete act message, so the
// connection read is the simulation's only suspension point.
type Server struct {
	env *game.Env
	log zerolog.Logger

	mu       sync.Mutex // one trainer session at a time
	upgrader websocket.Upgrader

	actions []game.Action // scratch, reused across ticks
}

// NewServer creates a trainer server around the given environment.
func NewServer(env *game.Env, log zerolog.Logger) *Server {
	return &Server{
		env: env,
		log: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

// ListenAndServe blocks serving the trainer channel at /trainer.
func (s *Server) ListenAndServe(addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/trainer", s.Handler())
	s.log.Info().Str("addr", addr).Msg("trainer channel listening")
	return http.ListenAndServe(addr, mux)
}

// Handler returns the websocket handler for the trainer channel. Only one
// trainer session runs at a time; a second connection is rejected until the
// first closes.
func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if !s.mu.TryLock() {
			http.Error(rw, "trainer session already active", http.StatusConflict)
			return
		}
		defer s.mu.Unlock()

		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		if !s.handshake(conn) {
			return
		}
		s.log.Info().Str("remote", conn.RemoteAddr().String()).Msg("trainer connected")

		// Fresh episode for a fresh session, then the initial observations.
		s.env.ResetEpisode()
		if err := s.writeObs(conn, s.env.Observations()); err != nil {
			return
		}

		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				s.log.Info().Err(err).Msg("trainer disconnected")
				return
			}

			base, err := protocol.DecodeBase(msg)
			if err != nil || base.Type != protocol.TypeAct {
				continue
			}
			var act protocol.ActMsg
			if err := json.Unmarshal(msg, &act); err != nil {
				continue
			}
			if act.ProtocolVersion != protocol.Version {
				continue
			}

			results := s.env.Step(s.decodeActions(act))
			if err := s.writeObs(conn, results); err != nil {
				return
			}
		}
	}
}

// handshake waits for the hello message and checks the protocol version.
func (s *Server) handshake(conn *websocket.Conn) bool {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return false
	}
	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		return false
	}
	if hello.Type != protocol.TypeHello || hello.ProtocolVersion != protocol.Version {
		s.log.Warn().Str("type", hello.Type).Str("version", hello.ProtocolVersion).
			Msg("rejected trainer handshake")
		return false
	}
	return true
}

// decodeActions converts an act message to roster actions. Missing entries
// degrade to no-ops; the roster order is hiders then seekers.
func (s *Server) decodeActions(act protocol.ActMsg) []game.Action {
	s.actions = s.actions[:0]
	for _, a := range act.Actions {
		op := game.OpNothing
		switch a.Discrete {
		case 1:
			op = game.OpGrab
		case 2:
			op = game.OpLock
		}
		s.actions = append(s.actions, game.Action{Continuous: a.Continuous, Interact: op})
	}
	return s.actions
}

// writeObs sends one tick's results to the trainer.
func (s *Server) writeObs(conn *websocket.Conn, results []game.StepResult) error {
	msg := protocol.ObsMsg{
		Type:            protocol.TypeObs,
		ProtocolVersion: protocol.Version,
		Tick:            s.env.Tick(),
		Episode:         s.env.Episode(),
		Phase:           s.env.Phase().String(),
		TimeRemaining:   s.env.PhaseTimeRemaining(),
		RemainingHiders: s.env.RemainingHiders(),
		Agents:          make([]protocol.AgentObs, len(results)),
	}

	views := s.env.Agents(nil)
	for i, res := range results {
		team := components.TeamHider
		if i < len(views) {
			team = views[i].Team
		}
		msg.Agents[i] = protocol.AgentObs{
			ID:     i,
			Team:   team.String(),
			Obs:    res.Obs[:],
			Reward: res.Reward,
			Done:   res.Done,
		}
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, data)
}

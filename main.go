package main

import (
	"flag"
	"math/rand"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/pthm-cable/hideseek/config"
	"github.com/pthm-cable/hideseek/game"
	"github.com/pthm-cable/hideseek/telemetry"
	"github.com/pthm-cable/hideseek/trainer"
	"github.com/pthm-cable/hideseek/viewer"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run the scripted policy without graphics")
	serve := flag.Bool("serve", false, "Serve the websocket trainer channel instead of the scripted policy")
	addr := flag.String("addr", "", "Trainer listen address (empty = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed for the scripted policy (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	debug := flag.Bool("debug", false, "Enable debug logging")

	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		With().Timestamp().Logger()
	if !*debug {
		logger = logger.Level(zerolog.InfoLevel)
	}

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	cfg := config.Cfg()

	out, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize output")
	}
	defer out.Close()
	if err := out.WriteConfig(cfg); err != nil {
		logger.Fatal().Err(err).Msg("failed to snapshot config")
	}

	collector := telemetry.NewCollector(cfg.Telemetry.SummaryWindow, out, logger)
	env := game.NewEnv(cfg, game.Options{Logger: logger, Collector: collector})

	if *serve {
		listen := cfg.Server.Addr
		if *addr != "" {
			listen = *addr
		}
		srv := trainer.NewServer(env, logger)
		if err := srv.ListenAndServe(listen); err != nil {
			logger.Fatal().Err(err).Msg("trainer server failed")
		}
		return
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}
	policy := newScriptedPolicy(env.AgentCount(), rand.New(rand.NewSource(rngSeed)))
	logger.Info().Int64("seed", rngSeed).Int("agents", env.AgentCount()).
		Bool("headless", *headless).Msg("starting scripted run")

	if *headless {
		for {
			env.Step(policy.actions())
			if *maxTicks > 0 && int(env.Tick()) >= *maxTicks {
				logger.Info().Int64("tick", env.Tick()).Msg("max ticks reached")
				return
			}
		}
	}

	v := viewer.New(env, cfg)
	v.Run(func() { env.Step(policy.actions()) }, *maxTicks)
}

// scriptedPolicy is a wander-and-fiddle baseline used when no trainer is
// attached: each agent keeps a heading for a while, re-rolls it now and
// then, and occasionally tries a grab or a lock.
type scriptedPolicy struct {
	rng  *rand.Rand
	acts []game.Action
}

func newScriptedPolicy(agents int, rng *rand.Rand) *scriptedPolicy {
	p := &scriptedPolicy{rng: rng, acts: make([]game.Action, agents)}
	for i := range p.acts {
		p.reroll(i)
	}
	return p
}

func (p *scriptedPolicy) reroll(i int) {
	p.acts[i].Continuous[0] = p.rng.Float32()*2 - 1
	p.acts[i].Continuous[1] = p.rng.Float32()*2 - 1
}

func (p *scriptedPolicy) actions() []game.Action {
	for i := range p.acts {
		if p.rng.Float32() < 0.02 {
			p.reroll(i)
		}
		switch r := p.rng.Float32(); {
		case r < 0.01:
			p.acts[i].Interact = game.OpGrab
		case r < 0.015:
			p.acts[i].Interact = game.OpLock
		default:
			p.acts[i].Interact = game.OpNothing
		}
	}
	return p.acts
}

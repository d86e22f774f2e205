// Package viewer renders a read-only top-down projection of the
// environment: arena, obstacles, agents, and the episode status line. It
// never mutates environment state beyond invoking the step callback.
package viewer

import (
	"fmt"
	"math"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/hideseek/components"
	"github.com/pthm-cable/hideseek/config"
	"github.com/pthm-cable/hideseek/game"
)

// Viewer draws the environment each frame.
type Viewer struct {
	env    *game.Env
	cfg    *config.Config
	scale  float32
	margin float32

	paused bool

	// Snapshot scratch, reused across frames
	agents    []game.AgentView
	obstacles []game.ObstacleView
}

// New creates a viewer for the given environment.
func New(env *game.Env, cfg *config.Config) *Viewer {
	return &Viewer{
		env:    env,
		cfg:    cfg,
		scale:  float32(cfg.Viewer.Scale),
		margin: 24,
	}
}

// Run opens the window and drives the environment via step until the
// window closes or maxTicks is reached (0 = unlimited).
func (v *Viewer) Run(step func(), maxTicks int) {
	cfg := v.cfg
	rl.InitWindow(int32(cfg.Viewer.Width), int32(cfg.Viewer.Height), "hideseek")
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.Viewer.TargetFPS))

	for !rl.WindowShouldClose() {
		if !v.paused {
			step()
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.NewColor(18, 18, 24, 255))

		v.drawArena()
		v.drawObstacles()
		v.drawAgents()
		v.drawStatus()
		v.drawControls(step)

		rl.EndDrawing()

		if maxTicks > 0 && int(v.env.Tick()) >= maxTicks {
			return
		}
	}
}

// toScreen converts world coordinates to screen pixels.
func (v *Viewer) toScreen(x, z float32) (float32, float32) {
	return v.margin + x*v.scale, v.margin + z*v.scale
}

func (v *Viewer) drawArena() {
	ox, oz := v.toScreen(0, 0)
	w := v.cfg.Derived.ArenaW32 * v.scale
	d := v.cfg.Derived.ArenaD32 * v.scale
	rl.DrawRectangle(int32(ox), int32(oz), int32(w), int32(d), rl.NewColor(36, 40, 48, 255))

	for _, wall := range v.env.Walls() {
		wx, wz := v.toScreen(wall.X-wall.HalfW, wall.Z-wall.HalfD)
		rl.DrawRectangle(int32(wx), int32(wz),
			int32(2*wall.HalfW*v.scale), int32(2*wall.HalfD*v.scale),
			rl.Gray)
	}
}

func (v *Viewer) drawObstacles() {
	v.obstacles = v.env.Obstacles(v.obstacles[:0])
	for _, ob := range v.obstacles {
		color := rl.Beige
		switch ob.Lock {
		case components.LockedByHider:
			color = rl.SkyBlue
		case components.LockedBySeeker:
			color = rl.Orange
		}

		cx, cz := v.toScreen(ob.X, ob.Z)
		rec := rl.Rectangle{
			X:      cx,
			Y:      cz,
			Width:  2 * ob.HalfW * v.scale,
			Height: 2 * ob.HalfD * v.scale,
		}
		origin := rl.Vector2{X: ob.HalfW * v.scale, Y: ob.HalfD * v.scale}
		rl.DrawRectanglePro(rec, origin, ob.Yaw*180/math.Pi, color)

		if ob.Held {
			rl.DrawCircleLines(int32(cx), int32(cz), 1.2*ob.HalfW*v.scale, rl.Yellow)
		}
	}
}

func (v *Viewer) drawAgents() {
	v.agents = v.env.Agents(v.agents[:0])
	for _, ag := range v.agents {
		color := rl.Green
		if ag.Team == components.TeamSeeker {
			color = rl.Red
		}
		if !ag.Active {
			color.A = 70
		}

		x, z := v.toScreen(ag.X, ag.Z)
		drawOrientedTriangle(x, z, ag.Yaw, 0.4*v.scale, color)

		if ag.Holding {
			rl.DrawCircleLines(int32(x), int32(z), 0.6*v.scale, rl.Yellow)
		}
	}
}

func (v *Viewer) drawStatus() {
	status := fmt.Sprintf("episode %d | %s %4.1fs | hiders left %d | tick %d",
		v.env.Episode(), v.env.Phase(), v.env.PhaseTimeRemaining(),
		v.env.RemainingHiders(), v.env.Tick())
	rl.DrawText(status, 10, 2, 18, rl.RayWhite)
}

// drawControls renders the raygui pause/step buttons.
func (v *Viewer) drawControls(step func()) {
	h := float32(v.cfg.Viewer.Height)
	label := "Pause"
	if v.paused {
		label = "Resume"
	}
	if gui.Button(rl.Rectangle{X: 10, Y: h - 38, Width: 90, Height: 28}, label) {
		v.paused = !v.paused
	}
	if v.paused {
		if gui.Button(rl.Rectangle{X: 110, Y: h - 38, Width: 90, Height: 28}, "Step") {
			step()
		}
	}
}

// drawOrientedTriangle draws a triangle pointing in the heading direction.
func drawOrientedTriangle(x, y, heading, radius float32, color rl.Color) {
	cos := float32(math.Cos(float64(heading)))
	sin := float32(math.Sin(float64(heading)))

	frontX := x + cos*radius*1.5
	frontY := y + sin*radius*1.5

	backAngle := heading + math.Pi*0.8
	backLeftX := x + float32(math.Cos(float64(backAngle)))*radius
	backLeftY := y + float32(math.Sin(float64(backAngle)))*radius

	backAngle = heading - math.Pi*0.8
	backRightX := x + float32(math.Cos(float64(backAngle)))*radius
	backRightY := y + float32(math.Sin(float64(backAngle)))*radius

	v1 := rl.Vector2{X: frontX, Y: frontY}
	v2 := rl.Vector2{X: backLeftX, Y: backLeftY}
	v3 := rl.Vector2{X: backRightX, Y: backRightY}

	// DrawTriangle requires counter-clockwise winding (v1, v3, v2)
	rl.DrawTriangle(v1, v3, v2, color)
	rl.DrawTriangleLines(v1, v2, v3, rl.White)
}

package main

import (
	"flag"
	"fmt"
	"image/color"
	"log"
	"os"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/lixenwraith/xpbd/component"
	"github.com/lixenwraith/xpbd/core"
	"github.com/lixenwraith/xpbd/engine"
	"github.com/lixenwraith/xpbd/render"
	"github.com/lixenwraith/xpbd/session"
	"github.com/lixenwraith/xpbd/vmath"
)

const (
	screenW = 1000
	screenH = 600
)

var (
	sceneFlag = flag.String("scene", "marbles", "Built-in scene or path to a TOML scene")
	debugFlag = flag.Bool("debug", false, "Write logs to logs/xpbd.log")
)

var (
	colorBackground = color.RGBA{26, 27, 38, 255}
	colorParticle   = color.RGBA{100, 150, 255, 255}
	colorCrate      = color.RGBA{255, 165, 0, 255}
	colorStatic     = color.RGBA{25, 25, 112, 255} // Midnight blue
)

// Game is the windowed host; ebiten calls Update at a fixed TPS and Draw once per display frame
type Game struct {
	sess *session.Session

	mu         sync.Mutex
	transforms map[core.Entity]vmath.Vec2
	scale      float64
	offset     vmath.Vec2
}

func newGame(sess *session.Session) *Game {
	g := &Game{
		sess:       sess,
		transforms: make(map[core.Entity]vmath.Vec2),
	}
	g.fit()
	sess.Sim.SyncAll(g)
	return g
}

// fit maps the scene view onto the window, preserving aspect
func (g *Game) fit() {
	view := g.sess.Scene.View
	size := view.Size()
	g.scale = min(screenW/size[0], screenH/size[1])
	g.offset = view.Center()
}

// SyncTransform records the latest solved position
func (g *Game) SyncTransform(e core.Entity, pos vmath.Vec2) {
	g.mu.Lock()
	g.transforms[e] = pos
	g.mu.Unlock()
}

// toScreen flips y and centers the view
func (g *Game) toScreen(p vmath.Vec2) (float32, float32) {
	x := (p[0]-g.offset[0])*g.scale + screenW/2
	y := (g.offset[1]-p[1])*g.scale + screenH/2
	return float32(x), float32(y)
}

func (g *Game) Update() error {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape), inpututil.IsKeyJustPressed(ebiten.KeyQ):
		return ebiten.Termination
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		g.sess.Sim.TogglePause()
	case inpututil.IsKeyJustPressed(ebiten.KeyPeriod):
		g.sess.Sim.Step()
	case inpututil.IsKeyJustPressed(ebiten.KeyG):
		g.sess.ToggleGravity()
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		if err := g.sess.Reload(); err != nil {
			log.Printf("reload failed: %v", err)
		} else {
			g.mu.Lock()
			clear(g.transforms)
			g.mu.Unlock()
			g.fit()
			g.sess.Sim.SyncAll(g)
		}
	}

	dt := time.Second / time.Duration(ebiten.TPS())
	g.sess.Frame(dt, g)
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(colorBackground)

	w := g.sess.World
	// World lock before transform lock, matching the order during Advance
	w.RunSafe(func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		w.Colliders.Each(func(e core.Entity, col *component.ColliderComponent) {
			pos, ok := g.transforms[e]
			if !ok {
				return
			}
			g.drawShape(screen, pos, col.Shape, w.Kind(e))
		})
	})

	stats := g.sess.Sim.Stats()
	state := "running"
	if stats.Paused {
		state = "paused"
	}
	ebitenutil.DebugPrint(screen, fmt.Sprintf("%s [%s] %.0f TPS %.0f FPS\n%s\nspace pause  . step  g gravity  r reload  q quit",
		g.sess.Name(), state, ebiten.ActualTPS(), ebiten.ActualFPS(), render.FormatMetrics(g.sess.Registry.Snapshot())))
}

func (g *Game) drawShape(screen *ebiten.Image, pos vmath.Vec2, shape component.Shape, kind engine.BodyKind) {
	x, y := g.toScreen(pos)
	switch s := shape.(type) {
	case component.Circle:
		clr := colorParticle
		if kind == engine.BodyStatic {
			clr = colorStatic
		}
		vector.DrawFilledCircle(screen, x, y, float32(s.Radius*g.scale), clr, true)
	case component.Box:
		clr := colorCrate
		if kind == engine.BodyStatic {
			clr = colorStatic
		}
		half := s.HalfExtents().Mul(g.scale)
		vector.DrawFilledRect(screen, x-float32(half[0]), y-float32(half[1]),
			float32(2*half[0]), float32(2*half[1]), clr, false)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenW, screenH
}

func main() {
	flag.Parse()

	if logFile := core.SetupLogging(*debugFlag); logFile != nil {
		defer logFile.Close()
	}

	sess, err := session.Open(*sceneFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load scene: %v\n", err)
		os.Exit(1)
	}

	ebiten.SetWindowSize(screenW, screenH)
	ebiten.SetWindowTitle("xpbd - " + sess.Name())
	if err := ebiten.RunGame(newGame(sess)); err != nil {
		log.Fatal(err)
	}
}

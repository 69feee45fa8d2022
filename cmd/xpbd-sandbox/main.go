package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/xpbd/audio"
	"github.com/lixenwraith/xpbd/core"
	"github.com/lixenwraith/xpbd/engine"
	"github.com/lixenwraith/xpbd/parameter"
	"github.com/lixenwraith/xpbd/render"
	"github.com/lixenwraith/xpbd/session"
)

var (
	sceneFlag = flag.String("scene", "marbles", "Built-in scene (collision, marbles, stack, crates) or path to a TOML scene")
	debugFlag = flag.Bool("debug", false, "Write logs to logs/xpbd.log")
	muteFlag  = flag.Bool("mute", false, "Disable impact sounds")
	fpsFlag   = flag.Int("fps", 60, "Render frames per second")
)

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

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create screen: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize screen: %v\n", err)
		os.Exit(1)
	}
	core.SetCrashScreen(screen)
	defer func() {
		if r := recover(); r != nil {
			core.HandleCrash(r)
		}
	}()
	defer func() {
		core.SetCrashScreen(nil)
		screen.Fini()
	}()

	audioCfg := audio.LoadConfig()
	if *muteFlag {
		audioCfg.Enabled = false
	}
	player := audio.NewImpactPlayer(audioCfg)
	if err := player.Initialize(); err != nil {
		// Non-fatal, sandbox runs without sound
		log.Printf("Audio initialization failed: %v", err)
	}
	defer player.Cleanup()

	app := &sandbox{
		sess:     sess,
		screen:   screen,
		renderer: render.NewTerminalRenderer(screen, sess.Scene.View),
		clock:    engine.NewFrameClock(engine.NewMonotonicTimeProvider(), parameter.MaxFrameDelta),
		player:   player,
	}
	app.sess.Sim.SyncAll(app.renderer)

	eventChan := make(chan tcell.Event, 64)
	core.Go(func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			eventChan <- ev
		}
	})

	fps := *fpsFlag
	if fps <= 0 {
		fps = 60
	}
	frameTicker := time.NewTicker(time.Second / time.Duration(fps))
	defer frameTicker.Stop()

	for {
		select {
		case ev := <-eventChan:
			if !app.handleEvent(ev) {
				return
			}
		case now := <-frameTicker.C:
			app.frame(now)
		}
	}
}

// sandbox is the interactive terminal host state
type sandbox struct {
	sess     *session.Session
	screen   tcell.Screen
	renderer *render.TerminalRenderer
	clock    *engine.FrameClock
	player   *audio.ImpactPlayer
}

// frame advances the simulation by the measured wall time and redraws
func (a *sandbox) frame(now time.Time) {
	dt := a.clock.Tick()
	if steps := a.sess.Frame(dt, a.renderer); steps > 0 {
		a.player.OnImpact(a.sess.Sim.Stats().ImpactSpeed, now)
	}

	stats := a.sess.Sim.Stats()
	a.renderer.RenderFrame(a.sess.World, render.HUD{
		Scene:   a.sess.Name(),
		Paused:  stats.Paused,
		Dropped: stats.DroppedSteps,
		Metrics: a.sess.Registry.Snapshot(),
	})
}

// handleEvent applies one input event, returning false to quit
func (a *sandbox) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		a.screen.Sync()
		a.renderer.Resize()
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q':
				return false
			case ' ':
				a.sess.Sim.TogglePause()
			case '.':
				a.sess.Sim.Step()
			case 'g':
				a.sess.ToggleGravity()
			case 'r':
				a.reload()
			}
		}
	}
	return true
}

func (a *sandbox) reload() {
	if err := a.sess.Reload(); err != nil {
		log.Printf("reload failed: %v", err)
		return
	}
	a.renderer.Forget()
	a.renderer.SetView(a.sess.Scene.View)
	a.sess.Sim.SyncAll(a.renderer)
	a.clock.Reset()
}

package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/lixenwraith/xpbd/core"
	"github.com/lixenwraith/xpbd/session"
	"github.com/lixenwraith/xpbd/vmath"
)

var (
	sceneFlag  = flag.String("scene", "collision", "Built-in scene or path to a TOML scene")
	framesFlag = flag.Int("frames", 600, "Number of frames to run")
	hzFlag     = flag.Float64("hz", 60, "Simulated frame rate; frame delta is 1/hz")
	debugFlag  = flag.Bool("debug", false, "Write logs to logs/xpbd.log")
	quietFlag  = flag.Bool("quiet", false, "Print metrics only")
)

// positionLog keeps the latest synced position per body
type positionLog map[core.Entity]vmath.Vec2

func (p positionLog) SyncTransform(e core.Entity, pos vmath.Vec2) {
	p[e] = pos
}

func main() {
	flag.Parse()

	if logFile := core.SetupLogging(*debugFlag); logFile != nil {
		defer logFile.Close()
	}

	if *hzFlag <= 0 || *framesFlag < 0 {
		fmt.Fprintln(os.Stderr, "hz must be positive and frames non-negative")
		os.Exit(2)
	}

	sess, err := session.Open(*sceneFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load scene: %v\n", err)
		os.Exit(1)
	}

	frameDelta := time.Duration(float64(time.Second) / *hzFlag)
	positions := make(positionLog)
	sess.Sim.SyncAll(positions)

	steps := 0
	for i := 0; i < *framesFlag; i++ {
		steps += sess.Frame(frameDelta, positions)
	}

	fmt.Printf("scene %s: %d frames of %v, %d steps\n", sess.Name(), *framesFlag, frameDelta, steps)

	if !*quietFlag {
		entities := make([]core.Entity, 0, len(positions))
		sess.World.RunSafe(func() {
			for e := range positions {
				if sess.World.Alive(e) {
					entities = append(entities, e)
				}
			}
		})
		sort.Slice(entities, func(i, j int) bool { return entities[i] < entities[j] })
		for _, e := range entities {
			pos := positions[e]
			fmt.Printf("%-12v %-8v %12.4f %12.4f\n", e, sess.World.Kind(e), pos[0], pos[1])
		}
	}

	for _, m := range sess.Registry.Snapshot() {
		fmt.Printf("%-28s %s\n", m.Key, m.Value)
	}
}

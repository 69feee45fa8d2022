package render

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/xpbd/status"
)

// HUD is the status bar content for one frame
type HUD struct {
	Scene   string
	Paused  bool
	Dropped uint64
	Metrics []status.Metric
}

// hudKeys selects and orders the metrics shown in the status bar; others are omitted
var hudKeys = []string{
	"physics.bodies",
	"physics.steps",
	"physics.pairs",
	"physics.contacts.dynamic",
	"physics.contacts.static",
	"physics.impact_speed",
	"physics.sim_time",
	"scene.live",
	"scene.culled",
}

// FormatMetrics renders the selected metrics as "name=value" separated by spaces
func FormatMetrics(metrics []status.Metric) string {
	values := make(map[string]string, len(metrics))
	for _, m := range metrics {
		values[m.Key] = m.Value
	}

	var sb strings.Builder
	for _, key := range hudKeys {
		v, ok := values[key]
		if !ok {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(strings.TrimPrefix(key, "physics."))
		sb.WriteByte('=')
		sb.WriteString(v)
	}
	return sb.String()
}

// drawStatusBar draws mode, scene name, metrics and the dropped-time warning on row 0
func (r *TerminalRenderer) drawStatusBar(hud HUD, width int, defaultStyle tcell.Style) {
	x := 0
	put := func(text string, style tcell.Style) {
		for _, ch := range text {
			if x >= width {
				return
			}
			r.screen.SetContent(x, 0, ch, nil, style)
			x++
		}
	}

	if hud.Paused {
		put(" PAUSED ", defaultStyle.Foreground(tcell.ColorBlack).Background(RgbPausedBg))
	} else {
		put(" RUNNING ", defaultStyle.Foreground(tcell.ColorBlack).Background(RgbRunningBg))
	}

	if hud.Scene != "" {
		put(" "+hud.Scene+" ", defaultStyle.Foreground(RgbStatusLabel))
	}

	put(FormatMetrics(hud.Metrics), defaultStyle.Foreground(RgbStatusBar))

	if hud.Dropped > 0 {
		put(fmt.Sprintf(" dropped=%d", hud.Dropped), defaultStyle.Foreground(RgbDroppedWarn))
	}
}

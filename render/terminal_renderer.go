package render

import (
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/xpbd/component"
	"github.com/lixenwraith/xpbd/core"
	"github.com/lixenwraith/xpbd/engine"
	"github.com/lixenwraith/xpbd/vmath"
)

// hudRows is the number of rows reserved at the top of the screen for the status bar
const hudRows = 1

const (
	glyphParticle = '●'
	glyphFill     = '█'
	glyphCrate    = '▒'
)

// drawable is a body captured from the world for one frame
type drawable struct {
	pos   vmath.Vec2
	shape component.Shape
	kind  engine.BodyKind
	speed float64
}

// TerminalRenderer draws bodies as terminal cells
// It receives positions through SyncTransform and reads shapes from the world when drawing
type TerminalRenderer struct {
	mu         sync.Mutex
	screen     tcell.Screen
	view       vmath.AABB
	camera     *Camera
	transforms map[core.Entity]vmath.Vec2
	frame      []drawable
}

// NewTerminalRenderer creates a renderer that fits view into the screen below the HUD
func NewTerminalRenderer(screen tcell.Screen, view vmath.AABB) *TerminalRenderer {
	r := &TerminalRenderer{
		screen:     screen,
		view:       view,
		camera:     &Camera{},
		transforms: make(map[core.Entity]vmath.Vec2),
		frame:      make([]drawable, 0, 256),
	}
	r.Resize()
	return r
}

// Resize refits the camera to the current screen size
func (r *TerminalRenderer) Resize() {
	r.mu.Lock()
	defer r.mu.Unlock()
	width, height := r.screen.Size()
	r.camera.Fit(r.view, width, height-hudRows)
}

// SetView changes the visible world region
func (r *TerminalRenderer) SetView(view vmath.AABB) {
	r.mu.Lock()
	r.view = view
	r.mu.Unlock()
	r.Resize()
}

// Camera returns the active camera
func (r *TerminalRenderer) Camera() *Camera {
	return r.camera
}

// SyncTransform records the latest solved position of e
func (r *TerminalRenderer) SyncTransform(e core.Entity, pos vmath.Vec2) {
	r.mu.Lock()
	r.transforms[e] = pos
	r.mu.Unlock()
}

// Transform returns the last synced position of e
func (r *TerminalRenderer) Transform(e core.Entity) (vmath.Vec2, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pos, ok := r.transforms[e]
	return pos, ok
}

// Forget drops all synced transforms, used when the scene is rebuilt
func (r *TerminalRenderer) Forget() {
	r.mu.Lock()
	clear(r.transforms)
	r.mu.Unlock()
}

// capture copies drawable state out of the world
// Bodies never synced fall back to their kinetic position; destroyed bodies are pruned
func (r *TerminalRenderer) capture(w *engine.World) {
	// World lock before r.mu, the order SyncTransform sees during Advance
	w.RunSafe(func() {
		r.mu.Lock()
		defer r.mu.Unlock()

		r.frame = r.frame[:0]
		for e := range r.transforms {
			if !w.Alive(e) {
				delete(r.transforms, e)
			}
		}
		w.Colliders.Each(func(e core.Entity, col *component.ColliderComponent) {
			kin, ok := w.Kinetics.Get(e)
			if !ok {
				return
			}
			pos, synced := r.transforms[e]
			if !synced {
				pos = kin.Pos
			}
			r.frame = append(r.frame, drawable{
				pos:   pos,
				shape: col.Shape,
				kind:  w.Kind(e),
				speed: kin.Vel.Len(),
			})
		})
	})
}

// RenderFrame draws the world and HUD and shows the screen
func (r *TerminalRenderer) RenderFrame(w *engine.World, hud HUD) {
	r.capture(w)

	r.screen.Clear()
	defaultStyle := tcell.StyleDefault.Background(RgbBackground)
	r.screen.Fill(' ', defaultStyle)

	// Statics first so moving bodies draw over them
	for _, d := range r.frame {
		if d.kind == engine.BodyStatic {
			r.drawBody(d, defaultStyle)
		}
	}
	for _, d := range r.frame {
		if d.kind == engine.BodyDynamic {
			r.drawBody(d, defaultStyle)
		}
	}

	width, _ := r.screen.Size()
	r.drawStatusBar(hud, width, defaultStyle)

	r.screen.Show()
}

func (r *TerminalRenderer) drawBody(d drawable, defaultStyle tcell.Style) {
	var style tcell.Style
	switch {
	case d.kind == engine.BodyStatic:
		style = defaultStyle.Foreground(RgbStatic)
	case isBox(d.shape):
		style = defaultStyle.Foreground(RgbDynamicBox)
	default:
		style = defaultStyle.Foreground(ParticleColor(d.speed))
	}

	switch s := d.shape.(type) {
	case component.Circle:
		r.drawCircle(d.pos, s.Radius, style)
	case component.Box:
		glyph := glyphFill
		if d.kind == engine.BodyDynamic {
			glyph = glyphCrate
		}
		r.drawBox(d.pos, s.HalfExtents(), glyph, style)
	}
}

func isBox(s component.Shape) bool {
	_, ok := s.(component.Box)
	return ok
}

// drawCircle fills cells whose centers fall inside the circle
// Circles smaller than a cell still occupy the cell holding their center
func (r *TerminalRenderer) drawCircle(center vmath.Vec2, radius float64, style tcell.Style) {
	bounds := vmath.AABBFromCenter(center, vmath.Splat(radius))
	x0, y0, x1, y1 := r.camera.CellRect(bounds)
	rSq := radius * radius

	drawn := false
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			if vmath.LenSq(r.camera.CellCenter(x, y).Sub(center)) <= rSq {
				r.setCell(x, y, glyphFill, style)
				drawn = true
			}
		}
	}
	if !drawn {
		x, y := r.camera.WorldToCell(center)
		r.setCell(x, y, glyphParticle, style)
	}
}

func (r *TerminalRenderer) drawBox(center, half vmath.Vec2, glyph rune, style tcell.Style) {
	x0, y0, x1, y1 := r.camera.CellRect(vmath.AABBFromCenter(center, half))
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			r.setCell(x, y, glyph, style)
		}
	}
}

// setCell writes a viewport cell, offset below the HUD
func (r *TerminalRenderer) setCell(x, y int, ch rune, style tcell.Style) {
	if !r.camera.Visible(x, y) {
		return
	}
	r.screen.SetContent(x, y+hudRows, ch, nil, style)
}


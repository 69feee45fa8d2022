package render

import (
	"math"

	"github.com/lixenwraith/xpbd/vmath"
)

// cellAspect is the height/width ratio of a terminal cell
const cellAspect = 2.0

// Camera maps world coordinates (y up) onto a terminal viewport (y down)
// A row covers cellAspect times the world height a column covers in width
type Camera struct {
	Center      vmath.Vec2
	UnitsPerCol float64
	Cols, Rows  int
}

// NewCamera fits view into a cols×rows viewport, preserving aspect
func NewCamera(view vmath.AABB, cols, rows int) *Camera {
	c := &Camera{}
	c.Fit(view, cols, rows)
	return c
}

// Fit centers the camera on view and picks the smallest scale that shows all of it
func (c *Camera) Fit(view vmath.AABB, cols, rows int) {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	size := view.Size()
	c.Center = view.Center()
	c.Cols, c.Rows = cols, rows
	c.UnitsPerCol = math.Max(size[0]/float64(cols), size[1]/(float64(rows)*cellAspect))
	if c.UnitsPerCol <= 0 {
		c.UnitsPerCol = 1
	}
}

func (c *Camera) unitsPerRow() float64 {
	return c.UnitsPerCol * cellAspect
}

// WorldToCell returns the cell containing p; may lie outside the viewport
func (c *Camera) WorldToCell(p vmath.Vec2) (int, int) {
	x := (p[0]-c.Center[0])/c.UnitsPerCol + float64(c.Cols)/2
	y := (c.Center[1]-p[1])/c.unitsPerRow() + float64(c.Rows)/2
	return int(math.Floor(x)), int(math.Floor(y))
}

// CellCenter returns the world position at the middle of cell (x, y)
func (c *Camera) CellCenter(x, y int) vmath.Vec2 {
	return vmath.V2(
		c.Center[0]+(float64(x)+0.5-float64(c.Cols)/2)*c.UnitsPerCol,
		c.Center[1]-(float64(y)+0.5-float64(c.Rows)/2)*c.unitsPerRow(),
	)
}

// Visible reports whether cell (x, y) lies in the viewport
func (c *Camera) Visible(x, y int) bool {
	return x >= 0 && x < c.Cols && y >= 0 && y < c.Rows
}

// CellRect returns the clipped cell range covered by a world-space box
func (c *Camera) CellRect(box vmath.AABB) (x0, y0, x1, y1 int) {
	x0, y1 = c.WorldToCell(box.Min)
	x1, y0 = c.WorldToCell(box.Max)
	x0, y0 = max(x0, 0), max(y0, 0)
	x1, y1 = min(x1, c.Cols-1), min(y1, c.Rows-1)
	return
}

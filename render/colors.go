package render

import "github.com/gdamore/tcell/v2"

// Palette
var (
	RgbBackground = tcell.NewRGBColor(26, 27, 38) // Tokyo Night background

	RgbParticle     = tcell.NewRGBColor(100, 150, 255) // Normal Blue
	RgbParticleFast = tcell.NewRGBColor(255, 120, 120) // Bright Red
	RgbDynamicBox   = tcell.NewRGBColor(255, 165, 0)   // Orange
	RgbStatic       = tcell.NewRGBColor(180, 180, 180) // Brighter gray

	RgbStatusBar   = tcell.NewRGBColor(255, 255, 255) // White
	RgbStatusLabel = tcell.NewRGBColor(135, 206, 250) // Light sky blue
	RgbRunningBg   = tcell.NewRGBColor(144, 238, 144) // Light grass green
	RgbPausedBg    = tcell.NewRGBColor(255, 165, 0)   // Orange
	RgbDroppedWarn = tcell.NewRGBColor(255, 0, 0)     // Error Red
)

// speedFastThreshold is the speed (units/s) at which particles are drawn fully "hot"
const speedFastThreshold = 600.0

// lerpColor blends a toward b by t in [0,1]
func lerpColor(a, b tcell.Color, t float64) tcell.Color {
	if t <= 0 {
		return a
	}
	if t >= 1 {
		return b
	}
	ar, ag, ab := a.RGB()
	br, bg, bb := b.RGB()
	mix := func(x, y int32) int32 {
		return x + int32(float64(y-x)*t)
	}
	return tcell.NewRGBColor(mix(ar, br), mix(ag, bg), mix(ab, bb))
}

// ParticleColor tints a particle from blue toward red as it speeds up
func ParticleColor(speed float64) tcell.Color {
	return lerpColor(RgbParticle, RgbParticleFast, speed/speedFastThreshold)
}

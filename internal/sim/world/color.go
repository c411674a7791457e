package world

import "math"

const goldenRatioConjugate = 0.618033988749895

// humanColor is fixed so the player is always recognisable.
var humanColor = [3]uint8{0, 100, 0}

// botPalette walks the hue circle by the golden ratio from a random start,
// skipping quantised duplicates, so neighbouring bots get distinct colours.
func botPalette(n int, startHue float64) [][3]uint8 {
	if n <= 0 {
		n = 1
	}
	out := make([][3]uint8, 0, n)
	seen := map[[3]uint8]bool{}
	hue := startHue
	for len(out) < n {
		hue = math.Mod(hue+goldenRatioConjugate, 1)
		c := hsvToRGB(hue, 0.8, 0.8)
		for tries := 0; seen[c] && tries < 64; tries++ {
			hue = math.Mod(hue+goldenRatioConjugate, 1)
			c = hsvToRGB(hue, 0.8, 0.8)
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

func hsvToRGB(h, s, v float64) [3]uint8 {
	i := int(h * 6)
	f := h*6 - float64(i)
	p := v * (1 - s)
	q := v * (1 - s*f)
	t := v * (1 - s*(1-f))
	var r, g, b float64
	switch i % 6 {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	default:
		r, g, b = v, p, q
	}
	return [3]uint8{uint8(r * 255), uint8(g * 255), uint8(b * 255)}
}

func (w *World) nextBotColor() [3]uint8 {
	c := w.palette[w.colorIndex%len(w.palette)]
	w.colorIndex++
	return c
}

func HumanColor() [3]uint8 { return humanColor }

// Palette returns the bot colour cycle. It is fixed once the world is built or
// loaded, so HTTP handlers may read it.
func (w *World) Palette() [][3]uint8 {
	out := make([][3]uint8, len(w.palette))
	copy(out, w.palette)
	return out
}

package markup

// Measure returns the width and height of one cell.
type Measure func(c Cell) (width, height float64)

// Layout places cells on unconstrained lines: characters advance to the
// right, a break cell starts a new line lineHeight further down. It fills in
// every Box and returns the bounding width and height.
func Layout(cells []Cell, measure Measure, lineHeight float64) (float64, float64) {
	var left, top, maxWidth float64
	for i := range cells {
		if cells[i].Break {
			cells[i].Box = Box{Left: left, Top: top, Height: lineHeight}
			left = 0
			top += lineHeight
			continue
		}
		w, h := measure(cells[i])
		cells[i].Box = Box{Left: left, Top: top, Width: w, Height: h}
		left += w
		if left > maxWidth {
			maxWidth = left
		}
	}
	if len(cells) == 0 {
		return 0, 0
	}
	return maxWidth, top + lineHeight
}

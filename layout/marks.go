package layout

import "sticker-studio/models"

// RegistrationMarks returns the four L-shaped corner marks of a page.
// Each mark sits at a corner inset by the format margin with both legs pointing inward.
func RegistrationMarks(format models.PageFormat, leg float64, stroke float64) [4]models.RegistrationMark {
	m := format.Margin
	left, right := m, format.Width-m
	top, bottom := m, format.Height-m

	mark := func(corner models.Corner, x, y, dx, dy float64) models.RegistrationMark {
		return models.RegistrationMark{
			Corner: corner,
			X:      x,
			Y:      y,
			Legs: [2]models.Segment{
				{X1: x, Y1: y, X2: x + dx, Y2: y},
				{X1: x, Y1: y, X2: x, Y2: y + dy},
			},
			StrokeWidth: stroke,
		}
	}

	return [4]models.RegistrationMark{
		mark(models.CornerTopLeft, left, top, leg, leg),
		mark(models.CornerTopRight, right, top, -leg, leg),
		mark(models.CornerBottomLeft, left, bottom, leg, -leg),
		mark(models.CornerBottomRight, right, bottom, -leg, -leg),
	}
}

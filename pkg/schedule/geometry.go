// Package schedule implements the day/week grid geometry and the state
// machine that drives direct-manipulation editing of calendar events.
package schedule

import (
	"time"

	"fyne.io/fyne/v2"

	"github.com/borgmon/dayplan/pkg/models"
)

// Rect is an axis-aligned pixel rectangle in grid coordinates.
type Rect struct {
	Min, Max fyne.Position
}

// Contains reports whether the position lies inside the rectangle.
func (r Rect) Contains(p fyne.Position) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

// Width returns the horizontal extent of the rectangle.
func (r Rect) Width() float32 {
	return r.Max.X - r.Min.X
}

// Height returns the vertical extent of the rectangle.
func (r Rect) Height() float32 {
	return r.Max.Y - r.Min.Y
}

// Geometry maps pixel positions on the rendered time axis to calendar
// timestamps. Implementations own the snapping policy.
type Geometry interface {
	// TimeAt resolves a pixel position to a timestamp. The second return
	// is false when the position falls outside the time axis.
	TimeAt(pos fyne.Position) (time.Time, bool)
}

// Grid is the concrete geometry of a multi-day calendar grid: one column
// per day, a left gutter for hour labels and a header strip for day names.
type Grid struct {
	FirstDay     time.Time     // midnight of the leftmost day column
	Days         int           // number of day columns
	DayStart     int           // first hour shown on the axis
	DayEnd       int           // hour after the last shown (24 = midnight)
	Snap         time.Duration // pointer snapping granularity
	GutterWidth  float32       // hour-label gutter on the left
	HeaderHeight float32       // day-name strip on top
	Size         fyne.Size     // canvas size, set by the renderer on layout
}

var _ Geometry = (*Grid)(nil)

func (g *Grid) axisDuration() time.Duration {
	return time.Duration(g.DayEnd-g.DayStart) * time.Hour
}

func (g *Grid) axisHeight() float32 {
	return g.Size.Height - g.HeaderHeight
}

// ColumnWidth returns the pixel width of one day column.
func (g *Grid) ColumnWidth() float32 {
	return (g.Size.Width - g.GutterWidth) / float32(g.Days)
}

// dayOrigin returns midnight of the day shown in the given column.
func (g *Grid) dayOrigin(col int) time.Time {
	return g.FirstDay.AddDate(0, 0, col)
}

// TimeAt maps a pixel position to a snapped timestamp, clamped into the
// visible time axis of the day column under the position.
func (g *Grid) TimeAt(pos fyne.Position) (time.Time, bool) {
	if g.Days <= 0 || g.DayEnd <= g.DayStart || g.Size.Width <= g.GutterWidth || g.Size.Height <= g.HeaderHeight {
		return time.Time{}, false
	}

	x := pos.X - g.GutterWidth
	y := pos.Y - g.HeaderHeight
	if x < 0 || x > g.Size.Width-g.GutterWidth || y < 0 || y > g.axisHeight() {
		return time.Time{}, false
	}

	col := int(x / g.ColumnWidth())
	if col >= g.Days {
		col = g.Days - 1
	}

	offset := time.Duration(float64(g.axisDuration()) * float64(y/g.axisHeight()))
	if g.Snap > 0 {
		offset = offset.Round(g.Snap)
	}

	t := g.dayOrigin(col).Add(time.Duration(g.DayStart)*time.Hour + offset)
	return t, true
}

// PosAt is the inverse mapping used for drawing. The second return is
// false when the timestamp's day is not visible on the grid.
func (g *Grid) PosAt(t time.Time) (fyne.Position, bool) {
	if g.Days <= 0 || g.DayEnd <= g.DayStart || g.Size.Height <= g.HeaderHeight {
		return fyne.Position{}, false
	}

	col, ok := g.column(t)
	if !ok {
		return fyne.Position{}, false
	}

	offset := t.Sub(g.dayOrigin(col).Add(time.Duration(g.DayStart) * time.Hour))
	if offset < 0 {
		offset = 0
	}
	if max := g.axisDuration(); offset > max {
		offset = max
	}

	x := g.GutterWidth + float32(col)*g.ColumnWidth()
	y := g.HeaderHeight + float32(float64(g.axisHeight())*(float64(offset)/float64(g.axisDuration())))
	return fyne.NewPos(x, y), true
}

// EventRect returns the pixel rectangle of an event block. Events are laid
// out in the column of their start day; the second return is false when
// that day is off-grid.
func (g *Grid) EventRect(event models.Event) (Rect, bool) {
	top, ok := g.PosAt(event.Start)
	if !ok {
		return Rect{}, false
	}

	// Ends on a later day: draw through the bottom of the axis.
	bottomY := g.Size.Height
	startCol, _ := g.column(event.Start)
	if endCol, sameGrid := g.column(event.End); sameGrid && endCol == startCol {
		if bottom, ok := g.PosAt(event.End); ok {
			bottomY = bottom.Y
		}
	}

	return Rect{
		Min: top,
		Max: fyne.NewPos(top.X+g.ColumnWidth(), bottomY),
	}, true
}

func (g *Grid) column(t time.Time) (int, bool) {
	first := g.FirstDay
	days := int(midnightOf(t).Sub(midnightOf(first)).Hours() / 24)
	if days < 0 || days >= g.Days {
		return 0, false
	}
	return days, true
}

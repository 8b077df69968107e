package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/typer/internal/judge"
	"github.com/verte-zerg/typer/internal/session"
)

const (
	hitColumn   = 4
	msPerColumn = 40 * time.Millisecond
	laneFill    = "·"
	hitMarker   = "│"
)

type laneCell struct {
	s     string
	width int
}

// laneColumn places an object relative to the hit marker, or -1 when it is
// off the lane.
func laneColumn(obj *session.Object, now time.Duration, width int) int {
	col := hitColumn + int((obj.Time-now)/msPerColumn)
	if col < 0 || col >= width {
		return -1
	}
	return col
}

func styleFor(obj *session.Object, next bool) lipgloss.Style {
	switch obj.Judge.State() {
	case judge.StateHit:
		return hitStyle
	case judge.StateMiss:
		return missStyle
	}
	if obj.Judge.Echoing() {
		return echoStyle
	}
	if next {
		return nextStyle
	}
	return pendingStyle
}

func (m *Model) renderLane(width int, now time.Duration) string {
	cells := make([]laneCell, width)
	for i := range cells {
		cells[i] = laneCell{s: markerStyle.Render(laneFill), width: 1}
	}
	if hitColumn < width {
		cells[hitColumn] = laneCell{s: markerStyle.Render(hitMarker), width: 1}
	}

	objs := m.session.Objects()
	nextIdx := -1
	for i, obj := range objs {
		if !obj.Judge.Resolved() && !obj.Judge.Expired() {
			nextIdx = i
			break
		}
	}
	// Earlier objects are drawn last so they stay visible on overlap.
	for i := len(objs) - 1; i >= 0; i-- {
		obj := objs[i]
		if obj.Judge.Expired() {
			continue
		}
		col := laneColumn(obj, now, width)
		if col < 0 {
			continue
		}
		label := obj.Judge.Target().Upper()
		cells[col] = laneCell{
			s:     styleFor(obj, i == nextIdx).Render(label),
			width: runewidth.StringWidth(label),
		}
	}

	var b strings.Builder
	for i := 0; i < len(cells); i++ {
		b.WriteString(cells[i].s)
		// Wide glyphs cover the following cell.
		i += max(cells[i].width-1, 0)
	}
	return b.String()
}

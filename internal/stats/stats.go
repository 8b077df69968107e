// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/verte-zerg/typer/internal/model"
)

const sparkChars = " .:-=+*#%@"

var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// SessionMetrics computes hits per minute and accuracy for a session.
func SessionMetrics(hits, misses int, durationMs int64) (hpm, accuracy float64) {
	den := float64(hits + misses)
	if den > 0 {
		accuracy = float64(hits) / den
	}
	if durationMs <= 0 {
		return 0, accuracy
	}
	minutes := float64(durationMs) / 60000.0
	hpm = float64(hits) / minutes
	return hpm, accuracy
}

// MeanOffsetMs returns the average absolute timing error of hits.
func MeanOffsetMs(agg model.CharAggregate) float64 {
	if agg.OffsetCount <= 0 {
		return 0
	}
	return float64(agg.OffsetSumMs) / float64(agg.OffsetCount)
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		den := float64(i + 1)
		if i >= window {
			sum -= values[i-window]
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = max(0, min(idx, len(sparkChars)-1))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderSummary prints a summary with an accuracy trend for sessions.
func RenderSummary(w io.Writer, sessions []model.SessionAggregate, window int) error {
	if len(sessions) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	var totalHPM, totalAcc float64
	bestAcc := 0.0
	hits, misses := 0, 0
	accs := make([]float64, len(sessions))
	for i, s := range sessions {
		hpm, acc := SessionMetrics(s.Hits, s.Misses, s.DurationMs)
		totalHPM += hpm
		totalAcc += acc
		bestAcc = math.Max(bestAcc, acc)
		hits += s.Hits
		misses += s.Misses
		accs[i] = acc * 100
	}
	count := float64(len(sessions))
	lines := []string{
		"Summary",
		fmt.Sprintf("Sessions: %d", len(sessions)),
		fmt.Sprintf("Hits: %d  Misses: %d", hits, misses),
		fmt.Sprintf("Avg Hits/min: %.2f", totalHPM/count),
		fmt.Sprintf("Avg Accuracy: %.2f%%", (totalAcc/count)*100),
		fmt.Sprintf("Best Accuracy: %.2f%%", bestAcc*100),
		fmt.Sprintf("Accuracy trend: [%s]", Sparkline(MovingAverage(accs, window))),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderCharTable prints per-character aggregates, weakest first. The
// All-time column is read from allTime and shows "-" for missing characters.
func RenderCharTable(w io.Writer, aggs []model.CharAggregate, allTime map[string]model.CharAggregate) error {
	if len(aggs) == 0 {
		_, err := fmt.Fprintln(w, "No character stats found.")
		return err
	}
	rows := make([]model.CharAggregate, len(aggs))
	copy(rows, aggs)
	sort.SliceStable(rows, func(i, j int) bool {
		ai, aj := accuracy(rows[i]), accuracy(rows[j])
		if ai == aj {
			return rows[i].Char < rows[j].Char
		}
		return ai < aj
	})

	if _, err := fmt.Fprintln(w, "Per-Character (Recent)"); err != nil {
		return err
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderColumn(false).
		Headers("Char", "Accuracy", "All-time", "Avg Offset (ms)", "Hits", "Misses").
		StyleFunc(func(_, col int) lipgloss.Style {
			if col == 0 {
				return cellStyle
			}
			return cellStyle.Align(lipgloss.Right)
		})
	for _, agg := range rows {
		overall := "-"
		if all, ok := allTime[agg.Char]; ok {
			overall = fmt.Sprintf("%.2f%%", accuracy(all)*100)
		}
		t.Row(
			strings.ToUpper(agg.Char),
			fmt.Sprintf("%.2f%%", accuracy(agg)*100),
			overall,
			fmt.Sprintf("%.1f", MeanOffsetMs(agg)),
			strconv.Itoa(agg.Hits),
			strconv.Itoa(agg.Misses),
		)
	}
	if _, err := fmt.Fprintln(w, t.Render()); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

package stats

import (
	"context"
	"io"

	"github.com/verte-zerg/typer/internal/model"
)

// Source is the part of the store a report reads.
type Source interface {
	ListSessions(ctx context.Context, cfg model.StatsConfig) ([]model.SessionAggregate, error)
	ListCharAggregatesForSessions(ctx context.Context, sessionIDs []int64) ([]model.CharAggregate, error)
}

// Report holds everything `typer stats` prints.
type Report struct {
	Sessions []model.SessionAggregate
	// Chars covers the last CurveWindow sessions.
	Chars []model.CharAggregate
	// AllTime is keyed by character and covers every listed session.
	AllTime map[string]model.CharAggregate

	curveWindow int
}

// BuildReport loads sessions and per-character aggregates for cfg.
func BuildReport(ctx context.Context, src Source, cfg model.StatsConfig) (Report, error) {
	sessions, err := src.ListSessions(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	if cfg.Last > 0 && len(sessions) > cfg.Last {
		sessions = sessions[len(sessions)-cfg.Last:]
	}
	report := Report{Sessions: sessions, curveWindow: cfg.CurveWindow}
	if len(sessions) == 0 {
		return report, nil
	}

	recent := sessions
	if cfg.CurveWindow > 0 && len(sessions) > cfg.CurveWindow {
		recent = sessions[len(sessions)-cfg.CurveWindow:]
	}
	report.Chars, err = src.ListCharAggregatesForSessions(ctx, sessionIDs(recent))
	if err != nil {
		return Report{}, err
	}
	all := report.Chars
	if len(recent) != len(sessions) {
		all, err = src.ListCharAggregatesForSessions(ctx, sessionIDs(sessions))
		if err != nil {
			return Report{}, err
		}
	}
	report.AllTime = make(map[string]model.CharAggregate, len(all))
	for _, agg := range all {
		report.AllTime[agg.Char] = agg
	}
	if cfg.Top > 0 {
		report.Chars = TopCharsByFrequency(report.Chars, cfg.Top)
	}
	return report, nil
}

// Render writes the summary followed by the per-character table.
func (r Report) Render(w io.Writer) error {
	if err := RenderSummary(w, r.Sessions, r.curveWindow); err != nil {
		return err
	}
	if len(r.Sessions) == 0 {
		return nil
	}
	return RenderCharTable(w, r.Chars, r.AllTime)
}

func sessionIDs(sessions []model.SessionAggregate) []int64 {
	ids := make([]int64, len(sessions))
	for i, s := range sessions {
		ids[i] = s.SessionID
	}
	return ids
}

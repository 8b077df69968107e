package judge

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/typer/internal/layout"
)

type fixedGen layout.Character

func (g fixedGen) NextAlphabetSymbol() layout.Character { return layout.Character(g) }

type recorder struct {
	assigned []layout.Character
	echoes   int
	releases int
	results  []Result
}

func (r *recorder) TargetAssigned(c layout.Character) { r.assigned = append(r.assigned, c) }
func (r *recorder) EchoTriggered()                    { r.echoes++ }
func (r *recorder) EchoReleased()                     { r.releases++ }
func (r *recorder) Resolved(res Result)               { r.results = append(r.results, res) }

func newJudge(t *testing.T, c layout.Character) (*Judge, *recorder) {
	t.Helper()
	rec := &recorder{}
	j := New(fixedGen(c), WithListener(rec))
	require.Equal(t, []layout.Character{c}, rec.assigned)
	return j, rec
}

func TestCorrectKeyInsideWindowIsPerfect(t *testing.T) {
	j, rec := newJudge(t, 'а')
	consumed, echo := j.KeyDown(layout.KeyF, 0)
	assert.True(t, consumed)
	assert.True(t, echo)
	assert.Equal(t, ResultPerfect, j.Result())
	assert.Equal(t, StateHit, j.State())
	assert.Equal(t, []Result{ResultPerfect}, rec.results)
	assert.True(t, j.Result().Hit())
}

func TestCorrectKeyOutsideWindowIsIgnored(t *testing.T) {
	j, rec := newJudge(t, 'а')
	consumed, echo := j.KeyDown(layout.KeyF, 200*time.Millisecond)
	assert.True(t, consumed)
	assert.True(t, echo)
	assert.Equal(t, StatePending, j.State())
	assert.Empty(t, rec.results)
	assert.Equal(t, 1, rec.echoes)
}

func TestWindowBoundaryExcludedOnKeyDown(t *testing.T) {
	for _, offset := range []time.Duration{150 * time.Millisecond, -150 * time.Millisecond} {
		j, _ := newJudge(t, 'а')
		j.KeyDown(layout.KeyF, offset)
		assert.Falsef(t, j.Resolved(), "offset %v should not resolve", offset)
	}
	j, _ := newJudge(t, 'а')
	j.KeyDown(layout.KeyF, -149*time.Millisecond)
	assert.Equal(t, ResultPerfect, j.Result())
}

func TestTickTimeout(t *testing.T) {
	j, rec := newJudge(t, 'к')
	j.Tick(149999 * time.Microsecond)
	assert.Equal(t, StatePending, j.State())

	j.Tick(150 * time.Millisecond)
	assert.Equal(t, ResultMiss, j.Result())
	assert.Equal(t, StateMiss, j.State())
	assert.Equal(t, []Result{ResultMiss}, rec.results)
}

func TestTickBeforeHitTimeDoesNothing(t *testing.T) {
	j, _ := newJudge(t, 'к')
	j.Tick(-10 * time.Second)
	j.Tick(0)
	assert.False(t, j.Resolved())
}

func TestWrongKeyInsideWindowMissesImmediately(t *testing.T) {
	j, rec := newJudge(t, 'а')
	consumed, echo := j.KeyDown(layout.KeyJ, 0)
	assert.False(t, consumed)
	assert.False(t, echo)
	assert.Equal(t, ResultMiss, j.Result())
	assert.Zero(t, rec.echoes)
}

func TestWrongKeyOutsideWindowIsIgnored(t *testing.T) {
	j, _ := newJudge(t, 'а')
	consumed, _ := j.KeyDown(layout.KeyJ, -time.Second)
	assert.False(t, consumed)
	assert.False(t, j.Resolved())
}

func TestResolvedIsImmutable(t *testing.T) {
	j, rec := newJudge(t, 'ж')
	j.KeyDown(layout.KeyQ, 140*time.Millisecond)
	require.Equal(t, ResultMiss, j.Result())

	consumed, echo := j.KeyDown(layout.KeySemicolon, 0)
	assert.False(t, consumed)
	assert.False(t, echo)
	j.KeyUp(layout.KeySemicolon)
	j.Tick(time.Second)

	assert.Equal(t, ResultMiss, j.Result())
	assert.Equal(t, []Result{ResultMiss}, rec.results)
	assert.Zero(t, rec.echoes)
}

func TestLastKeyDownDecides(t *testing.T) {
	j, _ := newJudge(t, 'а')
	j.KeyDown(layout.KeyJ, -400*time.Millisecond)
	require.False(t, j.Resolved())
	j.KeyDown(layout.KeyF, -100*time.Millisecond)
	assert.Equal(t, ResultPerfect, j.Result())
}

func TestEarlyCorrectPressStillMissesOnTimeout(t *testing.T) {
	j, rec := newJudge(t, 'ю')
	consumed, echo := j.KeyDown(layout.KeyPeriod, -300*time.Millisecond)
	assert.True(t, consumed)
	assert.True(t, echo)
	assert.True(t, j.Echoing())

	j.Tick(150 * time.Millisecond)
	assert.Equal(t, ResultMiss, j.Result())
	assert.Equal(t, 1, rec.echoes)
}

func TestKeyUpReleasesEcho(t *testing.T) {
	j, rec := newJudge(t, 'а')
	j.KeyDown(layout.KeyF, -time.Second)
	j.KeyUp(layout.KeyJ)
	assert.Zero(t, rec.releases)
	j.KeyUp(layout.KeyF)
	assert.Equal(t, 1, rec.releases)
	assert.False(t, j.Echoing())
	j.KeyUp(layout.KeyF)
	assert.Equal(t, 1, rec.releases)
}

func TestKeyUpKeepsEchoAfterHit(t *testing.T) {
	j, rec := newJudge(t, 'а')
	j.KeyDown(layout.KeyF, 0)
	require.Equal(t, StateHit, j.State())
	j.KeyUp(layout.KeyF)
	assert.Zero(t, rec.releases)
}

func TestKeyUpReleasesEchoAfterMiss(t *testing.T) {
	j, rec := newJudge(t, 'а')
	j.KeyDown(layout.KeyF, -time.Second)
	j.Tick(time.Second)
	require.Equal(t, StateMiss, j.State())
	j.KeyUp(layout.KeyF)
	assert.Equal(t, 1, rec.releases)
}

func TestExpireStopsJudging(t *testing.T) {
	j, rec := newJudge(t, 'а')
	j.Expire()
	consumed, _ := j.KeyDown(layout.KeyF, 0)
	j.Tick(time.Second)
	assert.False(t, consumed)
	assert.False(t, j.Resolved())
	assert.True(t, j.Expired())
	assert.Empty(t, rec.results)
}

func TestCustomWindow(t *testing.T) {
	j := New(fixedGen('а'), WithWindow(50*time.Millisecond))
	j.KeyDown(layout.KeyF, 60*time.Millisecond)
	assert.False(t, j.Resolved())
	j.Tick(50 * time.Millisecond)
	assert.Equal(t, ResultMiss, j.Result())
}

func TestNewPanicsOutsideAlphabet(t *testing.T) {
	assert.Panics(t, func() { New(fixedGen('z')) })
}

func TestInputAfterResolutionIsLogged(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	j := New(fixedGen('а'), WithLogger(logger))
	j.KeyDown(layout.KeyF, 0)
	j.KeyDown(layout.KeyF, 0)
	assert.Contains(t, buf.String(), "key down after resolution ignored")
}

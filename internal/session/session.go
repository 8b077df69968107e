// Package session plays a schedule of key objects against one clock.
package session

import (
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/verte-zerg/typer/internal/judge"
	"github.com/verte-zerg/typer/internal/layout"
	"github.com/verte-zerg/typer/internal/model"
)

const (
	// DefaultPreempt is how long before its hit time an object accepts input.
	DefaultPreempt = 1200 * time.Millisecond
	// DefaultLinger keeps a resolved object around for display.
	DefaultLinger = 500 * time.Millisecond
)

// Object is one scheduled key with its judge.
type Object struct {
	Time  time.Duration
	Judge *judge.Judge

	// Offset at which the judgement was applied.
	ResolvedAt time.Duration
}

// Judgement is the most recent resolution.
type Judgement struct {
	Target layout.Character
	Key    layout.RawKey
	Result judge.Result
	Offset time.Duration
}

type charTally struct {
	hits        int
	misses      int
	offsetSumMs int64
	offsetCount int64
}

// Session owns the objects of one drill.
type Session struct {
	objects []*Object
	window  time.Duration
	preempt time.Duration
	linger  time.Duration
	logger  *slog.Logger

	now      time.Duration
	tallies  map[layout.Character]*charTally
	order    []layout.Character
	last     *Judgement
	resolved int
}

// Option configures a Session.
type Option func(*Session)

// WithWindow sets the timing window passed to each judge.
func WithWindow(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.window = d
		}
	}
}

// WithPreempt sets how early objects start receiving input.
func WithPreempt(d time.Duration) Option {
	return func(s *Session) {
		if d >= 0 {
			s.preempt = d
		}
	}
}

// WithLinger sets how long resolved objects stay before expiry.
func WithLinger(d time.Duration) Option {
	return func(s *Session) {
		if d >= 0 {
			s.linger = d
		}
	}
}

// WithLogger sets the logger handed to each judge.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Schedule spaces count hit times interval apart after leadIn.
func Schedule(count int, leadIn, interval time.Duration) []time.Duration {
	if count <= 0 {
		return nil
	}
	times := make([]time.Duration, count)
	for i := range times {
		times[i] = leadIn + time.Duration(i)*interval
	}
	return times
}

// New creates one judge per hit time, drawing targets from gen.
func New(gen judge.Generator, times []time.Duration, opts ...Option) *Session {
	s := &Session{
		window:  judge.DefaultWindow,
		preempt: DefaultPreempt,
		linger:  DefaultLinger,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		tallies: map[layout.Character]*charTally{},
	}
	for _, opt := range opts {
		opt(s)
	}
	sorted := append([]time.Duration(nil), times...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	s.objects = make([]*Object, 0, len(sorted))
	for _, t := range sorted {
		obj := &Object{Time: t}
		obj.Judge = judge.New(gen,
			judge.WithWindow(s.window),
			judge.WithLogger(s.logger),
			judge.WithListener(judge.ListenerFuncs{
				OnResolved: func(r judge.Result) { s.record(obj, r) },
			}),
		)
		s.objects = append(s.objects, obj)
	}
	return s
}

// Objects returns the scheduled objects in hit-time order.
func (s *Session) Objects() []*Object {
	return s.objects
}

// Now returns the clock value of the latest event.
func (s *Session) Now() time.Duration {
	return s.now
}

// Last returns the latest judgement, if any.
func (s *Session) Last() (Judgement, bool) {
	if s.last == nil {
		return Judgement{}, false
	}
	return *s.last, true
}

// Done reports whether every object has been judged.
func (s *Session) Done() bool {
	return s.resolved == len(s.objects)
}

// Settled reports whether every object has been judged and expired, so
// nothing is left to draw.
func (s *Session) Settled() bool {
	for _, obj := range s.objects {
		if !obj.Judge.Expired() {
			return false
		}
	}
	return s.Done()
}

// ActiveFrom returns the earliest clock value at which any object accepts
// input.
func (s *Session) ActiveFrom() time.Duration {
	if len(s.objects) == 0 {
		return 0
	}
	return max(s.objects[0].Time-s.preempt, 0)
}

// Remaining returns the number of unresolved objects.
func (s *Session) Remaining() int {
	return len(s.objects) - s.resolved
}

// KeyDown offers the key to alive objects in hit-time order until one
// consumes it.
func (s *Session) KeyDown(k layout.RawKey, now time.Duration) bool {
	s.now = now
	for _, obj := range s.objects {
		if !s.alive(obj, now) {
			if obj.Time-s.preempt > now {
				break
			}
			continue
		}
		s.current(obj, now)
		if consumed, _ := obj.Judge.KeyDown(k, now-obj.Time); consumed {
			return true
		}
	}
	return false
}

// KeyUp forwards a key release to every alive object.
func (s *Session) KeyUp(k layout.RawKey) {
	for _, obj := range s.objects {
		if obj.Judge.Expired() {
			continue
		}
		obj.Judge.KeyUp(k)
	}
}

// Tick runs timeout checks. A resolved object expires once now passes its
// time plus window plus linger.
func (s *Session) Tick(now time.Duration) {
	s.now = now
	for _, obj := range s.objects {
		if obj.Judge.Expired() {
			continue
		}
		if !obj.Judge.Resolved() {
			s.current(obj, now)
			obj.Judge.Tick(now - obj.Time)
		}
		if obj.Judge.Resolved() && now >= obj.Time+obj.Judge.Window()+s.linger {
			obj.Judge.Expire()
		}
	}
}

func (s *Session) alive(obj *Object, now time.Duration) bool {
	if obj.Judge.Expired() || obj.Judge.Resolved() {
		return false
	}
	return now >= obj.Time-s.preempt
}

// current stamps the offset used if the next judge call resolves obj.
func (s *Session) current(obj *Object, now time.Duration) {
	obj.ResolvedAt = now - obj.Time
}

func (s *Session) record(obj *Object, r judge.Result) {
	s.resolved++
	target := obj.Judge.Target()
	tally, ok := s.tallies[target]
	if !ok {
		tally = &charTally{}
		s.tallies[target] = tally
		s.order = append(s.order, target)
	}
	if r.Hit() {
		tally.hits++
		off := obj.ResolvedAt
		if off < 0 {
			off = -off
		}
		tally.offsetSumMs += off.Milliseconds()
		tally.offsetCount++
	} else {
		tally.misses++
	}
	s.last = &Judgement{Target: target, Key: obj.Judge.ExpectedKey(), Result: r, Offset: obj.ResolvedAt}
}

// Counts returns total hits and misses so far.
func (s *Session) Counts() (hits, misses int) {
	for _, t := range s.tallies {
		hits += t.hits
		misses += t.misses
	}
	return hits, misses
}

// CharStats converts the per-target tallies for persistence.
func (s *Session) CharStats() []model.CharStats {
	out := make([]model.CharStats, 0, len(s.order))
	for _, c := range s.order {
		t := s.tallies[c]
		out = append(out, model.CharStats{
			Char:        c.String(),
			Hits:        t.hits,
			Misses:      t.misses,
			OffsetSumMs: t.offsetSumMs,
			OffsetCount: t.offsetCount,
		})
	}
	return out
}

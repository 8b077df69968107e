// Package judge decides the outcome of a single timed key object.
package judge

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/verte-zerg/typer/internal/layout"
)

// DefaultWindow is the tolerance on either side of the scheduled hit time.
const DefaultWindow = 150 * time.Millisecond

// Result is the judgement assigned to an object.
type Result int

const (
	ResultNone Result = iota
	ResultMiss
	ResultPerfect
)

func (r Result) String() string {
	switch r {
	case ResultNone:
		return "none"
	case ResultMiss:
		return "miss"
	case ResultPerfect:
		return "perfect"
	default:
		return fmt.Sprintf("result(%d)", int(r))
	}
}

// Hit reports whether the result counts as a hit for scoring.
func (r Result) Hit() bool {
	return r == ResultPerfect
}

// State is the lifecycle position of an object.
type State int

const (
	StatePending State = iota
	StateHit
	StateMiss
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateHit:
		return "hit"
	case StateMiss:
		return "miss"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Generator picks the target character for a new object.
type Generator interface {
	NextAlphabetSymbol() layout.Character
}

// Judge owns one object's target and judgement.
type Judge struct {
	target   layout.Character
	expected layout.RawKey
	window   time.Duration

	result            Result
	lastKeyWasCorrect bool
	echoing           bool
	expired           bool

	listener Listener
	logger   *slog.Logger
}

// Option configures a Judge.
type Option func(*Judge)

// WithWindow overrides DefaultWindow.
func WithWindow(d time.Duration) Option {
	return func(j *Judge) {
		if d > 0 {
			j.window = d
		}
	}
}

// WithListener receives the judge's outbound events.
func WithListener(l Listener) Option {
	return func(j *Judge) {
		if l != nil {
			j.listener = l
		}
	}
}

// WithLogger sets the logger used for contract violations.
func WithLogger(logger *slog.Logger) Option {
	return func(j *Judge) {
		if logger != nil {
			j.logger = logger
		}
	}
}

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// New draws one target from gen. It panics if gen yields a symbol outside the
// alphabet.
func New(gen Generator, opts ...Option) *Judge {
	j := &Judge{
		window:   DefaultWindow,
		listener: ListenerFuncs{},
		logger:   discardLogger,
	}
	for _, opt := range opts {
		opt(j)
	}
	target := gen.NextAlphabetSymbol()
	expected, ok := layout.Lookup(target)
	if !ok {
		panic(fmt.Errorf("judge: generator produced %q: %w", rune(target), layout.ErrUnknownCharacter))
	}
	j.target = target
	j.expected = expected
	j.listener.TargetAssigned(target)
	return j
}

// Target returns the character the player must press.
func (j *Judge) Target() layout.Character { return j.target }

// ExpectedKey returns the physical key for the target.
func (j *Judge) ExpectedKey() layout.RawKey { return j.expected }

// Window returns the timing tolerance.
func (j *Judge) Window() time.Duration { return j.window }

// Result returns ResultNone until the object is judged.
func (j *Judge) Result() Result { return j.result }

// Resolved reports whether a judgement has been applied.
func (j *Judge) Resolved() bool { return j.result != ResultNone }

// Echoing reports whether a correct key is currently held down.
func (j *Judge) Echoing() bool { return j.echoing }

// Expired reports whether the object has been discarded.
func (j *Judge) Expired() bool { return j.expired }

// State maps the result onto the lifecycle.
func (j *Judge) State() State {
	switch j.result {
	case ResultPerfect:
		return StateHit
	case ResultMiss:
		return StateMiss
	default:
		return StatePending
	}
}

// KeyDown handles a key press at the given offset from the hit time. Consumed
// is true only for the correct key, so a wrong key stays available to other
// objects.
func (j *Judge) KeyDown(k layout.RawKey, offset time.Duration) (consumed, echo bool) {
	if j.Resolved() || j.expired {
		j.logger.Debug("key down after resolution ignored",
			"target", j.target.String(), "key", k.String(), "offset", offset, "result", j.result.String())
		return false, false
	}
	matched := layout.IsMatch(k, j.target)
	j.lastKeyWasCorrect = matched
	if matched {
		j.echoing = true
		j.listener.EchoTriggered()
	}
	j.checkForResult(true, offset)
	return matched, matched
}

// KeyUp ends the echo for the correct key unless the object was hit.
func (j *Judge) KeyUp(k layout.RawKey) {
	if j.expired || !j.echoing || j.State() == StateHit {
		return
	}
	if !layout.IsMatch(k, j.target) {
		return
	}
	j.echoing = false
	j.listener.EchoReleased()
}

// Tick runs the timeout check at the given offset.
func (j *Judge) Tick(offset time.Duration) {
	if j.Resolved() || j.expired {
		return
	}
	j.checkForResult(false, offset)
}

// Expire discards the object. An unresolved object stays unresolved.
func (j *Judge) Expire() {
	j.expired = true
	j.echoing = false
}

func (j *Judge) checkForResult(userTriggered bool, offset time.Duration) {
	if userTriggered {
		if absDuration(offset) >= j.window {
			return
		}
		if !j.lastKeyWasCorrect {
			j.apply(ResultMiss)
		} else {
			j.apply(ResultPerfect)
		}
		return
	}
	if offset >= j.window {
		j.apply(ResultMiss)
	}
}

func (j *Judge) apply(r Result) {
	if j.Resolved() {
		j.logger.Debug("duplicate resolution ignored",
			"target", j.target.String(), "result", j.result.String(), "attempted", r.String())
		return
	}
	j.result = r
	j.listener.Resolved(r)
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

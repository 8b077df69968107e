package judge

import "github.com/verte-zerg/typer/internal/layout"

// Listener receives events for display and scoring.
type Listener interface {
	TargetAssigned(c layout.Character)
	EchoTriggered()
	EchoReleased()
	Resolved(r Result)
}

// ListenerFuncs implements Listener with optional callbacks.
type ListenerFuncs struct {
	OnTargetAssigned func(c layout.Character)
	OnEchoTriggered  func()
	OnEchoReleased   func()
	OnResolved       func(r Result)
}

// TargetAssigned implements Listener.
func (f ListenerFuncs) TargetAssigned(c layout.Character) {
	if f.OnTargetAssigned != nil {
		f.OnTargetAssigned(c)
	}
}

// EchoTriggered implements Listener.
func (f ListenerFuncs) EchoTriggered() {
	if f.OnEchoTriggered != nil {
		f.OnEchoTriggered()
	}
}

// EchoReleased implements Listener.
func (f ListenerFuncs) EchoReleased() {
	if f.OnEchoReleased != nil {
		f.OnEchoReleased()
	}
}

// Resolved implements Listener.
func (f ListenerFuncs) Resolved(r Result) {
	if f.OnResolved != nil {
		f.OnResolved(r)
	}
}

package dynamic

// Target is an object that announces its destruction.
type Target interface {
	// OnDispose registers fn to run once when the object is destroyed. If the
	// object is already destroyed fn runs immediately.
	OnDispose(fn func())
}

// Lifetime is the on-dispose callback list of a bindable object. It is confined
// to the UI goroutine, like the objects it belongs to.
type Lifetime struct {
	callbacks []func()
	disposed  bool
}

// OnDispose implements Target.
func (l *Lifetime) OnDispose(fn func()) {
	if l.disposed {
		fn()
		return
	}
	l.callbacks = append(l.callbacks, fn)
}

// Dispose runs the registered callbacks, most recent first. Later calls do
// nothing.
func (l *Lifetime) Dispose() {
	if l.disposed {
		return
	}
	l.disposed = true

	callbacks := l.callbacks
	l.callbacks = nil
	for i := len(callbacks) - 1; i >= 0; i-- {
		callbacks[i]()
	}
}

// Disposed reports whether Dispose has run.
func (l *Lifetime) Disposed() bool {
	return l.disposed
}

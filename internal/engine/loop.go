package engine

// Loop tracks the render loop's lifecycle. Each Start hands out a new
// generation token; ticks carrying an older token belong to a loop that
// has been stopped or replaced and must be dropped.
type Loop struct {
	gen     uint64
	running bool
}

// Start begins a new generation and returns its token.
func (l *Loop) Start() uint64 {
	l.gen++
	l.running = true
	return l.gen
}

// Accept reports whether a tick scheduled with token should run.
func (l *Loop) Accept(token uint64) bool {
	return l.running && token == l.gen
}

// Stop ends the current generation.
func (l *Loop) Stop() {
	if l.running {
		l.running = false
		l.gen++
	}
}

// Running reports whether a generation is active.
func (l *Loop) Running() bool {
	return l.running
}

// Token returns the active generation token, or 0 when stopped.
func (l *Loop) Token() uint64 {
	if !l.running {
		return 0
	}
	return l.gen
}

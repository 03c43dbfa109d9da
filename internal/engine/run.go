package engine

import (
	"context"
	"time"

	"github.com/litescript/ls-globe/internal/geo"
	"github.com/litescript/ls-globe/internal/points"
)

// InputKind identifies a queued host input.
type InputKind int

const (
	InputMove InputKind = iota
	InputDown
	InputUp
	InputSecondary
	InputWheel
	InputLeave
	InputRotate
	InputResize
	InputData
)

// Input is one host event for the headless runner.
type Input struct {
	Kind   InputKind
	Pos    geo.Vec2
	Dir    int     // wheel direction
	DAz    float64 // rotate
	DEl    float64
	Width  float64 // resize
	Height float64
	Points []points.GeoPoint // data
}

// Apply queues an input on the engine. Pointer input is only recorded;
// it takes effect in the next Tick.
func (e *Engine) Apply(in Input, now time.Time) {
	switch in.Kind {
	case InputMove:
		e.coord.PointerMove(in.Pos)
	case InputDown:
		e.coord.PointerDown(in.Pos, now)
	case InputUp:
		e.coord.PointerUp(in.Pos, now)
	case InputSecondary:
		e.coord.Secondary(in.Pos)
	case InputWheel:
		e.coord.Wheel(in.Dir)
	case InputLeave:
		e.coord.PointerLeave()
	case InputRotate:
		e.coord.Rotate(in.DAz, in.DEl)
	case InputResize:
		e.Resize(in.Width, in.Height)
	case InputData:
		e.SetData(in.Points)
	}
}

// Run drives the engine from a ticker until ctx is done or the render
// context fails. Everything happens on the calling goroutine; inputs queued
// on the channel are drained at the start of each tick. While the engine
// is loading the loop is not started and no frames are drawn.
func (e *Engine) Run(ctx context.Context, interval time.Duration, inputs <-chan Input) error {
	if interval <= 0 {
		interval = time.Second / 30
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	defer e.Stop()

	var token uint64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			e.drain(inputs, now)

			if !e.Accept(token) {
				if e.fatal != nil {
					return e.fatal
				}
				t, ok := e.Start()
				if !ok {
					continue
				}
				token = t
			}
			if _, ok := e.Tick(now); !ok && e.fatal != nil {
				return e.fatal
			}
		}
	}
}

func (e *Engine) drain(inputs <-chan Input, now time.Time) {
	if inputs == nil {
		return
	}
	for {
		select {
		case in, ok := <-inputs:
			if !ok {
				return
			}
			e.Apply(in, now)
		default:
			return
		}
	}
}

package player

import "context"

// Audio creates player handles.
type Audio interface {
	NewHandle() (Handle, error)
}

// Handle is a single audio player. Prepare blocks and runs off the control
// goroutine; Stop may be called while Prepare is still running and must make
// it return.
type Handle interface {
	SetSource(url string) error
	Prepare(ctx context.Context) error
	Start() error
	Pause() error
	Stop() error
	// OnCompletion registers fn to run once when a started stream ends on its own.
	OnCompletion(fn func())
}

// Resolver turns a playlist URL into a stream URL.
type Resolver interface {
	Resolve(ctx context.Context, url string) (string, bool)
}

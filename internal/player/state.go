package player

// State is the lifecycle stage of the controller's audio player.
type State int

const (
	// StateIdle has no player and no pending work.
	StateIdle State = iota
	// StateResolving waits for a playlist to yield a stream URL.
	StateResolving
	// StatePreparing waits for the player to buffer the stream.
	StatePreparing
	// StatePlaying is audible playback.
	StatePlaying
	// StatePaused keeps the prepared player without output.
	StatePaused
	// StateStopped was left by an explicit Stop; Play behaves as from Idle.
	StateStopped
)

// String returns the label shown in the status line.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateResolving:
		return "RESOLVING"
	case StatePreparing:
		return "PREPARING"
	case StatePlaying:
		return "LIVE"
	case StatePaused:
		return "PAUSED"
	case StateStopped:
		return "STOPPED"
	default:
		return "UNKNOWN"
	}
}

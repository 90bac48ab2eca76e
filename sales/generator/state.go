package generator

// State is the lifecycle phase of a Scheduler.
type State int32

const (
	StateCreated State = iota
	StateConnecting
	StateInitialBurst
	StateIdle
	StateGeneratingBatch
	StateShuttingDown
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateConnecting:
		return "connecting"
	case StateInitialBurst:
		return "initial_burst"
	case StateIdle:
		return "idle"
	case StateGeneratingBatch:
		return "generating_batch"
	case StateShuttingDown:
		return "shutting_down"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

package sim

// Metrics aggregates counters over one simulation run.
type Metrics struct {
	Steps              int
	CommandsCompleted  int // mission commands only
	DetourCommandsDone int // synthesized detour commands
	CommandsFailed     int
	DetoursTriggered   int
	ReservationsSeen   int
	AgentsFailed       int

	DistanceFlown float64 // meters, summed over all agents
	SimTime       float64 // simulated seconds actually run
}

package sim

import (
	"github.com/uavops/uavsim/internal/cee"
	"github.com/uavops/uavsim/internal/queue"
	"github.com/uavops/uavsim/internal/uav"
)

// Agent pairs a node with its pending-command queue and the engine
// currently executing. The queue is a deque because detour chains are
// prepended as one atomic operation relative to the driver's pop.
type Agent struct {
	Node  *uav.Node
	Queue *queue.Deque[cee.CEE]

	current cee.CEE
	failed  bool
}

// NewAgent wraps a node with an empty command queue.
func NewAgent(node *uav.Node) *Agent {
	return &Agent{
		Node:  node,
		Queue: queue.New[cee.CEE](),
	}
}

// Enqueue appends engines to the back of the agent's queue.
func (a *Agent) Enqueue(engines ...cee.CEE) {
	a.Queue.Push(engines...)
}

// Current returns the engine being executed, nil between commands.
func (a *Agent) Current() cee.CEE {
	return a.current
}

// Failed reports whether the agent was taken out of the run.
func (a *Agent) Failed() bool {
	return a.failed
}

// fail removes the agent from further stepping.
func (a *Agent) fail() {
	a.failed = true
	a.current = nil
	a.Queue.Clear()
}

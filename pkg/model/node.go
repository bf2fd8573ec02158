package model

// Node is a worker machine the scheduler can bind pods to.
type Node struct {
	Name          string
	Ready         bool
	Unschedulable bool
}

// Eligible reports whether the node may receive a bind: it must be ready and
// not marked unschedulable. Other constraints (CPU, memory, taints,
// tolerations, affinities) are intentionally out of scope.
func (n Node) Eligible() bool {
	return n.Ready && !n.Unschedulable
}

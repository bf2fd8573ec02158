package model

// Snapshot is the immutable per-tick input to the decision engine. Filtering
// pods by SchedulerName is the engine's job, not the snapshot builder's — the
// snapshot may legitimately contain pods claimed by other schedulers.
type Snapshot struct {
	SchedulerName string
	Nodes         []Node
	Pods          []Pod
}

package model

// Group is the derived gang identity for a set of pods sharing a group-name
// annotation.
type Group struct {
	Name string
	// Members are every pod (bound-active or pending-unbound) carrying this
	// group-name, in the order they were encountered.
	Members []Pod
}

// Priority is the max priority across all members — the most important pod
// in the gang sets the gang's scheduling entitlement.
func (g Group) Priority() int32 {
	var max int32
	first := true
	for _, m := range g.Members {
		if first || m.Priority > max {
			max = m.Priority
			first = false
		}
	}
	return max
}

// MinAvailable is the max min-available declared by any pending-unbound
// member; running members never contribute. If no pending member declares
// one, the group is non-blocking: pending members schedule individually
// (minAvailable = 1).
func (g Group) MinAvailable() int {
	min := 0
	for _, m := range g.Members {
		if !m.PendingUnbound() {
			continue
		}
		if n, ok := m.MinAvailable(); ok && n > min {
			min = n
		}
	}
	if min == 0 {
		return 1
	}
	return min
}

// Pending returns the group's pending-unbound members.
func (g Group) Pending() []Pod {
	var out []Pod
	for _, m := range g.Members {
		if m.PendingUnbound() {
			out = append(out, m)
		}
	}
	return out
}

// RunningCount returns how many members currently occupy a node.
func (g Group) RunningCount() int {
	n := 0
	for _, m := range g.Members {
		if m.BoundActive() {
			n++
		}
	}
	return n
}

// GroupBy partitions pods into Groups keyed by their group-name annotation.
// Pods without a group-name are not represented.
func GroupBy(pods []Pod) map[string]*Group {
	groups := make(map[string]*Group)
	for _, p := range pods {
		name, ok := p.GroupName()
		if !ok {
			continue
		}
		g, exists := groups[name]
		if !exists {
			g = &Group{Name: name}
			groups[name] = g
		}
		g.Members = append(g.Members, p)
	}
	return groups
}

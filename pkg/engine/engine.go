// Package engine implements the scheduling decision core: given an immutable
// cluster snapshot it produces an ordered plan of bind/evict actions. It is a
// pure function with no I/O, no clocks, and no randomness — see
// SPEC_FULL.md §4.2 for the full contract this package implements.
package engine

import (
	"sort"

	"github.com/heyfey/priosched/pkg/model"
)

// Schedule runs one deterministic scheduling pass over snapshot and returns
// the plan of actions that, if applied, satisfies the one-pod-per-node,
// priority-preemption, and gang-scheduling invariants. Schedule never fails:
// malformed inputs are absorbed by the conservative defaults documented on
// model.Pod, and an empty or fully-satisfied snapshot simply yields an empty
// plan.
func Schedule(snapshot model.Snapshot) model.Plan {
	pendingUnbound, boundActive := partition(snapshot.Pods, snapshot.SchedulerName)

	groups := model.GroupBy(append(append([]model.Pod{}, pendingUnbound...), boundActive...))

	occupiedBy := occupancy(boundActive)
	freeNodes := freeNodeNames(snapshot.Nodes, occupiedBy)
	eligibleNodes := eligibleNodeSet(snapshot.Nodes)

	order := sortedPending(pendingUnbound, groups)

	s := &state{
		occupiedBy:    occupiedBy,
		eligibleNodes: eligibleNodes,
		freeNodes:     freeNodes,
		plannedBinds:  map[string]model.ID{},
		plannedEvict:  map[model.ID]bool{},
	}

	handledGroups := map[string]bool{}
	for _, p := range order {
		if name, ok := p.GroupName(); ok {
			if handledGroups[name] {
				continue
			}
			handledGroups[name] = true
			scheduleGroup(s, groups[name])
			continue
		}
		scheduleSingle(s, p, p.Priority)
	}

	plan := make(model.Plan, 0, len(s.evictActions)+len(s.bindActions))
	plan = append(plan, s.evictActions...)
	plan = append(plan, s.bindActions...)
	return plan
}

// partition discards pods whose scheduler-name claim doesn't match name and
// splits the remainder into pending-unbound and bound-active pods. Terminal
// pods, and any pod that fits neither classification, are dropped.
func partition(pods []model.Pod, name string) (pendingUnbound, boundActive []model.Pod) {
	for _, p := range pods {
		if p.SchedulerName != name {
			continue
		}
		if p.Terminal() {
			continue
		}
		switch {
		case p.PendingUnbound():
			pendingUnbound = append(pendingUnbound, p)
		case p.BoundActive():
			boundActive = append(boundActive, p)
		}
	}
	return pendingUnbound, boundActive
}

// occupancy resolves which bound-active pod occupies each node. If two
// bound-active pods claim the same node (a contradictory snapshot), the
// first one under a deterministic (namespace, name) ordering wins; the rest
// remain bound-active (they still count toward group running totals) but are
// not tracked as occupying any node for placement purposes.
func occupancy(boundActive []model.Pod) map[string]model.Pod {
	ordered := append([]model.Pod{}, boundActive...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].ID().Less(ordered[j].ID())
	})

	occupiedBy := make(map[string]model.Pod, len(ordered))
	for _, p := range ordered {
		if p.NodeName == "" {
			continue
		}
		if _, exists := occupiedBy[p.NodeName]; !exists {
			occupiedBy[p.NodeName] = p
		}
	}
	return occupiedBy
}

// freeNodeNames returns, sorted ascending, the eligible node names not
// occupied by any bound-active pod.
func freeNodeNames(nodes []model.Node, occupiedBy map[string]model.Pod) []string {
	var free []string
	for _, n := range nodes {
		if !n.Eligible() {
			continue
		}
		if _, occupied := occupiedBy[n.Name]; occupied {
			continue
		}
		free = append(free, n.Name)
	}
	sort.Strings(free)
	return free
}

// eligibleNodeSet returns the set of eligible node names in the snapshot. A
// node missing from the snapshot entirely, or present but not Eligible(), is
// absent from the set — selectVictim uses this to refuse to preempt onto a
// node that is no longer a valid bind target.
func eligibleNodeSet(nodes []model.Node) map[string]bool {
	set := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		if n.Eligible() {
			set[n.Name] = true
		}
	}
	return set
}

// effectivePriority is the pod's own priority if it is ungrouped, or its
// gang's priority (max across members) if it carries a group-name.
func effectivePriority(p model.Pod, groups map[string]*model.Group) int32 {
	if name, ok := p.GroupName(); ok {
		return groups[name].Priority()
	}
	return p.Priority
}

// sortedPending orders pending-unbound pods by the engine's total order:
// higher effective priority first, ties broken by earlier creation
// timestamp, further ties broken lexicographically by (namespace, name).
func sortedPending(pods []model.Pod, groups map[string]*model.Group) []model.Pod {
	ordered := append([]model.Pod{}, pods...)
	sort.SliceStable(ordered, func(i, j int) bool {
		pi, pj := ordered[i], ordered[j]
		ei, ej := effectivePriority(pi, groups), effectivePriority(pj, groups)
		if ei != ej {
			return ei > ej
		}
		if !pi.CreationTimestamp.Equal(pj.CreationTimestamp) {
			return pi.CreationTimestamp.Before(pj.CreationTimestamp)
		}
		return pi.ID().Less(pj.ID())
	})
	return ordered
}

// sortedGroupMembers orders a gang's pending members for the purpose of
// deciding which of them attempt placement first: earlier creation first,
// ties broken lexicographically. All members share the same effective
// (group) priority, so priority is not a discriminator here.
func sortedGroupMembers(pods []model.Pod) []model.Pod {
	ordered := append([]model.Pod{}, pods...)
	sort.SliceStable(ordered, func(i, j int) bool {
		pi, pj := ordered[i], ordered[j]
		if !pi.CreationTimestamp.Equal(pj.CreationTimestamp) {
			return pi.CreationTimestamp.Before(pj.CreationTimestamp)
		}
		return pi.ID().Less(pj.ID())
	})
	return ordered
}

// state holds the engine's working sets for a single Schedule call.
type state struct {
	occupiedBy    map[string]model.Pod
	eligibleNodes map[string]bool
	freeNodes     []string

	plannedBinds map[string]model.ID
	plannedEvict map[model.ID]bool

	evictActions []model.Action
	bindActions  []model.Action
}

func (s *state) clone() *state {
	binds := make(map[string]model.ID, len(s.plannedBinds))
	for k, v := range s.plannedBinds {
		binds[k] = v
	}
	evict := make(map[model.ID]bool, len(s.plannedEvict))
	for k, v := range s.plannedEvict {
		evict[k] = v
	}
	return &state{
		occupiedBy:    s.occupiedBy,
		eligibleNodes: s.eligibleNodes,
		freeNodes:     s.freeNodes,
		plannedBinds:  binds,
		plannedEvict:  evict,
	}
}

// pickFreeNode returns the lexicographically smallest free node that is not
// already the target of a planned bind.
func pickFreeNode(freeNodes []string, plannedBinds map[string]model.ID) (string, bool) {
	for _, n := range freeNodes { // freeNodes is already sorted ascending
		if _, used := plannedBinds[n]; !used {
			return n, true
		}
	}
	return "", false
}

// selectVictim picks the cheapest eviction candidate for a pod/gang whose
// effective priority is priority and whose own group (if any) is selfGroup:
// among bound-active pods strictly lower-priority, occupying a node still
// eligible in the snapshot, not already evicted, not on a node already
// spoken for, and not themselves a member of selfGroup (a gang never
// preempts one of its own members), it picks the lowest priority,
// tie-broken by later creation timestamp (evict the newer, less-invested
// pod), further tie-broken lexicographically.
func selectVictim(priority int32, selfGroup string, hasGroup bool, occupiedBy map[string]model.Pod, eligibleNodes map[string]bool, plannedBinds map[string]model.ID, plannedEvict map[model.ID]bool) (model.Pod, bool) {
	var candidates []model.Pod
	for node, occupant := range occupiedBy {
		if !eligibleNodes[node] {
			continue
		}
		if _, used := plannedBinds[node]; used {
			continue
		}
		if plannedEvict[occupant.ID()] {
			continue
		}
		if occupant.Priority >= priority {
			continue
		}
		if hasGroup {
			if occGroup, ok := occupant.GroupName(); ok && occGroup == selfGroup {
				continue
			}
		}
		candidates = append(candidates, occupant)
	}
	if len(candidates) == 0 {
		return model.Pod{}, false
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		ci, cj := candidates[i], candidates[j]
		if ci.Priority != cj.Priority {
			return ci.Priority < cj.Priority
		}
		if !ci.CreationTimestamp.Equal(cj.CreationTimestamp) {
			return ci.CreationTimestamp.After(cj.CreationTimestamp)
		}
		return ci.ID().Less(cj.ID())
	})
	return candidates[0], true
}

// attemptPlace tries to place podID (at the given effective priority and
// group membership) into s, first by available node, then by preemption. It
// mutates s's planned sets on success and returns the actions to record.
func attemptPlace(s *state, podID model.ID, priority int32, selfGroup string, hasGroup bool) (bind model.Action, evict *model.Action, ok bool) {
	if node, found := pickFreeNode(s.freeNodes, s.plannedBinds); found {
		s.plannedBinds[node] = podID
		return model.Bind(podID, node), nil, true
	}

	victim, found := selectVictim(priority, selfGroup, hasGroup, s.occupiedBy, s.eligibleNodes, s.plannedBinds, s.plannedEvict)
	if !found {
		return model.Action{}, nil, false
	}
	s.plannedEvict[victim.ID()] = true
	s.plannedBinds[victim.NodeName] = podID
	ev := model.Evict(victim.ID())
	return model.Bind(podID, victim.NodeName), &ev, true
}

// scheduleSingle attempts to place one ungrouped pod (or one gang member once
// the gang's atomicity requirement is already satisfied), committing
// directly to s.
func scheduleSingle(s *state, p model.Pod, priority int32) {
	selfGroup, hasGroup := p.GroupName()
	bind, evict, ok := attemptPlace(s, p.ID(), priority, selfGroup, hasGroup)
	if !ok {
		return
	}
	if evict != nil {
		s.evictActions = append(s.evictActions, *evict)
	}
	s.bindActions = append(s.bindActions, bind)
}

// scheduleGroup handles every pending member of a gang the first time any of
// them is reached in priority order (§4.2 of SPEC_FULL.md).
func scheduleGroup(s *state, g *model.Group) {
	pending := sortedGroupMembers(g.Pending())
	if len(pending) == 0 {
		return
	}

	need := g.MinAvailable() - g.RunningCount()
	priority := g.Priority()

	if need <= 0 {
		for _, m := range pending {
			scheduleSingle(s, m, priority)
		}
		return
	}

	attempt := pending
	if len(attempt) > need {
		attempt = attempt[:need]
	}

	scratch := s.clone()
	placed := 0
	for _, m := range attempt {
		bind, evict, ok := attemptPlace(scratch, m.ID(), priority, g.Name, true)
		if !ok {
			continue
		}
		placed++
		if evict != nil {
			scratch.evictActions = append(scratch.evictActions, *evict)
		}
		scratch.bindActions = append(scratch.bindActions, bind)
	}

	if placed < need {
		// Discard the scratch entirely: no member of the gang is scheduled
		// and no preemption is performed on its behalf this tick.
		return
	}

	s.plannedBinds = scratch.plannedBinds
	s.plannedEvict = scratch.plannedEvict
	s.evictActions = append(s.evictActions, scratch.evictActions...)
	s.bindActions = append(s.bindActions, scratch.bindActions...)
}

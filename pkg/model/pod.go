package model

import (
	"strconv"
	"time"
)

// Phase mirrors the subset of pod lifecycle phases the engine cares about.
type Phase string

const (
	Pending   Phase = "Pending"
	Running   Phase = "Running"
	Succeeded Phase = "Succeeded"
	Failed    Phase = "Failed"
	Unknown   Phase = "Unknown"
)

// Pod is the engine's view of a workload unit. Annotations carries the raw
// pod annotations; GroupName and MinAvailable below are derived from it
// leniently (malformed or absent values never cause an error, only the
// absence of a gang constraint).
type Pod struct {
	Namespace         string
	Name              string
	SchedulerName     string
	NodeName          string // assigned node; empty if unbound
	Phase             Phase
	Priority          int32 // 0 if the pod declared none
	Annotations       map[string]string
	CreationTimestamp time.Time
}

// ID uniquely identifies a pod within a cluster.
type ID struct {
	Namespace string
	Name      string
}

func (p Pod) ID() ID { return ID{Namespace: p.Namespace, Name: p.Name} }

// Less implements the (namespace, name) lexicographic tie-break used
// throughout the engine.
func (id ID) Less(other ID) bool {
	if id.Namespace != other.Namespace {
		return id.Namespace < other.Namespace
	}
	return id.Name < other.Name
}

func (id ID) String() string { return id.Namespace + "/" + id.Name }

// PendingUnbound reports whether the pod is awaiting placement.
func (p Pod) PendingUnbound() bool {
	return p.Phase == Pending && p.NodeName == ""
}

// BoundActive reports whether the pod currently occupies a node. An Unknown
// phase pod with an assigned node is conservatively treated as occupying it
// (see spec's open question on Unknown-phase handling).
func (p Pod) BoundActive() bool {
	if p.NodeName == "" {
		return false
	}
	switch p.Phase {
	case Pending, Running, Unknown:
		return true
	default:
		return false
	}
}

// Terminal reports whether the pod has finished and should be ignored by the
// engine entirely.
func (p Pod) Terminal() bool {
	return p.Phase == Succeeded || p.Phase == Failed
}

// Annotation keys recognized on pods (bit-exact, per the gang-scheduling
// contract).
const (
	GroupNameAnnotation    = "custom-scheduling.k8s.io/group-name"
	MinAvailableAnnotation = "custom-scheduling.k8s.io/min-available"
)

// GroupName returns the pod's gang identity, if any. Absent or empty
// annotation means "not part of a gang".
func (p Pod) GroupName() (string, bool) {
	name, ok := p.Annotations[GroupNameAnnotation]
	if !ok || name == "" {
		return "", false
	}
	return name, true
}

// MinAvailable returns the pod's declared gang minimum, if any. A missing or
// unparseable (non-positive, non-integer) annotation means "no gang
// constraint from this pod" — it never errors.
func (p Pod) MinAvailable() (int, bool) {
	raw, ok := p.Annotations[MinAvailableAnnotation]
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

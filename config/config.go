package config

import (
	"os"
	"strconv"
)

const (
	Name    = "priosched"
	Msg     = "Priosched - priority-preemptive gang scheduler"
	Version = "0.1.0"
	Port    = "55587"

	// DefaultNamespace is used when SCHEDULER_NAMESPACE is unset.
	DefaultNamespace = "priosched"
	// DefaultSchedulerName is used when SCHEDULER_NAME is unset.
	DefaultSchedulerName = "priosched"
	// DefaultTickSeconds is the driver's poll period. Kept at 5s
	// (rather than something shorter) to tolerate the cluster API's eventual
	// consistency after a bind; shorter periods were observed to cause
	// double-binds from stale reads. Informer events can trigger additional
	// ticks between polls; those are not bound by this period.
	DefaultTickSeconds = 5

	DebugEntryPointSnapshot = "/debug/snapshot"
	DebugEntryPointPlan     = "/debug/plan"
)

// SchedulerName returns the scheduler-name claim this process matches pods
// against, read from SCHEDULER_NAME.
func SchedulerName() string {
	if v := os.Getenv("SCHEDULER_NAME"); v != "" {
		return v
	}
	return DefaultSchedulerName
}

// Namespace returns the namespace the informers are scoped to, read from
// SCHEDULER_NAMESPACE.
func Namespace() string {
	if v := os.Getenv("SCHEDULER_NAMESPACE"); v != "" {
		return v
	}
	return DefaultNamespace
}

// TickSeconds returns the driver's tick period, read from
// SCHEDULER_TICK_SECONDS.
func TickSeconds() int {
	v := os.Getenv("SCHEDULER_TICK_SECONDS")
	if v == "" {
		return DefaultTickSeconds
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return DefaultTickSeconds
	}
	return n
}

// MongoHost and MongoPort report the audit log's Mongo endpoint. Audit
// logging is disabled when the host is empty.
func MongoHost() string { return os.Getenv("MONGODB_SVC_SERVICE_HOST") }
func MongoPort() string { return os.Getenv("MONGODB_SVC_SERVICE_PORT") }

// AMQPURL reports the event bus endpoint. Publishing is disabled when empty.
func AMQPURL() string { return os.Getenv("SCHEDULER_AMQP_URL") }

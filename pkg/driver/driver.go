// Package driver connects the pure decision engine to a live Kubernetes
// cluster: it watches pods and nodes, builds a model.Snapshot every tick,
// asks pkg/engine for a plan, and applies that plan against the cluster API.
// See SPEC_FULL.md §4.3 for the contract this package implements.
package driver

import (
	"context"
	"sync"
	"time"

	"github.com/heyfey/priosched/config"
	"github.com/heyfey/priosched/pkg/common/logger"
	"github.com/heyfey/priosched/pkg/engine"
	"github.com/heyfey/priosched/pkg/model"
	corev1 "k8s.io/api/core/v1"
	policyv1beta1 "k8s.io/api/policy/v1beta1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/informers"
	kubeClient "k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/cache"
	"k8s.io/client-go/util/retry"
)

const (
	reschedChannelSize = 100
)

// Driver owns the cluster-facing side of the scheduler: informers, the tick
// loop, and plan application. It holds no scheduling logic of its own —
// pkg/engine.Schedule is the only place decisions are made.
type Driver struct {
	SchedulerName string
	Namespace     string

	kClient      kubeClient.Interface
	podInformer  cache.SharedIndexInformer
	nodeInformer cache.SharedIndexInformer

	// SchedulerLock protects lastSnapshot/lastPlan, read by pkg/service for
	// the debug endpoints.
	SchedulerLock sync.RWMutex
	lastSnapshot  model.Snapshot
	lastPlan      model.Plan

	tickSeconds int
	reschedCh   chan time.Time
	stopCh      chan struct{}

	audit   auditSink
	events  eventSink
	metrics driverMetrics
}

// New builds a Driver with informers over pods and nodes in
// config.Namespace(), but does not start them — call Run for that.
func New(kConfig *rest.Config) (*Driver, error) {
	kClient, err := kubeClient.NewForConfig(kConfig)
	if err != nil {
		return nil, err
	}
	return newWithClient(kClient), nil
}

// newWithClient builds a Driver around an already-constructed client,
// bypassing rest.Config. Exported to tests via fake clientsets so the tick
// loop and plan application can be exercised without a real cluster.
func newWithClient(kClient kubeClient.Interface) *Driver {
	sharedInformers := informers.NewSharedInformerFactoryWithOptions(kClient, 0,
		informers.WithNamespace(config.Namespace()))
	podInformer := sharedInformers.Core().V1().Pods().Informer()
	nodeInformer := sharedInformers.Core().V1().Nodes().Informer()

	d := &Driver{
		SchedulerName: config.SchedulerName(),
		Namespace:     config.Namespace(),
		kClient:       kClient,
		podInformer:   podInformer,
		nodeInformer:  nodeInformer,
		tickSeconds:   config.TickSeconds(),
		reschedCh:     make(chan time.Time, reschedChannelSize),
		stopCh:        make(chan struct{}),
	}
	d.metrics = d.initDriverMetrics()
	d.audit = newAuditSink()
	d.events = newEventSink()

	d.podInformer.AddEventHandler(cache.ResourceEventHandlerFuncs{
		AddFunc:    d.onPodChanged,
		UpdateFunc: func(oldObj, newObj interface{}) { d.onPodChanged(newObj) },
		DeleteFunc: d.onPodChanged,
	})
	d.nodeInformer.AddEventHandler(cache.ResourceEventHandlerFuncs{
		AddFunc:    d.onNodeChanged,
		UpdateFunc: func(oldObj, newObj interface{}) { d.onNodeChanged(newObj) },
		DeleteFunc: d.onNodeChanged,
	})

	return d
}

func (d *Driver) onPodChanged(obj interface{}) {
	if _, ok := obj.(*corev1.Pod); !ok {
		if _, ok := obj.(cache.DeletedFinalStateUnknown); !ok {
			return
		}
	}
	d.requestResched()
}

func (d *Driver) onNodeChanged(obj interface{}) {
	if _, ok := obj.(*corev1.Node); !ok {
		if _, ok := obj.(cache.DeletedFinalStateUnknown); !ok {
			return
		}
	}
	d.requestResched()
}

func (d *Driver) requestResched() {
	select {
	case d.reschedCh <- time.Now():
	default:
		// Channel full: a resched is already pending, this event is
		// redundant.
	}
}

// Run starts the informers, waits for the initial cache sync, then drives
// the tick loop until Stop is called. It blocks until the loop exits.
func (d *Driver) Run() {
	log := logger.GetLogger()
	defer logger.Flush()

	log.Info("Starting driver", "scheduler", d.SchedulerName, "namespace", d.Namespace)
	defer log.Info("Stopping driver", "scheduler", d.SchedulerName)

	go d.podInformer.Run(d.stopCh)
	go d.nodeInformer.Run(d.stopCh)

	if !cache.WaitForCacheSync(d.stopCh, d.podInformer.HasSynced, d.nodeInformer.HasSynced) {
		log.Error(nil, "Failed to sync informer caches", "scheduler", d.SchedulerName)
		return
	}

	ticker := time.NewTicker(time.Duration(d.tickSeconds) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			d.tick()
		case <-d.reschedCh:
			d.tick()
		case <-d.stopCh:
			return
		}
	}
}

// Stop terminates Run's loop and the underlying informers.
func (d *Driver) Stop() {
	close(d.stopCh)
}

// tick builds a snapshot, computes a plan, and applies it. It never panics
// and never aborts early on a single failed action (§7 of SPEC_FULL.md).
func (d *Driver) tick() {
	log := logger.GetLogger()
	defer logger.Flush()

	timer := d.startTickTimer()
	defer timer.ObserveDuration()
	d.metrics.ticksTotal.Inc()

	snapshot := d.buildSnapshot()
	plan := engine.Schedule(snapshot)

	log.V(4).Info("Computed plan", "scheduler", d.SchedulerName,
		"pods", len(snapshot.Pods), "nodes", len(snapshot.Nodes), "actions", len(plan))

	d.SchedulerLock.Lock()
	d.lastSnapshot = snapshot
	d.lastPlan = plan
	d.SchedulerLock.Unlock()

	d.applyPlan(plan)
}

// buildSnapshot reads the informer caches into a model.Snapshot. It never
// returns an error: a transient lister failure just yields fewer
// pods/nodes for this tick, which the engine tolerates (it will simply
// produce fewer actions, not wrong ones).
func (d *Driver) buildSnapshot() model.Snapshot {
	log := logger.GetLogger()
	defer logger.Flush()

	snapshot := model.Snapshot{SchedulerName: d.SchedulerName}

	for _, obj := range d.nodeInformer.GetStore().List() {
		node, ok := obj.(*corev1.Node)
		if !ok {
			continue
		}
		snapshot.Nodes = append(snapshot.Nodes, toModelNode(node))
	}

	for _, obj := range d.podInformer.GetStore().List() {
		pod, ok := obj.(*corev1.Pod)
		if !ok {
			continue
		}
		snapshot.Pods = append(snapshot.Pods, toModelPod(pod))
	}

	log.V(5).Info("Built snapshot", "scheduler", d.SchedulerName,
		"nodes", len(snapshot.Nodes), "pods", len(snapshot.Pods))
	return snapshot
}

func toModelNode(n *corev1.Node) model.Node {
	unschedulable := n.Spec.Unschedulable
	ready := false
	for _, cond := range n.Status.Conditions {
		if cond.Type == corev1.NodeReady {
			ready = cond.Status == corev1.ConditionTrue
			break
		}
	}
	return model.Node{Name: n.Name, Ready: ready, Unschedulable: unschedulable}
}

func toModelPod(p *corev1.Pod) model.Pod {
	return model.Pod{
		Namespace:         p.Namespace,
		Name:              p.Name,
		SchedulerName:     p.Spec.SchedulerName,
		NodeName:          p.Spec.NodeName,
		Phase:             toModelPhase(p.Status.Phase),
		Priority:          priorityOf(p),
		Annotations:       p.Annotations,
		CreationTimestamp: p.CreationTimestamp.Time,
	}
}

func priorityOf(p *corev1.Pod) int32 {
	if p.Spec.Priority != nil {
		return *p.Spec.Priority
	}
	return 0
}

func toModelPhase(phase corev1.PodPhase) model.Phase {
	switch phase {
	case corev1.PodPending:
		return model.Pending
	case corev1.PodRunning:
		return model.Running
	case corev1.PodSucceeded:
		return model.Succeeded
	case corev1.PodFailed:
		return model.Failed
	default:
		return model.Unknown
	}
}

// applyPlan applies evictions before bindings (§4.2 ordering contract), logs
// and continues past any individual failure, and best-effort mirrors every
// applied action to the audit log and event bus.
func (d *Driver) applyPlan(plan model.Plan) {
	log := logger.GetLogger()
	defer logger.Flush()

	for _, action := range plan.Evicts() {
		if err := d.evict(action.Pod); err != nil {
			log.Error(err, "Failed to evict pod", "pod", action.Pod, "scheduler", d.SchedulerName)
			d.metrics.evictionFailuresTotal.Inc()
			continue
		}
		d.metrics.evictionsTotal.Inc()
		d.recordApplied(action)
	}

	for _, action := range plan.Binds() {
		if err := d.bind(action.Pod, action.Node); err != nil {
			log.Error(err, "Failed to bind pod", "pod", action.Pod, "node", action.Node, "scheduler", d.SchedulerName)
			d.metrics.bindFailuresTotal.Inc()
			continue
		}
		d.metrics.bindsTotal.Inc()
		d.recordApplied(action)
	}
}

func (d *Driver) evict(pod model.ID) error {
	return retry.RetryOnConflict(retry.DefaultBackoff, func() error {
		eviction := &policyv1beta1.Eviction{
			ObjectMeta: metav1.ObjectMeta{Name: pod.Name, Namespace: pod.Namespace},
		}
		return d.kClient.PolicyV1beta1().Evictions(pod.Namespace).Evict(context.TODO(), eviction)
	})
}

func (d *Driver) bind(pod model.ID, node string) error {
	return retry.RetryOnConflict(retry.DefaultBackoff, func() error {
		binding := &corev1.Binding{
			ObjectMeta: metav1.ObjectMeta{Name: pod.Name, Namespace: pod.Namespace},
			Target: corev1.ObjectReference{
				Kind: "Node",
				Name: node,
			},
		}
		return d.kClient.CoreV1().Pods(pod.Namespace).Bind(context.TODO(), binding, metav1.CreateOptions{})
	})
}

// recordApplied mirrors an applied action to the audit log and event bus.
// Both are best-effort: failures are logged, never escalated (§7).
func (d *Driver) recordApplied(action model.Action) {
	now := time.Now()
	d.audit.record(d.SchedulerName, action, now)
	d.events.publish(d.SchedulerName, action, now)
}

// Snapshot returns the most recent snapshot the driver built, for the debug
// service.
func (d *Driver) Snapshot() model.Snapshot {
	d.SchedulerLock.RLock()
	defer d.SchedulerLock.RUnlock()
	return d.lastSnapshot
}

// Plan returns the most recent plan the engine produced, for the debug
// service.
func (d *Driver) Plan() model.Plan {
	d.SchedulerLock.RLock()
	defer d.SchedulerLock.RUnlock()
	return d.lastPlan
}

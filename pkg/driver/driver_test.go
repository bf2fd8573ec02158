package driver

import (
	"testing"
	"time"

	"github.com/heyfey/priosched/pkg/model"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	k8sfake "k8s.io/client-go/kubernetes/fake"
	core "k8s.io/client-go/testing"
)

// fixture mirrors the teacher's v1beta1/pkg/scheduler/scheduler_test.go
// pattern: a fake clientset pre-loaded with objects, and direct indexer
// writes to seed the driver's informer caches without a real watch.
type fixture struct {
	t *testing.T

	kubeClient *k8sfake.Clientset

	podLister  []*corev1.Pod
	nodeLister []*corev1.Node

	kubeObjects []runtime.Object
}

func newFixture(t *testing.T) *fixture {
	return &fixture{t: t}
}

func (f *fixture) newDriver() *Driver {
	f.kubeClient = k8sfake.NewSimpleClientset(f.kubeObjects...)
	d := newWithClient(f.kubeClient)

	for _, pod := range f.podLister {
		if err := d.podInformer.GetIndexer().Add(pod); err != nil {
			f.t.Fatalf("failed to seed pod indexer: %v", err)
		}
	}
	for _, node := range f.nodeLister {
		if err := d.nodeInformer.GetIndexer().Add(node); err != nil {
			f.t.Fatalf("failed to seed node indexer: %v", err)
		}
	}
	return d
}

func testNode(name string) *corev1.Node {
	return &corev1.Node{
		ObjectMeta: metav1.ObjectMeta{Name: name},
		Status: corev1.NodeStatus{
			Conditions: []corev1.NodeCondition{
				{Type: corev1.NodeReady, Status: corev1.ConditionTrue},
			},
		},
	}
}

func testPod(ns, name, scheduler string, priority int32) *corev1.Pod {
	p := int32(priority)
	return &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{
			Namespace:         ns,
			Name:              name,
			CreationTimestamp: metav1.NewTime(time.Unix(0, 0)),
		},
		Spec: corev1.PodSpec{
			SchedulerName: scheduler,
			Priority:      &p,
		},
		Status: corev1.PodStatus{Phase: corev1.PodPending},
	}
}

func TestDriver(t *testing.T) {
	f := newFixture(t)
	f.nodeLister = []*corev1.Node{testNode("n1")}
	f.podLister = []*corev1.Pod{testPod("default", "p", "priosched", 0)}
	f.kubeObjects = []runtime.Object{testPod("default", "p", "priosched", 0)}
	d := f.newDriver()
	d.SchedulerName = "priosched"

	t.Run("buildSnapshot reflects informer caches", func(t *testing.T) {
		snap := d.buildSnapshot()
		if len(snap.Nodes) != 1 || snap.Nodes[0].Name != "n1" {
			t.Fatalf("unexpected nodes in snapshot: %+v", snap.Nodes)
		}
		if len(snap.Pods) != 1 || snap.Pods[0].ID() != (model.ID{Namespace: "default", Name: "p"}) {
			t.Fatalf("unexpected pods in snapshot: %+v", snap.Pods)
		}
	})

	t.Run("tick binds the pending pod to the free node", func(t *testing.T) {
		d.tick()

		actions := f.kubeClient.Actions()
		found := false
		for _, a := range actions {
			if a.GetVerb() == "create" && a.GetResource().Resource == "pods" && a.GetSubresource() == "binding" {
				found = true
			}
		}
		if !found {
			t.Fatalf("expected a pods/binding create action, got %v", describeActions(actions))
		}

		plan := d.Plan()
		if len(plan) != 1 || plan[0].Kind != model.ActionBind || plan[0].Node != "n1" {
			t.Fatalf("unexpected last plan: %+v", plan)
		}
	})

	t.Run("requestResched does not block when channel is full", func(t *testing.T) {
		for i := 0; i < reschedChannelSize+10; i++ {
			d.requestResched()
		}
		if len(d.reschedCh) != reschedChannelSize {
			t.Fatalf("resched channel should be full, got %d", len(d.reschedCh))
		}
	})
}

func describeActions(actions []core.Action) []string {
	out := make([]string, 0, len(actions))
	for _, a := range actions {
		out = append(out, a.GetVerb()+" "+a.GetResource().Resource+"/"+a.GetSubresource())
	}
	return out
}

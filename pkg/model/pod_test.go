package model

import "testing"

func TestPodGroupNameLenientParsing(t *testing.T) {
	cases := []struct {
		name        string
		annotations map[string]string
		wantName    string
		wantOK      bool
	}{
		{"absent", nil, "", false},
		{"empty value", map[string]string{GroupNameAnnotation: ""}, "", false},
		{"present", map[string]string{GroupNameAnnotation: "g1"}, "g1", true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p := Pod{Annotations: c.annotations}
			name, ok := p.GroupName()
			if name != c.wantName || ok != c.wantOK {
				t.Fatalf("GroupName() = (%q, %v), want (%q, %v)", name, ok, c.wantName, c.wantOK)
			}
		})
	}
}

func TestPodMinAvailableLenientParsing(t *testing.T) {
	cases := []struct {
		name        string
		annotations map[string]string
		want        int
		wantOK      bool
	}{
		{"absent", nil, 0, false},
		{"not a number", map[string]string{MinAvailableAnnotation: "soon"}, 0, false},
		{"zero", map[string]string{MinAvailableAnnotation: "0"}, 0, false},
		{"negative", map[string]string{MinAvailableAnnotation: "-3"}, 0, false},
		{"valid", map[string]string{MinAvailableAnnotation: "4"}, 4, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p := Pod{Annotations: c.annotations}
			got, ok := p.MinAvailable()
			if got != c.want || ok != c.wantOK {
				t.Fatalf("MinAvailable() = (%d, %v), want (%d, %v)", got, ok, c.want, c.wantOK)
			}
		})
	}
}

func TestPodClassification(t *testing.T) {
	cases := []struct {
		name           string
		pod            Pod
		pendingUnbound bool
		boundActive    bool
		terminal       bool
	}{
		{"pending unbound", Pod{Phase: Pending}, true, false, false},
		{"pending bound counts as bound-active", Pod{Phase: Pending, NodeName: "n1"}, false, true, false},
		{"running bound", Pod{Phase: Running, NodeName: "n1"}, false, true, false},
		{"running unbound is neither", Pod{Phase: Running}, false, false, false},
		{"unknown with node is bound-active", Pod{Phase: Unknown, NodeName: "n1"}, false, true, false},
		{"unknown without node is ignored", Pod{Phase: Unknown}, false, false, false},
		{"succeeded is terminal", Pod{Phase: Succeeded, NodeName: "n1"}, false, false, true},
		{"failed is terminal", Pod{Phase: Failed}, false, false, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.pod.PendingUnbound(); got != c.pendingUnbound {
				t.Errorf("PendingUnbound() = %v, want %v", got, c.pendingUnbound)
			}
			if got := c.pod.BoundActive(); got != c.boundActive {
				t.Errorf("BoundActive() = %v, want %v", got, c.boundActive)
			}
			if got := c.pod.Terminal(); got != c.terminal {
				t.Errorf("Terminal() = %v, want %v", got, c.terminal)
			}
		})
	}
}

func TestIDLess(t *testing.T) {
	cases := []struct {
		a, b ID
		want bool
	}{
		{ID{"default", "a"}, ID{"default", "b"}, true},
		{ID{"default", "b"}, ID{"default", "a"}, false},
		{ID{"a", "z"}, ID{"b", "a"}, true},
		{ID{"default", "a"}, ID{"default", "a"}, false},
	}
	for _, c := range cases {
		if got := c.a.Less(c.b); got != c.want {
			t.Errorf("%v.Less(%v) = %v, want %v", c.a, c.b, got, c.want)
		}
	}
}

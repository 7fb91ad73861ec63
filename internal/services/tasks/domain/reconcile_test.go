package domain

import (
	"slices"
	"testing"
)

func labels(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = string(rune('A' + i))
	}
	return out
}

func TestReconcile(t *testing.T) {
	tests := []struct {
		name         string
		catalog      int
		participants int
		want         int
	}{
		{name: "equal", catalog: 4, participants: 4, want: 4},
		{name: "short catalog pads to participants", catalog: 5, participants: 6, want: 6},
		{name: "long catalog pads to double", catalog: 4, participants: 3, want: 6},
		{name: "exactly double", catalog: 6, participants: 3, want: 6},
		{name: "past double is left alone", catalog: 7, participants: 3, want: 7},
		{name: "single participant", catalog: 4, participants: 1, want: 4},
		{name: "many participants", catalog: 6, participants: 10, want: 10},
		{name: "no participants", catalog: 4, participants: 0, want: 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog := labels(tt.catalog)
			got := Reconcile(catalog, tt.participants)
			if len(got) != tt.want {
				t.Fatalf("Reconcile(%d, %d) len = %d, want %d", tt.catalog, tt.participants, len(got), tt.want)
			}
			if !slices.Equal(got[:tt.catalog], catalog) {
				t.Fatalf("catalog prefix changed: %v", got[:tt.catalog])
			}
			for _, label := range got[tt.catalog:] {
				if label != FillerTask {
					t.Fatalf("padding label = %q, want %q", label, FillerTask)
				}
			}
			if tt.participants > 0 && len(got) < tt.participants {
				t.Fatalf("len %d below participant count %d", len(got), tt.participants)
			}
		})
	}
}

func TestReconcileDoesNotAliasInput(t *testing.T) {
	catalog := labels(2)
	got := Reconcile(catalog, 3)
	got[0] = "changed"
	if catalog[0] != "A" {
		t.Fatal("Reconcile mutated its input")
	}
}

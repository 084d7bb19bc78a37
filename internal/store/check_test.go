package store

import (
	"context"
	"reflect"
	"testing"
)

func TestCheckReportsIssues(t *testing.T) {
	ctx := context.Background()
	m, mem, _ := newTestManager(t)

	r, err := m.Check(ctx)
	if err != nil || r.OK || !reflect.DeepEqual(r.Issues, []string{"Store missing"}) {
		t.Fatalf("empty persistence: %+v, %v", r, err)
	}

	mem.Put(ctx, KeyStore, []byte(`{"settings":{"vault":{"idleMinutes":500},"notifications":{"level":"loud"}}}`))
	r, err = m.Check(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"Version missing", "Cloud missing", "Vault idle minutes out of range", "Notification level invalid"}
	if !reflect.DeepEqual(r.Issues, want) {
		t.Fatalf("issues = %q, want %q", r.Issues, want)
	}

	r, err = m.Repair(ctx)
	if err != nil {
		t.Fatalf("Repair: %v", err)
	}
	if !r.OK || len(r.Issues) != 0 {
		t.Fatalf("after repair: %+v", r)
	}
}

package memory

import (
	"context"
	"testing"
)

func TestStoreCopiesValues(t *testing.T) {
	ctx := context.Background()
	s := New()

	in := []byte("abc")
	if err := s.Put(ctx, "k", in); err != nil {
		t.Fatalf("Put: %v", err)
	}
	in[0] = 'z'

	got, ok, _ := s.Get(ctx, "k")
	if !ok || string(got) != "abc" {
		t.Fatalf("Get = %q, %v; caller mutation leaked", got, ok)
	}
	got[1] = 'z'
	again, _, _ := s.Get(ctx, "k")
	if string(again) != "abc" {
		t.Fatalf("Get returned shared buffer: %q", again)
	}
}

func TestStoreMissingKey(t *testing.T) {
	if _, ok, err := New().Get(context.Background(), "none"); ok || err != nil {
		t.Fatalf("Get = %v, %v", ok, err)
	}
}

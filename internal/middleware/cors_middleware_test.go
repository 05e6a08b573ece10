package middleware

import "testing"

func TestCORSPolicy(t *testing.T) {
	policy := newCORSPolicy([]string{" http://localhost:5173/ ", ""})

	if got, ok := policy.allowOrigin("http://localhost:5173"); !ok || got != "http://localhost:5173" {
		t.Fatalf("expected configured origin allowed, got %q %v", got, ok)
	}
	if _, ok := policy.allowOrigin("http://other.test"); ok {
		t.Fatal("expected unknown origin rejected")
	}
	if _, ok := policy.allowOrigin(""); ok {
		t.Fatal("expected empty origin ignored")
	}

	wildcard := newCORSPolicy([]string{"*"})
	if got, ok := wildcard.allowOrigin("http://other.test"); !ok || got != "*" {
		t.Fatalf("expected wildcard, got %q %v", got, ok)
	}
}

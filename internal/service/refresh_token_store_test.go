package service

import (
	"testing"
	"time"
)

func TestMemoryRefreshTokenStoreLifecycle(t *testing.T) {
	store := NewMemoryRefreshTokenStore()

	if err := store.Store("jti-1", "user-1", time.Minute); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	ok, err := store.Exists("jti-1")
	if err != nil || !ok {
		t.Fatalf("expected token to exist, got ok=%v err=%v", ok, err)
	}

	if err := store.Revoke("jti-1"); err != nil {
		t.Fatalf("expected no error on revoke, got %v", err)
	}
	ok, _ = store.Exists("jti-1")
	if ok {
		t.Fatalf("expected token revoked")
	}
}

func TestMemoryRefreshTokenStoreExpiry(t *testing.T) {
	store := NewMemoryRefreshTokenStore()

	if err := store.Store("jti-2", "user-1", -time.Second); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	ok, _ := store.Exists("jti-2")
	if ok {
		t.Fatalf("expected expired token to be gone")
	}
}

func TestMemoryRefreshTokenStoreIgnoresEmptyJTI(t *testing.T) {
	store := NewMemoryRefreshTokenStore()

	if err := store.Store("  ", "user-1", time.Minute); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	ok, _ := store.Exists("  ")
	if ok {
		t.Fatalf("expected blank jti not stored")
	}
}

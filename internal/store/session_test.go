package store

import (
	"testing"
	"time"
)

func TestSessionCreateAndGet(t *testing.T) {
	s := NewSessionStore(setupTestDB(t))

	sess, err := s.Create("user@example.com")
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	if len(sess.Token) != 64 {
		t.Errorf("expected 64-char hex token, got %d chars", len(sess.Token))
	}
	ttl := time.Until(sess.ExpiresAt)
	if ttl < 23*time.Hour || ttl > 25*time.Hour {
		t.Errorf("expected roughly 24h expiry, got %v", ttl)
	}

	got, err := s.GetByToken(sess.Token)
	if err != nil {
		t.Fatalf("failed to get session: %v", err)
	}
	if got == nil {
		t.Fatal("expected session, got nil")
	}
	if got.Email != "user@example.com" {
		t.Errorf("expected email 'user@example.com', got %q", got.Email)
	}
}

func TestSessionGetByTokenUnknown(t *testing.T) {
	s := NewSessionStore(setupTestDB(t))

	got, err := s.GetByToken("nope")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Error("expected nil for unknown token")
	}
}

func TestSessionExpiry(t *testing.T) {
	db := setupTestDB(t)
	s := NewSessionStore(db)

	sess, err := s.Create("user@example.com")
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	_, err = db.Exec(`UPDATE sessions SET expires_at = datetime('now', '-1 minute') WHERE id = ?`, sess.ID)
	if err != nil {
		t.Fatalf("failed to expire session: %v", err)
	}

	got, err := s.GetByToken(sess.Token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Error("expired session must not be returned")
	}

	deleted, err := s.DeleteExpired()
	if err != nil {
		t.Fatalf("delete expired failed: %v", err)
	}
	if deleted != 1 {
		t.Errorf("expected 1 deleted session, got %d", deleted)
	}
}

func TestSessionDelete(t *testing.T) {
	s := NewSessionStore(setupTestDB(t))

	sess, err := s.Create("user@example.com")
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	if err := s.Delete(sess.ID); err != nil {
		t.Fatalf("failed to delete session: %v", err)
	}

	got, err := s.GetByToken(sess.Token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Error("deleted session must not be returned")
	}
}

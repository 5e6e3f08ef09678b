package store

import "testing"

func TestUserCreateAndGet(t *testing.T) {
	s := NewUserStore(setupTestDB(t))

	created, err := s.Create("admin", "$2a$10$notarealhash")
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	if created.ID == 0 {
		t.Error("expected non-zero user ID")
	}

	got, err := s.GetByUsername("admin")
	if err != nil {
		t.Fatalf("failed to get user: %v", err)
	}
	if got == nil {
		t.Fatal("expected user, got nil")
	}
	if got.ID != created.ID {
		t.Errorf("expected ID %d, got %d", created.ID, got.ID)
	}

	missing, err := s.GetByUsername("nobody")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for unknown username")
	}
}

package store

import (
	"testing"

	"github.com/sereniteo/crm/internal/model"
)

func seedContacts(t *testing.T, s *ContactStore) {
	t.Helper()
	contacts := []model.Contact{
		{
			Nom:          "Dupont Jean",
			Email:        strPtr("jean.dupont@example.com"),
			Telephone:    strPtr("0102030405"),
			Statut:       strPtr("Client"),
			Consultant:   strPtr("Marie Martin"),
			SCPI:         strPtr("Epargne Pierre"),
			DateCreation: strPtr("12/03/2021"),
			Montant:      func() *int64 { v := int64(50000); return &v }(),
		},
		{
			Nom:          "Durand Sophie",
			Email:        strPtr("sophie.durand@example.com"),
			Statut:       strPtr("Prospect"),
			Consultant:   strPtr("Marie Martin"),
			DateCreation: strPtr("05/07/2022"),
		},
		{
			Nom:          "Bernard Luc",
			Statut:       strPtr("Client"),
			Consultant:   strPtr("Paul Petit"),
			SCPI:         strPtr("Epargne Pierre - Primovie"),
			DateCreation: strPtr("2022"),
			Commentaires: strPtr("Rappeler en septembre"),
		},
	}
	if err := s.InsertBatch(contacts); err != nil {
		t.Fatalf("failed to seed contacts: %v", err)
	}
}

func TestContactCreateAndGet(t *testing.T) {
	s := NewContactStore(setupTestDB(t))

	created, err := s.Create(&model.Contact{
		Nom:   "Dupont Jean",
		Email: strPtr("jean@example.com"),
	})
	if err != nil {
		t.Fatalf("failed to create contact: %v", err)
	}
	if created.ID == 0 {
		t.Error("expected non-zero contact ID")
	}
	if created.CreatedAt.IsZero() {
		t.Error("expected created_at to be set")
	}

	got, err := s.GetByID(created.ID)
	if err != nil {
		t.Fatalf("failed to get contact: %v", err)
	}
	if got == nil {
		t.Fatal("expected contact, got nil")
	}
	if got.Nom != "Dupont Jean" {
		t.Errorf("expected nom 'Dupont Jean', got %q", got.Nom)
	}
	if got.Email == nil || *got.Email != "jean@example.com" {
		t.Errorf("unexpected email: %v", got.Email)
	}
	if got.Telephone != nil {
		t.Errorf("expected nil telephone, got %q", *got.Telephone)
	}
}

func TestContactGetByIDNotFound(t *testing.T) {
	s := NewContactStore(setupTestDB(t))

	got, err := s.GetByID(999)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for missing contact, got %+v", got)
	}
}

func TestContactList(t *testing.T) {
	s := NewContactStore(setupTestDB(t))
	seedContacts(t, s)

	contacts, err := s.List()
	if err != nil {
		t.Fatalf("failed to list contacts: %v", err)
	}
	if len(contacts) != 3 {
		t.Fatalf("expected 3 contacts, got %d", len(contacts))
	}
	if contacts[0].Nom != "Dupont Jean" || contacts[2].Nom != "Bernard Luc" {
		t.Errorf("unexpected order: %q, %q", contacts[0].Nom, contacts[2].Nom)
	}
}

func TestContactSearch(t *testing.T) {
	s := NewContactStore(setupTestDB(t))
	seedContacts(t, s)

	tests := []struct {
		query string
		want  int
	}{
		{"dupont", 1},
		{"DURAND", 1},
		{"example.com", 2},
		{"septembre", 1},
		{"0102", 1},
		{"introuvable", 0},
	}
	for _, tt := range tests {
		got, err := s.Search(tt.query)
		if err != nil {
			t.Fatalf("search %q: %v", tt.query, err)
		}
		if len(got) != tt.want {
			t.Errorf("search %q: expected %d results, got %d", tt.query, tt.want, len(got))
		}
	}
}

func TestContactFilter(t *testing.T) {
	s := NewContactStore(setupTestDB(t))
	seedContacts(t, s)

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{
			name:   "statut exact",
			filter: Filter{Statut: "Client"},
			want:   []string{"Dupont Jean", "Bernard Luc"},
		},
		{
			name:   "consultant substring case-insensitive",
			filter: Filter{Consultant: "marie"},
			want:   []string{"Dupont Jean", "Durand Sophie"},
		},
		{
			name:   "scpi matches combined holdings",
			filter: Filter{SCPI: "primovie"},
			want:   []string{"Bernard Luc"},
		},
		{
			name:   "annee substring of date_creation",
			filter: Filter{Annee: "2022"},
			want:   []string{"Durand Sophie", "Bernard Luc"},
		},
		{
			name:   "conjunction of filters",
			filter: Filter{Statut: "Client", Consultant: "Marie"},
			want:   []string{"Dupont Jean"},
		},
		{
			name:   "empty filter returns all",
			filter: Filter{},
			want:   []string{"Dupont Jean", "Durand Sophie", "Bernard Luc"},
		},
		{
			name:   "no match",
			filter: Filter{Statut: "Client", Annee: "2019"},
			want:   nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.FilterContacts(tt.filter)
			if err != nil {
				t.Fatalf("filter failed: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d results, got %d", len(tt.want), len(got))
			}
			for i, want := range tt.want {
				if got[i].Nom != want {
					t.Errorf("result %d: expected %q, got %q", i, want, got[i].Nom)
				}
			}
		})
	}
}

func TestContactInsertBatchAndDeleteAll(t *testing.T) {
	s := NewContactStore(setupTestDB(t))

	batch := make([]model.Contact, 25)
	for i := range batch {
		batch[i] = model.Contact{Nom: "Contact"}
	}
	if err := s.InsertBatch(batch); err != nil {
		t.Fatalf("failed to insert batch: %v", err)
	}

	count, err := s.Count()
	if err != nil {
		t.Fatalf("failed to count: %v", err)
	}
	if count != 25 {
		t.Errorf("expected 25 contacts, got %d", count)
	}

	deleted, err := s.DeleteAll()
	if err != nil {
		t.Fatalf("failed to delete all: %v", err)
	}
	if deleted != 25 {
		t.Errorf("expected 25 deleted, got %d", deleted)
	}

	count, err = s.Count()
	if err != nil {
		t.Fatalf("failed to count after delete: %v", err)
	}
	if count != 0 {
		t.Errorf("expected empty table, got %d contacts", count)
	}
}

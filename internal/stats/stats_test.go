package stats

import (
	"testing"

	"github.com/sereniteo/crm/internal/model"
)

func strPtr(s string) *string { return &s }

func TestComputeEmpty(t *testing.T) {
	s := Compute(nil)
	if s.Total != 0 || s.Clients != 0 || s.Prospects != 0 {
		t.Errorf("expected zero counts, got %+v", s)
	}
	if len(s.Consultants) != 0 || len(s.SCPI) != 0 || len(s.Annees) != 0 {
		t.Errorf("expected empty maps, got %+v", s)
	}
}

func TestComputeStatuts(t *testing.T) {
	contacts := []model.Contact{
		{Nom: "a", Statut: strPtr("Client")},
		{Nom: "b", Statut: strPtr("Client")},
		{Nom: "c", Statut: strPtr("Prospect")},
		{Nom: "d", Statut: strPtr("Ancien client")},
		{Nom: "e"},
	}

	s := Compute(contacts)
	if s.Total != 5 {
		t.Errorf("expected total 5, got %d", s.Total)
	}
	if s.Clients != 2 {
		t.Errorf("expected 2 clients, got %d", s.Clients)
	}
	if s.Prospects != 1 {
		t.Errorf("expected 1 prospect, got %d", s.Prospects)
	}
}

func TestComputeConsultants(t *testing.T) {
	contacts := []model.Contact{
		{Nom: "a", Consultant: strPtr("Marie")},
		{Nom: "b", Consultant: strPtr("Marie")},
		{Nom: "c", Consultant: strPtr("Paul")},
		{Nom: "d", Consultant: strPtr("")},
		{Nom: "e"},
	}

	s := Compute(contacts)
	if len(s.Consultants) != 2 {
		t.Fatalf("expected 2 consultants, got %d", len(s.Consultants))
	}
	if s.Consultants["Marie"] != 2 || s.Consultants["Paul"] != 1 {
		t.Errorf("unexpected consultant counts: %v", s.Consultants)
	}
}

func TestComputeSCPISplitsCombinedHoldings(t *testing.T) {
	contacts := []model.Contact{
		{Nom: "a", SCPI: strPtr("Epargne Pierre")},
		{Nom: "b", SCPI: strPtr("Epargne Pierre - Primovie")},
		{Nom: "c", SCPI: strPtr("  Primovie  ")},
	}

	s := Compute(contacts)
	if s.SCPI["Epargne Pierre"] != 2 {
		t.Errorf("expected 'Epargne Pierre' count 2, got %d", s.SCPI["Epargne Pierre"])
	}
	if s.SCPI["Primovie"] != 2 {
		t.Errorf("expected 'Primovie' count 2, got %d", s.SCPI["Primovie"])
	}
	if len(s.SCPI) != 2 {
		t.Errorf("expected 2 distinct products, got %v", s.SCPI)
	}
}

func TestComputeAnnees(t *testing.T) {
	contacts := []model.Contact{
		{Nom: "a", DateCreation: strPtr("12/03/2021")},
		{Nom: "b", DateCreation: strPtr("2021")},
		{Nom: "c", DateCreation: strPtr("05/07/2022")},
		{Nom: "d", DateCreation: strPtr("mars")},
		{Nom: "e"},
	}

	s := Compute(contacts)
	if s.Annees["2021"] != 2 {
		t.Errorf("expected '2021' count 2, got %d", s.Annees["2021"])
	}
	if s.Annees["2022"] != 1 {
		t.Errorf("expected '2022' count 1, got %d", s.Annees["2022"])
	}
	if len(s.Annees) != 2 {
		t.Errorf("expected 2 distinct years, got %v", s.Annees)
	}
	if s.Total != 5 {
		t.Errorf("yearless contacts still count toward total, got %d", s.Total)
	}
}

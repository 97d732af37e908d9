package gorm

import (
	"context"
	"testing"

	"github.com/myattire/backend/tasksvc"
)

func TestSectorRepositoryFindActive(t *testing.T) {
	repo := NewSectorRepository(newTestDB(t, "sector_active"))

	sectors := []tasksvc.Sector{
		{Nome: "Vendas", Ativo: true},
		{Nome: "Financeiro", Ativo: true},
		{Nome: "Almoxarifado", Ativo: false},
	}
	for i := range sectors {
		if _, err := repo.Create(context.Background(), &sectors[i]); err != nil {
			t.Fatalf("seeding sector %d: %v", i, err)
		}
	}

	got, err := repo.FindActive(context.Background())
	if err != nil {
		t.Fatalf("FindActive failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 active sectors, got %d", len(got))
	}
	for _, s := range got {
		if !s.Ativo {
			t.Errorf("Inactive sector %q in listing", s.Nome)
		}
	}
}

func TestSectorRepositoryFindActiveEmpty(t *testing.T) {
	repo := NewSectorRepository(newTestDB(t, "sector_empty"))

	got, err := repo.FindActive(context.Background())
	if err != nil {
		t.Fatalf("FindActive failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Expected no sectors, got %d", len(got))
	}
}

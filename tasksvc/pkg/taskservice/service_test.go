package taskservice

import (
	"context"
	"testing"

	"github.com/myattire/backend/tasksvc"
)

type fakeTaskRepository struct {
	tasks  map[uint64]tasksvc.Task
	nextID uint64
}

func newFakeTaskRepository() *fakeTaskRepository {
	return &fakeTaskRepository{tasks: make(map[uint64]tasksvc.Task)}
}

func (r *fakeTaskRepository) Create(_ context.Context, t *tasksvc.Task) (uint64, error) {
	r.nextID++
	t.ID = r.nextID
	r.tasks[t.ID] = *t
	return t.ID, nil
}

func (r *fakeTaskRepository) Find(_ context.Context, id uint64) (tasksvc.Task, error) {
	t, ok := r.tasks[id]
	if !ok {
		return tasksvc.Task{}, tasksvc.ErrTaskNotFound
	}
	return t, nil
}

func (r *fakeTaskRepository) FindAll(_ context.Context, _ tasksvc.TaskFilter) ([]tasksvc.Task, error) {
	var out []tasksvc.Task
	for _, t := range r.tasks {
		out = append(out, t)
	}
	return out, nil
}

func (r *fakeTaskRepository) Update(_ context.Context, id uint64, p tasksvc.TaskPatch) error {
	t, ok := r.tasks[id]
	if !ok {
		return tasksvc.ErrTaskNotFound
	}
	if p.Titulo != nil {
		t.Titulo = *p.Titulo
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Prioridade != nil {
		t.Prioridade = *p.Prioridade
	}
	r.tasks[id] = t
	return nil
}

func (r *fakeTaskRepository) Delete(_ context.Context, id uint64) error {
	if _, ok := r.tasks[id]; !ok {
		return tasksvc.ErrTaskNotFound
	}
	delete(r.tasks, id)
	return nil
}

type fakeSectorRepository struct {
	sectors []tasksvc.Sector
	nextID  uint64
}

func (r *fakeSectorRepository) Create(_ context.Context, s *tasksvc.Sector) (uint64, error) {
	r.nextID++
	s.ID = r.nextID
	r.sectors = append(r.sectors, *s)
	return s.ID, nil
}

func (r *fakeSectorRepository) FindActive(_ context.Context) ([]tasksvc.Sector, error) {
	var out []tasksvc.Sector
	for _, s := range r.sectors {
		if s.Ativo {
			out = append(out, s)
		}
	}
	return out, nil
}

func TestCreateTask(t *testing.T) {
	svc := NewBasicService(newFakeTaskRepository(), &fakeSectorRepository{})

	created, err := svc.CreateTask(context.Background(), tasksvc.Task{
		Titulo: "Revisar estoque",
		Setor:  "Vendas",
		Status: "pendente",
	})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	if created.ID == 0 {
		t.Error("Expected an assigned id")
	}
	if created.DataCriacao.IsZero() {
		t.Error("Expected data_criacao to be stamped")
	}
}

func TestCreateTaskValidation(t *testing.T) {
	svc := NewBasicService(newFakeTaskRepository(), &fakeSectorRepository{})

	tests := []struct {
		name string
		task tasksvc.Task
	}{
		{"missing titulo", tasksvc.Task{Setor: "Vendas"}},
		{"missing setor", tasksvc.Task{Titulo: "Revisar estoque"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.CreateTask(context.Background(), tt.task); err != tasksvc.ErrMissingTaskFields {
				t.Errorf("Expected ErrMissingTaskFields, got %v", err)
			}
		})
	}
}

func TestCreateTaskIgnoresClientID(t *testing.T) {
	repo := newFakeTaskRepository()
	svc := NewBasicService(repo, &fakeSectorRepository{})

	created, err := svc.CreateTask(context.Background(), tasksvc.Task{
		ID:     77,
		Titulo: "Revisar estoque",
		Setor:  "Vendas",
	})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	if created.ID == 77 {
		t.Error("Client-supplied id was honored")
	}
}

func TestUpdateTask(t *testing.T) {
	repo := newFakeTaskRepository()
	svc := NewBasicService(repo, &fakeSectorRepository{})

	created, err := svc.CreateTask(context.Background(), tasksvc.Task{Titulo: "Fechar caixa", Setor: "Financeiro", Status: "pendente"})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	status := "concluida"
	updated, err := svc.UpdateTask(context.Background(), created.ID, tasksvc.TaskPatch{Status: &status})
	if err != nil {
		t.Fatalf("UpdateTask failed: %v", err)
	}
	if updated.Status != "concluida" {
		t.Errorf("Expected status concluida, got %q", updated.Status)
	}
	if updated.Titulo != "Fechar caixa" {
		t.Errorf("Untouched titulo changed to %q", updated.Titulo)
	}

	if _, err := svc.UpdateTask(context.Background(), 99, tasksvc.TaskPatch{Status: &status}); err != tasksvc.ErrTaskNotFound {
		t.Errorf("Expected ErrTaskNotFound, got %v", err)
	}
}

func TestDeleteTask(t *testing.T) {
	repo := newFakeTaskRepository()
	svc := NewBasicService(repo, &fakeSectorRepository{})

	created, err := svc.CreateTask(context.Background(), tasksvc.Task{Titulo: "Fechar caixa", Setor: "Financeiro"})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	if err := svc.DeleteTask(context.Background(), created.ID); err != nil {
		t.Fatalf("DeleteTask failed: %v", err)
	}
	if err := svc.DeleteTask(context.Background(), created.ID); err != tasksvc.ErrTaskNotFound {
		t.Errorf("Expected ErrTaskNotFound, got %v", err)
	}
}

func TestTaskZeroID(t *testing.T) {
	svc := NewBasicService(newFakeTaskRepository(), &fakeSectorRepository{})

	if _, err := svc.Task(context.Background(), 0); err != tasksvc.ErrTaskNotFound {
		t.Errorf("Expected ErrTaskNotFound for id 0, got %v", err)
	}
}

func TestCreateSector(t *testing.T) {
	repo := &fakeSectorRepository{}
	svc := NewBasicService(newFakeTaskRepository(), repo)

	sector, err := svc.CreateSector(context.Background(), "Vendas", true)
	if err != nil {
		t.Fatalf("CreateSector failed: %v", err)
	}
	if sector.ID == 0 {
		t.Error("Expected an assigned id")
	}
	if sector.DataCriacao.IsZero() {
		t.Error("Expected data_criacao to be stamped")
	}

	if _, err := svc.CreateSector(context.Background(), "", true); err != tasksvc.ErrMissingSectorName {
		t.Errorf("Expected ErrMissingSectorName, got %v", err)
	}
}

func TestSectors(t *testing.T) {
	repo := &fakeSectorRepository{}
	svc := NewBasicService(newFakeTaskRepository(), repo)

	if _, err := svc.Sectors(context.Background()); err != tasksvc.ErrNoSectors {
		t.Errorf("Expected ErrNoSectors on empty listing, got %v", err)
	}

	if _, err := svc.CreateSector(context.Background(), "Vendas", true); err != nil {
		t.Fatalf("CreateSector failed: %v", err)
	}
	if _, err := svc.CreateSector(context.Background(), "Arquivo", false); err != nil {
		t.Fatalf("CreateSector failed: %v", err)
	}

	sectors, err := svc.Sectors(context.Background())
	if err != nil {
		t.Fatalf("Sectors failed: %v", err)
	}
	if len(sectors) != 1 {
		t.Fatalf("Expected 1 active sector, got %d", len(sectors))
	}
	if sectors[0].Nome != "Vendas" {
		t.Errorf("Expected Vendas, got %q", sectors[0].Nome)
	}
}

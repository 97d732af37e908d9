package tasksvc

import (
	"context"
	"errors"
	"time"
)

type Task struct {
	ID          uint64     `json:"id" gorm:"primaryKey"`
	Titulo      string     `json:"titulo"`
	Descricao   string     `json:"descricao"`
	Funcionario string     `json:"funcionario"`
	Setor       string     `json:"setor"`
	SetorID     uint64     `json:"id_setor" gorm:"column:id_setor"`
	DataCriacao time.Time  `json:"data_criacao" gorm:"column:data_criacao"`
	Prazo       *time.Time `json:"prazo"`
	Prioridade  string     `json:"prioridade"`
	Status      string     `json:"status"`
}

func (Task) TableName() string { return "tarefas" }

type Sector struct {
	ID          uint64    `json:"id" gorm:"primaryKey"`
	Nome        string    `json:"nome"`
	Ativo       bool      `json:"ativo"`
	DataCriacao time.Time `json:"data_criacao" gorm:"column:data_criacao"`
}

func (Sector) TableName() string { return "setores" }

// FilterAll is the sentinel the web client sends for "no constraint".
const FilterAll = "todos"

// TaskFilter holds the optional, AND-combined task listing predicates.
// A zero value field (or FilterAll) means the predicate is skipped.
type TaskFilter struct {
	Status      string
	Prioridade  string
	Funcionario string
	SetorID     string
	Busca       string
}

// TaskPatch carries a partial update. Only non-nil fields are written.
type TaskPatch struct {
	Titulo      *string
	Descricao   *string
	Funcionario *string
	Setor       *string
	SetorID     *uint64
	Prazo       *time.Time
	Prioridade  *string
	Status      *string
}

func (p TaskPatch) IsEmpty() bool {
	return p.Titulo == nil && p.Descricao == nil && p.Funcionario == nil &&
		p.Setor == nil && p.SetorID == nil && p.Prazo == nil &&
		p.Prioridade == nil && p.Status == nil
}

type TaskRepository interface {
	Create(ctx context.Context, t *Task) (uint64, error)
	Find(ctx context.Context, id uint64) (Task, error)
	FindAll(ctx context.Context, f TaskFilter) ([]Task, error)
	Update(ctx context.Context, id uint64, p TaskPatch) error
	Delete(ctx context.Context, id uint64) error
}

type SectorRepository interface {
	Create(ctx context.Context, s *Sector) (uint64, error)
	FindActive(ctx context.Context) ([]Sector, error)
}

var (
	ErrMissingTaskFields = errors.New("campos obrigatórios ausentes: titulo, setor")
	ErrInvalidDeadline   = errors.New("prazo inválido")
	ErrTaskNotFound      = errors.New("tarefa não encontrada")
	ErrMissingSectorName = errors.New("nome do setor é obrigatório")
	ErrNoSectors         = errors.New("nenhum setor encontrado")
)

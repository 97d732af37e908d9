package gorm

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/myattire/backend/tasksvc"
	libgorm "gorm.io/gorm"
)

// Bound on any single database round trip.
const repositoryTimeout = 5 * time.Second

type taskRepository struct {
	db *libgorm.DB
}

func NewTaskRepository(db *libgorm.DB) tasksvc.TaskRepository {
	return &taskRepository{db}
}

func (r *taskRepository) Create(ctx context.Context, t *tasksvc.Task) (uint64, error) {
	ctx, cancel := context.WithTimeout(ctx, repositoryTimeout)
	defer cancel()

	result := r.db.WithContext(ctx).Create(t)

	return t.ID, result.Error
}

func (r *taskRepository) Find(ctx context.Context, id uint64) (tasksvc.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, repositoryTimeout)
	defer cancel()

	var task tasksvc.Task
	result := r.db.WithContext(ctx).First(&task, id)
	if errors.Is(result.Error, libgorm.ErrRecordNotFound) {
		return tasksvc.Task{}, tasksvc.ErrTaskNotFound
	}

	return task, result.Error
}

// FindAll composes the optional predicates with AND semantics and returns
// the matches most-recent-first.
func (r *taskRepository) FindAll(ctx context.Context, f tasksvc.TaskFilter) ([]tasksvc.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, repositoryTimeout)
	defer cancel()

	tx := r.db.WithContext(ctx)

	if f.Status != "" && f.Status != tasksvc.FilterAll {
		tx = tx.Where("status = ?", f.Status)
	}
	if f.Prioridade != "" && f.Prioridade != tasksvc.FilterAll {
		tx = tx.Where("prioridade = ?", f.Prioridade)
	}
	if f.Funcionario != "" && f.Funcionario != tasksvc.FilterAll {
		tx = tx.Where("funcionario = ?", f.Funcionario)
	}
	if f.SetorID != "" && f.SetorID != tasksvc.FilterAll {
		tx = tx.Where("id_setor = ?", f.SetorID)
	}
	if f.Busca != "" {
		termo := "%" + strings.ToLower(f.Busca) + "%"
		tx = tx.Where("LOWER(titulo) LIKE ? OR LOWER(descricao) LIKE ?", termo, termo)
	}

	var tasks []tasksvc.Task
	result := tx.Order("id DESC").Find(&tasks)

	return tasks, result.Error
}

// Update writes only the fields present in the patch. A conditional update
// that matches no row reports ErrTaskNotFound instead of silently
// succeeding, which covers a delete racing between check and write.
func (r *taskRepository) Update(ctx context.Context, id uint64, p tasksvc.TaskPatch) error {
	ctx, cancel := context.WithTimeout(ctx, repositoryTimeout)
	defer cancel()

	values := map[string]interface{}{}
	if p.Titulo != nil {
		values["titulo"] = *p.Titulo
	}
	if p.Descricao != nil {
		values["descricao"] = *p.Descricao
	}
	if p.Funcionario != nil {
		values["funcionario"] = *p.Funcionario
	}
	if p.Setor != nil {
		values["setor"] = *p.Setor
	}
	if p.SetorID != nil {
		values["id_setor"] = *p.SetorID
	}
	if p.Prazo != nil {
		values["prazo"] = *p.Prazo
	}
	if p.Prioridade != nil {
		values["prioridade"] = *p.Prioridade
	}
	if p.Status != nil {
		values["status"] = *p.Status
	}
	if len(values) == 0 {
		return nil
	}

	result := r.db.WithContext(ctx).
		Model(&tasksvc.Task{}).
		Where("id = ?", id).
		Updates(values)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return tasksvc.ErrTaskNotFound
	}

	return nil
}

func (r *taskRepository) Delete(ctx context.Context, id uint64) error {
	ctx, cancel := context.WithTimeout(ctx, repositoryTimeout)
	defer cancel()

	result := r.db.WithContext(ctx).Delete(&tasksvc.Task{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return tasksvc.ErrTaskNotFound
	}

	return nil
}

package gorm

import (
	"context"

	"github.com/myattire/backend/tasksvc"
	libgorm "gorm.io/gorm"
)

type sectorRepository struct {
	db *libgorm.DB
}

func NewSectorRepository(db *libgorm.DB) tasksvc.SectorRepository {
	return &sectorRepository{db}
}

func (r *sectorRepository) Create(ctx context.Context, s *tasksvc.Sector) (uint64, error) {
	ctx, cancel := context.WithTimeout(ctx, repositoryTimeout)
	defer cancel()

	result := r.db.WithContext(ctx).Create(s)

	return s.ID, result.Error
}

func (r *sectorRepository) FindActive(ctx context.Context) ([]tasksvc.Sector, error) {
	ctx, cancel := context.WithTimeout(ctx, repositoryTimeout)
	defer cancel()

	var sectors []tasksvc.Sector
	result := r.db.WithContext(ctx).Where("ativo = ?", true).Find(&sectors)

	return sectors, result.Error
}

package repository

import (
	"github.com/yukikurage/scrumboard-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSequenceRepository keeps one counter row per (scope, scope id)
type GormSequenceRepository struct {
	db *gorm.DB
}

// NewSequenceRepository creates a new SequenceRepository
func NewSequenceRepository(db *gorm.DB) SequenceRepository {
	return &GormSequenceRepository{db: db}
}

// Next seeds the counter if needed, then increments it in place. The UPDATE
// takes the row's write lock, so concurrent callers on one scope serialize.
func (r *GormSequenceRepository) Next(scope models.SequenceScope, scopeID uint64, floor int) (int, error) {
	var counter models.SequenceCounter
	err := r.db.Transaction(func(tx *gorm.DB) error {
		seed := models.SequenceCounter{Scope: scope, ScopeID: scopeID, Value: floor}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.SequenceCounter{}).
			Where("scope = ? AND scope_id = ?", scope, scopeID).
			UpdateColumn("value", gorm.Expr("value + ?", 1)).Error; err != nil {
			return err
		}

		return tx.Where("scope = ? AND scope_id = ?", scope, scopeID).Take(&counter).Error
	})
	if err != nil {
		return 0, err
	}
	return counter.Value, nil
}

func (r *GormSequenceRepository) DeleteScopes(scope models.SequenceScope, scopeIDs []uint64) error {
	if len(scopeIDs) == 0 {
		return nil
	}
	return r.db.Where("scope = ? AND scope_id IN ?", scope, scopeIDs).
		Delete(&models.SequenceCounter{}).Error
}

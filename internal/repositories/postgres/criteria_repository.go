package postgres

import (
	"context"
	"fmt"

	"dating-service/internal/models"

	"gorm.io/gorm"
)

type CriteriaRepository struct {
	db *gorm.DB
}

func NewCriteriaRepository(db *gorm.DB) *CriteriaRepository {
	return &CriteriaRepository{db: db}
}

// FindByUserIDs fetches the dating criteria for a set of users in one
// query. Users without criteria are absent from the result.
func (r *CriteriaRepository) FindByUserIDs(ctx context.Context, userIDs []uint) ([]models.DatingCriteria, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	var criteria []models.DatingCriteria
	if err := r.db.WithContext(ctx).Where("user_id IN ?", userIDs).Find(&criteria).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch dating criteria: %w", err)
	}
	return criteria, nil
}

package postgres

import (
	"context"
	"fmt"

	"dating-service/internal/models"

	"gorm.io/gorm"
)

type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// FindByUserIDs fetches the dating profiles for a set of users in one
// query. Users without a profile are simply absent from the result.
func (r *ProfileRepository) FindByUserIDs(ctx context.Context, userIDs []uint) ([]models.DatingProfile, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	var profiles []models.DatingProfile
	if err := r.db.WithContext(ctx).Where("user_id IN ?", userIDs).Find(&profiles).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch dating profiles: %w", err)
	}
	return profiles, nil
}

package services

import (
	"context"
	"strconv"

	"dating-service/internal/matching"
	"dating-service/internal/repositories/postgres"
)

// ProfileService is the profile/criteria collaborator behind the
// matchmaking engine. It implements matching.ProfileDirectory over the
// GORM repositories, translating between string user ids (opaque to the
// coordinator) and the database's numeric keys.
type ProfileService struct {
	profiles *postgres.ProfileRepository
	criteria *postgres.CriteriaRepository
}

func NewProfileService(profiles *postgres.ProfileRepository, criteria *postgres.CriteriaRepository) *ProfileService {
	return &ProfileService{profiles: profiles, criteria: criteria}
}

func (s *ProfileService) Profiles(ctx context.Context, userIDs []string) (map[string]matching.Profile, error) {
	ids := parseIDs(userIDs)
	rows, err := s.profiles.FindByUserIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[string]matching.Profile, len(rows))
	for _, row := range rows {
		id := strconv.FormatUint(uint64(row.UserID), 10)
		personality := ""
		if row.PersonalityType != nil {
			personality = *row.PersonalityType
		}
		out[id] = matching.Profile{
			UserID:          id,
			Sex:             row.Sex,
			Age:             row.Age,
			Height:          row.Height,
			Hometown:        row.Hometown,
			Language:        row.Language,
			PersonalityType: personality,
		}
	}
	return out, nil
}

func (s *ProfileService) CriteriaFor(ctx context.Context, userIDs []string) (map[string]matching.Criteria, error) {
	ids := parseIDs(userIDs)
	rows, err := s.criteria.FindByUserIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[string]matching.Criteria, len(rows))
	for _, row := range rows {
		id := strconv.FormatUint(uint64(row.UserID), 10)
		out[id] = matching.Criteria{
			UserID:    id,
			Sex:       row.Sex,
			AgeMin:    row.AgeMin,
			AgeMax:    row.AgeMax,
			HeightMin: row.HeightMin,
			HeightMax: row.HeightMax,
			Hometown:  row.Hometown,
			Language:  row.Language,
		}
	}
	return out, nil
}

// parseIDs drops unparseable ids; the engine treats the corresponding
// users as having no record.
func parseIDs(userIDs []string) []uint {
	ids := make([]uint, 0, len(userIDs))
	for _, s := range userIDs {
		id, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, uint(id))
	}
	return ids
}

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/breadMSA/Calories/models"
)

// profileKey is the fixed storage key of the single user profile. The
// system is deliberately single-user; a multi-tenant deployment would have
// to introduce a user identifier into every key.
const profileKey = "user:profile"

// UserService reads and replaces the stored profile wholesale.
type UserService struct {
	store KVStore
	now   func() time.Time
}

func NewUserService(store KVStore) *UserService {
	return &UserService{store: store, now: time.Now}
}

// GetProfile returns the stored profile, or ErrNotFound when onboarding has
// never completed.
func (s *UserService) GetProfile(ctx context.Context) (models.UserProfile, error) {
	var p models.UserProfile
	err := s.store.Get(ctx, profileKey, &p)
	if errors.Is(err, ErrKeyNotFound) {
		return models.UserProfile{}, fmt.Errorf("%w: profile never set", ErrNotFound)
	}
	if err != nil {
		return models.UserProfile{}, err
	}
	return p, nil
}

// SaveProfile validates that all five fields are present, stamps updatedAt
// and stores the profile.
func (s *UserService) SaveProfile(ctx context.Context, p models.UserProfile) (models.UserProfile, error) {
	if p.Height <= 0 || p.Weight <= 0 || p.Age <= 0 {
		return models.UserProfile{}, fmt.Errorf("%w: height, weight and age are required", ErrValidation)
	}
	if p.Gender != models.GenderMale && p.Gender != models.GenderFemale {
		return models.UserProfile{}, fmt.Errorf("%w: gender must be male or female", ErrValidation)
	}
	if p.Targets.Calories < 0 || p.Targets.Protein < 0 || p.Targets.Sodium < 0 || p.Targets.Water < 0 {
		return models.UserProfile{}, fmt.Errorf("%w: targets must be non-negative", ErrValidation)
	}

	p.UpdatedAt = s.now().UTC().Format(time.RFC3339)
	if err := s.store.Set(ctx, profileKey, p); err != nil {
		return models.UserProfile{}, err
	}
	return p, nil
}

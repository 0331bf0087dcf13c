package app

import (
	"strings"

	"blogfolio/internal/model"
	"blogfolio/internal/repository"
)

type UserService struct {
	userRepo *repository.UserRepository
}

// UpdateProfileInput uses pointers for partial-update semantics: nil leaves
// the field untouched, an empty string clears it.
type UpdateProfileInput struct {
	FullName  *string
	AvatarURL *string
	Bio       *string
}

func NewUserService(userRepo *repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) GetProfile(userID string) (*model.User, error) {
	if userID == "" {
		return nil, ErrInvalidInput
	}
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *UserService) UpdateProfile(userID string, input UpdateProfileInput) (*model.User, error) {
	user, err := s.GetProfile(userID)
	if err != nil {
		return nil, err
	}

	if input.FullName != nil {
		user.FullName = strings.TrimSpace(*input.FullName)
	}
	if input.AvatarURL != nil {
		user.AvatarURL = strings.TrimSpace(*input.AvatarURL)
	}
	if input.Bio != nil {
		user.Bio = *input.Bio
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

// GetPublicProfile serves the author page; same lookup as GetProfile but the
// handler exposes only public fields.
func (s *UserService) GetPublicProfile(userID string) (*model.User, error) {
	return s.GetProfile(userID)
}

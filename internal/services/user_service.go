package services

import (
	"errors"

	"lapak/internal/models"
	"lapak/internal/repositories"
)

// UserService handles profile reads and updates.
type UserService struct {
	userRepo repositories.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repositories.UserRepository) *UserService {
	return &UserService{
		userRepo: userRepo,
	}
}

// GetProfile returns the user with cart and purchase history hydrated.
// Any authenticated caller may read any profile; the password never leaves
// the model (no json tag).
func (s *UserService) GetProfile(id string) (*models.Profile, error) {
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, notFound("User not found")
		}
		return nil, err
	}

	cart, err := s.userRepo.GetCart(id)
	if err != nil {
		return nil, err
	}
	purchased, err := s.userRepo.GetPurchases(id)
	if err != nil {
		return nil, err
	}

	return &models.Profile{
		User:      *user,
		Cart:      cart,
		Purchased: purchased,
	}, nil
}

// UpdateProfile applies a partial update to the caller's own profile.
func (s *UserService) UpdateProfile(callerID, id string, req models.UpdateProfileRequest) (*models.User, error) {
	if callerID != id {
		return nil, forbidden("Not authorized to update this profile")
	}

	user, err := s.userRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, notFound("User not found")
		}
		return nil, err
	}

	if req.Username != nil {
		user.Username = *req.Username
	}
	if req.ProfilePic != nil {
		user.ProfilePic = *req.ProfilePic
	}

	if err := s.userRepo.Update(user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, conflict("Username already taken")
		}
		return nil, err
	}
	return user, nil
}

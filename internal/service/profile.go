package service

import (
	"context"
	"strings"

	domainauth "github.com/danicastudios/studiodesk/internal/domain/auth"
	apperrors "github.com/danicastudios/studiodesk/internal/errors"
	"github.com/danicastudios/studiodesk/internal/ports"
)

const (
	maxProfileNameLen  = 120
	maxProfilePhoneLen = 32
)

// ProfileServiceOptions groups dependencies for ProfileService.
type ProfileServiceOptions struct {
	Directory ports.Directory
}

// ProfileService reads and writes the caller's own profile.
type ProfileService struct {
	directory ports.Directory
}

// NewProfileService constructs a ProfileService.
func NewProfileService(opts ProfileServiceOptions) *ProfileService {
	return &ProfileService{directory: opts.Directory}
}

// Get returns the user's profile, nil for a first-time user.
func (s *ProfileService) Get(ctx context.Context, userID string) (*domainauth.Profile, error) {
	if userID == "" {
		return nil, apperrors.Validation("user ID is required")
	}
	profile, ok, err := s.directory.CallerProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return &profile, nil
}

// SaveProfileInput groups parameters for a profile write.
type SaveProfileInput struct {
	Name  string
	Phone string
}

// Save validates and persists the user's profile.
func (s *ProfileService) Save(ctx context.Context, userID string, input SaveProfileInput) (*domainauth.Profile, error) {
	if userID == "" {
		return nil, apperrors.Validation("user ID is required")
	}

	name := strings.TrimSpace(input.Name)
	phone := strings.TrimSpace(input.Phone)
	if name == "" {
		return nil, apperrors.ValidationField("name", "name is required")
	}
	if len(name) > maxProfileNameLen {
		return nil, apperrors.ValidationField("name", "name is too long")
	}
	if len(phone) > maxProfilePhoneLen {
		return nil, apperrors.ValidationField("phone", "phone is too long")
	}

	profile := domainauth.Profile{
		UserID: userID,
		Name:   name,
		Phone:  phone,
	}
	if err := s.directory.SaveCallerProfile(ctx, userID, profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

package dto

import (
	"time"

	"github.com/Anandhu5Uthaman/College-mini/internal/app/models"
)

// UserProfile is the public projection of a user. It never carries the password hash.
type UserProfile struct {
	ID          string            `json:"id"`
	Fullname    string            `json:"fullname"`
	Email       string            `json:"email"`
	Username    string            `json:"username"`
	Role        string            `json:"role"`
	Department  string            `json:"department"`
	KTUID       *string           `json:"ktu_id,omitempty"`
	PassoutYear *int              `json:"passout_year,omitempty"`
	Phone       string            `json:"phone"`
	Bio         string            `json:"bio"`
	ProfileImg  string            `json:"profile_img"`
	SocialLinks map[string]string `json:"social_links"`
	CreatedAt   time.Time         `json:"created_at"`
}

// NewUserProfile builds the projection of u.
func NewUserProfile(u *models.User) *UserProfile {
	p := &UserProfile{
		ID:          u.ID,
		Fullname:    u.Fullname,
		Email:       u.Email,
		Username:    u.Username,
		Role:        string(u.Role()),
		Department:  string(u.Department),
		Phone:       u.Phone,
		Bio:         u.Bio,
		ProfileImg:  u.ProfileImg,
		SocialLinks: map[string]string(u.SocialLinks),
		CreatedAt:   u.CreatedAt,
	}
	if p.SocialLinks == nil {
		p.SocialLinks = map[string]string{}
	}
	if id, ok := models.KTUIDOf(u.Details); ok {
		p.KTUID = &id
	}
	if year, ok := models.PassoutYearOf(u.Details); ok {
		p.PassoutYear = &year
	}
	return p
}

// UpdateProfileRequest is the body of PUT /profile. Absent fields are left unchanged.
type UpdateProfileRequest struct {
	Fullname    *string           `json:"fullname" validate:"omitnil,min=3"`
	Department  *string           `json:"department"`
	Phone       *string           `json:"phone"`
	Bio         *string           `json:"bio" validate:"omitempty,max=1000"`
	KTUID       *string           `json:"ktu_id"`
	PassoutYear *int              `json:"passout_year"`
	SocialLinks map[string]string `json:"social_links" validate:"omitempty,dive,keys,oneof=youtube instagram facebook twitter github website,endkeys,omitempty,url"`
}

// UpdateProfileResponse is returned by PUT /profile.
type UpdateProfileResponse struct {
	Message string       `json:"message"`
	User    *UserProfile `json:"user"`
}

// ProfileImageResponse is returned by POST /upload-profile-image.
type ProfileImageResponse struct {
	ProfileImageURL string `json:"profileImageUrl"`
	Message         string `json:"message"`
}

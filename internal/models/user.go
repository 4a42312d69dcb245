package models

import "time"

// Gender values accepted on a profile.
const (
	GenderMale   = "Male"
	GenderFemale = "Female"
	GenderOther  = "Other"
)

// IsGender reports whether g is one of the accepted gender values.
func IsGender(g string) bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

// User is the stored identity record. OTP fields never leave the service layer.
type User struct {
	ID           string     `json:"_id" db:"id"`
	Name         string     `json:"name" db:"name"`
	Email        string     `json:"email" db:"email"`
	Mobile       string     `json:"mobile" db:"mobile"`
	Country      string     `json:"country" db:"country"`
	Bio          string     `json:"bio,omitempty" db:"bio"`
	Gender       string     `json:"gender,omitempty" db:"gender"`
	Age          *int       `json:"age,omitempty" db:"age"`
	ProfileImage string     `json:"profileImage,omitempty" db:"profile_image"`
	OTPHash      string     `json:"-" db:"otp_hash"`
	OTPExpiresAt *time.Time `json:"-" db:"otp_expires_at"`
	IsAdmin      bool       `json:"isAdmin" db:"is_admin"`
	TotalPoints  float64    `json:"totalPoints" db:"total_points"`
	CreatedAt    time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time  `json:"updatedAt" db:"updated_at"`
}

// Profile is the public projection of a User.
// @Description Public user profile
type Profile struct {
	ID           string  `json:"_id" example:"6f1c2f5e-8a0b-4d6e-9d3c-2b1a0f9e8d7c"`
	Name         string  `json:"name" example:"Asha Rao"`
	Email        string  `json:"email" example:"asha@example.com"`
	Mobile       string  `json:"mobile" example:"5551234567"`
	Country      string  `json:"country" example:"India"`
	Bio          string  `json:"bio,omitempty"`
	Gender       string  `json:"gender,omitempty" example:"Female"`
	Age          *int    `json:"age,omitempty" example:"29"`
	ProfileImage string  `json:"profileImage,omitempty" example:"/uploads/user-1718200000000.png"`
	IsAdmin      bool    `json:"isAdmin"`
	TotalPoints  float64 `json:"totalPoints" example:"10"`
}

// Profile strips authentication state from the record.
func (u *User) Profile() Profile {
	return Profile{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Mobile:       u.Mobile,
		Country:      u.Country,
		Bio:          u.Bio,
		Gender:       u.Gender,
		Age:          u.Age,
		ProfileImage: u.ProfileImage,
		IsAdmin:      u.IsAdmin,
		TotalPoints:  u.TotalPoints,
	}
}

// Contributor is the leaderboard projection. It carries no contact fields.
type Contributor struct {
	ID           string  `json:"_id"`
	Name         string  `json:"name"`
	Country      string  `json:"country"`
	ProfileImage string  `json:"profileImage,omitempty"`
	TotalPoints  float64 `json:"totalPoints"`
}

// ProfileUpdate lists the mutable profile fields. Nil means "leave unchanged".
type ProfileUpdate struct {
	Name         *string
	Email        *string
	Country      *string
	Bio          *string
	Gender       *string
	Age          *int
	ProfileImage *string
}

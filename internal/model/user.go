package model

// UserProfile public display identity of an account (users joined with profiles)
type UserProfile struct {
	ID        int64  `json:"id" db:"id"`
	Username  string `json:"username" db:"username"`
	FullName  string `json:"full_name" db:"full_name"`
	AvatarURL string `json:"avatar_url" db:"avatar_url"`
}

package models

// Session is the current shopper identity. The zero value is the anonymous session.
type Session struct {
	UserID   string `json:"userId,omitempty"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Role     Role   `json:"role,omitempty"`
	Banned   bool   `json:"banned,omitempty"`
}

// IsAuthenticated reports whether the session belongs to a signed-in user.
func (s Session) IsAuthenticated() bool {
	return s.UserID != ""
}

// SessionFromProfile builds the session for a resolved profile.
func SessionFromProfile(p *Profile) Session {
	return Session{
		UserID:   p.ID,
		Username: p.Username,
		Email:    p.Email,
		Role:     p.Role,
		Banned:   p.IsBanned,
	}
}

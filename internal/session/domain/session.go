package domain

import "time"

// Session represents one authenticated device binding. At most one session
// per user is current at any instant; only a current, unexpired session whose
// stored token matches the presented one proves login.
type Session struct {
	ID           string
	UserID       string
	SessionToken string // signed token issued at login, unique
	ExpireAt     time.Time
	DeviceName   string
	UserAgent    string
	IPAddress    string
	Location     string
	IsCurrent    bool
	CreatedAt    time.Time
	LastActiveAt time.Time
}

// Public is the client-facing view of a session for the sessions list; the
// token itself is not echoed back.
type Public struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	ExpireAt     time.Time `json:"expire_at"`
	DeviceName   string    `json:"device_name"`
	UserAgent    string    `json:"user_agent"`
	IPAddress    string    `json:"ip_address"`
	Location     string    `json:"location"`
	IsCurrent    bool      `json:"is_current"`
	CreatedAt    time.Time `json:"created_at"`
	LastActiveAt time.Time `json:"last_active_at"`
}

// Public returns the session without the stored token.
func (s *Session) Public() Public {
	return Public{
		ID:           s.ID,
		UserID:       s.UserID,
		ExpireAt:     s.ExpireAt,
		DeviceName:   s.DeviceName,
		UserAgent:    s.UserAgent,
		IPAddress:    s.IPAddress,
		Location:     s.Location,
		IsCurrent:    s.IsCurrent,
		CreatedAt:    s.CreatedAt,
		LastActiveAt: s.LastActiveAt,
	}
}

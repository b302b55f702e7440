package meeting

import (
	"time"

	lmerrors "github.com/lingomeet/lingomeet/pkg/errors"
)

// Role distinguishes the meeting host from joined participants.
type Role string

const (
	RoleHost        Role = "host"
	RoleParticipant Role = "participant"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleHost || r == RoleParticipant
}

// Participant is a member of a shared meeting room.
type Participant struct {
	userID         string
	displayName    string
	role           Role
	joinedAt       time.Time
	targetLanguage Language
}

// ParticipantRecord is the serializable form of a Participant.
type ParticipantRecord struct {
	UserID         string    `json:"user_id"`
	DisplayName    string    `json:"display_name"`
	Role           Role      `json:"role"`
	JoinedAt       time.Time `json:"joined_at"`
	TargetLanguage Language  `json:"target_language"`
}

// NewParticipant validates and constructs a Participant.
func NewParticipant(rec ParticipantRecord) (Participant, error) {
	if rec.UserID == "" {
		return Participant{}, lmerrors.Validation("participant user id cannot be empty")
	}
	if !rec.Role.Valid() {
		return Participant{}, lmerrors.Validation("unknown participant role %q", rec.Role)
	}
	return Participant{
		userID:         rec.UserID,
		displayName:    rec.DisplayName,
		role:           rec.Role,
		joinedAt:       rec.JoinedAt,
		targetLanguage: rec.TargetLanguage,
	}, nil
}

func (p Participant) UserID() string           { return p.userID }
func (p Participant) DisplayName() string      { return p.displayName }
func (p Participant) Role() Role               { return p.role }
func (p Participant) JoinedAt() time.Time      { return p.joinedAt }
func (p Participant) TargetLanguage() Language { return p.targetLanguage }

// IsHost reports whether p has the host role.
func (p Participant) IsHost() bool { return p.role == RoleHost }

// Record returns the serializable form of p.
func (p Participant) Record() ParticipantRecord {
	return ParticipantRecord{
		UserID:         p.userID,
		DisplayName:    p.displayName,
		Role:           p.role,
		JoinedAt:       p.joinedAt,
		TargetLanguage: p.targetLanguage,
	}
}

package model

import (
	"time"

	"github.com/google/uuid"
)

// Candidate is one roster entry. Name is the idempotency key for outreach.
type Candidate struct {
	Name   string   `json:"name" yaml:"name"`
	Email  string   `json:"email" yaml:"email"`
	Role   string   `json:"role" yaml:"role"`
	Match  float64  `json:"match" yaml:"match"`
	Skills []string `json:"skills" yaml:"skills"`
}

type SendStatus string

const (
	StatusUnsent SendStatus = "unsent"
	StatusSent   SendStatus = "sent"
)

type CandidateRecord struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(255);uniqueIndex" json:"name"`
	Email     string    `gorm:"type:varchar(255)" json:"email"`
	Role      string    `gorm:"type:varchar(255)" json:"role"`
	Match     float64   `gorm:"type:float" json:"match"`
	Skills    []string  `gorm:"type:jsonb;serializer:json" json:"skills"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *CandidateRecord) TableName() string {
	return "candidates"
}

func (c *CandidateRecord) ToCandidate() Candidate {
	return Candidate{
		Name:   c.Name,
		Email:  c.Email,
		Role:   c.Role,
		Match:  c.Match,
		Skills: append([]string(nil), c.Skills...),
	}
}

package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role is the cohort a profile belongs to
type Role string

const (
	RoleBig    Role = "Big"
	RoleLittle Role = "Little"
)

// Chapter identifies a single organization at a single school
type Chapter struct {
	School       string `json:"school"`
	Organization string `json:"organization"`
}

// Key returns the identifier results are stored under
func (c Chapter) Key() string {
	return c.School + "|" + c.Organization
}

// Complete reports whether both halves of the chapter identity are present
func (c Chapter) Complete() bool {
	return strings.TrimSpace(c.School) != "" && strings.TrimSpace(c.Organization) != ""
}

// Profile is a registered member and the ranking they submitted
type Profile struct {
	Name        string
	Email       string
	Role        Role
	Chapter     Chapter
	Preferences []string
}

// Result is a computed assignment for a chapter
type Result struct {
	ID        string     `json:"id"`
	Chapter   Chapter    `json:"chapter"`
	Matches   Assignment `json:"matches"`
	CreatedBy string     `json:"createdBy"`
	CreatedAt time.Time  `json:"createdAt"`
}

// NewResult wraps an assignment with a fresh identifier and timestamp
func NewResult(chapter Chapter, matches Assignment, createdBy string) Result {
	return Result{
		ID:        uuid.NewString(),
		Chapter:   chapter,
		Matches:   matches,
		CreatedBy: createdBy,
		CreatedAt: time.Now().UTC(),
	}
}

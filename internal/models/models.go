package models

import (
	"fmt"
	"time"
)

// Role is the coarse permission category of a portal user
type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

// Roles lists every role the portal knows about
var Roles = []Role{RoleStudent, RoleAdmin}

// ParseRole validates a role string
func ParseRole(s string) (Role, error) {
	for _, r := range Roles {
		if string(r) == s {
			return r, nil
		}
	}
	return "", fmt.Errorf("invalid role '%s', must be one of: student, admin", s)
}

// User is the authenticated portal user as returned by the backend
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// IsAdmin reports whether the user holds the admin role
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Job represents a job or internship posting
type Job struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Company     string     `json:"company"`
	Description string     `json:"description"`
	Location    string     `json:"location,omitempty"`
	CTC         string     `json:"ctc,omitempty"`
	Type        string     `json:"type,omitempty"` // "fulltime" or "internship"
	CycleID     string     `json:"cycle_id,omitempty"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Comment is a discussion entry attached to a job posting
type Comment struct {
	ID        string    `json:"id"`
	JobID     string    `json:"job_id"`
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Notification is a per-user message from the placement cell
type Notification struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	Link      string    `json:"link,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Notice is a broadcast announcement shown on the notice board
type Notice struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	Audience    string    `json:"audience,omitempty"` // empty means everyone
	AttachedURL string    `json:"attached_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// PlacementCycle groups jobs and registered students for one recruiting season
type PlacementCycle struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Batch     string     `json:"batch"`
	Type      string     `json:"type,omitempty"`
	Status    string     `json:"status"` // "open", "closed"
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
}

// Student is a student registered in a placement cycle
type Student struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	RollNumber string  `json:"roll_number"`
	Department string  `json:"department,omitempty"`
	CGPA       float64 `json:"cgpa,omitempty"`
	Placed     bool    `json:"placed"`
	ResumeURL  string  `json:"resume_url,omitempty"`
}

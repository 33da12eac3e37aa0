package models

import (
	"time"

	"github.com/google/uuid"
)

// User is the identity record behind a student. Sign-in, sign-out and
// account deletion operate on users; everything social operates on students.
// A student's ID is always the ID of its user.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"display_name"`
	PhotoURL     string    `json:"photo_url"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Student is a campus profile.
//
// InterestIDs and SkillIDs hold catalog names ("Web Development", "Python"),
// at most three of each.
type Student struct {
	ID                uuid.UUID `json:"id"`
	FirstName         string    `json:"first_name" validate:"max=80"`
	LastName          string    `json:"last_name" validate:"max=80"`
	Email             string    `json:"email" validate:"required,email"`
	CollegeID         string    `json:"college_id,omitempty"`
	ProfilePictureURL string    `json:"profile_picture_url,omitempty" validate:"omitempty,url"`
	Bio               string    `json:"bio,omitempty" validate:"max=160"`
	InterestIDs       []string  `json:"interest_ids" validate:"max=3,dive,required"`
	SkillIDs          []string  `json:"skill_ids" validate:"max=3,dive,required"`
}

// FullName joins first and last name the way profile cards display it.
func (s Student) FullName() string {
	switch {
	case s.FirstName == "":
		return s.LastName
	case s.LastName == "":
		return s.FirstName
	}
	return s.FirstName + " " + s.LastName
}

// Team is a named group of students sharing a message thread.
// Members always contains CreatedBy.
type Team struct {
	ID            uuid.UUID   `json:"id"`
	Name          string      `json:"name" validate:"required,min=2,max=100"`
	Description   string      `json:"description" validate:"required,min=5,max=1000"`
	Members       []uuid.UUID `json:"members" validate:"required,min=1"`
	CreatedBy     uuid.UUID   `json:"created_by"`
	CreatedAt     time.Time   `json:"created_at"`
	RegisteredVia string      `json:"registered_via,omitempty"`
	RegisteredAt  *time.Time  `json:"registered_at,omitempty"`
}

// HasMember reports whether studentID is in the team.
func (t Team) HasMember(studentID uuid.UUID) bool {
	for _, m := range t.Members {
		if m == studentID {
			return true
		}
	}
	return false
}

// Connection is a mutual link between two students. The pair is unordered:
// (A,B) and (B,A) are the same connection.
type Connection struct {
	ID             uuid.UUID `json:"id"`
	StudentID1     uuid.UUID `json:"student_id_1"`
	StudentID2     uuid.UUID `json:"student_id_2"`
	ConnectionDate time.Time `json:"connection_date"`
}

// Involves reports whether studentID is either side of the connection.
func (c Connection) Involves(studentID uuid.UUID) bool {
	return c.StudentID1 == studentID || c.StudentID2 == studentID
}

// Other returns the party that is not studentID.
func (c Connection) Other(studentID uuid.UUID) uuid.UUID {
	if c.StudentID1 == studentID {
		return c.StudentID2
	}
	return c.StudentID1
}

// RequestStatus is the state of a connection request. Accepted and rejected
// requests are deleted, so stored requests are normally pending.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestAccepted RequestStatus = "accepted"
	RequestRejected RequestStatus = "rejected"
)

type ConnectionRequest struct {
	ID          uuid.UUID     `json:"id"`
	SenderID    uuid.UUID     `json:"sender_id"`
	ReceiverID  uuid.UUID     `json:"receiver_id"`
	Status      RequestStatus `json:"status" validate:"oneof=pending accepted rejected"`
	RequestDate time.Time     `json:"request_date"`
}

// ThreadKind names the parent of a message thread.
type ThreadKind string

const (
	ThreadTeam       ThreadKind = "team"
	ThreadConnection ThreadKind = "connection"
)

// Thread identifies the team or connection a message belongs to.
type Thread struct {
	Kind ThreadKind `json:"kind"`
	ID   uuid.UUID  `json:"id"`
}

// Topic is the realtime topic carrying the thread's events.
func (t Thread) Topic() string {
	return string(t.Kind) + ":" + t.ID.String()
}

// Message is append-only. ID is a per-store sequence and breaks ties between
// messages with the same timestamp.
type Message struct {
	ID        int64     `json:"id"`
	Thread    Thread    `json:"thread"`
	SenderID  uuid.UUID `json:"sender_id"`
	Text      string    `json:"text" validate:"required,max=2000"`
	Timestamp time.Time `json:"timestamp"`
}

// ParticipationCategory is the kind of event a participation records.
type ParticipationCategory string

const (
	CategoryProject  ParticipationCategory = "Project"
	CategorySports   ParticipationCategory = "Sports"
	CategoryCultural ParticipationCategory = "Cultural"
)

// Participation is a student-authored record of a past event entry.
type Participation struct {
	ID          uuid.UUID             `json:"id"`
	StudentID   uuid.UUID             `json:"student_id"`
	Title       string                `json:"title" validate:"required,min=2,max=200"`
	Description string                `json:"description,omitempty" validate:"max=2000"`
	Date        string                `json:"date" validate:"required,datetime=2006-01-02"`
	Category    ParticipationCategory `json:"category" validate:"required,oneof=Project Sports Cultural"`
	Result      string                `json:"result" validate:"required,max=100"`
	CreatedAt   time.Time             `json:"created_at"`
}

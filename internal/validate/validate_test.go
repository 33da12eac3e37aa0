package validate

import (
	"testing"

	"github.com/google/uuid"
	"github.com/lalith-99/campuslink/internal/apperr"
	"github.com/lalith-99/campuslink/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStudentInterestLimit(t *testing.T) {
	s := &models.Student{
		ID:          uuid.New(),
		Email:       "aarav.patel@university.edu",
		InterestIDs: []string{"Web Development", "Machine Learning", "Reading"},
	}
	require.NoError(t, Student(s))

	s.InterestIDs = append(s.InterestIDs, "Gaming")
	err := Student(s)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	e, ok := apperr.As(err)
	require.True(t, ok)
	require.Len(t, e.Fields, 1)
	assert.Equal(t, "interest_ids", e.Fields[0].Field)
	assert.Equal(t, "can have at most 3 entries", e.Fields[0].Message)
}

func TestStudentBioAndPicture(t *testing.T) {
	s := &models.Student{
		ID:                uuid.New(),
		Email:             "priya.sharma@university.edu",
		ProfilePictureURL: "not a url",
	}
	err := Student(s)
	require.Error(t, err)
	e, _ := apperr.As(err)
	assert.Equal(t, "profile_picture_url", e.Fields[0].Field)

	s.ProfilePictureURL = ""
	s.Bio = string(make([]byte, 161))
	assert.ErrorIs(t, Student(s), apperr.ErrValidation)
}

func TestTeamRequiresCreatorMembership(t *testing.T) {
	creator := uuid.New()
	team := &models.Team{
		Name:        "AI Innovators",
		Description: "Building AI solutions.",
		Members:     []uuid.UUID{uuid.New()},
		CreatedBy:   creator,
	}
	assert.ErrorIs(t, Team(team), apperr.ErrValidation)

	team.Members = append(team.Members, creator)
	assert.NoError(t, Team(team))

	team.Name = "A"
	assert.ErrorIs(t, Team(team), apperr.ErrValidation)
}

func TestRequestRejectsSelf(t *testing.T) {
	id := uuid.New()
	err := Request(&models.ConnectionRequest{SenderID: id, ReceiverID: id, Status: models.RequestPending})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	err = Request(&models.ConnectionRequest{SenderID: id, ReceiverID: uuid.New(), Status: "maybe"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestParticipation(t *testing.T) {
	p := &models.Participation{
		StudentID: uuid.New(),
		Title:     "National Hackathon 2024",
		Date:      "2024-09-15",
		Category:  models.CategoryProject,
		Result:    "Runner-up",
	}
	require.NoError(t, Participation(p))

	p.Date = "15/09/2024"
	assert.ErrorIs(t, Participation(p), apperr.ErrValidation)

	p.Date = "2024-09-15"
	p.Category = "Chess"
	assert.ErrorIs(t, Participation(p), apperr.ErrValidation)
}

func TestEmail(t *testing.T) {
	assert.True(t, Email("ada@campus.edu"))
	assert.False(t, Email("ada"))
	assert.False(t, Email(""))
}

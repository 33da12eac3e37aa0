package service

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/lalith-99/campuslink/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res := signUp(t, f, "Arjun Reddy", "arjun@campus.edu")
	session, err := f.issuer.Parse(res.Token)
	require.NoError(t, err)

	updated, err := f.students.UpdateProfile(ctx, *session, ProfileUpdate{
		FirstName:   "Arjun",
		LastName:    "R",
		Bio:         "Robotics and cricket",
		InterestIDs: []string{"cricket", "Music"},
		SkillIDs:    []string{"python", "Python"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Cricket", "Music"}, updated.InterestIDs)
	assert.Equal(t, []string{"Python"}, updated.SkillIDs)
	assert.Equal(t, f.catalog.DefaultProfilePicture, updated.ProfilePictureURL, "blank picture keeps the current one")

	user, err := f.store.Users.GetByID(ctx, session.StudentID)
	require.NoError(t, err)
	assert.Equal(t, "Arjun R", user.DisplayName)
}

func TestUpdateProfile_BlankNamesFallBackToDisplayName(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res := signUp(t, f, "Divya Nair Menon", "divya@campus.edu")
	session, err := f.issuer.Parse(res.Token)
	require.NoError(t, err)

	updated, err := f.students.UpdateProfile(ctx, *session, ProfileUpdate{})
	require.NoError(t, err)
	assert.Equal(t, "Divya", updated.FirstName)
	assert.Equal(t, "Nair Menon", updated.LastName)
}

func TestUpdateProfile_FourthInterestRejectedBeforeWrite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res := signUp(t, f, "Akshay Rao", "akshay@campus.edu")
	session, err := f.issuer.Parse(res.Token)
	require.NoError(t, err)

	_, err = f.students.UpdateProfile(ctx, *session, ProfileUpdate{
		InterestIDs: []string{"Cricket", "Music", "Gaming"},
	})
	require.NoError(t, err)

	_, err = f.students.UpdateProfile(ctx, *session, ProfileUpdate{
		Bio:         "changed",
		InterestIDs: []string{"Cricket", "Music", "Gaming", "Reading"},
	})
	require.ErrorIs(t, err, apperr.ErrValidation)

	stored, err := f.students.Me(ctx, *session)
	require.NoError(t, err)
	assert.Len(t, stored.InterestIDs, 3)
	assert.Empty(t, stored.Bio, "nothing was written")
}

func TestUpdateProfile_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res := signUp(t, f, "Shreya Iyer", "shreya@campus.edu")
	session, err := f.issuer.Parse(res.Token)
	require.NoError(t, err)

	tests := []struct {
		name  string
		in    ProfileUpdate
		field string
	}{
		{"unknown interest", ProfileUpdate{InterestIDs: []string{"Knitting"}}, "interest_ids"},
		{"unknown skill", ProfileUpdate{SkillIDs: []string{"COBOL"}}, "skill_ids"},
		{"long bio", ProfileUpdate{Bio: strings.Repeat("a", 161)}, "bio"},
		{"bad picture", ProfileUpdate{ProfilePictureURL: "not a url"}, "profile_picture_url"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.students.UpdateProfile(ctx, *session, tt.in)
			require.ErrorIs(t, err, apperr.ErrValidation)
			e, ok := apperr.As(err)
			require.True(t, ok)
			require.NotEmpty(t, e.Fields)
			assert.Equal(t, tt.field, e.Fields[0].Field)
		})
	}
}

func TestStudentsGet_NotFound(t *testing.T) {
	f := newFixture(t)
	me := f.addStudent(t, "Ada", "L")

	_, err := f.students.Get(context.Background(), me, uuid.New())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

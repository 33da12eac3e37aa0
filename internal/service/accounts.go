package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lalith-99/campuslink/internal/apperr"
	"github.com/lalith-99/campuslink/internal/auth"
	"github.com/lalith-99/campuslink/internal/cache"
	"github.com/lalith-99/campuslink/internal/catalog"
	"github.com/lalith-99/campuslink/internal/models"
	"github.com/lalith-99/campuslink/internal/repository"
	"github.com/lalith-99/campuslink/internal/validate"
	"go.uber.org/zap"
)

const (
	collegeIDPrefix = "3LA"
	collegeIDLength = 10
)

type SignUpInput struct {
	Name      string
	Email     string
	Password  string
	CollegeID string
}

// AuthResult is returned by sign-up and sign-in.
type AuthResult struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	Student   *models.Student `json:"student,omitempty"`
}

// Accounts is the identity provider: users, passwords and tokens.
type Accounts struct {
	store   repository.Store
	issuer  *auth.Issuer
	revoked cache.RevocationList
	catalog *catalog.Catalog
	logger  *zap.Logger
}

func NewAccounts(store repository.Store, issuer *auth.Issuer, revoked cache.RevocationList, cat *catalog.Catalog, logger *zap.Logger) *Accounts {
	return &Accounts{store: store, issuer: issuer, revoked: revoked, catalog: cat, logger: logger}
}

// SignUp creates the identity user and then its student profile, and signs
// the new student in.
func (a *Accounts) SignUp(ctx context.Context, in SignUpInput) (*AuthResult, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	collegeID := strings.TrimSpace(in.CollegeID)

	if name == "" {
		return nil, apperr.Invalid("name is required", apperr.FieldError{Field: "name", Message: "is required"})
	}
	if !ValidCollegeID(collegeID) {
		return nil, auth.Error(auth.CodeInvalidCollegeID)
	}
	if !validate.Email(email) {
		return nil, auth.Error(auth.CodeInvalidEmail)
	}
	if len(in.Password) < auth.MinPasswordLength {
		return nil, auth.Error(auth.CodeWeakPassword)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user, err := a.store.Users.Create(ctx, email, name, a.catalog.DefaultProfilePicture, hash)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, auth.Error(auth.CodeEmailAlreadyInUse)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	first, last := splitName(name)
	student := &models.Student{
		ID:                user.ID,
		FirstName:         first,
		LastName:          last,
		Email:             email,
		CollegeID:         strings.ToUpper(collegeID),
		ProfilePictureURL: a.catalog.DefaultProfilePicture,
		InterestIDs:       []string{},
		SkillIDs:          []string{},
	}
	if err := validate.Student(student); err != nil {
		a.discardUser(ctx, user)
		return nil, err
	}
	if err := a.store.Students.Save(ctx, student); err != nil {
		a.discardUser(ctx, user)
		return nil, fmt.Errorf("create student: %w", err)
	}

	a.logger.Info("student signed up", zap.String("student_id", user.ID.String()))
	return a.issue(student.ID, email, student)
}

// discardUser removes an identity whose profile could not be created, so
// the email can be used again.
func (a *Accounts) discardUser(ctx context.Context, user *models.User) {
	if err := a.store.Users.Delete(ctx, user.ID); err != nil {
		a.logger.Error("failed to remove user after sign-up failure",
			zap.String("user_id", user.ID.String()),
			zap.Error(err),
		)
	}
}

// SignIn checks credentials. An unknown email and a wrong password fail the
// same way.
func (a *Accounts) SignIn(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := a.store.Users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, auth.Error(auth.CodeInvalidCredential)
	}
	ok, err := auth.CheckPassword(user.PasswordHash, password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, auth.Error(auth.CodeInvalidCredential)
	}

	student, err := a.store.Students.GetByID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("get student: %w", err)
	}
	return a.issue(user.ID, user.Email, student)
}

func (a *Accounts) issue(id uuid.UUID, email string, student *models.Student) (*AuthResult, error) {
	token, session, err := a.issuer.Issue(id, email)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, ExpiresAt: session.ExpiresAt, Student: student}, nil
}

// SignOut revokes the session's token until it expires.
func (a *Accounts) SignOut(ctx context.Context, session auth.Session) error {
	if err := a.revoked.Revoke(ctx, session.TokenID, session.ExpiresAt); err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	return nil
}

// UpdateProfile changes the identity display name and photo.
func (a *Accounts) UpdateProfile(ctx context.Context, session auth.Session, displayName, photoURL string) error {
	if err := a.store.Users.UpdateProfile(ctx, session.StudentID, displayName, photoURL); err != nil {
		return fmt.Errorf("update identity profile: %w", err)
	}
	return nil
}

// DeleteAccount deletes the student record and then the identity record.
// The two steps are not atomic: if the second fails the student stays
// deleted and the error is returned. The token is revoked either way.
func (a *Accounts) DeleteAccount(ctx context.Context, session auth.Session) error {
	if err := a.store.Students.Delete(ctx, session.StudentID); err != nil {
		return fmt.Errorf("delete student: %w", err)
	}

	userErr := a.store.Users.Delete(ctx, session.StudentID)
	if err := a.revoked.Revoke(ctx, session.TokenID, session.ExpiresAt); err != nil {
		a.logger.Warn("failed to revoke token of deleted account", zap.Error(err))
	}
	if userErr != nil {
		a.logger.Error("student deleted but identity removal failed",
			zap.String("student_id", session.StudentID.String()),
			zap.Error(userErr),
		)
		return fmt.Errorf("delete identity: %w", userErr)
	}

	a.logger.Info("account deleted", zap.String("student_id", session.StudentID.String()))
	return nil
}

// ValidCollegeID reports whether id starts with 3LA (any case) and is
// exactly 10 characters long.
func ValidCollegeID(id string) bool {
	return len(id) == collegeIDLength && strings.EqualFold(id[:len(collegeIDPrefix)], collegeIDPrefix)
}

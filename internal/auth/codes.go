package auth

import "github.com/lalith-99/campuslink/internal/apperr"

// Identity error codes returned to clients in the "code" field.
const (
	CodeUserNotFound      = "auth/user-not-found"
	CodeWrongPassword     = "auth/wrong-password"
	CodeInvalidCredential = "auth/invalid-credential"
	CodeEmailAlreadyInUse = "auth/email-already-in-use"
	CodeWeakPassword      = "auth/weak-password"
	CodeInvalidEmail      = "auth/invalid-email"
	CodeInvalidCollegeID  = "auth/invalid-college-id"
	CodeInvalidToken      = "auth/invalid-token"
)

var messages = map[string]string{
	CodeUserNotFound:      "Incorrect email or password. Please try again.",
	CodeWrongPassword:     "Incorrect email or password. Please try again.",
	CodeInvalidCredential: "The credentials you provided are invalid. Please check your email and password.",
	CodeEmailAlreadyInUse: "This email is already in use. Please sign in.",
	CodeWeakPassword:      "The password is too weak. Please use at least 6 characters.",
	CodeInvalidEmail:      "Please enter a valid email address.",
	CodeInvalidCollegeID:  "College ID must start with 3LA and be 10 characters long.",
	CodeInvalidToken:      "Your session has expired. Please sign in again.",
}

// Message returns the user-facing text for an identity error code, or
// fallback for codes without one.
func Message(code, fallback string) string {
	if msg, ok := messages[code]; ok {
		return msg
	}
	return fallback
}

// Error builds the apperr value for an identity error code.
func Error(code string) *apperr.Error {
	var kind error
	switch code {
	case CodeWeakPassword, CodeInvalidEmail, CodeInvalidCollegeID:
		kind = apperr.ErrValidation
	case CodeEmailAlreadyInUse:
		kind = apperr.ErrConflict
	default:
		kind = apperr.ErrUnauthorized
	}
	return &apperr.Error{Kind: kind, Code: code, Message: Message(code, code)}
}

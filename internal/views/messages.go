package views

import (
	"github.com/miportal/portal/internal/api"
)

const (
	FallbackLoginError    = "Invalid credentials"
	FallbackRegisterError = "Could not create the account. Please try again."
	RegisteredNotice      = "Account created! You can now sign in."
)

// Empty state messages for each dashboard collection.
const (
	EmptySubjectsMessage = "No subjects enrolled in your curriculum."
	EmptyScheduleMessage = "Your schedule is clear for now."
	EmptyGradesMessage   = "No evaluation records yet."
)

// LoginErrorMessage returns the reason supplied by the API, or the generic
// fallback when there is none.
func LoginErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	if detail := api.DetailOf(err); len(detail) > 0 {
		return detail
	}
	return FallbackLoginError
}

func RegisterErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	if detail := api.DetailOf(err); len(detail) > 0 {
		return detail
	}
	return FallbackRegisterError
}

// FailedCollectionMessage is shown in place of a collection whose read failed.
func FailedCollectionMessage(collection string) string {
	return "Could not load " + collection + "."
}

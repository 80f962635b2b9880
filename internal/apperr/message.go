package apperr

import "errors"

// Message renders err as a sentence that can be shown to the end user.
func Message(err error) string {
	if err == nil {
		return ""
	}

	var v *ValidationError
	if errors.As(err, &v) {
		return "Please check your input: " + v.Error() + "."
	}

	if errors.Is(err, ErrNotFound) {
		return "The requested record does not exist."
	}

	if kind, ok := AuthKindOf(err); ok {
		switch kind {
		case AuthInvalidCredentials:
			return "The email or password is incorrect."
		case AuthEmailInUse:
			return "An account with this email already exists."
		case AuthInvalidInput:
			return "Please enter a valid email and a password of at least 6 characters."
		case AuthUnavailable:
			return "Sign-in is temporarily unavailable. Please try again."
		}

		return "Authentication failed. Please try again."
	}

	if kind, ok := RemoteKindOf(err); ok {
		switch kind {
		case RemoteUnauthorized:
			return "You are not allowed to request a projection. Please sign in again."
		case RemoteServiceUnavailable:
			return "The projection service is unavailable. Please try again later."
		case RemoteMalformedResponse:
			return "The projection service returned an unexpected result."
		}

		return "The projection could not be computed."
	}

	if IsPersistence(err) {
		return "Your data could not be saved or loaded. Please try again."
	}

	return "Something went wrong. Please try again."
}

package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrEmailTaken         ErrCode = "EMAIL_TAKEN"
	ErrSessionActive      ErrCode = "SESSION_ALREADY_ACTIVE"
	ErrSessionInvalidated ErrCode = "SESSION_INVALIDATED"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenExpired       ErrCode = "TOKEN_EXPIRED"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden       ErrCode = "FORBIDDEN"
	ErrAdminAccessOnly ErrCode = "ADMIN_ACCESS_ONLY"
	ErrUserAccessOnly  ErrCode = "USER_ACCESS_ONLY"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"
	ErrConflict ErrCode = "CONFLICT"

	// ─── Assessment-specific ───────────────────────────────────────────
	ErrBankUnavailable     ErrCode = "QUESTION_BANK_UNAVAILABLE"
	ErrSessionNotFound     ErrCode = "SESSION_NOT_FOUND"
	ErrSessionNotRunning   ErrCode = "SESSION_NOT_RUNNING"
	ErrSessionNotFinished  ErrCode = "SESSION_NOT_FINISHED"
	ErrSessionAcknowledged ErrCode = "SESSION_ACKNOWLEDGED"
	ErrSessionInProgress   ErrCode = "SESSION_IN_PROGRESS"
	ErrNoSelection         ErrCode = "NO_OPTION_SELECTED"
	ErrInvalidOption       ErrCode = "INVALID_OPTION"
	ErrFullscreenRequired  ErrCode = "FULLSCREEN_REQUIRED"

	// ─── Training ──────────────────────────────────────────────────────
	ErrModuleLocked  ErrCode = "MODULE_LOCKED"
	ErrUnknownModule ErrCode = "UNKNOWN_MODULE"
	ErrCareerUnknown ErrCode = "UNKNOWN_CAREER"
	ErrCareerNotSet  ErrCode = "CAREER_NOT_SELECTED"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Email or password is incorrect."
	case ErrEmailTaken:
		return "An account with this email already exists."
	case ErrSessionActive:
		return "You are already logged in on another device."
	case ErrSessionInvalidated:
		return "Your login session has ended. Please log in again."
	case ErrTokenRequired:
		return "An authentication token is required."
	case ErrTokenInvalid:
		return "The authentication token is invalid."
	case ErrTokenExpired:
		return "The authentication token has expired."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "You do not have permission to access this resource."
	case ErrAdminAccessOnly:
		return "This resource is restricted to administrators."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."
	case ErrConflict:
		return "Resource already exists."

	// ─── Assessment-specific ───────────────────────────────────────────
	case ErrBankUnavailable:
		return "The question bank could not be loaded. Please retry."
	case ErrSessionNotFound:
		return "No assessment session found."
	case ErrSessionNotRunning:
		return "The assessment session is not running."
	case ErrSessionNotFinished:
		return "The assessment session has not finished yet."
	case ErrSessionAcknowledged:
		return "This session's result was already acknowledged."
	case ErrSessionInProgress:
		return "Another assessment session is still in progress."
	case ErrNoSelection:
		return "Select an option before submitting."
	case ErrInvalidOption:
		return "The selected option is out of range."
	case ErrFullscreenRequired:
		return "Full-screen mode is required to start this test."

	// ─── Training ──────────────────────────────────────────────────────
	case ErrModuleLocked:
		return "This training module is still locked."
	case ErrUnknownModule:
		return "Unknown training module."
	case ErrCareerUnknown:
		return "Unknown career path."
	case ErrCareerNotSet:
		return "Select a career path first."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}

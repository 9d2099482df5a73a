package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenExpired       ErrCode = "TOKEN_EXPIRED"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrAdminAccessOnly ErrCode = "ADMIN_ACCESS_ONLY"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound         ErrCode = "NOT_FOUND"
	ErrConflict         ErrCode = "CONFLICT"
	ErrDependencyExists ErrCode = "DEPENDENCY_EXISTS"

	// ─── Attendance ────────────────────────────────────────────────────
	ErrInvalidStatus   ErrCode = "INVALID_STATUS"
	ErrInvalidCategory ErrCode = "INVALID_CATEGORY"
	ErrTeacherNotFound ErrCode = "TEACHER_NOT_FOUND"

	// ─── Backup / restore ──────────────────────────────────────────────
	ErrMissingMetadata    ErrCode = "MISSING_METADATA"
	ErrMissingVersionInfo ErrCode = "MISSING_VERSION_INFO"
	ErrMissingCollection  ErrCode = "MISSING_COLLECTION"
	ErrRestoreFailed      ErrCode = "RESTORE_FAILED"
	ErrFileTooLarge       ErrCode = "FILE_TOO_LARGE"

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
		return "Username or password is incorrect."
	case ErrTokenRequired:
		return "An authentication token is required."
	case ErrTokenInvalid:
		return "The authentication token is invalid."
	case ErrTokenExpired:
		return "The authentication token has expired."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrAdminAccessOnly:
		return "This resource is restricted to administrators."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "The ID format is invalid."
	case ErrInvalidPayload:
		return "The request payload is invalid."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "The resource was not found."
	case ErrConflict:
		return "The resource already exists."
	case ErrDependencyExists:
		return "The record cannot be deleted because other data still references it."

	// ─── Attendance ────────────────────────────────────────────────────
	case ErrInvalidStatus:
		return "The attendance status is not recognized."
	case ErrInvalidCategory:
		return "The absence category is not recognized."
	case ErrTeacherNotFound:
		return "No teacher matches the given staff code."

	// ─── Backup / restore ──────────────────────────────────────────────
	case ErrMissingMetadata:
		return "The snapshot is missing its metadata or data section."
	case ErrMissingVersionInfo:
		return "The snapshot metadata is missing version information."
	case ErrMissingCollection:
		return "The snapshot is missing a required collection."
	case ErrRestoreFailed:
		return "The restore could not be completed. Existing data is unchanged."
	case ErrFileTooLarge:
		return "The uploaded file exceeds the size limit."

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

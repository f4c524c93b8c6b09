package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrTokenRequired ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid  ErrCode = "TOKEN_INVALID"
	ErrTokenExpired  ErrCode = "TOKEN_EXPIRED"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden         ErrCode = "FORBIDDEN"
	ErrStudentAccessOnly ErrCode = "STUDENT_ACCESS_ONLY"
	ErrStaffAccessOnly   ErrCode = "STAFF_ACCESS_ONLY"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidDate    ErrCode = "INVALID_DATE"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound         ErrCode = "NOT_FOUND"
	ErrConflict         ErrCode = "CONFLICT"
	ErrDuplicateNIS     ErrCode = "DUPLICATE_NIS"
	ErrDependencyExists ErrCode = "DEPENDENCY_EXISTS"

	// ─── Companions ────────────────────────────────────────────────────
	ErrAlreadyPublished     ErrCode = "ALREADY_PUBLISHED"
	ErrNotPublished         ErrCode = "NOT_PUBLISHED"
	ErrLockedGroupInvalid   ErrCode = "LOCKED_GROUP_INVALID"
	ErrInsufficientStudents ErrCode = "INSUFFICIENT_STUDENTS"
	ErrNotAssigned          ErrCode = "NOT_ASSIGNED"
	ErrClassInactive        ErrCode = "CLASS_INACTIVE"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrTokenRequired:
		return "Token autentikasi diperlukan."
	case ErrTokenInvalid:
		return "Token autentikasi tidak valid."
	case ErrTokenExpired:
		return "Token autentikasi telah kedaluwarsa."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "Anda tidak memiliki izin untuk mengakses sumber daya ini."
	case ErrStudentAccessOnly:
		return "Sumber daya ini terbatas untuk santri."
	case ErrStaffAccessOnly:
		return "Sumber daya ini terbatas untuk pengurus."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validasi gagal. Silakan periksa masukan Anda."
	case ErrInvalidID:
		return "Format ID tidak valid."
	case ErrInvalidDate:
		return "Format tanggal tidak valid. Gunakan YYYY-MM-DD."
	case ErrInvalidPayload:
		return "Payload permintaan tidak valid."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Sumber daya tidak ditemukan."
	case ErrConflict:
		return "Sumber daya sudah ada."
	case ErrDuplicateNIS:
		return "NIS tersebut sudah terdaftar."
	case ErrDependencyExists:
		return "Data tidak dapat dihapus karena masih digunakan oleh data lain."

	// ─── Companions ────────────────────────────────────────────────────
	case ErrAlreadyPublished:
		return "Pembagian teman muraja'ah untuk tanggal ini sudah dipublikasikan."
	case ErrNotPublished:
		return "Pembagian teman muraja'ah untuk tanggal ini belum dipublikasikan."
	case ErrLockedGroupInvalid:
		return "Kelompok yang dikunci tidak valid."
	case ErrInsufficientStudents:
		return "Santri yang memenuhi syarat kurang dari 2 orang."
	case ErrNotAssigned:
		return "Anda belum terdaftar di ruang muraja'ah untuk tanggal ini."
	case ErrClassInactive:
		return "Halaqah ini sedang tidak aktif."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Terlalu banyak permintaan. Silakan coba lagi nanti."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "Terjadi kesalahan server internal."
	default:
		return "Terjadi kesalahan yang tidak terduga."
	}
}

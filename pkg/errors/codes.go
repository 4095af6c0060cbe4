package errors


// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeConflict           ErrorCode = "COMMON_006"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeTimeout            ErrorCode = "COMMON_009"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodeCacheError         ErrorCode = "COMMON_013"
	ErrCodeExternalService    ErrorCode = "COMMON_014"
	ErrCodeNotImplemented     ErrorCode = "COMMON_016"
)

// Aliases used at call sites.
const (
	CodeUnknown      = ErrorCode("")
	CodeOK           = ErrorCode("OK")
	CodeInternal     = ErrCodeInternal
	CodeInvalidParam = ErrCodeBadRequest
	CodeNotFound     = ErrCodeNotFound
	CodeConflict     = ErrCodeConflict
)

// Cross-reference graph error codes.
const (
	ErrCodeDuplicateCanonicalID      ErrorCode = "XREF_001"
	ErrCodeConflictingCrossReference ErrorCode = "XREF_002"
	ErrCodeDanglingReference         ErrorCode = "XREF_003"
	ErrCodeEntityNotFound            ErrorCode = "XREF_004"
	ErrCodeNamespaceUnknown          ErrorCode = "XREF_005"
)

// Source error codes.
const (
	ErrCodeSourceUnavailable ErrorCode = "SRC_001"
	ErrCodeParseSkip         ErrorCode = "SRC_002"
	ErrCodeSourceKindInvalid ErrorCode = "SRC_003"
)

// Build pipeline error codes.
const (
	ErrCodeBuildInProgress ErrorCode = "BLD_001"
	ErrCodeBuildFailed     ErrorCode = "BLD_002"
	ErrCodeLockLost        ErrorCode = "BLD_003"
)

// Snapshot store error codes.
const (
	ErrCodeSnapshotNotFound    ErrorCode = "SNAP_001"
	ErrCodeSnapshotWriteFailed ErrorCode = "SNAP_002"
	ErrCodeSnapshotNotLoaded   ErrorCode = "SNAP_003"
)

// ErrorCodeMessage maps ErrorCodes to default messages.  AppError.Error
// falls back to it when Message is empty.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeNotFound:           "resource not found",
	ErrCodeConflict:           "resource conflict",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeTimeout:            "request timeout",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeCacheError:         "cache error",
	ErrCodeExternalService:    "external service error",
	ErrCodeNotImplemented:     "not implemented",

	ErrCodeDuplicateCanonicalID:      "canonical id defined twice with different content",
	ErrCodeConflictingCrossReference: "cross-reference maps to more than one canonical id",
	ErrCodeDanglingReference:         "cross-reference targets an undefined canonical id",
	ErrCodeEntityNotFound:            "entity not found",
	ErrCodeNamespaceUnknown:          "unknown namespace",

	ErrCodeSourceUnavailable: "source unavailable",
	ErrCodeParseSkip:         "malformed line skipped",
	ErrCodeSourceKindInvalid: "unsupported source kind",

	ErrCodeBuildInProgress: "build already in progress",
	ErrCodeBuildFailed:     "build failed",
	ErrCodeLockLost:        "build lock lost",

	ErrCodeSnapshotNotFound:    "snapshot not found",
	ErrCodeSnapshotWriteFailed: "snapshot write failed",
	ErrCodeSnapshotNotLoaded:   "no snapshot loaded",
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

//Personal.AI order the ending

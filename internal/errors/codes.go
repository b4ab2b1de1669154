// Package errors provides structured error handling for evemt.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: IO errors (archives, manifests, pack files)
//   - 4XX: Validation errors (catalog conflicts, unknown identifiers)
//   - 5XX: Internal errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryIO indicates file and disk I/O errors.
	CategoryIO Category = "IO"
	// CategoryValidation indicates input validation and catalog conflict errors.
	CategoryValidation Category = "VALIDATION"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates unrecoverable error, must abort.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates operation failed but the process can continue.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates degraded operation, continuing.
	SeverityWarning Severity = "WARNING"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigNotFound = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  = "ERR_102_CONFIG_INVALID"

	// IO errors (200-299)
	ErrCodeIO              = "ERR_201_IO"
	ErrCodeArchiveOpen     = "ERR_202_ARCHIVE_OPEN"
	ErrCodeTargetExists    = "ERR_203_TARGET_EXISTS"
	ErrCodeDirectoryExists = "ERR_204_DIRECTORY_EXISTS"
	ErrCodeManifestMissing = "ERR_205_MANIFEST_MISSING"
	ErrCodeManifestParse   = "ERR_206_MANIFEST_PARSE"
	ErrCodeIndexLoad       = "ERR_207_INDEX_LOAD"

	// Validation errors (400-499)
	ErrCodeInvalidInput        = "ERR_401_INVALID_INPUT"
	ErrCodeInvalidFileName     = "ERR_402_INVALID_FILE_NAME"
	ErrCodeDuplicateIdentifier = "ERR_403_DUPLICATE_IDENTIFIER"
	ErrCodeNotFound            = "ERR_404_NOT_FOUND"
	ErrCodeNoActivePack        = "ERR_405_NO_ACTIVE_PACK"
	ErrCodeUnknownEntityKind   = "ERR_406_UNKNOWN_ENTITY_KIND"

	// Internal errors (500-599)
	ErrCodeInternal     = "ERR_501_INTERNAL"
	ErrCodeRegistration = "ERR_502_REGISTRATION_FAILED"
)

// kinds maps codes to the short error kind names carried by import result events.
var kinds = map[string]string{
	ErrCodeConfigNotFound:      "ConfigNotFound",
	ErrCodeConfigInvalid:       "ConfigInvalid",
	ErrCodeIO:                  "IoError",
	ErrCodeArchiveOpen:         "ArchiveOpenError",
	ErrCodeTargetExists:        "TargetExistsError",
	ErrCodeDirectoryExists:     "DirectoryExists",
	ErrCodeManifestMissing:     "ManifestMissing",
	ErrCodeManifestParse:       "ManifestParseError",
	ErrCodeIndexLoad:           "IndexLoadError",
	ErrCodeInvalidInput:        "InvalidInput",
	ErrCodeInvalidFileName:     "InvalidFileName",
	ErrCodeDuplicateIdentifier: "DuplicateIdentifier",
	ErrCodeNotFound:            "NotFound",
	ErrCodeNoActivePack:        "NoActivePack",
	ErrCodeUnknownEntityKind:   "UnknownEntityKind",
	ErrCodeInternal:            "Internal",
	ErrCodeRegistration:        "RegistrationError",
}

// Kind returns the short kind name for the first AppError in err's chain.
// Errors without a code report "Internal".
func Kind(err error) string {
	if err == nil {
		return ""
	}
	if k, ok := kinds[GetCode(err)]; ok {
		return k
	}
	return kinds[ErrCodeInternal]
}

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}

	// Extract numeric portion (e.g., "101" from "ERR_101_CONFIG_NOT_FOUND")
	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryIO
	case '4':
		return CategoryValidation
	default:
		return CategoryInternal
	}
}

// severityFromCode determines severity based on error code.
func severityFromCode(code string) Severity {
	switch code {
	case ErrCodeInternal:
		return SeverityFatal
	case ErrCodeNoActivePack:
		return SeverityWarning
	}
	return SeverityError
}

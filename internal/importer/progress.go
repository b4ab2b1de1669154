package importer

import (
	apperrors "github.com/Embers-of-the-Fire/evemt/internal/errors"
)

// Stage is the state of an import task.
type Stage string

const (
	StageStart      Stage = "Start"
	StageExtracting Stage = "Extracting"
	StageComplete   Stage = "Complete"
	StageError      Stage = "Error"
)

// Terminal reports whether no further progress follows s.
func (s Stage) Terminal() bool {
	return s == StageComplete || s == StageError
}

// Message keys carried by progress events. Display text is the UI's concern.
const (
	KeyStart           = "pack.progress.start"
	KeyDirectoryExists = "pack.progress.directory_exists"
	KeyOpeningFile     = "pack.progress.opening_file"
	KeyCreatingDir     = "pack.progress.creating_directory"
	KeyExtractingFiles = "pack.progress.extracting_files"
	KeyExtractingFile  = "pack.progress.extracting_file"
	KeyComplete        = "pack.progress.complete"
	KeyError           = "pack.progress.error"
)

// ProgressTotal is the fixed scale of Progress.Current.
const ProgressTotal = 100

// Progress is one progress event. Current is on a 0..ProgressTotal scale.
type Progress struct {
	Stage         Stage             `json:"stage"`
	Current       int               `json:"current"`
	Total         int               `json:"total"`
	MessageKey    string            `json:"messageKey,omitempty"`
	MessageParams map[string]string `json:"messageParams,omitempty"`
}

// ErrorKind classifies a failed import for the UI.
type ErrorKind string

const (
	ErrorDirectoryExists ErrorKind = "DirectoryExists"
	ErrorInvalidFileName ErrorKind = "InvalidFileName"
	ErrorArchiveOpen     ErrorKind = "ArchiveOpenError"
	ErrorIO              ErrorKind = "IoError"
	ErrorRegistration    ErrorKind = "RegistrationError"
)

// Result is the single terminal outcome of a task.
type Result struct {
	Success bool `json:"success"`
	// PackName is the pack directory name (the archive stem).
	PackName string `json:"packName,omitempty"`
	// PackID is the manifest identifier of the registered pack.
	PackID      string            `json:"packId,omitempty"`
	ErrorKind   ErrorKind         `json:"errorKind,omitempty"`
	ErrorParams map[string]string `json:"errorParams,omitempty"`

	// Err is the underlying failure, for in-process callers.
	Err error `json:"-"`
}

// Event is one item of a task's event stream: exactly one of Progress or
// Result is set. The Result event is always last.
type Event struct {
	TaskID   string    `json:"taskId"`
	Progress *Progress `json:"progress,omitempty"`
	Result   *Result   `json:"result,omitempty"`
}

func kindOf(err error) ErrorKind {
	switch apperrors.GetCode(err) {
	case apperrors.ErrCodeDirectoryExists, apperrors.ErrCodeTargetExists:
		return ErrorDirectoryExists
	case apperrors.ErrCodeInvalidFileName:
		return ErrorInvalidFileName
	case apperrors.ErrCodeArchiveOpen:
		return ErrorArchiveOpen
	case apperrors.ErrCodeRegistration:
		return ErrorRegistration
	default:
		return ErrorIO
	}
}

func failure(err error) Result {
	params := map[string]string{"error": err.Error()}
	for k, v := range apperrors.GetDetails(err) {
		params[k] = v
	}
	return Result{
		ErrorKind:   kindOf(err),
		ErrorParams: params,
		Err:         err,
	}
}

package relocator

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"
)

// ErrorReason categorizes why a move failed
type ErrorReason int

const (
	ErrorPermissionDenied ErrorReason = iota
	ErrorCrossDevice
	ErrorFileNotFound
	ErrorDestinationExists
	ErrorFileInUse
	ErrorUnknown
)

// String returns a human-readable error reason
func (e ErrorReason) String() string {
	switch e {
	case ErrorPermissionDenied:
		return "Permission denied"
	case ErrorCrossDevice:
		return "Cross-device move"
	case ErrorFileNotFound:
		return "File not found"
	case ErrorDestinationExists:
		return "Destination exists"
	case ErrorFileInUse:
		return "File is in use"
	case ErrorUnknown:
		return "Unknown error"
	default:
		return "Unspecified error"
	}
}

// MoveError represents a file that could not be relocated
type MoveError struct {
	Path     string
	Dest     string
	Reason   ErrorReason
	Original error
}

// Error implements the error interface
func (e *MoveError) Error() string {
	if e.Dest == "" {
		return fmt.Sprintf("%s: %s (%v)", e.Path, e.Reason, e.Original)
	}
	return fmt.Sprintf("%s -> %s: %s (%v)", e.Path, e.Dest, e.Reason, e.Original)
}

func (e *MoveError) Unwrap() error {
	return e.Original
}

// UserMessage returns a user-friendly error message
func (e *MoveError) UserMessage() string {
	switch e.Reason {
	case ErrorPermissionDenied:
		return fmt.Sprintf("⚠️  Permission denied: %s", e.Path)
	case ErrorCrossDevice:
		return fmt.Sprintf("⚠️  Cannot move across filesystems: %s", e.Path)
	case ErrorFileNotFound:
		return fmt.Sprintf("ℹ️  Vanished before it could be moved: %s", e.Path)
	case ErrorDestinationExists:
		return fmt.Sprintf("⚠️  No free name for %s in %s", e.Path, e.Dest)
	case ErrorFileInUse:
		return fmt.Sprintf("⚠️  File is being used: %s (close the application and try again)", e.Path)
	default:
		return fmt.Sprintf("❌ Error moving %s: %v", e.Path, e.Original)
	}
}

// CategorizeError analyzes a move failure and returns a categorized MoveError
func CategorizeError(path, dest string, err error) *MoveError {
	if err == nil {
		return nil
	}

	moveErr := &MoveError{
		Path:     path,
		Dest:     dest,
		Original: err,
		Reason:   ErrorUnknown,
	}

	if errors.Is(err, errNoFreeName) {
		moveErr.Reason = ErrorDestinationExists
		return moveErr
	}

	// Check syscall errors first: EXDEV has no os-level sentinel
	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case syscall.EACCES, syscall.EPERM:
			moveErr.Reason = ErrorPermissionDenied
		case syscall.EXDEV:
			moveErr.Reason = ErrorCrossDevice
		case syscall.ENOENT:
			moveErr.Reason = ErrorFileNotFound
		case syscall.EEXIST, syscall.ENOTEMPTY:
			moveErr.Reason = ErrorDestinationExists
		case syscall.EBUSY, syscall.ETXTBSY:
			moveErr.Reason = ErrorFileInUse
		}
		return moveErr
	}

	switch {
	case os.IsNotExist(err):
		moveErr.Reason = ErrorFileNotFound
	case os.IsPermission(err):
		moveErr.Reason = ErrorPermissionDenied
	case os.IsExist(err):
		moveErr.Reason = ErrorDestinationExists
	}
	return moveErr
}

// GroupErrors groups move errors by reason
func GroupErrors(errs []*MoveError) map[ErrorReason][]*MoveError {
	grouped := make(map[ErrorReason][]*MoveError)
	for _, err := range errs {
		grouped[err.Reason] = append(grouped[err.Reason], err)
	}
	return grouped
}

// FormatErrorSummary creates a user-friendly summary of move errors
func FormatErrorSummary(errs []*MoveError) string {
	if len(errs) == 0 {
		return ""
	}

	grouped := GroupErrors(errs)
	var b strings.Builder
	b.WriteString("\n⚠️  Files that could not be moved:\n")

	if perms, ok := grouped[ErrorPermissionDenied]; ok {
		fmt.Fprintf(&b, "   ├─ Permission denied: %d files\n", len(perms))
		b.WriteString("   │  └─ Tip: Check ownership of the folder being organized\n")
	}
	if xdev, ok := grouped[ErrorCrossDevice]; ok {
		fmt.Fprintf(&b, "   ├─ Cross-device: %d files\n", len(xdev))
		b.WriteString("   │  └─ Tip: A subfolder is a separate mount; organize it on its own\n")
	}
	if busy, ok := grouped[ErrorFileInUse]; ok {
		fmt.Fprintf(&b, "   ├─ File in use: %d files\n", len(busy))
	}
	if exists, ok := grouped[ErrorDestinationExists]; ok {
		fmt.Fprintf(&b, "   ├─ Name collisions: %d files\n", len(exists))
	}
	if gone, ok := grouped[ErrorFileNotFound]; ok {
		fmt.Fprintf(&b, "   ├─ Vanished: %d files\n", len(gone))
	}
	if unknown, ok := grouped[ErrorUnknown]; ok {
		fmt.Fprintf(&b, "   └─ Other errors: %d files\n", len(unknown))
	}

	return b.String()
}

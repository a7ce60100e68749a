package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents an origami error code.
type ErrorCode string

const (
	ErrInvalidRequest     ErrorCode = "INVALID_REQUEST"                 // 400
	ErrAmbiguousAddress   ErrorCode = "AMBIGUOUS_ADDRESSING"            // 400
	ErrInvalidSplitIndex  ErrorCode = "INVALID_SPLIT_INDEX"             // 400
	ErrIndexOutOfRange    ErrorCode = "INDEX_OUT_OF_RANGE"              // 400
	ErrNotFound           ErrorCode = "NOT_FOUND"                       // 404
	ErrNameAlreadyExists  ErrorCode = "NAME_ALREADY_EXISTS"             // 409
	ErrIDAlreadyExists    ErrorCode = "ID_ALREADY_EXISTS"               // 409
	ErrOverlap            ErrorCode = "OVERLAP"                         // 409
	ErrDanglingConnection ErrorCode = "DANGLING_CONNECTION"             // 409
	ErrTerminalConnected  ErrorCode = "TERMINAL_ALREADY_CONNECTED"      // 409
	ErrDisconnectedCycle  ErrorCode = "WOULD_CREATE_DISCONNECTED_CYCLE" // 409
	ErrNotConnected       ErrorCode = "NOT_CONNECTED"                   // 409
	ErrNotAdjacent        ErrorCode = "NOT_ADJACENT"                    // 409
	ErrHelixNotEmpty      ErrorCode = "HELIX_NOT_EMPTY"                 // 409
	ErrInvalidSnapshot    ErrorCode = "INVALID_SNAPSHOT"                // 422
	ErrSequenceTruncated  ErrorCode = "SEQUENCE_TRUNCATED"              // warning only
	ErrCancelled          ErrorCode = "CANCELLED"                       // 499
	ErrInternal           ErrorCode = "INTERNAL"                        // 500
)

// OrigamiError represents a structured error with code, status, and details.
type OrigamiError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *OrigamiError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *OrigamiError {
	return &OrigamiError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewAmbiguousAddressing creates a 400 error when both id and name are given.
func NewAmbiguousAddressing() *OrigamiError {
	return &OrigamiError{
		Code:    ErrAmbiguousAddress,
		Status:  400,
		Message: "specify either id or name, not both",
	}
}

// NewInvalidSplitIndex creates a 400 error for a split index at or outside a strand's interior.
func NewInvalidSplitIndex(strand int64, idx, low, high int) *OrigamiError {
	return &OrigamiError{
		Code:    ErrInvalidSplitIndex,
		Status:  400,
		Message: fmt.Sprintf("cannot split strand %d [%d,%d] at %d", strand, low, high, idx),
		Details: map[string]any{"strand": strand, "idx": idx, "low_idx": low, "high_idx": high},
	}
}

// NewIndexOutOfRange creates a 400 error for a range outside a helix's index domain.
func NewIndexOutOfRange(helix, low, high, minIdx, maxIdx int) *OrigamiError {
	return &OrigamiError{
		Code:    ErrIndexOutOfRange,
		Status:  400,
		Message: fmt.Sprintf("range [%d,%d] outside helix %d domain [%d,%d]", low, high, helix, minIdx, maxIdx),
		Details: map[string]any{"helix": helix, "low_idx": low, "high_idx": high, "min_idx": minIdx, "max_idx": maxIdx},
	}
}

// NewNotFound creates a 404 error for a missing helix, strand, oligo or design.
func NewNotFound(kind, identifier string) *OrigamiError {
	return &OrigamiError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("%s not found: %s", kind, identifier),
		Details: map[string]any{"kind": kind, "identifier": identifier},
	}
}

// NewNameAlreadyExists creates a 409 error for design name collisions.
func NewNameAlreadyExists(name string) *OrigamiError {
	return &OrigamiError{
		Code:    ErrNameAlreadyExists,
		Status:  409,
		Message: fmt.Sprintf("design with name %q already exists", name),
		Details: map[string]any{"name": name},
	}
}

// NewIDAlreadyExists creates a 409 error when an imported design id is taken.
func NewIDAlreadyExists(id string) *OrigamiError {
	return &OrigamiError{
		Code:    ErrIDAlreadyExists,
		Status:  409,
		Message: fmt.Sprintf("design with id %q already exists", id),
		Details: map[string]any{"id": id},
	}
}

// NewOverlap creates a 409 error when a strand would cover an occupied range.
func NewOverlap(helix int, low, high int, existing int64) *OrigamiError {
	return &OrigamiError{
		Code:    ErrOverlap,
		Status:  409,
		Message: fmt.Sprintf("range [%d,%d] on helix %d overlaps strand %d", low, high, helix, existing),
		Details: map[string]any{"helix": helix, "low_idx": low, "high_idx": high, "existing": existing},
	}
}

// NewDanglingConnection creates a 409 error when removing a strand that still has crossovers.
func NewDanglingConnection(strand int64) *OrigamiError {
	return &OrigamiError{
		Code:    ErrDanglingConnection,
		Status:  409,
		Message: fmt.Sprintf("strand %d still has live connections", strand),
		Details: map[string]any{"strand": strand},
	}
}

// NewTerminalAlreadyConnected creates a 409 error for a crossover at an occupied terminus.
func NewTerminalAlreadyConnected(strand int64, end string) *OrigamiError {
	return &OrigamiError{
		Code:    ErrTerminalConnected,
		Status:  409,
		Message: fmt.Sprintf("%s end of strand %d is already connected", end, strand),
		Details: map[string]any{"strand": strand, "end": end},
	}
}

// NewDisconnectedCycle creates a 409 error for a same-oligo link that is not a circular closure.
func NewDisconnectedCycle(strand5p, strand3p int64) *OrigamiError {
	return &OrigamiError{
		Code:    ErrDisconnectedCycle,
		Status:  409,
		Message: fmt.Sprintf("connecting strand %d to strand %d would create a disconnected cycle", strand5p, strand3p),
		Details: map[string]any{"strand5p": strand5p, "strand3p": strand3p},
	}
}

// NewNotConnected creates a 409 error for crossover removal at a non-existent junction.
func NewNotConnected(strand5p, strand3p int64) *OrigamiError {
	return &OrigamiError{
		Code:    ErrNotConnected,
		Status:  409,
		Message: fmt.Sprintf("strand %d 3' end is not connected to strand %d 5' end", strand5p, strand3p),
		Details: map[string]any{"strand5p": strand5p, "strand3p": strand3p},
	}
}

// NewNotAdjacent creates a 409 error for a merge of strands not joined by an internal crossover.
func NewNotAdjacent(left, right int64) *OrigamiError {
	return &OrigamiError{
		Code:    ErrNotAdjacent,
		Status:  409,
		Message: fmt.Sprintf("strands %d and %d are not adjacent", left, right),
		Details: map[string]any{"left": left, "right": right},
	}
}

// NewHelixNotEmpty creates a 409 error when removing a helix that still holds strands.
func NewHelixNotEmpty(helix, strands int) *OrigamiError {
	return &OrigamiError{
		Code:    ErrHelixNotEmpty,
		Status:  409,
		Message: fmt.Sprintf("helix %d still holds %d strands", helix, strands),
		Details: map[string]any{"helix": helix, "strands": strands},
	}
}

// NewInvalidSnapshot creates a 422 error for a flat description that fails validation.
func NewInvalidSnapshot(reason error) *OrigamiError {
	return &OrigamiError{
		Code:    ErrInvalidSnapshot,
		Status:  422,
		Message: fmt.Sprintf("invalid design description: %v", reason),
	}
}

// NewSequenceTruncated creates the non-fatal diagnostic reported when an applied
// sequence is longer than its oligo.
func NewSequenceTruncated(oligo int64, max, actual int) *OrigamiError {
	return &OrigamiError{
		Code:    ErrSequenceTruncated,
		Status:  200,
		Message: fmt.Sprintf("sequence truncated to oligo %d length: %d bases (given %d)", oligo, max, actual),
		Details: map[string]any{"oligo": oligo, "max_len": max, "actual_len": actual},
	}
}

// NewCancelled creates a 499 error when the caller's context ends mid-operation.
func NewCancelled(op string) *OrigamiError {
	return &OrigamiError{
		Code:    ErrCancelled,
		Status:  499,
		Message: fmt.Sprintf("%s cancelled", op),
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
// The original error is kept in Details for logging; the message stays generic.
func NewInternal(err error) *OrigamiError {
	details := map[string]any{}
	if err != nil {
		details["internal_error"] = err.Error()
	}
	return &OrigamiError{
		Code:    ErrInternal,
		Status:  500,
		Message: "an internal error occurred",
		Details: details,
	}
}

// Is checks if an error (or any error it wraps) is an OrigamiError with the given code.
func Is(err error, code ErrorCode) bool {
	var oErr *OrigamiError
	if stderrors.As(err, &oErr) {
		return oErr.Code == code
	}
	return false
}

// Package warpbench structured error types for runtime failures
package warpbench

import (
	"fmt"
)

// ErrorType represents categories of runtime errors
type ErrorType int

const (
	// Memory errors
	ErrTypeMemory ErrorType = iota
	// Invalid argument errors
	ErrTypeInvalidArg
	// Kernel launch errors
	ErrTypeLaunch
	// Device errors
	ErrTypeDevice
)

// RuntimeError represents a structured error with the failing operation
// attached. Every device API call reports failures through this type so the
// driver can treat any of them as fatal uniformly.
type RuntimeError struct {
	Type    ErrorType
	Op      string // Operation that failed
	Message string // Human-readable message
	Err     error  // Underlying error if any
}

// Error implements the error interface
func (e *RuntimeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("warpbench %s error in %s: %s (caused by: %v)",
			e.Type.String(), e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("warpbench %s error in %s: %s",
		e.Type.String(), e.Op, e.Message)
}

// Unwrap allows error chain inspection
func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// String returns the error type as a string
func (t ErrorType) String() string {
	switch t {
	case ErrTypeMemory:
		return "Memory"
	case ErrTypeInvalidArg:
		return "InvalidArgument"
	case ErrTypeLaunch:
		return "Launch"
	case ErrTypeDevice:
		return "Device"
	default:
		return "Unknown"
	}
}

// Common error constructors

// NewMemoryError creates a memory-related error
func NewMemoryError(op string, message string, err error) error {
	return &RuntimeError{
		Type:    ErrTypeMemory,
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// NewInvalidArgError creates an invalid argument error
func NewInvalidArgError(op string, message string) error {
	return &RuntimeError{
		Type:    ErrTypeInvalidArg,
		Op:      op,
		Message: message,
	}
}

// NewLaunchError creates a kernel launch error
func NewLaunchError(op string, message string, err error) error {
	return &RuntimeError{
		Type:    ErrTypeLaunch,
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// NewDeviceError creates a device error
func NewDeviceError(op string, message string) error {
	return &RuntimeError{
		Type:    ErrTypeDevice,
		Op:      op,
		Message: message,
	}
}

// Common pre-defined errors

var (
	// ErrInvalidSize indicates an invalid allocation size
	ErrInvalidSize = NewInvalidArgError("Malloc", "size must be positive")

	// ErrDoubleFree indicates a double free attempt
	ErrDoubleFree = NewMemoryError("Free", "double free detected", nil)

	// ErrInvalidDevice indicates an invalid device ID
	ErrInvalidDevice = NewInvalidArgError("SetDevice", "invalid device ID")
)

// IsMemoryError checks if an error is a memory error
func IsMemoryError(err error) bool {
	if e, ok := err.(*RuntimeError); ok {
		return e.Type == ErrTypeMemory
	}
	return false
}

// IsInvalidArgError checks if an error is an invalid argument error
func IsInvalidArgError(err error) bool {
	if e, ok := err.(*RuntimeError); ok {
		return e.Type == ErrTypeInvalidArg
	}
	return false
}

// IsLaunchError checks if an error is a kernel launch error
func IsLaunchError(err error) bool {
	if e, ok := err.(*RuntimeError); ok {
		return e.Type == ErrTypeLaunch
	}
	return false
}

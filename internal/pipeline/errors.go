package pipeline

import (
	"errors"
	"fmt"
)

// ErrorCode classifies a pipeline failure.
type ErrorCode string

const (
	CodeInputNotFound ErrorCode = "INPUT_NOT_FOUND"
	CodeDecode        ErrorCode = "IMAGE_DECODE_FAILED"
	CodeOCR           ErrorCode = "OCR_FAILED"
	CodeOutputWrite   ErrorCode = "OUTPUT_WRITE_FAILED"
)

// Sentinels for errors.Is. A *ProcessingError matches the sentinel of its code.
var (
	ErrInputNotFound = errors.New("input not found")
	ErrDecode        = errors.New("image decode failed")
	ErrOCR           = errors.New("ocr failed")
	ErrOutputWrite   = errors.New("output write failed")
)

// ProcessingError describes a failure tied to a file or directory.
type ProcessingError struct {
	Code  ErrorCode
	File  string
	Cause error
}

func (e *ProcessingError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.File, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.File)
}

func (e *ProcessingError) Unwrap() error {
	return e.Cause
}

// Is matches the sentinel error for e.Code.
func (e *ProcessingError) Is(target error) bool {
	return target != nil && target == e.Code.sentinel()
}

// Fatal reports whether the error aborts the whole run. Decode and OCR
// failures only skip the offending image.
func (e *ProcessingError) Fatal() bool {
	switch e.Code {
	case CodeDecode, CodeOCR:
		return false
	default:
		return true
	}
}

func (c ErrorCode) sentinel() error {
	switch c {
	case CodeInputNotFound:
		return ErrInputNotFound
	case CodeDecode:
		return ErrDecode
	case CodeOCR:
		return ErrOCR
	case CodeOutputWrite:
		return ErrOutputWrite
	}
	return nil
}

func newError(code ErrorCode, file string, cause error) *ProcessingError {
	return &ProcessingError{Code: code, File: file, Cause: cause}
}

package rfc4648

import (
	"errors"
	"strconv"
)

var (
	ErrInvalidSymbol   = errors.New("invalid symbol")
	ErrInvalidPadding  = errors.New("invalid padding")
	ErrTruncatedInput  = errors.New("truncated input")
	ErrWriterClosed    = errors.New("writer closed")
	ErrUnknownAlphabet = errors.New("unknown alphabet")
)

// CorruptInputError reports the offset of malformed encoded input. It wraps
// one of ErrInvalidSymbol, ErrInvalidPadding or ErrTruncatedInput.
//
// For a Reader the offset counts non-whitespace symbols from the start of
// the stream.
type CorruptInputError struct {
	Offset int64
	Err    error
}

func corrupt(offset int, err error) *CorruptInputError {
	return &CorruptInputError{Offset: int64(offset), Err: err}
}

func (e *CorruptInputError) Error() string {
	return "rfc4648: " + e.Err.Error() + " at input byte " + strconv.FormatInt(e.Offset, 10)
}

func (e *CorruptInputError) Unwrap() error {
	return e.Err
}

// UnknownAlphabetError is returned by ParseAlphabet. It wraps
// ErrUnknownAlphabet.
type UnknownAlphabetError struct {
	Name string
}

func (e *UnknownAlphabetError) Error() string {
	return "rfc4648: " + ErrUnknownAlphabet.Error() + " " + strconv.Quote(e.Name)
}

func (e *UnknownAlphabetError) Unwrap() error {
	return ErrUnknownAlphabet
}

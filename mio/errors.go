package mio

import "fmt"

// TransferKind tells on which side of a transfer an error happened.
type TransferKind int

const (
	// ReadingSource means the source could not be read.
	ReadingSource TransferKind = iota
	// WritingDestination means the destination could not be written.
	WritingDestination
)

func (tk TransferKind) String() string {
	switch tk {
	case ReadingSource:
		return "reading source"
	case WritingDestination:
		return "writing destination"
	default:
		return "unknown transfer side"
	}
}

// TransferError is returned by Copy and Fill. It tags the underlying
// error with the side of the transfer that failed.
type TransferError struct {
	Kind TransferKind
	Err  error
}

func (te *TransferError) Error() string {
	return fmt.Sprintf("%s: %v", te.Kind, te.Err)
}

// Cause returns the original error (for github.com/pkg/errors).
func (te *TransferError) Cause() error {
	return te.Err
}

// Unwrap returns the original error (for the errors package).
func (te *TransferError) Unwrap() error {
	return te.Err
}

func transferError(kind TransferKind, err error) error {
	return &TransferError{Kind: kind, Err: err}
}

// asTransferError looks through wrapping done with pkg/errors.
// It stops at the first *TransferError, so Cause() of it is not followed.
func asTransferError(err error) (*TransferError, bool) {
	type causer interface {
		Cause() error
	}

	for err != nil {
		if te, ok := err.(*TransferError); ok {
			return te, true
		}

		cause, ok := err.(causer)
		if !ok {
			break
		}

		err = cause.Cause()
	}

	return nil, false
}

// IsReadingSource checks if `err` is a TransferError caused by the source.
func IsReadingSource(err error) bool {
	te, ok := asTransferError(err)
	return ok && te.Kind == ReadingSource
}

// IsWritingDestination checks if `err` is a TransferError caused by the
// destination.
func IsWritingDestination(err error) bool {
	te, ok := asTransferError(err)
	return ok && te.Kind == WritingDestination
}

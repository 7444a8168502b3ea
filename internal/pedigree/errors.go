package pedigree

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyID = errors.New("popsim/pedigree: empty individual id")

	ErrDuplicateID = errors.New("popsim/pedigree: duplicate individual id")

	ErrUnknownParent = errors.New("popsim/pedigree: parent not in pedigree")

	ErrCycle = errors.New("popsim/pedigree: individual is its own ancestor")

	ErrNotFound = errors.New("popsim/pedigree: individual not found")

	ErrFormat = errors.New("popsim/pedigree: malformed record")

	ErrBuilder = errors.New("popsim/pedigree: invalid line parameters")
)

// PedigreeError attaches the offending individual to an error.
type PedigreeError struct {
	ID  string
	Err error
}

func (e *PedigreeError) Error() string {
	return fmt.Sprintf("individual %q: %v", e.ID, e.Err)
}

func (e *PedigreeError) Unwrap() error {
	return e.Err
}

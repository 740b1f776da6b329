package gateway

import (
	"errors"
	"fmt"
)

var (
	// ErrStoreUnavailable: es existiert keine offene Datenbankverbindung.
	ErrStoreUnavailable = errors.New("store not connected")
	// ErrUnknownOperation: der Name ist nicht im Katalog.
	ErrUnknownOperation = errors.New("unknown operation")
)

// OpError beschreibt den Fehlschlag einer benannten Operation. Über die
// Prozessgrenze wandert nur diese Beschreibung (Name + Ursache), nie ein
// Store-interner Fehlertyp.
type OpError struct {
	Op  string
	Err error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("error in %s: %v", e.Op, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

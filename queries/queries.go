// Package queries holds the gorm-backed entity stores. Update methods report
// the number of matched rows so callers can tell "nothing to update" apart
// from a database failure.
package queries

import (
	"errors"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("record not found")

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

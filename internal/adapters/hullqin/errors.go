package hullqin

import (
	"errors"
	"fmt"
)

// ErrElementNotFound: falta un punto de extracción obligatorio en la página.
var ErrElementNotFound = errors.New("elemento no encontrado")

// ScrapeError lleva la operación y el id objetivo para poder armar el mensaje.
type ScrapeError struct {
	Op     string
	Target string
	Err    error
}

func (e *ScrapeError) Error() string {
	return fmt.Sprintf("scrape %s (%s): %v", e.Op, e.Target, e.Err)
}

func (e *ScrapeError) Unwrap() error { return e.Err }

// IsScrapeError true si err (o algo envuelto) es un *ScrapeError.
func IsScrapeError(err error) bool {
	var se *ScrapeError
	return errors.As(err, &se)
}

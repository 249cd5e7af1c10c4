package game

import (
	"errors"
	"fmt"

	"github.com/sprucegoose-dev/antinomy-be/engine"
)

// Request error kinds. The HTTP layer maps these to status codes with
// errors.Is, so handlers stay free of transport concerns.
var (
	ErrNotFound     = errors.New("not found")
	ErrBadRequest   = errors.New("bad request")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
)

// mapEngineError converts an engine validation error into a request error
// kind. Every rules rejection, acting out of turn included, is a bad
// request; forbidden is reserved for users who are not in the game at all.
func mapEngineError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, engine.ErrNotYourTurn),
		errors.Is(err, engine.ErrGameEnded),
		errors.Is(err, engine.ErrWrongStatus),
		errors.Is(err, engine.ErrIllegalAction):
		return fmt.Errorf("%w: %s", ErrBadRequest, err)
	default:
		return err
	}
}

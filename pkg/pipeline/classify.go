package pipeline

import (
	"context"
	stderrors "errors"
	"io/fs"

	"github.com/matzehuels/citytour/pkg/core/route"
	"github.com/matzehuels/citytour/pkg/errors"
	cio "github.com/matzehuels/citytour/pkg/io"
)

// Classify attaches an error code to err based on the sentinel it wraps.
// Errors that already carry a code and context cancellations are returned
// unchanged; anything unrecognized becomes INTERNAL_ERROR.
func Classify(err error) error {
	return classify(err, errors.ErrCodeInternal)
}

func classify(err error, fallback errors.Code) error {
	if err == nil {
		return nil
	}
	if errors.GetCode(err) != "" {
		return err
	}
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var code errors.Code
	var msg string
	switch {
	case stderrors.Is(err, route.ErrInvalidRoute):
		code, msg = errors.ErrCodeInvalidRoute, "the route cannot be optimized"
	case stderrors.Is(err, route.ErrInconsistentRoute):
		code, msg = errors.ErrCodeInconsistentRoute, "the optimizer reached an inconsistent state"
	case stderrors.Is(err, route.ErrIncompleteRoute):
		code, msg = errors.ErrCodeIncompleteRoute, "no tour visits every city"
	case stderrors.Is(err, fs.ErrNotExist):
		code, msg = errors.ErrCodeFileNotFound, "matrix file not found"
	case stderrors.Is(err, cio.ErrUnknownFormat):
		code, msg = errors.ErrCodeInvalidFormat, "unknown matrix format"
	case stderrors.Is(err, cio.ErrNoHeader),
		stderrors.Is(err, cio.ErrInvalidCost),
		stderrors.Is(err, route.ErrNegativeCost),
		stderrors.Is(err, route.ErrDuplicateEdge),
		stderrors.Is(err, route.ErrInvalidCity):
		code, msg = errors.ErrCodeInvalidMatrix, "the cost matrix is malformed"
	case fallback == errors.ErrCodeInvalidMatrix:
		code, msg = fallback, "the cost matrix could not be read"
	default:
		code, msg = fallback, "internal error"
	}
	return errors.Wrap(code, err, "%s", msg)
}

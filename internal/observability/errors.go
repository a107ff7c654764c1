package observability

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
)

// LogRunError logs the error that ended a stage run. A missing input file is
// reported with its path so the operator can fix it without reading a chain
// of wrapped errors.
func LogRunError(logger *slog.Logger, err error) {
	var pathErr *fs.PathError
	switch {
	case errors.As(err, &pathErr) && errors.Is(err, fs.ErrNotExist):
		logger.Error("input file not found", "path", pathErr.Path)
	case errors.Is(err, context.Canceled):
		logger.Error("interrupted before output was written; rerun to start over")
	default:
		logger.Error("unexpected error", "error", err)
	}
}

package daemon

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/jamesainslie/logsift/pkg/logsift/archive"
	"github.com/jamesainslie/logsift/pkg/logsift/daterange"
	"github.com/jamesainslie/logsift/pkg/logsift/engine"
)

// Code returns the gRPC code for an engine error.
func Code(err error) codes.Code {
	switch {
	case err == nil:
		return codes.OK
	case errors.Is(err, engine.ErrMissingParameter),
		errors.Is(err, engine.ErrNoFolders),
		errors.Is(err, daterange.ErrInvalidDate),
		errors.Is(err, daterange.ErrInvalidLookback),
		errors.Is(err, archive.ErrUnsupportedFormat):
		return codes.InvalidArgument
	case errors.Is(err, archive.ErrCorruptArchive):
		return codes.DataLoss
	case errors.Is(err, engine.ErrRootUnavailable):
		return codes.FailedPrecondition
	case errors.Is(err, archive.ErrArchiveTooLarge):
		return codes.ResourceExhausted
	case errors.Is(err, context.Canceled):
		return codes.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		return codes.DeadlineExceeded
	default:
		return codes.Internal
	}
}

// toStatus converts an engine error to a gRPC status error carrying the
// original message.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	return status.Error(Code(err), err.Error())
}

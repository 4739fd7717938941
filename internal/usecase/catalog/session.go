package catalog

import (
	"context"

	"go.uber.org/zap"

	"github.com/kailas-cloud/bookstore/internal/domain"
)

// WithSession opens a session, runs fn with an executor bound to it and
// always closes the session, even when fn panics.
//
// A connect failure is returned as a QueryError with Op "connect". A close
// failure becomes a QueryError with Op "close" only when fn succeeded;
// otherwise it is logged and fn's error is returned unchanged.
func WithSession(
	ctx context.Context, connect Connector, log *zap.Logger,
	fn func(ctx context.Context, exec *Executor) error,
) (err error) {
	if log == nil {
		log = zap.NewNop()
	}

	sess, err := connect(ctx)
	if err != nil {
		log.Error("Connect failed", zap.Error(err))
		return domain.NewQueryError(domain.OpConnect, "", err)
	}
	log.Debug("Session opened")

	defer func() {
		closeErr := sess.Close(context.WithoutCancel(ctx))
		switch {
		case closeErr == nil:
			log.Debug("Session closed")
		case err != nil:
			log.Warn("Close failed after operation error", zap.Error(closeErr), zap.NamedError("cause", err))
		default:
			log.Error("Close failed", zap.Error(closeErr))
			err = domain.NewQueryError(domain.OpClose, "", closeErr)
		}
	}()

	return fn(ctx, New(sess, log))
}

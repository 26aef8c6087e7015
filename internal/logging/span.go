package logging

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Span times one outbound call and logs its duration on End.
type Span struct {
	name   string
	logger *slog.Logger
	start  time.Time
	now    func() time.Time
}

// StartSpan derives a child logger tagged with a fresh span id (and the parent
// span id when nested) and stores it on the returned context.
func StartSpan(ctx context.Context, name string) (context.Context, *Span) {
	if ctx == nil {
		ctx = context.Background()
	}

	spanID := uuid.NewString()
	logger := FromContext(ctx).With(
		slog.String("span_id", spanID),
		slog.String("span", name),
	)
	if parent := spanIDFromContext(ctx); parent != "" {
		logger = logger.With(slog.String("parent_span_id", parent))
	}

	ctx = WithLogger(ctx, logger)
	ctx = context.WithValue(ctx, spanIDKey, spanID)

	return ctx, &Span{name: name, logger: logger, start: time.Now(), now: time.Now}
}

// End emits a debug entry with the span duration.
func (s *Span) End() {
	if s == nil {
		return
	}
	s.logger.Debug("span completed", slog.Duration("duration", s.now().Sub(s.start)))
}

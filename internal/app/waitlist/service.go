package waitlist

import (
	"context"
	"log/slog"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"

	"github.com/preston-bernstein/cricket-data-service/internal/logging"
	"github.com/preston-bernstein/cricket-data-service/internal/providers/backend"
)

// ErrInvalidEmail marks submissions rejected before reaching the backend.
var ErrInvalidEmail = errors.New("invalid email")

// Submitter posts waitlist sign-ups. *backend.Client satisfies it.
type Submitter interface {
	SubmitWaitlistEmail(ctx context.Context, email string) (backend.WaitlistResponse, error)
}

type submission struct {
	Email string `validate:"required,email"`
}

// Service validates and forwards waitlist sign-ups. Results are never cached.
type Service struct {
	submitter Submitter
	validator *validator.Validate
	logger    *slog.Logger
}

// NewService constructs a Service.
func NewService(submitter Submitter, logger *slog.Logger) *Service {
	return &Service{submitter: submitter, validator: validator.New(), logger: logger}
}

// Submit validates email and posts it to the backend.
func (s *Service) Submit(ctx context.Context, email string) (backend.WaitlistResponse, error) {
	email = strings.TrimSpace(email)
	if err := s.validator.StructCtx(ctx, submission{Email: email}); err != nil {
		return backend.WaitlistResponse{}, errors.Mark(errors.Wrap(err, "validate waitlist email"), ErrInvalidEmail)
	}

	resp, err := s.submitter.SubmitWaitlistEmail(ctx, email)
	if err != nil {
		logging.Error(logging.FromContext(ctx, s.logger), "waitlist submission failed", err,
			slog.String(logging.FieldEndpoint, backend.EndpointWaitlist),
		)
		return backend.WaitlistResponse{}, err
	}
	return resp, nil
}

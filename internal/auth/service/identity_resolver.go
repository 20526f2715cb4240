package service

import (
	"context"
	"errors"

	"github.com/perplexiplay/backend/internal/auth/domain"
	"github.com/perplexiplay/backend/internal/auth/repository"
	commonerrors "github.com/perplexiplay/backend/internal/common/errors"
	"github.com/perplexiplay/backend/internal/common/logger"
)

// IdentityResolver turns a bearer token into the user it was issued for.
type IdentityResolver struct {
	codec TokenCodec
	repo  repository.UserRepository
	log   *logger.Logger
}

func NewIdentityResolver(codec TokenCodec, repo repository.UserRepository, log *logger.Logger) *IdentityResolver {
	return &IdentityResolver{codec: codec, repo: repo, log: log}
}

// Resolve fails with ErrUnauthenticated for every token problem and for users
// that no longer exist. Store failures surface as internal errors.
func (r *IdentityResolver) Resolve(ctx context.Context, token string) (domain.User, error) {
	subject, err := r.codec.Validate(token)
	if err != nil {
		r.log.WithFields(ctx, logger.Fields{
			"action": "identity_token_rejected",
		}).Warnf("token rejected: %v", err)
		recordIdentityResolution(resultRejected)
		return domain.User{}, ErrUnauthenticated.WithCause(err)
	}

	user, err := r.repo.FindByUsername(ctx, subject)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			r.log.WithFields(ctx, logger.Fields{
				"username": subject,
				"action":   "identity_user_missing",
			}).Warn("token subject no longer exists")
			recordIdentityResolution(resultMissing)
			return domain.User{}, ErrUnauthenticated
		}
		r.log.WithFields(ctx, logger.Fields{
			"username": subject,
			"action":   "identity_lookup_failed",
		}).Errorf("identity lookup failed: %v", err)
		recordIdentityResolution(resultFailure)
		return domain.User{}, commonerrors.ErrInternalError.WithCause(err)
	}

	recordIdentityResolution(resultSuccess)
	return user, nil
}

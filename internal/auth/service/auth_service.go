package service

import (
	"context"
	"errors"

	"github.com/perplexiplay/backend/internal/auth/domain"
	"github.com/perplexiplay/backend/internal/auth/repository"
	"github.com/perplexiplay/backend/internal/common/constants"
	commoncrypto "github.com/perplexiplay/backend/internal/common/crypto"
	commonerrors "github.com/perplexiplay/backend/internal/common/errors"
	"github.com/perplexiplay/backend/internal/common/logger"
)

// UserMirror receives a best-effort copy of every registered user. Mirror
// must return without waiting on the secondary store.
type UserMirror interface {
	Mirror(ctx context.Context, user domain.User)
}

type nopMirror struct{}

func (nopMirror) Mirror(context.Context, domain.User) {}

type AuthService struct {
	repo      repository.UserRepository
	hasher    commoncrypto.PasswordHasher
	codec     TokenCodec
	mirror    UserMirror
	validator CredentialValidator
	log       *logger.Logger

	// dummyHash is verified against on unknown usernames so both login
	// failures pay the same hashing cost.
	dummyHash string
}

func NewAuthService(
	repo repository.UserRepository,
	hasher commoncrypto.PasswordHasher,
	codec TokenCodec,
	mirror UserMirror,
	log *logger.Logger,
) *AuthService {
	if mirror == nil {
		mirror = nopMirror{}
	}
	dummyHash, err := hasher.Hash(constants.LoginDummyPassword)
	if err != nil {
		log.Warnf("login dummy hash unavailable: %v", err)
	}
	return &AuthService{
		repo:      repo,
		hasher:    hasher,
		codec:     codec,
		mirror:    mirror,
		validator: NewCredentialValidator(),
		log:       log,
		dummyHash: dummyHash,
	}
}

type RegisterInput struct {
	Username string
	Password string
}

type LoginInput struct {
	Username string
	Password string
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (domain.User, error) {
	s.log.WithFields(ctx, logger.Fields{
		"username": input.Username,
		"action":   "register_attempt",
	}).Info("register attempt")

	if err := s.validator.ValidateRegistration(input.Username, input.Password); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "register_validation_failed",
		}).Warnf("register validation failed: %v", err)
		recordRegistration(resultInvalid)
		return domain.User{}, err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "register_hash_failed",
		}).Errorf("register failed: password hash error: %v", err)
		recordRegistration(resultFailure)
		return domain.User{}, commonerrors.ErrInternalError.WithCause(err)
	}

	user, err := s.repo.Insert(ctx, input.Username, hash)
	if err != nil {
		if errors.Is(err, repository.ErrUsernameAlreadyExists) {
			s.log.WithFields(ctx, logger.Fields{
				"username": input.Username,
				"action":   "register_username_exists",
			}).Warn("register failed: already exists")
			recordRegistration(resultDuplicate)
			return domain.User{}, ErrUsernameAlreadyRegistered
		}
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "register_create_failed",
		}).Errorf("register failed: %v", err)
		recordRegistration(resultFailure)
		return domain.User{}, commonerrors.ErrInternalError.WithCause(err)
	}

	s.mirror.Mirror(ctx, user)

	s.log.WithFields(ctx, logger.Fields{
		"username": user.Username,
		"user_id":  string(user.ID),
		"action":   "register_success",
	}).Info("register success")
	recordRegistration(resultSuccess)

	return user, nil
}

// Login returns the same ErrInvalidCredentials for an unknown username and a
// wrong password.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (domain.AccessToken, error) {
	s.log.WithFields(ctx, logger.Fields{
		"username": input.Username,
		"action":   "login_attempt",
	}).Info("login attempt")

	if err := s.validator.ValidateLogin(input.Username, input.Password); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "login_validation_failed",
		}).Warnf("login validation failed: %v", err)
		recordLogin(resultInvalid)
		return domain.AccessToken{}, err
	}

	if len(input.Username) > constants.UsernameMaxLength || len(input.Password) > constants.PasswordMaxLength {
		s.log.WithFields(ctx, logger.Fields{
			"action": "login_input_too_long",
		}).Warn("login failed: input exceeds limits")
		recordLogin(resultFailure)
		return domain.AccessToken{}, ErrInvalidCredentials
	}

	user, err := s.repo.FindByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.hasher.Verify(input.Password, s.dummyHash)
			s.log.WithFields(ctx, logger.Fields{
				"username": input.Username,
				"action":   "login_user_not_found",
			}).Warn("login failed: not found")
			recordLogin(resultFailure)
			return domain.AccessToken{}, ErrInvalidCredentials
		}
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "login_fetch_failed",
		}).Errorf("login failed: %v", err)
		recordLogin(resultFailure)
		return domain.AccessToken{}, commonerrors.ErrInternalError.WithCause(err)
	}

	if !s.hasher.Verify(input.Password, user.PasswordHash) {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "login_invalid_password",
		}).Warn("login failed: invalid password")
		recordLogin(resultFailure)
		return domain.AccessToken{}, ErrInvalidCredentials
	}

	token, err := s.codec.Issue(user.Username)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "login_token_issue_failed",
		}).Errorf("login failed: token issue error: %v", err)
		recordLogin(resultFailure)
		return domain.AccessToken{}, commonerrors.ErrInternalError.WithCause(err)
	}

	s.log.WithFields(ctx, logger.Fields{
		"username": user.Username,
		"user_id":  string(user.ID),
		"action":   "login_success",
	}).Info("login success")
	recordLogin(resultSuccess)

	return domain.AccessToken{
		AccessToken: token,
		TokenType:   constants.TokenTypeBearer,
	}, nil
}

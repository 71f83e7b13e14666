package auth

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/bookstore-backend/internal/users"
	pkgAuth "github.com/angelmondragon/bookstore-backend/pkg/auth"
	"github.com/angelmondragon/bookstore-backend/pkg/config"
	"github.com/angelmondragon/bookstore-backend/pkg/db"
	"github.com/angelmondragon/bookstore-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/bookstore-backend/pkg/errors"
	"github.com/angelmondragon/bookstore-backend/pkg/outbox"
	"github.com/angelmondragon/bookstore-backend/pkg/outbox/payloads"
	"github.com/angelmondragon/bookstore-backend/pkg/security"
)

const (
	usernameConstraint    = "ux_users_username"
	defaultOperationLimit = 5 * time.Second
)

// RegisterService handles account creation and email verification.
type RegisterService interface {
	Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error)
	Verify(ctx context.Context, token string) (*VerifyResponse, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// RegisterServiceParams packages the dependencies for the registration flow.
type RegisterServiceParams struct {
	DB               txRunner
	Outbox           outbox.Emitter
	PasswordConfig   config.PasswordConfig
	JWTConfig        config.JWTConfig
	VerificationTTL  time.Duration
	PublicBaseURL    string
	OperationTimeout time.Duration
}

type registerService struct {
	tx          txRunner
	outbox      outbox.Emitter
	passwordCfg config.PasswordConfig
	jwtCfg      config.JWTConfig
	verifyTTL   time.Duration
	baseURL     string
	timeout     time.Duration
	now         func() time.Time
}

// NewRegisterService builds a registration service with the provided dependencies.
func NewRegisterService(params RegisterServiceParams) (RegisterService, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	if params.Outbox == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "outbox emitter required")
	}
	ttl := params.VerificationTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	timeout := params.OperationTimeout
	if timeout <= 0 {
		timeout = defaultOperationLimit
	}
	return &registerService{
		tx:          params.DB,
		outbox:      params.Outbox,
		passwordCfg: params.PasswordConfig,
		jwtCfg:      params.JWTConfig,
		verifyTTL:   ttl,
		baseURL:     strings.TrimRight(strings.TrimSpace(params.PublicBaseURL), "/"),
		timeout:     timeout,
		now:         time.Now,
	}, nil
}

func (s *registerService) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username is required")
	}
	if req.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password is required")
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var userID int64
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := users.NewRepository(tx)

		if _, err := userRepo.FindByUsername(ctx, username); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "username already taken")
		} else if !db.IsNotFound(err) {
			return err
		}

		user, err := userRepo.Create(ctx, users.CreateUserDTO{
			Username:     username,
			PasswordHash: passwordHash,
			FirstName:    req.FirstName,
			LastName:     req.LastName,
			Email:        email,
			Phone:        req.Phone,
			Location:     req.Location,
		})
		if err != nil {
			if db.IsUniqueViolation(err, usernameConstraint) {
				return pkgerrors.New(pkgerrors.CodeConflict, "username already taken")
			}
			return err
		}

		token, err := pkgAuth.MintVerificationToken(s.jwtCfg, s.now().UTC(), user.ID, s.verifyTTL)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint verification token")
		}

		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventUserRegistered,
			AggregateType: enums.AggregateUser,
			AggregateID:   user.ID,
			Actor:         &outbox.ActorRef{UserID: user.ID},
			Data: payloads.UserRegisteredEvent{
				UserID:            user.ID,
				Username:          user.Username,
				Email:             user.Email,
				FirstName:         user.FirstName,
				VerificationToken: token,
				VerificationLink:  s.verificationLink(token),
			},
		}); err != nil {
			return fmt.Errorf("emit user_registered: %w", err)
		}

		userID = user.ID
		return nil
	})
	if err != nil {
		return nil, db.OperationError(err, "register user")
	}
	return &RegisterResponse{UserID: userID}, nil
}

func (s *registerService) Verify(ctx context.Context, token string) (*VerifyResponse, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "token is required")
	}
	claims, err := pkgAuth.ParseVerificationToken(s.jwtCfg, token)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid or expired verification token")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := users.NewRepository(tx)
		now := s.now().UTC()

		changed, err := userRepo.MarkVerified(ctx, claims.UserID, now)
		if err != nil {
			return err
		}
		if !changed {
			if _, err := userRepo.FindByID(ctx, claims.UserID); err != nil {
				if db.IsNotFound(err) {
					return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
				}
				return err
			}
			return pkgerrors.New(pkgerrors.CodeConflict, "account already verified")
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventUserVerified,
			AggregateType: enums.AggregateUser,
			AggregateID:   claims.UserID,
			Actor:         &outbox.ActorRef{UserID: claims.UserID},
			Data:          payloads.UserVerifiedEvent{UserID: claims.UserID, VerifiedAt: now},
		})
	})
	if err != nil {
		return nil, db.OperationError(err, "verify account")
	}
	return &VerifyResponse{UserID: claims.UserID, IsVerified: true}, nil
}

func (s *registerService) verificationLink(token string) string {
	return fmt.Sprintf("%s/auth/verify?token=%s", s.baseURL, url.QueryEscape(token))
}

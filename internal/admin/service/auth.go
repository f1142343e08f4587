package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aussiebroadwan/blogadmin/internal/admin/domain"
	"github.com/aussiebroadwan/blogadmin/internal/admin/metrics"
	"github.com/aussiebroadwan/blogadmin/internal/admin/store"
	"github.com/aussiebroadwan/blogadmin/pkg/cryptox"
	"github.com/aussiebroadwan/blogadmin/pkg/idx"
	"github.com/aussiebroadwan/blogadmin/pkg/jwtx"
	"github.com/aussiebroadwan/blogadmin/pkg/slogx"
)

var (
	ErrBadCredentials  = errors.New("bad credentials")
	ErrAccountDisabled = errors.New("account disabled")
	ErrOTPRequired     = errors.New("one-time code required")
	ErrInvalidOTP      = errors.New("invalid one-time code")
	ErrInvalidPassword = errors.New("invalid new password")
)

// LoginInput carries the credentials and the client details recorded in
// the login log.
type LoginInput struct {
	Username  string
	Password  string
	OTPCode   string
	IP        string
	UserAgent string
}

// TokenResult is an issued (or reused) access token.
type TokenResult struct {
	Token     string
	ExpiresIn time.Duration
	Claims    jwtx.Claims
}

type AuthService struct {
	Details    *UserDetailsService
	Store      store.Store
	Encoder    *cryptox.PasswordEncoder
	KeyManager *jwtx.KeyManager
	TOTP       *TOTPService
	Metrics    *metrics.Metrics

	Issuer        string
	AccessTTL     time.Duration
	RefreshWindow time.Duration

	// Now defaults to time.Now.
	Now func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *AuthService) accessTTL() time.Duration {
	if s.AccessTTL <= 0 {
		return jwtx.DefaultAccessTokenTTL
	}
	return s.AccessTTL
}

func (s *AuthService) refreshWindow() time.Duration {
	if s.RefreshWindow <= 0 {
		return jwtx.DefaultRefreshWindow
	}
	return s.RefreshWindow
}

// Login checks the credentials (and the one-time code when the account has
// TOTP enabled) and issues an access token. Unknown users and wrong
// passwords both yield ErrBadCredentials.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (TokenResult, error) {
	l := slogx.FromContext(ctx).With(slog.String("username", in.Username))
	now := s.now()

	details, err := s.Details.LoadUserByUsername(ctx, in.Username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			// Spend the same bcrypt work as a real check.
			_ = s.Encoder.Matches(in.Password, s.dummy())
			l.Info("login failed: unknown user")
			s.Metrics.RecordLogin(metrics.LoginBadCredentials)
			return TokenResult{}, ErrBadCredentials
		}
		s.Metrics.RecordLogin(metrics.LoginError)
		return TokenResult{}, err
	}

	if err := s.Encoder.Matches(in.Password, details.PasswordHash()); err != nil {
		if errors.Is(err, cryptox.ErrInvalidHash) {
			l.Warn("stored password hash is not bcrypt", slog.String("user_id", details.UserID()))
		} else {
			l.Info("login failed: wrong password", slog.String("user_id", details.UserID()))
		}
		s.Metrics.RecordLogin(metrics.LoginBadCredentials)
		return TokenResult{}, ErrBadCredentials
	}

	if !details.Enabled() {
		l.Info("login failed: account disabled", slog.String("user_id", details.UserID()))
		s.Metrics.RecordLogin(metrics.LoginAccountDisabled)
		return TokenResult{}, ErrAccountDisabled
	}

	amr := []string{jwtx.AMRPassword}
	if details.User.TOTPEnabled() {
		if in.OTPCode == "" {
			s.Metrics.RecordLogin(metrics.LoginOTPRequired)
			return TokenResult{}, ErrOTPRequired
		}
		if !s.TOTP.ValidateCode(*details.User.TOTPSecret, in.OTPCode) {
			l.Info("login failed: invalid one-time code", slog.String("user_id", details.UserID()))
			s.Metrics.RecordLogin(metrics.LoginInvalidOTP)
			return TokenResult{}, ErrInvalidOTP
		}
		amr = append(amr, jwtx.AMROTP)
	}

	res, err := s.issue(details.User, amr, now)
	if err != nil {
		s.Metrics.RecordLogin(metrics.LoginError)
		return TokenResult{}, err
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().UpdateLoginAt(ctx, details.UserID(), now); err != nil {
			return fmt.Errorf("failed to update login time: %w", err)
		}
		return tx.LoginLogs().CreateLoginLog(ctx, domain.LoginLog{
			ID:        idx.New().String(),
			UserID:    details.UserID(),
			IP:        in.IP,
			UserAgent: in.UserAgent,
			CreatedAt: now,
		})
	})
	if err != nil {
		s.Metrics.RecordLogin(metrics.LoginError)
		return TokenResult{}, err
	}

	s.rehashIfNeeded(ctx, details.User, in.Password)

	s.Metrics.RecordLogin(metrics.LoginSuccess)
	l.Info("login succeeded", slog.String("user_id", details.UserID()), slog.String("ip", in.IP))
	return res, nil
}

// Refresh hands back the presented token while it is younger than the
// refresh window, and otherwise mints a new one for the same user.
func (s *AuthService) Refresh(ctx context.Context, claims jwtx.Claims, token string) (TokenResult, error) {
	now := s.now()

	if claims.IssuedWithin(s.refreshWindow(), now) {
		var expiresIn time.Duration
		if claims.ExpiresAt != nil {
			expiresIn = claims.ExpiresAt.Sub(now)
		}
		return TokenResult{Token: token, ExpiresIn: expiresIn, Claims: claims}, nil
	}

	details, err := s.Details.LoadUserByUsername(ctx, claims.Username)
	if err != nil {
		return TokenResult{}, err
	}
	if !details.Enabled() {
		return TokenResult{}, ErrAccountDisabled
	}
	if details.UserID() != claims.Subject {
		return TokenResult{}, ErrBadCredentials
	}

	amr := claims.AMR
	if len(amr) == 0 {
		amr = []string{jwtx.AMRPassword}
	}
	return s.issue(details.User, amr, now)
}

// ChangePassword replaces the password after checking the current one.
func (s *AuthService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.Encoder.Matches(oldPassword, user.PasswordHash); err != nil {
		return ErrBadCredentials
	}
	if newPassword == "" {
		return fmt.Errorf("%w: must not be empty", ErrInvalidPassword)
	}

	hash, err := s.Encoder.Encode(newPassword)
	if err != nil {
		if errors.Is(err, cryptox.ErrPasswordTooLong) {
			return fmt.Errorf("%w: %v", ErrInvalidPassword, err)
		}
		return err
	}

	if err := s.Store.Users().UpdatePasswordHash(ctx, userID, hash); err != nil {
		return err
	}

	slogx.FromContext(ctx).Info("password changed", slog.String("user_id", userID))
	return nil
}

func (s *AuthService) issue(user domain.User, amr []string, now time.Time) (TokenResult, error) {
	ttl := s.accessTTL()
	claims := jwtx.NewAccessClaims(user.ID, user.Username, amr, ttl, s.Issuer, now)

	token, err := s.KeyManager.Sign(claims)
	if err != nil {
		return TokenResult{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return TokenResult{Token: token, ExpiresIn: ttl, Claims: claims}, nil
}

// rehashIfNeeded upgrades hashes made with a lower cost than configured.
// Failure only costs the upgrade.
func (s *AuthService) rehashIfNeeded(ctx context.Context, user domain.User, password string) {
	if !s.Encoder.UpgradeEncoding(user.PasswordHash) {
		return
	}
	hash, err := s.Encoder.Encode(password)
	if err == nil {
		err = s.Store.Users().UpdatePasswordHash(ctx, user.ID, hash)
	}
	if err != nil {
		slogx.FromContext(ctx).Warn("failed to upgrade password hash",
			slog.String("user_id", user.ID), slog.Any("error", err))
	}
}

func (s *AuthService) dummy() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.Encoder.Encode("blogadmin-dummy-password")
	})
	return s.dummyHash
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/blogadmin/internal/admin/store"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	totpPeriod = 30
	totpSkew   = 1 // accept the previous and next step as well
)

var (
	ErrTOTPAlreadyEnabled = errors.New("TOTP already enabled for this user")
	ErrTOTPNotEnrolled    = errors.New("TOTP not enrolled")
	ErrTOTPNotEnabled     = errors.New("TOTP not enabled for this user")
)

// TOTPEnrollment is handed to the user once, to be scanned into an
// authenticator app.
type TOTPEnrollment struct {
	Secret string
	URL    string
}

type TOTPService struct {
	Store  store.Store
	Issuer string // shown in the authenticator app, e.g. "Blog Admin"

	// Now defaults to time.Now.
	Now func() time.Time
}

func (s *TOTPService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Enroll generates a new secret for the user. The second factor is not
// enforced until Verify succeeds with a code from that secret.
func (s *TOTPService) Enroll(ctx context.Context, userID, username string) (TOTPEnrollment, error) {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return TOTPEnrollment{}, fmt.Errorf("failed to load user: %w", err)
	}
	if user.TOTPEnabled() {
		return TOTPEnrollment{}, ErrTOTPAlreadyEnabled
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.Issuer,
		AccountName: username,
		Period:      totpPeriod,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return TOTPEnrollment{}, fmt.Errorf("failed to generate TOTP key: %w", err)
	}

	if err := s.Store.Users().SetTOTPSecret(ctx, userID, key.Secret()); err != nil {
		return TOTPEnrollment{}, fmt.Errorf("failed to store TOTP secret: %w", err)
	}

	return TOTPEnrollment{Secret: key.Secret(), URL: key.URL()}, nil
}

// Verify checks a code against the pending secret and turns the second
// factor on.
func (s *TOTPService) Verify(ctx context.Context, userID, code string) error {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load user: %w", err)
	}
	if user.TOTPSecret == nil || *user.TOTPSecret == "" {
		return ErrTOTPNotEnrolled
	}
	if user.TOTPEnabled() {
		return ErrTOTPAlreadyEnabled
	}

	if !s.ValidateCode(*user.TOTPSecret, code) {
		return ErrInvalidOTP
	}

	return s.Store.Users().EnableTOTP(ctx, userID, s.now())
}

// Disable removes the second factor after checking a current code.
func (s *TOTPService) Disable(ctx context.Context, userID, code string) error {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load user: %w", err)
	}
	if !user.TOTPEnabled() {
		return ErrTOTPNotEnabled
	}

	if !s.ValidateCode(*user.TOTPSecret, code) {
		return ErrInvalidOTP
	}

	return s.Store.Users().DisableTOTP(ctx, userID)
}

// ValidateCode reports whether code is valid for secret right now.
func (s *TOTPService) ValidateCode(secret, code string) bool {
	if code == "" {
		return false
	}
	ok, err := totp.ValidateCustom(code, secret, s.now(), totp.ValidateOpts{
		Period:    totpPeriod,
		Skew:      totpSkew,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	return err == nil && ok
}

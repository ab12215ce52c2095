package security

import (
	"bitwise74/conference-api/internal/model"
	"bitwise74/conference-api/pkg/util"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"
)

const (
	tokenSize = 32
	otpDigits = 6
)

type VerificationTokenOpts struct {
	UserID    string
	Purpose   string
	ExpiresAt *time.Time
	CleanupAt *time.Time
}

func (o *VerificationTokenOpts) validate() error {
	if o == nil {
		return errors.New("no token options provided")
	}

	if o.UserID == "" {
		return errors.New("no user ID provided")
	}

	if o.Purpose == "" {
		return errors.New("no token purpose provided")
	}

	if o.ExpiresAt == nil {
		return errors.New("no expiry provided")
	}

	return nil
}

func MakeVerificationToken(o *VerificationTokenOpts) (*model.VerificationToken, error) {
	if err := o.validate(); err != nil {
		return nil, err
	}

	token, err := util.GenerateToken(tokenSize)
	if err != nil {
		return nil, err
	}

	return newToken(o, token), nil
}

// MakeResetCode returns a short numeric code to mail to the user together
// with the token record that stores only its hash.
func MakeResetCode(o *VerificationTokenOpts) (string, *model.VerificationToken, error) {
	if err := o.validate(); err != nil {
		return "", nil, err
	}

	code, err := util.GenerateDigits(otpDigits)
	if err != nil {
		return "", nil, err
	}

	return code, newToken(o, HashResetCode(o.UserID, code)), nil
}

// HashResetCode binds the code to the user so equal codes of different users
// don't collide on the unique token index
func HashResetCode(userID, code string) string {
	sum := sha256.Sum256([]byte(userID + ":" + code))
	return hex.EncodeToString(sum[:])
}

func newToken(o *VerificationTokenOpts, token string) *model.VerificationToken {
	return &model.VerificationToken{
		UserID:    o.UserID,
		Token:     token,
		Purpose:   o.Purpose,
		ExpiresAt: *o.ExpiresAt,
		CreatedAt: time.Now(),
		CleanupAt: o.CleanupAt,
		Used:      false,
	}
}

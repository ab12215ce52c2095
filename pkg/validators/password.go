package validators

import (
	"errors"
	"strings"
	"unicode/utf8"
)

var (
	ErrPasswordTooShort = errors.New("password must be at least 8 characters long")
	ErrPasswordTooLong  = errors.New("password is too long")
	ErrPasswordEmpty    = errors.New("no password provided")

	ErrUsernameEmpty   = errors.New("no username provided")
	ErrUsernameTooLong = errors.New("username is too long")
)

func PasswordValidator(p string) error {
	if p == "" {
		return ErrPasswordEmpty
	}

	if len(p) < 8 {
		return ErrPasswordTooShort
	}

	if len(p) > 255 {
		return ErrPasswordTooLong
	}

	return nil
}

func UsernameValidator(u string) error {
	u = strings.TrimSpace(u)
	if u == "" {
		return ErrUsernameEmpty
	}

	if utf8.RuneCountInString(u) > 100 {
		return ErrUsernameTooLong
	}

	return nil
}

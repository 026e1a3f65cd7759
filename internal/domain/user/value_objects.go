package user

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"tutorlink/internal/pkg/errs"
)

var (
	ErrInvalidEmail    = errs.Kinded(errs.ErrValidation, "invalid email format")
	ErrInvalidRole     = errs.Kinded(errs.ErrValidation, "invalid role")
	ErrPasswordTooWeak = errs.Kinded(errs.ErrValidation, "password must be at least 8 characters long")
	ErrInvalidName     = errs.Kinded(errs.ErrValidation, "first and last name are required (max 100 characters)")
)

const maxNameLength = 100

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

type Email struct {
	value string
}

func NewEmail(s string) (Email, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if !emailRegex.MatchString(s) {
		return Email{}, ErrInvalidEmail
	}
	return Email{value: s}, nil
}

func (e Email) Value() string {
	return e.value
}

type Password struct {
	value string
}

func NewPassword(s string) (Password, error) {
	if len(s) < 8 {
		return Password{}, ErrPasswordTooWeak
	}
	return Password{value: s}, nil
}

func (p Password) Value() string {
	return p.value
}

type Name struct {
	first string
	last  string
}

func NewName(first, last string) (Name, error) {
	first = strings.TrimSpace(first)
	last = strings.TrimSpace(last)
	if first == "" || last == "" ||
		utf8.RuneCountInString(first) > maxNameLength || utf8.RuneCountInString(last) > maxNameLength {
		return Name{}, ErrInvalidName
	}
	return Name{first: first, last: last}, nil
}

func (n Name) First() string { return n.first }
func (n Name) Last() string  { return n.last }

func (n Name) Full() string {
	return n.first + " " + n.last
}

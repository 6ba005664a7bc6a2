package service

import (
	"errors"
	"fmt"

	"eventsite/internal/domains"
)

var (
	PasswordIncorrect = errors.New("invalid email or password")

	ErrUserExists           = errors.New("user with this email already exists")
	ErrUserNotFound         = errors.New("user not found")
	ErrTemplateNotFound     = errors.New("template not found")
	ErrTemplateInactive     = errors.New("template is not available")
	ErrTemplateSlugTaken    = errors.New("template slug already in use")
	ErrVersionInUse         = errors.New("template version is used by microsites, create a new version first")
	ErrTemplateInUse        = errors.New("template is used by microsites")
	ErrSectionNotFound      = errors.New("section not found")
	ErrSectionExists        = errors.New("section id already exists")
	ErrSectionNotDisabled   = errors.New("this section cannot be disabled")
	ErrInvalidColorScheme   = errors.New("color scheme not found in template")
	ErrInvalidFontPair      = errors.New("font pair not found in template")
	ErrSiteNotFound         = errors.New("site not found")
	ErrSiteNotPublished     = errors.New("site not found or not published")
	ErrSlugUnavailable      = errors.New("could not allocate a unique slug")
	ErrRsvpDisabled         = errors.New("RSVP is not enabled for this site")
	ErrRsvpDeadlinePassed   = errors.New("the RSVP deadline has passed")
	ErrRsvpExists           = errors.New("You have already submitted an RSVP")
	ErrRsvpNotFound         = errors.New("RSVP not found")
	ErrWishesDisabled       = errors.New("wishes are not enabled for this site")
	ErrGuestNotFound        = errors.New("guest not found")
	ErrWishNotFound         = errors.New("wish not found")
	ErrMediaNotFound        = errors.New("media not found")
	ErrFileTooLarge         = errors.New("file too large")
	ErrUnsupportedMediaType = errors.New("file type not allowed")
	ErrHighlightLimit       = errors.New("highlight limit reached")
	ErrMissingFields        = errors.New("Please fill in all required fields")
)

// ValidationError is a caller mistake reported back verbatim.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func invalid(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// HighlightLimitError carries the cap that was hit.
type HighlightLimitError struct {
	Max int
}

func (e *HighlightLimitError) Error() string {
	return fmt.Sprintf("Maximum of %d highlighted wishes reached", e.Max)
}

func (e *HighlightLimitError) Unwrap() error { return ErrHighlightLimit }

// MissingFieldsError lists the required fields that block publishing.
type MissingFieldsError struct {
	Fields []domains.MissingField
}

func (e *MissingFieldsError) Error() string { return ErrMissingFields.Error() }

func (e *MissingFieldsError) Unwrap() error { return ErrMissingFields }

package cmd

import (
	"fmt"
	"strings"

	"github.com/nordstat/prosjekt/internal/errs"
)

// Privacy is the visibility of a GitHub repository.
type Privacy string

const (
	PrivacyInternal Privacy = "internal"
	PrivacyPrivate  Privacy = "private"
	PrivacyPublic   Privacy = "public"
)

// ParsePrivacy validates a privacy argument.
func ParsePrivacy(s string) (Privacy, error) {
	switch Privacy(strings.ToLower(s)) {
	case PrivacyInternal:
		return PrivacyInternal, nil
	case PrivacyPrivate:
		return PrivacyPrivate, nil
	case PrivacyPublic:
		return PrivacyPublic, nil
	default:
		return "", errs.NewValidation("invalid-privacy",
			fmt.Sprintf("Invalid privacy %q: must be one of internal, private, public.", s))
	}
}

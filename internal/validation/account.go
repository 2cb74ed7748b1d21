package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ndewijer/portfolio-yield-tracker/internal/api/request"
	"github.com/ndewijer/portfolio-yield-tracker/internal/apperrors"
)

// accountIDPattern allows UUIDs as well as readable slugs like "ira-2019".
var accountIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]{0,63}$`)

// reservedAccountID names the aggregate snapshot and cannot be an account.
const reservedAccountID = "total"

// ValidateAccountID checks the account ID format and rejects the reserved ID.
func ValidateAccountID(id string) error {
	if strings.TrimSpace(id) == "" {
		return apperrors.ErrEmptyID
	}
	if strings.EqualFold(id, reservedAccountID) {
		return fmt.Errorf("%w: %q", apperrors.ErrReservedAccountID, id)
	}
	if !accountIDPattern.MatchString(id) {
		return fmt.Errorf("invalid account ID format: %q", id)
	}
	return nil
}

// ValidateCreateAccount validates an account creation request.
//
// Required fields:
//   - name: Must not be blank, at most 100 characters
//
// Optional fields:
//   - id: Must satisfy ValidateAccountID when provided
//   - tags: Must not contain blanks or commas
func ValidateCreateAccount(req request.CreateAccountRequest) error {
	errors := make(map[string]string)

	if req.ID != "" {
		if err := ValidateAccountID(req.ID); err != nil {
			errors["id"] = err.Error()
		}
	}
	if msg := checkName(req.Name); msg != "" {
		errors["name"] = msg
	}
	if msg := checkTags(req.Tags); msg != "" {
		errors["tags"] = msg
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

// ValidateUpdateAccount validates an account update request.
func ValidateUpdateAccount(req request.UpdateAccountRequest) error {
	errors := make(map[string]string)

	if req.Name != nil {
		if msg := checkName(*req.Name); msg != "" {
			errors["name"] = msg
		}
	}
	if req.Tags != nil {
		if msg := checkTags(*req.Tags); msg != "" {
			errors["tags"] = msg
		}
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

func checkName(name string) string {
	switch {
	case strings.TrimSpace(name) == "":
		return "name is required"
	case len(name) > 100:
		return "name must be at most 100 characters"
	}
	return ""
}

func checkTags(tags []string) string {
	for _, tag := range tags {
		if strings.TrimSpace(tag) == "" || strings.Contains(tag, ",") {
			return fmt.Sprintf("invalid tag: %q", tag)
		}
	}
	return ""
}

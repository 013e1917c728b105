package esg

import (
	"errors"
	"strings"

	"esg-assess/pkg/validator"
)

// ValidationError lists every problem found in a submission. Callers get the
// whole list at once rather than the first failure.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages, "; ")
}

// MsgNoCorePolicy is reported when none of the six core governance policies
// are in place
const MsgNoCorePolicy = "at least one Core Policy must be in place (code_of_conduct, anti_corruption_policy, data_privacy_policy, whistleblower_policy, board_oversight or risk_management_policy)"

var inputValidator = validator.New(Opt[float64]{}, Opt[int]{})

// ValidateProfile checks a business profile
func ValidateProfile(p BusinessProfile) error {
	return asValidationError(inputValidator.Struct(p), nil)
}

// ValidateInput checks a submission. Range and enum rules come from the struct
// tags. The core policy rule is checked here because it spans several fields.
func ValidateInput(in ESGInput) error {
	var extra []string
	hasPolicy := false
	for _, p := range in.CorePolicies() {
		if p.InPlace {
			hasPolicy = true
			break
		}
	}
	if !hasPolicy {
		extra = append(extra, MsgNoCorePolicy)
	}
	return asValidationError(inputValidator.Struct(in), extra)
}

// ValidateAction checks an action supplied by a user rather than derived
// from a rule
func ValidateAction(a Action) error {
	return asValidationError(inputValidator.Struct(a), nil)
}

func asValidationError(err error, extra []string) error {
	var msgs []string
	if err != nil {
		var fieldErrs validator.Errors
		if !errors.As(err, &fieldErrs) {
			return err
		}
		msgs = append(msgs, fieldErrs...)
	}
	msgs = append(msgs, extra...)
	if len(msgs) == 0 {
		return nil
	}
	return &ValidationError{Messages: msgs}
}

// Package validator provides rule-based input validation with field-level error reporting.
//
// Rules are plain values pairing a check with the error to report. Apply runs all of them
// and returns ValidationErrors listing every failure, or nil:
//
//	err := validator.Apply(
//		validator.ValidEmail("email", email),
//		validator.PasswordLength("password", password, policy),
//	)
//	if validator.IsValidationError(err) {
//		// 422 with per-field details
//	}
//
// Each ValidationError carries a stable TranslationKey so clients can localize messages.
package validator

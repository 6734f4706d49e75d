// Package sanitizer normalizes user-supplied identity input before it is validated or stored.
//
// Email addresses are the only identifier the service accepts, so two spellings that differ
// only in case or surrounding whitespace must collapse to the same stored value:
//
//	sanitizer.NormalizeEmail("  Jane.Doe@Example.COM ") // "jane.doe@example.com"
//
// MaskEmail hides the local part for logs.
package sanitizer

// Package datefmt maps the configured date-format identifier to a closed table
// of matching rules and extracts calendar-valid dates embedded in file names.
//
// Only the enumerated formats are supported. Formats whose month/day order
// cannot be inferred from digit counts alone must be added to the table by
// hand; there is deliberately no strftime-to-regexp translation.
package datefmt

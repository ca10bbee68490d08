// Package profile defines creator profile rows, the read-only store contract the
// context builders consume, and the formatters that render rows into prompt text.
//
// Every descriptive field on a row is optional. The formatters never fail on
// missing data: absent scalars, lists and JSON arrays all render as "-".
package profile

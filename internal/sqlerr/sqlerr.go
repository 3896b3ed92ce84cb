// Package sqlerr classifies database driver errors.
//
// It parses SQLSTATE codes from the Postgres driver and converts them
// into the application error taxonomy: uniqueness violations become
// conflicts, not-null and check violations become bad requests with
// field-level errors, and missing rows become not-found errors.
package sqlerr

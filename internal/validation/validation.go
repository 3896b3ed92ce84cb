// Package validation contains the logic for validating request data.
//
// It uses the validator library to enforce rules (required fields,
// ranges, enumerations, cross-field constraints) declared in struct
// tags, and extracts failures into field-level errors the client can
// act on.
package validation

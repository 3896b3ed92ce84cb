// Package domain defines the core entities (users, tours, reviews)
// together with their request payloads and validation rules. Types
// here are storage- and transport-agnostic; repositories scan into
// them and handlers bind into the request structs.
package domain

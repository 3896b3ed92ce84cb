// Package auth implements the credential primitives: stateless JWT
// access tokens, bcrypt password hashing, and single-use password
// reset tokens.
package auth

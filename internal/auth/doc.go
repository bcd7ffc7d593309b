// Package auth handles operator authentication for the HTTP API: bcrypt
// password verification, HS256 JWT issuance, and the Gin middleware that
// guards authenticated routes.
package auth

// Package auth verifies caller identity tokens.
//
// Two verifiers are provided: OIDCVerifier checks ID tokens against an OpenID
// Connect issuer and JWTVerifier checks HS256 tokens signed with a shared
// secret. Both map the token subject to the user id that scopes every
// credential and bucket operation.
//
// The verified user id travels in the request context (WithUserID,
// UserIDFromContext). It is never taken from request bodies, query strings
// or unsigned headers.
package auth

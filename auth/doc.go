// Package auth gates memoized functions behind caller identity.
//
// The caller is carried in the context, either as an *Identity attached with
// WithIdentity or as a bearer token attached with WithToken and resolved by an
// Authenticator such as JWTAuthenticator. Authorizers decide whether that
// caller may invoke a function; SimpleRBACAuthorizer and RequireRole cover the
// common cases.
//
// The gate must sit above the memoizer so that a cached result is never
// returned to a caller who is not allowed to compute it:
//
//	m, _ := memo.New(deleteUser)
//	guarded := memo.Chain(m.Func(),
//		auth.Authenticate[string](jwtAuth),
//		auth.Decorate[string](auth.RequireRole("admin"), "users.delete"),
//	)
//
// Denials are errors, so they are never stored.
package auth

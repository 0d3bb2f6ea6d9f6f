package common

// AccessTokenCookieName is the cookie that carries the bearer token for
// browser clients.
const AccessTokenCookieName = "access_token_cookie"

// AuthorizationHeaderName carries "Bearer <token>" for non-browser clients.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the token in the Authorization header.
const BearerPrefix = "Bearer "

package common

// AuthorizationHeaderName is the HTTP header carrying the bearer token on
// outbound requests to the backend.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix prefixes the access token in the Authorization header.
const BearerPrefix = "Bearer "

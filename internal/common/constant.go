package common

// AuthorizationHeaderName is the HTTP header and gRPC metadata key used to
// carry the bearer credential on outbound requests.
const AuthorizationHeaderName = "authorization"

// BearerPrefix precedes the token in the authorization value.
const BearerPrefix = "Bearer "

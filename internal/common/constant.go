package common

// AuthorizationHeaderName is the HTTP header carrying the bearer token on
// authenticated API requests.
const AuthorizationHeaderName = "Authorization"

// IdempotencyKeyHeaderName is the HTTP header carrying the client-generated
// key the server uses to deduplicate retried report submissions.
const IdempotencyKeyHeaderName = "X-Idempotency-Key"

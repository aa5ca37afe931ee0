package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// UsernamesCollection is the document collection holding username
// reservations keyed by lowercase username.
const UsernamesCollection = "usernames"

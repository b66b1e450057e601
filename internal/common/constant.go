// Package common contains constants and sentinel errors shared by the
// client packages.
package common

// Header names used on outbound requests.
const (
	AuthorizationHeaderName = "Authorization"
	BucketTokenHeaderName   = "X-Bucket-Token"
	RequestIDHeaderName     = "X-Request-ID"
	ContentTypeHeaderName   = "Content-Type"
)

// DefaultContentType is sent for files whose type is unknown.
const DefaultContentType = "application/octet-stream"

// DefaultOAuthProvider is used when the caller does not name one.
const DefaultOAuthProvider = "github"

// Keys of the persisted client state.
const (
	AccessTokenKey       = "access_token"
	RefreshTokenKey      = "refresh_token"
	BucketTokenKeyPrefix = "bucket_access_"
	ReturnURLKey         = "oauth_return_url"
)

// DefaultReturnURL is where navigation resumes when no return URL was saved.
const DefaultReturnURL = "/"

// Package account implements the credential workflows of the site: sign up,
// sign in, change username, the two-step email change, change password, and
// the profile/logout helpers of the manage page.
//
// Every flow follows the same shape:
//
//	idle -> validating -> submitting -> success | failure -> idle
//
// Local validation failures go straight from validating back to idle without
// touching the identity service or the document store. Every outcome the
// user should see is delivered as a notification; the returned error is for
// the caller's bookkeeping only.
//
// Workflows never read ambient session state. The caller passes the session
// snapshot it currently holds (see identity.Tracker), and a nil snapshot
// means nobody is signed in.
package account

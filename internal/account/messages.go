package account

import (
	"github.com/dmitrijs2005/siteaccounts/internal/identity"
	"github.com/dmitrijs2005/siteaccounts/internal/notify"
)

// Message is user-facing copy with its severity.
type Message struct {
	Text     string
	Severity notify.Severity
}

func info(text string) Message { return Message{Text: text, Severity: notify.Info} }
func success(text string) Message { return Message{Text: text, Severity: notify.Success} }
func warning(text string) Message { return Message{Text: text, Severity: notify.Warning} }
func failure(text string) Message { return Message{Text: text, Severity: notify.Error} }

// Popup titles.
const (
	TitleChangeUsername = "Change Username"
	TitleChangeEmail    = "Change Email"
	TitleEnterNewEmail  = "Enter New Email"
	TitleChangePassword = "Change Password"
)

// Profile placeholders shown instead of a username.
const (
	NoUsername        = "No username set"
	UsernameLoadError = "Error loading username"
)

const usernameRule = "Username must be 3–20 characters, only letters, numbers, or underscore."

var (
	msgNoUser = failure("No authenticated user found.")

	// sign up
	msgConfirmMismatch    = warning("The confirmation password does not match!")
	msgSignUpUsernameRule = info(usernameRule)
	msgSignUpPasswordRule = info("Password must include uppercase, lowercase, and a number.")
	msgSignUpTaken        = failure("Username is already taken!")
	msgRegistered         = success("Registration successful. Check your email to verify your account!")
	msgVerificationFailed = failure("Failed to send verification email. Please try again.")

	// sign in
	msgEnterBoth   = warning("Please enter both email and password.")
	msgNotVerified = info("Your email is not verified. Please check your inbox.")
	msgLoggedIn    = success("Login successful!")

	// change username
	msgEnterUsername   = failure("Please enter a username")
	msgRenameRule      = warning(usernameRule)
	msgRenameTaken     = failure("This username is already taken!")
	msgUsernameUpdated = success("Username updated successfully!")

	// change email
	msgEnterPassword  = failure("Please enter your password")
	msgEnterEmail     = failure("Please enter an email address")
	msgInvalidEmail   = warning("Please enter a valid email address")
	msgReauthFirst    = warning("Please confirm your password before changing your email")
	msgEmailRequested = success("Email updated! Please verify your new email via the link sent.")

	// change password
	msgFillAll         = failure("Please fill in all fields")
	msgNewMismatch     = warning("New passwords do not match")
	msgPasswordRule    = warning("Password must be at least 8 characters, include uppercase, lowercase, and a number.")
	msgPasswordUpdated = success("Password updated successfully!")

	// logout
	msgLoggedOut    = info("Logged out successfully")
	msgLogoutFailed = failure("Error logging out")
)

// errorTable maps identity failure codes to copy. Codes not listed get
// Fallback when it is set, otherwise Prefix followed by the raw detail as an
// error.
type errorTable struct {
	Codes    map[identity.Code]Message
	Fallback Message
	Prefix   string
}

func (t errorTable) message(err error) Message {
	if m, ok := t.Codes[identity.CodeOf(err)]; ok {
		return m
	}
	if t.Fallback.Text != "" {
		return t.Fallback
	}
	return failure(t.Prefix + identity.DetailOf(err))
}

var signUpErrors = errorTable{
	Codes: map[identity.Code]Message{
		identity.CodeEmailInUse:   failure("Email is already in use."),
		identity.CodeInvalidEmail: failure("Invalid email format."),
		identity.CodeWeakPassword: warning("Your password is too weak."),
	},
	Prefix: "Registration error: ",
}

var signInErrors = errorTable{
	Codes: map[identity.Code]Message{
		identity.CodeUserNotFound:  failure("Incorrect email or password."),
		identity.CodeWrongPassword: failure("Incorrect email or password."),
		identity.CodeInvalidEmail:  failure("Invalid email format."),
	},
	Prefix: "Login error: ",
}

var renameErrors = errorTable{
	Prefix: "Failed to update username: ",
}

var verifyErrors = errorTable{
	Codes: map[identity.Code]Message{
		identity.CodeWrongPassword: failure("Incorrect password. Please try again."),
	},
	Fallback: failure("Password verification failed"),
}

var emailErrors = errorTable{
	Prefix: "Failed to update email: ",
}

var passwordErrors = errorTable{
	Codes: map[identity.Code]Message{
		identity.CodeWrongPassword:       failure("Current password is incorrect"),
		identity.CodeRequiresRecentLogin: warning("Please log in again before changing your password"),
	},
	Prefix: "Failed to update password: ",
}

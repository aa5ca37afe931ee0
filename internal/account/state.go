package account

// Flow names one workflow.
type Flow string

const (
	FlowSignUp         Flow = "sign-up"
	FlowSignIn         Flow = "sign-in"
	FlowChangeUsername Flow = "change-username"
	FlowChangeEmail    Flow = "change-email"
	FlowChangePassword Flow = "change-password"
)

// State is a workflow state.
type State string

const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
	StateSubmitting State = "submitting"
	StateSuccess    State = "success"
	StateFailure    State = "failure"
)

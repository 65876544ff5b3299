package linking

// Outcome is the terminal state of one callback invocation. Every path through
// HandleCallback ends in exactly one Outcome.
type Outcome int

const (
	OutcomeLinked Outcome = iota
	OutcomeStateMismatch
	OutcomeMissingCode
	OutcomeExchangeFailed
	OutcomeNoAccessToken
	OutcomeProfileUnavailable
	OutcomeUnauthenticated
	OutcomeDuplicateAccount
	OutcomeAccountPersistFailed
)

var outcomeNames = map[Outcome]string{
	OutcomeLinked:               "linked",
	OutcomeStateMismatch:        "state_mismatch",
	OutcomeMissingCode:          "missing_code",
	OutcomeExchangeFailed:       "exchange_failed",
	OutcomeNoAccessToken:        "no_access_token",
	OutcomeProfileUnavailable:   "profile_unavailable",
	OutcomeUnauthenticated:      "unauthenticated",
	OutcomeDuplicateAccount:     "duplicate_account",
	OutcomeAccountPersistFailed: "account_persist_failed",
}

// errorCodes are the values placed in the redirect's error parameter. Outcomes without
// an entry redirect without one.
var errorCodes = map[Outcome]string{
	OutcomeStateMismatch:        "oauth_state",
	OutcomeExchangeFailed:       "oauth_exchange",
	OutcomeNoAccessToken:        "oauth_token",
	OutcomeProfileUnavailable:   "oauth_profile",
	OutcomeUnauthenticated:      "unauthenticated",
	OutcomeDuplicateAccount:     "account_exists",
	OutcomeAccountPersistFailed: "account_persist",
}

func (o Outcome) String() string {
	if name, ok := outcomeNames[o]; ok {
		return name
	}
	return "unknown"
}

// ErrorCode is the user-visible error code, empty for success and a missing code.
func (o Outcome) ErrorCode() string {
	return errorCodes[o]
}

// Succeeded reports whether the mailbox was linked.
func (o Outcome) Succeeded() bool {
	return o == OutcomeLinked
}

// ToSignIn reports whether the user should be sent back to sign in rather than to the
// dashboard.
func (o Outcome) ToSignIn() bool {
	switch o {
	case OutcomeStateMismatch, OutcomeMissingCode, OutcomeUnauthenticated:
		return true
	}
	return false
}

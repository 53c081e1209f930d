package reconcile

// Decision answers a yes/no question raised during reconciliation, such
// as whether to adopt a remote environment with a different id. The
// engine never talks to a terminal itself; callers supply the policy.
type Decision func(question string) bool

// AlwaysYes approves every question. Used by --yes and in tests.
func AlwaysYes(string) bool { return true }

// AlwaysNo declines every question.
func AlwaysNo(string) bool { return false }

package domain

// Action is a lifecycle operation subject to authorization.
type Action string

const (
	ActionUpdateProfile  Action = "update-profile"
	ActionUpdatePassword Action = "update-password"
	ActionActivate       Action = "activate"
	ActionDeactivate     Action = "deactivate"
	ActionDelete         Action = "delete"
)

// Decision is the binary outcome of the policy.
type Decision bool

const (
	Allow Decision = true
	Deny  Decision = false
)

func (d Decision) String() string {
	if d {
		return "allow"
	}
	return "deny"
}

// Decide reports whether actor may perform action on the account identified
// by target (a username). It does no I/O.
//
// Profile and password updates are self-service only; admins cannot edit
// other people's profiles. Activation state can be toggled by the owner or
// an admin. Deletion is reserved to admins.
func Decide(action Action, actor Claims, target string) Decision {
	self := actor.Subject != "" && actor.Subject == target

	switch action {
	case ActionUpdateProfile, ActionUpdatePassword:
		return Decision(self)
	case ActionActivate, ActionDeactivate:
		return Decision(self || isAdmin(actor.Role))
	case ActionDelete:
		return Decision(isAdmin(actor.Role))
	default:
		return Deny
	}
}

// Authorize is Decide with DENY surfaced as ErrForbidden.
func Authorize(action Action, actor Claims, target string) error {
	if Decide(action, actor, target) == Deny {
		return ErrForbidden
	}
	return nil
}

func isAdmin(r Role) bool {
	switch r {
	case RoleAdmin:
		return true
	case RoleUser:
		return false
	default:
		return false
	}
}

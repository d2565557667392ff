package policy

import "github.com/taskdeck/taskdeck/internal/services/user"

// Action names a mutating operation gated by policy.
type Action string

const ActionCreateTask Action = "create_task"

// rules is the table of per-action predicates. Adding an action means adding
// a row here; nothing else consults user attributes.
var rules = map[Action]func(*user.User) bool{
	ActionCreateTask: func(u *user.User) bool {
		return u.Role != ""
	},
}

// Can reports whether the user may perform the action. Pure and synchronous;
// unknown actions are denied. Ownership checks on existing resources are the
// store's job, not this table's.
func Can(u *user.User, action Action) bool {
	if u == nil {
		return false
	}

	pred, ok := rules[action]
	if !ok {
		return false
	}

	return pred(u)
}

package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taskdeck/taskdeck/internal/services/user"
)

func TestCan(t *testing.T) {
	tests := []struct {
		name   string
		user   *user.User
		action Action
		want   bool
	}{
		{
			name:   "user role can create tasks",
			user:   &user.User{ID: "u1", Role: "user"},
			action: ActionCreateTask,
			want:   true,
		},
		{
			name:   "admin role can create tasks",
			user:   &user.User{ID: "u1", Role: "admin"},
			action: ActionCreateTask,
			want:   true,
		},
		{
			name:   "missing role is denied",
			user:   &user.User{ID: "u1"},
			action: ActionCreateTask,
			want:   false,
		},
		{
			name:   "nil user is denied",
			user:   nil,
			action: ActionCreateTask,
			want:   false,
		},
		{
			name:   "unknown action is denied",
			user:   &user.User{ID: "u1", Role: "admin"},
			action: Action("drop_tables"),
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Can(tt.user, tt.action))
		})
	}
}

func TestCan_IsPure(t *testing.T) {
	u := &user.User{ID: "u1", Role: "user"}

	first := Can(u, ActionCreateTask)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Can(u, ActionCreateTask))
	}
	assert.Equal(t, "user", u.Role)
}

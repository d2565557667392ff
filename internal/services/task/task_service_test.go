package task

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskdeck/taskdeck/internal/services/user"
)

// memRepo is an in-memory Repository honoring the same ownership filter as
// the SQL implementation.
type memRepo struct {
	tasks map[uuid.UUID]*Task
	err   error
}

func newMemRepo() *memRepo {
	return &memRepo{tasks: map[uuid.UUID]*Task{}}
}

func (m *memRepo) Create(ctx context.Context, name string, description *string, dueDate *time.Time, createdBy string) (*Task, error) {
	if m.err != nil {
		return nil, m.err
	}

	t := &Task{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		DueDate:     dueDate,
		Completed:   false,
		CreatedBy:   createdBy,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	m.tasks[t.ID] = t

	copied := *t
	return &copied, nil
}

func (m *memRepo) GetByOwner(ctx context.Context, id uuid.UUID, ownerID string) (*Task, error) {
	if m.err != nil {
		return nil, m.err
	}

	t, ok := m.tasks[id]
	if !ok || t.CreatedBy != ownerID {
		return nil, ErrTaskNotFound
	}

	copied := *t
	return &copied, nil
}

func (m *memRepo) ListByOwner(ctx context.Context, ownerID string) ([]*Task, error) {
	if m.err != nil {
		return nil, m.err
	}

	var out []*Task
	for _, t := range m.tasks {
		if t.CreatedBy == ownerID {
			copied := *t
			out = append(out, &copied)
		}
	}

	return out, nil
}

func (m *memRepo) Update(ctx context.Context, id uuid.UUID, ownerID string, changes *TaskChanges) (*Task, error) {
	if m.err != nil {
		return nil, m.err
	}

	t, ok := m.tasks[id]
	if !ok || t.CreatedBy != ownerID {
		return nil, ErrTaskNotFound
	}

	if changes.Name != nil {
		t.Name = *changes.Name
	}
	if changes.SetDescription {
		t.Description = changes.Description
	}
	if changes.SetDueDate {
		t.DueDate = changes.DueDate
	}
	if changes.Completed != nil {
		t.Completed = *changes.Completed
	}
	t.UpdatedAt = time.Now()

	copied := *t
	return &copied, nil
}

func (m *memRepo) Delete(ctx context.Context, id uuid.UUID, ownerID string) error {
	if m.err != nil {
		return m.err
	}

	t, ok := m.tasks[id]
	if !ok || t.CreatedBy != ownerID {
		return ErrTaskNotFound
	}

	delete(m.tasks, id)
	return nil
}

func testUser(id string) *user.User {
	return &user.User{ID: id, Username: id, Role: "user"}
}

func strPtr(s string) *string { return &s }

func TestCreate_SetsOwnerAndDefaults(t *testing.T) {
	svc := NewTaskService(newMemRepo())

	created, err := svc.Create(context.Background(), testUser("u1"), &CreateTaskRequest{
		Name:        "Buy milk",
		Description: strPtr("2%"),
		DueDate:     strPtr("2024-06-01"),
	})
	require.NoError(t, err)

	assert.Equal(t, "Buy milk", created.Name)
	assert.Equal(t, "u1", created.CreatedBy)
	assert.False(t, created.Completed)
	require.NotNil(t, created.Description)
	assert.Equal(t, "2%", *created.Description)
	require.NotNil(t, created.DueDate)
	assert.Equal(t, "2024-06-01", created.DueDate.Format("2006-01-02"))
	assert.NotEqual(t, uuid.Nil, created.ID)
}

func TestCreate_BlankNameFails(t *testing.T) {
	svc := NewTaskService(newMemRepo())

	for _, name := range []string{"", "  ", "\t\n"} {
		_, err := svc.Create(context.Background(), testUser("u1"), &CreateTaskRequest{Name: name})
		assert.ErrorIs(t, err, ErrInvalidInput)
	}
}

func TestCreate_NameTooLongFails(t *testing.T) {
	svc := NewTaskService(newMemRepo())

	_, err := svc.Create(context.Background(), testUser("u1"), &CreateTaskRequest{Name: strings.Repeat("a", maxNameLength+1)})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCreate_DescriptionTooLongFails(t *testing.T) {
	svc := NewTaskService(newMemRepo())

	longStr := strings.Repeat("b", maxDescriptionLength+1)

	_, err := svc.Create(context.Background(), testUser("u1"), &CreateTaskRequest{Name: "ok", Description: &longStr})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

// The limits count characters, not bytes: a multibyte name at exactly the
// limit must pass even though its byte length is twice the limit.
func TestCreate_LimitsCountRunesNotBytes(t *testing.T) {
	svc := NewTaskService(newMemRepo())

	name := strings.Repeat("é", maxNameLength)
	desc := strings.Repeat("ü", maxDescriptionLength)

	created, err := svc.Create(context.Background(), testUser("u1"), &CreateTaskRequest{Name: name, Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, name, created.Name)

	_, err = svc.Create(context.Background(), testUser("u1"), &CreateTaskRequest{Name: strings.Repeat("é", maxNameLength+1)})
	assert.ErrorIs(t, err, ErrInvalidInput)

	tooLongDesc := strings.Repeat("ü", maxDescriptionLength+1)
	_, err = svc.Create(context.Background(), testUser("u1"), &CreateTaskRequest{Name: "ok", Description: &tooLongDesc})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUpdate_NameLimitCountsRunes(t *testing.T) {
	svc := NewTaskService(newMemRepo())

	created, err := svc.Create(context.Background(), testUser("u1"), &CreateTaskRequest{Name: "ok"})
	require.NoError(t, err)

	name := strings.Repeat("é", maxNameLength)
	updated, err := svc.Update(context.Background(), created.ID, &UpdateTaskRequest{Name: &name}, "u1")
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)

	tooLong := strings.Repeat("é", maxNameLength+1)
	_, err = svc.Update(context.Background(), created.ID, &UpdateTaskRequest{Name: &tooLong}, "u1")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCreate_BadDueDateFails(t *testing.T) {
	svc := NewTaskService(newMemRepo())

	_, err := svc.Create(context.Background(), testUser("u1"), &CreateTaskRequest{Name: "ok", DueDate: strPtr("06/01/2024")})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCreate_PolicyDenied(t *testing.T) {
	svc := NewTaskService(newMemRepo())

	_, err := svc.Create(context.Background(), nil, &CreateTaskRequest{Name: "ok"})
	assert.ErrorIs(t, err, ErrNotAllowed)

	noRole := &user.User{ID: "u1"}
	_, err = svc.Create(context.Background(), noRole, &CreateTaskRequest{Name: "ok"})
	assert.ErrorIs(t, err, ErrNotAllowed)
}

func TestList_OwnershipIsolation(t *testing.T) {
	repo := newMemRepo()
	svc := NewTaskService(repo)
	ctx := context.Background()

	created, err := svc.Create(ctx, testUser("u1"), &CreateTaskRequest{Name: "Buy milk"})
	require.NoError(t, err)

	mine, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, created.ID, mine[0].ID)

	theirs, err := svc.List(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, theirs)
}

func TestUpdate_OtherUserLooksLikeMissing(t *testing.T) {
	repo := newMemRepo()
	svc := NewTaskService(repo)
	ctx := context.Background()

	created, err := svc.Create(ctx, testUser("u1"), &CreateTaskRequest{Name: "Buy milk"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, created.ID, &UpdateTaskRequest{Name: strPtr("stolen")}, "u2")
	assert.ErrorIs(t, err, ErrTaskNotFound)

	err = svc.Delete(ctx, created.ID, "u2")
	assert.ErrorIs(t, err, ErrTaskNotFound)

	// The owner still sees the original
	mine, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Buy milk", mine[0].Name)
}

func TestUpdate_PartialLeavesOmittedFields(t *testing.T) {
	repo := newMemRepo()
	svc := NewTaskService(repo)
	ctx := context.Background()

	created, err := svc.Create(ctx, testUser("u1"), &CreateTaskRequest{
		Name:        "Buy milk",
		Description: strPtr("x"),
	})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, &UpdateTaskRequest{Name: strPtr("new")}, "u1")
	require.NoError(t, err)

	assert.Equal(t, "new", updated.Name)
	require.NotNil(t, updated.Description)
	assert.Equal(t, "x", *updated.Description)
}

func TestUpdate_EmptyDescriptionClears(t *testing.T) {
	repo := newMemRepo()
	svc := NewTaskService(repo)
	ctx := context.Background()

	created, err := svc.Create(ctx, testUser("u1"), &CreateTaskRequest{
		Name:        "Buy milk",
		Description: strPtr("x"),
	})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, &UpdateTaskRequest{Description: strPtr("")}, "u1")
	require.NoError(t, err)
	assert.Nil(t, updated.Description)
}

func TestUpdate_BlankNameRejectedBeforeStore(t *testing.T) {
	repo := newMemRepo()
	svc := NewTaskService(repo)
	ctx := context.Background()

	created, err := svc.Create(ctx, testUser("u1"), &CreateTaskRequest{Name: "Buy milk"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, created.ID, &UpdateTaskRequest{Name: strPtr("   ")}, "u1")
	assert.ErrorIs(t, err, ErrInvalidInput)

	mine, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", mine[0].Name)
}

func TestToggleCompletion_RoundTrip(t *testing.T) {
	repo := newMemRepo()
	svc := NewTaskService(repo)
	ctx := context.Background()

	created, err := svc.Create(ctx, testUser("u1"), &CreateTaskRequest{Name: "Buy milk"})
	require.NoError(t, err)
	require.False(t, created.Completed)

	toggled, err := svc.ToggleCompletion(ctx, created.ID, false, "u1")
	require.NoError(t, err)
	assert.True(t, toggled.Completed)

	back, err := svc.ToggleCompletion(ctx, created.ID, true, "u1")
	require.NoError(t, err)
	assert.False(t, back.Completed)
}

func TestDelete_IsTerminal(t *testing.T) {
	repo := newMemRepo()
	svc := NewTaskService(repo)
	ctx := context.Background()

	created, err := svc.Create(ctx, testUser("u1"), &CreateTaskRequest{Name: "Buy milk"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID, "u1"))

	_, err = svc.Update(ctx, created.ID, &UpdateTaskRequest{Name: strPtr("ghost")}, "u1")
	assert.ErrorIs(t, err, ErrTaskNotFound)

	err = svc.Delete(ctx, created.ID, "u1")
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestList_StoreErrorWraps(t *testing.T) {
	repo := newMemRepo()
	repo.err = assert.AnError
	svc := NewTaskService(repo)

	_, err := svc.List(context.Background(), "u1")
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), "failed to fetch tasks")
}

package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterHashesPassword(t *testing.T) {
	svc := NewUserService(setupTestDB(t))
	ctx := context.Background()

	u, err := svc.Register(ctx, "u", "u@x.com", "secret")
	require.NoError(t, err)
	require.NotZero(t, u.ID)

	// 落库的永远是哈希而不是明文
	assert.NotEqual(t, "secret", u.PasswordHash)
	assert.NotEmpty(t, u.PasswordHash)
	assert.True(t, svc.CheckPassword(u, "secret"))
	assert.False(t, svc.CheckPassword(u, "wrong"))
}

func TestRegisterDuplicateEmailFails(t *testing.T) {
	svc := NewUserService(setupTestDB(t))
	ctx := context.Background()

	_, err := svc.Register(ctx, "u1", "dup@x.com", "p")
	require.NoError(t, err)
	_, err = svc.Register(ctx, "u2", "dup@x.com", "p")
	assert.Error(t, err)
}

func TestFindByEmail(t *testing.T) {
	svc := NewUserService(setupTestDB(t))
	ctx := context.Background()

	_, err := svc.Register(ctx, "u", "u@x.com", "p")
	require.NoError(t, err)

	u, err := svc.FindByEmail(ctx, "u@x.com")
	require.NoError(t, err)
	assert.Equal(t, "u", u.Username)

	_, err = svc.FindByEmail(ctx, "nobody@x.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUpdateFieldsPartial(t *testing.T) {
	svc := NewUserService(setupTestDB(t))
	ctx := context.Background()

	u, err := svc.Register(ctx, "u", "u@x.com", "old")
	require.NoError(t, err)

	// 只更新邮箱，口令保持可用
	email := "new@x.com"
	require.NoError(t, svc.UpdateFields(ctx, u.ID, &email, nil))
	got, err := svc.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "new@x.com", got.Email)
	assert.True(t, svc.CheckPassword(got, "old"))

	// 只更新口令，重新哈希后旧口令失效
	pwd := "fresh"
	require.NoError(t, svc.UpdateFields(ctx, u.ID, nil, &pwd))
	got, err = svc.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, svc.CheckPassword(got, "fresh"))
	assert.False(t, svc.CheckPassword(got, "old"))
}

func TestUpdateFieldsRejectsEmptySet(t *testing.T) {
	svc := NewUserService(setupTestDB(t))
	ctx := context.Background()

	u, err := svc.Register(ctx, "u", "u@x.com", "p")
	require.NoError(t, err)

	err = svc.UpdateFields(ctx, u.ID, nil, nil)
	assert.ErrorIs(t, err, ErrNoFields)
}

func TestUpdateFieldsMissingUser(t *testing.T) {
	svc := NewUserService(setupTestDB(t))
	email := "x@x.com"
	err := svc.UpdateFields(context.Background(), 99, &email, nil)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserDelete(t *testing.T) {
	svc := NewUserService(setupTestDB(t))
	ctx := context.Background()

	u, err := svc.Register(ctx, "u", "u@x.com", "p")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, u.ID))
	assert.ErrorIs(t, svc.Delete(ctx, u.ID), ErrUserNotFound)
}

package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockAdminSource struct {
	mock.Mock
}

func (m *mockAdminSource) ListAdminIDs(ctx context.Context) ([]int64, error) {
	args := m.Called(ctx)
	return args.Get(0).([]int64), args.Error(1)
}

func TestAdminRoster_Partition(t *testing.T) {
	users := new(mockAdminSource)
	roster := NewAdminRoster(users, []int64{10, 11})
	ctx := context.Background()

	users.On("ListAdminIDs", ctx).Return([]int64{1, 2, 10}, nil)

	regular, main, err := roster.Partition(ctx)

	assert.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, regular)
	// 11 числится основным в конфигурации, но роли админа в БД у него нет.
	assert.Equal(t, []int64{10}, main)
}

func TestAdminRoster_Partition_RoleRevocationVisibleImmediately(t *testing.T) {
	users := new(mockAdminSource)
	roster := NewAdminRoster(users, []int64{10})
	ctx := context.Background()

	users.On("ListAdminIDs", ctx).Return([]int64{1, 10}, nil).Once()
	users.On("ListAdminIDs", ctx).Return([]int64{10}, nil).Once()

	regular, _, err := roster.Partition(ctx)
	assert.NoError(t, err)
	assert.Equal(t, []int64{1}, regular)

	regular, main, err := roster.Partition(ctx)
	assert.NoError(t, err)
	assert.Empty(t, regular)
	assert.Equal(t, []int64{10}, main)
}

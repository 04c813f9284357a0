package recipe

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/andrecf/recipebox/app/observability/metrics"
	"github.com/andrecf/recipebox/internal/api"
	"github.com/andrecf/recipebox/internal/types"
)

// MockRepository is a mock implementation of Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) ListActive(ctx context.Context, page types.Page) ([]types.Recipe, int, error) {
	args := m.Called(ctx, page)
	return recipesArg(args.Get(0)), args.Int(1), args.Error(2)
}

func (m *MockRepository) SearchText(ctx context.Context, query string, page types.Page) ([]types.Recipe, int, error) {
	args := m.Called(ctx, query, page)
	return recipesArg(args.Get(0)), args.Int(1), args.Error(2)
}

func (m *MockRepository) ListByCategory(ctx context.Context, category string, page types.Page) ([]types.Recipe, int, error) {
	args := m.Called(ctx, category, page)
	return recipesArg(args.Get(0)), args.Int(1), args.Error(2)
}

func (m *MockRepository) ListByOwner(ctx context.Context, owner string, active bool, page types.Page) ([]types.Recipe, int, error) {
	args := m.Called(ctx, owner, active, page)
	return recipesArg(args.Get(0)), args.Int(1), args.Error(2)
}

func (m *MockRepository) GetByID(ctx context.Context, id uuid.UUID) (*types.Recipe, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Recipe), args.Error(1)
}

func (m *MockRepository) Insert(ctx context.Context, recipe types.Recipe) error {
	args := m.Called(ctx, recipe)
	return args.Error(0)
}

func (m *MockRepository) Update(ctx context.Context, id uuid.UUID, params types.RecipeParams, updatedAt time.Time) error {
	args := m.Called(ctx, id, params, updatedAt)
	return args.Error(0)
}

func (m *MockRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	args := m.Called(ctx, id, active)
	return args.Error(0)
}

func (m *MockRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func recipesArg(v interface{}) []types.Recipe {
	if v == nil {
		return nil
	}
	return v.([]types.Recipe)
}

func setupRecipeServiceTest(ownerOnly bool) (*ServiceImpl, *MockRepository) {
	metrics.InitAppMetrics()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, ownerOnly, logger)
	return service, mockRepo
}

func TestServiceImpl_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("stamps ownership and timestamps", func(t *testing.T) {
		service, mockRepo := setupRecipeServiceTest(true)

		var inserted types.Recipe
		mockRepo.On("Insert", mock.Anything, mock.AnythingOfType("types.Recipe")).
			Run(func(args mock.Arguments) {
				inserted = args.Get(1).(types.Recipe)
			}).Return(nil).Once()

		before := time.Now()
		id, err := service.Create(ctx, "Chef", types.RecipeParams{
			Category: "dessert",
			Name:     "Pavlova",
		})
		require.NoError(t, err)
		assert.Equal(t, inserted.ID, id)

		// Owner comes from the session, case-normalized, never the form.
		assert.Equal(t, "chef", inserted.Owner)
		assert.True(t, inserted.Active)
		assert.Equal(t, inserted.CreatedAt, inserted.UpdatedAt)
		assert.False(t, inserted.CreatedAt.Before(before))
		mockRepo.AssertExpectations(t)
	})
}

func TestServiceImpl_Update(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	params := types.RecipeParams{Category: "dinner", Name: "Stew"}

	t.Run("owner can update", func(t *testing.T) {
		service, mockRepo := setupRecipeServiceTest(true)
		mockRepo.On("GetByID", mock.Anything, id).Return(&types.Recipe{ID: id, Owner: "chef"}, nil).Once()
		mockRepo.On("Update", mock.Anything, id, params, mock.AnythingOfType("time.Time")).Return(nil).Once()

		err := service.Update(ctx, "Chef", id, params)
		require.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("non-owner is rejected when the policy is on", func(t *testing.T) {
		service, mockRepo := setupRecipeServiceTest(true)
		mockRepo.On("GetByID", mock.Anything, id).Return(&types.Recipe{ID: id, Owner: "chef"}, nil).Once()

		err := service.Update(ctx, "intruder", id, params)
		require.Error(t, err)
		assert.ErrorIs(t, err, api.ErrForbidden)
		mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("non-owner is allowed when the policy is off", func(t *testing.T) {
		service, mockRepo := setupRecipeServiceTest(false)
		mockRepo.On("Update", mock.Anything, id, params, mock.AnythingOfType("time.Time")).Return(nil).Once()

		err := service.Update(ctx, "intruder", id, params)
		require.NoError(t, err)
		mockRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
		mockRepo.AssertExpectations(t)
	})

	t.Run("missing recipe", func(t *testing.T) {
		service, mockRepo := setupRecipeServiceTest(false)
		mockRepo.On("Update", mock.Anything, id, params, mock.AnythingOfType("time.Time")).
			Return(api.ErrNotFound).Once()

		err := service.Update(ctx, "chef", id, params)
		require.Error(t, err)
		assert.ErrorIs(t, err, api.ErrNotFound)
	})
}

func TestServiceImpl_SoftDeleteRestore(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	owned := &types.Recipe{ID: id, Owner: "chef"}

	t.Run("soft delete twice is idempotent", func(t *testing.T) {
		service, mockRepo := setupRecipeServiceTest(true)
		mockRepo.On("GetByID", mock.Anything, id).Return(owned, nil).Twice()
		mockRepo.On("SetActive", mock.Anything, id, false).Return(nil).Twice()

		require.NoError(t, service.SoftDelete(ctx, "chef", id))
		require.NoError(t, service.SoftDelete(ctx, "chef", id))
		mockRepo.AssertExpectations(t)
	})

	t.Run("restore flips the flag back", func(t *testing.T) {
		service, mockRepo := setupRecipeServiceTest(true)
		mockRepo.On("GetByID", mock.Anything, id).Return(owned, nil).Once()
		mockRepo.On("SetActive", mock.Anything, id, true).Return(nil).Once()

		require.NoError(t, service.Restore(ctx, "chef", id))
		mockRepo.AssertExpectations(t)
	})

	t.Run("non-owner cannot soft delete when the policy is on", func(t *testing.T) {
		service, mockRepo := setupRecipeServiceTest(true)
		mockRepo.On("GetByID", mock.Anything, id).Return(owned, nil).Once()

		err := service.SoftDelete(ctx, "intruder", id)
		assert.ErrorIs(t, err, api.ErrForbidden)
		mockRepo.AssertNotCalled(t, "SetActive", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestServiceImpl_PermanentlyDelete(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	t.Run("missing id is not an error", func(t *testing.T) {
		service, mockRepo := setupRecipeServiceTest(true)
		mockRepo.On("GetByID", mock.Anything, id).Return(nil, api.ErrNotFound).Once()
		mockRepo.On("Delete", mock.Anything, id).Return(nil).Once()

		require.NoError(t, service.PermanentlyDelete(ctx, "chef", id))
		mockRepo.AssertExpectations(t)
	})

	t.Run("non-owner cannot delete when the policy is on", func(t *testing.T) {
		service, mockRepo := setupRecipeServiceTest(true)
		mockRepo.On("GetByID", mock.Anything, id).Return(&types.Recipe{ID: id, Owner: "chef"}, nil).Once()

		err := service.PermanentlyDelete(ctx, "intruder", id)
		assert.ErrorIs(t, err, api.ErrForbidden)
		mockRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestServiceImpl_ListByOwner(t *testing.T) {
	ctx := context.Background()

	t.Run("owner filter is case-normalized", func(t *testing.T) {
		service, mockRepo := setupRecipeServiceTest(true)
		page := types.NewPage(1)
		mockRepo.On("ListByOwner", mock.Anything, "chef", true, page).
			Return([]types.Recipe{{Owner: "chef"}}, 1, nil).Once()

		recipes, total, err := service.ListByOwner(ctx, "Chef", true, page)
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		assert.Len(t, recipes, 1)
		mockRepo.AssertExpectations(t)
	})
}

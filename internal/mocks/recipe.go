package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/healthyrecipes/backend/internal/models"
	"github.com/healthyrecipes/backend/internal/service"
	"github.com/healthyrecipes/backend/internal/types"
)

// MockRecipeService is a mock implementation of the IRecipeService interface
type MockRecipeService struct {
	mock.Mock
}

var _ service.IRecipeService = (*MockRecipeService)(nil)

func (m *MockRecipeService) Save(ctx context.Context, userID uuid.UUID, recipe types.Recipe) (uuid.UUID, error) {
	args := m.Called(ctx, userID, recipe)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockRecipeService) Get(ctx context.Context, userID, id uuid.UUID) (*models.SavedRecipe, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SavedRecipe), args.Error(1)
}

func (m *MockRecipeService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

func (m *MockRecipeService) List(ctx context.Context, userID uuid.UUID) ([]models.SavedRecipe, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SavedRecipe), args.Error(1)
}

func (m *MockRecipeService) Search(ctx context.Context, userID uuid.UUID, query string) ([]models.SavedRecipe, error) {
	args := m.Called(ctx, userID, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SavedRecipe), args.Error(1)
}

// MockRecipeGenerator is a mock implementation of the IRecipeGenerator interface
type MockRecipeGenerator struct {
	mock.Mock
}

var _ service.IRecipeGenerator = (*MockRecipeGenerator)(nil)

func (m *MockRecipeGenerator) Generate(ctx context.Context, req types.GenerationRequest) types.Recipe {
	args := m.Called(ctx, req)
	return args.Get(0).(types.Recipe)
}

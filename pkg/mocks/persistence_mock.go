package mocks

import (
	"context"

	"github.com/dukex/formreport/pkg/models"
	"github.com/dukex/formreport/pkg/persistence"
	"github.com/stretchr/testify/mock"
)

// MockPersistence wraps a real store. HealthCheck and Close are mocked, and any repository
// set on the mock replaces the store's one.
type MockPersistence struct {
	mock.Mock
	persistence.Persistence

	Categories  *MockCategoryRepository
	Submissions *MockSubmissionRepository
}

func NewMockPersistence(store persistence.Persistence) *MockPersistence {
	return &MockPersistence{Persistence: store}
}

func (m *MockPersistence) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

func (m *MockPersistence) Close(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

func (m *MockPersistence) CategoryRepository() persistence.CategoryRepository {
	if m.Categories != nil {
		return m.Categories
	}

	return m.Persistence.CategoryRepository()
}

func (m *MockPersistence) SubmissionRepository() persistence.SubmissionRepository {
	if m.Submissions != nil {
		return m.Submissions
	}

	return m.Persistence.SubmissionRepository()
}

// MockCategoryRepository is a mock implementation of persistence.CategoryRepository interface.
type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) GetAll(ctx context.Context) ([]*models.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.Category), args.Error(1)
}

func (m *MockCategoryRepository) GetByID(ctx context.Context, id string) (*models.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *MockCategoryRepository) Save(ctx context.Context, category *models.Category) error {
	args := m.Called(ctx, category)

	return args.Error(0)
}

func (m *MockCategoryRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)

	return args.Error(0)
}

// MockSubmissionRepository is a mock implementation of persistence.SubmissionRepository interface.
type MockSubmissionRepository struct {
	mock.Mock
}

func (m *MockSubmissionRepository) Find(ctx context.Context, filter persistence.SubmissionFilter) ([]*models.Submission, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.Submission), args.Error(1)
}

func (m *MockSubmissionRepository) GetByID(ctx context.Context, id string) (*models.Submission, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Submission), args.Error(1)
}

func (m *MockSubmissionRepository) Save(ctx context.Context, submission *models.Submission) error {
	args := m.Called(ctx, submission)

	return args.Error(0)
}

func (m *MockSubmissionRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)

	return args.Error(0)
}

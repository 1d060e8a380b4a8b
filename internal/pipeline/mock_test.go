package pipeline

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/insanerask77/tienda-perfumes/internal/model"
)

// --- Source mock ---

type mockSource struct {
	mock.Mock
}

func (m *mockSource) Search(ctx context.Context, term string) ([]model.Candidate, error) {
	args := m.Called(ctx, term)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Candidate), args.Error(1)
}

func (m *mockSource) FetchDetail(ctx context.Context, pageURL string) (string, error) {
	args := m.Called(ctx, pageURL)
	return args.String(0), args.Error(1)
}

// --- Store mock ---

type mockStore struct {
	mock.Mock
}

func (m *mockStore) FindPerfumeByTitle(ctx context.Context, title string) (*model.Perfume, error) {
	args := m.Called(ctx, title)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Perfume), args.Error(1)
}

func (m *mockStore) CreatePerfume(ctx context.Context, draft model.PerfumeDraft) (*model.Perfume, error) {
	args := m.Called(ctx, draft)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Perfume), args.Error(1)
}

func (m *mockStore) CreateEquivalence(ctx context.Context, perfumeID string, draft model.EquivalenceDraft) (*model.Equivalence, error) {
	args := m.Called(ctx, perfumeID, draft)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Equivalence), args.Error(1)
}

func (m *mockStore) Health(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

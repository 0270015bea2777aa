package usecase

import (
	"context"
	"testing"

	"github.com/bazarly/listing-service/internal/catalog/domain"
	"github.com/bazarly/listing-service/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCatalogRepository struct{ mock.Mock }

func (m *MockCatalogRepository) GetAll(ctx context.Context) ([]*domain.CatalogNode, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.CatalogNode), args.Error(1)
}

func (m *MockCatalogRepository) GetByID(ctx context.Context, id string) (*domain.CatalogNode, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CatalogNode), args.Error(1)
}

type mapCache struct {
	nodes map[string]*domain.CatalogNode
}

func newMapCache() *mapCache {
	return &mapCache{nodes: make(map[string]*domain.CatalogNode)}
}

func (c *mapCache) Get(_ context.Context, id string) (*domain.CatalogNode, bool) {
	n, ok := c.nodes[id]
	return n, ok
}
func (c *mapCache) Set(_ context.Context, n *domain.CatalogNode) { c.nodes[n.ID] = n }
func (c *mapCache) Invalidate(_ context.Context, id string)      { delete(c.nodes, id) }

func TestGetCatalogTree(t *testing.T) {
	repo := new(MockCatalogRepository)
	uc := NewCatalogUsecase(repo, nil, logger.NewLogger())

	repo.On("GetAll", mock.Anything).Return([]*domain.CatalogNode{
		{ID: "transport"},
		{ID: "cars", ParentID: "transport"},
		{ID: "sedans", ParentID: "cars"},
		{ID: "realty"},
	}, nil)

	tree, err := uc.GetCatalogTree(context.Background())
	require.NoError(t, err)
	require.Len(t, tree, 2)

	var transport *domain.CatalogNode
	for _, root := range tree {
		if root.ID == "transport" {
			transport = root
		}
	}
	require.NotNil(t, transport)
	require.Len(t, transport.SubCategories, 1)
	assert.Equal(t, "cars", transport.SubCategories[0].ID)
	require.Len(t, transport.SubCategories[0].SubCategories, 1)
	assert.Equal(t, "sedans", transport.SubCategories[0].SubCategories[0].ID)
}

func TestGetCatalogTree_Empty(t *testing.T) {
	repo := new(MockCatalogRepository)
	uc := NewCatalogUsecase(repo, nil, logger.NewLogger())
	repo.On("GetAll", mock.Anything).Return([]*domain.CatalogNode{}, nil)

	_, err := uc.GetCatalogTree(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetFieldSchema_CacheReadThrough(t *testing.T) {
	repo := new(MockCatalogRepository)
	cache := newMapCache()
	uc := NewCatalogUsecase(repo, cache, logger.NewLogger())

	node := &domain.CatalogNode{ID: "cars", Fields: []domain.FieldDef{{Alias: "mileage"}}}
	repo.On("GetByID", mock.Anything, "cars").Return(node, nil).Once()

	got, err := uc.GetFieldSchema(context.Background(), "cars")
	require.NoError(t, err)
	assert.Equal(t, node, got)

	// Second read is served from the cache; the mock allows only one call.
	got, err = uc.GetFieldSchema(context.Background(), "cars")
	require.NoError(t, err)
	assert.Equal(t, node, got)
	repo.AssertExpectations(t)
}

func TestGetFieldSchema_NotFound(t *testing.T) {
	repo := new(MockCatalogRepository)
	uc := NewCatalogUsecase(repo, nil, logger.NewLogger())
	repo.On("GetByID", mock.Anything, "ghost").Return(nil, domain.ErrNotFound)

	_, err := uc.GetFieldSchema(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAncestryOf(t *testing.T) {
	repo := new(MockCatalogRepository)
	uc := NewCatalogUsecase(repo, nil, logger.NewLogger())

	repo.On("GetByID", mock.Anything, "sedans").Return(&domain.CatalogNode{ID: "sedans", ParentID: "cars"}, nil)
	repo.On("GetByID", mock.Anything, "cars").Return(&domain.CatalogNode{ID: "cars", ParentID: "transport"}, nil)
	repo.On("GetByID", mock.Anything, "transport").Return(&domain.CatalogNode{ID: "transport"}, nil)

	chain, err := uc.AncestryOf(context.Background(), "sedans")
	require.NoError(t, err)
	assert.Equal(t, []string{"sedans", "cars", "transport"}, chain)
}

func TestAncestryOf_CycleDetected(t *testing.T) {
	repo := new(MockCatalogRepository)
	uc := NewCatalogUsecase(repo, nil, logger.NewLogger())

	repo.On("GetByID", mock.Anything, "a").Return(&domain.CatalogNode{ID: "a", ParentID: "b"}, nil)
	repo.On("GetByID", mock.Anything, "b").Return(&domain.CatalogNode{ID: "b", ParentID: "a"}, nil)

	_, err := uc.AncestryOf(context.Background(), "a")
	assert.ErrorIs(t, err, domain.ErrCycleInTree)
}

func TestValidateCategorySelection(t *testing.T) {
	repo := new(MockCatalogRepository)
	uc := NewCatalogUsecase(repo, nil, logger.NewLogger())

	repo.On("GetByID", mock.Anything, "sedans").Return(&domain.CatalogNode{ID: "sedans", ParentID: "cars"}, nil)
	repo.On("GetByID", mock.Anything, "cars").Return(&domain.CatalogNode{ID: "cars"}, nil)

	t.Run("node plus ancestors is valid", func(t *testing.T) {
		err := uc.ValidateCategorySelection(context.Background(), "sedans", []string{"sedans", "cars"})
		assert.NoError(t, err)
	})

	t.Run("list must contain the node itself", func(t *testing.T) {
		err := uc.ValidateCategorySelection(context.Background(), "sedans", []string{"cars"})
		assert.Error(t, err)
	})

	t.Run("stranger category is rejected", func(t *testing.T) {
		err := uc.ValidateCategorySelection(context.Background(), "sedans", []string{"sedans", "realty"})
		assert.Error(t, err)
	})
}

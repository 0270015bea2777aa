package usecase

import (
	"context"
	"fmt"

	"github.com/bazarly/listing-service/internal/catalog/domain"
	"github.com/bazarly/listing-service/internal/platform/logger"
	"go.uber.org/zap"
)

// SchemaCache is a read-through cache for per-category field schemas.
// Implementations may be backed by Redis, an in-process LRU, or both.
type SchemaCache interface {
	Get(ctx context.Context, categoryID string) (*domain.CatalogNode, bool)
	Set(ctx context.Context, node *domain.CatalogNode)
	Invalidate(ctx context.Context, categoryID string)
}

// CatalogUsecase is the schema registry: it serves the category tree and the
// per-category additional-field schemas everything else validates against.
type CatalogUsecase struct {
	repo   domain.CatalogRepository
	cache  SchemaCache
	logger *logger.Logger
}

func NewCatalogUsecase(repo domain.CatalogRepository, cache SchemaCache, log *logger.Logger) *CatalogUsecase {
	return &CatalogUsecase{
		repo:   repo,
		cache:  cache,
		logger: log.Named("CatalogUsecase"),
	}
}

// GetCatalogTree returns the root nodes with their subcategories nested.
// The publish flag is carried through untouched; filtering unpublished nodes
// is a presentation concern.
func (uc *CatalogUsecase) GetCatalogTree(ctx context.Context) ([]*domain.CatalogNode, error) {
	nodes, err := uc.repo.GetAll(ctx)
	if err != nil {
		uc.logger.Error("Failed to load catalog nodes", zap.Error(err))
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	if len(nodes) == 0 {
		return nil, domain.ErrNotFound
	}

	byParent := make(map[string][]*domain.CatalogNode, len(nodes))
	for _, n := range nodes {
		byParent[n.ParentID] = append(byParent[n.ParentID], n)
	}

	var attach func(parentID string) []*domain.CatalogNode
	attach = func(parentID string) []*domain.CatalogNode {
		children := byParent[parentID]
		for _, child := range children {
			child.SubCategories = attach(child.ID)
		}
		return children
	}

	roots := attach("")
	if len(roots) == 0 {
		return nil, domain.ErrNotFound
	}
	return roots, nil
}

// GetFieldSchema returns the catalog node with its ordered field definitions
// and dynamic-title aliases. Returns domain.ErrNotFound for unknown ids.
func (uc *CatalogUsecase) GetFieldSchema(ctx context.Context, categoryID string) (*domain.CatalogNode, error) {
	if uc.cache != nil {
		if node, ok := uc.cache.Get(ctx, categoryID); ok {
			return node, nil
		}
	}

	node, err := uc.repo.GetByID(ctx, categoryID)
	if err != nil {
		uc.logger.Warn("Field schema lookup failed", zap.String("category_id", categoryID), zap.Error(err))
		return nil, err
	}

	if uc.cache != nil {
		uc.cache.Set(ctx, node)
	}
	return node, nil
}

// GetAllFieldSchemas returns every catalog node with its field definitions.
func (uc *CatalogUsecase) GetAllFieldSchemas(ctx context.Context) ([]*domain.CatalogNode, error) {
	nodes, err := uc.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	if len(nodes) == 0 {
		return nil, domain.ErrNotFound
	}
	return nodes, nil
}

// AncestryOf returns the id chain from categoryID up to its root, starting
// with categoryID itself.
func (uc *CatalogUsecase) AncestryOf(ctx context.Context, categoryID string) ([]string, error) {
	chain := []string{categoryID}
	seen := map[string]bool{categoryID: true}

	current := categoryID
	for {
		node, err := uc.repo.GetByID(ctx, current)
		if err != nil {
			return nil, err
		}
		if node.ParentID == "" {
			return chain, nil
		}
		if seen[node.ParentID] {
			uc.logger.Error("Catalog ancestry loop detected", zap.String("category_id", categoryID))
			return nil, domain.ErrCycleInTree
		}
		seen[node.ParentID] = true
		chain = append(chain, node.ParentID)
		current = node.ParentID
	}
}

// ValidateCategorySelection checks that a listing's declared category list
// consists of the catalog node itself plus its ancestors only.
func (uc *CatalogUsecase) ValidateCategorySelection(ctx context.Context, categoryID string, categories []string) error {
	found := false
	for _, c := range categories {
		if c == categoryID {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("category list must contain the catalog node %s", categoryID)
	}

	chain, err := uc.AncestryOf(ctx, categoryID)
	if err != nil {
		return err
	}
	allowed := make(map[string]bool, len(chain))
	for _, id := range chain {
		allowed[id] = true
	}
	for _, c := range categories {
		if !allowed[c] {
			return fmt.Errorf("category %s is not on the path of catalog node %s", c, categoryID)
		}
	}
	return nil
}

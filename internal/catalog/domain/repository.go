package domain

import "context"

// CatalogRepository provides read access to the catalog store. The catalog is
// read-mostly; mutation happens through catalog administration which is not
// part of this service.
type CatalogRepository interface {
	GetAll(ctx context.Context) ([]*CatalogNode, error)
	GetByID(ctx context.Context, id string) (*CatalogNode, error)
}

package catalog

import "context"

// ServiceRepository defines persistence for catalog services
type ServiceRepository interface {
	FindAll(ctx context.Context, serviceType ServiceType) ([]Service, error)
	FindByServiceID(ctx context.Context, serviceID string) (*Service, error)
	FindByServiceIDs(ctx context.Context, serviceIDs []string) ([]Service, error)
	// MaxServiceNumber returns the highest n among SERVICE-<n>, or 0
	MaxServiceNumber(ctx context.Context) (int64, error)
	Save(ctx context.Context, s *Service) error
}

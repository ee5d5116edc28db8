package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/swas/backend/internal/domain/catalog"
	"github.com/swas/backend/internal/domain/shared"
	"go.uber.org/zap"
)

const maxServiceIDAttempts = 3

// CatalogService manages the list of repair and cleaning services
type CatalogService struct {
	serviceRepo catalog.ServiceRepository
	logger      *zap.Logger
	now         func() time.Time
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(serviceRepo catalog.ServiceRepository, logger *zap.Logger) *CatalogService {
	return &CatalogService{
		serviceRepo: serviceRepo,
		logger:      logger,
		now:         time.Now,
	}
}

// List returns the catalog, optionally only one service type
func (s *CatalogService) List(ctx context.Context, serviceType string) ([]ServiceResponse, error) {
	t := catalog.ServiceType(serviceType)
	if serviceType != "" && !t.IsValid() {
		return nil, shared.NewDomainError("INVALID_SERVICE_TYPE", "Service type must be Service or Additional")
	}
	services, err := s.serviceRepo.FindAll(ctx, t)
	if err != nil {
		return nil, err
	}
	out := make([]ServiceResponse, len(services))
	for i := range services {
		out[i] = ToServiceResponse(&services[i])
	}
	return out, nil
}

// Get returns one service
func (s *CatalogService) Get(ctx context.Context, serviceID string) (*ServiceResponse, error) {
	svc, err := s.serviceRepo.FindByServiceID(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	resp := ToServiceResponse(svc)
	return &resp, nil
}

// Add creates a service with the next SERVICE-<n> id. Two concurrent adds can
// pick the same number; the loser retries with a fresh one.
func (s *CatalogService) Add(ctx context.Context, scope shared.Scope, req CreateServiceRequest) (*ServiceResponse, error) {
	if !scope.Superadmin {
		return nil, shared.ErrForbidden
	}

	var lastErr error
	for attempt := 0; attempt < maxServiceIDAttempts; attempt++ {
		maxN, err := s.serviceRepo.MaxServiceNumber(ctx)
		if err != nil {
			return nil, err
		}
		svc, err := catalog.NewService(catalog.FormatServiceID(maxN+1), req.ServiceName, req.ServiceBasePrice, req.ServiceDuration, catalog.ServiceType(req.ServiceType))
		if err != nil {
			return nil, err
		}
		err = s.serviceRepo.Save(ctx, svc)
		if err == nil {
			s.logger.Info("Service added", zap.String("service_id", svc.ServiceID))
			resp := ToServiceResponse(svc)
			return &resp, nil
		}
		if !errors.Is(err, shared.ErrAlreadyExists) {
			return nil, err
		}
		lastErr = err
		s.logger.Warn("Service id collision, retrying", zap.String("service_id", svc.ServiceID), zap.Int("attempt", attempt+1))
	}
	return nil, lastErr
}

// Quote prices one line item without persisting anything
func (s *CatalogService) Quote(ctx context.Context, req QuoteRequest) (*QuoteResponse, error) {
	lines := ToServiceLines(req.Services)
	services, err := s.LoadServices(ctx, lines)
	if err != nil {
		return nil, err
	}

	dateIn := s.now()
	if req.DateIn != nil {
		dateIn = *req.DateIn
	}
	q, err := catalog.QuoteLineItem(lines, catalog.Priority(req.Priority), services, dateIn)
	if err != nil {
		return nil, err
	}
	return &QuoteResponse{Subtotal: q.Subtotal, RushFee: q.RushFee, Total: q.Total, DueDate: q.DueDate}, nil
}

// LoadServices fetches every service referenced by lines, keyed by id.
// Unknown ids are reported as UNKNOWN_SERVICE.
func (s *CatalogService) LoadServices(ctx context.Context, lines []catalog.ServiceLine) (map[string]catalog.Service, error) {
	return LoadServices(ctx, s.serviceRepo, lines)
}

// LoadServices is the repository-level helper shared with intake
func LoadServices(ctx context.Context, repo catalog.ServiceRepository, lines []catalog.ServiceLine) (map[string]catalog.Service, error) {
	ids := make([]string, 0, len(lines))
	seen := make(map[string]struct{}, len(lines))
	for _, l := range lines {
		if _, ok := seen[l.ServiceID]; ok {
			continue
		}
		seen[l.ServiceID] = struct{}{}
		ids = append(ids, l.ServiceID)
	}
	found, err := repo.FindByServiceIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]catalog.Service, len(found))
	for _, svc := range found {
		byID[svc.ServiceID] = svc
	}
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			return nil, shared.NewDomainError("UNKNOWN_SERVICE", "Unknown service: "+id)
		}
	}
	return byID, nil
}

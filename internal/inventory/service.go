package inventory

import (
	"context"
	"net/url"
	"strings"

	"github.com/lims-dash/lims-dash/internal/platform/upstream"
	"github.com/lims-dash/lims-dash/internal/shared"
)

// ListResult is a single page of the inventory listing.
type ListResult struct {
	Components []Component
	Pagination shared.Pagination
}

// TransactionResult is the backend acknowledgment of a stock movement.
type TransactionResult struct {
	Component   Component   `json:"component"`
	Transaction Transaction `json:"transaction"`
}

// Service forwards inventory operations to the backend. It holds no state:
// every entity is a transient copy of backend data.
type Service struct {
	api *upstream.Client
}

// NewService constructs the inventory service.
func NewService(api *upstream.Client) *Service {
	return &Service{api: api}
}

// List fetches one page of components for the given filter state.
func (s *Service) List(ctx context.Context, token string, f Filters) (ListResult, error) {
	env, err := s.api.Get(ctx, token, "/components", f.Query())
	if err != nil {
		return ListResult{}, err
	}
	var components []Component
	if err := env.Decode("/components", &components); err != nil {
		return ListResult{}, err
	}
	result := ListResult{
		Components: components,
		Pagination: shared.NewPagination(f.Page, f.Limit, env.Total),
	}
	if env.Pagination != nil {
		result.Pagination.TotalPages = env.Pagination.Total
		result.Pagination.Total = env.Pagination.TotalCount
	}
	return result, nil
}

// Lookup searches components by part number for the quick lookup page.
// The exact match (case-insensitive) is returned separately from near
// matches so the caller can route straight to update-or-create.
func (s *Service) Lookup(ctx context.Context, token, partNumber string) (*Component, []Component, error) {
	q := url.Values{}
	q.Set("search", partNumber)
	q.Set("limit", "10")
	env, err := s.api.Get(ctx, token, "/components", q)
	if err != nil {
		return nil, nil, err
	}
	var components []Component
	if err := env.Decode("/components", &components); err != nil {
		return nil, nil, err
	}
	for i := range components {
		if strings.EqualFold(components[i].PartNumber, partNumber) {
			match := components[i]
			near := append(components[:i:i], components[i+1:]...)
			return &match, near, nil
		}
	}
	return nil, components, nil
}

// Get fetches a single component with its recent transactions.
func (s *Service) Get(ctx context.Context, token, id string) (ComponentDetail, error) {
	env, err := s.api.Get(ctx, token, "/components/"+url.PathEscape(id), nil)
	if err != nil {
		return ComponentDetail{}, err
	}
	var detail ComponentDetail
	if err := env.Decode("/components/:id", &detail); err != nil {
		return ComponentDetail{}, err
	}
	return detail, nil
}

// Categories fetches the predefined category enumeration.
func (s *Service) Categories(ctx context.Context, token string) ([]string, error) {
	env, err := s.api.Get(ctx, token, "/components/predefined-categories", nil)
	if err != nil {
		return nil, err
	}
	var categories []string
	if err := env.Decode("/components/predefined-categories", &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// Create submits a new component.
func (s *Service) Create(ctx context.Context, token string, req ComponentRequest) (Component, error) {
	env, err := s.api.Post(ctx, token, "/components", req)
	if err != nil {
		return Component{}, err
	}
	var component Component
	if err := env.Decode("/components", &component); err != nil {
		return Component{}, err
	}
	return component, nil
}

// Update submits changed component fields. Quantity is never part of the
// payload; it only moves through inward/outward transactions.
func (s *Service) Update(ctx context.Context, token, id string, req ComponentRequest) (Component, error) {
	req.Quantity = nil
	env, err := s.api.Put(ctx, token, "/components/"+url.PathEscape(id), req)
	if err != nil {
		return Component{}, err
	}
	var component Component
	if err := env.Decode("/components/:id", &component); err != nil {
		return Component{}, err
	}
	return component, nil
}

// Delete requests removal; the backend decides between delete and
// discontinue and reports which in its message.
func (s *Service) Delete(ctx context.Context, token, id string) (string, error) {
	env, err := s.api.Delete(ctx, token, "/components/"+url.PathEscape(id))
	if err != nil {
		return "", err
	}
	return env.Message, nil
}

// Inward posts a stock-increasing transaction.
func (s *Service) Inward(ctx context.Context, token, id string, req InwardRequest) (TransactionResult, error) {
	env, err := s.api.Post(ctx, token, "/components/"+url.PathEscape(id)+"/inward", req)
	if err != nil {
		return TransactionResult{}, err
	}
	var result TransactionResult
	if err := env.Decode("/components/:id/inward", &result); err != nil {
		return TransactionResult{}, err
	}
	return result, nil
}

// Outward posts a stock-decreasing transaction.
func (s *Service) Outward(ctx context.Context, token, id string, req OutwardRequest) (TransactionResult, error) {
	env, err := s.api.Post(ctx, token, "/components/"+url.PathEscape(id)+"/outward", req)
	if err != nil {
		return TransactionResult{}, err
	}
	var result TransactionResult
	if err := env.Decode("/components/:id/outward", &result); err != nil {
		return TransactionResult{}, err
	}
	return result, nil
}

// Export fetches every component matching the filter state for CSV export.
func (s *Service) Export(ctx context.Context, token string, f Filters) ([]Component, error) {
	q := f.Query()
	q.Del("page")
	q.Del("limit")
	env, err := s.api.Get(ctx, token, "/components/export", q)
	if err != nil {
		return nil, err
	}
	var components []Component
	if err := env.Decode("/components/export", &components); err != nil {
		return nil, err
	}
	return components, nil
}

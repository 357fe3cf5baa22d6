package orders

import (
	"context"
	"net/url"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/lims-dash/lims-dash/internal/platform/upstream"
)

// DefaultLimit is how many orders each table shows.
const DefaultLimit = 10

// ActivityLimit is how many entries the recent activity feed shows.
const ActivityLimit = 5

// PageData bundles the three order tables fetched in parallel.
type PageData struct {
	Inward   []Order
	Outward  []Order
	Activity []Order
}

// Service fetches transaction history from the backend.
type Service struct {
	api *upstream.Client
}

// NewService constructs the orders service.
func NewService(api *upstream.Client) *Service {
	return &Service{api: api}
}

// LoadPage fetches inward, outward, and recent activity tables in one go.
// The status filter applies to the inward and outward tables only.
func (s *Service) LoadPage(ctx context.Context, token, status string, limit int) (PageData, error) {
	if limit <= 0 || limit > 50 {
		limit = DefaultLimit
	}
	var page PageData
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		rows, err := s.list(ctx, token, "/orders/inward", status, limit)
		if err != nil {
			return err
		}
		page.Inward = rows
		return nil
	})
	g.Go(func() error {
		rows, err := s.list(ctx, token, "/orders/outward", status, limit)
		if err != nil {
			return err
		}
		page.Outward = rows
		return nil
	})
	g.Go(func() error {
		rows, err := s.list(ctx, token, "/orders/activity", "", ActivityLimit)
		if err != nil {
			return err
		}
		page.Activity = rows
		return nil
	})

	if err := g.Wait(); err != nil {
		return PageData{}, err
	}
	return page, nil
}

func (s *Service) list(ctx context.Context, token, path, status string, limit int) ([]Order, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	if status != "" && status != "all" {
		q.Set("status", status)
	}
	env, err := s.api.Get(ctx, token, path, q)
	if err != nil {
		return nil, err
	}
	var rows []Order
	if err := env.Decode(path, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

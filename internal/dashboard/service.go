package dashboard

import (
	"context"
	"net/url"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lims-dash/lims-dash/internal/platform/upstream"
)

// Service aggregates the dashboard data from the backend. All widget
// fetches run in parallel; a single failing widget fails the snapshot so
// the page never shows a silently partial picture.
type Service struct {
	api   *upstream.Client
	cache *Cache
}

// NewService constructs the dashboard service. cache may be nil.
func NewService(api *upstream.Client, cache *Cache) *Service {
	return &Service{api: api, cache: cache}
}

// Load returns the dashboard snapshot for the given identity, from cache
// when fresh. Admin snapshots carry the extra admin-only blocks and are
// cached separately.
func (s *Service) Load(ctx context.Context, token string, admin bool) (Snapshot, error) {
	key := "dashboard:snapshot:user"
	if admin {
		key = "dashboard:snapshot:admin"
	}
	var snap Snapshot
	err := s.cache.FetchJSON(ctx, key, &snap, func(ctx context.Context) (any, error) {
		return s.fetch(ctx, token, admin)
	})
	return snap, err
}

// Refresh bypasses and repopulates the cache, used by the warmup job.
func (s *Service) Refresh(ctx context.Context, token string, admin bool) (Snapshot, error) {
	snap, err := s.fetch(ctx, token, admin)
	if err != nil {
		return Snapshot{}, err
	}
	key := "dashboard:snapshot:user"
	if admin {
		key = "dashboard:snapshot:admin"
	}
	s.cache.StoreJSON(ctx, key, snap)
	return snap, nil
}

func (s *Service) fetch(ctx context.Context, token string, admin bool) (Snapshot, error) {
	var snap Snapshot
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		env, err := s.api.Get(ctx, token, "/dashboard/overview", nil)
		if err != nil {
			return err
		}
		return env.Decode("/dashboard/overview", &snap.Overview)
	})
	g.Go(func() error {
		env, err := s.api.Get(ctx, token, "/dashboard/monthly-stats", queryOf("months", "6"))
		if err != nil {
			return err
		}
		return env.Decode("/dashboard/monthly-stats", &snap.MonthlyStats)
	})
	g.Go(func() error {
		env, err := s.api.Get(ctx, token, "/dashboard/daily-trends", queryOf("days", "7"))
		if err != nil {
			return err
		}
		return env.Decode("/dashboard/daily-trends", &snap.DailyTrends)
	})
	g.Go(func() error {
		q := queryOf("type", "usage")
		q.Set("limit", "5")
		env, err := s.api.Get(ctx, token, "/dashboard/top-components", q)
		if err != nil {
			return err
		}
		return env.Decode("/dashboard/top-components", &snap.TopComponents)
	})
	g.Go(func() error {
		env, err := s.api.Get(ctx, token, "/notifications/stats", nil)
		if err != nil {
			return err
		}
		return env.Decode("/notifications/stats", &snap.Notifications)
	})

	if admin {
		g.Go(func() error {
			env, err := s.api.Get(ctx, token, "/dashboard/user-activity", nil)
			if err != nil {
				return err
			}
			return env.Decode("/dashboard/user-activity", &snap.UserActivity)
		})
		g.Go(func() error {
			env, err := s.api.Get(ctx, token, "/dashboard/system-stats", nil)
			if err != nil {
				return err
			}
			var stats SystemStats
			if err := env.Decode("/dashboard/system-stats", &stats); err != nil {
				return err
			}
			snap.SystemStats = &stats
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	snap.FetchedAt = time.Now().UTC()
	return snap, nil
}

func queryOf(key, value string) url.Values {
	q := url.Values{}
	q.Set(key, value)
	return q
}

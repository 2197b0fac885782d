// Package analytics provides board summary queries for the dashboards.
package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lotworks/reconboard/internal/models"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	summaryCacheKey = "reconboard:analytics:summary"
	summaryCacheTTL = 30 * time.Second
)

// Summary aggregates the board for the dashboard views.
type Summary struct {
	TotalVehicles     int64            `json:"totalVehicles"`
	ByStatus          map[string]int64 `json:"byStatus"`
	ByPriority        map[string]int64 `json:"byPriority"`
	ByMake            map[string]int64 `json:"byMake"`
	AvgDaysToComplete float64          `json:"avgDaysToComplete"`
	CompletedLast7d   int64            `json:"completedLast7d"`
	GeneratedAt       time.Time        `json:"generatedAt"`
}

// Service computes summaries, optionally caching them in Redis for a short
// TTL. A nil cache client disables caching.
type Service struct {
	db    *gorm.DB
	cache *redis.Client
}

// NewService creates an analytics Service. cache may be nil.
func NewService(db *gorm.DB, cache *redis.Client) *Service {
	return &Service{db: db, cache: cache}
}

// Summary returns the current board summary, served from cache when fresh.
// Cache failures fall through to the database.
func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, summaryCacheKey).Bytes(); err == nil {
			var cached Summary
			if err := json.Unmarshal(data, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	sum, err := s.compute()
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(sum); err == nil {
			s.cache.Set(ctx, summaryCacheKey, data, summaryCacheTTL)
		}
	}
	return sum, nil
}

// Invalidate drops the cached summary, if any.
func (s *Service) Invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.Del(ctx, summaryCacheKey)
	}
}

type groupCount struct {
	Label string
	Count int64
}

func (s *Service) compute() (*Summary, error) {
	sum := &Summary{
		ByStatus:    make(map[string]int64),
		ByPriority:  make(map[string]int64),
		ByMake:      make(map[string]int64),
		GeneratedAt: time.Now().UTC(),
	}

	if err := s.db.Model(&models.Vehicle{}).Count(&sum.TotalVehicles).Error; err != nil {
		return nil, fmt.Errorf("analytics: total count: %w", err)
	}

	for _, g := range []struct {
		column string
		dest   map[string]int64
	}{
		{"status", sum.ByStatus},
		{"priority", sum.ByPriority},
		{"make", sum.ByMake},
	} {
		var rows []groupCount
		if err := s.db.Model(&models.Vehicle{}).
			Select(g.column + " as label, COUNT(*) as count").
			Group(g.column).
			Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("analytics: group by %s: %w", g.column, err)
		}
		for _, r := range rows {
			g.dest[r.Label] = r.Count
		}
	}

	// Averaged in Go rather than SQL: date arithmetic differs between MySQL
	// and SQLite and completed sets are small.
	var completed []models.Vehicle
	if err := s.db.Where("completed_at IS NOT NULL").Find(&completed).Error; err != nil {
		return nil, fmt.Errorf("analytics: completed vehicles: %w", err)
	}
	weekAgo := time.Now().AddDate(0, 0, -7)
	var totalDays float64
	for _, v := range completed {
		totalDays += v.CompletedAt.Sub(v.CreatedAt).Hours() / 24
		if v.CompletedAt.After(weekAgo) {
			sum.CompletedLast7d++
		}
	}
	if len(completed) > 0 {
		sum.AvgDaysToComplete = totalDays / float64(len(completed))
	}

	return sum, nil
}

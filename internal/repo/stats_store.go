package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"warden/internal/apperr"
	"warden/internal/models"
)

type StatsStore struct{ db *gorm.DB }

func NewStatsStore(db *gorm.DB) *StatsStore { return &StatsStore{db: db} }

type RecentUser struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type Activity struct {
	Type      string         `json:"type"`
	Entity    string         `json:"entity"`
	Data      map[string]any `json:"data"`
	Timestamp time.Time      `json:"timestamp"`
}

type DashboardStats struct {
	Stats struct {
		Users struct {
			Total       int64 `json:"total"`
			NewThisWeek int64 `json:"newThisWeek"`
		} `json:"users"`
		Roles struct {
			Total int64    `json:"total"`
			Types []string `json:"types"`
		} `json:"roles"`
		Permissions struct {
			Total int64 `json:"total"`
		} `json:"permissions"`
	} `json:"stats"`
	RecentActivities []Activity `json:"recentActivities"`
}

// Dashboard aggregates the admin landing-page counters: entity totals,
// signups over the last week and the five most recent registrations.
func (s *StatsStore) Dashboard(ctx context.Context) (*DashboardStats, error) {
	var out DashboardStats
	db := s.db.WithContext(ctx)

	if err := db.Model(&models.User{}).Count(&out.Stats.Users.Total).Error; err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "failed to count users")
	}
	if err := db.Model(&models.Role{}).Count(&out.Stats.Roles.Total).Error; err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "failed to count roles")
	}
	if err := db.Model(&models.Permission{}).Count(&out.Stats.Permissions.Total).Error; err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "failed to count permissions")
	}

	weekAgo := time.Now().AddDate(0, 0, -7)
	if err := db.Model(&models.User{}).
		Where("created_at >= ?", weekAgo).
		Count(&out.Stats.Users.NewThisWeek).Error; err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "failed to count recent users")
	}

	if err := db.Model(&models.Role{}).Order("created_at ASC").
		Pluck("name", &out.Stats.Roles.Types).Error; err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "failed to list role names")
	}

	var recent []RecentUser
	if err := db.Model(&models.User{}).
		Select("id", "name", "email", "created_at").
		Order("created_at DESC").Limit(5).
		Find(&recent).Error; err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "failed to load recent users")
	}

	out.RecentActivities = make([]Activity, 0, len(recent))
	for _, u := range recent {
		out.RecentActivities = append(out.RecentActivities, Activity{
			Type:   "user_registered",
			Entity: "user",
			Data: map[string]any{
				"name":  u.Name,
				"email": u.Email,
			},
			Timestamp: u.CreatedAt,
		})
	}
	return &out, nil
}

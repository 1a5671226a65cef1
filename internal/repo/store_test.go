package repo

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"warden/internal/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Profile{},
		&models.User{},
		&models.Permission{},
		&models.Role{},
	))
	return db
}

func mustCreatePermission(t *testing.T, db *gorm.DB, name string) *models.Permission {
	t.Helper()
	p := models.Permission{Name: name}
	require.NoError(t, db.Create(&p).Error)
	return &p
}

func mustCreateRole(t *testing.T, db *gorm.DB, name string, perms ...*models.Permission) *models.Role {
	t.Helper()
	r := models.Role{Name: name}
	for _, p := range perms {
		r.Permissions = append(r.Permissions, *p)
	}
	require.NoError(t, db.Create(&r).Error)
	return &r
}

func mustCreateUser(t *testing.T, db *gorm.DB, email, accountType string, roles ...*models.Role) *models.User {
	t.Helper()
	u := models.User{
		Email:    email,
		Name:     "Test User",
		Password: "x",
		Type:     accountType,
	}
	for _, r := range roles {
		u.Roles = append(u.Roles, *r)
	}
	require.NoError(t, db.Create(&u).Error)
	return &u
}

// reload fetches the user with roles and permissions the way the
// stores and the gate see it.
func reload(t *testing.T, s *UserStore, u *models.User) *models.User {
	t.Helper()
	out, err := s.ByID(context.Background(), u.ID)
	require.NoError(t, err)
	return out
}

// backdate shifts a row's created_at so ordering assertions do not
// depend on sub-millisecond timing.
func backdate(t *testing.T, db *gorm.DB, model any, id any, d time.Duration) {
	t.Helper()
	require.NoError(t, db.Model(model).Where("id = ?", id).
		Update("created_at", time.Now().Add(-d)).Error)
}

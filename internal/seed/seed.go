// Package seed installs the stock permissions, the admin/user roles and
// a default admin account. Idempotent: existing rows are reused.
package seed

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"warden/internal/logs"
	"warden/internal/models"
)

var stockPermissions = []string{
	"READ_users",
	"EDIT_users",
	"DELETE_users",
	"CREATE_users",

	"READ_admins",
	"EDIT_admins",
	"DELETE_admins",
	"CREATE_admins",
}

const (
	defaultAdminEmail    = "admin@example.com"
	defaultAdminName     = "Default Admin"
	defaultAdminPassword = "admin123" // change on first login
)

func Run(ctx context.Context, db *gorm.DB) error {
	tx := db.WithContext(ctx)

	for _, name := range stockPermissions {
		var p models.Permission
		err := tx.Where(&models.Permission{Name: name}).First(&p).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := tx.Create(&models.Permission{Name: name}).Error; err != nil {
			return err
		}
	}

	var all []models.Permission
	if err := tx.Find(&all).Error; err != nil {
		return err
	}

	// admin holds everything; user only the READ permissions.
	adminRole, err := upsertRole(tx, models.TypeAdmin, all)
	if err != nil {
		return err
	}
	var readOnly []models.Permission
	for _, p := range all {
		if strings.HasPrefix(p.Name, "READ_") {
			readOnly = append(readOnly, p)
		}
	}
	if _, err := upsertRole(tx, models.TypeUser, readOnly); err != nil {
		return err
	}

	var admin models.User
	err = tx.Where(&models.User{Email: defaultAdminEmail}).First(&admin).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(defaultAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return tx.Transaction(func(tx *gorm.DB) error {
		profile := models.Profile{FirstName: "Default", LastName: "Admin", Status: "Accepted"}
		if err := tx.Create(&profile).Error; err != nil {
			return err
		}
		admin = models.User{
			Email:     defaultAdminEmail,
			Name:      defaultAdminName,
			Password:  string(hash),
			Type:      models.TypeAdmin,
			ProfileID: &profile.ID,
			Roles:     []models.Role{*adminRole},
		}
		if err := tx.Create(&admin).Error; err != nil {
			return err
		}
		logs.Logger.Infof("seed: default admin created (email=%s)", defaultAdminEmail)
		return nil
	})
}

func upsertRole(tx *gorm.DB, name string, permissions []models.Permission) (*models.Role, error) {
	var role models.Role
	err := tx.Where(&models.Role{Name: name}).First(&role).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		role = models.Role{Name: name}
		if err := tx.Create(&role).Error; err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}
	if err := tx.Model(&role).Association("Permissions").Replace(permissions); err != nil {
		return nil, err
	}
	return &role, nil
}

package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"warden/internal/apperr"
	"warden/internal/models"
)

type PermissionStore struct{ db *gorm.DB }

func NewPermissionStore(db *gorm.DB) *PermissionStore { return &PermissionStore{db: db} }

func (s *PermissionStore) Create(ctx context.Context, name string) (*models.Permission, error) {
	var existing models.Permission
	err := s.db.WithContext(ctx).Where(&models.Permission{Name: name}).First(&existing).Error
	if err == nil {
		return nil, apperr.New(apperr.Conflict, "Permission with name '%s' already exists", name)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Wrap(apperr.Internal, err, "failed to check permission name")
	}

	p := models.Permission{Name: name}
	if err := s.db.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "Failed to create permission")
	}
	return &p, nil
}

func (s *PermissionStore) All(ctx context.Context) ([]models.Permission, error) {
	var permissions []models.Permission
	err := s.db.WithContext(ctx).Order("created_at DESC").Find(&permissions).Error
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "Failed to retrieve permissions")
	}
	return permissions, nil
}

// ByID includes the roles holding the permission, for display.
func (s *PermissionStore) ByID(ctx context.Context, id uuid.UUID) (*models.Permission, error) {
	var p models.Permission
	err := s.db.WithContext(ctx).Preload("Roles").First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.New(apperr.NotFound, "Permission with ID '%s' not found", id)
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "failed to load permission")
	}
	return &p, nil
}

type DeletePermissionResult struct {
	Message       string
	AffectedRoles []models.RoleRef
}

// Delete detaches the permission from every role that references it and
// then removes the row. Usage does not block deletion (unlike roles);
// the affected roles are reported so the caller can warn the operator.
func (s *PermissionStore) Delete(ctx context.Context, id uuid.UUID) (*DeletePermissionResult, error) {
	p, err := s.ByID(ctx, id)
	if err != nil {
		return nil, err
	}

	affected := make([]models.RoleRef, 0, len(p.Roles))
	for _, r := range p.Roles {
		affected = append(affected, models.RoleRef{ID: r.ID, Name: r.Name})
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(p).Association("Roles").Clear(); err != nil {
			return err
		}
		return tx.Delete(&models.Permission{}, "id = ?", id).Error
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "Failed to delete permission")
	}
	return &DeletePermissionResult{
		Message:       "Permission '" + p.Name + "' deleted successfully",
		AffectedRoles: affected,
	}, nil
}

package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"warden/internal/apperr"
	"warden/internal/models"
)

type RoleStore struct{ db *gorm.DB }

func NewRoleStore(db *gorm.DB) *RoleStore { return &RoleStore{db: db} }

type CreateRoleInput struct {
	Name          string
	PermissionIDs []uuid.UUID
	UserIDs       []uuid.UUID
}

// Create enforces name uniqueness. Name is the key: an existing role is
// never merged or updated in place, but the conflict message tells the
// caller whether the requested permission set was identical.
func (s *RoleStore) Create(ctx context.Context, in CreateRoleInput) (*models.Role, error) {
	if !models.ValidType(in.Name) {
		return nil, apperr.New(apperr.Invalid, "unknown role name '%s'", in.Name)
	}

	var existing models.Role
	err := s.db.WithContext(ctx).Preload("Permissions").
		Where(&models.Role{Name: in.Name}).First(&existing).Error
	if err == nil {
		if samePermissionSet(existing.Permissions, in.PermissionIDs) {
			return nil, apperr.New(apperr.Conflict,
				"Role with name '%s' and identical permissions already exists", in.Name)
		}
		return nil, apperr.New(apperr.Conflict, "Role with name '%s' already exists", in.Name)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Wrap(apperr.Internal, err, "failed to check role name")
	}

	var permissions []models.Permission
	if len(in.PermissionIDs) > 0 {
		if err := s.db.WithContext(ctx).Find(&permissions, "id IN ?", in.PermissionIDs).Error; err != nil {
			return nil, apperr.Wrap(apperr.Internal, err, "failed to resolve permissions")
		}
	}
	var users []models.User
	if len(in.UserIDs) > 0 {
		if err := s.db.WithContext(ctx).Find(&users, "id IN ?", in.UserIDs).Error; err != nil {
			return nil, apperr.Wrap(apperr.Internal, err, "failed to resolve users")
		}
	}

	role := models.Role{
		Name:        in.Name,
		Permissions: permissions,
		Users:       users,
	}
	if err := s.db.WithContext(ctx).Create(&role).Error; err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "Failed to create role")
	}
	return &role, nil
}

// samePermissionSet compares the role's current permissions against the
// requested ids as unordered sets.
func samePermissionSet(current []models.Permission, requested []uuid.UUID) bool {
	want := make(map[uuid.UUID]struct{}, len(requested))
	for _, id := range requested {
		want[id] = struct{}{}
	}
	if len(want) != len(current) {
		return false
	}
	for _, p := range current {
		if _, ok := want[p.ID]; !ok {
			return false
		}
	}
	return true
}

type DeleteRoleResult struct {
	Message string
}

// Delete refuses to remove a role that is still assigned to any user —
// deleting it would silently strip live privileges. Otherwise the
// permission join rows and the role row go in one transaction.
func (s *RoleStore) Delete(ctx context.Context, id uuid.UUID) (*DeleteRoleResult, error) {
	var role models.Role
	err := s.db.WithContext(ctx).Preload("Users").Preload("Permissions").
		First(&role, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.New(apperr.NotFound, "Role with ID '%s' not found", id)
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "failed to load role")
	}

	if n := len(role.Users); n > 0 {
		plural := ""
		if n > 1 {
			plural = "s"
		}
		return nil, apperr.New(apperr.InUse,
			"Cannot delete role '%s' because it is assigned to %d user%s", role.Name, n, plural)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&role).Association("Permissions").Clear(); err != nil {
			return err
		}
		return tx.Delete(&models.Role{}, "id = ?", id).Error
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "Failed to delete role")
	}
	return &DeleteRoleResult{Message: "Role '" + role.Name + "' deleted successfully"}, nil
}

// All returns every role with its permissions, newest first.
func (s *RoleStore) All(ctx context.Context) ([]models.Role, error) {
	var roles []models.Role
	err := s.db.WithContext(ctx).Preload("Permissions").
		Order("created_at DESC").Find(&roles).Error
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "Failed to retrieve roles")
	}
	return roles, nil
}

func (s *RoleStore) ByID(ctx context.Context, id uuid.UUID) (*models.Role, error) {
	var role models.Role
	err := s.db.WithContext(ctx).Preload("Permissions").First(&role, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.New(apperr.NotFound, "Role with ID '%s' not found", id)
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "failed to load role")
	}
	return &role, nil
}

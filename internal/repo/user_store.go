package repo

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"warden/internal/apperr"
	"warden/internal/authz"
	"warden/internal/models"
)

type UserStore struct{ db *gorm.DB }

func NewUserStore(db *gorm.DB) *UserStore { return &UserStore{db: db} }

func (s *UserStore) ByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).
		Preload("Roles.Permissions").
		Preload("Profile").
		Where(&models.User{Email: email}).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.New(apperr.NotFound, "User not found :(")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "failed to load user")
	}
	return &u, nil
}

func (s *UserStore) ByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).
		Preload("Roles.Permissions").
		Preload("Profile").
		First(&u, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.New(apperr.NotFound, "User not found :(")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "failed to load user")
	}
	return &u, nil
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string // already hashed
	Type     string // defaults to "user"
	Status   string
}

// Register creates Profile, User and the default role attachment in one
// transaction. The default role is the one whose name equals the
// requested account type. No orphan Profile survives a failed commit.
func (s *UserStore) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	var existing models.User
	err := s.db.WithContext(ctx).Where(&models.User{Email: in.Email}).First(&existing).Error
	if err == nil {
		return nil, apperr.New(apperr.Conflict, "User with email '%s' already exists", in.Email)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Wrap(apperr.Internal, err, "failed to check email")
	}

	accountType := in.Type
	if accountType == "" {
		accountType = models.TypeUser
	}
	if !models.ValidType(accountType) {
		return nil, apperr.New(apperr.Invalid, "unknown account type '%s'", accountType)
	}

	first, last := splitName(in.Name)

	var created models.User
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		profile := models.Profile{
			FirstName: first,
			LastName:  last,
			Status:    in.Status,
		}
		if err := tx.Create(&profile).Error; err != nil {
			return err
		}

		var roles []models.Role
		if err := tx.Where(&models.Role{Name: accountType}).Find(&roles).Error; err != nil {
			return err
		}

		created = models.User{
			Name:      in.Name,
			Email:     in.Email,
			Password:  in.Password,
			Type:      accountType,
			ProfileID: &profile.ID,
			Roles:     roles,
		}
		return tx.Create(&created).Error
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "Failed to create user")
	}
	return &created, nil
}

func splitName(name string) (first, last string) {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

type ProfileUpdate struct {
	Name  string
	Email string
}

// UpdateProfile applies the supplied fields only. An email change is
// re-checked for uniqueness against other users so the login lookup
// invariant holds.
func (s *UserStore) UpdateProfile(ctx context.Context, id uuid.UUID, upd ProfileUpdate) (*models.User, error) {
	u, err := s.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if upd.Email != "" && upd.Email != u.Email {
		var n int64
		if err := s.db.WithContext(ctx).Model(&models.User{}).
			Where("email = ? AND id <> ?", upd.Email, id).Count(&n).Error; err != nil {
			return nil, apperr.Wrap(apperr.Internal, err, "failed to check email")
		}
		if n > 0 {
			return nil, apperr.New(apperr.Conflict, "Email address is already in use")
		}
		u.Email = upd.Email
	}
	if upd.Name != "" {
		u.Name = upd.Name
	}
	if err := s.db.WithContext(ctx).Save(u).Error; err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "failed to update profile")
	}
	return u, nil
}

type AssignResult struct {
	Message string
	Changed bool
}

// AssignRole appends a role to the target user's role set. The actor
// must hold the EDIT permission scoped to the target's account type —
// a second, data-scoped check on top of the route-level gate.
func (s *UserStore) AssignRole(ctx context.Context, userID, roleID uuid.UUID, actor *models.User) (*AssignResult, error) {
	target, err := s.ByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	required, ok := authz.Permit(authz.ActionEdit, target.Type)
	if !ok || !authz.HasPermission(actor, required) {
		return nil, apperr.New(apperr.Forbidden, "You don't have a permission to edit %s", target.Type)
	}

	var role models.Role
	err = s.db.WithContext(ctx).First(&role, "id = ?", roleID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.New(apperr.NotFound, "Role not found :(")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "failed to load role")
	}

	for _, held := range target.Roles {
		if held.ID == role.ID {
			return &AssignResult{Message: "User already has this role."}, nil
		}
	}
	if err := s.db.WithContext(ctx).Model(target).Association("Roles").Append(&role); err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "failed to assign role")
	}
	return &AssignResult{Message: "User edited successfully!", Changed: true}, nil
}

// Delete hard-deletes the target user after the DELETE_<type> check.
func (s *UserStore) Delete(ctx context.Context, userID uuid.UUID, actor *models.User) error {
	target, err := s.ByID(ctx, userID)
	if err != nil {
		return err
	}

	required, ok := authz.Permit(authz.ActionDelete, target.Type)
	if !ok || !authz.HasPermission(actor, required) {
		return apperr.New(apperr.Forbidden, "You don't have a permission to delete %s", target.Type)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(target).Association("Roles").Clear(); err != nil {
			return err
		}
		if err := tx.Delete(&models.User{}, "id = ?", userID).Error; err != nil {
			return err
		}
		// the user owns its profile, so it goes too
		if target.ProfileID != nil {
			return tx.Delete(&models.Profile{}, "id = ?", *target.ProfileID).Error
		}
		return nil
	})
	if err != nil {
		return apperr.Wrap(apperr.Internal, err, "failed to delete user")
	}
	return nil
}

type UserPage struct {
	Page     int           `json:"page"`
	PageSize int           `json:"pageSize"`
	Total    int64         `json:"total"`
	Users    []models.User `json:"users"`
}

// List returns a page of users whose type the actor may read, derived
// from the actor's permission set (row-level filtering, not just the
// endpoint gate). Oldest first.
func (s *UserStore) List(ctx context.Context, page, pageSize int, actor *models.User) (*UserPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}

	types := authz.ReadableTypes(authz.PermissionNames(actor))
	if len(types) == 0 {
		return &UserPage{Page: page, PageSize: 0, Total: 0, Users: []models.User{}}, nil
	}

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("type IN ?", types).Count(&total).Error; err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "failed to count users")
	}

	var users []models.User
	err := s.db.WithContext(ctx).
		Where("type IN ?", types).
		Order("created_at ASC").
		Offset(pageSize * (page - 1)).
		Limit(pageSize).
		Find(&users).Error
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "failed to list users")
	}

	return &UserPage{Page: page, PageSize: len(users), Total: total, Users: users}, nil
}

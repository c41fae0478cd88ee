package services

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
	"github.com/staffdocs/backend/internal/models"
	"github.com/staffdocs/backend/pkg/utils"
	"gorm.io/gorm"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

type UserService struct {
	DB *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{DB: db}
}

// Authenticate verifies credentials. The same error covers unknown email
// and wrong password.
func (s *UserService) Authenticate(email, password string) (*models.User, error) {
	var user models.User
	err := s.DB.First(&user, "email = ?", strings.ToLower(email)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !utils.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

type CreateUserInput struct {
	Email      string          `json:"email"`
	Password   string          `json:"password"`
	FirstName  string          `json:"firstName"`
	LastName   string          `json:"lastName"`
	Role       models.UserRole `json:"role"`
	Position   string          `json:"position"`
	Department string          `json:"department"`
}

func (in CreateUserInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Email, validation.Required, is.Email),
		validation.Field(&in.Password, validation.Required, validation.Length(8, 128)),
		validation.Field(&in.FirstName, validation.Required, validation.Length(1, 100)),
		validation.Field(&in.LastName, validation.Required, validation.Length(1, 100)),
		validation.Field(&in.Role, validation.Required, validation.In(
			models.UserRoleAdmin, models.UserRoleHR, models.UserRoleStaff,
		)),
	)
}

// Create adds a member to the caller's tenant. Admins and HR only; the
// superuser role can never be granted this way.
func (s *UserService) Create(actor *models.User, tenantID uuid.UUID, in CreateUserInput) (*models.User, error) {
	if !actor.MemberOf(tenantID) {
		return nil, ErrNotFound
	}
	if !actor.HasManagementRole() {
		return nil, ErrUnauthorized
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		TenantID:     &tenantID,
		Email:        strings.ToLower(in.Email),
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Role:         in.Role,
		Position:     in.Position,
		Department:   in.Department,
	}
	if err := s.DB.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserService) Get(actor *models.User, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.DB.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if user.TenantID == nil || !actor.MemberOf(*user.TenantID) {
		if !actor.IsSuperuser() {
			return nil, ErrNotFound
		}
	}
	return &user, nil
}

func (s *UserService) List(actor *models.User, tenantID uuid.UUID) ([]models.User, error) {
	if !actor.MemberOf(tenantID) {
		return nil, ErrNotFound
	}

	var users []models.User
	if err := s.DB.Where("tenant_id = ?", tenantID).Order("created_at ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

type UpdateProfileInput struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Position    string `json:"position"`
	Department  string `json:"department"`
	PhoneNumber string `json:"phoneNumber"`
}

func (s *UserService) UpdateProfile(actor *models.User, in UpdateProfileInput) (*models.User, error) {
	updates := map[string]interface{}{}
	if in.FirstName != "" {
		updates["first_name"] = in.FirstName
	}
	if in.LastName != "" {
		updates["last_name"] = in.LastName
	}
	if in.Position != "" {
		updates["position"] = in.Position
	}
	if in.Department != "" {
		updates["department"] = in.Department
	}
	if in.PhoneNumber != "" {
		updates["phone_number"] = in.PhoneNumber
	}
	if len(updates) == 0 {
		return actor, nil
	}

	if err := s.DB.Model(actor).Updates(updates).Error; err != nil {
		return nil, err
	}
	return actor, nil
}

func (s *UserService) ChangePassword(actor *models.User, oldPassword, newPassword string) error {
	if !utils.CheckPassword(actor.PasswordHash, oldPassword) {
		return ErrInvalidCredentials
	}
	if err := validation.Validate(newPassword, validation.Required, validation.Length(8, 128)); err != nil {
		return err
	}

	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.DB.Model(actor).Update("password_hash", hash).Error
}

// SetSMTPCredentials stores the user's own mail identity. The password is
// encrypted at rest when encryption is configured.
func (s *UserService) SetSMTPCredentials(actor *models.User, email, password string) error {
	if err := validation.Validate(email, validation.Required, is.Email); err != nil {
		return err
	}

	stored := password
	if encrypted, err := utils.EncryptAESGCM(password); err == nil {
		stored = encrypted
	}

	return s.DB.Model(actor).Updates(map[string]interface{}{
		"smtp_email":    strings.ToLower(email),
		"smtp_password": stored,
	}).Error
}

// Remove deletes a tenant member. Admins only, and never themselves.
func (s *UserService) Remove(actor *models.User, id uuid.UUID) error {
	if actor.ID == id {
		return ErrUnauthorized
	}

	target, err := s.Get(actor, id)
	if err != nil {
		return err
	}
	if !actor.IsSuperuser() && actor.Role != models.UserRoleAdmin {
		return ErrUnauthorized
	}
	if target.IsSuperuser() {
		return ErrUnauthorized
	}
	return s.DB.Delete(target).Error
}

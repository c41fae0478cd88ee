package services

import (
	"errors"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
	"github.com/staffdocs/backend/internal/models"
	"github.com/staffdocs/backend/pkg/utils"
	"gorm.io/gorm"
)

// slugPattern keeps slugs valid as DNS labels: lowercase alphanumerics
// and hyphens, no leading or trailing hyphen.
var slugPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?$`)

// TenantService handles the signup pipeline: an application is filed
// openly, a superuser reviews it, approval creates the tenant and its
// first admin in one transaction.
type TenantService struct {
	DB *gorm.DB
}

func NewTenantService(db *gorm.DB) *TenantService {
	return &TenantService{DB: db}
}

type ApplyInput struct {
	CompanyName    string `json:"companyName"`
	Slug           string `json:"slug"`
	AdminEmail     string `json:"adminEmail"`
	AdminFirstName string `json:"adminFirstName"`
	AdminLastName  string `json:"adminLastName"`
}

func (in ApplyInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.CompanyName, validation.Required, validation.Length(1, 100)),
		validation.Field(&in.Slug, validation.Required, validation.Length(1, 63), validation.Match(slugPattern)),
		validation.Field(&in.AdminEmail, validation.Required, is.Email),
		validation.Field(&in.AdminFirstName, validation.Required, validation.Length(1, 100)),
		validation.Field(&in.AdminLastName, validation.Required, validation.Length(1, 100)),
	)
}

// Apply files a signup application. Unauthenticated; duplicate slugs are
// rejected up front against both live tenants and pending applications.
func (s *TenantService) Apply(in ApplyInput) (*models.TenantApplication, error) {
	in.Slug = strings.ToLower(in.Slug)
	if err := in.Validate(); err != nil {
		return nil, err
	}

	app := models.TenantApplication{
		CompanyName:    in.CompanyName,
		Slug:           in.Slug,
		AdminEmail:     in.AdminEmail,
		AdminFirstName: in.AdminFirstName,
		AdminLastName:  in.AdminLastName,
		Status:         models.ApplicationPending,
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Tenant{}).Where("slug = ?", in.Slug).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicateName
		}
		if err := tx.Model(&models.TenantApplication{}).
			Where("slug = ? AND status = ?", in.Slug, models.ApplicationPending).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicateName
		}
		return tx.Create(&app).Error
	})
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func (s *TenantService) ListApplications(user *models.User, status models.ApplicationStatus) ([]models.TenantApplication, error) {
	if !user.IsSuperuser() {
		return nil, ErrUnauthorized
	}

	query := s.DB.Model(&models.TenantApplication{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var apps []models.TenantApplication
	if err := query.Order("created_at ASC").Find(&apps).Error; err != nil {
		return nil, err
	}
	return apps, nil
}

// Approve creates the tenant and its admin user atomically and returns
// the admin's initial password. Superusers only.
func (s *TenantService) Approve(user *models.User, applicationID uuid.UUID) (*models.Tenant, string, error) {
	if !user.IsSuperuser() {
		return nil, "", ErrUnauthorized
	}

	var app models.TenantApplication
	if err := s.DB.First(&app, "id = ?", applicationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrNotFound
		}
		return nil, "", err
	}
	if app.Status != models.ApplicationPending {
		return nil, "", ErrUnauthorized
	}

	initialPassword := uuid.NewString()
	hash, err := utils.HashPassword(initialPassword)
	if err != nil {
		return nil, "", err
	}

	tenant := models.Tenant{Name: app.CompanyName, Slug: app.Slug}
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&tenant).Error; err != nil {
			return err
		}

		admin := models.User{
			TenantID:     &tenant.ID,
			Email:        app.AdminEmail,
			PasswordHash: hash,
			FirstName:    app.AdminFirstName,
			LastName:     app.AdminLastName,
			Role:         models.UserRoleAdmin,
		}
		if err := tx.Create(&admin).Error; err != nil {
			return err
		}

		return tx.Model(&app).Updates(map[string]interface{}{
			"status":         models.ApplicationApproved,
			"reviewed_by_id": user.ID,
			"tenant_id":      tenant.ID,
		}).Error
	})
	if err != nil {
		return nil, "", err
	}
	return &tenant, initialPassword, nil
}

func (s *TenantService) Reject(user *models.User, applicationID uuid.UUID) error {
	if !user.IsSuperuser() {
		return ErrUnauthorized
	}

	var app models.TenantApplication
	if err := s.DB.First(&app, "id = ?", applicationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if app.Status != models.ApplicationPending {
		return ErrUnauthorized
	}

	return s.DB.Model(&app).Updates(map[string]interface{}{
		"status":         models.ApplicationRejected,
		"reviewed_by_id": user.ID,
	}).Error
}

func (s *TenantService) ListTenants(user *models.User) ([]models.Tenant, error) {
	if !user.IsSuperuser() {
		return nil, ErrUnauthorized
	}

	var tenants []models.Tenant
	if err := s.DB.Order("created_at ASC").Find(&tenants).Error; err != nil {
		return nil, err
	}
	return tenants, nil
}

package models

import "github.com/google/uuid"

// Tenant is an isolated organization resolved from the request subdomain.
// The slug is immutable once the tenant is created.
type Tenant struct {
	BaseModel
	Name string `json:"name" gorm:"type:varchar(100);uniqueIndex;not null"`
	Slug string `json:"slug" gorm:"type:varchar(63);uniqueIndex;not null"`

	Users []User `json:"-" gorm:"foreignKey:TenantID"`
}

type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationApproved ApplicationStatus = "approved"
	ApplicationRejected ApplicationStatus = "rejected"
)

// TenantApplication is a signup request reviewed by a superuser. Approval
// creates the Tenant and its first admin user.
type TenantApplication struct {
	BaseModel
	CompanyName    string            `json:"companyName" gorm:"type:varchar(100);not null"`
	Slug           string            `json:"slug" gorm:"type:varchar(63);not null;index"`
	AdminEmail     string            `json:"adminEmail" gorm:"type:varchar(255);not null"`
	AdminFirstName string            `json:"adminFirstName" gorm:"type:varchar(100);not null"`
	AdminLastName  string            `json:"adminLastName" gorm:"type:varchar(100);not null"`
	Status         ApplicationStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	ReviewedByID   *uuid.UUID        `json:"reviewedByID,omitempty" gorm:"type:uuid"`
	TenantID       *uuid.UUID        `json:"tenantID,omitempty" gorm:"type:uuid"`
}

package models

import "github.com/google/uuid"

type UserRole string

const (
	// UserRoleSuperuser transcends tenancy and bypasses tenant scoping.
	UserRoleSuperuser UserRole = "superuser"
	UserRoleAdmin     UserRole = "admin"
	UserRoleHR        UserRole = "hr"
	UserRoleStaff     UserRole = "staff"
)

type User struct {
	BaseModel
	TenantID     *uuid.UUID `json:"tenantID,omitempty" gorm:"type:uuid;index"`
	Email        string     `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash string     `json:"-" gorm:"type:text;not null"`
	FirstName    string     `json:"firstName" gorm:"type:varchar(100);not null"`
	LastName     string     `json:"lastName" gorm:"type:varchar(100);not null"`
	Role         UserRole   `json:"role" gorm:"type:varchar(20);not null;default:'staff'"`
	Position     string     `json:"position,omitempty" gorm:"type:varchar(100)"`
	Department   string     `json:"department,omitempty" gorm:"type:varchar(100)"`
	PhoneNumber  string     `json:"phoneNumber,omitempty" gorm:"type:varchar(20)"`

	// SMTP identity for sending documents on the user's own behalf.
	// The password is stored AES-GCM encrypted.
	SMTPEmail    string `json:"smtpEmail,omitempty" gorm:"type:varchar(255)"`
	SMTPPassword string `json:"-" gorm:"type:text"`

	Tenant *Tenant `json:"tenant,omitempty" gorm:"foreignKey:TenantID;references:ID"`
}

func (u *User) IsSuperuser() bool {
	return u.Role == UserRoleSuperuser
}

// MemberOf reports whether the user belongs to the given tenant.
// Superusers are members of every tenant.
func (u *User) MemberOf(tenantID uuid.UUID) bool {
	if u.IsSuperuser() {
		return true
	}
	return u.TenantID != nil && *u.TenantID == tenantID
}

// HasManagementRole reports whether the user's role can override ownership
// checks on public resources. Personal resources are never role-visible.
func (u *User) HasManagementRole() bool {
	return u.Role == UserRoleSuperuser || u.Role == UserRoleAdmin || u.Role == UserRoleHR
}

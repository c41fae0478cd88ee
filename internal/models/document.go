package models

import "github.com/google/uuid"

type DocumentStatus string

const (
	DocumentPending  DocumentStatus = "pending"
	DocumentApproved DocumentStatus = "approved"
)

type DocumentType string

const (
	DocumentTypeApproval DocumentType = "approval"
	DocumentTypeSLA      DocumentType = "sla"
	DocumentTypeUploaded DocumentType = "uploaded"
)

type DocumentSource string

const (
	DocumentSourceTemplate DocumentSource = "template"
	DocumentSourceUpload   DocumentSource = "upload"
	DocumentSourceEditor   DocumentSource = "editor"
)

// Document is a generated or uploaded business document moving through the
// pending -> approved workflow. PDF rendering is delegated to an external
// conversion service; only the payload locators live here.
type Document struct {
	BaseModel
	TenantID     uuid.UUID      `json:"tenantID" gorm:"type:uuid;not null;index"`
	Type         DocumentType   `json:"type" gorm:"type:varchar(20);not null"`
	Source       DocumentSource `json:"source" gorm:"type:varchar(20);not null;default:'template'"`
	Status       DocumentStatus `json:"status" gorm:"type:varchar(10);not null;default:'pending';index"`
	CompanyName  string         `json:"companyName" gorm:"type:varchar(255);not null"`
	CompanyAddr  string         `json:"companyAddress" gorm:"type:text"`
	ContactName  string         `json:"contactName" gorm:"type:varchar(255)"`
	ContactEmail string         `json:"contactEmail" gorm:"type:varchar(255)"`
	ContactTitle string         `json:"contactTitle" gorm:"type:varchar(255)"`
	SalesRep     string         `json:"salesRep" gorm:"type:varchar(255)"`
	WordPath     string         `json:"-" gorm:"type:text"`
	PDFPath      string         `json:"-" gorm:"type:text"`
	EmailSent    bool           `json:"emailSent" gorm:"not null;default:false"`

	CreatedByID  uuid.UUID  `json:"createdByID" gorm:"type:uuid;not null;index"`
	ApprovedByID *uuid.UUID `json:"approvedByID,omitempty" gorm:"type:uuid"`

	CreatedBy  User  `json:"createdBy,omitempty" gorm:"foreignKey:CreatedByID;references:ID"`
	ApprovedBy *User `json:"approvedBy,omitempty" gorm:"foreignKey:ApprovedByID;references:ID"`
}

package models

import "github.com/google/uuid"

// File is always tenant-stamped directly, mirroring Folder, even though the
// tenant is reachable through FolderID. Visibility is snapshotted from the
// containing folder at upload time.
type File struct {
	BaseModel
	TenantID     uuid.UUID  `json:"tenantID" gorm:"type:uuid;not null;index"`
	FolderID     *uuid.UUID `json:"folderID,omitempty" gorm:"type:uuid;index"`
	UploadedByID *uuid.UUID `json:"uploadedByID,omitempty" gorm:"type:uuid;index"`
	// UploaderName records the free-text submitter of an anonymous
	// token upload; empty for authenticated uploads.
	UploaderName string     `json:"uploaderName,omitempty" gorm:"type:varchar(100)"`
	OriginalName string     `json:"originalName" gorm:"type:varchar(255);not null"`
	MimeType     string     `json:"mimeType" gorm:"type:varchar(255);not null"`
	Size         int64      `json:"size" gorm:"not null;default:0"`
	StoragePath  string     `json:"-" gorm:"type:text;not null"`
	Visibility   Visibility `json:"visibility" gorm:"type:varchar(10);not null;index"`

	ShareState `gorm:"embedded"`

	Folder     *Folder `json:"folder,omitempty" gorm:"foreignKey:FolderID"`
	UploadedBy *User   `json:"uploadedBy,omitempty" gorm:"foreignKey:UploadedByID;references:ID"`
	SharedBy   *User   `json:"sharedBy,omitempty" gorm:"foreignKey:SharedByID;references:ID"`
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// Visibility partitions each tenant's folder forest into an org-wide tree
// and per-user personal trees. It is always passed explicitly, never
// inferred from UI state.
type Visibility string

const (
	VisibilityPublic   Visibility = "public"
	VisibilityPersonal Visibility = "personal"
)

func (v Visibility) Valid() bool {
	return v == VisibilityPublic || v == VisibilityPersonal
}

// ShareState is the sharing tuple carried by folders and files. A grant is
// active iff IsShared is true and the end time, when set, has not passed.
// Tokens are minted on first share and survive unshare; only an explicit
// regenerate replaces them.
type ShareState struct {
	IsShared     bool       `json:"isShared" gorm:"not null;default:false;index"`
	ShareToken   *string    `json:"-" gorm:"type:varchar(36);uniqueIndex"`
	ShareTime    *time.Time `json:"shareTime,omitempty"`
	ShareTimeEnd *time.Time `json:"shareTimeEnd,omitempty"`
	SharedByID   *uuid.UUID `json:"sharedByID,omitempty" gorm:"type:uuid"`
}

// ShareActive evaluates the grant lazily at access time; there is no
// background expiration.
func (s ShareState) ShareActive(now time.Time) bool {
	if !s.IsShared {
		return false
	}
	return s.ShareTimeEnd == nil || !now.After(*s.ShareTimeEnd)
}

// Folder forms a forest per tenant. TenantID is denormalized on every row so
// tenant-scope filters never need to join through the ancestor chain.
type Folder struct {
	BaseModel
	TenantID    uuid.UUID  `json:"tenantID" gorm:"type:uuid;not null;index"`
	Name        string     `json:"name" gorm:"type:varchar(255);not null"`
	ParentID    *uuid.UUID `json:"parentID,omitempty" gorm:"type:uuid;index"`
	CreatedByID uuid.UUID  `json:"createdByID" gorm:"type:uuid;not null;index"`
	Visibility  Visibility `json:"visibility" gorm:"type:varchar(10);not null;index"`

	ShareState `gorm:"embedded"`
	// Propagation flags recorded at share time. Access through a token
	// honors the flags on the folder the token resolves to.
	ShareSubfolders bool `json:"shareSubfolders" gorm:"not null;default:false"`
	ShareFiles      bool `json:"shareFiles" gorm:"not null;default:false"`

	Parent     *Folder  `json:"parent,omitempty" gorm:"foreignKey:ParentID"`
	Subfolders []Folder `json:"subfolders,omitempty" gorm:"foreignKey:ParentID"`
	Files      []File   `json:"files,omitempty" gorm:"foreignKey:FolderID"`
	CreatedBy  User     `json:"createdBy,omitempty" gorm:"foreignKey:CreatedByID;references:ID"`
	SharedBy   *User    `json:"sharedBy,omitempty" gorm:"foreignKey:SharedByID;references:ID"`
}

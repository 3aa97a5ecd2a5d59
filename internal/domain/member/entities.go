package member

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrNotFound            = errors.New("member not found")
	ErrUniquenessViolation = errors.New("identity number already registered")
	ErrActiveCapReached    = errors.New("caisse already has the maximum number of active members")
)

// MaxActivePerCaisse caps active membership of a single caisse.
const MaxActivePerCaisse = 30

type Role string

const (
	RoleOrdinary  Role = "MEMBRE"
	RolePresident Role = "PRESIDENTE"
	RoleSecretary Role = "SECRETAIRE"
	RoleTreasurer Role = "TRESORIERE"
)

// IsOfficer reports whether the role carries system-wide identity uniqueness.
func (r Role) IsOfficer() bool {
	return r == RolePresident || r == RoleSecretary || r == RoleTreasurer
}

type Status string

const (
	StatusActive    Status = "ACTIF"
	StatusInactive  Status = "INACTIF"
	StatusSuspended Status = "SUSPENDU"
	StatusRetired   Status = "RETRAITE"
)

type Member struct {
	ID             uint64         `gorm:"primaryKey;column:id" json:"-"`
	CaisseID       uint64         `gorm:"index;uniqueIndex:ux_members_identity_caisse" json:"caisse_id"`
	IdentityNumber string         `gorm:"size:26;uniqueIndex:ux_members_identity_caisse" json:"identity_number"`
	FullName       string         `gorm:"size:300" json:"full_name"`
	Phone          string         `gorm:"size:20" json:"phone"`
	Role           Role           `gorm:"size:20;default:'MEMBRE'" json:"role"`
	Status         Status         `gorm:"size:20;default:'ACTIF'" json:"status"`
	JoinedAt       time.Time      `gorm:"autoCreateTime" json:"joined_at"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Member) TableName() string { return "members" }

package models

import (
	"time"
)

// Role IDs (fixed, seeded with the schema).
const (
	RoleFaculty      = 1
	RoleDeptHead     = 2
	RoleDean         = 3
	RoleCITLDirector = 4
	RoleVPAA         = 5
	RoleAdmin        = 6
)

// Capabilities a role may invoke against the workflow engine.
const (
	CapabilitySubmit          = "submit"
	CapabilityApprove         = "approve"
	CapabilityRequestRevision = "request_revision"
	CapabilityManageUsers     = "manage_users"
	CapabilityViewAll         = "view_all"
)

// RoleCapabilities maps each role to the actions it may invoke. The engine
// checks capability membership instead of branching on UI concepts.
var RoleCapabilities = map[int][]string{
	RoleFaculty:      {CapabilitySubmit},
	RoleDeptHead:     {CapabilityApprove, CapabilityRequestRevision},
	RoleDean:         {CapabilityApprove, CapabilityRequestRevision},
	RoleCITLDirector: {CapabilityApprove, CapabilityRequestRevision},
	RoleVPAA:         {CapabilityApprove, CapabilityRequestRevision},
	RoleAdmin:        {CapabilityManageUsers, CapabilityViewAll},
}

// RoleHasCapability reports whether roleID may invoke the given capability.
func RoleHasCapability(roleID int, capability string) bool {
	for _, c := range RoleCapabilities[roleID] {
		if c == capability {
			return true
		}
	}
	return false
}

// RoleLabel returns the display name used in timelines and notifications.
func RoleLabel(roleID int) string {
	switch roleID {
	case RoleFaculty:
		return "Faculty"
	case RoleDeptHead:
		return "Department Head"
	case RoleDean:
		return "Dean"
	case RoleCITLDirector:
		return "CITL Director"
	case RoleVPAA:
		return "VPAA"
	case RoleAdmin:
		return "Admin"
	}
	return "Unknown"
}

type User struct {
	UserID     int        `gorm:"primaryKey;column:user_id" json:"user_id"`
	UserFname  string     `gorm:"column:user_fname" json:"user_fname"`
	UserLname  string     `gorm:"column:user_lname" json:"user_lname"`
	Email      string     `gorm:"column:email;unique" json:"email"`
	Password   string     `gorm:"column:password" json:"-"`
	RoleID     int        `gorm:"column:role_id" json:"role_id"`
	Department string     `gorm:"column:department" json:"department"`
	IsActive   bool       `gorm:"column:is_active" json:"is_active"`
	CreateAt   *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt   *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt   *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	// Relations
	Role Role `gorm:"foreignKey:RoleID" json:"role,omitempty"`
}

// FullName returns "Fname Lname" with empty parts dropped.
func (u User) FullName() string {
	if u.UserFname == "" {
		return u.UserLname
	}
	if u.UserLname == "" {
		return u.UserFname
	}
	return u.UserFname + " " + u.UserLname
}

type Role struct {
	RoleID   int        `gorm:"primaryKey;column:role_id" json:"role_id"`
	Role     string     `gorm:"column:role" json:"role"`
	CreateAt *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt *time.Time `gorm:"column:update_at" json:"update_at"`
}

// UserSession records one login. Logout revokes the session; the auth
// middleware rejects tokens whose session has been revoked or expired.
type UserSession struct {
	SessionID int        `gorm:"primaryKey;column:session_id" json:"session_id"`
	UserID    int        `gorm:"column:user_id" json:"user_id"`
	TokenHash string     `gorm:"column:token_hash" json:"-"`
	ExpiresAt time.Time  `gorm:"column:expires_at" json:"expires_at"`
	RevokedAt *time.Time `gorm:"column:revoked_at" json:"revoked_at,omitempty"`
	CreateAt  time.Time  `gorm:"column:create_at" json:"create_at"`
}

// TableName overrides
func (User) TableName() string {
	return "users"
}

func (Role) TableName() string {
	return "roles"
}

func (UserSession) TableName() string {
	return "user_sessions"
}

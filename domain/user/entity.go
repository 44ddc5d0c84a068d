package user

import (
	"time"
)

// User represents a registered account.
type User struct {
	ID           string `gorm:"primaryKey;type:text"`
	Username     string `gorm:"uniqueIndex;not null;type:text"`
	Email        string `gorm:"type:text"`
	PasswordHash string `gorm:"not null;type:text"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName returns the table name for the User entity.
func (User) TableName() string {
	return "users"
}

// Profile holds per-user preferences. Exactly one profile exists per user;
// it is created by the registration workflow in the same transaction as the
// user row, never as an implicit save side effect.
type Profile struct {
	ID                  string `gorm:"primaryKey;type:text"`
	UserID              string `gorm:"uniqueIndex;not null;type:text"`
	User                User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Bio                 string `gorm:"size:500"`
	PhoneNumber         string `gorm:"size:20"`
	DefaultTaskPriority string `gorm:"size:10;default:medium"`
	EmailNotifications  bool   `gorm:"default:true"`
	Timezone            string `gorm:"size:50;default:UTC"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// TableName returns the table name for the Profile entity.
func (Profile) TableName() string {
	return "profiles"
}

// Claims represents a validated session identity.
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// Info is the user representation exchanged between modules.
type Info struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

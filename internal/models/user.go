package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/customeros/recipestack/internal/utils"
)

type User struct {
	ID           string     `gorm:"column:id;type:varchar(50);primaryKey" json:"id"`
	Username     string     `gorm:"column:username;type:varchar(150);not null;uniqueIndex:uq_users_username" json:"username"`
	Email        string     `gorm:"column:email;type:varchar(255)" json:"email"`
	PasswordHash string     `gorm:"column:password_hash;type:varchar(255);not null" json:"-"`
	IsActive     bool       `gorm:"column:is_active;type:boolean;default:true" json:"isActive"`
	LastLoginAt  *time.Time `gorm:"column:last_login_at;type:timestamp" json:"lastLoginAt"`
	CreatedAt    time.Time  `gorm:"column:created_at;type:timestamp" json:"createdAt"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;type:timestamp" json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = utils.GenerateNanoIDWithPrefix("usr", 16)
	}
	now := utils.Now()
	u.CreatedAt = now
	u.UpdatedAt = now
	return nil
}

package models

import "gorm.io/gorm"

type User struct {
	gorm.Model
	Name     string `json:"name"`
	Email    string `json:"email" gorm:"uniqueIndex;not null"`
	Password string `json:"-"`
	Phone    string `json:"phone"`
	Role     string `json:"role" gorm:"index"` // "user", "driver", "admin"
}

package models

import "gorm.io/gorm"

// User represents an application account that can authenticate with the platform.
type User struct {
	gorm.Model
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	Username     string `gorm:"uniqueIndex;not null" json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	PasswordHash string `gorm:"not null" json:"-"`
}

// Follow is a directed subscription from a reader to a recipe author. The
// (user, author) pair is unique; self-follows are rejected before persistence.
type Follow struct {
	gorm.Model
	UserID   uint  `gorm:"not null;uniqueIndex:idx_follows_user_author" json:"user_id"`
	AuthorID uint  `gorm:"not null;uniqueIndex:idx_follows_user_author" json:"author_id"`
	User     *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Author   *User `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
}

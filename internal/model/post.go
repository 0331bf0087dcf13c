package model

import "time"

type Post struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"size:180;not null" json:"title"`
	Slug        string     `gorm:"size:200;not null;uniqueIndex" json:"slug"`
	Content     string     `gorm:"type:text;not null" json:"content"`
	IsPublished bool       `gorm:"not null;index" json:"is_published"`
	AuthorID    string     `gorm:"type:char(36);not null;index" json:"author_id"`
	Author      *User      `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `gorm:"autoUpdateTime:false" json:"updated_at"`
}

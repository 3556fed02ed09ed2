package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// HealthArticle is a pet wellness article. Category is free text and groups
// articles on the health hub.
type HealthArticle struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Title       string    `gorm:"column:title;not null"`
	Excerpt     string    `gorm:"column:excerpt;not null"`
	Content     string    `gorm:"column:content;not null"`
	Image       string    `gorm:"column:image;not null"`
	ReadTime    string    `gorm:"column:read_time;not null"`
	Category    string    `gorm:"column:category;not null;index"`
	Featured    bool      `gorm:"column:featured;not null"`
	PublishedAt time.Time `gorm:"column:published_at;not null;index"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (a *HealthArticle) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// Testimonial is a customer review. Submissions stay hidden from the default
// listing until an admin verifies them.
type Testimonial struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	Avatar    string    `gorm:"column:avatar;not null"`
	Rating    int       `gorm:"column:rating;not null"`
	Text      string    `gorm:"column:text;not null"`
	PetName   string    `gorm:"column:pet_name;not null"`
	Verified  bool      `gorm:"column:verified;not null;index"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (t *Testimonial) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

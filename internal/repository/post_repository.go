package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"blogfolio/internal/model"
)

type PostRepository struct {
	db *gorm.DB
}

// PostFilter narrows List. Zero values mean "no filter" except OnlyPublished,
// which the caller sets explicitly.
type PostFilter struct {
	Query         string
	AuthorID      string
	OnlyPublished bool
	Offset        int
	Limit         int
}

func NewPostRepository(db *gorm.DB) *PostRepository {
	return &PostRepository{db: db}
}

func (r *PostRepository) Create(post *model.Post) error {
	if err := r.db.Create(post).Error; err != nil {
		return fmt.Errorf("create post failed: %w", err)
	}
	return nil
}

func (r *PostRepository) GetByID(id uint) (*model.Post, error) {
	var post model.Post
	if err := r.db.First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query post by id failed: %w", err)
	}
	return &post, nil
}

func (r *PostRepository) GetBySlug(slug string) (*model.Post, error) {
	var post model.Post
	if err := r.db.Preload("Author").Where("slug = ?", slug).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query post by slug failed: %w", err)
	}
	return &post, nil
}

func (r *PostRepository) SlugExists(slug string) (bool, error) {
	var count int64
	if err := r.db.Model(&model.Post{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
		return false, fmt.Errorf("count posts by slug failed: %w", err)
	}
	return count > 0, nil
}

// SlugExistsExcept ignores the post's own row so that re-deriving a slug on
// update does not collide with itself.
func (r *PostRepository) SlugExistsExcept(slug string, postID uint) (bool, error) {
	var count int64
	if err := r.db.Model(&model.Post{}).
		Where("slug = ? AND id <> ?", slug, postID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("count posts by slug failed: %w", err)
	}
	return count > 0, nil
}

func (r *PostRepository) List(filter PostFilter) ([]model.Post, error) {
	query := r.db.Preload("Author")

	if filter.OnlyPublished {
		query = query.Where("is_published = ?", true)
	}
	if filter.Query != "" {
		like := "%" + filter.Query + "%"
		query = query.Where("title LIKE ? OR content LIKE ?", like, like)
	}
	if filter.AuthorID != "" {
		query = query.Where("author_id = ?", filter.AuthorID)
	}

	var posts []model.Post
	if err := query.
		Order("created_at DESC").
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("list posts failed: %w", err)
	}
	return posts, nil
}

func (r *PostRepository) Update(post *model.Post) error {
	if err := r.db.Save(post).Error; err != nil {
		return fmt.Errorf("update post failed: %w", err)
	}
	return nil
}

func (r *PostRepository) Delete(id uint) error {
	if err := r.db.Delete(&model.Post{}, id).Error; err != nil {
		return fmt.Errorf("delete post failed: %w", err)
	}
	return nil
}

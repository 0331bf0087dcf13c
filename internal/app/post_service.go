package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"blogfolio/internal/model"
	"blogfolio/internal/pkg/slug"
	"blogfolio/internal/repository"
)

var (
	ErrPostNotFound = errors.New("post not found")
	ErrForbidden    = errors.New("not allowed to access this post")
	ErrSlugConflict = errors.New("slug already in use")
)

const (
	maxTitleLength  = 180
	defaultPageSize = 10
	maxPageSize     = 100
)

// PostCache holds rendered post details keyed by slug. Only published posts
// are ever cached, so a cache hit is safe to serve to any viewer.
type PostCache interface {
	GetDetail(ctx context.Context, slug string) (*model.Post, bool, error)
	SetDetail(ctx context.Context, post *model.Post) error
	DeleteDetail(ctx context.Context, slug string) error
}

type PostService struct {
	postRepo  *repository.PostRepository
	cache     PostCache
	publisher AuditPublisher
	logger    *zap.Logger
}

type ListPostsInput struct {
	Page          int
	PageSize      int
	Query         string
	AuthorID      string
	OnlyPublished bool
}

type CreatePostInput struct {
	AuthorID    string
	Title       string
	Content     string
	IsPublished bool
}

type UpdatePostInput struct {
	Title       string
	Content     string
	IsPublished bool
}

func NewPostService(postRepo *repository.PostRepository, cache PostCache, publisher AuditPublisher, logger *zap.Logger) *PostService {
	return &PostService{
		postRepo:  postRepo,
		cache:     cache,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *PostService) List(input ListPostsInput) ([]model.Post, error) {
	page := input.Page
	if page < 1 {
		page = 1
	}
	pageSize := input.PageSize
	if pageSize < 1 || pageSize > maxPageSize {
		pageSize = defaultPageSize
	}

	authorID := strings.TrimSpace(input.AuthorID)
	if authorID != "" {
		if _, err := uuid.Parse(authorID); err != nil {
			return nil, ErrInvalidInput
		}
	}

	return s.postRepo.List(repository.PostFilter{
		Query:         strings.TrimSpace(input.Query),
		AuthorID:      authorID,
		OnlyPublished: input.OnlyPublished,
		Offset:        (page - 1) * pageSize,
		Limit:         pageSize,
	})
}

// GetBySlug returns the post for any viewer when published. Unpublished posts
// are visible only to their author; viewerID is empty for anonymous callers.
// A missing post is NotFound regardless of who asks.
func (s *PostService) GetBySlug(ctx context.Context, slugValue, viewerID string) (*model.Post, error) {
	if s.cache != nil {
		if cached, hit, err := s.cache.GetDetail(ctx, slugValue); err == nil && hit {
			return cached, nil
		}
	}

	post, err := s.postRepo.GetBySlug(slugValue)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	if !post.IsPublished {
		if viewerID == "" || viewerID != post.AuthorID {
			return nil, ErrForbidden
		}
		return post, nil
	}

	if s.cache != nil {
		if err := s.cache.SetDetail(ctx, post); err != nil && s.logger != nil {
			s.logger.Warn("cache post detail failed", zap.String("slug", post.Slug), zap.Error(err))
		}
	}
	return post, nil
}

func (s *PostService) Create(ctx context.Context, input CreatePostInput) (*model.Post, error) {
	if input.AuthorID == "" {
		return nil, ErrForbidden
	}
	title := strings.TrimSpace(input.Title)
	content := strings.TrimSpace(input.Content)
	if title == "" || utf8.RuneCountInString(title) > maxTitleLength || content == "" {
		return nil, ErrInvalidInput
	}

	insert := func() (*model.Post, error) {
		unique, err := s.uniqueSlug(title)
		if err != nil {
			return nil, err
		}
		post := &model.Post{
			Title:       title,
			Slug:        unique,
			Content:     content,
			IsPublished: input.IsPublished,
			AuthorID:    input.AuthorID,
		}
		if err := s.postRepo.Create(post); err != nil {
			return nil, err
		}
		return post, nil
	}

	post, err := insert()
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// Lost the check-then-insert race against a concurrent create with
		// the same base slug; re-derive once against the fresh state.
		post, err = insert()
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrSlugConflict
		}
	}
	if err != nil {
		return nil, err
	}

	s.audit(ctx, model.AuditEvent{
		Action: model.AuditPostCreated,
		UserID: post.AuthorID,
		Detail: post.Slug,
	})
	return post, nil
}

func (s *PostService) Update(ctx context.Context, postID uint, authorID string, input UpdatePostInput) error {
	if authorID == "" {
		return ErrForbidden
	}

	post, err := s.postRepo.GetByID(postID)
	if err != nil {
		return err
	}
	if post == nil {
		return ErrPostNotFound
	}
	if post.AuthorID != authorID {
		return ErrForbidden
	}

	title := strings.TrimSpace(input.Title)
	content := strings.TrimSpace(input.Content)
	if title == "" || utf8.RuneCountInString(title) > maxTitleLength || content == "" {
		return ErrInvalidInput
	}

	oldSlug := post.Slug
	titleChanged := title != post.Title

	save := func() error {
		if titleChanged {
			unique, err := s.uniqueSlugExcept(title, post.ID)
			if err != nil {
				return err
			}
			post.Slug = unique
		}
		post.Title = title
		post.Content = content
		post.IsPublished = input.IsPublished
		now := time.Now()
		post.UpdatedAt = &now
		return s.postRepo.Update(post)
	}

	err = save()
	if errors.Is(err, gorm.ErrDuplicatedKey) && titleChanged {
		err = save()
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrSlugConflict
		}
	}
	if err != nil {
		return err
	}

	s.invalidate(ctx, oldSlug)
	if post.Slug != oldSlug {
		s.invalidate(ctx, post.Slug)
	}
	s.audit(ctx, model.AuditEvent{
		Action: model.AuditPostUpdated,
		UserID: authorID,
		Detail: post.Slug,
	})
	return nil
}

func (s *PostService) Delete(ctx context.Context, postID uint, authorID string) error {
	if authorID == "" {
		return ErrForbidden
	}

	post, err := s.postRepo.GetByID(postID)
	if err != nil {
		return err
	}
	if post == nil {
		return ErrPostNotFound
	}
	if post.AuthorID != authorID {
		return ErrForbidden
	}

	if err := s.postRepo.Delete(post.ID); err != nil {
		return err
	}

	s.invalidate(ctx, post.Slug)
	s.audit(ctx, model.AuditEvent{
		Action: model.AuditPostDeleted,
		UserID: authorID,
		Detail: post.Slug,
	})
	return nil
}

func (s *PostService) uniqueSlug(title string) (string, error) {
	base := slug.Make(title)
	if base == "" {
		return "", ErrInvalidInput
	}
	candidate := base
	for i := 2; ; i++ {
		exists, err := s.postRepo.SlugExists(candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

func (s *PostService) uniqueSlugExcept(title string, postID uint) (string, error) {
	base := slug.Make(title)
	if base == "" {
		return "", ErrInvalidInput
	}
	candidate := base
	for i := 2; ; i++ {
		exists, err := s.postRepo.SlugExistsExcept(candidate, postID)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

func (s *PostService) invalidate(ctx context.Context, slugValue string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteDetail(ctx, slugValue); err != nil && s.logger != nil {
		s.logger.Warn("invalidate post cache failed", zap.String("slug", slugValue), zap.Error(err))
	}
}

func (s *PostService) audit(ctx context.Context, event model.AuditEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil && s.logger != nil {
		s.logger.Warn("publish audit event failed",
			zap.String("action", event.Action),
			zap.Error(err),
		)
	}
}

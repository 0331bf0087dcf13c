package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"blogfolio/internal/app"
	"blogfolio/internal/model"
	"blogfolio/internal/transport/http/middleware"
	"blogfolio/internal/transport/http/response"
)

type PostHandler struct {
	postService *app.PostService
}

type CreatePostRequest struct {
	Title       string `json:"title" binding:"required,max=180"`
	Content     string `json:"content" binding:"required"`
	IsPublished *bool  `json:"isPublished"`
}

type UpdatePostRequest struct {
	Title       string `json:"title" binding:"required,max=180"`
	Content     string `json:"content" binding:"required"`
	IsPublished *bool  `json:"isPublished"`
}

type PostResponse struct {
	ID              uint       `json:"id"`
	Title           string     `json:"title"`
	Slug            string     `json:"slug"`
	Content         string     `json:"content"`
	IsPublished     bool       `json:"isPublished"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       *time.Time `json:"updatedAt,omitempty"`
	AuthorID        string     `json:"authorId"`
	AuthorEmail     string     `json:"authorEmail,omitempty"`
	AuthorFullName  string     `json:"authorFullName,omitempty"`
	AuthorAvatarURL string     `json:"authorAvatarUrl,omitempty"`
}

func NewPostHandler(postService *app.PostService) *PostHandler {
	return &PostHandler{postService: postService}
}

func (h *PostHandler) List(c *gin.Context) {
	posts, err := h.postService.List(app.ListPostsInput{
		Page:          intQuery(c, "page", 1),
		PageSize:      intQuery(c, "pageSize", 10),
		Query:         c.Query("q"),
		AuthorID:      c.Query("authorId"),
		OnlyPublished: boolQuery(c, "onlyPublished", true),
	})
	if err != nil {
		if errors.Is(err, app.ErrInvalidInput) {
			response.Error(c, http.StatusBadRequest, "invalid authorId format")
			return
		}
		response.Error(c, http.StatusInternalServerError, "list posts failed")
		return
	}

	result := make([]PostResponse, 0, len(posts))
	for i := range posts {
		result = append(result, toPostResponse(&posts[i]))
	}
	c.JSON(http.StatusOK, result)
}

func (h *PostHandler) GetBySlug(c *gin.Context) {
	viewerID := middleware.CurrentUserID(c)

	post, err := h.postService.GetBySlug(c.Request.Context(), c.Param("slug"), viewerID)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrPostNotFound):
			response.Error(c, http.StatusNotFound, err.Error())
		case errors.Is(err, app.ErrForbidden):
			response.Error(c, http.StatusForbidden, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, "get post failed")
		}
		return
	}

	c.JSON(http.StatusOK, toPostResponse(post))
}

func (h *PostHandler) Create(c *gin.Context) {
	authorID := middleware.CurrentUserID(c)
	if authorID == "" {
		response.Error(c, http.StatusForbidden, "no user identity in token")
		return
	}

	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindingError(c, err)
		return
	}

	post, err := h.postService.Create(c.Request.Context(), app.CreatePostInput{
		AuthorID:    authorID,
		Title:       req.Title,
		Content:     req.Content,
		IsPublished: publishedOrDefault(req.IsPublished),
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, app.ErrForbidden):
			response.Error(c, http.StatusForbidden, err.Error())
		case errors.Is(err, app.ErrSlugConflict):
			response.Error(c, http.StatusConflict, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, "create post failed")
		}
		return
	}

	c.Header("Location", "/api/posts/"+post.Slug)
	c.JSON(http.StatusCreated, toPostResponse(post))
}

func (h *PostHandler) Update(c *gin.Context) {
	authorID := middleware.CurrentUserID(c)
	if authorID == "" {
		response.Error(c, http.StatusForbidden, "no user identity in token")
		return
	}

	postID, ok := postIDParam(c)
	if !ok {
		return
	}

	var req UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindingError(c, err)
		return
	}

	err := h.postService.Update(c.Request.Context(), postID, authorID, app.UpdatePostInput{
		Title:       req.Title,
		Content:     req.Content,
		IsPublished: publishedOrDefault(req.IsPublished),
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrPostNotFound):
			response.Error(c, http.StatusNotFound, err.Error())
		case errors.Is(err, app.ErrForbidden):
			response.Error(c, http.StatusForbidden, err.Error())
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, app.ErrSlugConflict):
			response.Error(c, http.StatusConflict, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, "update post failed")
		}
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *PostHandler) Delete(c *gin.Context) {
	authorID := middleware.CurrentUserID(c)
	if authorID == "" {
		response.Error(c, http.StatusForbidden, "no user identity in token")
		return
	}

	postID, ok := postIDParam(c)
	if !ok {
		return
	}

	if err := h.postService.Delete(c.Request.Context(), postID, authorID); err != nil {
		switch {
		case errors.Is(err, app.ErrPostNotFound):
			response.Error(c, http.StatusNotFound, err.Error())
		case errors.Is(err, app.ErrForbidden):
			response.Error(c, http.StatusForbidden, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, "delete post failed")
		}
		return
	}

	c.Status(http.StatusNoContent)
}

func toPostResponse(post *model.Post) PostResponse {
	resp := PostResponse{
		ID:          post.ID,
		Title:       post.Title,
		Slug:        post.Slug,
		Content:     post.Content,
		IsPublished: post.IsPublished,
		CreatedAt:   post.CreatedAt,
		UpdatedAt:   post.UpdatedAt,
		AuthorID:    post.AuthorID,
	}
	if post.Author != nil {
		resp.AuthorEmail = post.Author.Email
		resp.AuthorFullName = post.Author.FullName
		resp.AuthorAvatarURL = post.Author.AvatarURL
	}
	return resp
}

func postIDParam(c *gin.Context) (uint, bool) {
	id64, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id64 == 0 {
		response.Error(c, http.StatusBadRequest, "invalid post id")
		return 0, false
	}
	return uint(id64), true
}

func publishedOrDefault(flag *bool) bool {
	if flag == nil {
		return true
	}
	return *flag
}

func intQuery(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return parsed
}

func boolQuery(c *gin.Context, key string, fallback bool) bool {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return parsed
}

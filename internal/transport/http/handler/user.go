package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"blogfolio/internal/app"
	"blogfolio/internal/transport/http/middleware"
	"blogfolio/internal/transport/http/response"
)

type UserHandler struct {
	userService *app.UserService
}

// UpdateProfileRequest carries pointers so an absent field is a no-op while
// an explicit empty string clears the field.
type UpdateProfileRequest struct {
	FullName  *string `json:"fullName" binding:"omitempty,max=100"`
	AvatarURL *string `json:"avatarUrl"`
	Bio       *string `json:"bio"`
}

type ProfileResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"fullName"`
	AvatarURL string    `json:"avatarUrl"`
	Bio       string    `json:"bio"`
	CreatedAt time.Time `json:"createdAt"`
}

type PublicProfileResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FullName  string `json:"fullName"`
	AvatarURL string `json:"avatarUrl"`
	Bio       string `json:"bio"`
}

func NewUserHandler(userService *app.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) Me(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	if userID == "" {
		response.Error(c, http.StatusUnauthorized, "no user identity in token")
		return
	}

	user, err := h.userService.GetProfile(userID)
	if err != nil {
		if errors.Is(err, app.ErrUserNotFound) {
			response.Error(c, http.StatusNotFound, err.Error())
			return
		}
		response.Error(c, http.StatusInternalServerError, "fetch profile failed")
		return
	}

	c.JSON(http.StatusOK, ProfileResponse{
		ID:        user.ID,
		Email:     user.Email,
		FullName:  user.FullName,
		AvatarURL: user.AvatarURL,
		Bio:       user.Bio,
		CreatedAt: user.CreatedAt,
	})
}

func (h *UserHandler) UpdateMe(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	if userID == "" {
		response.Error(c, http.StatusUnauthorized, "no user identity in token")
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindingError(c, err)
		return
	}

	_, err := h.userService.UpdateProfile(userID, app.UpdateProfileInput{
		FullName:  req.FullName,
		AvatarURL: req.AvatarURL,
		Bio:       req.Bio,
	})
	if err != nil {
		if errors.Is(err, app.ErrUserNotFound) {
			response.Error(c, http.StatusNotFound, err.Error())
			return
		}
		response.Error(c, http.StatusInternalServerError, "update profile failed")
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *UserHandler) PublicProfile(c *gin.Context) {
	userID := c.Param("id")
	if _, err := uuid.Parse(userID); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid user id")
		return
	}

	user, err := h.userService.GetPublicProfile(userID)
	if err != nil {
		if errors.Is(err, app.ErrUserNotFound) {
			response.Error(c, http.StatusNotFound, err.Error())
			return
		}
		response.Error(c, http.StatusInternalServerError, "fetch profile failed")
		return
	}

	c.JSON(http.StatusOK, PublicProfileResponse{
		ID:        user.ID,
		Email:     user.Email,
		FullName:  user.FullName,
		AvatarURL: user.AvatarURL,
		Bio:       user.Bio,
	})
}

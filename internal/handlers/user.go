package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"skillswap-service/internal/auth"
	"skillswap-service/internal/repositories"
)

const sessionTTL = 24 * time.Hour

// UserHandler resolves identities to profiles.
type UserHandler struct {
	userRepo repositories.UserRepository
	tokens   *auth.TokenManager
}

// NewUserHandler builds a UserHandler.
func NewUserHandler(userRepo repositories.UserRepository, tokens *auth.TokenManager) *UserHandler {
	return &UserHandler{userRepo: userRepo, tokens: tokens}
}

// Sync creates or refreshes the profile after the identity provider has
// authenticated the user, and returns a service token for the session.
func (h *UserHandler) Sync(c *gin.Context) {
	var req struct {
		Email     string  `json:"email" binding:"required,email"`
		FirstName string  `json:"first_name" binding:"required"`
		LastName  string  `json:"last_name" binding:"required"`
		PhotoURL  *string `json:"photo_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userRepo.Upsert(c.Request.Context(), req.Email, req.FirstName, req.LastName, req.PhotoURL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not sync profile"})
		return
	}

	token, err := h.tokens.Generate(user.ID, sessionTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user, "token": token})
}

// Get returns a user's profile.
func (h *UserHandler) Get(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	user, err := h.userRepo.GetByID(c.Request.Context(), userID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrUserNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateMe applies profile edits for the authenticated user.
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req struct {
		FirstName     string   `json:"first_name" binding:"required"`
		LastName      string   `json:"last_name" binding:"required"`
		PhotoURL      *string  `json:"photo_url"`
		SkillsOffered []string `json:"skills_offered"`
		SkillsWanted  []string `json:"skills_wanted"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetInt("userID")
	user, err := h.userRepo.UpdateProfile(c.Request.Context(), userID, req.FirstName, req.LastName, req.PhotoURL, req.SkillsOffered, req.SkillsWanted)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrUserNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "could not update profile"})
		return
	}
	c.JSON(http.StatusOK, user)
}

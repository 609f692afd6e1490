// File: /controllers/auth_controller.go
package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"wavelink-api/models"
	"wavelink-api/repositories"
	"wavelink-api/services"
	"wavelink-api/utils"
)

type AuthController struct {
	users        *repositories.UserRepository
	assets       services.AssetStore
	emailService *services.EmailService
	jwtSecret    string
}

func NewAuthController(users *repositories.UserRepository, assets services.AssetStore,
	emailService *services.EmailService, jwtSecret string) *AuthController {
	return &AuthController{
		users:        users,
		assets:       assets,
		emailService: emailService,
		jwtSecret:    jwtSecret,
	}
}

type RegisterRequest struct {
	FullName string `json:"full_name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token string             `json:"token"`
	User  models.UserSummary `json:"user"`
}

func (ac *AuthController) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !utils.IsValidEmail(req.Email) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email address"})
		return
	}

	if !utils.IsValidPassword(req.Password) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Password must contain at least three of: lowercase, uppercase, digit, special character"})
		return
	}

	// Check if user already exists
	if _, err := ac.users.FindByEmail(req.Email); err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
		return
	}

	// Hash password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	user := models.User{
		ID:             uuid.New().String(),
		FullName:       req.FullName,
		Email:          req.Email,
		Password:       string(hashedPassword),
		Friends:        models.StringSet{},
		FriendRequests: models.StringSet{},
		SentRequests:   models.StringSet{},
	}

	if err := ac.users.Create(&user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	// Best-effort welcome email
	if err := ac.emailService.SendWelcomeEmail(user.Email, user.FullName); err != nil {
		logrus.WithField("email", user.Email).WithError(err).Warn("Failed to send welcome email")
	}

	token, err := ac.generateJWT(user.ID, user.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusCreated, AuthResponse{
		Token: token,
		User:  user.Summary(),
	})
}

func (ac *AuthController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := ac.users.FindByEmail(req.Email)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := ac.generateJWT(user.ID, user.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, AuthResponse{
		Token: token,
		User:  user.Summary(),
	})
}

func (ac *AuthController) Logout(c *gin.Context) {
	// In a stateless JWT system, logout is handled client-side
	c.JSON(http.StatusOK, gin.H{"message": "Successfully logged out"})
}

// Check returns the authenticated user, for session restore on reload
func (ac *AuthController) Check(c *gin.Context) {
	userID := c.GetString("user_id")

	user, err := ac.users.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user"})
		return
	}

	c.JSON(http.StatusOK, user.Summary())
}

type UpdateProfileRequest struct {
	FullName   string `json:"full_name"`
	ProfilePic string `json:"profile_pic"` // base64 data URL
}

// UpdateProfile changes the display name and/or avatar. A new avatar is
// stored first; the replaced one is deleted best-effort.
func (ac *AuthController) UpdateProfile(c *gin.Context) {
	userID := c.GetString("user_id")

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.FullName == "" && req.ProfilePic == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nothing to update"})
		return
	}

	user, err := ac.users.FindByID(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	fields := map[string]interface{}{}
	if req.FullName != "" {
		fields["full_name"] = req.FullName
	}

	if req.ProfilePic != "" {
		url, err := ac.assets.Store(c.Request.Context(), req.ProfilePic)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to store profile picture"})
			return
		}
		if user.ProfilePic != nil {
			if err := ac.assets.Delete(c.Request.Context(), *user.ProfilePic); err != nil {
				logrus.WithField("user_id", userID).WithError(err).Warn("Failed to delete old avatar")
			}
		}
		fields["profile_pic"] = url
	}

	if err := ac.users.UpdateFields(userID, fields); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}

	updated, err := ac.users.FindByID(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user"})
		return
	}
	c.JSON(http.StatusOK, updated.Summary())
}

// Helper functions
func (ac *AuthController) generateJWT(userID, email string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"email":   email,
		"exp":     time.Now().Add(time.Hour * 24 * 7).Unix(), // 7 days
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(ac.jwtSecret))
}

package controllers

import (
	"errors"
	"fmt"
	"strings"

	"zuricart/gateway"
	"zuricart/models"
	"zuricart/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuthHandler covers the minimal register/login surface behind the
// JWT-protected payment routes.
type AuthHandler struct {
	db *gorm.DB
}

func NewAuthHandler(db *gorm.DB) *AuthHandler {
	return &AuthHandler{db: db}
}

// Register creates a user account. Supplying another user's referral
// code links the accounts so the referrer earns commission on this
// user's paid orders.
// POST /register
func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Username     string `json:"username" binding:"required"`
		Email        string `json:"email" binding:"required"`
		Password     string `json:"password" binding:"required"`
		FirstName    string `json:"first_name"`
		LastName     string `json:"last_name"`
		Phone        string `json:"phone"`
		Country      string `json:"country" binding:"required"`
		ReferralCode string `json:"referral_code"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid registration request", err.Error())
		return
	}

	if !utils.ValidEmail(req.Email) {
		utils.BadRequest(c, "Invalid email address", nil)
		return
	}
	if len(req.Password) < utils.MinPasswordLength {
		utils.BadRequest(c, fmt.Sprintf("Password must be at least %d characters long", utils.MinPasswordLength), nil)
		return
	}
	country := strings.ToUpper(req.Country)
	if _, ok := gateway.CurrencyForCountry(country); !ok {
		utils.BadRequest(c, "Country not supported", nil)
		return
	}
	if req.Phone != "" && !utils.ValidPhone(req.Phone) {
		utils.BadRequest(c, "Invalid phone number", nil)
		return
	}

	var existing models.User
	if err := h.db.Where("email = ? OR username = ?", req.Email, req.Username).First(&existing).Error; err == nil {
		utils.Conflict(c, "An account with this email or username already exists", nil)
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.LogError("Registration lookup failed: %v", err)
		utils.InternalServerError(c, "Registration failed", nil)
		return
	}

	// Resolve the referrer before creating anything; a bad code is not
	// fatal, the signup just proceeds unlinked.
	var referrer *models.User
	if req.ReferralCode != "" {
		var ref models.User
		if err := h.db.Where("referral_code = ?", req.ReferralCode).First(&ref).Error; err == nil {
			referrer = &ref
		} else {
			utils.LogInfo("Registration with unknown referral code %s", req.ReferralCode)
		}
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.LogError("Password hashing failed: %v", err)
		utils.InternalServerError(c, "Registration failed", nil)
		return
	}

	user := models.User{
		Username:     req.Username,
		Email:        req.Email,
		Password:     hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Phone:        req.Phone,
		Country:      country,
		ReferralCode: strings.ToUpper(uuid.NewString()[:8]),
	}
	if err := h.db.Create(&user).Error; err != nil {
		utils.LogError("Failed to create user %s: %v", req.Email, err)
		utils.InternalServerError(c, "Registration failed", nil)
		return
	}
	if referrer != nil {
		referral := models.Referral{
			ReferrerUserID: referrer.ID,
			ReferredUserID: user.ID,
			ReferralCode:   req.ReferralCode,
		}
		if err := h.db.Create(&referral).Error; err != nil {
			utils.LogError("Failed to link referral for user %d: %v", user.ID, err)
		}
	}
	utils.LogInfo("User registered: %s (%s)", user.Username, user.Country)

	token, err := utils.GenerateToken(&user)
	if err != nil {
		utils.LogError("Token generation failed for user %d: %v", user.ID, err)
		utils.InternalServerError(c, "Registration succeeded but login failed, please log in", nil)
		return
	}

	utils.Created(c, "Registration successful", gin.H{
		"token": token,
		"user": gin.H{
			"id":            user.ID,
			"username":      user.Username,
			"email":         user.Email,
			"country":       user.Country,
			"referral_code": user.ReferralCode,
		},
	})
}

// Login authenticates a user and issues a JWT.
// POST /login
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Email and password are required", err.Error())
		return
	}

	var user models.User
	if err := h.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		utils.Unauthorized(c, utils.ErrInvalidCredentials)
		return
	}
	if !utils.CheckPassword(req.Password, user.Password) {
		utils.Unauthorized(c, utils.ErrInvalidCredentials)
		return
	}
	if user.IsBlocked {
		utils.Forbidden(c, utils.ErrUserBlocked)
		return
	}

	token, err := utils.GenerateToken(&user)
	if err != nil {
		utils.LogError("Token generation failed for user %d: %v", user.ID, err)
		utils.InternalServerError(c, "Login failed", nil)
		return
	}
	utils.LogInfo("User logged in: %s", user.Email)

	utils.Success(c, "Login successful", gin.H{
		"token": token,
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
			"country":  user.Country,
		},
	})
}

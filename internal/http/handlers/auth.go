package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Ahmedchetoui/Delta-sub000/internal/http/middleware"
	"github.com/Ahmedchetoui/Delta-sub000/internal/http/validation"
	"github.com/Ahmedchetoui/Delta-sub000/internal/modules/users"
	"github.com/Ahmedchetoui/Delta-sub000/internal/shared/apperr"
)

type AuthHandler struct {
	DB      *gorm.DB
	SessCfg middleware.SessionCfg
}

func NewAuthHandler(db *gorm.DB, sessCfg middleware.SessionCfg) *AuthHandler {
	return &AuthHandler{DB: db, SessCfg: sessCfg}
}

type loginInput struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

// Login: POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var in loginInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fields := validation.FromBindError(err, &in)
		middleware.Fail(c, apperr.InvalidErr("Giriş bilgileri geçersiz.", fields))
		return
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))

	var user users.User
	err := h.DB.WithContext(c.Request.Context()).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// hesap var/yok bilgisini sızdırma
			middleware.Fail(c, apperr.UnauthorizedErr("E-posta veya şifre hatalı."))
			return
		}
		middleware.Fail(c, apperr.Wrap(err))
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		middleware.Fail(c, apperr.UnauthorizedErr("E-posta veya şifre hatalı."))
		return
	}

	sess, err := middleware.CreateSession(h.SessCfg, user.ID)
	if err != nil {
		middleware.Fail(c, apperr.Wrap(err))
		return
	}
	c.SetCookie(h.SessCfg.CookieName, sess.ID, int(h.SessCfg.TTL.Seconds()), "/", "", h.SessCfg.Secure, true)

	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"id":    user.ID,
			"email": user.Email,
			"name":  user.Name,
			"role":  user.Role,
		},
	})
}

// Logout: POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if sessionID, err := c.Cookie(h.SessCfg.CookieName); err == nil && sessionID != "" {
		_ = middleware.DeleteSession(h.SessCfg, sessionID)
	}
	c.SetCookie(h.SessCfg.CookieName, "", -1, "/", "", h.SessCfg.Secure, true)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

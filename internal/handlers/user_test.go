package handlers

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/solconf/solconf/internal/models"
	"github.com/solconf/solconf/internal/utils"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newHandlerDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func resetPasswordRouter(db *gorm.DB) *gin.Engine {
	router := gin.New()
	h := NewUserHandler(db)
	router.POST("/api/users/:id/reset-password", h.ResetPassword)
	return router
}

func seedUser(t *testing.T, db *gorm.DB, username, password, authType string) *models.User {
	t.Helper()
	hashed, err := utils.HashPassword(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := models.User{
		Username: username,
		Password: hashed,
		Role:     "user",
		AuthType: authType,
		IsActive: true,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return &user
}

func TestUserHandler_ResetPassword(t *testing.T) {
	db := newHandlerDB(t)
	user := seedUser(t, db, "alice", "old-password", "local")
	router := resetPasswordRouter(db)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/users/1/reset-password",
		strings.NewReader(`{"new_password":"fresh-secret"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var updated models.User
	if err := db.First(&updated, user.ID).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if !utils.CheckPassword("fresh-secret", updated.Password) {
		t.Error("new password should verify against the stored hash")
	}
	if utils.CheckPassword("old-password", updated.Password) {
		t.Error("old password must stop working")
	}
}

func TestUserHandler_ResetPasswordTooShort(t *testing.T) {
	db := newHandlerDB(t)
	seedUser(t, db, "alice", "old-password", "local")
	router := resetPasswordRouter(db)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/users/1/reset-password",
		strings.NewReader(`{"new_password":"short"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for a five-character password", w.Code)
	}
}

func TestUserHandler_ResetPasswordLDAPRefused(t *testing.T) {
	db := newHandlerDB(t)
	seedUser(t, db, "bob", "irrelevant", "ldap")
	router := resetPasswordRouter(db)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/users/1/reset-password",
		strings.NewReader(`{"new_password":"fresh-secret"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for a directory-backed account", w.Code)
	}
}

func TestUserHandler_ResetPasswordUnknownUser(t *testing.T) {
	db := newHandlerDB(t)
	router := resetPasswordRouter(db)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/users/99/reset-password",
		strings.NewReader(`{"new_password":"fresh-secret"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

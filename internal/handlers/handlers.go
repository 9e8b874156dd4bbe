package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"notekeep/internal/auth"
	"notekeep/internal/db"
	"notekeep/internal/models"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type Handlers struct {
	db             *db.DB
	auth           *auth.Auth
	passwordMinLen int
}

func New(database *db.DB, a *auth.Auth, passwordMinLen int) *Handlers {
	return &Handlers{
		db:             database,
		auth:           a,
		passwordMinLen: passwordMinLen,
	}
}

// Router builds the full route table. Protected routes go through the
// auth middleware.
func (h *Handlers) Router() *gin.Engine {
	router := gin.Default()

	// The SPA client is served from a different origin.
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AddAllowHeaders("Authorization")
	router.Use(cors.New(corsConfig))

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"data": "hello"})
	})

	router.POST("/create-account", h.CreateAccount)
	router.POST("/login", h.Login)

	authed := router.Group("/", h.auth.Middleware())
	{
		authed.GET("/get-user", h.GetUser)
		authed.POST("/add-note", h.AddNote)
		authed.PUT("/edit-note/:id", h.EditNote)
		authed.GET("/get-all-notes", h.GetAllNotes)
		authed.DELETE("/delete-note/:id", h.DeleteNote)
		authed.PUT("/update-note-pinned/:id", h.UpdateNotePinned)
		authed.GET("/search-note", h.SearchNotes)
	}

	return router
}

func (h *Handlers) fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": true, "message": message})
}

func (h *Handlers) serverError(c *gin.Context, err error) {
	log.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	h.fail(c, http.StatusInternalServerError, "Internal server error")
}

// Accounts

func (h *Handlers) CreateAccount(c *gin.Context) {
	var req struct {
		FullName string `json:"fullName"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if req.FullName == "" {
		h.fail(c, http.StatusBadRequest, "Full name is required")
		return
	}
	if req.Email == "" {
		h.fail(c, http.StatusBadRequest, "Email is required")
		return
	}
	if !emailPattern.MatchString(req.Email) {
		h.fail(c, http.StatusBadRequest, "Invalid email address")
		return
	}
	if len(req.Password) < h.passwordMinLen {
		h.fail(c, http.StatusBadRequest, fmt.Sprintf("Password must be at least %d characters", h.passwordMinLen))
		return
	}

	if _, err := h.db.GetAccountByEmail(req.Email); err == nil {
		h.fail(c, http.StatusConflict, "User already exists")
		return
	} else if !errors.Is(err, db.ErrNotFound) {
		h.serverError(c, err)
		return
	}

	hash, err := h.auth.HashPassword(req.Password)
	if err != nil {
		h.serverError(c, err)
		return
	}

	account, err := h.db.CreateAccount(req.FullName, req.Email, hash)
	if err != nil {
		// A concurrent signup can slip past the pre-check; the unique
		// index reports it as the same conflict.
		if errors.Is(err, db.ErrDuplicateEmail) {
			h.fail(c, http.StatusConflict, "User already exists")
			return
		}
		h.serverError(c, err)
		return
	}

	token, err := h.auth.GenerateToken(account.ID, account.Email)
	if err != nil {
		h.serverError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"error":   false,
		"message": "Account created successfully",
		"token":   token,
	})
}

func (h *Handlers) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if req.Email == "" {
		h.fail(c, http.StatusBadRequest, "Email is required")
		return
	}
	if req.Password == "" {
		h.fail(c, http.StatusBadRequest, "Password is required")
		return
	}

	account, err := h.db.GetAccountByEmail(req.Email)
	if errors.Is(err, db.ErrNotFound) {
		h.fail(c, http.StatusBadRequest, "User not found")
		return
	}
	if err != nil {
		h.serverError(c, err)
		return
	}

	if !h.auth.CheckPassword(req.Password, account.PasswordHash) {
		h.fail(c, http.StatusBadRequest, "Invalid credentials")
		return
	}

	token, err := h.auth.GenerateToken(account.ID, account.Email)
	if err != nil {
		h.serverError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"error":       false,
		"message":     "Login successful",
		"email":       account.Email,
		"accessToken": token,
	})
}

func (h *Handlers) GetUser(c *gin.Context) {
	claims := auth.Identity(c)

	account, err := h.db.GetAccountByID(claims.UserID)
	if errors.Is(err, db.ErrNotFound) {
		// A valid token should always resolve to an account; treat a
		// miss as a stale identity.
		h.fail(c, http.StatusUnauthorized, "User not found")
		return
	}
	if err != nil {
		h.serverError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"error": false,
		"user":  account,
	})
}

// Notes

func (h *Handlers) AddNote(c *gin.Context) {
	claims := auth.Identity(c)

	var req struct {
		Title   string   `json:"title"`
		Content string   `json:"content"`
		Tags    []string `json:"tags"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	req.Content = strings.TrimSpace(req.Content)

	if req.Title == "" {
		h.fail(c, http.StatusBadRequest, "Title is required")
		return
	}
	if req.Content == "" {
		h.fail(c, http.StatusBadRequest, "Content is required")
		return
	}

	note, err := h.db.CreateNote(claims.UserID, req.Title, req.Content, req.Tags)
	if err != nil {
		h.serverError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"error":   false,
		"message": "Note added successfully",
		"note":    note,
	})
}

func (h *Handlers) EditNote(c *gin.Context) {
	claims := auth.Identity(c)
	id := c.Param("id")

	var req struct {
		Title    *string   `json:"title"`
		Content  *string   `json:"content"`
		Tags     *[]string `json:"tags"`
		IsPinned *bool     `json:"isPinned"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	patch := models.NotePatch{
		Title:    req.Title,
		Content:  req.Content,
		Tags:     req.Tags,
		IsPinned: req.IsPinned,
	}
	if patch.Empty() {
		h.fail(c, http.StatusBadRequest, "No changes provided")
		return
	}

	if patch.Title != nil {
		trimmed := strings.TrimSpace(*patch.Title)
		if trimmed == "" {
			h.fail(c, http.StatusBadRequest, "Title cannot be empty")
			return
		}
		patch.Title = &trimmed
	}
	if patch.Content != nil {
		trimmed := strings.TrimSpace(*patch.Content)
		if trimmed == "" {
			h.fail(c, http.StatusBadRequest, "Content cannot be empty")
			return
		}
		patch.Content = &trimmed
	}

	note, err := h.db.UpdateNote(id, claims.UserID, patch)
	if errors.Is(err, db.ErrNotFound) {
		h.fail(c, http.StatusNotFound, "Note not found")
		return
	}
	if err != nil {
		h.serverError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"error":   false,
		"message": "Note updated successfully",
		"note":    note,
	})
}

func (h *Handlers) GetAllNotes(c *gin.Context) {
	claims := auth.Identity(c)

	notes, err := h.db.GetNotes(claims.UserID)
	if err != nil {
		h.serverError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"error": false,
		"notes": notes,
	})
}

func (h *Handlers) DeleteNote(c *gin.Context) {
	claims := auth.Identity(c)
	id := c.Param("id")

	err := h.db.DeleteNote(id, claims.UserID)
	if errors.Is(err, db.ErrNotFound) {
		h.fail(c, http.StatusNotFound, "Note not found")
		return
	}
	if err != nil {
		h.serverError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"error":   false,
		"message": "Note deleted successfully",
	})
}

func (h *Handlers) UpdateNotePinned(c *gin.Context) {
	claims := auth.Identity(c)
	id := c.Param("id")

	var req struct {
		IsPinned *bool `json:"isPinned"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.IsPinned == nil {
		h.fail(c, http.StatusBadRequest, "isPinned must be a boolean")
		return
	}

	note, err := h.db.SetNotePinned(id, claims.UserID, *req.IsPinned)
	if errors.Is(err, db.ErrNotFound) {
		h.fail(c, http.StatusNotFound, "Note not found")
		return
	}
	if err != nil {
		h.serverError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"error":   false,
		"message": "Note updated successfully",
		"note":    note,
	})
}

func (h *Handlers) SearchNotes(c *gin.Context) {
	claims := auth.Identity(c)

	query := strings.TrimSpace(c.Query("query"))
	if query == "" {
		h.fail(c, http.StatusBadRequest, "Search query is required")
		return
	}

	notes, err := h.db.SearchNotes(claims.UserID, query)
	if err != nil {
		h.serverError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"error": false,
		"notes": notes,
	})
}

package http

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"pet-market/internal/domain"
	"pet-market/internal/repository"
	"pet-market/internal/service"
	"pet-market/internal/storage"
)

const (
	maxPhotoSize   = 5 << 20
	photoURLExpiry = 15 * time.Minute
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	users     service.UserService
	tokens    service.TokenService
	animals   service.AnimalService
	storage   storage.Service
	bucket    string
	keyPrefix string
	logger    *logrus.Logger
}

func NewHandler(users service.UserService, tokens service.TokenService, animals service.AnimalService, store storage.Service, bucket, keyPrefix string, logger *logrus.Logger) *Handler {
	return &Handler{
		users:     users,
		tokens:    tokens,
		animals:   animals,
		storage:   store,
		bucket:    bucket,
		keyPrefix: keyPrefix,
		logger:    logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())
	router.Use(requestLogger(h.logger))

	api := router.Group("/api")
	{
		api.POST("/auth/register", h.register)
		api.POST("/auth/login", h.login)
		api.GET("/auth/me", h.authRequired(), h.me)

		api.GET("/animals", h.listAnimals)
		api.GET("/animals/:id", h.getAnimal)

		protected := api.Group("", h.authRequired())
		{
			protected.POST("/animals", h.createAnimal)
			protected.PUT("/animals/:id", h.updateAnimal)
			protected.DELETE("/animals/:id", h.deleteAnimal)
			protected.POST("/animals/:id/photo", h.uploadAnimalPhoto)
		}

		api.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
		})
	}
}

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"token": token,
		"user":  userToResponse(user),
	})
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  userToResponse(user),
	})
}

func (h *Handler) me(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": userToResponse(user)})
}

type animalRequest struct {
	Name        string   `json:"name" binding:"required"`
	Species     string   `json:"species" binding:"required"`
	Breed       string   `json:"breed" binding:"required"`
	Age         *int     `json:"age" binding:"required"`
	Gender      string   `json:"gender" binding:"required"`
	Description string   `json:"description" binding:"required"`
	Price       *float64 `json:"price" binding:"required"`
	Color       string   `json:"color" binding:"required"`
	Vaccinated  bool     `json:"vaccinated"`
	Sterilized  bool     `json:"sterilized"`
	Location    string   `json:"location" binding:"required"`
}

type animalUpdateRequest struct {
	Name        *string  `json:"name"`
	Species     *string  `json:"species"`
	Breed       *string  `json:"breed"`
	Age         *int     `json:"age"`
	Gender      *string  `json:"gender"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Color       *string  `json:"color"`
	Vaccinated  *bool    `json:"vaccinated"`
	Sterilized  *bool    `json:"sterilized"`
	Location    *string  `json:"location"`
}

func (h *Handler) createAnimal(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var req animalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	animal := &domain.Animal{
		Name:        req.Name,
		Species:     domain.Species(req.Species),
		Breed:       req.Breed,
		Age:         *req.Age,
		Gender:      domain.Gender(req.Gender),
		Description: req.Description,
		Price:       *req.Price,
		Color:       req.Color,
		Vaccinated:  req.Vaccinated,
		Sterilized:  req.Sterilized,
		Location:    req.Location,
		AuthorID:    user.ID,
	}

	created, err := h.animals.Create(c.Request.Context(), animal)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, h.animalToResponse(c, created))
}

func (h *Handler) listAnimals(c *gin.Context) {
	filter := repository.AnimalFilter{
		Species: domain.Species(c.Query("species")),
		Breed:   c.Query("breed"),
		Gender:  domain.Gender(c.Query("gender")),
	}

	animals, err := h.animals.List(c.Request.Context(), filter)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	resp := make([]AnimalResponse, len(animals))
	for i := range animals {
		resp[i] = h.animalToResponse(c, &animals[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) getAnimal(c *gin.Context) {
	id, ok := animalID(c)
	if !ok {
		return
	}

	animal, err := h.animals.Get(c.Request.Context(), id)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.animalToResponse(c, animal))
}

func (h *Handler) updateAnimal(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	id, ok := animalID(c)
	if !ok {
		return
	}

	var req animalUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	update := service.AnimalUpdate{
		Name:        req.Name,
		Breed:       req.Breed,
		Age:         req.Age,
		Description: req.Description,
		Price:       req.Price,
		Color:       req.Color,
		Vaccinated:  req.Vaccinated,
		Sterilized:  req.Sterilized,
		Location:    req.Location,
	}
	if req.Species != nil {
		species := domain.Species(*req.Species)
		update.Species = &species
	}
	if req.Gender != nil {
		gender := domain.Gender(*req.Gender)
		update.Gender = &gender
	}

	animal, err := h.animals.Update(c.Request.Context(), id, user.ID, update)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.animalToResponse(c, animal))
}

func (h *Handler) deleteAnimal(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	id, ok := animalID(c)
	if !ok {
		return
	}

	animal, err := h.animals.Delete(c.Request.Context(), id, user.ID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	if h.storage != nil && animal.PhotoKey != "" {
		if err := h.storage.Delete(c.Request.Context(), h.bucket, animal.PhotoKey); err != nil {
			h.logger.Warnf("delete photo %s: %v", animal.PhotoKey, err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"deleted": animal.ID})
}

func (h *Handler) uploadAnimalPhoto(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	id, ok := animalID(c)
	if !ok {
		return
	}

	if h.storage == nil || h.bucket == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "photo storage not configured"})
		return
	}

	animal, err := h.animals.GetOwned(c.Request.Context(), id, user.ID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo file is required"})
		return
	}
	if fileHeader.Size > maxPhotoSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo must be at most 5 MiB"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	defer file.Close()

	key := h.photoKey(animal.ID, fileHeader.Filename)
	contentType := fileHeader.Header.Get("Content-Type")
	if err := h.storage.Upload(c.Request.Context(), h.bucket, key, file, contentType); err != nil {
		h.writeServiceError(c, err)
		return
	}

	previousKey := animal.PhotoKey
	updated, err := h.animals.SetPhotoKey(c.Request.Context(), id, user.ID, key)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	if previousKey != "" {
		if err := h.storage.Delete(c.Request.Context(), h.bucket, previousKey); err != nil {
			h.logger.Warnf("delete previous photo %s: %v", previousKey, err)
		}
	}

	c.JSON(http.StatusOK, h.animalToResponse(c, updated))
}

func (h *Handler) photoKey(animalID int64, filename string) string {
	key := fmt.Sprintf("animal-%d/%s%s", animalID, uuid.NewString(), strings.ToLower(filepath.Ext(filename)))
	if prefix := strings.Trim(h.keyPrefix, "/"); prefix != "" {
		key = prefix + "/" + key
	}
	return key
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrUserAlreadyExists):
		c.JSON(http.StatusBadRequest, gin.H{"error": "username or email already taken"})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
	case errors.Is(err, service.ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": "you do not own this animal"})
	case errors.Is(err, service.ErrAnimalNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "animal not found"})
	default:
		h.logger.WithField("path", c.Request.URL.Path).Errorf("request failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func animalID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid animal id"})
		return 0, false
	}
	return id, true
}

type UserResponse struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
}

type AuthorResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type AnimalResponse struct {
	ID          int64          `json:"id"`
	Name        string         `json:"name"`
	Species     domain.Species `json:"species"`
	Breed       string         `json:"breed"`
	Age         int            `json:"age"`
	Gender      domain.Gender  `json:"gender"`
	Description string         `json:"description"`
	Price       float64        `json:"price"`
	Color       string         `json:"color"`
	Vaccinated  bool           `json:"vaccinated"`
	Sterilized  bool           `json:"sterilized"`
	Location    string         `json:"location"`
	PhotoURL    string         `json:"photo_url,omitempty"`
	Author      AuthorResponse `json:"author"`
	CreatedAt   string         `json:"created_at"`
	UpdatedAt   string         `json:"updated_at"`
}

func userToResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	}
}

func (h *Handler) animalToResponse(c *gin.Context, animal *domain.Animal) AnimalResponse {
	resp := AnimalResponse{
		ID:          animal.ID,
		Name:        animal.Name,
		Species:     animal.Species,
		Breed:       animal.Breed,
		Age:         animal.Age,
		Gender:      animal.Gender,
		Description: animal.Description,
		Price:       animal.Price,
		Color:       animal.Color,
		Vaccinated:  animal.Vaccinated,
		Sterilized:  animal.Sterilized,
		Location:    animal.Location,
		Author: AuthorResponse{
			ID:       animal.AuthorID,
			Username: animal.AuthorName,
		},
		CreatedAt: animal.CreatedAt.Format(time.RFC3339),
		UpdatedAt: animal.UpdatedAt.Format(time.RFC3339),
	}

	if h.storage != nil && animal.PhotoKey != "" {
		url, err := h.storage.ObjectURL(c.Request.Context(), h.bucket, animal.PhotoKey, photoURLExpiry)
		if err != nil {
			h.logger.Warnf("presign photo %s: %v", animal.PhotoKey, err)
		} else {
			resp.PhotoURL = url
		}
	}

	return resp
}

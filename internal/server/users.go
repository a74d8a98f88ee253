package server

import (
	"net/http"
	"time"

	"todoapp/internal/auth"
	apperrors "todoapp/internal/domain/errors"
	"todoapp/internal/domain/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func (api *TodoAPI) register(ctx *gin.Context) error {
	var req models.RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return apperrors.Validation("Username, email and password are required")
	}
	if err := api.valid.Struct(req); err != nil {
		return api.validationError(err)
	}

	// Pre-check is a UX nicety; the unique index on email is the
	// authoritative guarantee.
	if existing, _ := api.users.GetUserByEmail(ctx.Request.Context(), req.Email); existing != nil {
		return apperrors.ErrEmailTaken
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return err
	}

	role := req.Role
	if role == "" {
		role = RoleUser
	}

	now := time.Now().UTC()
	user := models.User{
		ID:        uuid.New().String(),
		Username:  req.Username,
		Email:     req.Email,
		Password:  hash,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := api.users.CreateUser(ctx.Request.Context(), &user); err != nil {
		return err
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"data":    user,
	})
	return nil
}

func (api *TodoAPI) login(ctx *gin.Context) error {
	var req models.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return apperrors.Validation("Email and password are required")
	}
	if err := api.valid.Struct(req); err != nil {
		return api.validationError(err)
	}

	user, err := api.users.GetUserByEmail(ctx.Request.Context(), req.Email)
	if err != nil {
		return err
	}

	if !auth.CheckPassword(req.Password, user.Password) {
		return apperrors.ErrPasswordMismatch
	}

	token, err := api.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return err
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "User login successful",
		"token":   token,
		"data":    user,
	})
	return nil
}

// profile reads the identity attached by the auth gate, never the URL,
// so a user can only fetch their own record this way.
func (api *TodoAPI) profile(ctx *gin.Context) error {
	id := ctx.GetString(ctxUserID)

	user, err := api.users.GetUserByID(ctx.Request.Context(), id)
	if err != nil {
		return err
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "User profile fetched successfully",
		"data":    user,
	})
	return nil
}

func (api *TodoAPI) getUsers(ctx *gin.Context) error {
	users, err := api.users.GetUsers(ctx.Request.Context())
	if err != nil {
		return err
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Successfully fetched all users",
		"data":    users,
	})
	return nil
}

func (api *TodoAPI) getUser(ctx *gin.Context) error {
	id := ctx.Param("userID")
	if _, err := uuid.Parse(id); err != nil {
		return apperrors.InvalidID("Resource not found")
	}

	user, err := api.users.GetUserByID(ctx.Request.Context(), id)
	if err != nil {
		return err
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Single user fetched successfully",
		"data":    user,
	})
	return nil
}

func (api *TodoAPI) updateUser(ctx *gin.Context) error {
	id := ctx.Param("userID")
	if _, err := uuid.Parse(id); err != nil {
		return apperrors.InvalidID("Resource not found")
	}

	var req models.UpdateUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return apperrors.Validation("Username and password are required")
	}
	if err := api.valid.Struct(req); err != nil {
		return api.validationError(err)
	}

	user, err := api.users.GetUserByID(ctx.Request.Context(), id)
	if err != nil {
		return err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return err
	}

	user.Username = req.Username
	user.Password = hash
	user.UpdatedAt = time.Now().UTC()

	if err := api.users.UpdateUser(ctx.Request.Context(), id, user); err != nil {
		return err
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "User updated successfully",
		"data":    user,
	})
	return nil
}

func (api *TodoAPI) deleteUser(ctx *gin.Context) error {
	id := ctx.Param("userID")
	if _, err := uuid.Parse(id); err != nil {
		return apperrors.InvalidID("Resource not found")
	}

	if err := api.users.DeleteUser(ctx.Request.Context(), id); err != nil {
		return err
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
	return nil
}

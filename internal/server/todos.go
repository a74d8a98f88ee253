package server

import (
	"net/http"
	"time"

	apperrors "todoapp/internal/domain/errors"
	"todoapp/internal/domain/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func (api *TodoAPI) createTodo(ctx *gin.Context) error {
	var req models.CreateTodoRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return apperrors.Validation("Title is required")
	}
	if err := api.valid.Struct(req); err != nil {
		return api.validationError(err)
	}

	// Titles are globally unique. The pre-check gives the friendly 409;
	// the store's unique index is the backstop under races.
	if existing, _ := api.todos.GetTodoByTitle(ctx.Request.Context(), req.Title); existing != nil {
		return apperrors.ErrTitleTaken
	}

	now := time.Now().UTC()
	todo := models.Todo{
		ID:          uuid.New().String(),
		Title:       req.Title,
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := api.todos.CreateTodo(ctx.Request.Context(), &todo); err != nil {
		return err
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"message": "Todo created successfully",
		"data":    todo,
	})
	return nil
}

// getTodos lists every todo, newest first.
func (api *TodoAPI) getTodos(ctx *gin.Context) error {
	todos, err := api.todos.GetTodos(ctx.Request.Context())
	if err != nil {
		return err
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Successfully fetched all todos",
		"data":    todos,
	})
	return nil
}

func (api *TodoAPI) getTodo(ctx *gin.Context) error {
	id := ctx.Param("todoID")
	if _, err := uuid.Parse(id); err != nil {
		return apperrors.InvalidID("Resource not found")
	}

	todo, err := api.todos.GetTodoByID(ctx.Request.Context(), id)
	if err != nil {
		return err
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Single todo fetched successfully",
		"data":    todo,
	})
	return nil
}

func (api *TodoAPI) updateTodo(ctx *gin.Context) error {
	id := ctx.Param("todoID")
	if _, err := uuid.Parse(id); err != nil {
		return apperrors.InvalidID("Resource not found")
	}

	var req models.UpdateTodoRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return apperrors.Validation("Title and description are required")
	}
	if err := api.valid.Struct(req); err != nil {
		return api.validationError(err)
	}

	todo, err := api.todos.GetTodoByID(ctx.Request.Context(), id)
	if err != nil {
		return err
	}

	todo.Title = req.Title
	todo.Description = req.Description
	todo.UpdatedAt = time.Now().UTC()

	if err := api.todos.UpdateTodo(ctx.Request.Context(), id, todo); err != nil {
		return err
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Todo updated successfully",
		"data":    todo,
	})
	return nil
}

func (api *TodoAPI) deleteTodo(ctx *gin.Context) error {
	id := ctx.Param("todoID")
	if _, err := uuid.Parse(id); err != nil {
		return apperrors.InvalidID("Resource not found")
	}

	if err := api.todos.DeleteTodo(ctx.Request.Context(), id); err != nil {
		return err
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Todo deleted successfully"})
	return nil
}

func (api *TodoAPI) searchTodos(ctx *gin.Context) error {
	query := ctx.Query("query")
	if query == "" {
		return apperrors.Validation("Query must be required")
	}

	todos, err := api.todos.SearchTodos(ctx.Request.Context(), query)
	if err != nil {
		return err
	}
	if len(todos) == 0 {
		return apperrors.NotFound("No todo found for this search")
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Search result",
		"data":    todos,
	})
	return nil
}

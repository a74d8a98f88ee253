package server

import (
	"context"
	"fmt"
	"net/http"

	"todoapp/internal/auth"
	apperrors "todoapp/internal/domain/errors"
	"todoapp/internal/domain/models"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUsers(ctx context.Context) ([]models.User, error)
	UpdateUser(ctx context.Context, id string, user *models.User) error
	DeleteUser(ctx context.Context, id string) error
}

type TodoRepository interface {
	CreateTodo(ctx context.Context, todo *models.Todo) error
	GetTodoByID(ctx context.Context, id string) (*models.Todo, error)
	GetTodoByTitle(ctx context.Context, title string) (*models.Todo, error)
	GetTodos(ctx context.Context) ([]models.Todo, error)
	UpdateTodo(ctx context.Context, id string, todo *models.Todo) error
	DeleteTodo(ctx context.Context, id string) error
	SearchTodos(ctx context.Context, query string) ([]models.Todo, error)
}

type TodoAPI struct {
	httpSrv *http.Server
	users   UserRepository
	todos   TodoRepository
	tokens  *auth.TokenService
	valid   *validator.Validate
}

func NewTodoAPI(users UserRepository, todos TodoRepository, cfg *Config) *TodoAPI {
	if users == nil || todos == nil || cfg == nil {
		return nil
	}

	addr := cfg.Addr
	if cfg.Port != 0 {
		addr = fmt.Sprintf("%s:%d", cfg.Addr, cfg.Port)
	}

	api := TodoAPI{
		httpSrv: &http.Server{Addr: addr},
		users:   users,
		todos:   todos,
		tokens:  auth.NewTokenService(cfg.JWTSecret),
		valid:   validator.New(),
	}

	api.configRoutes()

	return &api
}

func (api *TodoAPI) Start() error {
	if api.httpSrv == nil {
		return apperrors.ErrInternalServer
	}

	if api.httpSrv.Addr == "" {
		api.httpSrv.Addr = ":8080"
	}

	return api.httpSrv.ListenAndServe()
}

func (api *TodoAPI) Shutdown(ctx context.Context) error {
	if api.httpSrv == nil {
		return nil
	}
	return api.httpSrv.Shutdown(ctx)
}

func (api *TodoAPI) configRoutes() {
	router := gin.Default()
	router.Use(gzipResponse())

	router.NoMethod(func(ctx *gin.Context) {
		ctx.JSON(http.StatusMethodNotAllowed, gin.H{"error": "method not allowed"})
	})
	router.NoRoute(func(ctx *gin.Context) {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
	})

	root := router.Group("/api")
	{
		root.POST("/register", wrap(api.register))
		root.POST("/login", wrap(api.login))
		root.GET("/profile", api.requireAuth(), wrap(api.profile))
	}

	users := root.Group("/users")
	{
		users.GET("", api.requireAuth(), api.requireRole(RoleAdmin), wrap(api.getUsers))
		users.GET("/:userID", api.requireAuth(), api.requireRole(RoleAdmin), wrap(api.getUser))
		users.PATCH("/:userID", api.requireAuth(), wrap(api.updateUser))
		users.DELETE("/:userID", api.requireAuth(), api.requireRole(RoleAdmin), wrap(api.deleteUser))
	}

	todo := root.Group("/todo")
	{
		todo.POST("/create", api.requireAuth(), api.requireRole(RoleUser), wrap(api.createTodo))
		todo.GET("/getAll", wrap(api.getTodos))
		todo.GET("/all/search", wrap(api.searchTodos))
		todo.GET("/:todoID", api.requireAuth(), wrap(api.getTodo))
		todo.PATCH("/update/:todoID", api.requireAuth(), wrap(api.updateTodo))
		todo.DELETE("/delete/:todoID", api.requireAuth(), wrap(api.deleteTodo))
	}

	api.httpSrv.Handler = router
}

func (api *TodoAPI) validationError(err error) error {
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, verr := range verrs {
			switch verr.Field() {
			case "Username":
				return apperrors.Validation("Invalid username")
			case "Email":
				return apperrors.Validation("Invalid email")
			case "Password":
				return apperrors.Validation("Invalid password")
			case "Role":
				return apperrors.Validation("Invalid user role")
			case "Title":
				return apperrors.Validation("Title is required")
			case "Description":
				return apperrors.Validation("Description is required")
			}
		}
	}
	return apperrors.Validation("Validation failed")
}

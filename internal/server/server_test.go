package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"todoapp/internal/auth"
	apperrors "todoapp/internal/domain/errors"
	"todoapp/internal/domain/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetUsers(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserRepository) UpdateUser(ctx context.Context, id string, user *models.User) error {
	args := m.Called(ctx, id, user)
	return args.Error(0)
}

func (m *MockUserRepository) DeleteUser(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockTodoRepository struct {
	mock.Mock
}

func (m *MockTodoRepository) CreateTodo(ctx context.Context, todo *models.Todo) error {
	args := m.Called(ctx, todo)
	return args.Error(0)
}

func (m *MockTodoRepository) GetTodoByID(ctx context.Context, id string) (*models.Todo, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Todo), args.Error(1)
}

func (m *MockTodoRepository) GetTodoByTitle(ctx context.Context, title string) (*models.Todo, error) {
	args := m.Called(ctx, title)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Todo), args.Error(1)
}

func (m *MockTodoRepository) GetTodos(ctx context.Context) ([]models.Todo, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Todo), args.Error(1)
}

func (m *MockTodoRepository) UpdateTodo(ctx context.Context, id string, todo *models.Todo) error {
	args := m.Called(ctx, id, todo)
	return args.Error(0)
}

func (m *MockTodoRepository) DeleteTodo(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTodoRepository) SearchTodos(ctx context.Context, query string) ([]models.Todo, error) {
	args := m.Called(ctx, query)
	return args.Get(0).([]models.Todo), args.Error(1)
}

const testSecret = "test-secret"

func newTestAPI(users UserRepository, todos TodoRepository) *TodoAPI {
	gin.SetMode(gin.TestMode)
	return NewTodoAPI(users, todos, &Config{JWTSecret: testSecret})
}

func testToken(userID, role string) string {
	token, _ := auth.NewTokenService(testSecret).Issue(userID, role)
	return token
}

func doJSON(api *TodoAPI, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	w := httptest.NewRecorder()
	api.httpSrv.Handler.ServeHTTP(w, req)
	return w
}

func TestRegister(t *testing.T) {
	tests := []struct {
		name       string
		request    models.RegisterRequest
		statusCode int
		contains   string
		mockSetup  func(*MockUserRepository)
	}{
		{
			name: "successful registration",
			request: models.RegisterRequest{
				Username: "alice",
				Email:    "alice@example.com",
				Password: "password123",
			},
			statusCode: 201,
			contains:   "User registered successfully",
			mockSetup: func(mockUsers *MockUserRepository) {
				mockUsers.On("GetUserByEmail", mock.Anything, "alice@example.com").Return(nil, apperrors.ErrUserNotFound)
				mockUsers.On("CreateUser", mock.Anything, mock.AnythingOfType("*models.User")).Return(nil)
			},
		},
		{
			name: "email already registered",
			request: models.RegisterRequest{
				Username: "alice",
				Email:    "taken@example.com",
				Password: "password123",
			},
			statusCode: 409,
			contains:   "Email is already registered",
			mockSetup: func(mockUsers *MockUserRepository) {
				existing := &models.User{ID: uuid.New().String(), Email: "taken@example.com"}
				mockUsers.On("GetUserByEmail", mock.Anything, "taken@example.com").Return(existing, nil)
			},
		},
		{
			name: "missing required fields",
			request: models.RegisterRequest{
				Username: "alice",
			},
			statusCode: 400,
			contains:   "Validation Error",
			mockSetup:  func(mockUsers *MockUserRepository) {},
		},
		{
			name: "store-level duplicate wins the race",
			request: models.RegisterRequest{
				Username: "alice",
				Email:    "raced@example.com",
				Password: "password123",
			},
			statusCode: 400,
			contains:   "Duplicate field value",
			mockSetup: func(mockUsers *MockUserRepository) {
				mockUsers.On("GetUserByEmail", mock.Anything, "raced@example.com").Return(nil, apperrors.ErrUserNotFound)
				mockUsers.On("CreateUser", mock.Anything, mock.AnythingOfType("*models.User")).Return(apperrors.ErrDuplicateField)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUsers := &MockUserRepository{}
			mockTodos := &MockTodoRepository{}
			tt.mockSetup(mockUsers)

			api := newTestAPI(mockUsers, mockTodos)
			w := doJSON(api, "POST", "/api/register", "", tt.request)

			assert.Equal(t, tt.statusCode, w.Code)
			assert.Contains(t, w.Body.String(), tt.contains)
			// The stored hash must never appear in a response body.
			assert.NotContains(t, w.Body.String(), "$2a$")

			mockUsers.AssertExpectations(t)
		})
	}
}

func TestLogin(t *testing.T) {
	hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	storedUser := &models.User{
		ID:       uuid.New().String(),
		Username: "alice",
		Email:    "alice@example.com",
		Password: string(hashed),
		Role:     "user",
	}

	tests := []struct {
		name       string
		request    models.LoginRequest
		statusCode int
		contains   string
		mockSetup  func(*MockUserRepository)
	}{
		{
			name: "successful login returns a token",
			request: models.LoginRequest{
				Email:    "alice@example.com",
				Password: "password123",
			},
			statusCode: 200,
			contains:   "token",
			mockSetup: func(mockUsers *MockUserRepository) {
				mockUsers.On("GetUserByEmail", mock.Anything, "alice@example.com").Return(storedUser, nil)
			},
		},
		{
			name: "unknown email",
			request: models.LoginRequest{
				Email:    "nobody@example.com",
				Password: "password123",
			},
			statusCode: 404,
			contains:   "User not found",
			mockSetup: func(mockUsers *MockUserRepository) {
				mockUsers.On("GetUserByEmail", mock.Anything, "nobody@example.com").Return(nil, apperrors.ErrUserNotFound)
			},
		},
		{
			name: "wrong password",
			request: models.LoginRequest{
				Email:    "alice@example.com",
				Password: "wrongpassword",
			},
			statusCode: 401,
			contains:   "Password not matched",
			mockSetup: func(mockUsers *MockUserRepository) {
				mockUsers.On("GetUserByEmail", mock.Anything, "alice@example.com").Return(storedUser, nil)
			},
		},
		{
			name: "missing password",
			request: models.LoginRequest{
				Email: "alice@example.com",
			},
			statusCode: 400,
			contains:   "Validation Error",
			mockSetup:  func(mockUsers *MockUserRepository) {},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUsers := &MockUserRepository{}
			mockTodos := &MockTodoRepository{}
			tt.mockSetup(mockUsers)

			api := newTestAPI(mockUsers, mockTodos)
			w := doJSON(api, "POST", "/api/login", "", tt.request)

			assert.Equal(t, tt.statusCode, w.Code)
			assert.Contains(t, w.Body.String(), tt.contains)

			mockUsers.AssertExpectations(t)
		})
	}
}

func TestProfile(t *testing.T) {
	userID := uuid.New().String()
	storedUser := &models.User{
		ID:       userID,
		Username: "alice",
		Email:    "alice@example.com",
		Role:     "user",
	}

	mockUsers := &MockUserRepository{}
	mockTodos := &MockTodoRepository{}
	mockUsers.On("GetUserByID", mock.Anything, userID).Return(storedUser, nil)

	api := newTestAPI(mockUsers, mockTodos)

	// The profile route reads the identity from the token, not the URL.
	w := doJSON(api, "GET", "/api/profile", testToken(userID, "user"), nil)
	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), "alice@example.com")

	mockUsers.AssertExpectations(t)
}

func TestCreateTodo(t *testing.T) {
	tests := []struct {
		name       string
		request    models.CreateTodoRequest
		token      string
		statusCode int
		contains   string
		mockSetup  func(*MockTodoRepository)
	}{
		{
			name: "successful creation",
			request: models.CreateTodoRequest{
				Title:       "Buy milk",
				Description: "2%",
			},
			token:      testToken(uuid.New().String(), "user"),
			statusCode: 201,
			contains:   "Todo created successfully",
			mockSetup: func(mockTodos *MockTodoRepository) {
				mockTodos.On("GetTodoByTitle", mock.Anything, "Buy milk").Return(nil, apperrors.ErrTodoNotFound)
				mockTodos.On("CreateTodo", mock.Anything, mock.AnythingOfType("*models.Todo")).Return(nil)
			},
		},
		{
			name: "empty title fails validation",
			request: models.CreateTodoRequest{
				Description: "no title",
			},
			token:      testToken(uuid.New().String(), "user"),
			statusCode: 400,
			contains:   "Validation Error",
			mockSetup:  func(mockTodos *MockTodoRepository) {},
		},
		{
			name: "duplicate title",
			request: models.CreateTodoRequest{
				Title: "Buy milk",
			},
			token:      testToken(uuid.New().String(), "user"),
			statusCode: 409,
			contains:   "Title already exists",
			mockSetup: func(mockTodos *MockTodoRepository) {
				existing := &models.Todo{ID: uuid.New().String(), Title: "Buy milk"}
				mockTodos.On("GetTodoByTitle", mock.Anything, "Buy milk").Return(existing, nil)
			},
		},
		{
			name: "store-level duplicate wins the race",
			request: models.CreateTodoRequest{
				Title: "Buy milk",
			},
			token:      testToken(uuid.New().String(), "user"),
			statusCode: 400,
			contains:   "Duplicate field value",
			mockSetup: func(mockTodos *MockTodoRepository) {
				mockTodos.On("GetTodoByTitle", mock.Anything, "Buy milk").Return(nil, apperrors.ErrTodoNotFound)
				mockTodos.On("CreateTodo", mock.Anything, mock.AnythingOfType("*models.Todo")).Return(apperrors.ErrDuplicateField)
			},
		},
		{
			name: "no token",
			request: models.CreateTodoRequest{
				Title: "Buy milk",
			},
			token:      "",
			statusCode: 401,
			contains:   "Unauthorized",
			mockSetup:  func(mockTodos *MockTodoRepository) {},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUsers := &MockUserRepository{}
			mockTodos := &MockTodoRepository{}
			tt.mockSetup(mockTodos)

			api := newTestAPI(mockUsers, mockTodos)
			w := doJSON(api, "POST", "/api/todo/create", tt.token, tt.request)

			assert.Equal(t, tt.statusCode, w.Code)
			assert.Contains(t, w.Body.String(), tt.contains)

			mockTodos.AssertExpectations(t)
		})
	}
}

func TestGetTodo(t *testing.T) {
	todoID := uuid.New().String()
	stored := &models.Todo{ID: todoID, Title: "Buy milk", Description: "2%"}

	tests := []struct {
		name       string
		path       string
		statusCode int
		contains   string
		mockSetup  func(*MockTodoRepository)
	}{
		{
			name:       "found",
			path:       "/api/todo/" + todoID,
			statusCode: 200,
			contains:   "Buy milk",
			mockSetup: func(mockTodos *MockTodoRepository) {
				mockTodos.On("GetTodoByID", mock.Anything, todoID).Return(stored, nil)
			},
		},
		{
			name:       "absent id",
			path:       "/api/todo/" + uuid.New().String(),
			statusCode: 404,
			contains:   "Todo not found",
			mockSetup: func(mockTodos *MockTodoRepository) {
				mockTodos.On("GetTodoByID", mock.Anything, mock.AnythingOfType("string")).Return(nil, apperrors.ErrTodoNotFound)
			},
		},
		{
			name:       "malformed id",
			path:       "/api/todo/not-a-uuid",
			statusCode: 400,
			contains:   "Invalid ID format",
			mockSetup:  func(mockTodos *MockTodoRepository) {},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUsers := &MockUserRepository{}
			mockTodos := &MockTodoRepository{}
			tt.mockSetup(mockTodos)

			api := newTestAPI(mockUsers, mockTodos)
			w := doJSON(api, "GET", tt.path, testToken(uuid.New().String(), "user"), nil)

			assert.Equal(t, tt.statusCode, w.Code)
			assert.Contains(t, w.Body.String(), tt.contains)

			mockTodos.AssertExpectations(t)
		})
	}
}

func TestUpdateTodo(t *testing.T) {
	todoID := uuid.New().String()
	stored := &models.Todo{ID: todoID, Title: "Buy milk", Description: "2%"}

	tests := []struct {
		name       string
		path       string
		request    models.UpdateTodoRequest
		statusCode int
		contains   string
		mockSetup  func(*MockTodoRepository)
	}{
		{
			name: "successful update returns the updated document",
			path: "/api/todo/update/" + todoID,
			request: models.UpdateTodoRequest{
				Title:       "Buy milk",
				Description: "whole",
			},
			statusCode: 200,
			contains:   "whole",
			mockSetup: func(mockTodos *MockTodoRepository) {
				mockTodos.On("GetTodoByID", mock.Anything, todoID).Return(stored, nil)
				mockTodos.On("UpdateTodo", mock.Anything, todoID, mock.AnythingOfType("*models.Todo")).Return(nil)
			},
		},
		{
			name: "partial update is rejected",
			path: "/api/todo/update/" + todoID,
			request: models.UpdateTodoRequest{
				Title: "Buy milk",
			},
			statusCode: 400,
			contains:   "Validation Error",
			mockSetup:  func(mockTodos *MockTodoRepository) {},
		},
		{
			name: "absent id",
			path: "/api/todo/update/" + uuid.New().String(),
			request: models.UpdateTodoRequest{
				Title:       "Buy milk",
				Description: "whole",
			},
			statusCode: 404,
			contains:   "Todo not found",
			mockSetup: func(mockTodos *MockTodoRepository) {
				mockTodos.On("GetTodoByID", mock.Anything, mock.AnythingOfType("string")).Return(nil, apperrors.ErrTodoNotFound)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUsers := &MockUserRepository{}
			mockTodos := &MockTodoRepository{}
			tt.mockSetup(mockTodos)

			api := newTestAPI(mockUsers, mockTodos)
			w := doJSON(api, "PATCH", tt.path, testToken(uuid.New().String(), "user"), tt.request)

			assert.Equal(t, tt.statusCode, w.Code)
			assert.Contains(t, w.Body.String(), tt.contains)

			mockTodos.AssertExpectations(t)
		})
	}
}

func TestDeleteTodo(t *testing.T) {
	todoID := uuid.New().String()

	tests := []struct {
		name       string
		path       string
		statusCode int
		contains   string
		mockSetup  func(*MockTodoRepository)
	}{
		{
			name:       "successful deletion",
			path:       "/api/todo/delete/" + todoID,
			statusCode: 200,
			contains:   "Todo deleted successfully",
			mockSetup: func(mockTodos *MockTodoRepository) {
				mockTodos.On("DeleteTodo", mock.Anything, todoID).Return(nil)
			},
		},
		{
			name:       "absent id is not found, not a crash",
			path:       "/api/todo/delete/" + uuid.New().String(),
			statusCode: 404,
			contains:   "Todo not found",
			mockSetup: func(mockTodos *MockTodoRepository) {
				mockTodos.On("DeleteTodo", mock.Anything, mock.AnythingOfType("string")).Return(apperrors.ErrTodoNotFound)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUsers := &MockUserRepository{}
			mockTodos := &MockTodoRepository{}
			tt.mockSetup(mockTodos)

			api := newTestAPI(mockUsers, mockTodos)
			w := doJSON(api, "DELETE", tt.path, testToken(uuid.New().String(), "user"), nil)

			assert.Equal(t, tt.statusCode, w.Code)
			assert.Contains(t, w.Body.String(), tt.contains)

			mockTodos.AssertExpectations(t)
		})
	}
}

func TestSearchTodos(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		statusCode int
		contains   string
		mockSetup  func(*MockTodoRepository)
	}{
		{
			name:       "matches found",
			path:       "/api/todo/all/search?query=mile",
			statusCode: 200,
			contains:   "Buy milk",
			mockSetup: func(mockTodos *MockTodoRepository) {
				results := []models.Todo{{ID: uuid.New().String(), Title: "Buy milk"}}
				mockTodos.On("SearchTodos", mock.Anything, "mile").Return(results, nil)
			},
		},
		{
			name:       "no matches",
			path:       "/api/todo/all/search?query=zzz",
			statusCode: 404,
			contains:   "No todo found",
			mockSetup: func(mockTodos *MockTodoRepository) {
				mockTodos.On("SearchTodos", mock.Anything, "zzz").Return([]models.Todo{}, nil)
			},
		},
		{
			name:       "missing query",
			path:       "/api/todo/all/search",
			statusCode: 400,
			contains:   "Query must be required",
			mockSetup:  func(mockTodos *MockTodoRepository) {},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUsers := &MockUserRepository{}
			mockTodos := &MockTodoRepository{}
			tt.mockSetup(mockTodos)

			api := newTestAPI(mockUsers, mockTodos)
			w := doJSON(api, "GET", tt.path, "", nil)

			assert.Equal(t, tt.statusCode, w.Code)
			assert.Contains(t, w.Body.String(), tt.contains)

			mockTodos.AssertExpectations(t)
		})
	}
}

func TestUpdateUserRehashesPassword(t *testing.T) {
	userID := uuid.New().String()
	stored := &models.User{
		ID:       userID,
		Username: "alice",
		Email:    "alice@example.com",
		Password: "old-hash",
		Role:     "user",
	}

	mockUsers := &MockUserRepository{}
	mockTodos := &MockTodoRepository{}
	mockUsers.On("GetUserByID", mock.Anything, userID).Return(stored, nil)
	mockUsers.On("UpdateUser", mock.Anything, userID, mock.MatchedBy(func(u *models.User) bool {
		// The supplied password is stored as a fresh hash, never
		// verbatim and never the old digest.
		return u.Username == "alice2" &&
			u.Password != "old-hash" &&
			u.Password != "newpassword" &&
			auth.CheckPassword("newpassword", u.Password)
	})).Return(nil)

	api := newTestAPI(mockUsers, mockTodos)
	w := doJSON(api, "PATCH", "/api/users/"+userID, testToken(userID, "user"), models.UpdateUserRequest{
		Username: "alice2",
		Password: "newpassword",
	})

	assert.Equal(t, 200, w.Code)
	mockUsers.AssertExpectations(t)
}

func TestAdminUserRoutes(t *testing.T) {
	userID := uuid.New().String()

	tests := []struct {
		name       string
		method     string
		path       string
		token      string
		statusCode int
		mockSetup  func(*MockUserRepository)
	}{
		{
			name:       "user role cannot list users",
			method:     "GET",
			path:       "/api/users",
			token:      testToken(userID, "user"),
			statusCode: 403,
			mockSetup:  func(mockUsers *MockUserRepository) {},
		},
		{
			name:       "admin lists users",
			method:     "GET",
			path:       "/api/users",
			token:      testToken(userID, "admin"),
			statusCode: 200,
			mockSetup: func(mockUsers *MockUserRepository) {
				mockUsers.On("GetUsers", mock.Anything).Return([]models.User{}, nil)
			},
		},
		{
			name:       "admin deletes a user",
			method:     "DELETE",
			path:       "/api/users/" + userID,
			token:      testToken(uuid.New().String(), "admin"),
			statusCode: 200,
			mockSetup: func(mockUsers *MockUserRepository) {
				mockUsers.On("DeleteUser", mock.Anything, userID).Return(nil)
			},
		},
		{
			name:       "deleting an absent user is not found",
			method:     "DELETE",
			path:       "/api/users/" + uuid.New().String(),
			token:      testToken(uuid.New().String(), "admin"),
			statusCode: 404,
			mockSetup: func(mockUsers *MockUserRepository) {
				mockUsers.On("DeleteUser", mock.Anything, mock.AnythingOfType("string")).Return(apperrors.ErrUserNotFound)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUsers := &MockUserRepository{}
			mockTodos := &MockTodoRepository{}
			tt.mockSetup(mockUsers)

			api := newTestAPI(mockUsers, mockTodos)
			w := doJSON(api, tt.method, tt.path, tt.token, nil)

			assert.Equal(t, tt.statusCode, w.Code)
			mockUsers.AssertExpectations(t)
		})
	}
}

package storage

import (
	"context"
	"sort"
	"strings"
	"sync"

	apperrors "todoapp/internal/domain/errors"
	"todoapp/internal/domain/models"

	"github.com/google/uuid"
)

// Storage is a map-backed store used as a fallback when the database is
// unreachable and as the storage double in tests. Requests are handled
// in parallel, so every method takes the mutex.
type Storage struct {
	mu    sync.RWMutex
	users map[string]models.User
	todos map[string]models.Todo
}

func NewStorage() *Storage {
	return &Storage{
		users: make(map[string]models.User),
		todos: make(map[string]models.Todo),
	}
}

func (s *Storage) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == user.Email {
			return apperrors.ErrDuplicateField
		}
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	s.users[user.ID] = *user
	return nil
}

func (s *Storage) GetUserByID(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, exists := s.users[id]
	if !exists {
		return nil, apperrors.ErrUserNotFound
	}
	return &user, nil
}

func (s *Storage) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.Email == email {
			return &user, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (s *Storage) GetUsers(_ context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]models.User, 0, len(s.users))
	for _, user := range s.users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})
	return users, nil
}

func (s *Storage) UpdateUser(_ context.Context, id string, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[id]; !exists {
		return apperrors.ErrUserNotFound
	}
	user.ID = id
	s.users[id] = *user
	return nil
}

func (s *Storage) DeleteUser(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[id]; !exists {
		return apperrors.ErrUserNotFound
	}
	delete(s.users, id)
	return nil
}

func (s *Storage) CreateTodo(_ context.Context, todo *models.Todo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.todos {
		if existing.Title == todo.Title {
			return apperrors.ErrDuplicateField
		}
	}
	if todo.ID == "" {
		todo.ID = uuid.New().String()
	}
	s.todos[todo.ID] = *todo
	return nil
}

func (s *Storage) GetTodoByID(_ context.Context, id string) (*models.Todo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	todo, exists := s.todos[id]
	if !exists {
		return nil, apperrors.ErrTodoNotFound
	}
	return &todo, nil
}

func (s *Storage) GetTodoByTitle(_ context.Context, title string) (*models.Todo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, todo := range s.todos {
		if todo.Title == title {
			return &todo, nil
		}
	}
	return nil, apperrors.ErrTodoNotFound
}

// GetTodos returns every todo, newest first.
func (s *Storage) GetTodos(_ context.Context) ([]models.Todo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	todos := make([]models.Todo, 0, len(s.todos))
	for _, todo := range s.todos {
		todos = append(todos, todo)
	}
	sort.Slice(todos, func(i, j int) bool {
		return todos[i].CreatedAt.After(todos[j].CreatedAt)
	})
	return todos, nil
}

func (s *Storage) UpdateTodo(_ context.Context, id string, todo *models.Todo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.todos[id]; !exists {
		return apperrors.ErrTodoNotFound
	}
	for existingID, existing := range s.todos {
		if existingID != id && existing.Title == todo.Title {
			return apperrors.ErrDuplicateField
		}
	}
	todo.ID = id
	s.todos[id] = *todo
	return nil
}

func (s *Storage) DeleteTodo(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.todos[id]; !exists {
		return apperrors.ErrTodoNotFound
	}
	delete(s.todos, id)
	return nil
}

// SearchTodos matches a case-insensitive substring against title or
// description, newest first.
func (s *Storage) SearchTodos(_ context.Context, query string) ([]models.Todo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(query)
	var todos []models.Todo
	for _, todo := range s.todos {
		if strings.Contains(strings.ToLower(todo.Title), needle) ||
			strings.Contains(strings.ToLower(todo.Description), needle) {
			todos = append(todos, todo)
		}
	}
	sort.Slice(todos, func(i, j int) bool {
		return todos[i].CreatedAt.After(todos[j].CreatedAt)
	})
	return todos, nil
}

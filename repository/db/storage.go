package db

import (
	"context"
	"errors"
	"log"
	"time"

	apperrors "todoapp/internal/domain/errors"
	"todoapp/internal/domain/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const queryTimeout = 15 * time.Second

type Storage struct {
	conn               *pgx.Conn
	prepCreateUser     string
	prepGetUserByID    string
	prepGetUserByEmail string
	prepGetUsers       string
	prepUpdateUser     string
	prepDeleteUser     string
	prepCreateTodo     string
	prepGetTodoByID    string
	prepGetTodoByTitle string
	prepGetTodos       string
	prepUpdateTodo     string
	prepDeleteTodo     string
	prepSearchTodos    string
}

func NewStorage(connStr string) (*Storage, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()
	conn, err := pgx.Connect(ctx, connStr)
	if err != nil {
		log.Println("[ERROR] Failed to connect to the database:", err)
		return nil, err
	}

	s := &Storage{
		conn:               conn,
		prepCreateUser:     `INSERT INTO users (id, username, email, password, role, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		prepGetUserByID:    `SELECT id, username, email, password, role, created_at, updated_at FROM users WHERE id = $1`,
		prepGetUserByEmail: `SELECT id, username, email, password, role, created_at, updated_at FROM users WHERE email = $1`,
		prepGetUsers:       `SELECT id, username, email, password, role, created_at, updated_at FROM users ORDER BY created_at DESC`,
		prepUpdateUser:     `UPDATE users SET username = $1, password = $2, updated_at = $3 WHERE id = $4`,
		prepDeleteUser:     `DELETE FROM users WHERE id = $1`,
		prepCreateTodo:     `INSERT INTO todos (id, title, description, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
		prepGetTodoByID:    `SELECT id, title, description, created_at, updated_at FROM todos WHERE id = $1`,
		prepGetTodoByTitle: `SELECT id, title, description, created_at, updated_at FROM todos WHERE title = $1`,
		prepGetTodos:       `SELECT id, title, description, created_at, updated_at FROM todos ORDER BY created_at DESC`,
		prepUpdateTodo:     `UPDATE todos SET title = $1, description = $2, updated_at = $3 WHERE id = $4`,
		prepDeleteTodo:     `DELETE FROM todos WHERE id = $1`,
		prepSearchTodos:    `SELECT id, title, description, created_at, updated_at FROM todos WHERE title ILIKE '%' || $1 || '%' OR description ILIKE '%' || $1 || '%' ORDER BY created_at DESC`,
	}
	log.Println("[SUCCESS] Database connection established")
	return s, nil
}

// isUniqueViolation reports whether err is the unique-index class of
// failure, so the caller can surface it as a duplicate rather than an
// internal error.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (s *Storage) CreateUser(ctx context.Context, user *models.User) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	stmt, err := s.conn.Prepare(ctx, "create_user", s.prepCreateUser)
	if err != nil {
		log.Println("[ERROR] Failed to prepare the create user query:", err)
		return err
	}
	_, err = s.conn.Exec(ctx, stmt.Name, user.ID, user.Username, user.Email, user.Password, user.Role, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		log.Println("[ERROR] Failed to create user:", err)
		if isUniqueViolation(err) {
			return apperrors.ErrDuplicateField
		}
		return err
	}
	log.Println("[SUCCESS] User created:", user.ID)
	return nil
}

func (s *Storage) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	stmt, err := s.conn.Prepare(ctx, "get_user_by_id", s.prepGetUserByID)
	if err != nil {
		log.Println("[ERROR] Failed to prepare the get user by ID query:", err)
		return nil, err
	}
	row := s.conn.QueryRow(ctx, stmt.Name, id)
	user := &models.User{}
	if err := row.Scan(&user.ID, &user.Username, &user.Email, &user.Password, &user.Role, &user.CreatedAt, &user.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrUserNotFound
		}
		log.Println("[ERROR] Failed to fetch user:", err)
		return nil, err
	}
	return user, nil
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	stmt, err := s.conn.Prepare(ctx, "get_user_by_email", s.prepGetUserByEmail)
	if err != nil {
		log.Println("[ERROR] Failed to prepare the get user by email query:", err)
		return nil, err
	}
	row := s.conn.QueryRow(ctx, stmt.Name, email)
	user := &models.User{}
	if err := row.Scan(&user.ID, &user.Username, &user.Email, &user.Password, &user.Role, &user.CreatedAt, &user.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrUserNotFound
		}
		log.Println("[ERROR] Failed to fetch user:", err)
		return nil, err
	}
	return user, nil
}

func (s *Storage) GetUsers(ctx context.Context) ([]models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	stmt, err := s.conn.Prepare(ctx, "get_users", s.prepGetUsers)
	if err != nil {
		log.Println("[ERROR] Failed to prepare the get users query:", err)
		return nil, err
	}
	rows, err := s.conn.Query(ctx, stmt.Name)
	if err != nil {
		log.Println("[ERROR] Failed to fetch users:", err)
		return nil, err
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		user := models.User{}
		if err := rows.Scan(&user.ID, &user.Username, &user.Email, &user.Password, &user.Role, &user.CreatedAt, &user.UpdatedAt); err != nil {
			log.Println("[ERROR] Failed to read users:", err)
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (s *Storage) UpdateUser(ctx context.Context, id string, user *models.User) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	stmt, err := s.conn.Prepare(ctx, "update_user", s.prepUpdateUser)
	if err != nil {
		log.Println("[ERROR] Failed to prepare the update user query:", err)
		return err
	}
	ct, err := s.conn.Exec(ctx, stmt.Name, user.Username, user.Password, user.UpdatedAt, id)
	if err != nil {
		log.Println("[ERROR] Failed to update user:", err)
		return err
	}
	if ct.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	log.Println("[SUCCESS] User updated:", id)
	return nil
}

func (s *Storage) DeleteUser(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	stmt, err := s.conn.Prepare(ctx, "delete_user", s.prepDeleteUser)
	if err != nil {
		log.Println("[ERROR] Failed to prepare the delete user query:", err)
		return err
	}
	ct, err := s.conn.Exec(ctx, stmt.Name, id)
	if err != nil {
		log.Println("[ERROR] Failed to delete user:", err)
		return err
	}
	if ct.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	log.Println("[SUCCESS] User deleted:", id)
	return nil
}

func (s *Storage) CreateTodo(ctx context.Context, todo *models.Todo) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	stmt, err := s.conn.Prepare(ctx, "create_todo", s.prepCreateTodo)
	if err != nil {
		log.Println("[ERROR] Failed to prepare the create todo query:", err)
		return err
	}
	_, err = s.conn.Exec(ctx, stmt.Name, todo.ID, todo.Title, todo.Description, todo.CreatedAt, todo.UpdatedAt)
	if err != nil {
		log.Println("[ERROR] Failed to create todo:", err)
		if isUniqueViolation(err) {
			return apperrors.ErrDuplicateField
		}
		return err
	}
	log.Println("[SUCCESS] Todo created:", todo.ID)
	return nil
}

func (s *Storage) GetTodoByID(ctx context.Context, id string) (*models.Todo, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	stmt, err := s.conn.Prepare(ctx, "get_todo_by_id", s.prepGetTodoByID)
	if err != nil {
		log.Println("[ERROR] Failed to prepare the get todo by ID query:", err)
		return nil, err
	}
	row := s.conn.QueryRow(ctx, stmt.Name, id)
	todo := &models.Todo{}
	if err := row.Scan(&todo.ID, &todo.Title, &todo.Description, &todo.CreatedAt, &todo.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrTodoNotFound
		}
		log.Println("[ERROR] Failed to fetch todo:", err)
		return nil, err
	}
	return todo, nil
}

func (s *Storage) GetTodoByTitle(ctx context.Context, title string) (*models.Todo, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	stmt, err := s.conn.Prepare(ctx, "get_todo_by_title", s.prepGetTodoByTitle)
	if err != nil {
		log.Println("[ERROR] Failed to prepare the get todo by title query:", err)
		return nil, err
	}
	row := s.conn.QueryRow(ctx, stmt.Name, title)
	todo := &models.Todo{}
	if err := row.Scan(&todo.ID, &todo.Title, &todo.Description, &todo.CreatedAt, &todo.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrTodoNotFound
		}
		log.Println("[ERROR] Failed to fetch todo:", err)
		return nil, err
	}
	return todo, nil
}

func (s *Storage) GetTodos(ctx context.Context) ([]models.Todo, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	stmt, err := s.conn.Prepare(ctx, "get_todos", s.prepGetTodos)
	if err != nil {
		log.Println("[ERROR] Failed to prepare the get todos query:", err)
		return nil, err
	}
	rows, err := s.conn.Query(ctx, stmt.Name)
	if err != nil {
		log.Println("[ERROR] Failed to fetch todos:", err)
		return nil, err
	}
	defer rows.Close()

	return scanTodos(rows)
}

func (s *Storage) UpdateTodo(ctx context.Context, id string, todo *models.Todo) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	stmt, err := s.conn.Prepare(ctx, "update_todo", s.prepUpdateTodo)
	if err != nil {
		log.Println("[ERROR] Failed to prepare the update todo query:", err)
		return err
	}
	ct, err := s.conn.Exec(ctx, stmt.Name, todo.Title, todo.Description, todo.UpdatedAt, id)
	if err != nil {
		log.Println("[ERROR] Failed to update todo:", err)
		if isUniqueViolation(err) {
			return apperrors.ErrDuplicateField
		}
		return err
	}
	if ct.RowsAffected() == 0 {
		return apperrors.ErrTodoNotFound
	}
	log.Println("[SUCCESS] Todo updated:", id)
	return nil
}

func (s *Storage) DeleteTodo(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	stmt, err := s.conn.Prepare(ctx, "delete_todo", s.prepDeleteTodo)
	if err != nil {
		log.Println("[ERROR] Failed to prepare the delete todo query:", err)
		return err
	}
	ct, err := s.conn.Exec(ctx, stmt.Name, id)
	if err != nil {
		log.Println("[ERROR] Failed to delete todo:", err)
		return err
	}
	if ct.RowsAffected() == 0 {
		return apperrors.ErrTodoNotFound
	}
	log.Println("[SUCCESS] Todo deleted:", id)
	return nil
}

func (s *Storage) SearchTodos(ctx context.Context, query string) ([]models.Todo, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	stmt, err := s.conn.Prepare(ctx, "search_todos", s.prepSearchTodos)
	if err != nil {
		log.Println("[ERROR] Failed to prepare the search todos query:", err)
		return nil, err
	}
	rows, err := s.conn.Query(ctx, stmt.Name, query)
	if err != nil {
		log.Println("[ERROR] Failed to search todos:", err)
		return nil, err
	}
	defer rows.Close()

	return scanTodos(rows)
}

func scanTodos(rows pgx.Rows) ([]models.Todo, error) {
	todos := []models.Todo{}
	for rows.Next() {
		todo := models.Todo{}
		if err := rows.Scan(&todo.ID, &todo.Title, &todo.Description, &todo.CreatedAt, &todo.UpdatedAt); err != nil {
			log.Println("[ERROR] Failed to read todos:", err)
			return nil, err
		}
		todos = append(todos, todo)
	}
	return todos, rows.Err()
}

package core

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

// User represents an authenticated system user. PasswordHash is a bcrypt
// hash and never leaves the core layer.
type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"` // "admin" | "cashier"
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserService provides user lookup and credential checking.
type UserService interface {
	// Authenticate verifies a username and password against the stored hash.
	// Wrong username and wrong password both fail with the same error.
	Authenticate(ctx context.Context, username, password string) (*User, error)

	// CreateUser stores a new user with the password hashed.
	CreateUser(ctx context.Context, username, password, role string) (*User, error)

	GetByID(ctx context.Context, userID int) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
}

type userService struct {
	pool *pgxpool.Pool
}

// NewUserService constructs a UserService backed by PostgreSQL.
func NewUserService(pool *pgxpool.Pool) UserService {
	return &userService{pool: pool}
}

// ErrBadCredentials is returned for any failed login, deliberately without
// distinguishing unknown usernames from wrong passwords.
var ErrBadCredentials = errors.New("invalid username or password")

func (s *userService) Authenticate(ctx context.Context, username, password string) (*User, error) {
	u, err := s.GetByUsername(ctx, username)
	if err != nil {
		var nf *NotFoundError
		if errors.As(err, &nf) {
			return nil, ErrBadCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrBadCredentials
	}
	return u, nil
}

func (s *userService) CreateUser(ctx context.Context, username, password, role string) (*User, error) {
	if username == "" {
		return nil, &ValidationError{Msg: "username is required"}
	}
	if len(password) < 8 {
		return nil, &ValidationError{Msg: "password must be at least 8 characters"}
	}
	if role != "admin" && role != "cashier" {
		return nil, &ValidationError{Msg: fmt.Sprintf("unknown role %q", role)}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	var id int
	if err := s.pool.QueryRow(ctx, `
		INSERT INTO users (username, password_hash, role)
		VALUES ($1, $2, $3)
		RETURNING id`,
		username, string(hash), role,
	).Scan(&id); err != nil {
		return nil, fmt.Errorf("insert user %q: %w", username, err)
	}

	return s.GetByID(ctx, id)
}

func (s *userService) GetByUsername(ctx context.Context, username string) (*User, error) {
	u := &User{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, username, password_hash, role, is_active, created_at
		FROM users
		WHERE username = $1 AND is_active = true
		LIMIT 1`,
		username,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Kind: "user", Ref: username}
		}
		return nil, fmt.Errorf("get user %q: %w", username, err)
	}
	return u, nil
}

func (s *userService) GetByID(ctx context.Context, userID int) (*User, error) {
	u := &User{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, username, password_hash, role, is_active, created_at
		FROM users
		WHERE id = $1`,
		userID,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Kind: "user", Ref: strconv.Itoa(userID)}
		}
		return nil, fmt.Errorf("get user id=%d: %w", userID, err)
	}
	return u, nil
}

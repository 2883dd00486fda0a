package db

import (
	"context"

	"snapshot-server/src/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

func CreateUser(ctx context.Context, pool *pgxpool.Pool, req models.RegisterRequest, passwordHash string) (*models.RegisterResponse, error) {
	query := `
		INSERT INTO users (email, username, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, email, username
	`

	var resp models.RegisterResponse
	err := pool.QueryRow(ctx, query, req.Email, req.Username, passwordHash).Scan(
		&resp.ID, &resp.Email, &resp.Username)
	if err != nil {
		return nil, err
	}

	return &resp, nil
}

func GetUserByUsername(ctx context.Context, pool *pgxpool.Pool, username string) (models.User, error) {
	query := `
		SELECT id, email, username, password_hash, created_at
		FROM users
		WHERE username = $1
	`

	var user models.User
	err := pool.QueryRow(ctx, query, username).Scan(&user.ID, &user.Email,
		&user.Username, &user.PasswordHash, &user.CreatedAt)
	return user, err
}

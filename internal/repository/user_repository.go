package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"identity-service/internal/model"
)

// mysqlDupEntry is the server error code for a unique-index violation.
const mysqlDupEntry = 1062

const userColumns = "id, version, email, username, password_hash, COALESCE(avatar,''), is_active, created_at, updated_at"

// UserRepo provides access to the `users` table. Every lookup excludes
// inactive users. When a cache is attached, by-id reads go through it and
// mutations invalidate it.
type UserRepo struct {
	DB    *sql.DB
	Cache *UserCache // may be nil
}

func NewUserRepo(db *sql.DB, cache *UserCache) *UserRepo {
	return &UserRepo{DB: db, Cache: cache}
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner) (*model.User, error) {
	var u model.User
	err := s.Scan(&u.ID, &u.Version, &u.Email, &u.Username, &u.PasswordHash,
		&u.Avatar, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func isDupEntry(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDupEntry
}

// Create inserts a new user from the draft. The id and version are freshly
// generated UUIDs and is_active defaults to true. The draft must already
// carry a hashed password. A conflict on the unique email or username index
// returns ErrUserExists.
func (r *UserRepo) Create(ctx context.Context, draft model.UserDraft) (*model.User, error) {
	email := strings.ToLower(strings.TrimSpace(draft.Email))
	username := strings.TrimSpace(draft.Username)
	id := uuid.NewString()
	version := uuid.NewString()
	now := time.Now().UTC()

	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (id, version, email, username, password_hash, is_active, created_at, updated_at) VALUES (?,?,?,?,?,1,?,?)",
		id, version, email, username, draft.PasswordHash, now, now)
	if err != nil {
		if isDupEntry(err) {
			return nil, ErrUserExists
		}
		return nil, err
	}
	return &model.User{
		ID:           id,
		Version:      version,
		Email:        email,
		Username:     username,
		PasswordHash: draft.PasswordHash,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// FindActiveByCredential fetches an active user whose email OR username
// exactly matches the given credential.
func (r *UserRepo) FindActiveByCredential(ctx context.Context, credential string) (*model.User, error) {
	credential = strings.TrimSpace(credential)
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE is_active=1 AND (email=? OR username=?) LIMIT 1",
		strings.ToLower(credential), credential)
	return scanUser(row)
}

// FindActiveByEmailOrUsername fetches an active user matching either value.
// Register uses it for its conflict check.
func (r *UserRepo) FindActiveByEmailOrUsername(ctx context.Context, email, username string) (*model.User, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE is_active=1 AND (email=? OR username=?) LIMIT 1",
		strings.ToLower(strings.TrimSpace(email)), strings.TrimSpace(username))
	return scanUser(row)
}

// FindActiveByID fetches an active user by id, consulting the cache first.
func (r *UserRepo) FindActiveByID(ctx context.Context, id string) (*model.User, error) {
	if u, ok := r.Cache.Get(ctx, id); ok {
		return u, nil
	}
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE is_active=1 AND id=? LIMIT 1", id)
	u, err := scanUser(row)
	if err != nil {
		return nil, err
	}
	r.Cache.Set(ctx, u)
	return u, nil
}

// UpdateCredentials applies a new email and/or password hash to an active
// user. Empty arguments leave the corresponding column unchanged. Any change
// regenerates the stored version, which eventually invalidates previously
// issued tokens, and evicts the cached record. Returns the updated user.
func (r *UserRepo) UpdateCredentials(ctx context.Context, id, email, passwordHash string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" && passwordHash == "" {
		return r.FindActiveByID(ctx, id)
	}

	sets := []string{"version=?", "updated_at=?"}
	args := []any{uuid.NewString(), time.Now().UTC()}
	if email != "" {
		sets = append(sets, "email=?")
		args = append(args, email)
	}
	if passwordHash != "" {
		sets = append(sets, "password_hash=?")
		args = append(args, passwordHash)
	}
	args = append(args, id)

	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET "+strings.Join(sets, ", ")+" WHERE is_active=1 AND id=?", args...)
	if err != nil {
		if isDupEntry(err) {
			return nil, ErrUserExists
		}
		return nil, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, ErrUserNotFound
	}

	r.Cache.Invalidate(ctx, id)
	return r.FindActiveByID(ctx, id)
}

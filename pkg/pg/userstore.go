package pg

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/authcore/pkg/twofactor"
)

const userColumns = "id, email, password_hash, tfa_secret, tfa_recovery_codes, failed_login_attempts, locked, jwt_version"

// UserStore implements twofactor.UserStore on top of a users table:
//
//	CREATE TABLE users (
//	    id                    uuid PRIMARY KEY,
//	    email                 text UNIQUE NOT NULL,
//	    password_hash         text NOT NULL DEFAULT '',
//	    tfa_secret            text,
//	    tfa_recovery_codes    text[],
//	    failed_login_attempts int NOT NULL DEFAULT 0,
//	    locked                boolean NOT NULL DEFAULT false,
//	    jwt_version           int NOT NULL DEFAULT 0
//	);
type UserStore struct {
	pool *pgxpool.Pool
}

func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{pool: pool}
}

func (s *UserStore) FindByID(ctx context.Context, id uuid.UUID) (*twofactor.User, error) {
	row := s.pool.QueryRow(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = $1", id)
	return scanUser(row)
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*twofactor.User, error) {
	row := s.pool.QueryRow(ctx,
		"SELECT "+userColumns+" FROM users WHERE lower(email) = lower($1)", email)
	return scanUser(row)
}

// Update applies only the fields present in the update and returns the
// updated record in the same round trip.
func (s *UserStore) Update(ctx context.Context, id uuid.UUID, update twofactor.UserUpdate) (*twofactor.User, error) {
	if update.IsZero() {
		return s.FindByID(ctx, id)
	}

	var (
		set  []string
		args []any
	)
	add := func(column string, value any) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if update.PasswordHash != nil {
		add("password_hash", *update.PasswordHash)
	}
	if update.ClearTFASecret {
		set = append(set, "tfa_secret = NULL")
	} else if update.TFASecret != nil {
		add("tfa_secret", *update.TFASecret)
	}
	if update.ClearTFARecoveryCodes {
		set = append(set, "tfa_recovery_codes = NULL")
	} else if update.TFARecoveryCodes != nil {
		add("tfa_recovery_codes", *update.TFARecoveryCodes)
	}
	if update.FailedLoginAttempts != nil {
		add("failed_login_attempts", *update.FailedLoginAttempts)
	}
	if update.Locked != nil {
		add("locked", *update.Locked)
	}
	if update.JWTVersion != nil {
		add("jwt_version", *update.JWTVersion)
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE users SET %s WHERE id = $%d RETURNING %s",
		strings.Join(set, ", "), len(args), userColumns)

	return scanUser(s.pool.QueryRow(ctx, query, args...))
}

func scanUser(row pgx.Row) (*twofactor.User, error) {
	var user twofactor.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.TFASecret,
		&user.TFARecoveryCodes,
		&user.FailedLoginAttempts,
		&user.Locked,
		&user.JWTVersion,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, twofactor.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("pg: failed to scan user: %w", err)
	}
	return &user, nil
}

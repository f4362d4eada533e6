package db

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shopkartapp/shopkart/internal/models"
)

type UserStore struct {
	pool *pgxpool.Pool
}

func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{pool: pool}
}

const userColumns = `id, name, email, password_hash, phone, address,
	date_of_birth, gender, is_registered, is_active,
	registration_date, last_login_date, last_login_ip, created_at, updated_at`

func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	addressJSON, err := marshalAddress(user.Address)
	if err != nil {
		return err
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO users (
			name, email, password_hash, phone, address, date_of_birth, gender,
			is_registered, is_active, registration_date
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at`,
		user.Name, normalizeEmail(user.Email), textOrNull(user.PasswordHash),
		textOrNull(user.Phone), addressJSON, timeOrNull(user.DateOfBirth),
		textOrNull(user.Gender), user.IsRegistered, user.IsActive,
		timeOrNull(user.RegistrationDate),
	)

	var createdAt, updatedAt pgtype.Timestamptz
	if err := row.Scan(&user.ID, &createdAt, &updatedAt); err != nil {
		if isUniqueViolation(err) {
			return ErrEmailTaken
		}
		return err
	}
	user.Email = normalizeEmail(user.Email)
	user.CreatedAt = createdAt.Time
	user.UpdatedAt = updatedAt.Time
	return nil
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, normalizeEmail(email))
	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	return user, err
}

func (s *UserStore) GetByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID)
	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	return user, err
}

// Upsert creates or refreshes a profile keyed by email. Guest checkout uses
// this; it never touches password or registration fields.
func (s *UserStore) Upsert(ctx context.Context, user *models.User) error {
	addressJSON, err := marshalAddress(user.Address)
	if err != nil {
		return err
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO users (name, email, phone, address, is_active)
		VALUES ($1, $2, $3, $4, TRUE)
		ON CONFLICT (email) DO UPDATE SET
			name = EXCLUDED.name,
			phone = COALESCE(NULLIF(EXCLUDED.phone, ''), users.phone),
			address = COALESCE(EXCLUDED.address, users.address),
			updated_at = NOW()
		RETURNING `+userColumns,
		user.Name, normalizeEmail(user.Email), textOrNull(user.Phone), addressJSON,
	)

	stored, err := scanUser(row)
	if err != nil {
		return err
	}
	*user = *stored
	return nil
}

// UserPatch is a partial profile update. Nil fields are left untouched.
type UserPatch struct {
	Name        *string
	Phone       *string
	Address     *models.Address
	DateOfBirth *time.Time
	Gender      *string
}

func (s *UserStore) UpdateProfile(ctx context.Context, userID uuid.UUID, patch UserPatch) (*models.User, error) {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		user.Name = *patch.Name
	}
	if patch.Phone != nil {
		user.Phone = *patch.Phone
	}
	if patch.Address != nil {
		user.Address = patch.Address
	}
	if patch.DateOfBirth != nil {
		user.DateOfBirth = *patch.DateOfBirth
	}
	if patch.Gender != nil {
		user.Gender = *patch.Gender
	}

	addressJSON, err := marshalAddress(user.Address)
	if err != nil {
		return nil, err
	}

	var updatedAt pgtype.Timestamptz
	err = s.pool.QueryRow(ctx, `
		UPDATE users SET
			name = $2, phone = $3, address = $4, date_of_birth = $5, gender = $6,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		userID, user.Name, textOrNull(user.Phone), addressJSON,
		timeOrNull(user.DateOfBirth), textOrNull(user.Gender),
	).Scan(&updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	user.UpdatedAt = updatedAt.Time
	return user, nil
}

func (s *UserStore) RecordLogin(ctx context.Context, userID uuid.UUID, remoteIP string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE users SET last_login_date = NOW(), last_login_ip = $2, updated_at = NOW()
		WHERE id = $1`,
		userID, textOrNull(remoteIP),
	)
	return err
}

func scanUser(row pgx.Row) (*models.User, error) {
	var (
		user                                      models.User
		passwordHash, phone, gender, lastLoginIP  pgtype.Text
		addressJSON                               []byte
		dateOfBirth, registrationDate, lastLogin  pgtype.Timestamptz
		createdAt, updatedAt                      pgtype.Timestamptz
	)

	err := row.Scan(
		&user.ID, &user.Name, &user.Email, &passwordHash, &phone, &addressJSON,
		&dateOfBirth, &gender, &user.IsRegistered, &user.IsActive,
		&registrationDate, &lastLogin, &lastLoginIP, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	user.PasswordHash = passwordHash.String
	user.Phone = phone.String
	user.Gender = gender.String
	user.LastLoginIP = lastLoginIP.String
	user.DateOfBirth = dateOfBirth.Time
	user.RegistrationDate = registrationDate.Time
	user.LastLoginDate = lastLogin.Time
	user.CreatedAt = createdAt.Time
	user.UpdatedAt = updatedAt.Time

	if len(addressJSON) > 0 {
		user.Address = &models.Address{}
		if err := json.Unmarshal(addressJSON, user.Address); err != nil {
			return nil, err
		}
	}

	return &user, nil
}

func marshalAddress(address *models.Address) ([]byte, error) {
	if address == nil {
		return nil, nil
	}
	return json.Marshal(address)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

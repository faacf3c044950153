package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/hanriver/taxi-booking/internal/model"
	"github.com/hanriver/taxi-booking/internal/utils"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

var ErrEmailExists = errors.New("email already exists")

const userCols = "id,name,email,password_hash,kakao_id,phone_number,profile_url,point,created_at,updated_at"

// Create inserts a user and returns its ID.
func (r *UserRepo) Create(ctx context.Context, name, email, password string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (name, email, password_hash) VALUES (?,?,?)",
		name, email, hash)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// CreateKakao inserts a user backed by a kakao account.  The password
// hash is a random throwaway so the row still satisfies the schema.
func (r *UserRepo) CreateKakao(ctx context.Context, name, email, passwordHash string, kakaoID int64, profileURL string) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (name, email, password_hash, kakao_id, profile_url) VALUES (?,?,?,?,?)",
		name, email, passwordHash, kakaoID, profileURL)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.scanOne(ctx, "SELECT "+userCols+" FROM users WHERE email=? LIMIT 1", email)
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return r.scanOne(ctx, "SELECT "+userCols+" FROM users WHERE id=? LIMIT 1", id)
}

// GetByKakaoID fetches a user by kakao account id.
func (r *UserRepo) GetByKakaoID(ctx context.Context, kakaoID int64) (model.User, error) {
	return r.scanOne(ctx, "SELECT "+userCols+" FROM users WHERE kakao_id=? LIMIT 1", kakaoID)
}

func (r *UserRepo) scanOne(ctx context.Context, q string, args ...any) (model.User, error) {
	var (
		u       model.User
		kakaoID sql.NullInt64
		phone   sql.NullString
		profile sql.NullString
	)
	err := r.DB.QueryRowContext(ctx, q, args...).Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash,
		&kakaoID, &phone, &profile, &u.Point,
		&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return u, err
	}
	if kakaoID.Valid {
		k := kakaoID.Int64
		u.KakaoID = &k
	}
	if phone.Valid {
		p := phone.String
		u.PhoneNumber = &p
	}
	if profile.Valid {
		p := profile.String
		u.ProfileURL = &p
	}
	return u, nil
}

// UpsertKakaoToken stores or replaces the kakao token pair for a user.
func (r *UserRepo) UpsertKakaoToken(ctx context.Context, userID uint64, token string) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO kakao_tokens (user_id, token) VALUES (?,?) ON DUPLICATE KEY UPDATE token=VALUES(token)",
		userID, token)
	return err
}

// GetKakaoToken returns the stored kakao token pair for a user.
// sql.ErrNoRows is returned when the user never signed in via kakao.
func (r *UserRepo) GetKakaoToken(ctx context.Context, userID uint64) (string, error) {
	var token string
	err := r.DB.QueryRowContext(ctx,
		"SELECT token FROM kakao_tokens WHERE user_id=? LIMIT 1", userID).Scan(&token)
	return token, err
}

package model

import "time"

// User represents an application user record as stored in the
// `users` table.  Accounts are created either through signup with an
// email and password or through kakao social login, in which case
// KakaoID is populated and the password is a random throwaway.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Name         – display name.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
//  KakaoID      – kakao account identifier (nil for local accounts).
//  PhoneNumber  – optional contact number.
//  ProfileURL   – optional profile image URL.
//  Point        – loyalty point balance.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Name         string    // users.name
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	KakaoID      *int64    // users.kakao_id (nullable)
	PhoneNumber  *string   // users.phone_number (nullable)
	ProfileURL   *string   // users.profile_url (nullable)
	Point        int64     // users.point
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  Each
// refresh token belongs to a user and contains metadata for expiry
// and revocation.  The plain token is not stored; only its
// SHA-256 hash.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the token.
//  TokenHash – SHA-256 hex digest of the token value.
//  ExpiresAt – expiration timestamp of the token.
//  RevokedAt – when the token was revoked (null if still active).
//  CreatedAt – timestamp of creation.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}

// KakaoToken stores the kakao access/refresh token pair for a user
// who signed in through kakao.  The pair is needed to call the kakao
// logout API when the user signs out.
//
// Fields:
//  ID     – primary key identifier.
//  UserID – owner of the token pair.
//  Token  – space-joined "access refresh" token pair.
type KakaoToken struct {
	ID     uint64 // kakao_tokens.id
	UserID uint64 // kakao_tokens.user_id
	Token  string // kakao_tokens.token
}

package handler

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hanriver/taxi-booking/internal/config"
	"github.com/hanriver/taxi-booking/internal/kakao"
	"github.com/hanriver/taxi-booking/internal/repository"
	"github.com/hanriver/taxi-booking/internal/utils"
)

// defaultProfileURL is served for accounts that never uploaded a
// profile picture.
const defaultProfileURL = "https://image.flaticon.com/icons/png/512/1808/1808120.png"

// AuthHandler bundles dependencies for auth endpoints: local
// signup/signin, kakao signin, token refresh and logout.
type AuthHandler struct {
	Cfg    config.Config
	Users  *repository.UserRepo
	Tokens *repository.TokenRepo
	Kakao  *kakao.Client
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, t *repository.TokenRepo, k *kakao.Client) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Tokens: t, Kakao: k}
}

// ----- DTOs -----

type signupReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
type signinReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}
type kakaoSigninReq struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Signup: validate and create a local account.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "no_body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "key_error"})
	}
	if !utils.ValidEmail(req.Email) {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid_email"})
	}
	if !utils.ValidPassword(req.Password) {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid_password"})
	}
	if !utils.ValidName(req.Name) {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid_name"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Users.Create(ctx, req.Name, req.Email, req.Password, h.Cfg.BcryptCost); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "already_exists", "email": req.Email})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "database_error"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"created_user": req.Name})
}

// Signin: verify credentials and return a fresh token pair.
func (h *AuthHandler) Signin(c echo.Context) error {
	var req signinReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "no_body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "key_error"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid_email"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "database_error"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "invalid_password"})
	}

	return h.issueTokens(c, ctx, u.ID)
}

// KakaoSignin: resolve a kakao access token into a local account,
// creating one on first signin, and return a fresh token pair.
func (h *AuthHandler) KakaoSignin(c echo.Context) error {
	var req kakaoSigninReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "no_body"})
	}
	if req.AccessToken == "" || req.RefreshToken == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "kakaotoken_required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	info, err := h.Kakao.GetUserInfo(ctx, req.AccessToken)
	if err != nil {
		switch {
		case errors.Is(err, kakao.ErrInvalidToken):
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "invalid_jwt"})
		case errors.Is(err, kakao.ErrTokenExpired):
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "login_again"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "kakao_error"})
		}
	}

	u, err := h.Users.GetByKakaoID(ctx, info.ID)
	switch {
	case err == nil:
		// returning kakao user
	case errors.Is(err, sql.ErrNoRows):
		// first kakao signin; an existing local account with the
		// same email must not be silently taken over
		if _, lookErr := h.Users.GetByEmail(ctx, info.Email); lookErr == nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "already_exists", "email": info.Email})
		} else if !errors.Is(lookErr, sql.ErrNoRows) {
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "database_error"})
		}
		pw, pwErr := utils.RandomPassword()
		if pwErr != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "database_error"})
		}
		hash, hashErr := utils.HashPassword(pw, h.Cfg.BcryptCost)
		if hashErr != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "database_error"})
		}
		uid, createErr := h.Users.CreateKakao(ctx, info.Nickname, info.Email, hash, info.ID, info.ThumbnailURL)
		if createErr != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "database_error"})
		}
		u, err = h.Users.GetByID(ctx, uid)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "database_error"})
		}
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "database_error"})
	}

	// keep the kakao pair so logout can invalidate the kakao session
	pair := req.AccessToken + " " + req.RefreshToken
	if err := h.Users.UpsertKakaoToken(ctx, u.ID, pair); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "database_error"})
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "token_error"})
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "token_error"})
	}
	if err := h.Tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "token_error"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message":       "success",
		"user":          u.Name,
		"access_token":  access.Token,
		"refresh_token": refresh.Raw,
	})
}

// Refresh: validate by hash, revoke the old refresh token, issue a
// new pair.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "key_error"})
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	userID, err := h.Tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "invalid_refresh"})
	}
	_ = h.Tokens.RevokeByHash(ctx, hash)

	return h.issueTokens(c, ctx, userID)
}

// Logout: revoke every refresh token for the current user and, when a
// kakao token pair is on file, invalidate the kakao session too.
func (h *AuthHandler) Logout(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "no_jwt"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	if err := h.Tokens.RevokeAllForUser(ctx, userID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "database_error"})
	}

	// best effort: a stale or missing kakao token never blocks logout
	if pair, err := h.Users.GetKakaoToken(ctx, userID); err == nil {
		if fields := strings.Fields(pair); len(fields) > 0 {
			if err := h.Kakao.Logout(ctx, fields[0]); err != nil {
				log.Printf("kakao logout for user %d: %v", userID, err)
			}
		}
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "success"})
}

// UserInfo: profile for the current user.
func (h *AuthHandler) UserInfo(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "login_required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "invalid_jwt"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "database_error"})
	}
	profile := defaultProfileURL
	if u.ProfileURL != nil && *u.ProfileURL != "" {
		profile = *u.ProfileURL
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "success",
		"user_info": echo.Map{
			"user_name":   u.Name,
			"user_email":  u.Email,
			"profile_url": profile,
		},
	})
}

// issueTokens mints an access/refresh pair for a user, stores the
// refresh hash and writes the 201 response.
func (h *AuthHandler) issueTokens(c echo.Context, ctx context.Context, userID uint64) error {
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, userID, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "token_error"})
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "token_error"})
	}
	if err := h.Tokens.StoreRefresh(ctx, userID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "token_error"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"access_token":  access.Token,
		"refresh_token": refresh.Raw,
	})
}

package router

import (
	"github.com/labstack/echo/v4"

	"github.com/hanriver/taxi-booking/internal/handler"
	"github.com/hanriver/taxi-booking/internal/middleware"
)

// RegisterAuth registers all authentication-related routes and applies the
// necessary middleware.  Account creation and signin live under /v1/users
// and never require a session; userinfo and logout require a valid access
// token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/users")
	// Register a POST endpoint to create a local account at /v1/users/signup.
	g.POST("/signup", a.Signup)
	// Register a POST endpoint for credential signin at /v1/users/signin.
	g.POST("/signin", a.Signin)
	// Register a POST endpoint for kakao signin at /v1/users/kakaosignin.
	// The handler exchanges a kakao access token for a local token pair.
	g.POST("/kakaosignin", a.KakaoSignin)
	// Register a POST endpoint to rotate a refresh token at /v1/users/refresh.
	g.POST("/refresh", a.Refresh)

	// Protected user endpoints.  The JWTAuth middleware rejects requests
	// without a valid bearer token before the handler runs.
	auth := e.Group("/v1/users")
	auth.Use(middleware.JWTAuth(jwtSecret))
	// Register a GET endpoint returning the current user's profile.
	auth.GET("/userinfo", a.UserInfo)
	// Register a POST endpoint that revokes every refresh token for the
	// current user and tears down any kakao session on file.
	auth.POST("/logout", a.Logout)
}

// Package auth authenticates API callers and exposes who they are to the
// handlers.
//
// Two credentials are accepted on every request:
//   - a session cookie, set by POST /api/auth/login
//   - an API token sent as "Authorization: Bearer <token>", issued by
//     POST /api/auth/token
//
// Requests without credentials continue as anonymous; RequireAuth and
// RequireStaff guard the routes that need more.
//
// # Configuration
//
//	AUTH_SESSION_SECRET=<hex-32-bytes>  # CSRF key, generated if empty
//	AUTH_SESSION_LIFETIME=24h
//	AUTH_TOKEN_EXPIRY=720h
//	AUTH_BCRYPT_COST=12
//	AUTH_SECURE_COOKIES=true
//	AUTH_LOGIN_RATE=0.1                 # login attempts per second per client
//	AUTH_LOGIN_BURST=5
//	AUTH_LOCKOUT_ATTEMPTS=5
//	AUTH_LOCKOUT_DURATION=30m
//
// # Usage
//
//	authService := auth.NewService(db.DB, cfg.Auth, logger)
//	middleware := auth.NewMiddleware(authService, sessions)
//	router.Use(sessions.SessionLoadSave(), middleware.Handler())
//
// Extract the caller in handlers:
//
//	userID := auth.GetUserID(c) // 0 for anonymous requests
//	staff := auth.IsStaff(c)
package auth

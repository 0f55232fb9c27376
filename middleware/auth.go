package middleware

import (
	"context"
	"strings"
	"time"

	"tesschool_go/config"
	"tesschool_go/database"
	"tesschool_go/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

// SessionCookie carries the session token between requests.
const SessionCookie = "tes_session"

// SessionClaims binds a session to a role-table row (student_id/teacher_id/
// admin_id), not the unified User id. Legacy dashboards key off those ids.
type SessionClaims struct {
	Role      string `json:"role"`
	ProfileID uint   `json:"profile_id"`
	Username  string `json:"username"`
	jwt.RegisteredClaims
}

// GenerateSessionToken creates a session token for a role-table row with the
// fixed configured TTL.
func GenerateSessionToken(role string, profileID uint, username string) (string, error) {
	claims := &SessionClaims{
		Role:      role,
		ProfileID: profileID,
		Username:  username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(config.AppConfig.SessionExpiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.AppConfig.JWTSecret))
}

// SessionToken extracts the raw token from the Authorization header or the
// session cookie.
func SessionToken(c *fiber.Ctx) string {
	authHeader := c.Get("Authorization")
	if authHeader != "" {
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString != authHeader {
			return tokenString
		}
	}
	return c.Cookies(SessionCookie)
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
	})
}

// SetSessionCookie attaches the session token with the configured TTL.
func SetSessionCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Expires:  time.Now().Add(config.AppConfig.SessionExpiresIn),
		HTTPOnly: true,
	})
}

func parseSession(c *fiber.Ctx) (*SessionClaims, string, error) {
	tokenString := SessionToken(c)
	if tokenString == "" {
		return nil, "", fiber.NewError(fiber.StatusUnauthorized, "Please login to continue")
	}

	// Reject tokens invalidated by logout
	if rc := database.GetRedisClient(); rc != nil {
		if exists, err := rc.Exists(context.Background(), "blacklist:session:"+tokenString).Result(); err == nil && exists > 0 {
			return nil, "", fiber.NewError(fiber.StatusUnauthorized, "Session expired. Please login again.")
		}
	}

	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(config.AppConfig.JWTSecret), nil
	})
	if err != nil {
		return nil, "", fiber.NewError(fiber.StatusUnauthorized, "Session expired. Please login again.")
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, "", fiber.NewError(fiber.StatusUnauthorized, "Session expired. Please login again.")
	}
	return claims, tokenString, nil
}

func sessionError(c *fiber.Ctx, err error) error {
	ClearSessionCookie(c)
	code := fiber.StatusUnauthorized
	message := "Please login to continue"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}
	return c.Status(code).JSON(fiber.Map{"error": message})
}

// RequireStudent gates student endpoints and resolves the Student row.
// A session pointing at a now-missing row is cleared.
func RequireStudent() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, tokenString, err := parseSession(c)
		if err != nil {
			return sessionError(c, err)
		}
		if claims.Role != models.RoleStudent {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Please login to continue"})
		}

		var student models.Student
		if err := database.DB.First(&student, claims.ProfileID).Error; err != nil {
			return sessionError(c, fiber.NewError(fiber.StatusUnauthorized, "Session expired. Please login again."))
		}

		c.Locals("student", &student)
		c.Locals("claims", claims)
		c.Locals("session_token", tokenString)
		return c.Next()
	}
}

// RequireTeacher gates teacher endpoints and resolves the Teacher row.
func RequireTeacher() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, tokenString, err := parseSession(c)
		if err != nil {
			return sessionError(c, err)
		}
		if claims.Role != models.RoleTeacher {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Please login as teacher to continue"})
		}

		var teacher models.Teacher
		if err := database.DB.First(&teacher, claims.ProfileID).Error; err != nil {
			return sessionError(c, fiber.NewError(fiber.StatusUnauthorized, "Session expired. Please login again."))
		}

		c.Locals("teacher", &teacher)
		c.Locals("claims", claims)
		c.Locals("session_token", tokenString)
		return c.Next()
	}
}

// RequireAdmin gates the admin console.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, tokenString, err := parseSession(c)
		if err != nil {
			return sessionError(c, err)
		}
		if claims.Role != models.RoleAdmin {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Please login as admin to continue"})
		}

		var admin models.Admin
		if err := database.DB.First(&admin, claims.ProfileID).Error; err != nil {
			return sessionError(c, fiber.NewError(fiber.StatusUnauthorized, "Session expired. Please login again."))
		}

		c.Locals("admin", &admin)
		c.Locals("claims", claims)
		c.Locals("session_token", tokenString)
		return c.Next()
	}
}

// GetCurrentStudent returns the session's Student row.
func GetCurrentStudent(c *fiber.Ctx) (*models.Student, error) {
	student, ok := c.Locals("student").(*models.Student)
	if !ok {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Student not found in context")
	}
	return student, nil
}

// GetCurrentTeacher returns the session's Teacher row.
func GetCurrentTeacher(c *fiber.Ctx) (*models.Teacher, error) {
	teacher, ok := c.Locals("teacher").(*models.Teacher)
	if !ok {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Teacher not found in context")
	}
	return teacher, nil
}

// GetCurrentAdmin returns the session's Admin row.
func GetCurrentAdmin(c *fiber.Ctx) (*models.Admin, error) {
	admin, ok := c.Locals("admin").(*models.Admin)
	if !ok {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Admin not found in context")
	}
	return admin, nil
}

// GetCurrentClaims returns the current session claims
func GetCurrentClaims(c *fiber.Ctx) (*SessionClaims, error) {
	claims, ok := c.Locals("claims").(*SessionClaims)
	if !ok {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Claims not found in context")
	}
	return claims, nil
}

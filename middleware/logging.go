package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"tesschool_go/database"
	"tesschool_go/models"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// LoggerMiddleware logs HTTP requests
func LoggerMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		// Process request
		err := c.Next()

		// Log request
		duration := time.Since(start)
		status := c.Response().StatusCode()

		logrus.WithFields(logrus.Fields{
			"method":     c.Method(),
			"path":       c.Path(),
			"status":     status,
			"duration":   duration.String(),
			"ip":         c.IP(),
			"user_agent": c.Get("User-Agent"),
		}).Info("HTTP Request")

		return err
	}
}

// LogActivity records a mutating operation against the activity log. Writes
// go through the Redis queue when available and fall back to the database.
func LogActivity(c *fiber.Ctx, action, resource string, resourceID uint, details interface{}) {
	var actorID uint
	actorRole := "anonymous"
	actorName := ""
	if claims, err := GetCurrentClaims(c); err == nil {
		actorID = claims.ProfileID
		actorRole = claims.Role
		actorName = claims.Username
	}

	payload := map[string]interface{}{
		"details":    details,
		"actor_role": actorRole,
		"actor_name": actorName,
		"request_id": c.Get("X-Request-ID", uuid.New().String()),
		"method":     c.Method(),
		"path":       c.Path(),
		"query":      string(c.Request().URI().QueryString()),
	}

	var detailsJSON models.JSON
	if detailsBytes, err := json.Marshal(payload); err == nil {
		detailsJSON = detailsBytes
	}

	entry := models.ActivityLog{
		UserID:     actorID,
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		Details:    detailsJSON,
		IPAddress:  c.IP(),
		UserAgent:  c.Get("User-Agent"),
	}
	entry.CreatedAt = time.Now()

	go func(al models.ActivityLog) {
		defer func() {
			if r := recover(); r != nil {
				logrus.WithField("panic", r).Error("panic recovered in LogActivity goroutine")
			}
		}()

		if err := cacheActivityLog(al); err != nil {
			if database.DB == nil {
				return
			}
			if dbErr := database.DB.Create(&al).Error; dbErr != nil {
				logrus.WithError(dbErr).Error("Failed to save activity log to database")
			}
		}
	}(entry)
}

// cacheActivityLog stores an activity log in Redis with a 24-hour TTL; the
// log maintenance scheduler flushes the queue into the database.
func cacheActivityLog(entry models.ActivityLog) error {
	redisClient := database.GetRedisClient()
	if redisClient == nil {
		return fmt.Errorf("redis client is nil")
	}
	ctx := context.Background()

	logData, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal log: %v", err)
	}

	cacheKey := fmt.Sprintf("log:%d:%s:%d", entry.UserID, entry.Action, time.Now().UnixNano())

	if err := redisClient.Set(ctx, cacheKey, logData, 24*time.Hour).Err(); err != nil {
		return fmt.Errorf("failed to cache log: %v", err)
	}

	if err := redisClient.ZAdd(ctx, "logs:queue", &redis.Z{
		Score:  float64(time.Now().Unix()),
		Member: cacheKey,
	}).Err(); err != nil {
		logrus.WithError(err).Error("Failed to add log to processing queue")
	}

	return nil
}

// LogActivityMiddleware automatically logs CRUD operations
func LogActivityMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Skip logging for GET requests and login/logout endpoints, which
		// carry their own audit trail
		if c.Method() == "GET" || strings.HasSuffix(c.Path(), "/login") || strings.HasSuffix(c.Path(), "/logout") {
			return c.Next()
		}

		err := c.Next()

		var action string
		switch c.Method() {
		case "POST":
			action = "CREATE"
		case "PUT", "PATCH":
			action = "UPDATE"
		case "DELETE":
			action = "DELETE"
		default:
			return err
		}

		resource := strings.Trim(c.Path(), "/")
		LogActivity(c, action, resource, 0, fiber.Map{
			"status": c.Response().StatusCode(),
		})

		return err
	}
}

package controllers_test

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"tesschool_go/config"
	"tesschool_go/database"
	"tesschool_go/models"
	"tesschool_go/routes"

	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestApp wires a Fiber app with all routes against a fresh in-memory
// database.
func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	config.AppConfig = &config.Config{
		JWTSecret:        "test-secret-key-for-sessions",
		SessionExpiresIn: 8 * time.Hour,
		Port:             "5000",
		AppEnv:           "test",
	}

	dsn := fmt.Sprintf("file:ctrl_%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Student{},
		&models.Teacher{},
		&models.Admin{},
		&models.User{},
		&models.Admission{},
		&models.LoginAudit{},
		&models.Attendance{},
		&models.Result{},
		&models.Assessment{},
		&models.FeePayment{},
		&models.SportsActivity{},
		&models.Subject{},
		&models.ClassSection{},
		&models.StudentSubject{},
		&models.ActivityLog{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	database.DB = db

	app := fiber.New()
	routes.SetupRoutes(app)
	return app
}

func doRequest(t *testing.T, app *fiber.App, req *http.Request) (*http.Response, map[string]interface{}) {
	t.Helper()

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	resp.Body.Close()

	var parsed map[string]interface{}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &parsed); err != nil {
			t.Fatalf("failed to parse response %q: %v", string(body), err)
		}
	}
	return resp, parsed
}

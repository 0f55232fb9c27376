package controllers

import (
	"context"
	"strings"

	"tesschool_go/config"
	"tesschool_go/database"
	"tesschool_go/middleware"
	"tesschool_go/models"
	"tesschool_go/services"
	"tesschool_go/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type AuthController struct{}

// StudentLoginRequest carries student credentials; roll number doubles as the
// username.
type StudentLoginRequest struct {
	RollNo   string `json:"roll_no" form:"roll_no"`
	Password string `json:"password" form:"password"`
}

// LoginRequest carries teacher/admin credentials.
type LoginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// StudentLogin authenticates a student. Admission-based credentials are tried
// first, lazily materializing the Student and unified User rows on first
// success; unified User credentials are the legacy fallback. Each attempt
// replaces the previous audit row for this roll number.
func (ac *AuthController) StudentLogin(c *fiber.Ctx) error {
	var req StudentLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	rollNo := strings.TrimSpace(req.RollNo)
	if rollNo == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Roll number is required"})
	}

	// 1) Admission-based authentication (plaintext initial password)
	var adm models.Admission
	admErr := database.DB.Where("roll_no = ?", rollNo).First(&adm).Error
	if admErr == nil && adm.Status == models.AdmissionConfirmed && adm.Password != "" && req.Password == adm.Password {
		var student *models.Student
		var user *models.User
		err := database.DB.Transaction(func(tx *gorm.DB) error {
			var txErr error
			student, user, txErr = services.EnsureStudentIdentity(tx, services.StudentProfile{
				RollNo:    rollNo,
				Name:      adm.Name,
				ClassName: adm.ClassName,
				Section:   adm.Section,
				Phone:     adm.Phone,
				Email:     adm.Email,
				Address:   adm.Address,
			}, adm.Password)
			return txErr
		})
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Login failed"})
		}
		return ac.finishLogin(c, models.RoleStudent, student.ID, rollNo, &user.ID, fiber.Map{
			"id":      student.ID,
			"roll_no": student.RollNo,
			"name":    student.Name,
		})
	}

	// Admission exists but is pending or rejected: block with a clear message
	if admErr == nil && adm.Status != models.AdmissionConfirmed {
		ac.auditFailure(c, models.RoleStudent, rollNo, nil)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Your admission is not confirmed yet. Please contact the school.",
		})
	}

	// 2) Legacy fallback: unified users table
	var user models.User
	var auditUserID *uint
	if err := database.DB.Where("role = ? AND username = ?", models.RoleStudent, rollNo).First(&user).Error; err == nil {
		auditUserID = &user.ID
		if utils.CheckPassword(req.Password, user.PasswordHash) == nil {
			var student *models.Student
			err := database.DB.Transaction(func(tx *gorm.DB) error {
				var txErr error
				student, txErr = services.EnsureStudentFromUser(tx, &user)
				return txErr
			})
			if err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Login failed"})
			}
			return ac.finishLogin(c, models.RoleStudent, student.ID, rollNo, &user.ID, fiber.Map{
				"id":      student.ID,
				"roll_no": student.RollNo,
				"name":    student.Name,
			})
		}
	}

	ac.auditFailure(c, models.RoleStudent, rollNo, auditUserID)
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid roll number or password"})
}

// TeacherLogin authenticates a teacher against the unified users table and
// mirrors the row into the teachers table for legacy rendering.
func (ac *AuthController) TeacherLogin(c *fiber.Ctx) error {
	return ac.roleLogin(c, models.RoleTeacher)
}

// AdminLogin authenticates an admin against the unified users table.
func (ac *AuthController) AdminLogin(c *fiber.Ctx) error {
	return ac.roleLogin(c, models.RoleAdmin)
}

func (ac *AuthController) roleLogin(c *fiber.Ctx, role string) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Username is required"})
	}

	var user models.User
	err := database.DB.Where("role = ? AND username = ?", role, username).First(&user).Error
	if err != nil || utils.CheckPassword(req.Password, user.PasswordHash) != nil {
		var auditUserID *uint
		if err == nil {
			auditUserID = &user.ID
		}
		ac.auditFailure(c, role, username, auditUserID)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid username or password"})
	}

	// Mirror into the role table for dashboard compatibility
	var profileID uint
	var profile fiber.Map
	txErr := database.DB.Transaction(func(tx *gorm.DB) error {
		switch role {
		case models.RoleTeacher:
			teacher, err := services.EnsureTeacherMirror(tx, &user)
			if err != nil {
				return err
			}
			profileID = teacher.ID
			profile = fiber.Map{"id": teacher.ID, "username": teacher.Username, "name": teacher.Name}
		case models.RoleAdmin:
			admin, err := services.EnsureAdminMirror(tx, &user)
			if err != nil {
				return err
			}
			profileID = admin.ID
			profile = fiber.Map{"id": admin.ID, "username": admin.Username, "name": admin.Name}
		}
		return nil
	})
	if txErr != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Login failed"})
	}

	return ac.finishLogin(c, role, profileID, username, &user.ID, profile)
}

// finishLogin writes the success audit row and issues the session token
// bound to the role-table row id.
func (ac *AuthController) finishLogin(c *fiber.Ctx, role string, profileID uint, username string, userID *uint, profile fiber.Map) error {
	if err := services.RecordLoginAttempt(database.DB, role, username, userID, true, c.IP(), c.Get("User-Agent")); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Login failed"})
	}

	token, err := middleware.GenerateSessionToken(role, profileID, username)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create session"})
	}
	middleware.SetSessionCookie(c, token)

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"token":   token,
		"role":    role,
		role:      profile,
	})
}

func (ac *AuthController) auditFailure(c *fiber.Ctx, role, username string, userID *uint) {
	if err := services.RecordLoginAttempt(database.DB, role, username, userID, false, c.IP(), c.Get("User-Agent")); err != nil {
		// Audit failure must not mask the login outcome
		_ = err
	}
}

// Logout invalidates the current session token via the Redis blacklist and
// clears the cookie.
func (ac *AuthController) Logout(c *fiber.Ctx) error {
	tokenString := middleware.SessionToken(c)
	if tokenString != "" {
		if rc := database.GetRedisClient(); rc != nil {
			key := "blacklist:session:" + tokenString
			if err := rc.Set(context.Background(), key, "1", config.AppConfig.SessionExpiresIn).Err(); err != nil {
				middleware.LogActivity(c, "LOGOUT", "auth", 0, fiber.Map{"error": err.Error()})
			}
		}
	}
	middleware.ClearSessionCookie(c)
	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}

package controllers

import (
	"strconv"
	"strings"

	"tesschool_go/database"
	"tesschool_go/middleware"
	"tesschool_go/models"
	"tesschool_go/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type TeacherController struct{}

// List returns a page of teachers for the admin console.
func (tc *TeacherController) List(c *fiber.Ctx) error {
	page := utils.ParsePage(c.Query("page", "1"))
	q := strings.TrimSpace(c.Query("q"))

	query := database.DB.Model(&models.Teacher{})
	if q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where("LOWER(username) LIKE ? OR LOWER(name) LIKE ? OR LOWER(email) LIKE ?", like, like, like)
	}

	var total int64
	query.Count(&total)
	pagination := utils.NewPagination(page, total)

	var rows []models.Teacher
	if err := query.Order("username ASC").
		Offset(pagination.Offset()).Limit(pagination.PerPage).Find(&rows).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch teachers"})
	}

	return c.JSON(fiber.Map{
		"teachers":   rows,
		"pagination": pagination,
		"q":          q,
	})
}

// TeacherRequest maps the admin create/edit teacher form.
type TeacherRequest struct {
	Username string `json:"username" form:"username"`
	Name     string `json:"name" form:"name"`
	Email    string `json:"email" form:"email"`
	Phone    string `json:"phone" form:"phone"`
}

// Create registers a teacher. The unified User row is created first, then
// the Teacher mirror with the same hash; the generated initial password is
// stored for administrative display and returned once.
func (tc *TeacherController) Create(c *fiber.Ctx) error {
	var req TeacherRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	username := strings.TrimSpace(req.Username)
	name := strings.TrimSpace(req.Name)
	if username == "" || name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Username and Name are required"})
	}

	// Username must be unique across every role, not just teachers
	var existing models.User
	if err := database.DB.Where("username = ?", username).First(&existing).Error; err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Username already exists"})
	}

	password := utils.GenerateInitialPassword(name, strings.TrimSpace(req.Phone))
	hash, err := utils.HashPassword(password)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create teacher"})
	}

	teacher := models.Teacher{
		Username:        username,
		Name:            name,
		Email:           strings.TrimSpace(req.Email),
		PasswordHash:    hash,
		InitialPassword: password,
	}
	user := models.User{
		Role:         models.RoleTeacher,
		Username:     username,
		Name:         name,
		Email:        strings.TrimSpace(req.Email),
		Phone:        strings.TrimSpace(req.Phone),
		PasswordHash: hash,
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		return tx.Create(&teacher).Error
	})
	if err != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Failed to create teacher (possible duplicate username).",
		})
	}

	middleware.LogActivity(c, "CREATE", "teachers", teacher.ID, fiber.Map{"username": username})

	return c.JSON(fiber.Map{
		"message":          "Teacher created",
		"teacher":          teacher,
		"initial_password": password,
	})
}

// Get returns one teacher.
func (tc *TeacherController) Get(c *fiber.Ctx) error {
	teacher, err := tc.find(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"teacher": teacher})
}

// Update edits a teacher's profile and keeps the User row in sync.
func (tc *TeacherController) Update(c *fiber.Ctx) error {
	teacher, err := tc.find(c)
	if err != nil {
		return err
	}

	var req TeacherRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Name is required"})
	}

	teacher.Name = name
	teacher.Email = strings.TrimSpace(req.Email)

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(teacher).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).
			Where("role = ? AND username = ?", models.RoleTeacher, teacher.Username).
			Updates(map[string]interface{}{
				"name":  teacher.Name,
				"email": teacher.Email,
				"phone": strings.TrimSpace(req.Phone),
			}).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update teacher"})
	}

	middleware.LogActivity(c, "UPDATE", "teachers", teacher.ID, fiber.Map{"username": teacher.Username})

	return c.JSON(fiber.Map{"message": "Teacher updated", "teacher": teacher})
}

// Delete removes the teacher and its unified User row.
func (tc *TeacherController) Delete(c *fiber.Ctx) error {
	teacher, err := tc.find(c)
	if err != nil {
		return err
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role = ? AND username = ?", models.RoleTeacher, teacher.Username).
			Delete(&models.User{}).Error; err != nil {
			return err
		}
		return tx.Delete(teacher).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete teacher"})
	}

	middleware.LogActivity(c, "DELETE", "teachers", teacher.ID, fiber.Map{"username": teacher.Username})

	return c.JSON(fiber.Map{"message": "Teacher deleted"})
}

// ResetPassword regenerates the teacher's initial password from name+phone
// and writes the new hash to both the Teacher and User rows atomically.
func (tc *TeacherController) ResetPassword(c *fiber.Ctx) error {
	teacher, err := tc.find(c)
	if err != nil {
		return err
	}

	var user models.User
	if err := database.DB.Where("role = ? AND username = ?", models.RoleTeacher, teacher.Username).
		First(&user).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Linked user account not found"})
	}

	password := utils.GenerateInitialPassword(teacher.Name, user.Phone)
	hash, err := utils.HashPassword(password)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to reset password"})
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&user).Update("password_hash", hash).Error; err != nil {
			return err
		}
		return tx.Model(teacher).Updates(map[string]interface{}{
			"password_hash":    hash,
			"initial_password": password,
		}).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to reset password"})
	}

	middleware.LogActivity(c, "UPDATE", "teachers", teacher.ID, fiber.Map{"action": "reset_password"})

	return c.JSON(fiber.Map{
		"message":          "Password reset",
		"initial_password": password,
	})
}

// Export streams all teachers matching the filter as CSV, with the phone
// joined in from the unified User table.
func (tc *TeacherController) Export(c *fiber.Ctx) error {
	q := strings.TrimSpace(c.Query("q"))

	type teacherExportRow struct {
		Username string
		Name     string
		Email    string
		Phone    string
	}

	query := database.DB.Model(&models.Teacher{}).
		Select("teachers.username, teachers.name, teachers.email, users.phone").
		Joins("LEFT JOIN users ON users.role = ? AND users.username = teachers.username", models.RoleTeacher).
		Order("teachers.username ASC")
	if q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where("LOWER(teachers.username) LIKE ? OR LOWER(teachers.name) LIKE ? OR LOWER(teachers.email) LIKE ?", like, like, like)
	}

	var rows []teacherExportRow
	if err := query.Scan(&rows).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch teachers"})
	}

	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, []string{r.Username, r.Name, r.Email, r.Phone})
	}
	return sendCSV(c, "teachers.csv", []string{"username", "name", "email", "phone"}, records)
}

func (tc *TeacherController) find(c *fiber.Ctx) (*models.Teacher, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid teacher ID"})
	}
	var teacher models.Teacher
	if err := database.DB.First(&teacher, uint(id)).Error; err != nil {
		return nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Teacher not found"})
	}
	return &teacher, nil
}

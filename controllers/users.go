package controllers

import (
	"strconv"
	"strings"

	"tesschool_go/database"
	"tesschool_go/middleware"
	"tesschool_go/models"
	"tesschool_go/services"
	"tesschool_go/utils"

	"github.com/gofiber/fiber/v2"
)

type UserController struct{}

// List returns a page of unified user accounts with optional q/role filters.
func (uc *UserController) List(c *fiber.Ctx) error {
	page := utils.ParsePage(c.Query("page", "1"))
	q := strings.TrimSpace(c.Query("q"))
	role := strings.TrimSpace(c.Query("role"))

	query := database.DB.Model(&models.User{})
	if q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where("LOWER(username) LIKE ? OR LOWER(name) LIKE ? OR LOWER(email) LIKE ?", like, like, like)
	}
	if utils.IsValidRole(role) {
		query = query.Where("role = ?", role)
	}

	var total int64
	query.Count(&total)
	pagination := utils.NewPagination(page, total)

	var rows []models.User
	if err := query.Order("role ASC, username ASC").
		Offset(pagination.Offset()).Limit(pagination.PerPage).Find(&rows).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch users"})
	}

	return c.JSON(fiber.Map{
		"users":      rows,
		"pagination": pagination,
		"q":          q,
		"role":       role,
	})
}

// Export streams users matching the filter as CSV.
func (uc *UserController) Export(c *fiber.Ctx) error {
	q := strings.TrimSpace(c.Query("q"))
	role := strings.TrimSpace(c.Query("role"))

	query := database.DB.Model(&models.User{})
	if q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where("LOWER(username) LIKE ? OR LOWER(name) LIKE ? OR LOWER(email) LIKE ?", like, like, like)
	}
	if utils.IsValidRole(role) {
		query = query.Where("role = ?", role)
	}

	var rows []models.User
	if err := query.Order("role ASC, username ASC").Find(&rows).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch users"})
	}

	header := []string{"id", "role", "username", "name", "email", "class_name", "section", "phone"}
	records := make([][]string, 0, len(rows))
	for _, u := range rows {
		records = append(records, []string{
			strconv.FormatUint(uint64(u.ID), 10),
			u.Role,
			u.Username,
			u.Name,
			u.Email,
			u.ClassName,
			u.Section,
			u.Phone,
		})
	}
	return sendCSV(c, "users.csv", header, records)
}

// ResetPassword sets an explicit new password on a user account, keeping
// the role-table hash in sync.
func (uc *UserController) ResetPassword(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	var req struct {
		Password string `json:"password" form:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if strings.TrimSpace(req.Password) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Password is required"})
	}

	var user models.User
	if err := database.DB.First(&user, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}

	if err := services.SetUserPassword(database.DB, &user, req.Password); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to reset password"})
	}

	middleware.LogActivity(c, "UPDATE", "users", user.ID, fiber.Map{"action": "reset_password", "username": user.Username})

	return c.JSON(fiber.Map{"message": "Password reset"})
}

package controllers

import (
	"strings"

	"tesschool_go/database"
	"tesschool_go/models"
	"tesschool_go/utils"

	"github.com/gofiber/fiber/v2"
)

type AuditController struct{}

// List returns a page of login audit rows, newest first. Because only the
// last attempt per identity is retained, this is a snapshot of who tried to
// log in most recently, not a history.
func (ac *AuditController) List(c *fiber.Ctx) error {
	page := utils.ParsePage(c.Query("page", "1"))
	q := strings.TrimSpace(c.Query("q"))
	role := strings.TrimSpace(c.Query("role"))
	success := strings.TrimSpace(c.Query("success"))

	query := database.DB.Model(&models.LoginAudit{})
	if q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where("LOWER(username) LIKE ?", like)
	}
	if utils.IsValidRole(role) {
		query = query.Where("user_type = ?", role)
	}
	switch success {
	case "1", "true":
		query = query.Where("success = ?", true)
	case "0", "false":
		query = query.Where("success = ?", false)
	}

	var total int64
	query.Count(&total)
	pagination := utils.NewPagination(page, total)

	var rows []models.LoginAudit
	if err := query.Order("timestamp DESC").
		Offset(pagination.Offset()).Limit(pagination.PerPage).Find(&rows).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch login audit"})
	}

	return c.JSON(fiber.Map{
		"audits":     rows,
		"pagination": pagination,
		"q":          q,
		"role":       role,
		"success":    success,
	})
}

package controllers

import (
	"strings"
	"time"

	"tesschool_go/database"
	"tesschool_go/middleware"
	"tesschool_go/models"

	"github.com/gofiber/fiber/v2"
)

type FeeController struct{}

// Submit records a fee payment for one student.
func (fc *FeeController) Submit(c *fiber.Ctx) error {
	teacher, err := middleware.GetCurrentTeacher(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Session expired. Please login again."})
	}

	var req struct {
		StudentID   uint    `json:"student_id" form:"student_id"`
		Amount      float64 `json:"amount" form:"amount"`
		Mode        string  `json:"mode" form:"mode"`
		ReferenceNo string  `json:"reference_no" form:"reference_no"`
		Description string  `json:"description" form:"description"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.StudentID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "student_id is required"})
	}
	if req.Amount <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Amount must be positive"})
	}

	rec := models.FeePayment{
		StudentID:           req.StudentID,
		Amount:              req.Amount,
		Date:                time.Now().UTC(),
		Mode:                strings.TrimSpace(req.Mode),
		ReferenceNo:         strings.TrimSpace(req.ReferenceNo),
		Description:         strings.TrimSpace(req.Description),
		RecordedByTeacherID: &teacher.ID,
	}
	if err := database.DB.Create(&rec).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to record fee payment"})
	}

	middleware.LogActivity(c, "CREATE", "fees", rec.ID, fiber.Map{"student_id": rec.StudentID, "amount": rec.Amount})

	return c.JSON(fiber.Map{"message": "Fee payment recorded", "fee": rec})
}

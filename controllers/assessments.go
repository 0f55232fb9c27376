package controllers

import (
	"strconv"

	"tesschool_go/database"
	"tesschool_go/models"

	"github.com/gofiber/fiber/v2"
)

type AssessmentController struct{}

// List returns the 200 most recent assessments.
func (asc *AssessmentController) List(c *fiber.Ctx) error {
	var rows []models.Assessment
	if err := database.DB.Order("id DESC").Limit(200).Find(&rows).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch assessments"})
	}
	return c.JSON(fiber.Map{"assessments": rows})
}

// Get returns one assessment.
func (asc *AssessmentController) Get(c *fiber.Ctx) error {
	assessment, err := asc.find(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"assessment": assessment})
}

// Update edits an assessment's score and maximum.
func (asc *AssessmentController) Update(c *fiber.Ctx) error {
	assessment, err := asc.find(c)
	if err != nil {
		return err
	}

	var req struct {
		Score    *float64 `json:"score" form:"score"`
		MaxScore *float64 `json:"max_score" form:"max_score"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Score == nil || req.MaxScore == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "score and max_score are required"})
	}

	assessment.Score = *req.Score
	assessment.MaxScore = *req.MaxScore
	if err := database.DB.Save(assessment).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update assessment"})
	}

	return c.JSON(fiber.Map{"message": "Assessment updated", "assessment": assessment})
}

func (asc *AssessmentController) find(c *fiber.Ctx) (*models.Assessment, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid assessment ID"})
	}
	var assessment models.Assessment
	if err := database.DB.First(&assessment, uint(id)).Error; err != nil {
		return nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Assessment not found"})
	}
	return &assessment, nil
}

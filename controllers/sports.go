package controllers

import (
	"strings"
	"time"

	"tesschool_go/database"
	"tesschool_go/middleware"
	"tesschool_go/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type SportsController struct{}

// Page returns the filtered roster the sports entry page works over.
func (spc *SportsController) Page(c *fiber.Ctx) error {
	className := strings.TrimSpace(c.Query("class_name"))
	section := strings.TrimSpace(c.Query("section"))

	var classList []string
	database.DB.Model(&models.Student{}).
		Where("class_name <> ''").Distinct("class_name").Order("class_name").Pluck("class_name", &classList)

	var sectionList []string
	database.DB.Model(&models.Student{}).
		Where("section <> ''").Distinct("section").Order("section").Pluck("section", &sectionList)

	query := database.DB.Model(&models.Student{}).Order("roll_no ASC")
	if className != "" {
		query = query.Where("class_name = ?", className)
	}
	if section != "" {
		query = query.Where("section = ?", section)
	}
	var students []models.Student
	if err := query.Find(&students).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch students"})
	}

	return c.JSON(fiber.Map{
		"students":     students,
		"class_list":   classList,
		"section_list": sectionList,
		"class_name":   className,
		"section":      section,
	})
}

// Bulk records one shared activity for every selected student. An empty
// activity saves nothing.
func (spc *SportsController) Bulk(c *fiber.Ctx) error {
	teacher, err := middleware.GetCurrentTeacher(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Session expired. Please login again."})
	}

	activity := strings.TrimSpace(c.FormValue("activity"))
	level := strings.TrimSpace(c.FormValue("level"))
	result := strings.TrimSpace(c.FormValue("result"))
	notes := strings.TrimSpace(c.FormValue("notes"))
	date := parseOptionalDay(c.FormValue("date"))

	studentIDs := parseUintList(formValues(c, "student_id"))

	var saved int
	if activity != "" {
		err = database.DB.Transaction(func(tx *gorm.DB) error {
			for _, sid := range studentIDs {
				if err := tx.Create(&models.SportsActivity{
					StudentID:           sid,
					Activity:            activity,
					Level:               level,
					Result:              result,
					Date:                date,
					Notes:               notes,
					RecordedByTeacherID: &teacher.ID,
				}).Error; err != nil {
					return err
				}
				saved++
			}
			return nil
		})
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save sports activities"})
		}
	}

	return c.JSON(fiber.Map{"message": "Sports achievements recorded", "rows": saved})
}

// WorkspaceBulk records per-student activities from the parallel
// student_id[]/activity[]/level[]/result[]/notes[] lists. Rows with an empty
// activity are skipped; mismatched lengths never fail the batch.
func (spc *SportsController) WorkspaceBulk(c *fiber.Ctx) error {
	teacher, err := middleware.GetCurrentTeacher(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Session expired. Please login again."})
	}

	date := parseOptionalDay(c.FormValue("date"))
	studentIDs := parseUintList(formValues(c, "student_id"))
	activities := formValues(c, "activity")
	levels := formValues(c, "level")
	results := formValues(c, "result")
	notes := formValues(c, "notes")

	var saved int
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		for i, sid := range studentIDs {
			activity := stringAt(activities, i)
			if activity == "" {
				continue
			}
			if err := tx.Create(&models.SportsActivity{
				StudentID:           sid,
				Activity:            activity,
				Level:               stringAt(levels, i),
				Result:              stringAt(results, i),
				Date:                date,
				Notes:               stringAt(notes, i),
				RecordedByTeacherID: &teacher.ID,
			}).Error; err != nil {
				return err
			}
			saved++
		}
		return nil
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save sports activities"})
	}

	return c.JSON(fiber.Map{"message": "Sports activities saved for class", "rows": saved})
}

func stringAt(values []string, i int) string {
	if i >= len(values) {
		return ""
	}
	return strings.TrimSpace(values[i])
}

func parseOptionalDay(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	day, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil
	}
	return &day
}

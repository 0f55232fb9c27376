package controllers

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"tesschool_go/database"
	"tesschool_go/middleware"
	"tesschool_go/models"
	"tesschool_go/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ResultController struct{}

// Submit records a single result row.
func (rc *ResultController) Submit(c *fiber.Ctx) error {
	teacher, err := middleware.GetCurrentTeacher(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Session expired. Please login again."})
	}

	var req struct {
		StudentID     uint    `json:"student_id" form:"student_id"`
		SubjectID     uint    `json:"subject_id" form:"subject_id"`
		Term          string  `json:"term" form:"term"`
		MarksObtained float64 `json:"marks_obtained" form:"marks_obtained"`
		MaxMarks      float64 `json:"max_marks" form:"max_marks"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.StudentID == 0 || req.SubjectID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "student_id and subject_id are required"})
	}
	if req.MaxMarks == 0 {
		req.MaxMarks = 100
	}
	term := strings.TrimSpace(req.Term)
	if term == "" {
		term = services.TermLabel(time.Now())
	}

	rec := models.Result{
		StudentID:         req.StudentID,
		SubjectID:         req.SubjectID,
		Term:              term,
		MarksObtained:     req.MarksObtained,
		MaxMarks:          req.MaxMarks,
		GradedByTeacherID: &teacher.ID,
	}
	if err := database.DB.Create(&rec).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save result"})
	}

	return c.JSON(fiber.Map{"message": "Result saved", "result": rec})
}

// UploadPage returns the data behind the class results grid: the filtered
// roster, the distinct class/section filter values, and up to six existing
// subject names to prefill the column headers.
func (rc *ResultController) UploadPage(c *fiber.Ctx) error {
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

	var subjects []models.Subject
	database.DB.Order("name ASC").Find(&subjects)

	subjectColumns := make([]string, 0, 6)
	for _, s := range subjects {
		if s.Name == "" {
			continue
		}
		dup := false
		for _, n := range subjectColumns {
			if n == s.Name {
				dup = true
				break
			}
		}
		if !dup {
			subjectColumns = append(subjectColumns, s.Name)
		}
		if len(subjectColumns) >= 6 {
			break
		}
	}
	for len(subjectColumns) < 6 {
		subjectColumns = append(subjectColumns, "")
	}

	return c.JSON(fiber.Map{
		"students":        students,
		"class_list":      classList,
		"section_list":    sectionList,
		"class_name":      className,
		"section":         section,
		"subject_columns": subjectColumns,
		"term":            services.TermLabel(time.Now()),
	})
}

// BulkUpload saves the class results grid. Up to six subject columns are
// named via subject_name_1..6; marks come in as marks_<student_id>_<column>.
// The term label is derived from the current month. Each submitted mark
// replaces any prior row for the same (student, subject, term); empty
// columns and empty cells are skipped without failing the batch.
func (rc *ResultController) BulkUpload(c *fiber.Ctx) error {
	teacher, err := middleware.GetCurrentTeacher(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Session expired. Please login again."})
	}

	term := services.TermLabel(time.Now())
	maxMarks, err := strconv.ParseFloat(strings.TrimSpace(c.FormValue("max_marks")), 64)
	if err != nil || maxMarks <= 0 {
		maxMarks = 100
	}

	studentIDs := parseUintList(formValues(c, "student_id"))
	if len(studentIDs) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No students submitted"})
	}

	subjectNames := make([]string, 6)
	for i := 1; i <= 6; i++ {
		subjectNames[i-1] = strings.TrimSpace(c.FormValue(fmt.Sprintf("subject_name_%d", i)))
	}

	var saved int
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		for _, sid := range studentIDs {
			for idx, subName := range subjectNames {
				if subName == "" {
					continue
				}
				raw := strings.TrimSpace(c.FormValue(fmt.Sprintf("marks_%d_%d", sid, idx+1)))
				if raw == "" {
					continue
				}
				marks, err := strconv.ParseFloat(raw, 64)
				if err != nil {
					continue
				}
				subject, err := services.GetOrCreateSubject(tx, subName)
				if err != nil {
					return err
				}
				if err := tx.Where("student_id = ? AND subject_id = ? AND term = ?", sid, subject.ID, term).
					Delete(&models.Result{}).Error; err != nil {
					return err
				}
				if err := tx.Create(&models.Result{
					StudentID:         sid,
					SubjectID:         subject.ID,
					Term:              term,
					MarksObtained:     marks,
					MaxMarks:          maxMarks,
					GradedByTeacherID: &teacher.ID,
				}).Error; err != nil {
					return err
				}
				saved++
			}
		}
		return nil
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save results"})
	}

	middleware.LogActivity(c, "CREATE", "results", 0, fiber.Map{"term": term, "rows": saved})

	return c.JSON(fiber.Map{"message": "Results saved for class", "term": term, "rows": saved})
}

// WorkspaceBulk saves one subject's scores for the parallel
// student_id[]/score[]/max_score[] lists. Rows missing either value are
// skipped; mismatched lengths never fail the batch.
func (rc *ResultController) WorkspaceBulk(c *fiber.Ctx) error {
	teacher, err := middleware.GetCurrentTeacher(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Session expired. Please login again."})
	}

	subjectID, err := strconv.ParseUint(strings.TrimSpace(c.FormValue("subject_id")), 10, 32)
	if err != nil || subjectID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "subject_id is required"})
	}
	term := strings.TrimSpace(c.FormValue("term"))
	if term == "" {
		term = services.TermLabel(time.Now())
	}

	studentIDs := parseUintList(formValues(c, "student_id"))
	scores := formValues(c, "score")
	maxScores := formValues(c, "max_score")

	var saved int
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		for i, sid := range studentIDs {
			score, ok1 := parseFloatAt(scores, i)
			maxScore, ok2 := parseFloatAt(maxScores, i)
			if !ok1 || !ok2 {
				continue
			}
			if err := tx.Where("student_id = ? AND subject_id = ? AND term = ?", sid, uint(subjectID), term).
				Delete(&models.Result{}).Error; err != nil {
				return err
			}
			if err := tx.Create(&models.Result{
				StudentID:         sid,
				SubjectID:         uint(subjectID),
				Term:              term,
				MarksObtained:     score,
				MaxMarks:          maxScore,
				GradedByTeacherID: &teacher.ID,
			}).Error; err != nil {
				return err
			}
			saved++
		}
		return nil
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save results"})
	}

	return c.JSON(fiber.Map{"message": "Results saved for class", "term": term, "rows": saved})
}

func parseFloatAt(values []string, i int) (float64, bool) {
	if i >= len(values) {
		return 0, false
	}
	raw := strings.TrimSpace(values[i])
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

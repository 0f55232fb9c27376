package controllers

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"tesschool_go/database"
	"tesschool_go/middleware"
	"tesschool_go/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type AttendanceController struct{}

const (
	AttendancePresent = "Present"
	AttendanceAbsent  = "Absent"
)

// Submit records a single attendance row for one student and date.
func (atc *AttendanceController) Submit(c *fiber.Ctx) error {
	teacher, err := middleware.GetCurrentTeacher(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Session expired. Please login again."})
	}

	var req struct {
		StudentID uint   `json:"student_id" form:"student_id"`
		Date      string `json:"date" form:"date"`
		Status    string `json:"status" form:"status"`
		SubjectID *uint  `json:"subject_id" form:"subject_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.StudentID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "student_id is required"})
	}

	day, err := parseDay(req.Date)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid date, expected YYYY-MM-DD"})
	}

	status := normalizeAttendanceStatus(req.Status)

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("student_id = ? AND date = ?", req.StudentID, day).
			Delete(&models.Attendance{}).Error; err != nil {
			return err
		}
		return tx.Create(&models.Attendance{
			StudentID:         req.StudentID,
			SubjectID:         req.SubjectID,
			Date:              day,
			Status:            status,
			MarkedByTeacherID: &teacher.ID,
		}).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save attendance"})
	}

	return c.JSON(fiber.Map{"message": "Attendance saved"})
}

// Sheet returns the data behind the monthly attendance grid: the students in
// the selected class, the days of the month, and the present-cell keys used
// to prefill checkboxes (`status_<student_id>_<date>`).
func (atc *AttendanceController) Sheet(c *fiber.Ctx) error {
	className := strings.TrimSpace(c.Query("class_name"))
	section := strings.TrimSpace(c.Query("section"))
	month, err := parseMonth(c.Query("month"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid month, expected YYYY-MM"})
	}

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

	first := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)

	days := make([]string, 0, last.Day())
	for d := 1; d <= last.Day(); d++ {
		days = append(days, time.Date(month.Year(), month.Month(), d, 0, 0, 0, 0, time.UTC).Format("2006-01-02"))
	}

	var marks []models.Attendance
	if len(students) > 0 {
		ids := make([]uint, 0, len(students))
		for _, s := range students {
			ids = append(ids, s.ID)
		}
		database.DB.Where("student_id IN ? AND date BETWEEN ? AND ?", ids, first, last).Find(&marks)
	}

	presentKeys := make(map[string]bool, len(marks))
	for _, m := range marks {
		if m.Status == AttendancePresent {
			presentKeys[fmt.Sprintf("status_%d_%s", m.StudentID, m.Date.Format("2006-01-02"))] = true
		}
	}

	return c.JSON(fiber.Map{
		"students":     students,
		"month":        first.Format("2006-01"),
		"days":         days,
		"present_keys": presentKeys,
		"class_name":   className,
		"section":      section,
	})
}

// BulkMonth replays a whole month of attendance from the sheet form. Each
// submitted student gets one row per day: Present when the checkbox key
// `status_<student_id>_<date>` was sent, Absent otherwise. Prior rows for
// each (student, date) are removed first, so resubmission replaces.
func (atc *AttendanceController) BulkMonth(c *fiber.Ctx) error {
	teacher, err := middleware.GetCurrentTeacher(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Session expired. Please login again."})
	}

	month, err := parseMonth(c.FormValue("month"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid month, expected YYYY-MM"})
	}

	studentIDs := parseUintList(formValues(c, "student_ids"))
	if len(studentIDs) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No students submitted"})
	}

	checked := make(map[string]bool)
	c.Request().PostArgs().VisitAll(func(key, _ []byte) {
		k := string(key)
		if strings.HasPrefix(k, "status_") {
			checked[k] = true
		}
	})

	first := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	daysInMonth := first.AddDate(0, 1, -1).Day()

	var saved int
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		for _, sid := range studentIDs {
			for d := 1; d <= daysInMonth; d++ {
				day := time.Date(month.Year(), month.Month(), d, 0, 0, 0, 0, time.UTC)
				status := AttendanceAbsent
				if checked[fmt.Sprintf("status_%d_%s", sid, day.Format("2006-01-02"))] {
					status = AttendancePresent
				}
				if err := tx.Where("student_id = ? AND date = ?", sid, day).
					Delete(&models.Attendance{}).Error; err != nil {
					return err
				}
				if err := tx.Create(&models.Attendance{
					StudentID:         sid,
					Date:              day,
					Status:            status,
					MarkedByTeacherID: &teacher.ID,
				}).Error; err != nil {
					return err
				}
				saved++
			}
		}
		return nil
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save attendance"})
	}

	middleware.LogActivity(c, "CREATE", "attendance", 0, fiber.Map{"month": first.Format("2006-01"), "rows": saved})

	return c.JSON(fiber.Map{"message": "Attendance saved", "rows": saved})
}

// WorkspaceBulk records one day of attendance for the parallel
// student_id[]/status[] lists the workspace page posts. Missing trailing
// statuses default to Present; the batch never fails on length mismatch.
func (atc *AttendanceController) WorkspaceBulk(c *fiber.Ctx) error {
	teacher, err := middleware.GetCurrentTeacher(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Session expired. Please login again."})
	}

	day, err := parseDay(c.FormValue("date"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid date, expected YYYY-MM-DD"})
	}

	studentIDs := parseUintList(formValues(c, "student_id"))
	statuses := formValues(c, "status")
	if len(studentIDs) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No students submitted"})
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		for i, sid := range studentIDs {
			status := AttendancePresent
			if i < len(statuses) {
				status = normalizeAttendanceStatus(statuses[i])
			}
			if err := tx.Where("student_id = ? AND date = ?", sid, day).
				Delete(&models.Attendance{}).Error; err != nil {
				return err
			}
			if err := tx.Create(&models.Attendance{
				StudentID:         sid,
				Date:              day,
				Status:            status,
				MarkedByTeacherID: &teacher.ID,
			}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save attendance"})
	}

	return c.JSON(fiber.Map{"message": "Attendance saved", "rows": len(studentIDs)})
}

// Summary returns per-student attendance totals and present counts.
func (atc *AttendanceController) Summary(c *fiber.Ctx) error {
	type summaryRow struct {
		StudentID uint   `json:"student_id"`
		RollNo    string `json:"roll_no"`
		Name      string `json:"name"`
		Total     int64  `json:"total"`
		Present   int64  `json:"present"`
	}

	var rows []summaryRow
	err := database.DB.Model(&models.Attendance{}).
		Select("attendances.student_id, students.roll_no, students.name, COUNT(*) AS total, SUM(CASE WHEN attendances.status = ? THEN 1 ELSE 0 END) AS present", AttendancePresent).
		Joins("JOIN students ON students.id = attendances.student_id").
		Group("attendances.student_id, students.roll_no, students.name").
		Order("students.roll_no ASC").
		Scan(&rows).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch attendance summary"})
	}

	return c.JSON(fiber.Map{"summary": rows})
}

func normalizeAttendanceStatus(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "absent", "a":
		return AttendanceAbsent
	default:
		return AttendancePresent
	}
}

func parseDay(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		now := time.Now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return time.Parse("2006-01-02", raw)
}

func parseMonth(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		now := time.Now().UTC()
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC), nil
	}
	return time.Parse("2006-01", raw)
}

// formValues collects every value submitted for a repeated form key,
// accepting both `key` and `key[]` spellings.
func formValues(c *fiber.Ctx, key string) []string {
	var out []string
	seen := func(k, v []byte) {
		name := string(k)
		if name == key || name == key+"[]" {
			out = append(out, string(v))
		}
	}
	c.Request().PostArgs().VisitAll(seen)
	if form, err := c.MultipartForm(); err == nil && form != nil {
		for name, vals := range form.Value {
			if name == key || name == key+"[]" {
				out = append(out, vals...)
			}
		}
	}
	return out
}

func parseUintList(raw []string) []uint {
	out := make([]uint, 0, len(raw))
	for _, v := range raw {
		n, err := strconv.ParseUint(strings.TrimSpace(v), 10, 32)
		if err != nil || n == 0 {
			continue
		}
		out = append(out, uint(n))
	}
	return out
}

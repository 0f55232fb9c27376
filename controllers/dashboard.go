package controllers

import (
	"time"

	"tesschool_go/database"
	"tesschool_go/middleware"
	"tesschool_go/models"
	"tesschool_go/services"

	"github.com/gofiber/fiber/v2"
)

type DashboardController struct{}

// StudentDashboard returns the logged-in student's records plus the
// aggregates the dashboard shows: attendance percentage, latest result and
// total fees paid for the current term.
func (dc *DashboardController) StudentDashboard(c *fiber.Ctx) error {
	student, err := middleware.GetCurrentStudent(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Session expired. Please login again."})
	}

	var attendance []models.Attendance
	database.DB.Where("student_id = ?", student.ID).Order("date DESC").Limit(60).Find(&attendance)

	var results []models.Result
	database.DB.Where("student_id = ?", student.ID).Order("id DESC").Find(&results)

	var fees []models.FeePayment
	database.DB.Where("student_id = ?", student.ID).Order("date DESC").Find(&fees)

	var sports []models.SportsActivity
	database.DB.Where("student_id = ?", student.ID).Order("id DESC").Find(&sports)

	var totalDays, presentDays int64
	database.DB.Model(&models.Attendance{}).Where("student_id = ?", student.ID).Count(&totalDays)
	database.DB.Model(&models.Attendance{}).
		Where("student_id = ? AND status = ?", student.ID, "Present").Count(&presentDays)

	attendancePct := 0.0
	if totalDays > 0 {
		attendancePct = float64(presentDays) / float64(totalDays) * 100
	}

	var lastResult *models.Result
	if len(results) > 0 {
		lastResult = &results[0]
	}

	var totalFees float64
	for _, f := range fees {
		totalFees += f.Amount
	}

	return c.JSON(fiber.Map{
		"student":            student,
		"term":               services.TermLabel(time.Now()),
		"attendance":         attendance,
		"attendance_percent": attendancePct,
		"results":            results,
		"last_result":        lastResult,
		"fees":               fees,
		"total_fees_paid":    totalFees,
		"sports":             sports,
	})
}

// TeacherDashboard returns the roster and class sections the teacher's
// workspace pages are built from.
func (dc *DashboardController) TeacherDashboard(c *fiber.Ctx) error {
	teacher, err := middleware.GetCurrentTeacher(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Session expired. Please login again."})
	}

	var students []models.Student
	database.DB.Order("roll_no ASC").Find(&students)

	var sections []models.ClassSection
	database.DB.Order("class_name ASC, section ASC").Find(&sections)

	var subjects []models.Subject
	database.DB.Order("name ASC").Find(&subjects)

	return c.JSON(fiber.Map{
		"teacher":        teacher,
		"term":           services.TermLabel(time.Now()),
		"students":       students,
		"class_sections": sections,
		"subjects":       subjects,
	})
}

// AdminDashboard returns entity counts plus the ten most recent login
// attempts.
func (dc *DashboardController) AdminDashboard(c *fiber.Ctx) error {
	admin, err := middleware.GetCurrentAdmin(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Session expired. Please login again."})
	}

	var teacherCount, studentCount, userCount, confirmedCount, pendingCount int64
	database.DB.Model(&models.Teacher{}).Count(&teacherCount)
	database.DB.Model(&models.Student{}).Count(&studentCount)
	database.DB.Model(&models.User{}).Count(&userCount)
	database.DB.Model(&models.Admission{}).
		Where("status = ?", models.AdmissionConfirmed).Count(&confirmedCount)
	database.DB.Model(&models.Admission{}).
		Where("status = ?", models.AdmissionPending).Count(&pendingCount)

	var recentLogins []models.LoginAudit
	database.DB.Order("timestamp DESC").Limit(10).Find(&recentLogins)

	return c.JSON(fiber.Map{
		"admin": admin,
		"counts": fiber.Map{
			"teachers":             teacherCount,
			"students":             studentCount,
			"users":                userCount,
			"confirmed_admissions": confirmedCount,
			"pending_admissions":   pendingCount,
		},
		"recent_logins": recentLogins,
	})
}

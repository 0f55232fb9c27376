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
	"gorm.io/gorm"
)

type StudentController struct{}

// studentRow is the flattened shape the admin list and exports use,
// regardless of whether the source is the Admission or Student table.
type studentRow struct {
	ID        uint   `json:"id"`
	RollNo    string `json:"roll_no"`
	Name      string `json:"name"`
	ClassName string `json:"class_name"`
	Section   string `json:"section"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	Address   string `json:"address"`
}

// List returns a page of students for the admin console. By default rows
// come from confirmed admissions (use_admissions=1); admissions_only=1 keeps
// only legacy Student rows that have a confirmed admission behind them.
func (sc *StudentController) List(c *fiber.Ctx) error {
	page := utils.ParsePage(c.Query("page", "1"))
	q := strings.TrimSpace(c.Query("q"))
	useAdmissions := c.Query("use_admissions", "1") != "0"
	admissionsOnly := c.Query("admissions_only") == "1"

	query := sc.listQuery(q, useAdmissions, admissionsOnly)

	var total int64
	query.Count(&total)
	pagination := utils.NewPagination(page, total)

	var rows []studentRow
	if err := query.Offset(pagination.Offset()).Limit(pagination.PerPage).Scan(&rows).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch students"})
	}

	return c.JSON(fiber.Map{
		"students":   rows,
		"pagination": pagination,
		"q":          q,
	})
}

func (sc *StudentController) listQuery(q string, useAdmissions, admissionsOnly bool) *gorm.DB {
	like := "%" + strings.ToLower(q) + "%"

	if useAdmissions && !admissionsOnly {
		query := database.DB.Model(&models.Admission{}).
			Select("id, roll_no, name, class_name, section, phone, email, address").
			Where("status = ?", models.AdmissionConfirmed).
			Order("roll_no ASC")
		if q != "" {
			query = query.Where("LOWER(roll_no) LIKE ? OR LOWER(name) LIKE ? OR LOWER(email) LIKE ?", like, like, like)
		}
		return query
	}

	query := database.DB.Model(&models.Student{}).
		Select("students.id, students.roll_no, students.name, students.class_name, students.section, students.phone, students.email, students.address").
		Order("students.roll_no ASC")
	if admissionsOnly {
		query = query.Joins("JOIN admissions ON admissions.roll_no = students.roll_no AND admissions.status = ?", models.AdmissionConfirmed)
	}
	if q != "" {
		query = query.Where("LOWER(students.roll_no) LIKE ? OR LOWER(students.name) LIKE ? OR LOWER(students.email) LIKE ?", like, like, like)
	}
	return query
}

var studentExportHeader = []string{"roll_no", "name", "class_name", "section", "phone", "email", "address"}

func (sc *StudentController) exportRows(c *fiber.Ctx) ([][]string, error) {
	q := strings.TrimSpace(c.Query("q"))
	useAdmissions := c.Query("use_admissions", "1") != "0"
	admissionsOnly := c.Query("admissions_only") == "1"

	var rows []studentRow
	if err := sc.listQuery(q, useAdmissions, admissionsOnly).Scan(&rows).Error; err != nil {
		return nil, err
	}

	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, []string{
			r.RollNo,
			r.Name,
			r.ClassName,
			r.Section,
			r.Phone,
			r.Email,
			strings.ReplaceAll(r.Address, "\n", " "),
		})
	}
	return records, nil
}

// Export streams the current student filter as CSV.
func (sc *StudentController) Export(c *fiber.Ctx) error {
	records, err := sc.exportRows(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch students"})
	}
	return sendCSV(c, "students.csv", studentExportHeader, records)
}

// ExportXLSX streams the current student filter as an Excel workbook.
func (sc *StudentController) ExportXLSX(c *fiber.Ctx) error {
	records, err := sc.exportRows(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch students"})
	}
	return sendXLSX(c, "students.xlsx", "Students", studentExportHeader, records)
}

// CreateStudentRequest maps the teacher's add-student form.
type CreateStudentRequest struct {
	RollNo    string `json:"roll_no" form:"roll_no"`
	Name      string `json:"name" form:"name"`
	ClassName string `json:"class_name" form:"class_name"`
	Section   string `json:"section" form:"section"`
	Phone     string `json:"phone" form:"phone"`
	Email     string `json:"email" form:"email"`
	Address   string `json:"address" form:"address"`
}

// Create lets a teacher register a student directly, bypassing admissions.
// The generated initial password is returned once so it can be shared.
func (sc *StudentController) Create(c *fiber.Ctx) error {
	var req CreateStudentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	rollNo := strings.TrimSpace(req.RollNo)
	name := strings.TrimSpace(req.Name)
	if rollNo == "" || name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Roll No and Name are required"})
	}

	var existingStudent models.Student
	if err := database.DB.Where("roll_no = ?", rollNo).First(&existingStudent).Error; err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "A student with this Roll No already exists"})
	}
	var existingUser models.User
	if err := database.DB.Where("username = ?", rollNo).First(&existingUser).Error; err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "A user with this Roll No already exists"})
	}

	password := utils.GenerateInitialPassword(name, strings.TrimSpace(req.Phone))

	var student *models.Student
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var txErr error
		student, _, txErr = services.EnsureStudentIdentity(tx, services.StudentProfile{
			RollNo:    rollNo,
			Name:      name,
			ClassName: strings.TrimSpace(req.ClassName),
			Section:   strings.TrimSpace(req.Section),
			Phone:     strings.TrimSpace(req.Phone),
			Email:     strings.TrimSpace(req.Email),
			Address:   strings.TrimSpace(req.Address),
		}, password)
		return txErr
	})
	if err != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Failed to create student (possible duplicate Roll No).",
		})
	}

	middleware.LogActivity(c, "CREATE", "students", student.ID, fiber.Map{"roll_no": rollNo})

	return c.JSON(fiber.Map{
		"message":          "Student created",
		"student":          student,
		"initial_password": password,
	})
}

// Get returns one student by id.
func (sc *StudentController) Get(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid student ID"})
	}
	var student models.Student
	if err := database.DB.First(&student, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Student not found"})
	}
	return c.JSON(fiber.Map{"student": student})
}

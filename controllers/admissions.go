package controllers

import (
	"strconv"
	"strings"
	"time"

	"tesschool_go/database"
	"tesschool_go/middleware"
	"tesschool_go/models"
	"tesschool_go/services"
	"tesschool_go/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type AdmissionController struct{}

var validate = validator.New()

// ApplyRequest maps the public admission form. The public site historically
// posts studentName/fatherPhone; the plain field names are accepted too.
type ApplyRequest struct {
	StudentName string `json:"studentName" form:"studentName"`
	Name        string `json:"name" form:"name"`
	Class       string `json:"class" form:"class"`
	ClassName   string `json:"class_name" form:"class_name"`
	Section     string `json:"section" form:"section"`
	FatherPhone string `json:"fatherPhone" form:"fatherPhone"`
	Phone       string `json:"phone" form:"phone"`
	Email       string `json:"email" form:"email" validate:"omitempty,email"`
	Address     string `json:"address" form:"address"`
	Status      string `json:"status" form:"status"`
}

// PublicApply accepts an online admission application and stores it as a
// pending Admission. An initial password is generated whenever a phone
// number is present.
func (ac *AdmissionController) PublicApply(c *fiber.Ctx) error {
	var req ApplyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "invalid request body",
		})
	}

	name := strings.TrimSpace(firstNonEmpty(req.StudentName, req.Name))
	if name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "studentName (name) is required",
		})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "invalid email address",
		})
	}

	status := strings.ToLower(strings.TrimSpace(req.Status))
	if !utils.IsValidAdmissionStatus(status) {
		status = models.AdmissionPending
	}

	phone := strings.TrimSpace(firstNonEmpty(req.FatherPhone, req.Phone))
	var genPassword string
	if phone != "" {
		genPassword = utils.GenerateInitialPassword(name, phone)
	}

	adm := models.Admission{
		Status:        status,
		AdmissionDate: time.Now().UTC(),
		Name:          name,
		ClassName:     strings.TrimSpace(firstNonEmpty(req.Class, req.ClassName)),
		Section:       strings.TrimSpace(req.Section),
		Phone:         phone,
		Email:         strings.TrimSpace(req.Email),
		Address:       strings.TrimSpace(req.Address),
		Password:      genPassword,
	}

	if err := database.DB.Create(&adm).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "failed to save application",
		})
	}

	return c.JSON(fiber.Map{
		"success":      true,
		"admission_id": adm.ID,
	})
}

// List returns a page of admissions with optional q/status filters.
func (ac *AdmissionController) List(c *fiber.Ctx) error {
	page := utils.ParsePage(c.Query("page", "1"))
	q := strings.TrimSpace(c.Query("q"))
	status := strings.TrimSpace(c.Query("status"))

	query := database.DB.Model(&models.Admission{})
	if q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(roll_no) LIKE ?", like, like)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	query.Count(&total)
	pagination := utils.NewPagination(page, total)

	var rows []models.Admission
	if err := query.Order("admission_date DESC").
		Offset(pagination.Offset()).Limit(pagination.PerPage).Find(&rows).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch admissions"})
	}

	return c.JSON(fiber.Map{
		"admissions": rows,
		"pagination": pagination,
		"q":          q,
		"status":     status,
	})
}

// AdmissionRequest maps the admin create/edit form.
type AdmissionRequest struct {
	Name      string `json:"name" form:"name"`
	ClassName string `json:"class_name" form:"class_name"`
	Section   string `json:"section" form:"section"`
	Phone     string `json:"phone" form:"phone"`
	Email     string `json:"email" form:"email" validate:"omitempty,email"`
	Address   string `json:"address" form:"address"`
	Status    string `json:"status" form:"status"`
	RollNo    string `json:"roll_no" form:"roll_no"`
}

// Create stores an admission entered by an admin, optionally confirming it
// immediately when the form says so.
func (ac *AdmissionController) Create(c *fiber.Ctx) error {
	var req AdmissionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Name is required"})
	}
	status := strings.TrimSpace(req.Status)
	if status == "" {
		status = models.AdmissionPending
	}
	if !utils.IsValidAdmissionStatus(status) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid status"})
	}

	rollNo := strings.TrimSpace(req.RollNo)
	if rollNo != "" {
		var existing models.Admission
		if err := database.DB.Where("roll_no = ?", rollNo).First(&existing).Error; err == nil {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Roll No already exists in another admission. Please use a unique Roll No.",
			})
		}
	}

	phone := strings.TrimSpace(req.Phone)
	var genPassword string
	if phone != "" {
		genPassword = utils.GenerateInitialPassword(name, phone)
	}

	adm := models.Admission{
		Status:        status,
		AdmissionDate: time.Now().UTC(),
		Name:          name,
		ClassName:     strings.TrimSpace(req.ClassName),
		Section:       strings.TrimSpace(req.Section),
		Phone:         phone,
		Email:         strings.TrimSpace(req.Email),
		Address:       strings.TrimSpace(req.Address),
		Password:      genPassword,
	}
	if rollNo != "" {
		adm.RollNo = &rollNo
	}

	var warning string
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&adm).Error; err != nil {
			return err
		}
		var txErr error
		warning, txErr = services.LinkConfirmedAdmission(tx, &adm)
		return txErr
	})
	if err != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Failed to save admission (possible duplicate Roll No).",
		})
	}

	middleware.LogActivity(c, "CREATE", "admissions", adm.ID, fiber.Map{"name": adm.Name, "status": adm.Status})

	resp := fiber.Map{"message": "Admission saved", "admission": adm}
	if warning != "" {
		resp["warning"] = warning
	}
	return c.JSON(resp)
}

// Get returns one admission.
func (ac *AdmissionController) Get(c *fiber.Ctx) error {
	adm, err := ac.find(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"admission": adm})
}

// Update edits an admission and re-runs the confirmation linkage when the
// status lands on confirmed.
func (ac *AdmissionController) Update(c *fiber.Ctx) error {
	adm, err := ac.find(c)
	if err != nil {
		return err
	}

	var req AdmissionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Name is required"})
	}
	status := strings.TrimSpace(req.Status)
	if status == "" {
		status = models.AdmissionPending
	}
	if !utils.IsValidAdmissionStatus(status) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid status"})
	}

	rollNo := strings.TrimSpace(req.RollNo)
	if rollNo != "" {
		var dup models.Admission
		if err := database.DB.Where("roll_no = ? AND id <> ?", rollNo, adm.ID).First(&dup).Error; err == nil {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Roll No already exists in another admission. Please use a unique Roll No.",
			})
		}
	}

	adm.Name = name
	adm.ClassName = strings.TrimSpace(req.ClassName)
	adm.Section = strings.TrimSpace(req.Section)
	adm.Phone = strings.TrimSpace(req.Phone)
	adm.Email = strings.TrimSpace(req.Email)
	adm.Address = strings.TrimSpace(req.Address)
	adm.Status = status
	if rollNo != "" {
		adm.RollNo = &rollNo
	} else {
		adm.RollNo = nil
	}
	// Backfill the initial password once a phone number is known
	if strings.TrimSpace(adm.Password) == "" && adm.Phone != "" {
		adm.Password = utils.GenerateInitialPassword(adm.Name, adm.Phone)
	}

	var warning string
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(adm).Error; err != nil {
			return err
		}
		var txErr error
		warning, txErr = services.LinkConfirmedAdmission(tx, adm)
		return txErr
	})
	if err != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Failed to update admission (possible duplicate Roll No).",
		})
	}

	middleware.LogActivity(c, "UPDATE", "admissions", adm.ID, fiber.Map{"status": adm.Status})

	resp := fiber.Map{"message": "Admission updated", "admission": adm}
	if warning != "" {
		resp["warning"] = warning
	}
	return c.JSON(resp)
}

// UpdateStatus runs the status-transition workflow. Confirming ensures the
// Student and unified User rows exist; confirming without a roll number
// surfaces a warning and creates nothing.
func (ac *AdmissionController) UpdateStatus(c *fiber.Ctx) error {
	adm, err := ac.find(c)
	if err != nil {
		return err
	}

	var req struct {
		Status string `json:"status" form:"status"`
		RollNo string `json:"roll_no" form:"roll_no"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	status := strings.TrimSpace(req.Status)
	if !utils.IsValidAdmissionStatus(status) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid status"})
	}

	rollNo := strings.TrimSpace(req.RollNo)
	if rollNo == "" && adm.RollNo != nil {
		rollNo = *adm.RollNo
	}
	if rollNo != "" {
		var dup models.Admission
		if err := database.DB.Where("roll_no = ? AND id <> ?", rollNo, adm.ID).First(&dup).Error; err == nil {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Roll No already exists in another admission. Please use a unique Roll No.",
			})
		}
		adm.RollNo = &rollNo
	}
	adm.Status = status
	if status == models.AdmissionConfirmed && strings.TrimSpace(adm.Password) == "" {
		adm.Password = utils.GenerateInitialPassword(adm.Name, adm.Phone)
	}

	var warning string
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(adm).Error; err != nil {
			return err
		}
		var txErr error
		warning, txErr = services.LinkConfirmedAdmission(tx, adm)
		return txErr
	})
	if err != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Failed to update status (possible duplicate Roll No).",
		})
	}

	middleware.LogActivity(c, "UPDATE", "admissions", adm.ID, fiber.Map{"status": adm.Status})

	resp := fiber.Map{"message": "Admission status updated", "admission": adm}
	if warning != "" {
		resp["warning"] = warning
	}
	return c.JSON(resp)
}

// Delete removes an admission record.
func (ac *AdmissionController) Delete(c *fiber.Ctx) error {
	adm, err := ac.find(c)
	if err != nil {
		return err
	}
	if err := database.DB.Delete(adm).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete admission"})
	}
	middleware.LogActivity(c, "DELETE", "admissions", adm.ID, nil)
	return c.JSON(fiber.Map{"message": "Admission deleted"})
}

// Export streams all admissions matching the current filter as CSV.
func (ac *AdmissionController) Export(c *fiber.Ctx) error {
	q := strings.TrimSpace(c.Query("q"))
	status := strings.TrimSpace(c.Query("status"))

	query := database.DB.Model(&models.Admission{})
	if q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(roll_no) LIKE ?", like, like)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var rows []models.Admission
	if err := query.Order("admission_date DESC").Find(&rows).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch admissions"})
	}

	header := []string{"id", "status", "admission_date", "roll_no", "name", "class_name", "section", "phone", "email", "address", "student_id"}
	records := make([][]string, 0, len(rows))
	for _, a := range rows {
		rollNo := ""
		if a.RollNo != nil {
			rollNo = *a.RollNo
		}
		studentID := ""
		if a.StudentID != nil {
			studentID = strconv.FormatUint(uint64(*a.StudentID), 10)
		}
		records = append(records, []string{
			strconv.FormatUint(uint64(a.ID), 10),
			a.Status,
			a.AdmissionDate.Format("2006-01-02 15:04:05"),
			rollNo,
			a.Name,
			a.ClassName,
			a.Section,
			a.Phone,
			a.Email,
			strings.ReplaceAll(a.Address, "\n", " "),
			studentID,
		})
	}

	return sendCSV(c, "admissions.csv", header, records)
}

func (ac *AdmissionController) find(c *fiber.Ctx) (*models.Admission, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid admission ID"})
	}
	var adm models.Admission
	if err := database.DB.First(&adm, uint(id)).Error; err != nil {
		return nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Admission not found"})
	}
	return &adm, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

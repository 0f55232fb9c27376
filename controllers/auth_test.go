package controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"tesschool_go/database"
	"tesschool_go/models"
	"tesschool_go/utils"
)

func jsonRequest(t *testing.T, method, path string, payload interface{}) *http.Request {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to marshal payload: %v", err)
	}
	req, err := http.NewRequest(method, path, bytes.NewReader(body))
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return req
}

func seedConfirmedAdmission(t *testing.T, rollNo, password string) models.Admission {
	t.Helper()
	adm := models.Admission{
		Status:        models.AdmissionConfirmed,
		AdmissionDate: time.Now().UTC(),
		RollNo:        &rollNo,
		Name:          "Aarav Shah",
		ClassName:     "10",
		Section:       "A",
		Phone:         "9998887776",
		Password:      password,
	}
	if err := database.DB.Create(&adm).Error; err != nil {
		t.Fatalf("failed to seed admission: %v", err)
	}
	return adm
}

func TestStudentLoginViaConfirmedAdmission(t *testing.T) {
	app := newTestApp(t)
	seedConfirmedAdmission(t, "2024001", "TESAA76")

	resp, body := doRequest(t, app, jsonRequest(t, "POST", "/student/login", map[string]string{
		"roll_no":  "2024001",
		"password": "TESAA76",
	}))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d (%v)", resp.StatusCode, body)
	}
	if body["token"] == nil || body["token"] == "" {
		t.Fatal("expected a session token")
	}
	if body["role"] != "student" {
		t.Fatalf("expected student role, got %v", body["role"])
	}

	// Login lazily materializes the Student and unified User rows
	var student models.Student
	if err := database.DB.Where("roll_no = ?", "2024001").First(&student).Error; err != nil {
		t.Fatalf("expected Student row after login: %v", err)
	}
	var user models.User
	if err := database.DB.Where("role = ? AND username = ?", models.RoleStudent, "2024001").First(&user).Error; err != nil {
		t.Fatalf("expected User row after login: %v", err)
	}
	if student.PasswordHash != user.PasswordHash {
		t.Fatal("expected identical hashes on Student and User")
	}

	// Exactly one audit row, marked successful
	var audits []models.LoginAudit
	database.DB.Where("user_type = ? AND username = ?", "student", "2024001").Find(&audits)
	if len(audits) != 1 || !audits[0].Success {
		t.Fatalf("expected one successful audit row, got %+v", audits)
	}
}

func TestStudentLoginSecondTimeIsIdempotent(t *testing.T) {
	app := newTestApp(t)
	seedConfirmedAdmission(t, "2024002", "TESAA76")

	for i := 0; i < 2; i++ {
		resp, body := doRequest(t, app, jsonRequest(t, "POST", "/student/login", map[string]string{
			"roll_no":  "2024002",
			"password": "TESAA76",
		}))
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("login %d: expected 200, got %d (%v)", i+1, resp.StatusCode, body)
		}
	}

	var studentCount, userCount, auditCount int64
	database.DB.Model(&models.Student{}).Count(&studentCount)
	database.DB.Model(&models.User{}).Count(&userCount)
	database.DB.Model(&models.LoginAudit{}).Count(&auditCount)
	if studentCount != 1 || userCount != 1 || auditCount != 1 {
		t.Fatalf("expected 1 student, 1 user, 1 audit row; got %d/%d/%d", studentCount, userCount, auditCount)
	}
}

func TestStudentLoginPendingAdmission(t *testing.T) {
	app := newTestApp(t)

	rollNo := "2024003"
	database.DB.Create(&models.Admission{
		Status:        models.AdmissionPending,
		AdmissionDate: time.Now().UTC(),
		RollNo:        &rollNo,
		Name:          "Pending Person",
		Password:      "TESPP12",
	})

	resp, body := doRequest(t, app, jsonRequest(t, "POST", "/student/login", map[string]string{
		"roll_no":  rollNo,
		"password": "TESPP12",
	}))
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
	if body["error"] != "Your admission is not confirmed yet. Please contact the school." {
		t.Fatalf("expected the not-confirmed message, got %v", body["error"])
	}

	var studentCount int64
	database.DB.Model(&models.Student{}).Count(&studentCount)
	if studentCount != 0 {
		t.Fatal("pending admission must not create a Student")
	}
}

func TestStudentLoginWrongPassword(t *testing.T) {
	app := newTestApp(t)
	seedConfirmedAdmission(t, "2024004", "TESAA76")

	resp, body := doRequest(t, app, jsonRequest(t, "POST", "/student/login", map[string]string{
		"roll_no":  "2024004",
		"password": "wrong",
	}))
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
	if body["error"] != "Invalid roll number or password" {
		t.Fatalf("expected the uniform invalid message, got %v", body["error"])
	}

	var audit models.LoginAudit
	if err := database.DB.Where("user_type = ? AND username = ?", "student", "2024004").First(&audit).Error; err != nil {
		t.Fatalf("expected an audit row for the failed attempt: %v", err)
	}
	if audit.Success {
		t.Fatal("expected the audit row to record failure")
	}
}

func TestStudentLoginLegacyUserFallback(t *testing.T) {
	app := newTestApp(t)

	hash, err := utils.HashPassword("legacy123")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	database.DB.Create(&models.User{
		Role:         models.RoleStudent,
		Username:     "2023050",
		Name:         "Legacy Student",
		PasswordHash: hash,
	})

	resp, body := doRequest(t, app, jsonRequest(t, "POST", "/student/login", map[string]string{
		"roll_no":  "2023050",
		"password": "legacy123",
	}))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d (%v)", resp.StatusCode, body)
	}

	// The fallback materializes the Student mirror from the User row
	var student models.Student
	if err := database.DB.Where("roll_no = ?", "2023050").First(&student).Error; err != nil {
		t.Fatalf("expected Student row after legacy login: %v", err)
	}
	if student.PasswordHash != hash {
		t.Fatal("expected the hash to be copied, not re-hashed")
	}
}

func TestTeacherLoginMirrorsTeacherRow(t *testing.T) {
	app := newTestApp(t)

	hash, err := utils.HashPassword("teachpass")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	database.DB.Create(&models.User{
		Role:         models.RoleTeacher,
		Username:     "teacher1",
		Name:         "Ms. Patel",
		PasswordHash: hash,
	})

	resp, body := doRequest(t, app, jsonRequest(t, "POST", "/teacher/login", map[string]string{
		"username": "teacher1",
		"password": "teachpass",
	}))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d (%v)", resp.StatusCode, body)
	}

	var teacher models.Teacher
	if err := database.DB.Where("username = ?", "teacher1").First(&teacher).Error; err != nil {
		t.Fatalf("expected Teacher mirror after login: %v", err)
	}
	if teacher.PasswordHash != hash {
		t.Fatal("expected the mirror to copy the hash")
	}
}

func TestAdminLoginInvalidCredentials(t *testing.T) {
	app := newTestApp(t)

	resp, body := doRequest(t, app, jsonRequest(t, "POST", "/admin/login", map[string]string{
		"username": "nobody",
		"password": "nothing",
	}))
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
	if body["error"] != "Invalid username or password" {
		t.Fatalf("expected the uniform invalid message, got %v", body["error"])
	}
}

func TestProtectedRouteWithoutSession(t *testing.T) {
	app := newTestApp(t)

	req, _ := http.NewRequest("GET", "/admin/dashboard", nil)
	resp, _ := doRequest(t, app, req)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a session, got %d", resp.StatusCode)
	}
}

package controllers_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"tesschool_go/database"
	"tesschool_go/middleware"
	"tesschool_go/models"
	"tesschool_go/utils"
)

func adminToken(t *testing.T) string {
	t.Helper()

	hash, err := utils.HashPassword("adminpass")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	admin := models.Admin{Username: "admin", Name: "School Admin", PasswordHash: hash}
	if err := database.DB.Create(&admin).Error; err != nil {
		t.Fatalf("failed to seed admin: %v", err)
	}

	token, err := middleware.GenerateSessionToken(models.RoleAdmin, admin.ID, admin.Username)
	if err != nil {
		t.Fatalf("failed to generate session token: %v", err)
	}
	return token
}

func TestPublicApplyCreatesPendingAdmission(t *testing.T) {
	app := newTestApp(t)

	resp, body := doRequest(t, app, jsonRequest(t, "POST", "/admissions/apply", map[string]string{
		"studentName": "Aarav Shah",
		"phone":       "9998887776",
	}))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d (%v)", resp.StatusCode, body)
	}
	if body["success"] != true {
		t.Fatalf("expected success, got %v", body)
	}
	if body["admission_id"] == nil {
		t.Fatal("expected an admission_id")
	}

	var adm models.Admission
	if err := database.DB.First(&adm, uint(body["admission_id"].(float64))).Error; err != nil {
		t.Fatalf("expected the admission row: %v", err)
	}
	if adm.Status != models.AdmissionPending {
		t.Fatalf("expected pending status, got %q", adm.Status)
	}
	if adm.Password == "" {
		t.Fatal("expected a generated password when a phone number is present")
	}
}

func TestPublicApplyMissingName(t *testing.T) {
	app := newTestApp(t)

	resp, body := doRequest(t, app, jsonRequest(t, "POST", "/admissions/apply", map[string]string{
		"phone": "9998887776",
	}))
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if body["success"] != false {
		t.Fatalf("expected success=false, got %v", body)
	}
	if body["error"] != "studentName (name) is required" {
		t.Fatalf("unexpected error message: %v", body["error"])
	}

	var count int64
	database.DB.Model(&models.Admission{}).Count(&count)
	if count != 0 {
		t.Fatal("validation failure must not write a row")
	}
}

func TestPublicApplyInvalidStatusFallsBackToPending(t *testing.T) {
	app := newTestApp(t)

	resp, body := doRequest(t, app, jsonRequest(t, "POST", "/admissions/apply", map[string]string{
		"studentName": "Priya Nair",
		"status":      "approved",
	}))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d (%v)", resp.StatusCode, body)
	}

	var adm models.Admission
	database.DB.First(&adm, uint(body["admission_id"].(float64)))
	if adm.Status != models.AdmissionPending {
		t.Fatalf("unrecognized status must fall back to pending, got %q", adm.Status)
	}
}

func TestConfirmWithoutRollNoWarnsAndCreatesNothing(t *testing.T) {
	app := newTestApp(t)
	token := adminToken(t)

	adm := models.Admission{
		Status:        models.AdmissionPending,
		AdmissionDate: time.Now().UTC(),
		Name:          "Aarav Shah",
		Phone:         "9998887776",
	}
	if err := database.DB.Create(&adm).Error; err != nil {
		t.Fatalf("failed to seed admission: %v", err)
	}

	req := jsonRequest(t, "POST", fmt.Sprintf("/admin/admissions/%d/status", adm.ID), map[string]string{
		"status": "confirmed",
	})
	req.Header.Set("Authorization", "Bearer "+token)

	resp, body := doRequest(t, app, req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d (%v)", resp.StatusCode, body)
	}
	if body["warning"] == nil || body["warning"] == "" {
		t.Fatalf("expected a warning for confirm without roll number, got %v", body)
	}

	var studentCount int64
	database.DB.Model(&models.Student{}).Count(&studentCount)
	if studentCount != 0 {
		t.Fatal("confirming without a roll number must not create a Student")
	}
}

func TestConfirmWithRollNoLinksStudent(t *testing.T) {
	app := newTestApp(t)
	token := adminToken(t)

	adm := models.Admission{
		Status:        models.AdmissionPending,
		AdmissionDate: time.Now().UTC(),
		Name:          "Aarav Shah",
		Phone:         "9998887776",
	}
	if err := database.DB.Create(&adm).Error; err != nil {
		t.Fatalf("failed to seed admission: %v", err)
	}

	req := jsonRequest(t, "POST", fmt.Sprintf("/admin/admissions/%d/status", adm.ID), map[string]string{
		"status":  "confirmed",
		"roll_no": "2024055",
	})
	req.Header.Set("Authorization", "Bearer "+token)

	resp, body := doRequest(t, app, req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d (%v)", resp.StatusCode, body)
	}
	if body["warning"] != nil {
		t.Fatalf("unexpected warning: %v", body["warning"])
	}

	var student models.Student
	if err := database.DB.Where("roll_no = ?", "2024055").First(&student).Error; err != nil {
		t.Fatalf("expected a Student row: %v", err)
	}
	var user models.User
	if err := database.DB.Where("role = ? AND username = ?", models.RoleStudent, "2024055").First(&user).Error; err != nil {
		t.Fatalf("expected a User row: %v", err)
	}
	if student.PasswordHash != user.PasswordHash {
		t.Fatal("expected identical hashes across Student and User")
	}

	var linked models.Admission
	database.DB.First(&linked, adm.ID)
	if linked.StudentID == nil || *linked.StudentID != student.ID {
		t.Fatal("expected admission to be linked to the student")
	}
	if linked.Password == "" {
		t.Fatal("expected a generated password on confirmation")
	}
}

func TestAdmissionListPagination(t *testing.T) {
	app := newTestApp(t)
	token := adminToken(t)

	for i := 0; i < 30; i++ {
		database.DB.Create(&models.Admission{
			Status:        models.AdmissionPending,
			AdmissionDate: time.Now().UTC().Add(-time.Duration(i) * time.Hour),
			Name:          fmt.Sprintf("Applicant %02d", i),
		})
	}

	req, _ := http.NewRequest("GET", "/admin/admissions?page=1", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, body := doRequest(t, app, req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	admissions := body["admissions"].([]interface{})
	if len(admissions) != 25 {
		t.Fatalf("expected 25 rows on page 1, got %d", len(admissions))
	}

	pagination := body["pagination"].(map[string]interface{})
	if pagination["pages"].(float64) != 2 {
		t.Fatalf("expected 2 pages for 30 rows, got %v", pagination["pages"])
	}
	if pagination["total"].(float64) != 30 {
		t.Fatalf("expected total 30, got %v", pagination["total"])
	}

	req2, _ := http.NewRequest("GET", "/admin/admissions?page=2", nil)
	req2.Header.Set("Authorization", "Bearer "+token)
	_, body2 := doRequest(t, app, req2)
	if got := len(body2["admissions"].([]interface{})); got != 5 {
		t.Fatalf("expected 5 rows on page 2, got %d", got)
	}
}

func TestAdmissionExportCSV(t *testing.T) {
	app := newTestApp(t)
	token := adminToken(t)

	rollNo := "2024060"
	database.DB.Create(&models.Admission{
		Status:        models.AdmissionConfirmed,
		AdmissionDate: time.Now().UTC(),
		RollNo:        &rollNo,
		Name:          "Export Me",
	})

	req, _ := http.NewRequest("GET", "/admin/admissions/export", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Content-Disposition"); got != "attachment; filename=admissions.csv" {
		t.Fatalf("unexpected Content-Disposition: %q", got)
	}
}

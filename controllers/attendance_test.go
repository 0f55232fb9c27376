package controllers_test

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"tesschool_go/database"
	"tesschool_go/middleware"
	"tesschool_go/models"
	"tesschool_go/utils"
)

func teacherToken(t *testing.T) (*models.Teacher, string) {
	t.Helper()

	hash, err := utils.HashPassword("teachpass")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	teacher := models.Teacher{Username: "teacher1", Name: "Ms. Patel", PasswordHash: hash}
	if err := database.DB.Create(&teacher).Error; err != nil {
		t.Fatalf("failed to seed teacher: %v", err)
	}

	token, err := middleware.GenerateSessionToken(models.RoleTeacher, teacher.ID, teacher.Username)
	if err != nil {
		t.Fatalf("failed to generate session token: %v", err)
	}
	return &teacher, token
}

func seedStudent(t *testing.T, rollNo string) models.Student {
	t.Helper()

	hash, err := utils.HashPassword("password123")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	student := models.Student{RollNo: rollNo, Name: "Student " + rollNo, PasswordHash: hash, ClassName: "10", Section: "A"}
	if err := database.DB.Create(&student).Error; err != nil {
		t.Fatalf("failed to seed student: %v", err)
	}
	return student
}

func formRequest(t *testing.T, path, token string, form url.Values) *http.Request {
	t.Helper()
	req, err := http.NewRequest("POST", path, strings.NewReader(form.Encode()))
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestMonthlyAttendanceBulkReplaces(t *testing.T) {
	app := newTestApp(t)
	_, token := teacherToken(t)
	student := seedStudent(t, "2024001")

	form := url.Values{}
	form.Set("month", "2026-02")
	form.Add("student_ids", fmt.Sprint(student.ID))
	form.Set(fmt.Sprintf("status_%d_2026-02-02", student.ID), "on")
	form.Set(fmt.Sprintf("status_%d_2026-02-03", student.ID), "on")

	// First submission fills the whole month
	resp, body := doRequest(t, app, formRequest(t, "/teacher/attendance/bulk", token, form))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d (%v)", resp.StatusCode, body)
	}

	var total int64
	database.DB.Model(&models.Attendance{}).Where("student_id = ?", student.ID).Count(&total)
	if total != 28 {
		t.Fatalf("expected one row per day of February, got %d", total)
	}

	var presentCount int64
	database.DB.Model(&models.Attendance{}).
		Where("student_id = ? AND status = ?", student.ID, "Present").Count(&presentCount)
	if presentCount != 2 {
		t.Fatalf("expected 2 present days, got %d", presentCount)
	}

	// Resubmission with different checkboxes replaces, never duplicates
	form2 := url.Values{}
	form2.Set("month", "2026-02")
	form2.Add("student_ids", fmt.Sprint(student.ID))
	form2.Set(fmt.Sprintf("status_%d_2026-02-02", student.ID), "on")

	resp, body = doRequest(t, app, formRequest(t, "/teacher/attendance/bulk", token, form2))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 on resubmission, got %d (%v)", resp.StatusCode, body)
	}

	database.DB.Model(&models.Attendance{}).Where("student_id = ?", student.ID).Count(&total)
	if total != 28 {
		t.Fatalf("expected rows to be replaced not duplicated, got %d", total)
	}

	database.DB.Model(&models.Attendance{}).
		Where("student_id = ? AND status = ?", student.ID, "Present").Count(&presentCount)
	if presentCount != 1 {
		t.Fatalf("expected 1 present day after resubmission, got %d", presentCount)
	}
}

func TestWorkspaceAttendanceBulkDefaultsMissingStatuses(t *testing.T) {
	app := newTestApp(t)
	_, token := teacherToken(t)
	first := seedStudent(t, "2024010")
	second := seedStudent(t, "2024011")

	form := url.Values{}
	form.Set("date", "2026-03-02")
	form.Add("student_id", fmt.Sprint(first.ID))
	form.Add("student_id", fmt.Sprint(second.ID))
	form.Add("status", "Absent")
	// No status submitted for the second student

	resp, body := doRequest(t, app, formRequest(t, "/teacher/workspace/attendance/bulk", token, form))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d (%v)", resp.StatusCode, body)
	}

	var firstRow, secondRow models.Attendance
	if err := database.DB.Where("student_id = ?", first.ID).First(&firstRow).Error; err != nil {
		t.Fatalf("expected a row for the first student: %v", err)
	}
	if err := database.DB.Where("student_id = ?", second.ID).First(&secondRow).Error; err != nil {
		t.Fatalf("expected a row for the second student: %v", err)
	}
	if firstRow.Status != "Absent" {
		t.Fatalf("expected Absent for the first student, got %q", firstRow.Status)
	}
	if secondRow.Status != "Present" {
		t.Fatalf("missing trailing status must default to Present, got %q", secondRow.Status)
	}
}

func TestWorkspaceResultsBulkSkipsIncompleteRows(t *testing.T) {
	app := newTestApp(t)
	_, token := teacherToken(t)
	first := seedStudent(t, "2024020")
	second := seedStudent(t, "2024021")

	subject := models.Subject{Name: "Mathematics"}
	if err := database.DB.Create(&subject).Error; err != nil {
		t.Fatalf("failed to seed subject: %v", err)
	}

	form := url.Values{}
	form.Set("subject_id", fmt.Sprint(subject.ID))
	form.Set("term", "SUMMER 2026")
	form.Add("student_id", fmt.Sprint(first.ID))
	form.Add("student_id", fmt.Sprint(second.ID))
	form.Add("score", "88")
	form.Add("score", "")
	form.Add("max_score", "100")
	form.Add("max_score", "100")

	resp, body := doRequest(t, app, formRequest(t, "/teacher/workspace/results/bulk", token, form))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d (%v)", resp.StatusCode, body)
	}

	var count int64
	database.DB.Model(&models.Result{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected only the complete row to be saved, got %d", count)
	}

	var result models.Result
	database.DB.First(&result)
	if result.StudentID != first.ID || result.MarksObtained != 88 {
		t.Fatalf("unexpected saved row: %+v", result)
	}
}

func TestResultsBulkReplacesPerStudentSubjectTerm(t *testing.T) {
	app := newTestApp(t)
	_, token := teacherToken(t)
	student := seedStudent(t, "2024030")

	submit := func(marks string) {
		form := url.Values{}
		form.Set("max_marks", "100")
		form.Add("student_id", fmt.Sprint(student.ID))
		form.Set("subject_name_1", "Science")
		form.Set(fmt.Sprintf("marks_%d_1", student.ID), marks)

		resp, body := doRequest(t, app, formRequest(t, "/teacher/results/bulk", token, form))
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d (%v)", resp.StatusCode, body)
		}
	}

	submit("72")
	submit("91")

	var count int64
	database.DB.Model(&models.Result{}).Where("student_id = ?", student.ID).Count(&count)
	if count != 1 {
		t.Fatalf("expected resubmission to replace the row, got %d rows", count)
	}

	var result models.Result
	database.DB.Where("student_id = ?", student.ID).First(&result)
	if result.MarksObtained != 91 {
		t.Fatalf("expected the latest marks, got %v", result.MarksObtained)
	}

	var subjectCount int64
	database.DB.Model(&models.Subject{}).Where("name = ?", "Science").Count(&subjectCount)
	if subjectCount != 1 {
		t.Fatalf("expected the subject to be created once, got %d", subjectCount)
	}
}

func TestSportsBulkSkipsEmptyActivity(t *testing.T) {
	app := newTestApp(t)
	_, token := teacherToken(t)
	student := seedStudent(t, "2024040")

	form := url.Values{}
	form.Add("student_id", fmt.Sprint(student.ID))
	form.Set("activity", "")

	resp, body := doRequest(t, app, formRequest(t, "/teacher/sports/bulk", token, form))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d (%v)", resp.StatusCode, body)
	}

	var count int64
	database.DB.Model(&models.SportsActivity{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected no rows for empty activity, got %d", count)
	}
}

package routes

import (
	"tesschool_go/controllers"
	"tesschool_go/middleware"

	"github.com/gofiber/fiber/v2"
)

// SetupRoutes configures all application routes
func SetupRoutes(app *fiber.App) {
	// Initialize controllers
	authController := &controllers.AuthController{}
	admissionController := &controllers.AdmissionController{}
	studentController := &controllers.StudentController{}
	teacherController := &controllers.TeacherController{}
	userController := &controllers.UserController{}
	auditController := &controllers.AuditController{}
	dashboardController := &controllers.DashboardController{}
	attendanceController := &controllers.AttendanceController{}
	resultController := &controllers.ResultController{}
	sportsController := &controllers.SportsController{}
	feeController := &controllers.FeeController{}
	assessmentController := &controllers.AssessmentController{}

	// Public admission application (no authentication)
	app.Post("/admissions/apply", admissionController.PublicApply)

	// Role-scoped login/logout
	app.Post("/student/login", authController.StudentLogin)
	app.Post("/teacher/login", authController.TeacherLogin)
	app.Post("/admin/login", authController.AdminLogin)
	app.Post("/student/logout", authController.Logout)
	app.Post("/teacher/logout", authController.Logout)
	app.Post("/admin/logout", authController.Logout)

	// Student area
	student := app.Group("/student", middleware.RequireStudent())
	student.Get("/dashboard", dashboardController.StudentDashboard)

	// Teacher area
	teacher := app.Group("/teacher", middleware.RequireTeacher())
	teacher.Get("/dashboard", dashboardController.TeacherDashboard)
	teacher.Get("/workspace", dashboardController.TeacherDashboard)

	teacher.Post("/students", studentController.Create)
	teacher.Get("/students/:id", studentController.Get)

	teacher.Post("/attendance", attendanceController.Submit)
	teacher.Get("/attendance/sheet", attendanceController.Sheet)
	teacher.Post("/attendance/bulk", attendanceController.BulkMonth)
	teacher.Get("/attendance/summary", attendanceController.Summary)
	teacher.Post("/workspace/attendance/bulk", attendanceController.WorkspaceBulk)

	teacher.Post("/result", resultController.Submit)
	teacher.Get("/results/upload", resultController.UploadPage)
	teacher.Post("/results/bulk", resultController.BulkUpload)
	teacher.Post("/workspace/results/bulk", resultController.WorkspaceBulk)

	teacher.Get("/sports", sportsController.Page)
	teacher.Post("/sports/bulk", sportsController.Bulk)
	teacher.Post("/workspace/sports/bulk", sportsController.WorkspaceBulk)

	teacher.Post("/fee", feeController.Submit)

	teacher.Get("/assessments", assessmentController.List)
	teacher.Get("/assessment/:id", assessmentController.Get)
	teacher.Get("/assessment/:id/edit", assessmentController.Get)
	teacher.Post("/assessment/:id/edit", assessmentController.Update)

	// Admin area
	admin := app.Group("/admin", middleware.RequireAdmin())
	admin.Get("/dashboard", dashboardController.AdminDashboard)

	admin.Get("/admissions", admissionController.List)
	admin.Get("/admissions/export", admissionController.Export)
	admin.Post("/admissions/new", admissionController.Create)
	admin.Get("/admissions/:id", admissionController.Get)
	admin.Post("/admissions/:id/edit", admissionController.Update)
	admin.Post("/admissions/:id/status", admissionController.UpdateStatus)
	admin.Post("/admissions/:id/delete", admissionController.Delete)

	admin.Get("/students", studentController.List)
	admin.Get("/students/export", studentController.Export)
	admin.Get("/students/export.xlsx", studentController.ExportXLSX)
	admin.Get("/students/:id", studentController.Get)

	admin.Get("/teachers", teacherController.List)
	admin.Get("/teachers/export", teacherController.Export)
	admin.Post("/teachers/new", teacherController.Create)
	admin.Get("/teachers/:id", teacherController.Get)
	admin.Post("/teachers/:id/edit", teacherController.Update)
	admin.Post("/teachers/:id/delete", teacherController.Delete)
	admin.Post("/teachers/:id/reset_password", teacherController.ResetPassword)

	admin.Get("/users", userController.List)
	admin.Get("/users/export", userController.Export)
	admin.Post("/users/:id/reset_password", userController.ResetPassword)

	admin.Get("/login_audit", auditController.List)
}

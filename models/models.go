package models

import (
	"database/sql/driver"
	"time"

	"gorm.io/gorm"
)

// Admission statuses
const (
	AdmissionPending   = "pending"
	AdmissionConfirmed = "confirmed"
	AdmissionRejected  = "rejected"
)

// User roles
const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
)

// Base model with common fields
type BaseModel struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// JSON field type for GORM
type JSON []byte

func (j JSON) Value() (driver.Value, error) {
	if j.IsNull() {
		return nil, nil
	}
	return string(j), nil
}

func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	s, ok := value.([]byte)
	if !ok {
		return nil
	}
	*j = append((*j)[0:0], s...)
	return nil
}

func (j JSON) MarshalJSON() ([]byte, error) {
	if j == nil {
		return []byte("null"), nil
	}
	return j, nil
}

func (j *JSON) UnmarshalJSON(data []byte) error {
	if j == nil {
		return nil
	}
	*j = append((*j)[0:0], data...)
	return nil
}

func (j JSON) IsNull() bool {
	return len(j) == 0 || string(j) == "null"
}

// Student is the role profile for enrolled students. Created lazily on the
// first successful admission-based login, or explicitly by an admin/teacher.
type Student struct {
	BaseModel
	RollNo        string `json:"roll_no" gorm:"size:50;not null;uniqueIndex"`
	Name          string `json:"name" gorm:"size:120;not null"`
	PasswordHash  string `json:"-" gorm:"size:255;not null"`
	AdmissionCode string `json:"admission_code" gorm:"size:50"`

	ClassName string `json:"class_name" gorm:"size:50"`
	Section   string `json:"section" gorm:"size:10"`
	Phone     string `json:"phone" gorm:"size:20"`
	Email     string `json:"email" gorm:"size:120"`
	Address   string `json:"address" gorm:"type:text"`
}

// Teacher role profile. InitialPassword keeps the generated password visible
// to admins until the teacher changes it.
type Teacher struct {
	BaseModel
	Username        string `json:"username" gorm:"size:50;not null;uniqueIndex"`
	Name            string `json:"name" gorm:"size:120;not null"`
	Email           string `json:"email" gorm:"size:120"`
	PasswordHash    string `json:"-" gorm:"size:255;not null"`
	InitialPassword string `json:"initial_password" gorm:"size:128"`
}

// Admin role profile.
type Admin struct {
	BaseModel
	Username     string `json:"username" gorm:"size:50;not null;uniqueIndex"`
	Name         string `json:"name" gorm:"size:120;not null"`
	Email        string `json:"email" gorm:"size:120"`
	PasswordHash string `json:"-" gorm:"size:255;not null"`
}

// User is the unified credential record across student/teacher/admin.
// Role tables duplicate password_hash for legacy compatibility; every
// mutation path must keep the copies identical.
type User struct {
	BaseModel
	Role         string `json:"role" gorm:"size:20;not null;index"`
	Username     string `json:"username" gorm:"size:120;not null;uniqueIndex"`
	Name         string `json:"name" gorm:"size:120;not null"`
	Email        string `json:"email" gorm:"size:120"`
	PasswordHash string `json:"-" gorm:"size:255;not null"`

	// Student-centric optional fields (nullable to keep one-table design simple)
	AdmissionCode string `json:"admission_code" gorm:"size:50"`
	ClassName     string `json:"class_name" gorm:"size:50"`
	Section       string `json:"section" gorm:"size:10"`
	Phone         string `json:"phone" gorm:"size:20"`
	Address       string `json:"address" gorm:"type:text"`
}

// Admission is an application record, possibly not yet linked to a Student.
// Password holds the generated initial password in the clear; it seeds the
// Student and User hashes at creation time only.
type Admission struct {
	BaseModel
	Status        string    `json:"status" gorm:"size:20;not null;default:'pending'"`
	AdmissionDate time.Time `json:"admission_date" gorm:"not null"`

	RollNo    *string `json:"roll_no" gorm:"size:50;uniqueIndex"`
	Name      string  `json:"name" gorm:"size:120;not null"`
	ClassName string  `json:"class_name" gorm:"size:50"`
	Section   string  `json:"section" gorm:"size:10"`
	Phone     string  `json:"phone" gorm:"size:20"`
	Email     string  `json:"email" gorm:"size:120"`
	Address   string  `json:"address" gorm:"type:text"`
	Password  string  `json:"password" gorm:"size:128"`

	StudentID *uint `json:"student_id"`
}

// LoginAudit keeps the last attempt per (user_type, username) — each attempt
// deletes prior rows for that identity before inserting. Not a history.
type LoginAudit struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserType  string    `json:"user_type" gorm:"size:20;not null;index:idx_audit_identity"`
	Username  string    `json:"username" gorm:"size:120;index:idx_audit_identity"`
	UserID    *uint     `json:"user_id"`
	Success   bool      `json:"success" gorm:"default:false"`
	IPAddress string    `json:"ip_address" gorm:"size:100"`
	UserAgent string    `json:"user_agent" gorm:"type:text"`
	Timestamp time.Time `json:"timestamp" gorm:"not null;index"`
}

// Attendance fact row. Replaced (delete-then-insert) on monthly resubmission.
type Attendance struct {
	ID                uint      `json:"id" gorm:"primaryKey"`
	StudentID         uint      `json:"student_id" gorm:"not null;index:idx_attendance_day"`
	SubjectID         *uint     `json:"subject_id"`
	Date              time.Time `json:"date" gorm:"type:date;not null;index:idx_attendance_day"`
	Status            string    `json:"status" gorm:"size:10;not null"`
	MarkedByTeacherID *uint     `json:"marked_by_teacher_id"`
}

// Result fact row, keyed by (student, subject, term) for bulk upserts.
type Result struct {
	ID                uint    `json:"id" gorm:"primaryKey"`
	StudentID         uint    `json:"student_id" gorm:"not null;index"`
	SubjectID         uint    `json:"subject_id" gorm:"not null"`
	Term              string  `json:"term" gorm:"size:50;not null"`
	MarksObtained     float64 `json:"marks_obtained" gorm:"not null"`
	MaxMarks          float64 `json:"max_marks" gorm:"not null"`
	GradedByTeacherID *uint   `json:"graded_by_teacher_id"`
}

// Assessment covers unit tests, practicals, projects and similar components.
type Assessment struct {
	ID        uint       `json:"id" gorm:"primaryKey"`
	StudentID uint       `json:"student_id" gorm:"not null;index"`
	SubjectID uint       `json:"subject_id" gorm:"not null"`
	Component string     `json:"component" gorm:"size:50;not null"`
	Term      string     `json:"term" gorm:"size:50"`
	Score     float64    `json:"score" gorm:"not null"`
	MaxScore  float64    `json:"max_score" gorm:"not null"`
	Date      *time.Time `json:"date" gorm:"type:date"`
}

// FeePayment fact row.
type FeePayment struct {
	ID                  uint      `json:"id" gorm:"primaryKey"`
	StudentID           uint      `json:"student_id" gorm:"not null;index"`
	Amount              float64   `json:"amount" gorm:"not null"`
	Date                time.Time `json:"date" gorm:"not null"`
	Description         string    `json:"description" gorm:"size:200"`
	Mode                string    `json:"mode" gorm:"size:30"`
	ReferenceNo         string    `json:"reference_no" gorm:"size:100"`
	RecordedByTeacherID *uint     `json:"recorded_by_teacher_id"`
}

// SportsActivity fact row.
type SportsActivity struct {
	ID                  uint       `json:"id" gorm:"primaryKey"`
	StudentID           uint       `json:"student_id" gorm:"not null;index"`
	Activity            string     `json:"activity" gorm:"size:100;not null"`
	Level               string     `json:"level" gorm:"size:50"`
	Result              string     `json:"result" gorm:"size:100"`
	Date                *time.Time `json:"date" gorm:"type:date"`
	Notes               string     `json:"notes" gorm:"size:200"`
	RecordedByTeacherID *uint      `json:"recorded_by_teacher_id"`
}

// Subject lookup row, get-or-create by name on demand.
type Subject struct {
	BaseModel
	Name           string `json:"name" gorm:"size:100;not null"`
	ClassSectionID *uint  `json:"class_section_id"`
}

// ClassSection lookup row.
type ClassSection struct {
	BaseModel
	ClassName string `json:"class_name" gorm:"size:50;not null"`
	Section   string `json:"section" gorm:"size:10"`
}

// StudentSubject association row.
type StudentSubject struct {
	BaseModel
	StudentID uint `json:"student_id" gorm:"not null;uniqueIndex:uq_student_subject"`
	SubjectID uint `json:"subject_id" gorm:"not null;uniqueIndex:uq_student_subject"`
}

// ActivityLog tracks mutating requests for operational visibility.
type ActivityLog struct {
	BaseModel
	UserID     uint   `json:"user_id"`
	Action     string `json:"action" gorm:"size:100;not null"`
	Resource   string `json:"resource" gorm:"size:100;not null"`
	ResourceID uint   `json:"resource_id"`
	Details    JSON   `json:"details" gorm:"type:json"`
	IPAddress  string `json:"ip_address" gorm:"size:45"`
	UserAgent  string `json:"user_agent" gorm:"size:500"`
}

// LogArchive tracks activity-log batches archived to S3.
type LogArchive struct {
	BaseModel
	FileName    string    `json:"file_name" gorm:"size:255;not null"`
	S3Key       string    `json:"s3_key" gorm:"size:500;not null"`
	StartDate   time.Time `json:"start_date" gorm:"not null"`
	EndDate     time.Time `json:"end_date" gorm:"not null"`
	RecordCount int       `json:"record_count" gorm:"not null"`
	FileSize    int64     `json:"file_size" gorm:"not null"`
	Status      string    `json:"status" gorm:"size:50;not null;default:'pending'"`
	Error       string    `json:"error" gorm:"type:text"`
}

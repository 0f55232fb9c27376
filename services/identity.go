package services

import (
	"fmt"
	"time"

	"tesschool_go/models"
	"tesschool_go/utils"

	"gorm.io/gorm"
)

// DefaultStudentPassword seeds legacy student rows whose admission carries no
// generated password.
const DefaultStudentPassword = "password123"

// StudentProfile carries the fields needed to materialize a Student row and
// its unified User counterpart.
type StudentProfile struct {
	RollNo    string
	Name      string
	ClassName string
	Section   string
	Phone     string
	Email     string
	Address   string
}

// EnsureStudentIdentity get-or-creates the Student row for a roll number and
// the matching User(role=student, username=roll_no), copying the password
// hash from the Student row rather than re-hashing. Existing rows are never
// touched, so calling twice is a no-op. plainPassword is only consulted when
// the Student row has to be created.
func EnsureStudentIdentity(tx *gorm.DB, profile StudentProfile, plainPassword string) (*models.Student, *models.User, error) {
	if profile.RollNo == "" {
		return nil, nil, fmt.Errorf("roll number is required")
	}
	name := profile.Name
	if name == "" {
		name = profile.RollNo
	}

	var student models.Student
	err := tx.Where("roll_no = ?", profile.RollNo).First(&student).Error
	if err == gorm.ErrRecordNotFound {
		if plainPassword == "" {
			plainPassword = DefaultStudentPassword
		}
		hash, hashErr := utils.HashPassword(plainPassword)
		if hashErr != nil {
			return nil, nil, hashErr
		}
		student = models.Student{
			RollNo:       profile.RollNo,
			Name:         name,
			PasswordHash: hash,
			ClassName:    profile.ClassName,
			Section:      profile.Section,
			Phone:        profile.Phone,
			Email:        profile.Email,
			Address:      profile.Address,
		}
		if err := tx.Create(&student).Error; err != nil {
			return nil, nil, err
		}
	} else if err != nil {
		return nil, nil, err
	}

	var user models.User
	err = tx.Where("username = ?", profile.RollNo).First(&user).Error
	if err == gorm.ErrRecordNotFound {
		user = models.User{
			Role:         models.RoleStudent,
			Username:     profile.RollNo,
			Name:         name,
			Email:        profile.Email,
			PasswordHash: student.PasswordHash,
			ClassName:    profile.ClassName,
			Section:      profile.Section,
			Phone:        profile.Phone,
			Address:      profile.Address,
		}
		if err := tx.Create(&user).Error; err != nil {
			return nil, nil, err
		}
	} else if err != nil {
		return nil, nil, err
	}

	return &student, &user, nil
}

// LinkConfirmedAdmission materializes the Student and User rows for a
// confirmed admission and links the admission to the student. Returns a
// warning instead of creating anything when the admission has no roll
// number yet. Generates the initial password when missing so the student
// can log in with it.
func LinkConfirmedAdmission(tx *gorm.DB, adm *models.Admission) (string, error) {
	if adm.Status != models.AdmissionConfirmed {
		return "", nil
	}
	if adm.RollNo == nil || *adm.RollNo == "" {
		return "Confirmed admission requires Roll No.", nil
	}

	if adm.Password == "" {
		adm.Password = utils.GenerateInitialPassword(adm.Name, adm.Phone)
		if err := tx.Model(adm).Update("password", adm.Password).Error; err != nil {
			return "", err
		}
	}

	student, _, err := EnsureStudentIdentity(tx, StudentProfile{
		RollNo:    *adm.RollNo,
		Name:      adm.Name,
		ClassName: adm.ClassName,
		Section:   adm.Section,
		Phone:     adm.Phone,
		Email:     adm.Email,
		Address:   adm.Address,
	}, adm.Password)
	if err != nil {
		return "", err
	}

	if adm.StudentID == nil || *adm.StudentID != student.ID {
		adm.StudentID = &student.ID
		if err := tx.Model(adm).Update("student_id", student.ID).Error; err != nil {
			return "", err
		}
	}
	return "", nil
}

// EnsureStudentFromUser get-or-creates the Student row for a legacy unified
// student User, copying the password hash directly since the plaintext is
// unknown on this path.
func EnsureStudentFromUser(tx *gorm.DB, user *models.User) (*models.Student, error) {
	var student models.Student
	err := tx.Where("roll_no = ?", user.Username).First(&student).Error
	if err == gorm.ErrRecordNotFound {
		name := user.Name
		if name == "" {
			name = user.Username
		}
		student = models.Student{
			RollNo:       user.Username,
			Name:         name,
			PasswordHash: user.PasswordHash,
			ClassName:    user.ClassName,
			Section:      user.Section,
			Phone:        user.Phone,
			Email:        user.Email,
			Address:      user.Address,
		}
		if err := tx.Create(&student).Error; err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}
	return &student, nil
}

// EnsureTeacherMirror get-or-creates the Teacher row mirroring a unified
// teacher User, copying the password hash for dashboard compatibility.
func EnsureTeacherMirror(tx *gorm.DB, user *models.User) (*models.Teacher, error) {
	var teacher models.Teacher
	err := tx.Where("username = ?", user.Username).First(&teacher).Error
	if err == gorm.ErrRecordNotFound {
		name := user.Name
		if name == "" {
			name = user.Username
		}
		teacher = models.Teacher{
			Username:     user.Username,
			Name:         name,
			Email:        user.Email,
			PasswordHash: user.PasswordHash,
		}
		if err := tx.Create(&teacher).Error; err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}
	return &teacher, nil
}

// EnsureAdminMirror get-or-creates the Admin row mirroring a unified admin
// User.
func EnsureAdminMirror(tx *gorm.DB, user *models.User) (*models.Admin, error) {
	var admin models.Admin
	err := tx.Where("username = ?", user.Username).First(&admin).Error
	if err == gorm.ErrRecordNotFound {
		name := user.Name
		if name == "" {
			name = user.Username
		}
		admin = models.Admin{
			Username:     user.Username,
			Name:         name,
			Email:        user.Email,
			PasswordHash: user.PasswordHash,
		}
		if err := tx.Create(&admin).Error; err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}
	return &admin, nil
}

// RecordLoginAttempt replaces the audit row for (userType, username) with the
// outcome of the latest attempt. Last attempt only, not a history.
func RecordLoginAttempt(db *gorm.DB, userType, username string, userID *uint, success bool, ip, userAgent string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_type = ? AND username = ?", userType, username).
			Delete(&models.LoginAudit{}).Error; err != nil {
			return err
		}
		return tx.Create(&models.LoginAudit{
			UserType:  userType,
			Username:  username,
			UserID:    userID,
			Success:   success,
			IPAddress: ip,
			UserAgent: userAgent,
			Timestamp: time.Now().UTC(),
		}).Error
	})
}

// SetUserPassword hashes a new password onto the unified User and syncs the
// role-table copy within one transaction. Passwords only change through
// here or the profile endpoints; nothing reconciles back into Admission.
func SetUserPassword(db *gorm.DB, user *models.User, newPassword string) error {
	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(user).Update("password_hash", hash).Error; err != nil {
			return err
		}
		user.PasswordHash = hash

		switch user.Role {
		case models.RoleStudent:
			return tx.Model(&models.Student{}).Where("roll_no = ?", user.Username).
				Update("password_hash", hash).Error
		case models.RoleTeacher:
			return tx.Model(&models.Teacher{}).Where("username = ?", user.Username).
				Update("password_hash", hash).Error
		case models.RoleAdmin:
			return tx.Model(&models.Admin{}).Where("username = ?", user.Username).
				Update("password_hash", hash).Error
		}
		return nil
	})
}

// TermLabel derives the term name from the month: April through September is
// the summer term, the rest winter.
func TermLabel(now time.Time) string {
	season := "WINTER"
	if m := now.Month(); m >= time.April && m <= time.September {
		season = "SUMMER"
	}
	return fmt.Sprintf("%s %d", season, now.Year())
}

// GetOrCreateSubject looks a subject up by name, creating it on demand.
func GetOrCreateSubject(tx *gorm.DB, name string) (*models.Subject, error) {
	if name == "" {
		return nil, nil
	}
	var subject models.Subject
	err := tx.Where("name = ?", name).First(&subject).Error
	if err == gorm.ErrRecordNotFound {
		subject = models.Subject{Name: name}
		if err := tx.Create(&subject).Error; err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}
	return &subject, nil
}

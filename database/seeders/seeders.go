package seeders

import (
	"log"
	"time"

	"tesschool_go/database"
	"tesschool_go/models"
	"tesschool_go/utils"
)

// SeedSampleData seeds demo accounts and lookups when the tables are empty.
// Development/demo only.
func SeedSampleData() {
	log.Println("Starting database seeding...")

	SeedStudents()
	SeedTeachers()
	SeedAdmins()
	SeedUsers()
	SeedClassSections()
	SeedSubjects()

	log.Println("Database seeding completed successfully!")
}

// SeedStudents seeds the sample student.
func SeedStudents() {
	var count int64
	database.DB.Model(&models.Student{}).Count(&count)
	if count > 0 {
		log.Println("Students already seeded, skipping...")
		return
	}

	hash, err := utils.HashPassword("password123")
	if err != nil {
		log.Printf("Failed to hash seed password: %v", err)
		return
	}

	student := models.Student{
		RollNo:        "2024001",
		Name:          "Rajesh Kumar",
		PasswordHash:  hash,
		AdmissionCode: "ADM-EXAMPLE-2024",
		ClassName:     "10",
		Section:       "A",
		Phone:         "+91 98765 43210",
		Email:         "rajesh@student.tes.edu",
		Address:       "Panchwad, Maharashtra",
	}
	if err := database.DB.Create(&student).Error; err != nil {
		log.Printf("Failed to seed student: %v", err)
		return
	}
	log.Println("Seeded sample student: roll_no=2024001")
}

// SeedTeachers seeds the sample teacher.
func SeedTeachers() {
	var count int64
	database.DB.Model(&models.Teacher{}).Count(&count)
	if count > 0 {
		log.Println("Teachers already seeded, skipping...")
		return
	}

	hash, err := utils.HashPassword("teachpass")
	if err != nil {
		log.Printf("Failed to hash seed password: %v", err)
		return
	}

	teacher := models.Teacher{
		Username:     "teacher1",
		Name:         "Ms. Patel",
		Email:        "teacher1@tes.edu",
		PasswordHash: hash,
	}
	if err := database.DB.Create(&teacher).Error; err != nil {
		log.Printf("Failed to seed teacher: %v", err)
		return
	}
	log.Println("Seeded sample teacher: username=teacher1")
}

// SeedAdmins seeds the default admin.
func SeedAdmins() {
	var count int64
	database.DB.Model(&models.Admin{}).Count(&count)
	if count > 0 {
		log.Println("Admins already seeded, skipping...")
		return
	}

	hash, err := utils.HashPassword("adminpass")
	if err != nil {
		log.Printf("Failed to hash seed password: %v", err)
		return
	}

	admin := models.Admin{
		Username:     "admin",
		Name:         "School Admin",
		Email:        "admin@tes.edu",
		PasswordHash: hash,
	}
	if err := database.DB.Create(&admin).Error; err != nil {
		log.Printf("Failed to seed admin: %v", err)
		return
	}
	log.Println("Seeded admin: username=admin")
}

// SeedUsers mirrors the seeded accounts into the unified users table.
func SeedUsers() {
	var count int64
	database.DB.Model(&models.User{}).Count(&count)
	if count > 0 {
		log.Println("Users already seeded, skipping...")
		return
	}

	type seedUser struct {
		role     string
		username string
		name     string
		email    string
		password string
	}
	accounts := []seedUser{
		{models.RoleStudent, "2024001", "Rajesh Kumar", "rajesh@student.tes.edu", "password123"},
		{models.RoleTeacher, "teacher1", "Ms. Patel", "teacher1@tes.edu", "teachpass"},
		{models.RoleAdmin, "admin", "School Admin", "admin@tes.edu", "adminpass"},
	}

	for _, acct := range accounts {
		hash, err := utils.HashPassword(acct.password)
		if err != nil {
			log.Printf("Failed to hash seed password: %v", err)
			continue
		}
		user := models.User{
			Role:         acct.role,
			Username:     acct.username,
			Name:         acct.name,
			Email:        acct.email,
			PasswordHash: hash,
		}
		if acct.role == models.RoleStudent {
			user.AdmissionCode = "ADM-EXAMPLE-2024"
			user.ClassName = "10"
			user.Section = "A"
			user.Phone = "+91 98765 43210"
			user.Address = "Panchwad, Maharashtra"
		}
		if err := database.DB.Create(&user).Error; err != nil {
			log.Printf("Failed to seed user %s: %v", acct.username, err)
		}
	}
	log.Println("Seeded unified users")
}

// SeedClassSections seeds class section 10-A.
func SeedClassSections() {
	var count int64
	database.DB.Model(&models.ClassSection{}).Count(&count)
	if count > 0 {
		return
	}
	cs := models.ClassSection{
		BaseModel: models.BaseModel{CreatedAt: time.Now()},
		ClassName: "10",
		Section:   "A",
	}
	if err := database.DB.Create(&cs).Error; err != nil {
		log.Printf("Failed to seed class section: %v", err)
		return
	}
	log.Println("Seeded class section 10-A")
}

// SeedSubjects seeds the starter subjects.
func SeedSubjects() {
	var count int64
	database.DB.Model(&models.Subject{}).Count(&count)
	if count > 0 {
		return
	}

	var cs models.ClassSection
	var csID *uint
	if err := database.DB.First(&cs).Error; err == nil {
		csID = &cs.ID
	}

	for _, name := range []string{"Mathematics", "Science", "English"} {
		if err := database.DB.Create(&models.Subject{Name: name, ClassSectionID: csID}).Error; err != nil {
			log.Printf("Failed to seed subject %s: %v", name, err)
		}
	}
	log.Println("Seeded subjects: Mathematics, Science, English")
}

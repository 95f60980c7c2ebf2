package config

import (
	"log"

	"brokersure/internal/adapters/persistence/models"
	"brokersure/internal/core/domain"
	"brokersure/internal/pkg/password"

	"gorm.io/gorm"
)

// SeedUsers creates the default admin and a demo agent if they do not exist.
// Coverage types and underwriting schemas are code-level enumerations and
// are not seeded as rows.
func SeedUsers(db *gorm.DB) error {
	seeds := []struct {
		username string
		fullName string
		email    string
		pass     string
		role     domain.Role
	}{
		{"admin", "System Administrator", "admin@brokersure.io", "admin1234", domain.RoleAdmin},
		{"agent.demo", "Demo Agent", "agent@brokersure.io", "agent1234", domain.RoleAgent},
	}

	for _, s := range seeds {
		var existing models.User
		err := db.Where("username = ?", s.username).First(&existing).Error
		if err == nil {
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}

		hashed, err := password.Hash(s.pass)
		if err != nil {
			return err
		}

		user := models.User{
			Username: s.username,
			FullName: s.fullName,
			Email:    s.email,
			Password: hashed,
			Role:     string(s.role),
			IsActive: true,
		}
		if err := db.Create(&user).Error; err != nil {
			return err
		}
		log.Printf("   Created user: %s (%s)", s.username, s.role)
	}

	log.Println("✅ User seed completed")
	return nil
}

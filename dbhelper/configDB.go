package dbhelper

import (
	"fmt"

	"github.com/securelogin/apiv1/config"
	"github.com/securelogin/apiv1/models"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// OpenDB connects to MySQL using the startup configuration.
func OpenDB(cfg config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"%s:%s@tcp(%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.DBUser,
		cfg.DBPass,
		cfg.DBHost,
		cfg.DBName,
	)
	return gorm.Open(mysql.Open(dsn), &gorm.Config{})
}

// InitDB creates or updates the schema.
func InitDB(db *gorm.DB) error {
	return db.AutoMigrate(&models.User{})
}

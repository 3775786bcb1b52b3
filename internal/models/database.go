package models

import (
	"fmt"

	"github.com/solconf/solconf/internal/config"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func InitDB(cfg *config.DatabaseConfig) error {
	var dialector gorm.Dialector

	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	case "mysql":
		dialector = mysql.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		return fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return fmt.Errorf("failed to connect database: %w", err)
	}

	DB = db
	return nil
}

func AutoMigrate() error {
	return DB.AutoMigrate(
		&User{},
		&Solution{},
		&SolutionAPIKey{},
		&Parameter{},
		&Tag{},
		&ContainerService{},
		&ComputePool{},
		&SystemConfig{},
		&SystemLog{},
	)
}

func GetDB() *gorm.DB {
	return DB
}

// SeedDefaultData creates default settings rows if not exists
func SeedDefaultData() error {
	defaultConfigs := []SystemConfig{
		// App settings
		{Key: "app_name", Value: "Solution Configuration Manager", Type: "string", Group: "app", Label: "Application Name"},
		{Key: "app_session_expire_hours", Value: "24", Type: "int", Group: "app", Label: "Session Expiry (hours)"},
		{Key: "app_default_page_size", Value: "20", Type: "int", Group: "app", Label: "Default Page Size"},
		// Database settings
		{Key: "db_query_timeout_secs", Value: "30", Type: "int", Group: "database", Label: "Query Timeout (seconds)"},
		{Key: "db_max_open_conns", Value: "25", Type: "int", Group: "database", Label: "Max Open Connections"},
		// API settings
		{Key: "api_rate_limit_rps", Value: "10", Type: "int", Group: "api", Label: "Login Rate Limit (requests/second)"},
		{Key: "api_rate_limit_burst", Value: "20", Type: "int", Group: "api", Label: "Login Rate Limit Burst"},
		{Key: "api_request_log_enabled", Value: "true", Type: "bool", Group: "api", Label: "Request Logging"},
		// Feature flags
		{Key: "feature_secret_parameters", Value: "true", Type: "bool", Group: "features", Label: "Secret Parameters"},
		{Key: "feature_bulk_operations", Value: "true", Type: "bool", Group: "features", Label: "Bulk Parameter Operations"},
		{Key: "feature_solution_export", Value: "true", Type: "bool", Group: "features", Label: "Solution Export"},
		// System
		{Key: "log_retention_days", Value: "30", Type: "int", Group: "system", Label: "System Log Retention Days"},
	}

	for _, cfg := range defaultConfigs {
		var count int64
		DB.Model(&SystemConfig{}).Where("`key` = ?", cfg.Key).Count(&count)
		if count == 0 {
			if err := DB.Create(&cfg).Error; err != nil {
				return err
			}
		}
	}

	return nil
}

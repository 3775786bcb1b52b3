package services

import (
	"strconv"

	"github.com/solconf/solconf/internal/models"
	"gorm.io/gorm"
)

type SystemConfigService struct {
	db *gorm.DB
}

func NewSystemConfigService(db *gorm.DB) *SystemConfigService {
	return &SystemConfigService{db: db}
}

func (s *SystemConfigService) Get(key string) (string, error) {
	var cfg models.SystemConfig
	if err := s.db.Where("`key` = ?", key).First(&cfg).Error; err != nil {
		return "", err
	}
	return cfg.Value, nil
}

func (s *SystemConfigService) GetWithDefault(key, defaultValue string) string {
	value, err := s.Get(key)
	if err != nil {
		return defaultValue
	}
	return value
}

func (s *SystemConfigService) Set(key, value string) error {
	var cfg models.SystemConfig
	err := s.db.Where("`key` = ?", key).First(&cfg).Error
	if err == gorm.ErrRecordNotFound {
		cfg = models.SystemConfig{
			Key:   key,
			Value: value,
		}
		return s.db.Create(&cfg).Error
	}
	if err != nil {
		return err
	}
	return s.db.Model(&cfg).Update("value", value).Error
}

func (s *SystemConfigService) GetByGroup(group string) ([]models.SystemConfig, error) {
	var configs []models.SystemConfig
	if err := s.db.Where("`group` = ?", group).Find(&configs).Error; err != nil {
		return nil, err
	}
	return configs, nil
}

func (s *SystemConfigService) getInt(key string, fallback int) int {
	v, err := strconv.Atoi(s.GetWithDefault(key, strconv.Itoa(fallback)))
	if err != nil {
		return fallback
	}
	return v
}

func (s *SystemConfigService) getBool(key string, fallback bool) bool {
	return s.GetWithDefault(key, strconv.FormatBool(fallback)) == "true"
}

// --- Application settings ---

type AppSettingsResponse struct {
	AppName            string `json:"app_name"`
	SessionExpireHours int    `json:"session_expire_hours"`
	DefaultPageSize    int    `json:"default_page_size"`
}

func (s *SystemConfigService) GetAppSettings() *AppSettingsResponse {
	return &AppSettingsResponse{
		AppName:            s.GetWithDefault("app_name", "Solution Configuration Manager"),
		SessionExpireHours: s.getInt("app_session_expire_hours", 24),
		DefaultPageSize:    s.getInt("app_default_page_size", 20),
	}
}

type UpdateAppSettingsRequest struct {
	AppName            *string `json:"app_name"`
	SessionExpireHours *int    `json:"session_expire_hours"`
	DefaultPageSize    *int    `json:"default_page_size"`
}

func (s *SystemConfigService) UpdateAppSettings(req *UpdateAppSettingsRequest) error {
	if req.AppName != nil {
		if err := s.Set("app_name", *req.AppName); err != nil {
			return err
		}
	}
	if req.SessionExpireHours != nil {
		if err := s.Set("app_session_expire_hours", strconv.Itoa(*req.SessionExpireHours)); err != nil {
			return err
		}
	}
	if req.DefaultPageSize != nil {
		if err := s.Set("app_default_page_size", strconv.Itoa(*req.DefaultPageSize)); err != nil {
			return err
		}
	}
	return nil
}

// --- Database settings ---

type DatabaseSettingsResponse struct {
	QueryTimeoutSecs int `json:"query_timeout_secs"`
	MaxOpenConns     int `json:"max_open_conns"`
}

func (s *SystemConfigService) GetDatabaseSettings() *DatabaseSettingsResponse {
	return &DatabaseSettingsResponse{
		QueryTimeoutSecs: s.getInt("db_query_timeout_secs", 30),
		MaxOpenConns:     s.getInt("db_max_open_conns", 25),
	}
}

type UpdateDatabaseSettingsRequest struct {
	QueryTimeoutSecs *int `json:"query_timeout_secs"`
	MaxOpenConns     *int `json:"max_open_conns"`
}

func (s *SystemConfigService) UpdateDatabaseSettings(req *UpdateDatabaseSettingsRequest) error {
	if req.QueryTimeoutSecs != nil {
		if err := s.Set("db_query_timeout_secs", strconv.Itoa(*req.QueryTimeoutSecs)); err != nil {
			return err
		}
	}
	if req.MaxOpenConns != nil {
		if err := s.Set("db_max_open_conns", strconv.Itoa(*req.MaxOpenConns)); err != nil {
			return err
		}
	}
	return nil
}

// --- API settings ---

type APISettingsResponse struct {
	RateLimitRPS      int  `json:"rate_limit_rps"`
	RateLimitBurst    int  `json:"rate_limit_burst"`
	RequestLogEnabled bool `json:"request_log_enabled"`
}

func (s *SystemConfigService) GetAPISettings() *APISettingsResponse {
	return &APISettingsResponse{
		RateLimitRPS:      s.getInt("api_rate_limit_rps", 10),
		RateLimitBurst:    s.getInt("api_rate_limit_burst", 20),
		RequestLogEnabled: s.getBool("api_request_log_enabled", true),
	}
}

type UpdateAPISettingsRequest struct {
	RateLimitRPS      *int  `json:"rate_limit_rps"`
	RateLimitBurst    *int  `json:"rate_limit_burst"`
	RequestLogEnabled *bool `json:"request_log_enabled"`
}

func (s *SystemConfigService) UpdateAPISettings(req *UpdateAPISettingsRequest) error {
	if req.RateLimitRPS != nil {
		if err := s.Set("api_rate_limit_rps", strconv.Itoa(*req.RateLimitRPS)); err != nil {
			return err
		}
	}
	if req.RateLimitBurst != nil {
		if err := s.Set("api_rate_limit_burst", strconv.Itoa(*req.RateLimitBurst)); err != nil {
			return err
		}
	}
	if req.RequestLogEnabled != nil {
		if err := s.Set("api_request_log_enabled", strconv.FormatBool(*req.RequestLogEnabled)); err != nil {
			return err
		}
	}
	return nil
}

// --- Feature flags ---

type FeatureFlagsResponse struct {
	SecretParameters bool `json:"secret_parameters"`
	BulkOperations   bool `json:"bulk_operations"`
	SolutionExport   bool `json:"solution_export"`
}

func (s *SystemConfigService) GetFeatureFlags() *FeatureFlagsResponse {
	return &FeatureFlagsResponse{
		SecretParameters: s.getBool("feature_secret_parameters", true),
		BulkOperations:   s.getBool("feature_bulk_operations", true),
		SolutionExport:   s.getBool("feature_solution_export", true),
	}
}

type UpdateFeatureFlagsRequest struct {
	SecretParameters *bool `json:"secret_parameters"`
	BulkOperations   *bool `json:"bulk_operations"`
	SolutionExport   *bool `json:"solution_export"`
}

func (s *SystemConfigService) UpdateFeatureFlags(req *UpdateFeatureFlagsRequest) error {
	if req.SecretParameters != nil {
		if err := s.Set("feature_secret_parameters", strconv.FormatBool(*req.SecretParameters)); err != nil {
			return err
		}
	}
	if req.BulkOperations != nil {
		if err := s.Set("feature_bulk_operations", strconv.FormatBool(*req.BulkOperations)); err != nil {
			return err
		}
	}
	if req.SolutionExport != nil {
		if err := s.Set("feature_solution_export", strconv.FormatBool(*req.SolutionExport)); err != nil {
			return err
		}
	}
	return nil
}

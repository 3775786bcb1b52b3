package services

import "testing"

func TestSystemConfigService_SetAndGet(t *testing.T) {
	svc := NewSystemConfigService(newTestDB(t))

	if _, err := svc.Get("missing"); err == nil {
		t.Error("Get of a missing key should error")
	}
	if got := svc.GetWithDefault("missing", "fallback"); got != "fallback" {
		t.Errorf("GetWithDefault = %q", got)
	}

	if err := svc.Set("app_name", "Console"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got, err := svc.Get("app_name"); err != nil || got != "Console" {
		t.Errorf("Get = %q, %v", got, err)
	}

	// Set on an existing key updates in place
	if err := svc.Set("app_name", "Console v2"); err != nil {
		t.Fatalf("Set update: %v", err)
	}
	if got, _ := svc.Get("app_name"); got != "Console v2" {
		t.Errorf("Get after update = %q", got)
	}
}

func TestSystemConfigService_AppSettings(t *testing.T) {
	svc := NewSystemConfigService(newTestDB(t))

	defaults := svc.GetAppSettings()
	if defaults.SessionExpireHours != 24 || defaults.DefaultPageSize != 20 {
		t.Errorf("defaults = %+v", defaults)
	}

	name := "Solutions Console"
	hours := 8
	if err := svc.UpdateAppSettings(&UpdateAppSettingsRequest{
		AppName:            &name,
		SessionExpireHours: &hours,
	}); err != nil {
		t.Fatalf("UpdateAppSettings: %v", err)
	}

	got := svc.GetAppSettings()
	if got.AppName != name || got.SessionExpireHours != 8 {
		t.Errorf("settings after update = %+v", got)
	}
	// Untouched fields keep their values
	if got.DefaultPageSize != 20 {
		t.Errorf("DefaultPageSize = %d, want unchanged 20", got.DefaultPageSize)
	}
}

func TestSystemConfigService_FeatureFlags(t *testing.T) {
	svc := NewSystemConfigService(newTestDB(t))

	flags := svc.GetFeatureFlags()
	if !flags.SecretParameters || !flags.BulkOperations || !flags.SolutionExport {
		t.Errorf("feature flags should default on, got %+v", flags)
	}

	off := false
	if err := svc.UpdateFeatureFlags(&UpdateFeatureFlagsRequest{SolutionExport: &off}); err != nil {
		t.Fatalf("UpdateFeatureFlags: %v", err)
	}

	flags = svc.GetFeatureFlags()
	if flags.SolutionExport {
		t.Error("SolutionExport should be off after update")
	}
	if !flags.SecretParameters || !flags.BulkOperations {
		t.Errorf("other flags should be untouched, got %+v", flags)
	}
}

func TestSystemConfigService_APISettings(t *testing.T) {
	svc := NewSystemConfigService(newTestDB(t))

	rps := 50
	logOff := false
	if err := svc.UpdateAPISettings(&UpdateAPISettingsRequest{
		RateLimitRPS:      &rps,
		RequestLogEnabled: &logOff,
	}); err != nil {
		t.Fatalf("UpdateAPISettings: %v", err)
	}

	got := svc.GetAPISettings()
	if got.RateLimitRPS != 50 || got.RateLimitBurst != 20 || got.RequestLogEnabled {
		t.Errorf("api settings = %+v", got)
	}
}

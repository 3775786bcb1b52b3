package services

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/solconf/solconf/internal/models"
	"github.com/solconf/solconf/pkg/response"
	"gorm.io/gorm"
)

func newAPIKeyEnv(t *testing.T) (*gorm.DB, *APIKeyService, *models.Solution) {
	t.Helper()
	db := newTestDB(t)

	solutionSvc := NewSolutionService(db)
	solution, err := solutionSvc.Create(&CreateSolutionRequest{Name: "payments", Description: "payment stack"})
	if err != nil {
		t.Fatalf("create solution: %v", err)
	}
	return db, NewAPIKeyService(db), solution
}

func TestAPIKeyService_Create(t *testing.T) {
	_, svc, solution := newAPIKeyEnv(t)

	created, err := svc.Create(solution.ID, &CreateAPIKeyRequest{KeyName: "ci-deploy", ExpiresDays: 30})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !strings.HasPrefix(created.APIKey, "sol_") {
		t.Errorf("key %q should carry the sol_ prefix", created.APIKey)
	}
	if len(created.APIKey) < 20 {
		t.Errorf("key %q is too short to be 32 random bytes", created.APIKey)
	}
	if !created.IsActive {
		t.Error("a fresh key should be active")
	}
	if created.ExpiresAt == nil {
		t.Fatal("expires_days should set an expiry")
	}
	wantExpiry := time.Now().AddDate(0, 0, 30)
	if diff := created.ExpiresAt.Sub(wantExpiry); diff < -time.Minute || diff > time.Minute {
		t.Errorf("ExpiresAt = %v, want about %v", created.ExpiresAt, wantExpiry)
	}

	// Two keys for the same solution must not collide.
	second, err := svc.Create(solution.ID, &CreateAPIKeyRequest{KeyName: "staging"})
	if err != nil {
		t.Fatalf("second Create: %v", err)
	}
	if second.APIKey == created.APIKey {
		t.Error("generated keys must be unique")
	}
	if second.ExpiresAt != nil {
		t.Error("a key without expires_days should never expire")
	}
}

func TestAPIKeyService_CreateUnknownSolution(t *testing.T) {
	_, svc, _ := newAPIKeyEnv(t)

	_, err := svc.Create("no-such-id", &CreateAPIKeyRequest{KeyName: "x"})
	var appErr *response.AppError
	if !errors.As(err, &appErr) || appErr.HTTPStatus != 404 {
		t.Errorf("unknown solution should yield a 404 AppError, got %v", err)
	}
}

func TestAPIKeyService_ListShowsPreviewOnly(t *testing.T) {
	_, svc, solution := newAPIKeyEnv(t)

	created, err := svc.Create(solution.ID, &CreateAPIKeyRequest{KeyName: "ci-deploy"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	keys, err := svc.List(solution.ID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(keys) != 1 {
		t.Fatalf("List returned %d keys, want 1", len(keys))
	}

	want := "..." + created.APIKey[len(created.APIKey)-4:]
	if keys[0].APIKeyPreview != want {
		t.Errorf("preview = %q, want %q", keys[0].APIKeyPreview, want)
	}
	// The list must never reproduce the full key anywhere.
	data, _ := json.Marshal(keys)
	if strings.Contains(string(data), created.APIKey) {
		t.Error("list serialization leaks the raw key")
	}
}

func TestAPIKeyService_Validate(t *testing.T) {
	db, svc, solution := newAPIKeyEnv(t)

	created, err := svc.Create(solution.ID, &CreateAPIKeyRequest{KeyName: "ci-deploy"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	key, err := svc.Validate(created.APIKey)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if key.SolutionID != solution.ID {
		t.Errorf("SolutionID = %q, want %q", key.SolutionID, solution.ID)
	}

	// Validation stamps last_used.
	var stored models.SolutionAPIKey
	if err := db.First(&stored, "id = ?", created.ID).Error; err != nil {
		t.Fatalf("load key: %v", err)
	}
	if stored.LastUsed == nil {
		t.Error("Validate should record last_used")
	}

	if _, err := svc.Validate("sol_definitely-not-issued"); !isUnauthorizedAppError(err) {
		t.Errorf("unknown key should yield 401, got %v", err)
	}
}

func TestAPIKeyService_ValidateDisabledAndExpired(t *testing.T) {
	db, svc, solution := newAPIKeyEnv(t)

	created, err := svc.Create(solution.ID, &CreateAPIKeyRequest{KeyName: "ci-deploy"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := svc.Toggle(solution.ID, created.ID, false); err != nil {
		t.Fatalf("Toggle off: %v", err)
	}
	if _, err := svc.Validate(created.APIKey); !isUnauthorizedAppError(err) {
		t.Errorf("disabled key should yield 401, got %v", err)
	}

	// Re-enable, then force the expiry into the past.
	if err := svc.Toggle(solution.ID, created.ID, true); err != nil {
		t.Fatalf("Toggle on: %v", err)
	}
	if _, err := svc.Validate(created.APIKey); err != nil {
		t.Fatalf("re-enabled key should validate: %v", err)
	}

	past := time.Now().Add(-time.Hour)
	if err := db.Model(&models.SolutionAPIKey{}).Where("id = ?", created.ID).Update("expires_at", past).Error; err != nil {
		t.Fatalf("backdate expiry: %v", err)
	}
	if _, err := svc.Validate(created.APIKey); !isUnauthorizedAppError(err) {
		t.Errorf("expired key should yield 401, got %v", err)
	}
}

func isUnauthorizedAppError(err error) bool {
	var appErr *response.AppError
	return errors.As(err, &appErr) && appErr.HTTPStatus == 401
}

func TestAPIKeyService_Delete(t *testing.T) {
	_, svc, solution := newAPIKeyEnv(t)

	created, err := svc.Create(solution.ID, &CreateAPIKeyRequest{KeyName: "ci-deploy"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := svc.Delete(solution.ID, created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Validate(created.APIKey); !isUnauthorizedAppError(err) {
		t.Errorf("deleted key should no longer validate, got %v", err)
	}

	err = svc.Delete(solution.ID, created.ID)
	var appErr *response.AppError
	if !errors.As(err, &appErr) || appErr.HTTPStatus != 404 {
		t.Errorf("second delete should yield 404, got %v", err)
	}
}

func TestAPIKeyService_PublicConfigRedactsSecrets(t *testing.T) {
	db, svc, solution := newAPIKeyEnv(t)

	paramSvc := NewParameterService(db)
	for _, p := range []CreateParameterRequest{
		{Key: "db.host", Value: "db.internal", Description: "primary host", SolutionID: &solution.ID, Tags: []string{"prod"}},
		{Key: "db.password", Value: "hunter2", IsSecret: true, SolutionID: &solution.ID},
	} {
		req := p
		if _, err := paramSvc.Create(&req); err != nil {
			t.Fatalf("create parameter %s: %v", p.Key, err)
		}
	}

	created, err := svc.Create(solution.ID, &CreateAPIKeyRequest{KeyName: "ci-deploy"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	result, err := svc.PublicConfig(created.APIKey, "json")
	if err != nil {
		t.Fatalf("PublicConfig: %v", err)
	}

	var doc PublicConfigDocument
	if err := json.Unmarshal(result.Content, &doc); err != nil {
		t.Fatalf("unmarshal config: %v", err)
	}
	if doc.Solution.Name != "payments" {
		t.Errorf("solution name = %q", doc.Solution.Name)
	}
	if doc.Parameters["db.host"].Value != "db.internal" {
		t.Errorf("db.host = %q", doc.Parameters["db.host"].Value)
	}
	if got := doc.Parameters["db.password"].Value; got != SecretPlaceholder {
		t.Errorf("secret value = %q, want the placeholder", got)
	}
	if strings.Contains(string(result.Content), "hunter2") {
		t.Error("secret value leaked into the rendered document")
	}
	if doc.Metadata.ParameterCount != 2 || doc.Metadata.SecretParameterCount != 1 {
		t.Errorf("metadata counts = %d/%d, want 2/1", doc.Metadata.ParameterCount, doc.Metadata.SecretParameterCount)
	}
	if len(doc.Metadata.Tags) != 1 || doc.Metadata.Tags[0] != "prod" {
		t.Errorf("metadata tags = %v", doc.Metadata.Tags)
	}
}

func TestAPIKeyService_PublicConfigEnvFormat(t *testing.T) {
	db, svc, solution := newAPIKeyEnv(t)

	paramSvc := NewParameterService(db)
	for _, p := range []CreateParameterRequest{
		{Key: "db.host", Value: "db.internal", SolutionID: &solution.ID},
		{Key: "db.password", Value: "hunter2", IsSecret: true, SolutionID: &solution.ID},
	} {
		req := p
		if _, err := paramSvc.Create(&req); err != nil {
			t.Fatalf("create parameter %s: %v", p.Key, err)
		}
	}

	created, err := svc.Create(solution.ID, &CreateAPIKeyRequest{KeyName: "ci-deploy"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	result, err := svc.PublicConfig(created.APIKey, "env")
	if err != nil {
		t.Fatalf("PublicConfig: %v", err)
	}
	out := string(result.Content)
	if !strings.Contains(out, "DB_HOST=db.internal") {
		t.Errorf("env output missing plain parameter:\n%s", out)
	}
	// Secrets are commented out, never emitted.
	if !strings.Contains(out, "# SECRET: DB_PASSWORD=") {
		t.Errorf("env output should comment the secret out:\n%s", out)
	}
	if strings.Contains(out, "hunter2") {
		t.Error("secret value leaked into env output")
	}

	if _, err := svc.PublicConfig(created.APIKey, "toml"); err == nil {
		t.Error("unsupported format should be rejected")
	}
}

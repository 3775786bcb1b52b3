package services

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/solconf/solconf/internal/models"
	"github.com/solconf/solconf/pkg/response"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

const apiKeyPrefix = "sol_"

// APIKeyService manages solution API keys and the public configuration
// documents they unlock.
type APIKeyService struct {
	db          *gorm.DB
	solutionSvc *SolutionService
}

func NewAPIKeyService(db *gorm.DB) *APIKeyService {
	return &APIKeyService{
		db:          db,
		solutionSvc: NewSolutionService(db),
	}
}

type CreateAPIKeyRequest struct {
	KeyName     string `json:"key_name" binding:"required"`
	ExpiresDays int    `json:"expires_days"`
}

// APIKeyCreated is the one response that carries the raw key. It is
// not retrievable again; the caller has to store it.
type APIKeyCreated struct {
	ID         string     `json:"id"`
	SolutionID string     `json:"solution_id"`
	KeyName    string     `json:"key_name"`
	APIKey     string     `json:"api_key"`
	IsActive   bool       `json:"is_active"`
	CreatedAt  time.Time  `json:"created_at"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
}

// APIKeyInfo is a list entry. Only the key's last four characters
// survive as a preview.
type APIKeyInfo struct {
	ID            string     `json:"id"`
	SolutionID    string     `json:"solution_id"`
	KeyName       string     `json:"key_name"`
	APIKeyPreview string     `json:"api_key_preview"`
	IsActive      bool       `json:"is_active"`
	CreatedAt     time.Time  `json:"created_at"`
	LastUsed      *time.Time `json:"last_used,omitempty"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
}

func generateAPIKey() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate api key: %w", err)
	}
	return apiKeyPrefix + base64.RawURLEncoding.EncodeToString(buf), nil
}

func (s *APIKeyService) checkSolution(solutionID string) error {
	var count int64
	if err := s.db.Model(&models.Solution{}).Where("id = ?", solutionID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return response.NewNotFound("solution not found")
	}
	return nil
}

func (s *APIKeyService) Create(solutionID string, req *CreateAPIKeyRequest) (*APIKeyCreated, error) {
	if err := s.checkSolution(solutionID); err != nil {
		return nil, err
	}

	raw, err := generateAPIKey()
	if err != nil {
		return nil, err
	}

	key := models.SolutionAPIKey{
		SolutionID: solutionID,
		KeyName:    req.KeyName,
		APIKey:     raw,
		IsActive:   true,
	}
	if req.ExpiresDays > 0 {
		expires := time.Now().AddDate(0, 0, req.ExpiresDays)
		key.ExpiresAt = &expires
	}

	if err := s.db.Create(&key).Error; err != nil {
		return nil, err
	}

	return &APIKeyCreated{
		ID:         key.ID,
		SolutionID: key.SolutionID,
		KeyName:    key.KeyName,
		APIKey:     raw,
		IsActive:   key.IsActive,
		CreatedAt:  key.CreatedAt,
		ExpiresAt:  key.ExpiresAt,
	}, nil
}

func (s *APIKeyService) List(solutionID string) ([]APIKeyInfo, error) {
	if err := s.checkSolution(solutionID); err != nil {
		return nil, err
	}

	var keys []models.SolutionAPIKey
	if err := s.db.Where("solution_id = ?", solutionID).Order("created_at").Find(&keys).Error; err != nil {
		return nil, err
	}

	infos := make([]APIKeyInfo, 0, len(keys))
	for _, k := range keys {
		preview := "..."
		if len(k.APIKey) >= 4 {
			preview = "..." + k.APIKey[len(k.APIKey)-4:]
		}
		infos = append(infos, APIKeyInfo{
			ID:            k.ID,
			SolutionID:    k.SolutionID,
			KeyName:       k.KeyName,
			APIKeyPreview: preview,
			IsActive:      k.IsActive,
			CreatedAt:     k.CreatedAt,
			LastUsed:      k.LastUsed,
			ExpiresAt:     k.ExpiresAt,
		})
	}
	return infos, nil
}

func (s *APIKeyService) Delete(solutionID, keyID string) error {
	result := s.db.Where("id = ? AND solution_id = ?", keyID, solutionID).Delete(&models.SolutionAPIKey{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return response.NewNotFound("api key not found")
	}
	return nil
}

func (s *APIKeyService) Toggle(solutionID, keyID string, active bool) error {
	result := s.db.Model(&models.SolutionAPIKey{}).
		Where("id = ? AND solution_id = ?", keyID, solutionID).
		Update("is_active", active)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return response.NewNotFound("api key not found")
	}
	return nil
}

// Validate resolves a raw key to its record. Inactive, expired and
// unknown keys all come back as the same 401 so a caller cannot tell
// them apart. Successful validation touches last_used.
func (s *APIKeyService) Validate(rawKey string) (*models.SolutionAPIKey, error) {
	var key models.SolutionAPIKey
	err := s.db.Where("api_key = ? AND is_active = ?", rawKey, true).First(&key).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewUnauthorized("invalid or expired API key")
		}
		return nil, err
	}
	if key.ExpiresAt != nil && key.ExpiresAt.Before(time.Now()) {
		return nil, response.NewUnauthorized("invalid or expired API key")
	}

	now := time.Now()
	s.db.Model(&key).Update("last_used", now)
	return &key, nil
}

// PublicParameter is one parameter inside the public config document.
type PublicParameter struct {
	Value       string   `json:"value" yaml:"value"`
	Description string   `json:"description" yaml:"description"`
	IsSecret    bool     `json:"is_secret" yaml:"is_secret"`
	Tags        []string `json:"tags" yaml:"tags"`
}

// PublicConfigDocument is the full structure served to API key holders.
type PublicConfigDocument struct {
	Solution struct {
		ID          string    `json:"id" yaml:"id"`
		Name        string    `json:"name" yaml:"name"`
		Description string    `json:"description" yaml:"description"`
		CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
		ExportedAt  time.Time `json:"exported_at" yaml:"exported_at"`
	} `json:"solution" yaml:"solution"`
	Parameters map[string]PublicParameter `json:"parameters" yaml:"parameters"`
	Metadata   struct {
		ParameterCount       int      `json:"parameter_count" yaml:"parameter_count"`
		SecretParameterCount int      `json:"secret_parameter_count" yaml:"secret_parameter_count"`
		Tags                 []string `json:"tags" yaml:"tags"`
	} `json:"metadata" yaml:"metadata"`
}

// PublicConfig validates the key and renders the owning solution's
// configuration in the requested format. Secret values are never
// emitted, only placeholders.
func (s *APIKeyService) PublicConfig(rawKey, format string) (*ExportResult, error) {
	key, err := s.Validate(rawKey)
	if err != nil {
		return nil, err
	}

	solution, err := s.solutionSvc.Get(key.SolutionID)
	if err != nil {
		return nil, err
	}

	doc := buildPublicConfig(solution)
	base := strings.ReplaceAll(solution.Name, " ", "_") + "_config"

	switch format {
	case "", "json":
		content, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, err
		}
		return &ExportResult{Content: content, ContentType: "application/json", Filename: base + ".json"}, nil
	case "yaml":
		content, err := yaml.Marshal(doc)
		if err != nil {
			return nil, err
		}
		return &ExportResult{Content: content, ContentType: "application/x-yaml", Filename: base + ".yaml"}, nil
	case "env":
		return &ExportResult{Content: renderPublicEnv(doc), ContentType: "text/plain", Filename: base + ".env"}, nil
	case "properties":
		return &ExportResult{Content: renderPublicProperties(doc), ContentType: "text/plain", Filename: base + ".properties"}, nil
	default:
		return nil, response.NewBadRequest("unsupported export format: " + format)
	}
}

func buildPublicConfig(solution *models.Solution) *PublicConfigDocument {
	doc := &PublicConfigDocument{
		Parameters: make(map[string]PublicParameter, len(solution.Parameters)),
	}
	doc.Solution.ID = solution.ID
	doc.Solution.Name = solution.Name
	doc.Solution.Description = solution.Description
	doc.Solution.CreatedAt = solution.CreatedAt
	doc.Solution.ExportedAt = time.Now().UTC()

	allTags := make(map[string]bool)
	secrets := 0
	for _, p := range solution.Parameters {
		names := make([]string, 0, len(p.Tags))
		for _, t := range p.Tags {
			names = append(names, t.Name)
			allTags[t.Name] = true
		}
		sort.Strings(names)

		value := p.Value
		if p.IsSecret {
			value = SecretPlaceholder
			secrets++
		}
		doc.Parameters[p.Key] = PublicParameter{
			Value:       value,
			Description: p.Description,
			IsSecret:    p.IsSecret,
			Tags:        names,
		}
	}

	doc.Metadata.ParameterCount = len(solution.Parameters)
	doc.Metadata.SecretParameterCount = secrets
	doc.Metadata.Tags = make([]string, 0, len(allTags))
	for name := range allTags {
		doc.Metadata.Tags = append(doc.Metadata.Tags, name)
	}
	sort.Strings(doc.Metadata.Tags)
	return doc
}

func sortedParamKeys(params map[string]PublicParameter) []string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// renderPublicEnv emits KEY=value lines. Secret parameters become a
// commented placeholder the consumer has to fill in.
func renderPublicEnv(doc *PublicConfigDocument) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "# Configuration for %s\n\n", doc.Solution.Name)
	for _, key := range sortedParamKeys(doc.Parameters) {
		p := doc.Parameters[key]
		if p.Description != "" {
			fmt.Fprintf(&b, "# %s\n", p.Description)
		}
		if p.IsSecret {
			fmt.Fprintf(&b, "# SECRET: %s=<your_secret_value_here>\n\n", envKey(key))
			continue
		}
		fmt.Fprintf(&b, "%s=%s\n\n", envKey(key), p.Value)
	}
	return []byte(b.String())
}

func renderPublicProperties(doc *PublicConfigDocument) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "# Configuration for %s\n\n", doc.Solution.Name)
	for _, key := range sortedParamKeys(doc.Parameters) {
		p := doc.Parameters[key]
		if p.Description != "" {
			fmt.Fprintf(&b, "# %s\n", p.Description)
		}
		if p.IsSecret {
			fmt.Fprintf(&b, "# %s=<your_secret_value_here>\n\n", key)
			continue
		}
		value := strings.NewReplacer(`\`, `\\`, "=", `\=`, ":", `\:`).Replace(p.Value)
		fmt.Fprintf(&b, "%s=%s\n\n", key, value)
	}
	return []byte(b.String())
}

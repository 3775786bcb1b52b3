package services

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/solconf/solconf/internal/models"
	"github.com/solconf/solconf/pkg/response"
	"gorm.io/gorm"
	"gopkg.in/yaml.v3"
)

// SecretPlaceholder replaces secret parameter values in exports.
const SecretPlaceholder = "<hidden>"

type ExportService struct {
	db          *gorm.DB
	solutionSvc *SolutionService
}

func NewExportService(db *gorm.DB) *ExportService {
	return &ExportService{
		db:          db,
		solutionSvc: NewSolutionService(db),
	}
}

// ExportDocument is the rendered configuration for one solution.
type ExportDocument struct {
	Solution    string            `json:"solution" yaml:"solution"`
	GeneratedAt time.Time         `json:"generated_at" yaml:"generated_at"`
	Parameters  map[string]string `json:"parameters" yaml:"parameters"`
}

// ExportResult carries the serialized document plus transport metadata.
type ExportResult struct {
	Content     []byte
	ContentType string
	Filename    string
}

// Export renders the solution's parameters in the requested format.
// Secret values are never emitted; they are replaced by a placeholder.
func (s *ExportService) Export(solutionID, format string) (*ExportResult, error) {
	solution, err := s.solutionSvc.Get(solutionID)
	if err != nil {
		return nil, err
	}

	doc := buildExportDocument(solution)

	switch format {
	case "", "json":
		content, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, err
		}
		return &ExportResult{
			Content:     content,
			ContentType: "application/json",
			Filename:    solution.Name + ".json",
		}, nil
	case "yaml":
		content, err := yaml.Marshal(doc)
		if err != nil {
			return nil, err
		}
		return &ExportResult{
			Content:     content,
			ContentType: "application/x-yaml",
			Filename:    solution.Name + ".yaml",
		}, nil
	case "env":
		return &ExportResult{
			Content:     renderEnv(doc),
			ContentType: "text/plain",
			Filename:    solution.Name + ".env",
		}, nil
	case "properties":
		return &ExportResult{
			Content:     renderProperties(doc),
			ContentType: "text/plain",
			Filename:    solution.Name + ".properties",
		}, nil
	default:
		return nil, response.NewBadRequest("unsupported export format: " + format)
	}
}

func buildExportDocument(solution *models.Solution) *ExportDocument {
	params := make(map[string]string, len(solution.Parameters))
	for _, p := range solution.Parameters {
		value := p.Value
		if p.IsSecret {
			value = SecretPlaceholder
		}
		params[p.Key] = value
	}
	return &ExportDocument{
		Solution:    solution.Name,
		GeneratedAt: time.Now().UTC(),
		Parameters:  params,
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// renderEnv writes KEY=value lines with keys normalized to shell style.
func renderEnv(doc *ExportDocument) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n", doc.Solution)
	for _, key := range sortedKeys(doc.Parameters) {
		fmt.Fprintf(&b, "%s=%s\n", envKey(key), doc.Parameters[key])
	}
	return []byte(b.String())
}

func renderProperties(doc *ExportDocument) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n", doc.Solution)
	for _, key := range sortedKeys(doc.Parameters) {
		fmt.Fprintf(&b, "%s=%s\n", key, doc.Parameters[key])
	}
	return []byte(b.String())
}

// envKey uppercases the key and maps separators to underscores so the
// result is a valid shell variable name.
func envKey(key string) string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r - ('a' - 'A')
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, key)
	if mapped != "" && mapped[0] >= '0' && mapped[0] <= '9' {
		mapped = "_" + mapped
	}
	return mapped
}

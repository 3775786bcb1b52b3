package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/solconf/solconf/internal/models"
	"github.com/solconf/solconf/internal/services"
)

// APIError is a structured error returned by the server envelope.
type APIError struct {
	HTTPStatus int
	Code       int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server error (status %d): %s", e.HTTPStatus, e.Message)
}

// MalformedResponseError marks a reply that was not a valid envelope.
// It is distinct from APIError so callers can tell a broken gateway
// from a well-formed refusal.
type MalformedResponseError struct {
	HTTPStatus int
	Body       string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed server response (status %d)", e.HTTPStatus)
}

// IsUnauthorized reports whether err is a 401 from the server.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.HTTPStatus == http.StatusUnauthorized
}

// requestTimeout bounds every request; the client never retries.
const requestTimeout = 15 * time.Second

// Client is an HTTP client for the solconf API.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	mu    sync.Mutex
	token string

	onUnauthorized func()
}

// NewClient creates a solconf API client.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: requestTimeout},
	}
}

// SetToken installs the bearer token attached to subsequent requests.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// SetUnauthorizedHook registers the callback invoked whenever the
// server answers 401.
func (c *Client) SetUnauthorizedHook(hook func()) {
	c.onUnauthorized = hook
}

// envelope is the unified server response format.
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// do performs a request and decodes the envelope. Responses that do
// not parse as an envelope come back as MalformedResponseError.
func (c *Client) do(method, path string, body any) (*envelope, error) {
	url := c.BaseURL + path

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.mu.Lock()
	token := c.token
	c.mu.Unlock()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized && c.onUnauthorized != nil {
		c.onUnauthorized()
	}

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return nil, &MalformedResponseError{HTTPStatus: resp.StatusCode, Body: string(respBody)}
	}

	if resp.StatusCode >= 400 || env.Code != 0 {
		return &env, &APIError{
			HTTPStatus: resp.StatusCode,
			Code:       env.Code,
			Message:    env.Message,
		}
	}

	return &env, nil
}

func (c *Client) get(path string, out any) error {
	return c.call("GET", path, nil, out)
}

func (c *Client) post(path string, body, out any) error {
	return c.call("POST", path, body, out)
}

func (c *Client) put(path string, body, out any) error {
	return c.call("PUT", path, body, out)
}

func (c *Client) delete(path string) error {
	return c.call("DELETE", path, nil, nil)
}

func (c *Client) call(method, path string, body, out any) error {
	env, err := c.do(method, path, body)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if len(env.Data) == 0 {
		return &MalformedResponseError{HTTPStatus: http.StatusOK, Body: "missing data field"}
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &MalformedResponseError{HTTPStatus: http.StatusOK, Body: string(env.Data)}
	}
	return nil
}

// --- Auth ---

type loginPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
	AuthType string `json:"auth_type,omitempty"`
}

// LoginResult mirrors the server's login response.
type LoginResult struct {
	Token    string       `json:"token"`
	User     *models.User `json:"user"`
	ExpireAt string       `json:"expire_at"`
}

// Login authenticates and returns the issued token plus identity.
// It does not mutate client state; the session layer does that.
func (c *Client) Login(username, password, authType string) (*LoginResult, error) {
	var result LoginResult
	err := c.post("/api/auth/login", &loginPayload{
		Username: username,
		Password: password,
		AuthType: authType,
	}, &result)
	if err != nil {
		return nil, err
	}
	if result.Token == "" || result.User == nil {
		return nil, &MalformedResponseError{HTTPStatus: http.StatusOK, Body: "login response missing token or user"}
	}
	return &result, nil
}

// Me fetches the identity behind the current token. The identity is
// always taken from the server, never assumed locally.
func (c *Client) Me() (*models.User, error) {
	var user models.User
	if err := c.get("/api/auth/me", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Logout tells the server the session is over. Best effort; local
// cleanup happens regardless of the outcome.
func (c *Client) Logout() error {
	return c.post("/api/auth/logout", nil, nil)
}

// --- Tags ---

func (c *Client) ListTags() ([]models.Tag, error) {
	var tags []models.Tag
	if err := c.get("/api/tags", &tags); err != nil {
		return nil, err
	}
	return tags, nil
}

func (c *Client) CreateTag(name string) (*models.Tag, error) {
	var tag models.Tag
	if err := c.post("/api/tags", map[string]string{"name": name}, &tag); err != nil {
		return nil, err
	}
	return &tag, nil
}

// TagUsage is the tag plus its reference count.
type TagUsage struct {
	Tag        models.Tag `json:"tag"`
	UsageCount int64      `json:"usage_count"`
}

func (c *Client) GetTagUsage(id string) (*TagUsage, error) {
	var usage TagUsage
	if err := c.get("/api/tags/"+id+"/usage", &usage); err != nil {
		return nil, err
	}
	return &usage, nil
}

func (c *Client) DeleteTag(id string) error {
	return c.delete("/api/tags/" + id)
}

// --- Solutions ---

func (c *Client) ListSolutions() ([]models.Solution, error) {
	var solutions []models.Solution
	if err := c.get("/api/solutions", &solutions); err != nil {
		return nil, err
	}
	return solutions, nil
}

func (c *Client) GetSolution(id string) (*models.Solution, error) {
	var solution models.Solution
	if err := c.get("/api/solutions/"+id, &solution); err != nil {
		return nil, err
	}
	return &solution, nil
}

func (c *Client) CreateSolution(name, description string) (*models.Solution, error) {
	var solution models.Solution
	err := c.post("/api/solutions", map[string]string{
		"name":        name,
		"description": description,
	}, &solution)
	if err != nil {
		return nil, err
	}
	return &solution, nil
}

func (c *Client) UpdateSolution(id string, req *services.UpdateSolutionRequest) (*models.Solution, error) {
	var solution models.Solution
	if err := c.put("/api/solutions/"+id, req, &solution); err != nil {
		return nil, err
	}
	return &solution, nil
}

func (c *Client) DeleteSolution(id string) error {
	return c.delete("/api/solutions/" + id)
}

// ExportSolution retrieves the rendered configuration document. The
// export endpoint streams a file, not an envelope.
func (c *Client) ExportSolution(id, format string) ([]byte, error) {
	req, err := http.NewRequest("GET", c.BaseURL+"/api/solutions/"+id+"/export?format="+format, nil)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	token := c.token
	c.mu.Unlock()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized && c.onUnauthorized != nil {
		c.onUnauthorized()
	}
	if resp.StatusCode != http.StatusOK {
		var env envelope
		if err := json.Unmarshal(body, &env); err != nil {
			return nil, &MalformedResponseError{HTTPStatus: resp.StatusCode, Body: string(body)}
		}
		return nil, &APIError{HTTPStatus: resp.StatusCode, Code: env.Code, Message: env.Message}
	}
	return body, nil
}

// --- Parameters ---

func (c *Client) ListParameters() ([]models.Parameter, error) {
	var params []models.Parameter
	if err := c.get("/api/parameters", &params); err != nil {
		return nil, err
	}
	return params, nil
}

func (c *Client) GetParameter(id string) (*models.Parameter, error) {
	var param models.Parameter
	if err := c.get("/api/parameters/"+id, &param); err != nil {
		return nil, err
	}
	return &param, nil
}

// SearchParameters posts the filter set as a JSON body.
func (c *Client) SearchParameters(req *services.SearchParametersRequest) ([]models.Parameter, error) {
	var params []models.Parameter
	if err := c.post("/api/parameters/search", req, &params); err != nil {
		return nil, err
	}
	return params, nil
}

func (c *Client) ListUnassignedParameters() ([]models.Parameter, error) {
	var params []models.Parameter
	if err := c.get("/api/parameters/unassigned", &params); err != nil {
		return nil, err
	}
	return params, nil
}

func (c *Client) CreateParameter(req *services.CreateParameterRequest) (*models.Parameter, error) {
	var param models.Parameter
	if err := c.post("/api/parameters", req, &param); err != nil {
		return nil, err
	}
	return &param, nil
}

func (c *Client) UpdateParameter(id string, req *services.UpdateParameterRequest) (*models.Parameter, error) {
	var param models.Parameter
	if err := c.put("/api/parameters/"+id, req, &param); err != nil {
		return nil, err
	}
	return &param, nil
}

func (c *Client) DeleteParameter(id string) error {
	return c.delete("/api/parameters/" + id)
}

func (c *Client) AssignParameter(paramID, solutionID string) (*models.Parameter, error) {
	var param models.Parameter
	err := c.post("/api/parameters/"+paramID+"/assign", map[string]string{"solution_id": solutionID}, &param)
	if err != nil {
		return nil, err
	}
	return &param, nil
}

func (c *Client) UnassignParameter(paramID string) (*models.Parameter, error) {
	var param models.Parameter
	if err := c.post("/api/parameters/"+paramID+"/unassign", nil, &param); err != nil {
		return nil, err
	}
	return &param, nil
}

func (c *Client) BulkParameters(req *services.BulkOperationRequest) (*services.BulkOperationResult, error) {
	var result services.BulkOperationResult
	if err := c.post("/api/parameters/bulk", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// --- Container services ---

func (c *Client) ListServices() ([]models.ContainerService, error) {
	var list []models.ContainerService
	if err := c.get("/api/services", &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) GetService(id uint) (*models.ContainerService, error) {
	var svc models.ContainerService
	if err := c.get(fmt.Sprintf("/api/services/%d", id), &svc); err != nil {
		return nil, err
	}
	return &svc, nil
}

func (c *Client) CreateService(req *services.CreateServiceRequest) (*models.ContainerService, error) {
	var svc models.ContainerService
	if err := c.post("/api/services", req, &svc); err != nil {
		return nil, err
	}
	return &svc, nil
}

func (c *Client) DeleteService(id uint) error {
	return c.delete(fmt.Sprintf("/api/services/%d", id))
}

func (c *Client) StartService(id uint) (*models.ContainerService, error) {
	var svc models.ContainerService
	if err := c.post(fmt.Sprintf("/api/services/%d/start", id), nil, &svc); err != nil {
		return nil, err
	}
	return &svc, nil
}

func (c *Client) StopService(id uint) (*models.ContainerService, error) {
	var svc models.ContainerService
	if err := c.post(fmt.Sprintf("/api/services/%d/stop", id), nil, &svc); err != nil {
		return nil, err
	}
	return &svc, nil
}

// --- Compute pools ---

func (c *Client) ListPools() ([]models.ComputePool, error) {
	var pools []models.ComputePool
	if err := c.get("/api/pools", &pools); err != nil {
		return nil, err
	}
	return pools, nil
}

func (c *Client) GetPool(id uint) (*models.ComputePool, error) {
	var pool models.ComputePool
	if err := c.get(fmt.Sprintf("/api/pools/%d", id), &pool); err != nil {
		return nil, err
	}
	return &pool, nil
}

func (c *Client) CreatePool(req *services.CreatePoolRequest) (*models.ComputePool, error) {
	var pool models.ComputePool
	if err := c.post("/api/pools", req, &pool); err != nil {
		return nil, err
	}
	return &pool, nil
}

func (c *Client) DeletePool(id uint) error {
	return c.delete(fmt.Sprintf("/api/pools/%d", id))
}

func (c *Client) SuspendPool(id uint) (*models.ComputePool, error) {
	var pool models.ComputePool
	if err := c.post(fmt.Sprintf("/api/pools/%d/suspend", id), nil, &pool); err != nil {
		return nil, err
	}
	return &pool, nil
}

func (c *Client) ResumePool(id uint) (*models.ComputePool, error) {
	var pool models.ComputePool
	if err := c.post(fmt.Sprintf("/api/pools/%d/resume", id), nil, &pool); err != nil {
		return nil, err
	}
	return &pool, nil
}

// --- Settings ---

func (c *Client) GetSettings(group string, out any) error {
	return c.get("/api/config/"+group, out)
}

func (c *Client) UpdateSettings(group string, body, out any) error {
	return c.put("/api/config/"+group, body, out)
}

// --- Health ---

// Health calls the public health endpoint, bypassing the envelope.
func (c *Client) Health() (map[string]any, error) {
	resp, err := c.HTTPClient.Get(c.BaseURL + "/api/health")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var result map[string]any
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &MalformedResponseError{HTTPStatus: resp.StatusCode, Body: string(body)}
	}
	return result, nil
}

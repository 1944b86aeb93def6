package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"teatrlead/entity"
	"teatrlead/internal/config"
	"teatrlead/lib/sl"
)

// Client talks to one amoCRM account over its v4 REST API.
type Client struct {
	hc   *http.Client
	conf config.CRMConfig
	log  *slog.Logger

	mu           sync.Mutex
	accessToken  string
	refreshToken string
}

func NewClient(cfg config.CRMConfig, logger *slog.Logger) *Client {
	return &Client{
		hc:           &http.Client{Timeout: 10 * time.Second},
		conf:         cfg,
		log:          logger.With(sl.Module("crm"), slog.String("subdomain", cfg.Subdomain)),
		accessToken:  cfg.AccessToken,
		refreshToken: cfg.RefreshToken,
	}
}

func (c *Client) baseURL() string {
	return fmt.Sprintf("https://%s.amocrm.ru", c.conf.Subdomain)
}

func (c *Client) token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken
}

// request sends an authenticated call and returns the body with the HTTP
// status code, so callers can react to expired tokens.
func (c *Client) request(ctx context.Context, method, path string, payload interface{}) ([]byte, int, error) {
	log := c.log.With(
		slog.String("method", method),
		slog.String("path", path),
	)

	status := "ERROR"
	t1 := time.Now()
	defer func() {
		t2 := time.Now()
		log.Debug("amoCRM API request completed",
			slog.String("duration", fmt.Sprintf("%.3fms", float64(t2.Sub(t1))/float64(time.Millisecond))),
			slog.String("status", status))
	}()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			log.Error("marshal payload", sl.Err(err))
			return nil, 0, err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL()+path, body)
	if err != nil {
		log.Error("create request", sl.Err(err))
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token())

	resp, err := c.hc.Do(req)
	if err != nil {
		log.Error("request failed", sl.Err(err))
		return nil, 0, err
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)

	status = resp.Status
	if resp.StatusCode >= 300 {
		log.Error("amoCRM API returned error",
			slog.String("status", resp.Status),
			slog.String("body", string(data)))
		return data, resp.StatusCode, &apiError{code: resp.StatusCode, status: resp.Status, body: string(data)}
	}
	return data, resp.StatusCode, nil
}

type apiError struct {
	code   int
	status string
	body   string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("amocrm %s: %s", e.status, e.body)
}

func isUnauthorized(err error) bool {
	var apiErr *apiError
	return errors.As(err, &apiErr) && apiErr.code == http.StatusUnauthorized
}

type customField struct {
	FieldId int64        `json:"field_id"`
	Values  []fieldValue `json:"values"`
}

type fieldValue struct {
	Value    string `json:"value"`
	EnumCode string `json:"enum_code,omitempty"`
}

func field(id int64, value string) customField {
	return customField{FieldId: id, Values: []fieldValue{{Value: value}}}
}

// CreateContact registers the visitor as an amoCRM contact and returns the
// new contact id.
func (c *Client) CreateContact(ctx context.Context, v *entity.VisitorProfile) (int64, error) {
	fields := c.conf.Fields

	contact := map[string]interface{}{
		"name": v.Name,
		"custom_fields_values": []customField{
			{FieldId: phoneFieldCode, Values: []fieldValue{{Value: v.Phone, EnumCode: "WORK"}}},
			{FieldId: emailFieldCode, Values: []fieldValue{{Value: v.Email, EnumCode: "WORK"}}},
			field(fields.ContactBirthday, v.Birthday),
			field(fields.ContactGender, v.Gender),
			field(fields.ContactTgUsername, v.Username),
			field(fields.ContactTgId, fmt.Sprintf("%d", v.UserID)),
		},
	}
	if c.conf.ResponsibleId > 0 {
		contact["responsible_user_id"] = c.conf.ResponsibleId
	}

	data, _, err := c.request(ctx, http.MethodPost, "/api/v4/contacts", []interface{}{contact})
	if err != nil {
		return 0, err
	}

	var result struct {
		Embedded struct {
			Contacts []struct {
				Id int64 `json:"id"`
			} `json:"contacts"`
		} `json:"_embedded"`
	}
	if err = json.Unmarshal(data, &result); err != nil {
		return 0, fmt.Errorf("parse contact response: %w", err)
	}
	if len(result.Embedded.Contacts) == 0 {
		return 0, fmt.Errorf("contact response carries no contact")
	}
	return result.Embedded.Contacts[0].Id, nil
}

// Well-known system field ids for phone and email on contacts.
const (
	phoneFieldCode int64 = 264911
	emailFieldCode int64 = 264913
)

// CreateLead opens a deal for a registered contact and returns the lead id.
func (c *Client) CreateLead(ctx context.Context, v *entity.VisitorProfile, contactId int64) (int64, error) {
	fields := c.conf.Fields

	lead := map[string]interface{}{
		"name":  "Заявка от " + v.Name,
		"price": 0,
		"custom_fields_values": []customField{
			field(fields.LeadProject, v.Project),
			field(fields.LeadShowDatetime, v.ShowDatetime),
			field(fields.LeadPromoCode, v.PromoCode),
			field(fields.LeadScenario, entity.ScenarioLabel(v.Scenario)),
		},
		"_embedded": map[string]interface{}{
			"contacts": []map[string]int64{{"id": contactId}},
			"tags":     leadTags(v),
		},
	}
	if c.conf.ResponsibleId > 0 {
		lead["responsible_user_id"] = c.conf.ResponsibleId
	}
	if c.conf.PipelineId > 0 {
		lead["pipeline_id"] = c.conf.PipelineId
		if statusId, err := c.readyStatusId(ctx); err == nil && statusId > 0 {
			lead["status_id"] = statusId
		}
	}

	data, _, err := c.request(ctx, http.MethodPost, "/api/v4/leads", []interface{}{lead})
	if err != nil {
		return 0, err
	}

	var result struct {
		Embedded struct {
			Leads []struct {
				Id int64 `json:"id"`
			} `json:"leads"`
		} `json:"_embedded"`
	}
	if err = json.Unmarshal(data, &result); err != nil {
		return 0, fmt.Errorf("parse lead response: %w", err)
	}
	if len(result.Embedded.Leads) == 0 {
		return 0, fmt.Errorf("lead response carries no lead")
	}
	return result.Embedded.Leads[0].Id, nil
}

type leadTag struct {
	Name string `json:"name"`
}

func leadTags(v *entity.VisitorProfile) []leadTag {
	tags := []leadTag{{Name: "TG_BOT"}, {Name: "NY_25_26"}}
	if v.Project != "" {
		tags = append(tags, leadTag{Name: showTag(v.Project)})
	}
	return tags
}

// showTag derives a stable tag from a project title: "Любовь и голуби" ->
// "SHOW_ЛЮБОВЬ_И_ГОЛУБИ".
func showTag(project string) string {
	tag := strings.ToUpper(strings.TrimSpace(project))
	tag = strings.Join(strings.Fields(tag), "_")
	return "SHOW_" + tag
}

// PipelineStatus is one stage of a sales pipeline.
type PipelineStatus struct {
	Id   int64  `json:"id"`
	Name string `json:"name"`
}

func (c *Client) PipelineStatuses(ctx context.Context) ([]PipelineStatus, error) {
	path := fmt.Sprintf("/api/v4/leads/pipelines/%d", c.conf.PipelineId)
	data, _, err := c.request(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var result struct {
		Embedded struct {
			Statuses []PipelineStatus `json:"statuses"`
		} `json:"_embedded"`
	}
	if err = json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("parse pipeline response: %w", err)
	}
	return result.Embedded.Statuses, nil
}

// readyStatusId picks the pipeline stage new deals land in: the first stage
// whose name reads as ready for work, otherwise the first stage.
func (c *Client) readyStatusId(ctx context.Context) (int64, error) {
	statuses, err := c.PipelineStatuses(ctx)
	if err != nil {
		return 0, err
	}
	for _, st := range statuses {
		name := strings.ToLower(st.Name)
		if strings.Contains(name, "готов") || strings.Contains(name, "ready") {
			return st.Id, nil
		}
	}
	if len(statuses) > 0 {
		return statuses[0].Id, nil
	}
	return 0, nil
}

// RefreshAccessToken exchanges the refresh token for a fresh token pair and
// swaps both in place.
func (c *Client) RefreshAccessToken(ctx context.Context) error {
	c.mu.Lock()
	refresh := c.refreshToken
	c.mu.Unlock()

	payload := map[string]string{
		"client_id":     c.conf.ClientId,
		"client_secret": c.conf.ClientSecret,
		"grant_type":    "refresh_token",
		"refresh_token": refresh,
		"redirect_uri":  c.conf.RedirectUri,
	}
	data, _, err := c.request(ctx, http.MethodPost, "/oauth2/access_token", payload)
	if err != nil {
		return err
	}

	var result struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	if err = json.Unmarshal(data, &result); err != nil {
		return fmt.Errorf("parse token response: %w", err)
	}
	if result.AccessToken == "" {
		return fmt.Errorf("token response carries no access token")
	}

	c.mu.Lock()
	c.accessToken = result.AccessToken
	if result.RefreshToken != "" {
		c.refreshToken = result.RefreshToken
	}
	c.mu.Unlock()

	c.log.Info("access token refreshed", sl.Secret("token", result.AccessToken))
	return nil
}

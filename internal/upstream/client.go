package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rajsir217-oss/profiledata-gateway/internal/domain/model"
)

var (
	ErrUnauthorized    = errors.New("upstream rejected credentials")
	ErrProfileNotFound = errors.New("upstream profile not found")
)

// Client talks to the profile backend that owns user records and runs the
// actual search queries. The gateway never stores profile data itself.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// SearchQuery mirrors the upstream search endpoint's query parameters.
// Zero values are omitted from the request.
type SearchQuery struct {
	Keyword           string
	Gender            string
	AgeMin            int
	AgeMax            int
	HeightMinInches   int
	HeightMaxInches   int
	Location          string
	Education         string
	CastePreference   string
	EatingPreference  string
	WorkingStatus     string
	CitizenshipStatus string
	DaysBack          int
	ProfileID         string
	Page              int
	PageSize          int
	Requester         string
}

type SearchPage struct {
	Users []model.SearchResultUser `json:"users"`
	Total int                      `json:"total"`
	Page  int                      `json:"page"`
}

func (c *Client) Login(ctx context.Context, username, password string) (role string, err error) {
	body, err := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return "", fmt.Errorf("marshal login payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/users/login", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("call upstream login: %w", err)
	}
	defer drainAndClose(resp.Body)

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return "", ErrUnauthorized
	default:
		return "", unexpectedStatus("login", resp.StatusCode)
	}

	var payload struct {
		Role string `json:"role"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode login response: %w", err)
	}
	return payload.Role, nil
}

// CheckCredentials adapts Login to the auth service's interface.
func (c *Client) CheckCredentials(ctx context.Context, username, password string) (string, error) {
	return c.Login(ctx, username, password)
}

func (c *Client) GetProfile(ctx context.Context, username, requester string) (model.ViewerProfile, error) {
	endpoint := fmt.Sprintf("%s/api/users/profile/%s", c.baseURL, url.PathEscape(username))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return model.ViewerProfile{}, fmt.Errorf("build profile request: %w", err)
	}
	if requester != "" {
		req.Header.Set("X-Requester-Username", requester)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return model.ViewerProfile{}, fmt.Errorf("call upstream profile: %w", err)
	}
	defer drainAndClose(resp.Body)

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return model.ViewerProfile{}, ErrProfileNotFound
	default:
		return model.ViewerProfile{}, unexpectedStatus("profile", resp.StatusCode)
	}

	var profile model.ViewerProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return model.ViewerProfile{}, fmt.Errorf("decode profile response: %w", err)
	}
	return profile, nil
}

func (c *Client) Search(ctx context.Context, query SearchQuery) (SearchPage, error) {
	endpoint := c.baseURL + "/api/users/search?" + encodeSearchQuery(query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return SearchPage{}, fmt.Errorf("build search request: %w", err)
	}
	if query.Requester != "" {
		req.Header.Set("X-Requester-Username", query.Requester)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return SearchPage{}, fmt.Errorf("call upstream search: %w", err)
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return SearchPage{}, unexpectedStatus("search", resp.StatusCode)
	}

	var page SearchPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return SearchPage{}, fmt.Errorf("decode search response: %w", err)
	}
	return page, nil
}

func encodeSearchQuery(query SearchQuery) string {
	values := url.Values{}
	setIfNotEmpty := func(key, value string) {
		if value != "" {
			values.Set(key, value)
		}
	}

	setIfNotEmpty("keyword", query.Keyword)
	setIfNotEmpty("gender", query.Gender)
	if query.AgeMin > 0 {
		values.Set("ageMin", strconv.Itoa(query.AgeMin))
	}
	if query.AgeMax > 0 {
		values.Set("ageMax", strconv.Itoa(query.AgeMax))
	}
	if query.HeightMinInches > 0 {
		values.Set("heightMin", strconv.Itoa(query.HeightMinInches))
	}
	if query.HeightMaxInches > 0 {
		values.Set("heightMax", strconv.Itoa(query.HeightMaxInches))
	}
	setIfNotEmpty("location", query.Location)
	setIfNotEmpty("education", query.Education)
	setIfNotEmpty("castePreference", query.CastePreference)
	setIfNotEmpty("eatingPreference", query.EatingPreference)
	setIfNotEmpty("workingStatus", query.WorkingStatus)
	setIfNotEmpty("citizenshipStatus", query.CitizenshipStatus)
	if query.DaysBack > 0 {
		values.Set("daysBack", strconv.Itoa(query.DaysBack))
	}
	setIfNotEmpty("profileId", query.ProfileID)
	if query.Page > 0 {
		values.Set("page", strconv.Itoa(query.Page))
	}
	if query.PageSize > 0 {
		values.Set("pageSize", strconv.Itoa(query.PageSize))
	}

	return values.Encode()
}

func unexpectedStatus(op string, status int) error {
	return fmt.Errorf("upstream %s returned status %d", op, status)
}

func drainAndClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, body)
	_ = body.Close()
}

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	authModels "fight-manager-api/packages/auth/models"
	"fight-manager-api/packages/core/models"
)

// APIError is returned for every non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, http.StatusText(e.Status), e.Message)
}

// IsStatus reports whether err is an APIError with the given status code.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// ErrNotSignedIn is returned by admin calls made without a valid session.
var ErrNotSignedIn = errors.New("not signed in")

// Client talks to the fight manager REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	session    *Session
}

func New(baseURL string, session *Session, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		session:    session,
	}
}

func (c *Client) Session() *Session {
	return c.session
}

// Login exchanges credentials for tokens and stores them in the session.
func (c *Client) Login(ctx context.Context, username, password string) (*authModels.TokenResponse, error) {
	var tokens authModels.TokenResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", false,
		authModels.LoginRequest{Username: username, Password: password}, &tokens)
	if err != nil {
		return nil, err
	}
	if c.session != nil {
		err = c.session.Set(SessionState{
			Username:     username,
			Token:        tokens.AccessToken,
			RefreshToken: tokens.RefreshToken,
			ExpiresAt:    tokens.ExpiresAt,
		})
	}
	return &tokens, err
}

// Logout revokes the refresh token when there is one and always clears the
// local session.
func (c *Client) Logout(ctx context.Context) error {
	if c.session == nil {
		return nil
	}
	var revokeErr error
	if refresh := c.session.State().RefreshToken; refresh != "" {
		revokeErr = c.do(ctx, http.MethodPost, "/auth/logout", false,
			authModels.RefreshTokenRequest{RefreshToken: refresh}, nil)
	}
	if err := c.session.Clear(); err != nil {
		return err
	}
	return revokeErr
}

func (c *Client) Me(ctx context.Context) (*authModels.User, error) {
	var user authModels.User
	if err := c.do(ctx, http.MethodGet, "/users/me", true, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) Fights(ctx context.Context) ([]models.Fight, error) {
	var fights []models.Fight
	err := c.do(ctx, http.MethodGet, "/fights", false, nil, &fights)
	return fights, err
}

// Ongoing returns nil when no fight is in progress.
func (c *Client) Ongoing(ctx context.Context) (*models.Fight, error) {
	return c.optionalFight(ctx, "/fights/ongoing")
}

func (c *Client) Ready(ctx context.Context) (*models.Fight, error) {
	return c.optionalFight(ctx, "/fights/ready")
}

func (c *Client) Next(ctx context.Context, limit int) ([]models.Fight, error) {
	var fights []models.Fight
	err := c.do(ctx, http.MethodGet, withLimit("/fights/next", limit), false, nil, &fights)
	return fights, err
}

func (c *Client) Past(ctx context.Context, limit int) ([]models.Fight, error) {
	var fights []models.Fight
	err := c.do(ctx, http.MethodGet, withLimit("/fights/past", limit), false, nil, &fights)
	return fights, err
}

func (c *Client) Status(ctx context.Context) (*models.Board, error) {
	var board models.Board
	if err := c.do(ctx, http.MethodGet, "/fights/status", false, nil, &board); err != nil {
		return nil, err
	}
	return &board, nil
}

// PublicBoard reads the cached viewer board.
func (c *Client) PublicBoard(ctx context.Context) (*models.Board, error) {
	var board models.Board
	if err := c.do(ctx, http.MethodGet, "/public/board", false, nil, &board); err != nil {
		return nil, err
	}
	return &board, nil
}

func (c *Client) Start(ctx context.Context, id string) (*models.Fight, error) {
	return c.fightAction(ctx, id, "start")
}

func (c *Client) End(ctx context.Context, id string) (*models.Fight, error) {
	return c.fightAction(ctx, id, "end")
}

func (c *Client) Cancel(ctx context.Context, id string) (*models.Fight, error) {
	return c.fightAction(ctx, id, "cancel")
}

func (c *Client) Reset(ctx context.Context, id string) (*models.Fight, error) {
	return c.fightAction(ctx, id, "reset")
}

func (c *Client) Add(ctx context.Context, req models.CreateFightRequest) (*models.Fight, error) {
	var fight models.Fight
	if err := c.do(ctx, http.MethodPost, "/fights/add", true, req, &fight); err != nil {
		return nil, err
	}
	return &fight, nil
}

func (c *Client) Update(ctx context.Context, id string, req models.UpdateFightRequest) (*models.Fight, error) {
	var fight models.Fight
	if err := c.do(ctx, http.MethodPatch, "/fights/"+url.PathEscape(id), true, req, &fight); err != nil {
		return nil, err
	}
	return &fight, nil
}

// ChangeNumber returns the whole card in fight number order.
func (c *Client) ChangeNumber(ctx context.Context, id string, number int) ([]models.Fight, error) {
	var fights []models.Fight
	path := "/fights/" + url.PathEscape(id) + "/number/" + strconv.Itoa(number)
	err := c.do(ctx, http.MethodPatch, path, true, nil, &fights)
	return fights, err
}

func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/fights/"+url.PathEscape(id), true, nil, nil)
}

func (c *Client) Clear(ctx context.Context) (string, error) {
	var msg models.MessageResponse
	err := c.do(ctx, http.MethodDelete, "/fights", true, nil, &msg)
	return msg.Message, err
}

func (c *Client) SetStartTime(ctx context.Context, clock string) (string, error) {
	var msg models.MessageResponse
	err := c.do(ctx, http.MethodPost, "/fights/start-time", true, models.StartTimeRequest{StartTime: clock}, &msg)
	return msg.Message, err
}

// Import uploads a CSV card. filename must end in .csv.
func (c *Client) Import(ctx context.Context, filename string, r io.Reader) (*models.ImportResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("reading %s: %w", filename, err)
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/fights/import", true, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var result models.ImportResult
	if err := c.send(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Export streams the schedule workbook into w.
func (c *Client) Export(ctx context.Context, w io.Writer) error {
	req, err := c.newRequest(ctx, http.MethodGet, "/fights/export", false, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("export request: %w", err)
	}
	defer resp.Body.Close()
	if err := checkResponse(resp); err != nil {
		return err
	}
	_, err = io.Copy(w, resp.Body)
	return err
}

func (c *Client) fightAction(ctx context.Context, id, action string) (*models.Fight, error) {
	var fight models.Fight
	path := "/fights/" + url.PathEscape(id) + "/" + action
	if err := c.do(ctx, http.MethodPost, path, true, nil, &fight); err != nil {
		return nil, err
	}
	return &fight, nil
}

func (c *Client) optionalFight(ctx context.Context, path string) (*models.Fight, error) {
	var fight *models.Fight
	if err := c.do(ctx, http.MethodGet, path, false, nil, &fight); err != nil {
		return nil, err
	}
	return fight, nil
}

func (c *Client) do(ctx context.Context, method, path string, auth bool, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := c.newRequest(ctx, method, path, auth, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, auth bool, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if auth {
		token := ""
		if c.session != nil {
			token = c.session.Token()
		}
		if token == "" {
			return nil, ErrNotSignedIn
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

func (c *Client) send(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if err := checkResponse(resp); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", req.URL.Path, err)
	}
	return nil
}

func checkResponse(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var body struct {
		Error string `json:"error"`
	}
	msg := strings.TrimSpace(string(data))
	if json.Unmarshal(data, &body) == nil && body.Error != "" {
		msg = body.Error
	}
	return &APIError{Status: resp.StatusCode, Message: msg}
}

func withLimit(path string, limit int) string {
	if limit <= 0 {
		return path
	}
	return path + "?limit=" + strconv.Itoa(limit)
}

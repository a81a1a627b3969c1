package feishu

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/teemow/larktask/internal/instrumentation"
	"github.com/teemow/larktask/internal/logging"
)

const tenantTokenPath = "/open-apis/auth/v3/tenant_access_token/internal"

// tokenExpiryMargin is subtracted from the reported lifetime so a cached
// token is never used in its final minute.
const tokenExpiryMargin = time.Minute

type tenantTokenRequest struct {
	AppID     string `json:"app_id"`
	AppSecret string `json:"app_secret"`
}

type tenantTokenResponse struct {
	Code              int    `json:"code"`
	Msg               string `json:"msg"`
	TenantAccessToken string `json:"tenant_access_token"`
	Expire            int    `json:"expire"`
}

// tenantTokenSource fetches tenant access tokens with app credentials.
// It is wrapped in oauth2.ReuseTokenSource by NewClient.
type tenantTokenSource struct {
	baseURL    string
	appID      string
	appSecret  string
	httpClient *http.Client
	metrics    *instrumentation.Metrics
	logger     *slog.Logger
	now        func() time.Time
}

// Token implements oauth2.TokenSource.
func (s *tenantTokenSource) Token() (*oauth2.Token, error) {
	ctx := context.Background()
	start := time.Now()

	tok, err := s.fetch(ctx)

	s.metrics.RecordAPIOperation(ctx, instrumentation.ServiceAuth, "tenant_access_token",
		instrumentation.StatusFor(err), time.Since(start))
	if err != nil {
		s.logger.Error("tenant token request failed", logging.Err(err))
		return nil, err
	}

	s.logger.Debug("tenant token acquired",
		slog.String("token", logging.SanitizeToken(tok.AccessToken)),
		slog.Time("expiry", tok.Expiry))
	return tok, nil
}

func (s *tenantTokenSource) fetch(ctx context.Context) (*oauth2.Token, error) {
	const op = "auth.tenant_access_token"

	body, err := json.Marshal(tenantTokenRequest{AppID: s.appID, AppSecret: s.appSecret})
	if err != nil {
		return nil, fmt.Errorf("%s: failed to marshal request: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+tenantTokenPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create request: %w", op, err)
	}
	req.Header.Set("Content-Type", contentTypeJSON)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	var tr tenantTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, &APIError{Op: op, HTTPStatus: resp.StatusCode, Msg: "undecodable response"}
	}
	if tr.Code != 0 {
		return nil, &APIError{Op: op, Code: tr.Code, Msg: tr.Msg, HTTPStatus: resp.StatusCode}
	}
	if tr.TenantAccessToken == "" {
		return nil, &APIError{Op: op, HTTPStatus: resp.StatusCode, Msg: "empty tenant_access_token"}
	}

	lifetime := time.Duration(tr.Expire)*time.Second - tokenExpiryMargin
	if lifetime < 0 {
		lifetime = 0
	}

	return &oauth2.Token{
		AccessToken: tr.TenantAccessToken,
		TokenType:   "Bearer",
		Expiry:      s.now().Add(lifetime),
	}, nil
}

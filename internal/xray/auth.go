package xray

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/fjglira/xraysync/internal/domain"
)

// Credentials are the API key pair exchanged for a token.
type Credentials struct {
	ClientID     string
	ClientSecret string
	AuthURL      string
}

// Authenticate exchanges creds for an API token. The endpoint may answer
// with {"token": "..."}, a JSON string or the bare token text.
func Authenticate(ctx context.Context, hc *http.Client, creds Credentials) (string, error) {
	if creds.ClientID == "" || creds.ClientSecret == "" || creds.AuthURL == "" {
		return "", domain.NewErrorWithSuggestion(domain.PhaseAuth, "",
			"client id, client secret and auth URL are required",
			"set CLIENT_ID, CLIENT_SECRET and AUTH_URL in the .env file",
			nil)
	}
	if hc == nil {
		hc = http.DefaultClient
	}

	payload, err := json.Marshal(map[string]string{
		"client_id":     creds.ClientID,
		"client_secret": creds.ClientSecret,
	})
	if err != nil {
		return "", domain.NewError(domain.PhaseAuth, "", "failed to encode credentials", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, creds.AuthURL, bytes.NewReader(payload))
	if err != nil {
		return "", domain.NewError(domain.PhaseAuth, creds.AuthURL, "failed to create request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := hc.Do(req)
	if err != nil {
		return "", domain.NewError(domain.PhaseAuth, creds.AuthURL, "authentication request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", domain.NewError(domain.PhaseAuth, creds.AuthURL, "failed to read response", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", domain.NewErrorWithSuggestion(domain.PhaseAuth, creds.AuthURL,
			"authentication rejected",
			"check the client id and secret of the API key",
			newHTTPError(resp, body))
	}

	token := parseToken(body)
	if token == "" {
		return "", domain.NewError(domain.PhaseAuth, creds.AuthURL, "empty token in response", nil)
	}
	return token, nil
}

func parseToken(body []byte) string {
	var v any
	if err := json.Unmarshal(body, &v); err == nil {
		switch t := v.(type) {
		case string:
			return strings.TrimSpace(t)
		case map[string]any:
			if tok, ok := t["token"]; ok && tok != nil {
				return strings.TrimSpace(fmt.Sprint(tok))
			}
			return ""
		}
	}
	return strings.Trim(strings.TrimSpace(string(body)), `"`)
}

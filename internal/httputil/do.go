// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across clients.
package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/time/rate"

	"github.com/pdiddy/pubmed-extract/pkg/types"
)

// maxErrorBody bounds how much of a failed response body is quoted in errors.
const maxErrorBody = 512

// Do waits for the limiter, executes the request once, and classifies the
// outcome. A nil limiter disables throttling.
//
// Transport failures and non-2xx responses wrap types.ErrNetwork. HTTP 401
// and 403, and 400 responses that complain about the API key, wrap
// types.ErrServiceAuth. On error the response body is drained and closed;
// on success the caller owns it.
func Do(ctx context.Context, client *http.Client, limiter *rate.Limiter, req *http.Request) (*http.Response, error) {
	if limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: waiting for rate limiter: %w", types.ErrNetwork, err)
		}
	}

	resp, err := client.Do(req.Clone(ctx))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrNetwork, err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}

	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	io.Copy(io.Discard, resp.Body)
	msg := strings.TrimSpace(string(body))

	kind := types.ErrNetwork
	switch {
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		kind = types.ErrServiceAuth
	case resp.StatusCode == http.StatusBadRequest && strings.Contains(strings.ToLower(msg), "api key"):
		kind = types.ErrServiceAuth
	}

	if msg == "" {
		return nil, fmt.Errorf("%w: HTTP %d", kind, resp.StatusCode)
	}
	return nil, fmt.Errorf("%w: HTTP %d: %s", kind, resp.StatusCode, msg)
}

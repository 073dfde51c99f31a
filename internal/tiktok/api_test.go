package tiktok

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
)

func TestGetUserInfo(t *testing.T) {
	t.Parallel()

	var gotPath, gotFields, gotAuth string
	a := testAuth(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotFields = r.URL.Query().Get("fields")
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"data":{"user":{"open_id":"u1","display_name":"Creator","follower_count":1200}},
			"error":{"code":"ok","message":"","log_id":"L2"}}`))
	}))

	info, err := a.GetUserInfo(context.Background(), "act.1")
	if err != nil {
		t.Fatalf("GetUserInfo: %v", err)
	}
	if gotPath != "/user/info/" {
		t.Errorf("path = %q", gotPath)
	}
	if gotAuth != "Bearer act.1" {
		t.Errorf("authorization = %q", gotAuth)
	}
	if !strings.Contains(gotFields, "open_id") || !strings.Contains(gotFields, "follower_count") {
		t.Errorf("fields allowlist missing entries: %q", gotFields)
	}
	if info.OpenID != "u1" || info.DisplayName != "Creator" || info.FollowerCount != 1200 {
		t.Errorf("unexpected user info: %+v", info)
	}
}

func TestAPIErrorOnHTTP200(t *testing.T) {
	t.Parallel()

	a := testAuth(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{},"error":{"code":"access_token_invalid","message":"The access token is invalid.","log_id":"L3"}}`))
	}))

	_, err := a.GetUserInfo(context.Background(), "act.bad")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.Code != "access_token_invalid" {
		t.Errorf("code = %q", apiErr.Code)
	}
	if apiErr.LogID != "L3" {
		t.Errorf("log id = %q", apiErr.LogID)
	}
}

func TestListVideos(t *testing.T) {
	t.Parallel()

	a := testAuth(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		_, _ = w.Write([]byte(`{"data":{"videos":[{"id":"v1","title":"clip"}],"cursor":1700000001000,"has_more":true},
			"error":{"code":"ok","message":""}}`))
	}))

	result, err := a.ListVideos(context.Background(), "act.1", 0, 0)
	if err != nil {
		t.Fatalf("ListVideos: %v", err)
	}
	if len(result.Videos) != 1 || result.Videos[0].ID != "v1" {
		t.Errorf("unexpected videos: %+v", result.Videos)
	}
	if !result.HasMore || result.Cursor != 1700000001000 {
		t.Errorf("pagination fields lost: %+v", result)
	}
}

func TestListVideosMaxCount(t *testing.T) {
	t.Parallel()

	a := testAuth(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should not reach the network")
	}))
	if _, err := a.ListVideos(context.Background(), "act.1", 0, 21); err == nil {
		t.Fatal("expected max count error")
	}
}

func TestQueryVideos(t *testing.T) {
	t.Parallel()

	a := testAuth(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/video/query/" {
			t.Errorf("path = %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"data":{"videos":[{"id":"v1"},{"id":"v2"}]},"error":{"code":"ok"}}`))
	}))

	videos, err := a.QueryVideos(context.Background(), "act.1", []string{"v1", "v2"})
	if err != nil {
		t.Fatalf("QueryVideos: %v", err)
	}
	if len(videos) != 2 {
		t.Errorf("unexpected videos: %+v", videos)
	}
}

func TestQueryVideosValidation(t *testing.T) {
	t.Parallel()

	a := testAuth(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should not reach the network")
	}))

	if _, err := a.QueryVideos(context.Background(), "act.1", nil); err == nil {
		t.Error("expected error for empty id list")
	}
	ids := make([]string, maxVideoQueryIDs+1)
	if _, err := a.QueryVideos(context.Background(), "act.1", ids); err == nil {
		t.Error("expected error for oversized id list")
	}
}

package tiktok

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Field allowlists sent with every API call. The platform only returns
// fields that are explicitly requested.
const (
	userInfoFields  = "open_id,union_id,avatar_url,display_name,bio_description,profile_deep_link,is_verified,follower_count,following_count,likes_count,video_count"
	videoInfoFields = "id,create_time,cover_image_url,share_url,video_description,duration,title,embed_link,like_count,comment_count,share_count,view_count"
)

// maxVideoQueryIDs is the platform cap on ids per video query call.
const maxVideoQueryIDs = 20

// apiEnvelope wraps every Open API response. An error object with a
// non-"ok" code means failure regardless of HTTP status.
type apiEnvelope struct {
	Data  json.RawMessage `json:"data"`
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		LogID   string `json:"log_id"`
	} `json:"error"`
}

// UserInfo is the profile and stats record of the authorized account.
type UserInfo struct {
	OpenID          string `json:"open_id"`
	UnionID         string `json:"union_id"`
	AvatarURL       string `json:"avatar_url"`
	DisplayName     string `json:"display_name"`
	BioDescription  string `json:"bio_description"`
	ProfileDeepLink string `json:"profile_deep_link"`
	IsVerified      bool   `json:"is_verified"`
	FollowerCount   int64  `json:"follower_count"`
	FollowingCount  int64  `json:"following_count"`
	LikesCount      int64  `json:"likes_count"`
	VideoCount      int64  `json:"video_count"`
}

// Video is one published video of the authorized account.
type Video struct {
	ID               string `json:"id"`
	CreateTime       int64  `json:"create_time"`
	CoverImageURL    string `json:"cover_image_url"`
	ShareURL         string `json:"share_url"`
	VideoDescription string `json:"video_description"`
	Duration         int    `json:"duration"`
	Title            string `json:"title"`
	EmbedLink        string `json:"embed_link"`
	LikeCount        int64  `json:"like_count"`
	CommentCount     int64  `json:"comment_count"`
	ShareCount       int64  `json:"share_count"`
	ViewCount        int64  `json:"view_count"`
}

// VideoListResult is one page of the account's video list. Callers pass
// Cursor back to ListVideos while HasMore is true.
type VideoListResult struct {
	Videos  []Video `json:"videos"`
	Cursor  int64   `json:"cursor"`
	HasMore bool    `json:"has_more"`
}

// GetUserInfo fetches the authorized account's profile and stats.
func (a *TikTokAuth) GetUserInfo(ctx context.Context, accessToken string) (*UserInfo, error) {
	var data struct {
		User UserInfo `json:"user"`
	}
	query := url.Values{"fields": {userInfoFields}}
	if err := a.doAPI(ctx, http.MethodGet, "/user/info/", query, nil, accessToken, &data); err != nil {
		return nil, err
	}
	return &data.User, nil
}

// ListVideos fetches one page of the account's videos. cursor is the
// continuation value from the previous page, or 0 for the first; maxCount
// defaults to the platform page size when zero.
func (a *TikTokAuth) ListVideos(ctx context.Context, accessToken string, cursor int64, maxCount int) (*VideoListResult, error) {
	if maxCount <= 0 {
		maxCount = maxVideoQueryIDs
	}
	if maxCount > maxVideoQueryIDs {
		return nil, fmt.Errorf("tiktok: video list: max count %d exceeds limit of %d", maxCount, maxVideoQueryIDs)
	}

	body := struct {
		Cursor   int64 `json:"cursor,omitempty"`
		MaxCount int   `json:"max_count"`
	}{cursor, maxCount}

	var result VideoListResult
	query := url.Values{"fields": {videoInfoFields}}
	if err := a.doAPI(ctx, http.MethodPost, "/video/list/", query, body, accessToken, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// QueryVideos fetches specific videos by id.
func (a *TikTokAuth) QueryVideos(ctx context.Context, accessToken string, ids []string) ([]Video, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("tiktok: video query: no ids given")
	}
	if len(ids) > maxVideoQueryIDs {
		return nil, fmt.Errorf("tiktok: video query: batch of %d exceeds limit of %d", len(ids), maxVideoQueryIDs)
	}

	body := map[string]any{"filters": map[string][]string{"video_ids": ids}}

	var data struct {
		Videos []Video `json:"videos"`
	}
	query := url.Values{"fields": {videoInfoFields}}
	if err := a.doAPI(ctx, http.MethodPost, "/video/query/", query, body, accessToken, &data); err != nil {
		return nil, err
	}
	return data.Videos, nil
}

// doAPI performs one bearer-authenticated Open API call and decodes the
// envelope data into out.
func (a *TikTokAuth) doAPI(ctx context.Context, method, path string, query url.Values, body any, accessToken string, out any) error {
	endpoint := a.apiBaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("tiktok api: marshal request failed: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("tiktok api: create request failed: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("tiktok api: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("tiktok api: read response failed: %w", err)
	}

	var env apiEnvelope
	if errDecode := json.Unmarshal(respBody, &env); errDecode != nil {
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("tiktok api: %s: %d %s", path, resp.StatusCode, strings.TrimSpace(string(respBody)))
		}
		return fmt.Errorf("tiktok api: decode response failed: %w", errDecode)
	}
	// HTTP success only means the request was parsed; the error object
	// decides success.
	if env.Error.Code != "" && env.Error.Code != "ok" {
		return &APIError{Code: env.Error.Code, Message: env.Error.Message, LogID: env.Error.LogID}
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tiktok api: %s: %s", path, resp.Status)
	}

	if out != nil && len(env.Data) > 0 {
		if err = json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("tiktok api: decode response data failed: %w", err)
		}
	}
	return nil
}

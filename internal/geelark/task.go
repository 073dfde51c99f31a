package geelark

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tidwall/sjson"
)

// Task type discriminators understood by the platform.
const (
	TaskTypeVideo    = 1
	TaskTypeWarmup   = 2
	TaskTypeCarousel = 3
	TaskTypeLogin    = 4
	TaskTypeProfile  = 6
	TaskTypeCustom   = 42
)

// Task lifecycle status codes. Waiting -> InProgress -> Completed|Failed,
// or Cancelled via an explicit cancel. Failed and Cancelled tasks may be
// retried; the platform bounds retries at 5 attempts per task.
const (
	TaskStatusWaiting    = 1
	TaskStatusInProgress = 2
	TaskStatusCompleted  = 3
	TaskStatusFailed     = 4
	TaskStatusCancelled  = 7
)

// AI-comment mode selectors for engagement tasks.
const (
	UseAIGenerated = 1
	UseAIManual    = 2
)

// Task is an asynchronous unit of work executing on a cloud phone.
type Task struct {
	ID         string `json:"id"`
	Name       string `json:"taskName,omitempty"`
	TaskType   int    `json:"taskType"`
	Status     int    `json:"status"`
	SerialName string `json:"serialName,omitempty"`
	EnvID      string `json:"envId,omitempty"`
	ScheduleAt int64  `json:"scheduleAt,omitempty"`
	FailCode   int    `json:"failCode,omitempty"`
	FailDesc   string `json:"failDesc,omitempty"`
	Cost       int64  `json:"cost,omitempty"`
}

// TaskAddResult carries the ids the platform assigned to newly created tasks.
type TaskAddResult struct {
	TaskIDs []string `json:"taskIds"`
}

// VideoTaskParams describes a TikTok video publish task. Optional fields
// left at their zero value (or nil) are omitted from the request entirely:
// the platform treats an absent key as "use platform default", which is
// not the same as sending null.
type VideoTaskParams struct {
	EnvID      string `json:"envId"`
	Video      string `json:"video"`
	ScheduleAt int64  `json:"scheduleAt"`
	VideoDesc  string `json:"videoDesc,omitempty"`
	// MaxTryTimes bounds platform-side retries for this task.
	MaxTryTimes *int `json:"maxTryTimes,omitempty"`
	// TimeoutMin bounds the task runtime in minutes.
	TimeoutMin *int `json:"timeoutMin,omitempty"`
	// MarkAI marks the published content as AI-generated.
	MarkAI *bool `json:"markAI,omitempty"`
	// NeedShareLink asks the platform to report the published share URL.
	NeedShareLink *bool `json:"needShareLink,omitempty"`
}

// WarmupTaskParams describes an account warmup session: scrolling the feed
// and optionally searching the given keywords for Duration minutes.
type WarmupTaskParams struct {
	EnvID      string   `json:"envId"`
	ScheduleAt int64    `json:"scheduleAt"`
	Duration   int      `json:"duration"`
	Keywords   []string `json:"keywords,omitempty"`
}

// CarouselTaskParams describes an image-set (carousel) publish task.
type CarouselTaskParams struct {
	EnvID       string   `json:"envId"`
	Images      []string `json:"images"`
	ScheduleAt  int64    `json:"scheduleAt"`
	Title       string   `json:"title,omitempty"`
	VideoDesc   string   `json:"videoDesc,omitempty"`
	MaxTryTimes *int     `json:"maxTryTimes,omitempty"`
	TimeoutMin  *int     `json:"timeoutMin,omitempty"`
	MarkAI      *bool    `json:"markAI,omitempty"`
}

// taskAddRequest wraps a single task spec in the platform's batch shape.
// The client always submits exactly one spec per call.
type taskAddRequest struct {
	TaskType int   `json:"taskType"`
	List     []any `json:"list"`
}

// CreateVideoTask schedules a video publish task on the given cloud phone.
func (c *Client) CreateVideoTask(ctx context.Context, params VideoTaskParams) (*TaskAddResult, error) {
	if params.EnvID == "" || params.Video == "" {
		return nil, fmt.Errorf("geelark: video task requires envId and video")
	}
	return c.addTask(ctx, TaskTypeVideo, params)
}

// CreateWarmupTask schedules an account warmup task.
func (c *Client) CreateWarmupTask(ctx context.Context, params WarmupTaskParams) (*TaskAddResult, error) {
	if params.EnvID == "" {
		return nil, fmt.Errorf("geelark: warmup task requires envId")
	}
	return c.addTask(ctx, TaskTypeWarmup, params)
}

// CreateCarouselTask schedules an image-set publish task.
func (c *Client) CreateCarouselTask(ctx context.Context, params CarouselTaskParams) (*TaskAddResult, error) {
	if params.EnvID == "" || len(params.Images) == 0 {
		return nil, fmt.Errorf("geelark: carousel task requires envId and images")
	}
	return c.addTask(ctx, TaskTypeCarousel, params)
}

func (c *Client) addTask(ctx context.Context, taskType int, spec any) (*TaskAddResult, error) {
	var result TaskAddResult
	req := taskAddRequest{TaskType: taskType, List: []any{spec}}
	if err := c.do(ctx, "/open/v1/task/add", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// EngagementResult carries the id of a single-device engagement task.
type EngagementResult struct {
	TaskID string `json:"taskId"`
}

// RandomStarParams triggers random likes on the for-you feed of one phone.
type RandomStarParams struct {
	EnvID      string `json:"envId"`
	ScheduleAt int64  `json:"scheduleAt,omitempty"`
}

// CreateRandomStarTask creates a random-like engagement task.
func (c *Client) CreateRandomStarTask(ctx context.Context, params RandomStarParams) (*EngagementResult, error) {
	if params.EnvID == "" {
		return nil, fmt.Errorf("geelark: random star task requires envId")
	}
	var result EngagementResult
	if err := c.do(ctx, "/open/v1/rpa/task/tiktokRandomStar", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// RandomCommentParams triggers a random comment on one phone. UseAI
// selects between platform-generated text (UseAIGenerated) and the
// caller-supplied Comment (UseAIManual).
type RandomCommentParams struct {
	EnvID      string
	ScheduleAt int64
	UseAI      int
	Comment    string
}

// CreateRandomCommentTask creates a random-comment engagement task.
// The comment text is attached to the payload only in manual mode; in
// AI mode the key must be absent so the platform generates the text.
func (c *Client) CreateRandomCommentTask(ctx context.Context, params RandomCommentParams) (*EngagementResult, error) {
	if params.EnvID == "" {
		return nil, fmt.Errorf("geelark: random comment task requires envId")
	}
	if params.UseAI != UseAIGenerated && params.UseAI != UseAIManual {
		return nil, fmt.Errorf("geelark: random comment task requires useAi of %d or %d", UseAIGenerated, UseAIManual)
	}
	if params.UseAI == UseAIManual && params.Comment == "" {
		return nil, fmt.Errorf("geelark: manual random comment task requires comment text")
	}

	payload, err := json.Marshal(struct {
		EnvID      string `json:"envId"`
		ScheduleAt int64  `json:"scheduleAt,omitempty"`
		UseAI      int    `json:"useAi"`
	}{params.EnvID, params.ScheduleAt, params.UseAI})
	if err != nil {
		return nil, fmt.Errorf("geelark: marshal request failed: %w", err)
	}
	if params.UseAI == UseAIManual {
		if payload, err = sjson.SetBytes(payload, "comment", params.Comment); err != nil {
			return nil, fmt.Errorf("geelark: attach comment failed: %w", err)
		}
	}

	var result EngagementResult
	if err = c.post(ctx, "/open/v1/rpa/task/tiktokRandomComment", payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// TaskQueryResult is the response to a direct task id query.
type TaskQueryResult struct {
	Items []Task `json:"items"`
}

// QueryTasks fetches current state for up to 100 task ids.
func (c *Client) QueryTasks(ctx context.Context, ids []string) ([]Task, error) {
	if err := checkBatch("task query", len(ids)); err != nil {
		return nil, err
	}
	var result TaskQueryResult
	if err := c.do(ctx, "/open/v1/task/query", map[string][]string{"ids": ids}, &result); err != nil {
		return nil, err
	}
	return result.Items, nil
}

// BatchQueryParams pages through task history with a lastId cursor. The
// platform serves a fixed 7-day historical window.
type BatchQueryParams struct {
	Size   int      `json:"size"`
	LastID string   `json:"lastId,omitempty"`
	IDs    []string `json:"ids,omitempty"`
}

// BatchQueryResult is one page of task history.
type BatchQueryResult struct {
	Items  []Task `json:"items"`
	LastID string `json:"lastId,omitempty"`
}

// BatchQueryTasks pages through the task history records. Size defaults
// to the protocol maximum; callers continue with the returned LastID
// until the result comes back empty.
func (c *Client) BatchQueryTasks(ctx context.Context, params BatchQueryParams) (*BatchQueryResult, error) {
	if params.Size <= 0 {
		params.Size = maxBatchSize
	}
	if params.Size > maxBatchSize {
		return nil, &ValidationError{Op: "task history", Limit: maxBatchSize, Count: params.Size}
	}
	if len(params.IDs) > maxBatchSize {
		return nil, &ValidationError{Op: "task history", Limit: maxBatchSize, Count: len(params.IDs)}
	}

	var result BatchQueryResult
	if err := c.do(ctx, "/open/v1/task/historyRecords", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// TaskLog is one execution log line of a task.
type TaskLog struct {
	Time    int64  `json:"time"`
	Level   string `json:"level,omitempty"`
	Content string `json:"content"`
}

// TaskDetail is a task plus a page of its execution logs. When
// LogContinue is true the caller passes SearchAfter back to GetTaskDetail
// to fetch the next page.
type TaskDetail struct {
	Task
	Logs        []TaskLog `json:"logs"`
	LogContinue bool      `json:"logContinue"`
	SearchAfter []string  `json:"searchAfter,omitempty"`
}

// GetTaskDetail fetches a task with a page of its logs. searchAfter is
// the continuation cursor from the previous page, or nil for the first.
func (c *Client) GetTaskDetail(ctx context.Context, id string, searchAfter []string) (*TaskDetail, error) {
	if id == "" {
		return nil, fmt.Errorf("geelark: task detail requires an id")
	}
	req := struct {
		ID          string   `json:"id"`
		SearchAfter []string `json:"searchAfter,omitempty"`
	}{id, searchAfter}

	var result TaskDetail
	if err := c.do(ctx, "/open/v1/task/detail", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CancelTasks requests a remote Cancelled transition for up to 100 tasks.
// It does not abort any in-flight HTTP call; per-task failures come back
// in the result breakdown, not as an error.
func (c *Client) CancelTasks(ctx context.Context, ids []string) (*BatchResult, error) {
	return c.taskBatch(ctx, "task cancel", "/open/v1/task/cancel", ids)
}

// RetryTasks asks the platform to re-run up to 100 failed or cancelled
// tasks. The platform enforces the per-task retry bound.
func (c *Client) RetryTasks(ctx context.Context, ids []string) (*BatchResult, error) {
	return c.taskBatch(ctx, "task retry", "/open/v1/task/restart", ids)
}

func (c *Client) taskBatch(ctx context.Context, op, path string, ids []string) (*BatchResult, error) {
	if err := checkBatch(op, len(ids)); err != nil {
		return nil, err
	}
	var result BatchResult
	if err := c.do(ctx, path, map[string][]string{"ids": ids}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

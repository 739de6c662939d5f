package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/hirevox/hirevox/internal/utils"
	"github.com/hirevox/hirevox/internal/workers"
)

// WebhookHandler accepts asynchronous task requests. The task is queued and a
// task id returned immediately; the result arrives at callback_url as a
// signed webhook. Delivery is at-most-once, callers needing durability must
// re-request.
type WebhookHandler struct {
	redis  *redis.Client
	stream string
}

func NewWebhookHandler(rdb *redis.Client, stream string) *WebhookHandler {
	if stream == "" {
		stream = workers.DefaultStream
	}
	return &WebhookHandler{redis: rdb, stream: stream}
}

type taskReq struct {
	Type        string          `json:"type"`
	CallbackURL string          `json:"callback_url"`
	Payload     json.RawMessage `json:"payload"`
}

var validTaskTypes = map[string]bool{
	workers.TaskRank:         true,
	workers.TaskAnalyze:      true,
	workers.TaskSimulate:     true,
	workers.TaskBuildVacancy: true,
	workers.TaskTags:         true,
}

func (h *WebhookHandler) Submit(c *gin.Context) {
	const op = "WebhookHandler.Submit"

	var req taskReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "invalid json body", err))
		return
	}
	if !validTaskTypes[req.Type] {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "unknown task type "+req.Type, nil))
		return
	}
	if req.CallbackURL == "" {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "callback_url is required", nil))
		return
	}

	taskID, err := workers.Enqueue(c.Request.Context(), h.redis, h.stream, workers.Task{
		Type:        req.Type,
		CallbackURL: req.CallbackURL,
		Payload:     req.Payload,
	})
	if err != nil {
		writeError(c, utils.E(utils.CodeUnavailable, op, "failed to enqueue task", err))
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"task_id": taskID, "status": "queued"})
}

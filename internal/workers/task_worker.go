// Package workers consumes webhook-triggered background tasks from a Redis
// Stream and delivers results to the caller's callback URL.
package workers

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/hirevox/hirevox/internal/interview"
	"github.com/hirevox/hirevox/internal/scoring"
	"github.com/hirevox/hirevox/internal/services"
	"github.com/hirevox/hirevox/internal/settings"
	"github.com/hirevox/hirevox/internal/webhook"
)

// Task types.
const (
	TaskRank         = "rank"
	TaskAnalyze      = "analyze"
	TaskSimulate     = "simulate"
	TaskBuildVacancy = "build_vacancy"
	TaskTags         = "tags"
)

const DefaultStream = "tasks:stream"

// Task is one queued background request. Payload is task-type specific.
type Task struct {
	ID          string          `json:"task_id"`
	Type        string          `json:"type"`
	CallbackURL string          `json:"callback_url"`
	Payload     json.RawMessage `json:"payload"`
}

// Enqueue pushes a task onto the stream and returns its id.
func Enqueue(ctx context.Context, rdb *redis.Client, stream string, task Task) (string, error) {
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	if stream == "" {
		stream = DefaultStream
	}
	err := rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]any{
			"task_id":      task.ID,
			"type":         task.Type,
			"callback_url": task.CallbackURL,
			"payload":      string(task.Payload),
		},
	}).Err()
	return task.ID, err
}

// TaskWorkerPool runs the asynchronous counterpart of the synchronous API:
// ranking, analysis, simulation and vacancy generation, reported via signed
// webhooks. Processing is at-most-once per request; nothing is re-queued.
type TaskWorkerPool struct {
	Redis      *redis.Client
	Ranking    services.RankingService
	Analysis   services.AnalysisService
	Interviews services.InterviewService
	Vacancies  services.VacancyService
	Sender     *webhook.Sender
	Settings   *settings.Store
	NumWorkers int
	Logger     *logrus.Logger

	Stream         string
	Group          string
	ConsumerPrefix string
}

func (p *TaskWorkerPool) Start(ctx context.Context) error {
	if p.Redis == nil || p.Ranking == nil || p.Analysis == nil || p.Interviews == nil || p.Vacancies == nil || p.Sender == nil || p.Settings == nil {
		return errors.New("TaskWorkerPool missing dependency: Redis/services/Sender/Settings must be set")
	}
	if p.Stream == "" {
		p.Stream = DefaultStream
	}
	if p.Group == "" {
		p.Group = "task-workers"
	}
	if p.ConsumerPrefix == "" {
		p.ConsumerPrefix = "c"
	}
	if p.NumWorkers <= 0 {
		p.NumWorkers = 3
	}
	if p.Logger == nil {
		p.Logger = logrus.New()
	}

	_ = p.Redis.XGroupCreateMkStream(ctx, p.Stream, p.Group, "0").Err() // ignore BUSYGROUP

	for i := 0; i < p.NumWorkers; i++ {
		consumer := p.ConsumerPrefix + "-" + strconv.Itoa(i+1)
		go p.runConsumer(ctx, consumer)
	}
	return nil
}

func (p *TaskWorkerPool) runConsumer(ctx context.Context, consumer string) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		res, err := p.Redis.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    p.Group,
			Consumer: consumer,
			Streams:  []string{p.Stream, ">"},
			Count:    5,
			Block:    5 * time.Second,
		}).Result()

		if err != nil {
			if err == redis.Nil {
				continue
			}
			time.Sleep(500 * time.Millisecond)
			continue
		}

		for _, stream := range res {
			for _, msg := range stream.Messages {
				p.handleMsg(ctx, msg)
				_ = p.Redis.XAck(ctx, p.Stream, p.Group, msg.ID).Err()
			}
		}
	}
}

func (p *TaskWorkerPool) handleMsg(ctx context.Context, msg redis.XMessage) {
	getStr := func(k string) string {
		v, ok := msg.Values[k]
		if !ok || v == nil {
			return ""
		}
		s, _ := v.(string)
		return s
	}

	task := Task{
		ID:          getStr("task_id"),
		Type:        getStr("type"),
		CallbackURL: getStr("callback_url"),
		Payload:     json.RawMessage(getStr("payload")),
	}
	if task.ID == "" || task.Type == "" || task.CallbackURL == "" {
		return
	}

	log := p.Logger.WithFields(logrus.Fields{
		"redis_id": msg.ID,
		"task_id":  task.ID,
		"type":     task.Type,
	})
	log.Info("task started")

	result, err := p.execute(ctx, task)

	body := map[string]any{"task_id": task.ID, "type": task.Type}
	if err != nil {
		log.WithError(err).Error("task failed")
		body["status"] = "failed"
		body["error"] = err.Error()
	} else {
		body["status"] = "completed"
		body["result"] = result
	}

	secret := p.Settings.Snapshot().WebhookSecret
	if !p.Sender.Deliver(ctx, task.CallbackURL, body, secret) {
		log.Warn("task result delivery failed, result dropped")
	}
}

type rankPayload struct {
	VacancyID   string           `json:"vacancy_id"`
	VacancyText string           `json:"vacancy_text"`
	Resumes     []scoring.Resume `json:"resumes"`
}

type analyzePayload struct {
	InterviewID     string `json:"interview_id"`
	VacancyText     string `json:"vacancy_text"`
	ResumeText      string `json:"resume_text"`
	CriteriaWeights string `json:"criteria_weights"`
	Dialogue        string `json:"dialogue"`
}

type simulatePayload struct {
	Mode               string `json:"mode"` // simulation|stress
	VacancyText        string `json:"vacancy_text"`
	ResumeText         string `json:"resume_text"`
	GeneratedQuestions string `json:"generated_questions"`
}

type buildVacancyPayload struct {
	Draft           string          `json:"draft"`
	CriteriaWeights json.RawMessage `json:"criteria_weights"`
}

type tagsPayload struct {
	VacancyID string `json:"vacancy_id"`
}

func (p *TaskWorkerPool) execute(ctx context.Context, task Task) (any, error) {
	switch task.Type {
	case TaskRank:
		var in rankPayload
		if err := json.Unmarshal(task.Payload, &in); err != nil {
			return nil, err
		}
		if in.VacancyID != "" {
			return p.Ranking.RankVacancy(ctx, in.VacancyID)
		}
		return p.Ranking.RankTexts(ctx, in.VacancyText, in.Resumes), nil

	case TaskAnalyze:
		var in analyzePayload
		if err := json.Unmarshal(task.Payload, &in); err != nil {
			return nil, err
		}
		if in.InterviewID != "" {
			return p.Analysis.AnalyzeInterview(ctx, in.InterviewID)
		}
		return p.Analysis.AnalyzeDialogue(ctx, in.VacancyText, in.ResumeText, in.CriteriaWeights, in.Dialogue)

	case TaskSimulate:
		var in simulatePayload
		if err := json.Unmarshal(task.Payload, &in); err != nil {
			return nil, err
		}
		mode := interview.ModeSimulation
		if in.Mode == string(interview.ModeStress) {
			mode = interview.ModeStress
		}
		return p.Interviews.Simulate(ctx, mode, in.VacancyText, in.ResumeText, in.GeneratedQuestions), nil

	case TaskBuildVacancy:
		var in buildVacancyPayload
		if err := json.Unmarshal(task.Payload, &in); err != nil {
			return nil, err
		}
		text, err := p.Vacancies.BuildDescription(ctx, in.Draft, datatypes.JSON(in.CriteriaWeights))
		if err != nil {
			return nil, err
		}
		return map[string]string{"description": text}, nil

	case TaskTags:
		var in tagsPayload
		if err := json.Unmarshal(task.Payload, &in); err != nil {
			return nil, err
		}
		tags, err := p.Vacancies.GenerateTags(ctx, in.VacancyID)
		if err != nil {
			return nil, err
		}
		return map[string]any{"tags": tags}, nil

	default:
		return nil, errors.New("unknown task type " + task.Type)
	}
}

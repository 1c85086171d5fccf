package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const (
	TypeRefreshAnalytics = "analytics:refresh"

	queueDefault = "default"
)

type RefreshPayload struct {
	UserID uuid.UUID `json:"user_id"`
}

// AsynqDispatcher enqueues refreshes on Redis and runs them on a worker
// server. Tasks are never retried.
type AsynqDispatcher struct {
	client *asynq.Client
	server *asynq.Server
	mux    *asynq.ServeMux
	log    *zap.Logger
}

func NewAsynqDispatcher(redisURL string, concurrency int, refresh RefreshFunc, log *zap.Logger) (*AsynqDispatcher, error) {
	if log == nil {
		log = zap.NewNop()
	}
	redisOpt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	if concurrency < 1 {
		concurrency = 1
	}

	server := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: concurrency,
		Queues:      map[string]int{queueDefault: 1},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			log.Warn("job failed", zap.String("type", task.Type()), zap.Error(err))
		}),
		Logger: &asynqLogger{log: log.Sugar()},
	})

	d := &AsynqDispatcher{
		client: asynq.NewClient(redisOpt),
		server: server,
		mux:    asynq.NewServeMux(),
		log:    log,
	}
	d.mux.HandleFunc(TypeRefreshAnalytics, HandleRefreshTask(refresh))
	return d, nil
}

// Dispatch enqueues a refresh task. Enqueue failures are logged only.
func (d *AsynqDispatcher) Dispatch(userID uuid.UUID) {
	task, err := NewRefreshTask(userID)
	if err != nil {
		d.log.Warn("failed to build refresh task", zap.Error(err))
		return
	}

	info, err := d.client.Enqueue(task,
		asynq.Queue(queueDefault),
		asynq.MaxRetry(0),
		asynq.Timeout(refreshTimeout),
	)
	if err != nil {
		d.log.Warn("failed to enqueue refresh task", zap.String("user_id", userID.String()), zap.Error(err))
		return
	}
	d.log.Debug("queued refresh task", zap.String("id", info.ID), zap.String("user_id", userID.String()))
}

// Start runs the worker server in the background
func (d *AsynqDispatcher) Start() error {
	d.log.Info("starting job queue worker")
	return d.server.Start(d.mux)
}

func (d *AsynqDispatcher) Stop() {
	d.log.Info("stopping job queue")
	d.server.Stop()
	d.server.Shutdown()
	if err := d.client.Close(); err != nil {
		d.log.Warn("failed to close job client", zap.Error(err))
	}
}

func NewRefreshTask(userID uuid.UUID) (*asynq.Task, error) {
	payload, err := json.Marshal(RefreshPayload{UserID: userID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal refresh payload: %w", err)
	}
	return asynq.NewTask(TypeRefreshAnalytics, payload), nil
}

// HandleRefreshTask adapts refresh to an asynq handler
func HandleRefreshTask(refresh RefreshFunc) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var payload RefreshPayload
		if err := json.Unmarshal(task.Payload(), &payload); err != nil {
			return fmt.Errorf("failed to unmarshal refresh payload: %w: %w", err, asynq.SkipRetry)
		}
		if payload.UserID == uuid.Nil {
			return fmt.Errorf("refresh task has no user: %w", asynq.SkipRetry)
		}
		return refresh(ctx, payload.UserID)
	}
}

type asynqLogger struct {
	log *zap.SugaredLogger
}

func (l *asynqLogger) Debug(args ...interface{}) { l.log.Debug(args...) }
func (l *asynqLogger) Info(args ...interface{})  { l.log.Info(args...) }
func (l *asynqLogger) Warn(args ...interface{})  { l.log.Warn(args...) }
func (l *asynqLogger) Error(args ...interface{}) { l.log.Error(args...) }
func (l *asynqLogger) Fatal(args ...interface{}) { l.log.Error(args...) }

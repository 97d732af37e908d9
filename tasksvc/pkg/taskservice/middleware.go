package taskservice

import (
	"context"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/metrics"
	"github.com/myattire/backend/tasksvc"
)

type Middleware func(Service) Service

func LoggingMiddleware(logger log.Logger) Middleware {
	return func(next Service) Service {
		return loggingMiddleware{logger, next}
	}
}

type loggingMiddleware struct {
	logger log.Logger
	next   Service
}

func (mw loggingMiddleware) CreateTask(ctx context.Context, t tasksvc.Task) (created tasksvc.Task, err error) {
	defer func() {
		mw.logger.Log(
			"method", "CreateTask",
			"titulo", t.Titulo,
			"setor", t.Setor,
			"id", created.ID,
			"err", err,
		)
	}()
	return mw.next.CreateTask(ctx, t)
}

func (mw loggingMiddleware) Tasks(ctx context.Context, f tasksvc.TaskFilter) (t []tasksvc.Task, err error) {
	defer func() {
		mw.logger.Log(
			"method", "Tasks",
			"status", f.Status,
			"prioridade", f.Prioridade,
			"funcionario", f.Funcionario,
			"id_setor", f.SetorID,
			"busca", f.Busca,
			"count", len(t),
			"err", err,
		)
	}()
	return mw.next.Tasks(ctx, f)
}

func (mw loggingMiddleware) Task(ctx context.Context, taskID uint64) (t tasksvc.Task, err error) {
	defer func() {
		mw.logger.Log("method", "Task", "task_id", taskID, "err", err)
	}()
	return mw.next.Task(ctx, taskID)
}

func (mw loggingMiddleware) UpdateTask(ctx context.Context, taskID uint64, p tasksvc.TaskPatch) (t tasksvc.Task, err error) {
	defer func() {
		mw.logger.Log("method", "UpdateTask", "task_id", taskID, "err", err)
	}()
	return mw.next.UpdateTask(ctx, taskID, p)
}

func (mw loggingMiddleware) DeleteTask(ctx context.Context, taskID uint64) (err error) {
	defer func() {
		mw.logger.Log("method", "DeleteTask", "task_id", taskID, "err", err)
	}()
	return mw.next.DeleteTask(ctx, taskID)
}

func (mw loggingMiddleware) CreateSector(ctx context.Context, nome string, ativo bool) (s tasksvc.Sector, err error) {
	defer func() {
		mw.logger.Log("method", "CreateSector", "nome", nome, "id", s.ID, "err", err)
	}()
	return mw.next.CreateSector(ctx, nome, ativo)
}

func (mw loggingMiddleware) Sectors(ctx context.Context) (s []tasksvc.Sector, err error) {
	defer func() {
		mw.logger.Log("method", "Sectors", "count", len(s), "err", err)
	}()
	return mw.next.Sectors(ctx)
}

func InstrumentingMiddleware(counter metrics.Counter, latency metrics.Histogram) Middleware {
	return func(next Service) Service {
		return instrumentingMiddleware{counter, latency, next}
	}
}

type instrumentingMiddleware struct {
	requestCount   metrics.Counter
	requestLatency metrics.Histogram
	next           Service
}

func (mw instrumentingMiddleware) CreateTask(ctx context.Context, t tasksvc.Task) (tasksvc.Task, error) {
	defer func(begin time.Time) {
		mw.requestCount.With("method", "create_task").Add(1)
		mw.requestLatency.With("method", "create_task").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mw.next.CreateTask(ctx, t)
}

func (mw instrumentingMiddleware) Tasks(ctx context.Context, f tasksvc.TaskFilter) ([]tasksvc.Task, error) {
	defer func(begin time.Time) {
		mw.requestCount.With("method", "tasks").Add(1)
		mw.requestLatency.With("method", "tasks").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mw.next.Tasks(ctx, f)
}

func (mw instrumentingMiddleware) Task(ctx context.Context, taskID uint64) (tasksvc.Task, error) {
	defer func(begin time.Time) {
		mw.requestCount.With("method", "task").Add(1)
		mw.requestLatency.With("method", "task").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mw.next.Task(ctx, taskID)
}

func (mw instrumentingMiddleware) UpdateTask(ctx context.Context, taskID uint64, p tasksvc.TaskPatch) (tasksvc.Task, error) {
	defer func(begin time.Time) {
		mw.requestCount.With("method", "update_task").Add(1)
		mw.requestLatency.With("method", "update_task").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mw.next.UpdateTask(ctx, taskID, p)
}

func (mw instrumentingMiddleware) DeleteTask(ctx context.Context, taskID uint64) error {
	defer func(begin time.Time) {
		mw.requestCount.With("method", "delete_task").Add(1)
		mw.requestLatency.With("method", "delete_task").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mw.next.DeleteTask(ctx, taskID)
}

func (mw instrumentingMiddleware) CreateSector(ctx context.Context, nome string, ativo bool) (tasksvc.Sector, error) {
	defer func(begin time.Time) {
		mw.requestCount.With("method", "create_sector").Add(1)
		mw.requestLatency.With("method", "create_sector").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mw.next.CreateSector(ctx, nome, ativo)
}

func (mw instrumentingMiddleware) Sectors(ctx context.Context) ([]tasksvc.Sector, error) {
	defer func(begin time.Time) {
		mw.requestCount.With("method", "sectors").Add(1)
		mw.requestLatency.With("method", "sectors").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mw.next.Sectors(ctx)
}

package userservice

import (
	"context"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/metrics"
	"github.com/myattire/backend/usersvc"
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

// Passwords never reach the log lines.

func (mw loggingMiddleware) Register(ctx context.Context, nome, email, senha, perfil, setor string, ativo bool) (id uint64, err error) {
	defer func() {
		mw.logger.Log("method", "Register", "email", email, "perfil", perfil, "id", id, "err", err)
	}()
	return mw.next.Register(ctx, nome, email, senha, perfil, setor, ativo)
}

func (mw loggingMiddleware) Login(ctx context.Context, email, senha string) (token string, user usersvc.User, err error) {
	defer func() {
		mw.logger.Log("method", "Login", "email", email, "err", err)
	}()
	return mw.next.Login(ctx, email, senha)
}

func (mw loggingMiddleware) UpdatePassword(ctx context.Context, email, senhaAtual, novaSenha string) (err error) {
	defer func() {
		mw.logger.Log("method", "UpdatePassword", "email", email, "err", err)
	}()
	return mw.next.UpdatePassword(ctx, email, senhaAtual, novaSenha)
}

func (mw loggingMiddleware) Users(ctx context.Context) (users []usersvc.User, err error) {
	defer func() {
		mw.logger.Log("method", "Users", "count", len(users), "err", err)
	}()
	return mw.next.Users(ctx)
}

func (mw loggingMiddleware) UserByEmail(ctx context.Context, email string) (user usersvc.User, err error) {
	defer func() {
		mw.logger.Log("method", "UserByEmail", "email", email, "err", err)
	}()
	return mw.next.UserByEmail(ctx, email)
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

func (mw instrumentingMiddleware) Register(ctx context.Context, nome, email, senha, perfil, setor string, ativo bool) (uint64, error) {
	defer func(begin time.Time) {
		mw.requestCount.With("method", "register").Add(1)
		mw.requestLatency.With("method", "register").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mw.next.Register(ctx, nome, email, senha, perfil, setor, ativo)
}

func (mw instrumentingMiddleware) Login(ctx context.Context, email, senha string) (string, usersvc.User, error) {
	defer func(begin time.Time) {
		mw.requestCount.With("method", "login").Add(1)
		mw.requestLatency.With("method", "login").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mw.next.Login(ctx, email, senha)
}

func (mw instrumentingMiddleware) UpdatePassword(ctx context.Context, email, senhaAtual, novaSenha string) error {
	defer func(begin time.Time) {
		mw.requestCount.With("method", "update_password").Add(1)
		mw.requestLatency.With("method", "update_password").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mw.next.UpdatePassword(ctx, email, senhaAtual, novaSenha)
}

func (mw instrumentingMiddleware) Users(ctx context.Context) ([]usersvc.User, error) {
	defer func(begin time.Time) {
		mw.requestCount.With("method", "users").Add(1)
		mw.requestLatency.With("method", "users").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mw.next.Users(ctx)
}

func (mw instrumentingMiddleware) UserByEmail(ctx context.Context, email string) (usersvc.User, error) {
	defer func(begin time.Time) {
		mw.requestCount.With("method", "user_by_email").Add(1)
		mw.requestLatency.With("method", "user_by_email").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mw.next.UserByEmail(ctx, email)
}

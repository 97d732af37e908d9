package userendpoint

import (
	"context"
	"net/http"
	"time"

	"github.com/go-kit/kit/circuitbreaker"
	"github.com/go-kit/kit/endpoint"
	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/ratelimit"
	"github.com/myattire/backend/usersvc"
	"github.com/myattire/backend/usersvc/pkg/userservice"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

type Set struct {
	RegisterEndpoint       endpoint.Endpoint
	LoginEndpoint          endpoint.Endpoint
	UpdatePasswordEndpoint endpoint.Endpoint
	UsersEndpoint          endpoint.Endpoint
	UserByEmailEndpoint    endpoint.Endpoint
}

func New(svc userservice.Service, logger log.Logger) Set {
	limiter := ratelimit.NewErroringLimiter(rate.NewLimiter(rate.Every(time.Second), 100))

	var registerEndpoint endpoint.Endpoint
	{
		registerEndpoint = MakeRegisterEndpoint(svc)
		registerEndpoint = limiter(registerEndpoint)
		registerEndpoint = circuitbreaker.Gobreaker(gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "Register",
			Timeout: 30 * time.Second,
		}))(registerEndpoint)
		registerEndpoint = LoggingMiddleware(log.With(logger, "method", "Register"))(registerEndpoint)
	}

	var loginEndpoint endpoint.Endpoint
	{
		loginEndpoint = MakeLoginEndpoint(svc)
		loginEndpoint = limiter(loginEndpoint)
		loginEndpoint = circuitbreaker.Gobreaker(gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "Login",
			Timeout: 30 * time.Second,
		}))(loginEndpoint)
		loginEndpoint = LoggingMiddleware(log.With(logger, "method", "Login"))(loginEndpoint)
	}

	var updatePasswordEndpoint endpoint.Endpoint
	{
		updatePasswordEndpoint = MakeUpdatePasswordEndpoint(svc)
		updatePasswordEndpoint = limiter(updatePasswordEndpoint)
		updatePasswordEndpoint = circuitbreaker.Gobreaker(gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "UpdatePassword",
			Timeout: 30 * time.Second,
		}))(updatePasswordEndpoint)
		updatePasswordEndpoint = LoggingMiddleware(log.With(logger, "method", "UpdatePassword"))(updatePasswordEndpoint)
	}

	var usersEndpoint endpoint.Endpoint
	{
		usersEndpoint = MakeUsersEndpoint(svc)
		usersEndpoint = limiter(usersEndpoint)
		usersEndpoint = circuitbreaker.Gobreaker(gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "Users",
			Timeout: 30 * time.Second,
		}))(usersEndpoint)
		usersEndpoint = LoggingMiddleware(log.With(logger, "method", "Users"))(usersEndpoint)
	}

	var userByEmailEndpoint endpoint.Endpoint
	{
		userByEmailEndpoint = MakeUserByEmailEndpoint(svc)
		userByEmailEndpoint = limiter(userByEmailEndpoint)
		userByEmailEndpoint = circuitbreaker.Gobreaker(gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "UserByEmail",
			Timeout: 30 * time.Second,
		}))(userByEmailEndpoint)
		userByEmailEndpoint = LoggingMiddleware(log.With(logger, "method", "UserByEmail"))(userByEmailEndpoint)
	}

	return Set{
		RegisterEndpoint:       registerEndpoint,
		LoginEndpoint:          loginEndpoint,
		UpdatePasswordEndpoint: updatePasswordEndpoint,
		UsersEndpoint:          usersEndpoint,
		UserByEmailEndpoint:    userByEmailEndpoint,
	}
}

func (s Set) Register(ctx context.Context, nome, email, senha, perfil, setor string, ativo bool) (uint64, error) {
	resp, err := s.RegisterEndpoint(ctx, RegisterRequest{
		Nome:   nome,
		Email:  email,
		Senha:  senha,
		Perfil: perfil,
		Setor:  setor,
		Ativo:  &ativo,
	})
	if err != nil {
		return 0, err
	}
	response := resp.(RegisterResponse)
	return response.ID, response.Err
}

func (s Set) Login(ctx context.Context, email, senha string) (string, usersvc.User, error) {
	resp, err := s.LoginEndpoint(ctx, LoginRequest{Email: email, Senha: senha})
	if err != nil {
		return "", usersvc.User{}, err
	}
	response := resp.(LoginResponse)
	return response.Token, response.Usuario.user(), response.Err
}

func (s Set) UpdatePassword(ctx context.Context, email, senhaAtual, novaSenha string) error {
	resp, err := s.UpdatePasswordEndpoint(ctx, UpdatePasswordRequest{
		Email:      email,
		SenhaAtual: senhaAtual,
		NovaSenha:  novaSenha,
	})
	if err != nil {
		return err
	}
	response := resp.(UpdatePasswordResponse)
	return response.Err
}

func (s Set) Users(ctx context.Context) ([]usersvc.User, error) {
	resp, err := s.UsersEndpoint(ctx, UsersRequest{})
	if err != nil {
		return nil, err
	}
	response := resp.(UsersResponse)
	return response.Usuarios, response.Err
}

func (s Set) UserByEmail(ctx context.Context, email string) (usersvc.User, error) {
	resp, err := s.UserByEmailEndpoint(ctx, UserByEmailRequest{Email: email})
	if err != nil {
		return usersvc.User{}, err
	}
	response := resp.(UserByEmailResponse)
	return response.Usuario, response.Err
}

func MakeRegisterEndpoint(s userservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		req := request.(RegisterRequest)

		ativo := true
		if req.Ativo != nil {
			ativo = *req.Ativo
		}

		id, err := s.Register(ctx, req.Nome, req.Email, req.Senha, req.Perfil, req.Setor, ativo)
		return RegisterResponse{Message: "Usuário cadastrado com sucesso", ID: id, Err: err}, nil
	}
}

func MakeLoginEndpoint(s userservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		req := request.(LoginRequest)

		token, user, err := s.Login(ctx, req.Email, req.Senha)
		return LoginResponse{
			Message: "Login bem-sucedido",
			Token:   token,
			Usuario: summarize(user),
			Err:     err,
		}, nil
	}
}

func MakeUpdatePasswordEndpoint(s userservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		req := request.(UpdatePasswordRequest)

		err = s.UpdatePassword(ctx, req.Email, req.SenhaAtual, req.NovaSenha)
		return UpdatePasswordResponse{Message: "Senha alterada com sucesso", Err: err}, nil
	}
}

func MakeUsersEndpoint(s userservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		_ = request.(UsersRequest)

		users, err := s.Users(ctx)
		return UsersResponse{Usuarios: users, Err: err}, nil
	}
}

func MakeUserByEmailEndpoint(s userservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		req := request.(UserByEmailRequest)

		user, err := s.UserByEmail(ctx, req.Email)
		return UserByEmailResponse{Usuario: user, Err: err}, nil
	}
}

var (
	_ endpoint.Failer = RegisterResponse{}
	_ endpoint.Failer = LoginResponse{}
	_ endpoint.Failer = UpdatePasswordResponse{}
	_ endpoint.Failer = UsersResponse{}
	_ endpoint.Failer = UserByEmailResponse{}
)

type RegisterRequest struct {
	Nome   string `json:"nome"`
	Email  string `json:"email"`
	Senha  string `json:"senha"`
	Perfil string `json:"perfil"`
	Setor  string `json:"setor"`
	Ativo  *bool  `json:"ativo"`
}

type RegisterResponse struct {
	Message string `json:"message"`
	ID      uint64 `json:"-"`
	Err     error  `json:"-"`
}

func (r RegisterResponse) Failed() error   { return r.Err }
func (r RegisterResponse) StatusCode() int { return http.StatusCreated }

type LoginRequest struct {
	Email string `json:"email"`
	Senha string `json:"senha"`
}

// UserSummary is the redacted view of a user returned by login. The
// password hash never appears in it.
type UserSummary struct {
	Nome   string `json:"nome"`
	Email  string `json:"email"`
	Perfil string `json:"perfil"`
	Setor  string `json:"setor"`
	Ativo  bool   `json:"ativo"`
}

func summarize(u usersvc.User) UserSummary {
	return UserSummary{
		Nome:   u.Nome,
		Email:  u.Email,
		Perfil: u.Perfil,
		Setor:  u.Setor,
		Ativo:  u.Ativo,
	}
}

func (s UserSummary) user() usersvc.User {
	return usersvc.User{
		Nome:   s.Nome,
		Email:  s.Email,
		Perfil: s.Perfil,
		Setor:  s.Setor,
		Ativo:  s.Ativo,
	}
}

type LoginResponse struct {
	Message string      `json:"message"`
	Token   string      `json:"token"`
	Usuario UserSummary `json:"usuario"`
	Err     error       `json:"-"`
}

func (r LoginResponse) Failed() error { return r.Err }

type UpdatePasswordRequest struct {
	Email      string `json:"email"`
	SenhaAtual string `json:"senha_atual"`
	NovaSenha  string `json:"nova_senha"`
}

type UpdatePasswordResponse struct {
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (r UpdatePasswordResponse) Failed() error { return r.Err }

type UsersRequest struct{}

type UsersResponse struct {
	Usuarios []usersvc.User `json:"usuarios"`
	Err      error          `json:"-"`
}

func (r UsersResponse) Failed() error { return r.Err }

type UserByEmailRequest struct {
	Email string
}

type UserByEmailResponse struct {
	Usuario usersvc.User `json:"usuario"`
	Err     error        `json:"-"`
}

func (r UserByEmailResponse) Failed() error { return r.Err }

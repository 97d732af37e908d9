package userservice

import (
	"context"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/myattire/backend/usersvc"
	"golang.org/x/crypto/bcrypt"
)

type Service interface {
	Register(ctx context.Context, nome, email, senha, perfil, setor string, ativo bool) (uint64, error)
	Login(ctx context.Context, email, senha string) (string, usersvc.User, error)
	UpdatePassword(ctx context.Context, email, senhaAtual, novaSenha string) error
	Users(ctx context.Context) ([]usersvc.User, error)
	UserByEmail(ctx context.Context, email string) (usersvc.User, error)
}

func New(users usersvc.UserRepository, tokenizer Tokenizer, logger log.Logger) Service {
	var svc Service
	{
		svc = NewBasicService(users, tokenizer)
		svc = LoggingMiddleware(logger)(svc)
	}
	return svc
}

const bcryptCost = 10

type basicService struct {
	users     usersvc.UserRepository
	tokenizer Tokenizer
}

func NewBasicService(users usersvc.UserRepository, tokenizer Tokenizer) Service {
	return basicService{users: users, tokenizer: tokenizer}
}

func (s basicService) Register(ctx context.Context, nome, email, senha, perfil, setor string, ativo bool) (uint64, error) {
	if nome == "" || email == "" || senha == "" {
		return 0, usersvc.ErrRequiredFields
	}

	// Best-effort duplicate guard. The unique index on email is the
	// backstop for two registrations racing past this check.
	_, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		return 0, usersvc.ErrEmailInUse
	}
	if err != usersvc.ErrUserNotFound {
		return 0, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(senha), bcryptCost)
	if err != nil {
		return 0, err
	}

	if perfil == "" {
		perfil = "usuario"
	}

	user := usersvc.User{
		Nome:        nome,
		Email:       email,
		SenhaHash:   string(hash),
		Perfil:      perfil,
		Setor:       setor,
		Ativo:       ativo,
		DataCriacao: time.Now(),
	}
	if err := s.users.Insert(ctx, &user); err != nil {
		return 0, err
	}

	return user.ID, nil
}

func (s basicService) Login(ctx context.Context, email, senha string) (string, usersvc.User, error) {
	if email == "" || senha == "" {
		return "", usersvc.User{}, usersvc.ErrMissingCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return "", usersvc.User{}, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.SenhaHash), []byte(senha)) != nil {
		return "", usersvc.User{}, usersvc.ErrIncorrectPassword
	}

	token, err := s.tokenizer.Generate(user.ID, user.Email)
	if err != nil {
		return "", usersvc.User{}, err
	}

	user.SenhaHash = ""

	return token, user, nil
}

func (s basicService) UpdatePassword(ctx context.Context, email, senhaAtual, novaSenha string) error {
	if email == "" || senhaAtual == "" || novaSenha == "" {
		return usersvc.ErrIncompleteData
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.SenhaHash), []byte(senhaAtual)) != nil {
		return usersvc.ErrCurrentPasswordInvalid
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(novaSenha), bcryptCost)
	if err != nil {
		return err
	}

	return s.users.UpdatePassword(ctx, email, string(hash))
}

func (s basicService) Users(ctx context.Context) ([]usersvc.User, error) {
	return s.users.FindAll(ctx)
}

func (s basicService) UserByEmail(ctx context.Context, email string) (usersvc.User, error) {
	if email == "" {
		return usersvc.User{}, usersvc.ErrUserNotFound
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return usersvc.User{}, err
	}

	user.SenhaHash = ""

	return user, nil
}

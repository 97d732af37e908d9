package usersvc

import (
	"context"
	"errors"
	"os"
	"time"
)

type User struct {
	ID          uint64    `json:"id" gorm:"primaryKey"`
	Nome        string    `json:"nome"`
	Email       string    `json:"email" gorm:"uniqueIndex"`
	SenhaHash   string    `json:"-" gorm:"column:senha_hash"`
	Perfil      string    `json:"perfil"`
	Setor       string    `json:"setor"`
	Ativo       bool      `json:"ativo"`
	DataCriacao time.Time `json:"data_criacao" gorm:"column:data_criacao"`
}

func (User) TableName() string { return "usuarios" }

type UserRepository interface {
	Insert(ctx context.Context, u *User) error
	FindByEmail(ctx context.Context, email string) (User, error)
	FindAll(ctx context.Context) ([]User, error)
	UpdatePassword(ctx context.Context, email, senhaHash string) error
}

var (
	AppEnv       = getEnv("APP_ENV", "")
	AccessSecret = getEnv("ACCESS_SECRET", "access-secret")
)

func getEnv(key, fallback string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		value = fallback
	}
	return value
}

var (
	ErrRequiredFields         = errors.New("nome, email e senha são obrigatórios")
	ErrMissingCredentials     = errors.New("email e senha são obrigatórios")
	ErrIncompleteData         = errors.New("dados incompletos")
	ErrEmailInUse             = errors.New("usuário com esse e-mail já existe")
	ErrUserNotFound           = errors.New("usuário não encontrado")
	ErrIncorrectPassword      = errors.New("senha incorreta")
	ErrCurrentPasswordInvalid = errors.New("senha atual incorreta")
)

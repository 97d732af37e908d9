package userservice

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/myattire/backend/usersvc"
	"github.com/twinj/uuid"
)

// TokenExpiry is how long an issued token stays valid. There is no refresh
// mechanism; a client logs in again when the token lapses.
const TokenExpiry = time.Hour

type Tokenizer interface {
	Generate(userID uint64, email string) (string, error)
}

type tokenizer struct{}

func NewTokenizer() Tokenizer {
	return &tokenizer{}
}

var uuidV4 = uuid.NewV4

func (t *tokenizer) Generate(userID uint64, email string) (string, error) {
	claims := jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"uuid":  uuidV4().String(),
		"exp":   time.Now().Add(TokenExpiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString([]byte(usersvc.AccessSecret))
}

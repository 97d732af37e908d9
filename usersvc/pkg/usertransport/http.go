package usertransport

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-kit/kit/endpoint"
	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/transport"
	httptransport "github.com/go-kit/kit/transport/http"
	"github.com/gorilla/mux"
	"github.com/myattire/backend/usersvc"
	"github.com/myattire/backend/usersvc/pkg/userendpoint"
)

func NewHTTPHandler(endpoints userendpoint.Set, logger log.Logger) http.Handler {
	options := []httptransport.ServerOption{
		httptransport.ServerErrorEncoder(errorEncoder),
		httptransport.ServerErrorHandler(transport.NewLogErrorHandler(logger)),
	}

	registerHandler := httptransport.NewServer(
		endpoints.RegisterEndpoint,
		decodeHTTPRegisterRequest,
		encodeHTTPGenericResponse,
		options...,
	)

	loginHandler := httptransport.NewServer(
		endpoints.LoginEndpoint,
		decodeHTTPLoginRequest,
		encodeHTTPGenericResponse,
		options...,
	)

	updatePasswordHandler := httptransport.NewServer(
		endpoints.UpdatePasswordEndpoint,
		decodeHTTPUpdatePasswordRequest,
		encodeHTTPGenericResponse,
		options...,
	)

	usersHandler := httptransport.NewServer(
		endpoints.UsersEndpoint,
		decodeHTTPUsersRequest,
		encodeHTTPUsersResponse,
		options...,
	)

	userByEmailHandler := httptransport.NewServer(
		endpoints.UserByEmailEndpoint,
		decodeHTTPUserByEmailRequest,
		encodeHTTPUserByEmailResponse,
		options...,
	)

	r := mux.NewRouter()

	r.Methods("POST").Path("/usuarios/cadastrar").Handler(registerHandler)
	r.Methods("POST").Path("/usuarios/login").Handler(loginHandler)
	r.Methods("PUT").Path("/usuarios/atualizar_senha").Handler(updatePasswordHandler)
	r.Methods("GET").Path("/usuarios").Handler(usersHandler)
	r.Methods("GET").Path("/usuarios/email/{email}").Handler(userByEmailHandler)

	return r
}

func errorEncoder(_ context.Context, err error, w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(err2code(err))
	json.NewEncoder(w).Encode(errorWrapper{Error: err.Error()})
}

type errorWrapper struct {
	Error string `json:"error"`
}

func err2code(err error) int {
	switch err {
	case usersvc.ErrRequiredFields,
		usersvc.ErrMissingCredentials,
		usersvc.ErrIncompleteData,
		usersvc.ErrEmailInUse:
		return http.StatusBadRequest
	case usersvc.ErrUserNotFound:
		return http.StatusNotFound
	case usersvc.ErrIncorrectPassword, usersvc.ErrCurrentPasswordInvalid:
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

func decodeHTTPRegisterRequest(_ context.Context, r *http.Request) (interface{}, error) {
	var req userendpoint.RegisterRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	return req, err
}

func decodeHTTPLoginRequest(_ context.Context, r *http.Request) (interface{}, error) {
	var req userendpoint.LoginRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	return req, err
}

func decodeHTTPUpdatePasswordRequest(_ context.Context, r *http.Request) (interface{}, error) {
	var req userendpoint.UpdatePasswordRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	return req, err
}

func decodeHTTPUsersRequest(_ context.Context, r *http.Request) (interface{}, error) {
	return userendpoint.UsersRequest{}, nil
}

func decodeHTTPUserByEmailRequest(_ context.Context, r *http.Request) (interface{}, error) {
	vars := mux.Vars(r)
	return userendpoint.UserByEmailRequest{Email: vars["email"]}, nil
}

// encodeHTTPUsersResponse writes the listing as a bare JSON array, the
// shape the web client consumes.
func encodeHTTPUsersResponse(ctx context.Context, w http.ResponseWriter, response interface{}) error {
	if f, ok := response.(endpoint.Failer); ok && f.Failed() != nil {
		errorEncoder(ctx, f.Failed(), w)
		return nil
	}
	resp := response.(userendpoint.UsersResponse)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	return json.NewEncoder(w).Encode(resp.Usuarios)
}

func encodeHTTPUserByEmailResponse(ctx context.Context, w http.ResponseWriter, response interface{}) error {
	if f, ok := response.(endpoint.Failer); ok && f.Failed() != nil {
		errorEncoder(ctx, f.Failed(), w)
		return nil
	}
	resp := response.(userendpoint.UserByEmailResponse)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	return json.NewEncoder(w).Encode(resp.Usuario)
}

// encodeHTTPGenericResponse encodes the response as JSON, honoring an
// optional StatusCoder for non-200 success codes.
func encodeHTTPGenericResponse(ctx context.Context, w http.ResponseWriter, response interface{}) error {
	if f, ok := response.(endpoint.Failer); ok && f.Failed() != nil {
		errorEncoder(ctx, f.Failed(), w)
		return nil
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if sc, ok := response.(httptransport.StatusCoder); ok {
		w.WriteHeader(sc.StatusCode())
	}
	return json.NewEncoder(w).Encode(response)
}

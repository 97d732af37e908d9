package tasktransport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	stdjwt "github.com/dgrijalva/jwt-go"
	kitjwt "github.com/go-kit/kit/auth/jwt"
	"github.com/go-kit/kit/endpoint"
	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/transport"
	httptransport "github.com/go-kit/kit/transport/http"
	"github.com/gorilla/mux"
	"github.com/myattire/backend/tasksvc"
	"github.com/myattire/backend/tasksvc/pkg/taskendpoint"
	"github.com/myattire/backend/usersvc"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewHTTPHandler mounts the task and sector routes. When requireAuth is
// set, every endpoint is wrapped with the HS256 bearer-token parser; the
// observed system issues tokens without ever checking them, so enforcement
// is an explicit opt-in rather than the default.
func NewHTTPHandler(endpoints taskendpoint.Set, requireAuth bool, logger log.Logger) http.Handler {
	options := []httptransport.ServerOption{
		httptransport.ServerErrorEncoder(errorEncoder),
		httptransport.ServerErrorHandler(transport.NewLogErrorHandler(logger)),
		httptransport.ServerBefore(kitjwt.HTTPToContext()),
	}

	kf := func(token *stdjwt.Token) (interface{}, error) {
		return []byte(usersvc.AccessSecret), nil
	}

	guard := func(e endpoint.Endpoint) endpoint.Endpoint {
		if !requireAuth {
			return e
		}
		return kitjwt.NewParser(kf, stdjwt.SigningMethodHS256, kitjwt.MapClaimsFactory)(e)
	}

	createTaskHandler := httptransport.NewServer(
		guard(endpoints.CreateTaskEndpoint),
		decodeHTTPCreateTaskRequest,
		encodeHTTPGenericResponse,
		options...,
	)

	tasksHandler := httptransport.NewServer(
		guard(endpoints.TasksEndpoint),
		decodeHTTPTasksRequest,
		encodeHTTPTasksResponse,
		options...,
	)

	taskHandler := httptransport.NewServer(
		guard(endpoints.TaskEndpoint),
		decodeHTTPTaskRequest,
		encodeHTTPTaskResponse,
		options...,
	)

	updateTaskHandler := httptransport.NewServer(
		guard(endpoints.UpdateTaskEndpoint),
		decodeHTTPUpdateTaskRequest,
		encodeHTTPGenericResponse,
		options...,
	)

	deleteTaskHandler := httptransport.NewServer(
		guard(endpoints.DeleteTaskEndpoint),
		decodeHTTPDeleteTaskRequest,
		encodeHTTPGenericResponse,
		options...,
	)

	createSectorHandler := httptransport.NewServer(
		guard(endpoints.CreateSectorEndpoint),
		decodeHTTPCreateSectorRequest,
		encodeHTTPGenericResponse,
		options...,
	)

	sectorsHandler := httptransport.NewServer(
		guard(endpoints.SectorsEndpoint),
		decodeHTTPSectorsRequest,
		encodeHTTPSectorsResponse,
		options...,
	)

	r := mux.NewRouter()

	r.Methods("POST").Path("/tarefas").Handler(createTaskHandler)
	r.Methods("GET").Path("/tarefas").Handler(tasksHandler)
	r.Methods("GET").Path("/tarefas/{tarefa_id}").Handler(taskHandler)
	r.Methods("PUT").Path("/tarefas/{tarefa_id}").Handler(updateTaskHandler)
	r.Methods("DELETE").Path("/tarefas/{tarefa_id}").Handler(deleteTaskHandler)
	r.Methods("POST").Path("/setores").Handler(createSectorHandler)
	r.Methods("GET").Path("/setores").Handler(sectorsHandler)
	r.Methods("GET").Path("/metrics").Handler(promhttp.Handler())

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
	case tasksvc.ErrMissingTaskFields,
		tasksvc.ErrInvalidDeadline,
		tasksvc.ErrMissingSectorName,
		ErrBadRouting:
		return http.StatusBadRequest
	case tasksvc.ErrTaskNotFound, tasksvc.ErrNoSectors:
		return http.StatusNotFound
	case kitjwt.ErrTokenContextMissing,
		kitjwt.ErrTokenInvalid,
		kitjwt.ErrTokenExpired,
		kitjwt.ErrTokenMalformed,
		kitjwt.ErrTokenNotActive,
		kitjwt.ErrUnexpectedSigningMethod:
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

func decodeHTTPCreateTaskRequest(_ context.Context, r *http.Request) (interface{}, error) {
	var req taskendpoint.CreateTaskRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	return req, err
}

func decodeHTTPTasksRequest(_ context.Context, r *http.Request) (interface{}, error) {
	q := r.URL.Query()
	return taskendpoint.TasksRequest{
		Filter: tasksvc.TaskFilter{
			Status:      q.Get("status"),
			Prioridade:  q.Get("prioridade"),
			Funcionario: q.Get("funcionario"),
			SetorID:     q.Get("id_setor"),
			Busca:       q.Get("busca"),
		},
	}, nil
}

func decodeHTTPTaskRequest(_ context.Context, r *http.Request) (interface{}, error) {
	taskID, err := taskIDFromVars(r)
	if err != nil {
		return nil, err
	}

	return taskendpoint.TaskRequest{TaskID: taskID}, nil
}

func decodeHTTPUpdateTaskRequest(_ context.Context, r *http.Request) (interface{}, error) {
	taskID, err := taskIDFromVars(r)
	if err != nil {
		return nil, err
	}

	var req taskendpoint.UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, tasksvc.ErrMissingTaskFields
	}
	req.TaskID = taskID

	return req, nil
}

func decodeHTTPDeleteTaskRequest(_ context.Context, r *http.Request) (interface{}, error) {
	taskID, err := taskIDFromVars(r)
	if err != nil {
		return nil, err
	}

	return taskendpoint.DeleteTaskRequest{TaskID: taskID}, nil
}

func decodeHTTPCreateSectorRequest(_ context.Context, r *http.Request) (interface{}, error) {
	var req taskendpoint.CreateSectorRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	return req, err
}

func decodeHTTPSectorsRequest(_ context.Context, r *http.Request) (interface{}, error) {
	return taskendpoint.SectorsRequest{}, nil
}

func taskIDFromVars(r *http.Request) (uint64, error) {
	vars := mux.Vars(r)
	taskID, err := strconv.ParseUint(vars["tarefa_id"], 10, 64)
	if err != nil {
		return 0, ErrBadRouting
	}
	return taskID, nil
}

// ErrBadRouting is returned when an expected path variable is missing.
// It always indicates programmer error.
var ErrBadRouting = errors.New("inconsistent mapping between route and handler (programmer error)")

// encodeHTTPTasksResponse writes the listing as a bare JSON array, the
// shape the web client consumes.
func encodeHTTPTasksResponse(ctx context.Context, w http.ResponseWriter, response interface{}) error {
	if f, ok := response.(endpoint.Failer); ok && f.Failed() != nil {
		errorEncoder(ctx, f.Failed(), w)
		return nil
	}
	resp := response.(taskendpoint.TasksResponse)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	return json.NewEncoder(w).Encode(resp.Tarefas)
}

func encodeHTTPTaskResponse(ctx context.Context, w http.ResponseWriter, response interface{}) error {
	if f, ok := response.(endpoint.Failer); ok && f.Failed() != nil {
		errorEncoder(ctx, f.Failed(), w)
		return nil
	}
	resp := response.(taskendpoint.TaskResponse)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	return json.NewEncoder(w).Encode(resp.Tarefa)
}

func encodeHTTPSectorsResponse(ctx context.Context, w http.ResponseWriter, response interface{}) error {
	if f, ok := response.(endpoint.Failer); ok && f.Failed() != nil {
		errorEncoder(ctx, f.Failed(), w)
		return nil
	}
	resp := response.(taskendpoint.SectorsResponse)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	return json.NewEncoder(w).Encode(resp.Setores)
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

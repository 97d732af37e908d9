package tasktransport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/go-kit/kit/log"
	"github.com/myattire/backend/tasksvc"
	"github.com/myattire/backend/tasksvc/db/gorm"
	"github.com/myattire/backend/tasksvc/pkg/taskendpoint"
	"github.com/myattire/backend/tasksvc/pkg/taskservice"
	"github.com/myattire/backend/usersvc"
	"gorm.io/driver/sqlite"
	libgorm "gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestServer(t *testing.T, name string, requireAuth bool) *httptest.Server {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := libgorm.Open(sqlite.Open(dsn), &libgorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	if err := db.AutoMigrate(&tasksvc.Task{}, &tasksvc.Sector{}); err != nil {
		t.Fatalf("migrating test database: %v", err)
	}

	svc := taskservice.NewBasicService(gorm.NewTaskRepository(db), gorm.NewSectorRepository(db))
	endpoints := taskendpoint.New(svc, log.NewNopLogger())
	handler := NewHTTPHandler(endpoints, requireAuth, log.NewNopLogger())

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return server
}

func doJSON(t *testing.T, method, url string, body interface{}) (*http.Response, []byte) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding request body: %v", err)
		}
	}

	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, url, err)
	}
	defer resp.Body.Close()

	var out bytes.Buffer
	out.ReadFrom(resp.Body)

	return resp, out.Bytes()
}

func TestTaskLifecycle(t *testing.T) {
	server := newTestServer(t, "http_lifecycle", false)

	resp, body := doJSON(t, "POST", server.URL+"/setores", map[string]interface{}{"nome": "Vendas"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("POST /setores: expected 201, got %d: %s", resp.StatusCode, body)
	}

	resp, body = doJSON(t, "GET", server.URL+"/setores", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /setores: expected 200, got %d", resp.StatusCode)
	}
	var sectors []tasksvc.Sector
	if err := json.Unmarshal(body, &sectors); err != nil {
		t.Fatalf("GET /setores did not return a bare array: %v: %s", err, body)
	}
	if len(sectors) != 1 || sectors[0].Nome != "Vendas" {
		t.Fatalf("Unexpected sector listing: %s", body)
	}

	resp, body = doJSON(t, "POST", server.URL+"/tarefas", map[string]interface{}{
		"titulo":     "Revisar estoque",
		"descricao":  "Conferir camisas",
		"setor":      "Vendas",
		"id_setor":   sectors[0].ID,
		"prazo":      "2026-09-30",
		"prioridade": "alta",
		"status":     "pendente",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("POST /tarefas: expected 201, got %d: %s", resp.StatusCode, body)
	}
	var created struct {
		Message string       `json:"message"`
		Tarefa  tasksvc.Task `json:"tarefa"`
	}
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatalf("decoding create response: %v", err)
	}
	if created.Message != "Tarefa cadastrada com sucesso" {
		t.Errorf("Unexpected message %q", created.Message)
	}
	if created.Tarefa.ID == 0 {
		t.Fatal("Created task has no id")
	}
	if created.Tarefa.Prazo == nil || created.Tarefa.Prazo.Format("2006-01-02") != "2026-09-30" {
		t.Errorf("Expected prazo 2026-09-30, got %v", created.Tarefa.Prazo)
	}

	taskURL := fmt.Sprintf("%s/tarefas/%d", server.URL, created.Tarefa.ID)

	resp, body = doJSON(t, "GET", taskURL, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET task: expected 200, got %d", resp.StatusCode)
	}
	var fetched tasksvc.Task
	if err := json.Unmarshal(body, &fetched); err != nil {
		t.Fatalf("GET task did not return a bare object: %v: %s", err, body)
	}
	if fetched.Titulo != "Revisar estoque" {
		t.Errorf("Expected titulo back, got %q", fetched.Titulo)
	}

	resp, body = doJSON(t, "PUT", taskURL, map[string]interface{}{"status": "concluida"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("PUT task: expected 200, got %d: %s", resp.StatusCode, body)
	}
	var updated struct {
		Tarefa tasksvc.Task `json:"tarefa"`
	}
	if err := json.Unmarshal(body, &updated); err != nil {
		t.Fatalf("decoding update response: %v", err)
	}
	if updated.Tarefa.Status != "concluida" {
		t.Errorf("Expected status concluida, got %q", updated.Tarefa.Status)
	}
	if updated.Tarefa.Titulo != "Revisar estoque" {
		t.Errorf("Untouched titulo changed to %q", updated.Tarefa.Titulo)
	}

	resp, _ = doJSON(t, "DELETE", taskURL, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("DELETE task: expected 200, got %d", resp.StatusCode)
	}

	resp, body = doJSON(t, "GET", taskURL, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("GET deleted task: expected 404, got %d", resp.StatusCode)
	}
	var errBody map[string]string
	if err := json.Unmarshal(body, &errBody); err != nil {
		t.Fatalf("decoding error body: %v", err)
	}
	if errBody["error"] != tasksvc.ErrTaskNotFound.Error() {
		t.Errorf("Unexpected error body: %s", body)
	}
}

func TestTaskListingFilters(t *testing.T) {
	server := newTestServer(t, "http_filters", false)

	for _, task := range []map[string]interface{}{
		{"titulo": "Revisar estoque", "setor": "Vendas", "funcionario": "Ana", "prioridade": "alta", "status": "pendente"},
		{"titulo": "Atualizar vitrine", "setor": "Vendas", "funcionario": "Bruno", "prioridade": "media", "status": "pendente"},
	} {
		if resp, body := doJSON(t, "POST", server.URL+"/tarefas", task); resp.StatusCode != http.StatusCreated {
			t.Fatalf("seeding task: got %d: %s", resp.StatusCode, body)
		}
	}

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"no filter", "", 2},
		{"sentinel", "?status=todos&funcionario=todos", 2},
		{"by funcionario", "?funcionario=Ana", 1},
		{"conjunction", "?status=pendente&prioridade=alta", 1},
		{"busca case-insensitive", "?busca=VITRINE", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := doJSON(t, "GET", server.URL+"/tarefas"+tt.query, nil)
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("GET /tarefas: expected 200, got %d", resp.StatusCode)
			}
			var tasks []tasksvc.Task
			if err := json.Unmarshal(body, &tasks); err != nil {
				t.Fatalf("Listing is not a bare array: %v: %s", err, body)
			}
			if len(tasks) != tt.want {
				t.Errorf("Expected %d tasks, got %d", tt.want, len(tasks))
			}
		})
	}
}

func TestTaskValidationErrors(t *testing.T) {
	server := newTestServer(t, "http_validation", false)

	resp, body := doJSON(t, "POST", server.URL+"/tarefas", map[string]interface{}{"descricao": "sem titulo"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Missing titulo: expected 400, got %d: %s", resp.StatusCode, body)
	}

	resp, _ = doJSON(t, "POST", server.URL+"/tarefas", map[string]interface{}{
		"titulo": "Revisar estoque", "setor": "Vendas", "prazo": "30/09/2026",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Invalid prazo: expected 400, got %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, "POST", server.URL+"/setores", map[string]interface{}{"ativo": true})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Missing nome: expected 400, got %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, "GET", server.URL+"/setores", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Empty sector listing: expected 404, got %d", resp.StatusCode)
	}
}

func TestRequireAuth(t *testing.T) {
	server := newTestServer(t, "http_auth", true)

	resp, _ := doJSON(t, "GET", server.URL+"/tarefas", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("No token: expected 401, got %d", resp.StatusCode)
	}

	token := signedToken(t, usersvc.AccessSecret)
	req, _ := http.NewRequest("GET", server.URL+"/tarefas", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET with token failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Valid token: expected 200, got %d", resp.StatusCode)
	}

	forged := signedToken(t, "outro-segredo")
	req, _ = http.NewRequest("GET", server.URL+"/tarefas", nil)
	req.Header.Set("Authorization", "Bearer "+forged)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET with forged token failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("Forged token: expected 401, got %d", resp.StatusCode)
	}
}

func signedToken(t *testing.T, secret string) string {
	t.Helper()

	claims := jwt.MapClaims{
		"sub":   uint64(1),
		"email": "ana@myattire.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}

	return token
}

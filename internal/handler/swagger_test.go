package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func serveOpenAPI(t *testing.T, publicURL string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "http://localhost:8080/openapi.json", nil)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)

	if err := NewDocsHandler(publicURL).ServeOpenAPI3(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	return rec, doc
}

func TestServeOpenAPI3_Servers(t *testing.T) {
	_, doc := serveOpenAPI(t, "https://api.finora.dev/")

	servers, _ := doc["servers"].([]interface{})
	if len(servers) != 2 {
		t.Fatalf("Expected 2 servers, got %v", servers)
	}
	first := servers[0].(map[string]interface{})
	if first["url"] != "https://api.finora.dev/api/v1" {
		t.Errorf("Expected configured server first, got %v", first["url"])
	}
	second := servers[1].(map[string]interface{})
	if second["url"] != "http://localhost:8080/api/v1" {
		t.Errorf("Expected request origin second, got %v", second["url"])
	}

	_, doc = serveOpenAPI(t, "")
	servers, _ = doc["servers"].([]interface{})
	if len(servers) != 1 {
		t.Errorf("Expected only the request origin without PUBLIC_API_URL, got %v", servers)
	}
}

func TestServeOpenAPI3_ConvertsOperations(t *testing.T) {
	rec, doc := serveOpenAPI(t, "")

	if doc["openapi"] != "3.0.3" {
		t.Errorf("Expected openapi 3.0.3, got %v", doc["openapi"])
	}
	if strings.Contains(rec.Body.String(), "#/definitions/") {
		t.Error("Expected every reference to point at components")
	}

	paths := doc["paths"].(map[string]interface{})

	create := paths["/transactions"].(map[string]interface{})["post"].(map[string]interface{})
	if _, ok := create["parameters"]; ok {
		t.Error("Expected body parameter to move into requestBody")
	}
	body, ok := create["requestBody"].(map[string]interface{})
	if !ok {
		t.Fatal("Expected requestBody on POST /transactions")
	}
	schema := body["content"].(map[string]interface{})["application/json"].(map[string]interface{})["schema"].(map[string]interface{})
	if schema["$ref"] != "#/components/schemas/handler.CreateTransactionRequest" {
		t.Errorf("Unexpected request schema %v", schema)
	}
	problem := create["responses"].(map[string]interface{})["400"].(map[string]interface{})
	if _, ok := problem["content"]; !ok {
		t.Error("Expected 400 response to carry a JSON content entry")
	}

	upload := paths["/transactions/import"].(map[string]interface{})["post"].(map[string]interface{})
	form, ok := upload["requestBody"].(map[string]interface{})
	if !ok {
		t.Fatal("Expected requestBody on POST /transactions/import")
	}
	multipart := form["content"].(map[string]interface{})["multipart/form-data"].(map[string]interface{})
	file := multipart["schema"].(map[string]interface{})["properties"].(map[string]interface{})["file"].(map[string]interface{})
	if file["format"] != "binary" {
		t.Errorf("Expected file part to be binary, got %v", file)
	}

	get := paths["/transactions/{id}"].(map[string]interface{})["get"].(map[string]interface{})
	params := get["parameters"].([]interface{})
	id := params[0].(map[string]interface{})
	if id["in"] != "path" || id["schema"] == nil {
		t.Errorf("Expected path parameter with schema, got %v", id)
	}
}

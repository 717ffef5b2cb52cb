package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func setupTestServer(t *testing.T) *gin.Engine {
	// integration tests are opt-in. Set DB_DSN_TEST=1 and DB_DSN to run them.
	if os.Getenv("DB_DSN_TEST") != "1" {
		t.Skip("integration tests are disabled; set DB_DSN_TEST=1 to enable")
	}
	gin.SetMode(gin.TestMode)
	c, err := loadConfig("no-such-config.yml")
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	log := zap.NewNop()
	if err := initDB(c, log); err != nil {
		t.Fatalf("initDB: %v", err)
	}
	setupConfig(c, log)
	setupAuth(c, &gormUserSource{db: db})
	r := gin.Default()
	setupRoutes(r)
	return r
}

func TestIntegrationFullFlow(t *testing.T) {
	r := setupTestServer(t)

	// 1. Login as the seeded admin
	loginBody, _ := json.Marshal(map[string]string{"username": "admin", "password": "admin123"})
	resp := performRequest(r, http.MethodPost, "/api/v1/auth/login", bytes.NewBuffer(loginBody), "", "application/json")
	if resp.Code != 200 {
		t.Fatalf("login failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var loginResp map[string]any
	_ = json.Unmarshal(resp.Body.Bytes(), &loginResp)
	token, _ := loginResp["token"].(string)
	if token == "" {
		t.Fatalf("empty token in login response: %+v", loginResp)
	}

	// 2. Create a category
	catBody, _ := json.Marshal(map[string]string{"name": "electronics"})
	resp = performRequest(r, http.MethodPost, "/api/v1/categories", bytes.NewBuffer(catBody), token, "application/json")
	if resp.Code != 201 && resp.Code != 400 {
		t.Fatalf("create category failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	resp = performRequest(r, http.MethodGet, "/api/v1/categories", nil, token, "")
	if resp.Code != 200 {
		t.Fatalf("list categories failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var categories []map[string]any
	_ = json.Unmarshal(resp.Body.Bytes(), &categories)
	if len(categories) == 0 {
		t.Fatal("expected at least one category")
	}
	categoryID, _ := categories[0]["id"].(string)

	// 3. Create a product in that category
	prodBody, _ := json.Marshal(map[string]any{
		"name":        "widget",
		"description": "a widget",
		"price":       9.99,
		"stock":       5,
		"category_id": categoryID,
	})
	resp = performRequest(r, http.MethodPost, "/api/v1/products", bytes.NewBuffer(prodBody), token, "application/json")
	if resp.Code != 201 {
		t.Fatalf("create product failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var product map[string]any
	_ = json.Unmarshal(resp.Body.Bytes(), &product)
	productID, _ := product["id"].(string)

	// 4. Fetch, update, list
	resp = performRequest(r, http.MethodGet, "/api/v1/products/"+productID, nil, token, "")
	if resp.Code != 200 {
		t.Fatalf("get product failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	updBody, _ := json.Marshal(map[string]any{"stock": 7})
	resp = performRequest(r, http.MethodPut, "/api/v1/products/"+productID, bytes.NewBuffer(updBody), token, "application/json")
	if resp.Code != 200 {
		t.Fatalf("update product failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	resp = performRequest(r, http.MethodGet, "/api/v1/products?search=wid", nil, token, "")
	if resp.Code != 200 {
		t.Fatalf("list products failed status=%d body=%s", resp.Code, resp.Body.String())
	}

	// 5. Users listing works
	resp = performRequest(r, http.MethodGet, "/api/v1/users", nil, token, "")
	if resp.Code != 200 {
		t.Fatalf("list users failed status=%d body=%s", resp.Code, resp.Body.String())
	}

	// 6. Delete the product
	resp = performRequest(r, http.MethodDelete, "/api/v1/products/"+productID, nil, token, "")
	if resp.Code != 204 {
		t.Fatalf("delete product failed status=%d body=%s", resp.Code, resp.Body.String())
	}

	// 7. Logout, then the token is dead
	resp = performRequest(r, http.MethodPost, "/api/v1/auth/logout", nil, token, "")
	if resp.Code != 200 {
		t.Fatalf("logout failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	resp = performRequest(r, http.MethodGet, "/api/v1/users", nil, token, "")
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout got %d", resp.Code)
	}
}

func TestMigrateCommand(t *testing.T) {
	if os.Getenv("DB_DSN_TEST") != "1" {
		t.Skip("integration tests are disabled; set DB_DSN_TEST=1 to enable")
	}
	c, err := loadConfig("no-such-config.yml")
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	if err := initDB(c, zap.NewNop()); err != nil {
		t.Fatalf("initDB: %v", err)
	}
}

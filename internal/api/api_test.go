package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/najdeno/internal/db"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
	"github.com/erazemk/najdeno/internal/workflow"
)

const testJWTSecret = "test-secret"

func setupTestServer(t *testing.T) (*httptest.Server, *sql.DB, string) {
	t.Helper()
	database := db.NewTestDB(t)
	svc := &workflow.Service{DB: database}
	router := NewRouter(database, testJWTSecret, svc)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	// Create admin user.
	ctx := context.Background()
	hash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	store.CreateUser(ctx, database, "Admin", "admin@example.com", string(hash), model.RoleAdmin)

	token := login(t, server, "admin@example.com", "password")
	return server, database, token
}

func login(t *testing.T, server *httptest.Server, email, password string) string {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"email": email, "password": password})
	resp, err := http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login failed: %d", resp.StatusCode)
	}

	var loginResp struct {
		Token string `json:"token"`
	}
	json.NewDecoder(resp.Body).Decode(&loginResp)
	if loginResp.Token == "" {
		t.Fatal("empty token from login")
	}
	return loginResp.Token
}

func registerAndLogin(t *testing.T, server *httptest.Server, name, email string) string {
	t.Helper()
	body, _ := json.Marshal(map[string]string{
		"name":             name,
		"email":            email,
		"password":         "password",
		"confirm_password": "password",
	})
	resp, err := http.Post(server.URL+"/api/auth/register", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("register request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register failed: %d", resp.StatusCode)
	}
	return login(t, server, email, "password")
}

func authRequest(method, url, token string, body any) (*http.Request, error) {
	var bodyReader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(data)
	} else {
		bodyReader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func createItem(t *testing.T, server *httptest.Server, token, name string) model.Item {
	t.Helper()
	req, _ := authRequest("POST", server.URL+"/api/items", token, map[string]string{
		"name":        name,
		"description": "left in the cafeteria",
		"location":    "building A",
	})
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("create item request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	var item model.Item
	json.NewDecoder(resp.Body).Decode(&item)
	return item
}

func TestRegisterAndLogin(t *testing.T) {
	server, _, _ := setupTestServer(t)

	registerAndLogin(t, server, "Ana", "ana@example.com")

	// Duplicate registration.
	body, _ := json.Marshal(map[string]string{
		"name": "Ana", "email": "ana@example.com",
		"password": "other", "confirm_password": "other",
	})
	resp, _ := http.Post(server.URL+"/api/auth/register", "application/json", bytes.NewReader(body))
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("expected 409 for duplicate email, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Wrong password.
	body, _ = json.Marshal(map[string]string{"email": "ana@example.com", "password": "wrong"})
	resp, _ = http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for bad password, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestClaimAPIFlow(t *testing.T) {
	server, _, adminToken := setupTestServer(t)
	item := createItem(t, server, adminToken, "Blue umbrella")

	anaToken := registerAndLogin(t, server, "Ana", "ana@example.com")
	bojanToken := registerAndLogin(t, server, "Bojan", "bojan@example.com")

	claimURL := server.URL + "/api/items/" + itoa(item.ID) + "/claim"

	// First claim wins.
	req, _ := authRequest("POST", claimURL, anaToken, nil)
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201 for first claim, got %d", resp.StatusCode)
	}
	var claim model.Claim
	json.NewDecoder(resp.Body).Decode(&claim)
	resp.Body.Close()
	if claim.ItemID != item.ID {
		t.Errorf("claim references item %d, want %d", claim.ItemID, item.ID)
	}

	// Same claimant again: conflict with the duplicate-claim message.
	req, _ = authRequest("POST", claimURL, anaToken, nil)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate claim, got %d", resp.StatusCode)
	}
	var errResp map[string]string
	json.NewDecoder(resp.Body).Decode(&errResp)
	resp.Body.Close()
	if errResp["error"] != "you have already claimed this item" {
		t.Errorf("unexpected duplicate claim message: %q", errResp["error"])
	}

	// Other claimant: conflict with the already-claimed message.
	req, _ = authRequest("POST", claimURL, bojanToken, nil)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 for second claimant, got %d", resp.StatusCode)
	}
	json.NewDecoder(resp.Body).Decode(&errResp)
	resp.Body.Close()
	if errResp["error"] != "item already claimed" {
		t.Errorf("unexpected already-claimed message: %q", errResp["error"])
	}

	// Item shows as claimed.
	req, _ = authRequest("GET", server.URL+"/api/items/"+itoa(item.ID), anaToken, nil)
	resp, _ = http.DefaultClient.Do(req)
	var got model.Item
	json.NewDecoder(resp.Body).Decode(&got)
	resp.Body.Close()
	if got.Status != model.ItemStatusClaimed {
		t.Errorf("expected item claimed, got %q", got.Status)
	}

	// Revoking the claim makes the item available again.
	req, _ = authRequest("DELETE", server.URL+"/api/admin/claims/"+itoa(claim.ID), adminToken, nil)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 revoking claim, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	req, _ = authRequest("POST", claimURL, bojanToken, nil)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusCreated {
		t.Errorf("expected 201 reclaiming released item, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestClaimMissingItem(t *testing.T) {
	server, _, token := setupTestServer(t)

	req, _ := authRequest("POST", server.URL+"/api/items/9999/claim", token, nil)
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 claiming missing item, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestReconcileEndpoint(t *testing.T) {
	server, _, adminToken := setupTestServer(t)

	req, _ := authRequest("POST", server.URL+"/api/admin/reconcile", adminToken, nil)
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from reconcile, got %d", resp.StatusCode)
	}

	var result workflow.ReconcileResult
	json.NewDecoder(resp.Body).Decode(&result)
	resp.Body.Close()
	if result.ClaimsDeleted != 0 || result.ItemsUpdated != 0 {
		t.Errorf("expected empty pass on fresh data, got %+v", result)
	}
}

func TestAdminDeleteUserCascades(t *testing.T) {
	server, database, adminToken := setupTestServer(t)
	item := createItem(t, server, adminToken, "Black backpack")

	anaToken := registerAndLogin(t, server, "Ana", "ana@example.com")
	req, _ := authRequest("POST", server.URL+"/api/items/"+itoa(item.ID)+"/claim", anaToken, nil)
	resp, _ := http.DefaultClient.Do(req)
	resp.Body.Close()

	ctx := context.Background()
	ana, _ := store.GetUserByEmail(ctx, database, "ana@example.com")
	if ana == nil {
		t.Fatal("registered user not found")
	}

	req, _ = authRequest("DELETE", server.URL+"/api/admin/users/"+itoa(ana.ID), adminToken, nil)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 deleting user, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// The user's claim is gone and the item is available again.
	got, _ := store.GetItem(ctx, database, item.ID)
	if got.Status != model.ItemStatusAvailable {
		t.Errorf("expected item released after claimant deletion, got %q", got.Status)
	}
}

func TestUnauthenticatedAccess(t *testing.T) {
	server, _, _ := setupTestServer(t)

	resp, _ := http.Get(server.URL + "/api/items")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for unauthenticated request, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestAdminRoutesRejectUsers(t *testing.T) {
	server, _, _ := setupTestServer(t)
	userToken := registerAndLogin(t, server, "Ana", "ana@example.com")

	req, _ := authRequest("GET", server.URL+"/api/admin/dashboard", userToken, nil)
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403 for user on admin route, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	req, _ = authRequest("POST", server.URL+"/api/admin/reconcile", userToken, nil)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403 for user running reconcile, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestLogoutRevokesToken(t *testing.T) {
	server, _, token := setupTestServer(t)

	req, _ := authRequest("POST", server.URL+"/api/auth/logout", token, nil)
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from logout, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	req, _ = authRequest("GET", server.URL+"/api/items", token, nil)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 with revoked token, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestMessagesAndDashboard(t *testing.T) {
	server, database, adminToken := setupTestServer(t)
	item := createItem(t, server, adminToken, "Silver keychain")

	anaToken := registerAndLogin(t, server, "Ana", "ana@example.com")

	ctx := context.Background()
	admin, _ := store.GetUserByEmail(ctx, database, "admin@example.com")

	req, _ := authRequest("POST", server.URL+"/api/messages", anaToken, map[string]any{
		"receiver_id": admin.ID,
		"item_id":     item.ID,
		"message":     "I think that's mine, it has my initials on it.",
	})
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201 sending message, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Admin's dashboard includes the received message and the registered item.
	req, _ = authRequest("GET", server.URL+"/api/dashboard", adminToken, nil)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from dashboard, got %d", resp.StatusCode)
	}
	var dash dashboardResponse
	json.NewDecoder(resp.Body).Decode(&dash)
	resp.Body.Close()
	if len(dash.Messages) != 1 {
		t.Errorf("expected 1 message, got %d", len(dash.Messages))
	}
	if len(dash.Items) != 1 {
		t.Errorf("expected 1 item, got %d", len(dash.Items))
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

package router_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/dirportal/internal/directory"
	dirctrl "github.com/dropDatabas3/dirportal/internal/http/controllers/directory"
	healthctrl "github.com/dropDatabas3/dirportal/internal/http/controllers/health"
	dto "github.com/dropDatabas3/dirportal/internal/http/dto/directory"
	"github.com/dropDatabas3/dirportal/internal/http/router"
	jwtx "github.com/dropDatabas3/dirportal/internal/jwt"
	"github.com/dropDatabas3/dirportal/internal/rate"
	"github.com/dropDatabas3/dirportal/internal/security/password"
	"github.com/dropDatabas3/dirportal/internal/store"
	"github.com/dropDatabas3/dirportal/internal/store/adapters/memory"
)

const (
	dialect     = "http://wso2.org/claims"
	usernameURI = dialect + "/username"
	emailURI    = dialect + "/emailaddress"
)

type harness struct {
	t       *testing.T
	handler http.Handler
	binding *store.Binding
	token   string
}

func newHarness(t *testing.T, limiter rate.Limiter) *harness {
	t.Helper()
	ms := memory.New(memory.Options{
		HashParams: password.Params{Memory: 1024, Time: 1, Parallelism: 1, KeyLen: 16},
	})
	require.NoError(t, ms.ApplySeed(memory.Seed{
		Dialect: dialect,
		Domains: []string{"PARTNERS"},
		Groups: []memory.SeedGroup{
			{ID: "g-admins", Claims: map[string]string{dialect + "/groupname": "admins"}},
		},
		Users: []memory.SeedUser{
			{ID: "u-alice", Username: "alice", Password: "s3cret", Claims: map[string]string{emailURI: "alice@acme.io"}, Groups: []string{"g-admins"}},
			{ID: "u-bob", Username: "bob", Password: "hunter2", State: "LOCKED__VERIFIED"},
			{ID: "u-dave", Username: "dave", Password: "d4ve", Claims: map[string]string{emailURI: "dave@acme.io"}},
		},
	}))

	binding := store.NewBinding(ms)
	svc := directory.NewService(directory.Deps{Stores: binding})
	issuer, err := jwtx.NewIssuer("dirportal", []byte("0123456789abcdef0123456789abcdef"), 5*time.Minute)
	require.NoError(t, err)

	h := router.New(router.Deps{
		Directory:    dirctrl.NewControllers(svc, issuer, "admins"),
		Health:       healthctrl.NewHealthController(binding, "test"),
		Issuer:       issuer,
		LoginLimiter: limiter,
	})
	return &harness{t: t, handler: h, binding: binding}
}

func (h *harness) do(method, path string, body any) *httptest.ResponseRecorder {
	h.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(h.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

// login abre sesión como alice, miembro del grupo admins.
func (h *harness) login() {
	h.t.Helper()
	h.loginAs("alice", "s3cret")
}

func (h *harness) loginAs(username, pw string) {
	h.t.Helper()
	h.token = ""
	rec := h.do(http.MethodPost, "/v1/directory/auth/login", dto.LoginRequest{Username: username, Password: pw})
	require.Equal(h.t, http.StatusOK, rec.Code, rec.Body.String())
	var resp dto.LoginResponse
	require.NoError(h.t, json.Unmarshal(rec.Body.Bytes(), &resp))
	h.token = resp.AccessToken
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func TestHealth(t *testing.T) {
	h := newHarness(t, nil)

	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, "/healthz", nil).Code)
	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, "/readyz", nil).Code)

	h.binding.Unbind()
	assert.Equal(t, http.StatusServiceUnavailable, h.do(http.MethodGet, "/readyz", nil).Code)
	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, "/healthz", nil).Code)
}

func TestLogin(t *testing.T) {
	h := newHarness(t, nil)

	rec := h.do(http.MethodPost, "/v1/directory/auth/login", dto.LoginRequest{Username: "alice", Password: "s3cret"})
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[dto.LoginResponse](t, rec)
	assert.Equal(t, "alice", resp.User.Username)
	assert.Equal(t, "u-alice", resp.User.UserID)
	assert.Equal(t, "PRIMARY", resp.User.DomainName)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.NotEmpty(t, resp.AccessToken)

	for _, req := range []dto.LoginRequest{
		{Username: "alice", Password: "wrong"},
		{Username: "nobody", Password: "s3cret"},
		{Username: "bob", Password: "hunter2"}, // bloqueado
		{Username: "", Password: ""},
	} {
		rec := h.do(http.MethodPost, "/v1/directory/auth/login", req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, req.Username)
		assert.Equal(t, "Invalid credentials.", decode[apiError](t, rec).Message)
	}
}

func TestLoginUnboundStoreStill401(t *testing.T) {
	h := newHarness(t, nil)
	h.binding.Unbind()

	rec := h.do(http.MethodPost, "/v1/directory/auth/login", dto.LoginRequest{Username: "alice", Password: "s3cret"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid credentials.", decode[apiError](t, rec).Message)
}

func TestLoginRateLimited(t *testing.T) {
	h := newHarness(t, rate.NewMemoryLimiter(1, time.Minute))

	first := h.do(http.MethodPost, "/v1/directory/auth/login", dto.LoginRequest{Username: "alice", Password: "nope"})
	assert.Equal(t, http.StatusUnauthorized, first.Code)
	second := h.do(http.MethodPost, "/v1/directory/auth/login", dto.LoginRequest{Username: "alice", Password: "s3cret"})
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}

func TestManagementRoutesRequireSession(t *testing.T) {
	h := newHarness(t, nil)
	rec := h.do(http.MethodGet, "/v1/directory/domains", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "TOKEN_MISSING", decode[apiError](t, rec).Code)
}

func TestDomains(t *testing.T) {
	h := newHarness(t, nil)
	h.login()

	rec := h.do(http.MethodGet, "/v1/directory/domains", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"PRIMARY", "PARTNERS"}, decode[dto.DomainsResponse](t, rec).Domains)

	rec = h.do(http.MethodGet, "/v1/directory/domains/primary", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "PRIMARY", decode[dto.PrimaryDomainResponse](t, rec).Domain)
}

func TestProvisioningAndExistence(t *testing.T) {
	h := newHarness(t, nil)
	h.login()

	rec := h.do(http.MethodPost, "/v1/directory/users", dto.AddUserRequest{
		Claims:      map[string]string{usernameURI: "carol", emailURI: "carol@partners.io"},
		Credentials: map[string]string{"password": "pa55"},
		Domain:      "PARTNERS",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[directory.User](t, rec)
	assert.NotEmpty(t, created.UserID)
	assert.Equal(t, "PARTNERS", created.DomainName)
	assert.Empty(t, created.Username)

	rec = h.do(http.MethodPost, "/v1/directory/users/exists", dto.ExistsRequest{
		Claims: map[string]string{usernameURI: "carol"}, Domain: "PARTNERS",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[dto.ExistsResponse](t, rec).Exists)

	rec = h.do(http.MethodPost, "/v1/directory/users/exists", dto.ExistsRequest{
		Claims: map[string]string{usernameURI: "carol"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"PARTNERS"}, decode[dto.DomainsWithUserResponse](t, rec).Domains)

	rec = h.do(http.MethodPost, "/v1/directory/users", dto.AddUserRequest{
		Claims: map[string]string{usernameURI: "carol"}, Domain: "NOWHERE",
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, directory.MsgAddUserFailed, decode[apiError](t, rec).Message)
}

func TestListingAndSearch(t *testing.T) {
	h := newHarness(t, nil)
	h.login()

	rec := h.do(http.MethodGet, "/v1/directory/users?offset=-3&length=9999", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[dto.ListResponse](t, rec)
	assert.Equal(t, 0, list.Offset)
	assert.Equal(t, directory.MaxRecordLength, list.Length)
	require.Len(t, list.Entries, 3)
	assert.Equal(t, "alice", list.Entries[0].Username)
	assert.Equal(t, directory.StatusUnlocked, list.Entries[0].State)
	assert.Equal(t, []string{"admins"}, list.Entries[0].Groups)
	assert.Equal(t, directory.StatusLocked, list.Entries[1].State)

	rec = h.do(http.MethodGet, "/v1/directory/users?claim_uri="+emailURI+"&claim_value=alice*", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list = decode[dto.ListResponse](t, rec)
	require.Len(t, list.Entries, 1)
	assert.Equal(t, "u-alice", list.Entries[0].UserUniqueID)

	rec = h.do(http.MethodGet, "/v1/directory/users/search?claim_uri="+usernameURI+"&claim_value=bob", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	users := decode[dto.UsersResponse](t, rec)
	require.Len(t, users.Users, 1)
	assert.Equal(t, "u-bob", users.Users[0].UserID)
	assert.Empty(t, users.Users[0].Username)

	rec = h.do(http.MethodGet, "/v1/directory/users/search", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.do(http.MethodGet, "/v1/directory/users?offset=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestClaims(t *testing.T) {
	h := newHarness(t, nil)
	h.login()

	rec := h.do(http.MethodPatch, "/v1/directory/users/u-alice/claims", dto.UpdateClaimsRequest{
		Claims: map[string]string{emailURI: "alice@new.io", " ": "ignored"},
	})
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = h.do(http.MethodGet, "/v1/directory/users/u-alice/claims?claim="+emailURI+"&claim="+usernameURI, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := map[string]string{}
	for _, c := range decode[dto.ClaimsResponse](t, rec).Claims {
		got[c.URI] = c.Value
	}
	assert.Equal(t, map[string]string{emailURI: "alice@new.io", usernameURI: "alice"}, got)

	rec = h.do(http.MethodGet, "/v1/directory/users/u-ghost/claims?claim="+emailURI, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdatePassword(t *testing.T) {
	h := newHarness(t, nil)

	rec := h.do(http.MethodPost, "/v1/directory/auth/password", dto.UpdatePasswordRequest{
		Username: "alice", OldPassword: "wrong", NewPassword: "n3w",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = h.do(http.MethodPost, "/v1/directory/auth/password", dto.UpdatePasswordRequest{
		Username: "alice", OldPassword: "s3cret", NewPassword: "n3w",
	})
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = h.do(http.MethodPost, "/v1/directory/auth/login", dto.LoginRequest{Username: "alice", Password: "n3w"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUnboundStoreOnManagementRoute(t *testing.T) {
	h := newHarness(t, nil)
	h.login()
	h.binding.Unbind()

	rec := h.do(http.MethodGet, "/v1/directory/domains", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, directory.MsgStoreUnavailable, decode[apiError](t, rec).Message)
}

func TestNotFoundRoute(t *testing.T) {
	h := newHarness(t, nil)
	rec := h.do(http.MethodGet, "/v1/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdatePasswordSharesLoginRateLimit(t *testing.T) {
	h := newHarness(t, rate.NewMemoryLimiter(2, time.Minute))

	for i := 0; i < 2; i++ {
		rec := h.do(http.MethodPost, "/v1/directory/auth/login", dto.LoginRequest{Username: "alice", Password: "guess"})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	}

	rec := h.do(http.MethodPost, "/v1/directory/auth/password", dto.UpdatePasswordRequest{
		Username: "alice", OldPassword: "s3cret", NewPassword: "owned",
	})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// otro usuario desde la misma IP no queda bloqueado
	rec = h.do(http.MethodPost, "/v1/directory/auth/password", dto.UpdatePasswordRequest{
		Username: "dave", OldPassword: "wrong", NewPassword: "x",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegularSessionOnlyManagesItself(t *testing.T) {
	h := newHarness(t, nil)
	h.loginAs("dave", "d4ve")

	rec := h.do(http.MethodPatch, "/v1/directory/users/u-bob/claims", dto.UpdateClaimsRequest{
		Claims: map[string]string{emailURI: "attacker@evil.io"},
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "FORBIDDEN", decode[apiError](t, rec).Code)
	assert.Equal(t, http.StatusForbidden, h.do(http.MethodGet, "/v1/directory/users/u-bob/claims?claim="+emailURI, nil).Code)

	for _, tc := range []struct {
		method, path string
		body         any
	}{
		{http.MethodPost, "/v1/directory/users", dto.AddUserRequest{Claims: map[string]string{usernameURI: "mallory"}}},
		{http.MethodGet, "/v1/directory/users", nil},
		{http.MethodGet, "/v1/directory/users/search?claim_uri=" + usernameURI + "&claim_value=bob", nil},
		{http.MethodPost, "/v1/directory/users/exists", dto.ExistsRequest{Claims: map[string]string{usernameURI: "bob"}}},
	} {
		assert.Equal(t, http.StatusForbidden, h.do(tc.method, tc.path, tc.body).Code, tc.method+" "+tc.path)
	}

	rec = h.do(http.MethodPatch, "/v1/directory/users/u-dave/claims", dto.UpdateClaimsRequest{
		Claims: map[string]string{emailURI: "dave@new.io"},
	})
	assert.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
	rec = h.do(http.MethodGet, "/v1/directory/users/u-dave/claims?claim="+emailURI, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "dave@new.io", decode[dto.ClaimsResponse](t, rec).Claims[0].Value)
	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, "/v1/directory/domains", nil).Code)

	// un administrador sí puede editar a otro usuario
	h.login()
	rec = h.do(http.MethodPatch, "/v1/directory/users/u-bob/claims", dto.UpdateClaimsRequest{
		Claims: map[string]string{emailURI: "bob@acme.io"},
	})
	assert.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
}

func TestDuplicateUserIsConflict(t *testing.T) {
	h := newHarness(t, nil)
	h.login()

	rec := h.do(http.MethodPost, "/v1/directory/users", dto.AddUserRequest{
		Claims: map[string]string{usernameURI: "dave"},
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	body := decode[apiError](t, rec)
	assert.Equal(t, "CONFLICT", body.Code)
	assert.Equal(t, directory.MsgUserAlreadyExists, body.Message)
}

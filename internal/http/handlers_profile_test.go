package httpx

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	mocksauth "github.com/danicastudios/studiodesk/internal/mocks/auth"
	"github.com/danicastudios/studiodesk/internal/service"
	"github.com/stretchr/testify/assert"
)

func newProfileHandlers() (*ProfileHandlers, *mocksauth.FakeDirectory) {
	directory := mocksauth.NewFakeDirectory()
	svc := service.NewProfileService(service.ProfileServiceOptions{Directory: directory})
	return &ProfileHandlers{Svc: svc}, directory
}

func TestProfileHandlers_Get_FirstTimer(t *testing.T) {
	h, _ := newProfileHandlers()

	req := withSession(httptest.NewRequest(http.MethodGet, "/api/profile", nil), "user-1")
	rec := httptest.NewRecorder()
	h.Get(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"profile":null`)
}

func TestProfileHandlers_SaveThenGet(t *testing.T) {
	h, _ := newProfileHandlers()

	saveReq := withSession(httptest.NewRequest(http.MethodPut, "/api/profile",
		strings.NewReader(`{"name":"  Dana Castillo ","phone":"555-0100"}`)), "user-1")
	saveRec := httptest.NewRecorder()
	h.Save(saveRec, saveReq)

	assert.Equal(t, http.StatusOK, saveRec.Code)
	assert.Contains(t, saveRec.Body.String(), `"name":"Dana Castillo"`)

	getReq := withSession(httptest.NewRequest(http.MethodGet, "/api/profile", nil), "user-1")
	getRec := httptest.NewRecorder()
	h.Get(getRec, getReq)

	assert.Equal(t, http.StatusOK, getRec.Code)
	assert.Contains(t, getRec.Body.String(), `"phone":"555-0100"`)
}

func TestProfileHandlers_Save_Validation(t *testing.T) {
	h, _ := newProfileHandlers()

	tests := []struct {
		name string
		body string
	}{
		{"empty name", `{"name":"","phone":"555"}`},
		{"whitespace name", `{"name":"   "}`},
		{"bad json", `{"name":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := withSession(httptest.NewRequest(http.MethodPut, "/api/profile",
				strings.NewReader(tt.body)), "user-1")
			rec := httptest.NewRecorder()
			h.Save(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestProfileHandlers_Unauthenticated(t *testing.T) {
	h, _ := newProfileHandlers()

	rec := httptest.NewRecorder()
	h.Get(rec, httptest.NewRequest(http.MethodGet, "/api/profile", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	h.Save(rec, httptest.NewRequest(http.MethodPut, "/api/profile", strings.NewReader(`{"name":"x"}`)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

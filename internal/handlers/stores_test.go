package handlers

import (
	"net/http"
	"strings"
	"testing"

	"storewatch/internal/models"
)

func TestListStores(t *testing.T) {
	t.Run("default limit", func(t *testing.T) {
		catalog := &mockCatalog{stores: []models.Store{
			{ID: 1, Timezone: "UTC"},
			{ID: 2, Timezone: "America/Denver"},
		}}
		router := newTestRouter(newReportTestService(&mockReports{}, catalog, &mockAuth{parseID: 1}))

		w := doAuthed(router, http.MethodGet, "/api/v1/stores/")

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200; body %s", w.Code, w.Body.String())
		}
		if catalog.lastLimit != defaultStoreListLimit {
			t.Fatalf("limit = %d, want %d", catalog.lastLimit, defaultStoreListLimit)
		}
		if !strings.Contains(w.Body.String(), `"count":2`) {
			t.Fatalf("unexpected body: %s", w.Body.String())
		}
	})

	t.Run("explicit limit", func(t *testing.T) {
		catalog := &mockCatalog{}
		router := newTestRouter(newReportTestService(&mockReports{}, catalog, &mockAuth{parseID: 1}))

		w := doAuthed(router, http.MethodGet, "/api/v1/stores/?limit=7")

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
		if catalog.lastLimit != 7 {
			t.Fatalf("limit = %d, want 7", catalog.lastLimit)
		}
	})

	t.Run("rejects bad limit", func(t *testing.T) {
		router := newTestRouter(newReportTestService(&mockReports{}, &mockCatalog{}, &mockAuth{parseID: 1}))

		w := doAuthed(router, http.MethodGet, "/api/v1/stores/?limit=-3")

		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", w.Code)
		}
	})
}

package event_api_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"events-app/internal/events"
	"events-app/internal/events/db"
	"events-app/internal/events/event_api"
	"events-app/internal/events/upload"
	"events-app/internal/logger"
	"events-app/internal/models"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0x42}, 24)...)

func setupRouter(t *testing.T) *chi.Mux {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, "file::memory:?cache=shared")
	require.NoError(t, err)
	bunDB := bun.NewDB(sqldb, sqlitedialect.New())
	require.NoError(t, db.ResetSchema(context.Background(), bunDB))
	t.Cleanup(func() { bunDB.Close() })

	log := logger.New("")
	uploads, err := upload.NewStore(t.TempDir(), 5*1024*1024, log)
	require.NoError(t, err)

	service := events.NewEventService(&db.DB{Bun: bunDB}, uploads, log)
	handler := &event_api.Handler{EventService: service, Logger: log}

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	event_api.ServeUploads(r, uploads.Dir())
	return r
}

func eventForm(t *testing.T, fields map[string]string, image []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	if image != nil {
		part, err := writer.CreateFormFile("image", "upload.bin")
		require.NoError(t, err)
		_, err = part.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func validFields(name string) map[string]string {
	return map[string]string{
		"name":        name,
		"description": "description of " + name,
		"startDate":   "2025-06-01",
		"endDate":     "2025-06-03",
	}
}

func postEvent(t *testing.T, r *chi.Mux, fields map[string]string, image []byte) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := eventForm(t, fields, image)
	req := httptest.NewRequest(http.MethodPost, "/api/events", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func listEvents(t *testing.T, r *chi.Mux, query string) (int, []models.Event, map[string]int) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/events"+query, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp struct {
		Data       []models.Event `json:"data"`
		Pagination map[string]int `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w.Code, resp.Data, resp.Pagination
}

func TestCreateAndGetRoundTrip(t *testing.T) {
	r := setupRouter(t)

	w := postEvent(t, r, validFields("Summer Fest"), nil)
	require.Equal(t, http.StatusCreated, w.Code)

	var created models.Event
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Positive(t, created.ID)
	assert.Nil(t, created.ImageURL)
	assert.Equal(t, "2025-06-01", created.StartDate.String())

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/events/%d", created.ID), nil)
	get := httptest.NewRecorder()
	r.ServeHTTP(get, req)
	require.Equal(t, http.StatusOK, get.Code)

	var fetched models.Event
	require.NoError(t, json.Unmarshal(get.Body.Bytes(), &fetched))
	assert.Equal(t, created, fetched)
}

func TestCreateWithImageServesFile(t *testing.T) {
	r := setupRouter(t)

	w := postEvent(t, r, validFields("Gallery Night"), pngBytes)
	require.Equal(t, http.StatusCreated, w.Code)

	var created models.Event
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotNil(t, created.ImageURL)
	assert.Contains(t, *created.ImageURL, "/uploads/")

	req := httptest.NewRequest(http.MethodGet, *created.ImageURL, nil)
	file := httptest.NewRecorder()
	r.ServeHTTP(file, req)
	require.Equal(t, http.StatusOK, file.Code)
	assert.Equal(t, pngBytes, file.Body.Bytes())
}

func TestCreateMissingFields(t *testing.T) {
	r := setupRouter(t)

	fields := validFields("Broken")
	delete(fields, "description")
	w := postEvent(t, r, fields, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "All fields are required")

	_, _, pagination := listEvents(t, r, "")
	assert.Equal(t, 0, pagination["totalRecords"])
}

func TestCreateRejectsEndBeforeStart(t *testing.T) {
	r := setupRouter(t)

	fields := validFields("Backwards")
	fields["startDate"] = "2025-06-10"
	fields["endDate"] = "2025-06-01"
	w := postEvent(t, r, fields, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "endDate must not be before startDate")
}

func TestCreateRejectsNonImage(t *testing.T) {
	r := setupRouter(t)

	w := postEvent(t, r, validFields("Textual"), []byte("this is not an image at all"))
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "image")

	_, _, pagination := listEvents(t, r, "")
	assert.Equal(t, 0, pagination["totalRecords"])
}

func TestListPaginationContract(t *testing.T) {
	r := setupRouter(t)
	for i := 1; i <= 12; i++ {
		w := postEvent(t, r, validFields(fmt.Sprintf("Event %02d", i)), nil)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	code, data, pagination := listEvents(t, r, "?page=1&limit=5")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, data, 5)
	assert.Equal(t, 3, pagination["totalPages"])
	assert.Equal(t, 12, pagination["totalRecords"])

	code, data, _ = listEvents(t, r, "?page=3&limit=5")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, data, 2)
}

func TestListSearchNoMatch(t *testing.T) {
	r := setupRouter(t)
	w := postEvent(t, r, validFields("Summer Fest"), nil)
	require.Equal(t, http.StatusCreated, w.Code)

	code, data, pagination := listEvents(t, r, "?search=winter")
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, data)
	assert.Equal(t, 0, pagination["totalRecords"])
}

func TestListSortReversal(t *testing.T) {
	r := setupRouter(t)
	dates := []string{"2025-03-10", "2025-03-05", "2025-03-20"}
	for i, start := range dates {
		fields := validFields(fmt.Sprintf("Event %d", i))
		fields["startDate"] = start
		fields["endDate"] = "2025-03-25"
		w := postEvent(t, r, fields, nil)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	_, asc, _ := listEvents(t, r, "?sortBy=startDate&sortOrder=ASC")
	_, desc, _ := listEvents(t, r, "?sortBy=startDate&sortOrder=DESC")
	require.Len(t, asc, 3)
	require.Len(t, desc, 3)
	for i := range asc {
		assert.Equal(t, asc[i].ID, desc[len(desc)-1-i].ID)
	}
	assert.Equal(t, "2025-03-05", asc[0].StartDate.String())
}

func TestGetUnknownID(t *testing.T) {
	r := setupRouter(t)

	for _, path := range []string{"/api/events/9999", "/api/events/not-a-number"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code, path)
		assert.Contains(t, w.Body.String(), "Event not found")
	}
}

func TestUpdateReplacesImage(t *testing.T) {
	r := setupRouter(t)

	w := postEvent(t, r, validFields("Original"), pngBytes)
	require.Equal(t, http.StatusCreated, w.Code)
	var created models.Event
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	oldURL := *created.ImageURL

	body, contentType := eventForm(t, validFields("Renamed"), pngBytes)
	req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/api/events/%d", created.ID), body)
	req.Header.Set("Content-Type", contentType)
	put := httptest.NewRecorder()
	r.ServeHTTP(put, req)
	require.Equal(t, http.StatusOK, put.Code)

	var updated models.Event
	require.NoError(t, json.Unmarshal(put.Body.Bytes(), &updated))
	assert.Equal(t, "Renamed", updated.Name)
	require.NotNil(t, updated.ImageURL)
	assert.NotEqual(t, oldURL, *updated.ImageURL)

	oldReq := httptest.NewRequest(http.MethodGet, oldURL, nil)
	oldResp := httptest.NewRecorder()
	r.ServeHTTP(oldResp, oldReq)
	assert.Equal(t, http.StatusNotFound, oldResp.Code, "old image must be deleted")

	newReq := httptest.NewRequest(http.MethodGet, *updated.ImageURL, nil)
	newResp := httptest.NewRecorder()
	r.ServeHTTP(newResp, newReq)
	assert.Equal(t, http.StatusOK, newResp.Code)
}

func TestUpdateUnknownID(t *testing.T) {
	r := setupRouter(t)

	body, contentType := eventForm(t, validFields("Ghost"), nil)
	req := httptest.NewRequest(http.MethodPut, "/api/events/424242", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteFlow(t *testing.T) {
	r := setupRouter(t)

	w := postEvent(t, r, validFields("Doomed"), nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var created models.Event
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/events/%d", created.ID), nil)
	del := httptest.NewRecorder()
	r.ServeHTTP(del, req)
	require.Equal(t, http.StatusOK, del.Code)
	assert.Contains(t, del.Body.String(), "Event deleted")

	get := httptest.NewRecorder()
	r.ServeHTTP(get, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/events/%d", created.ID), nil))
	assert.Equal(t, http.StatusNotFound, get.Code)
}

func TestDeleteUnknownIDLeavesStoreUnchanged(t *testing.T) {
	r := setupRouter(t)
	w := postEvent(t, r, validFields("Survivor"), nil)
	require.Equal(t, http.StatusCreated, w.Code)

	req := httptest.NewRequest(http.MethodDelete, "/api/events/9999", nil)
	del := httptest.NewRecorder()
	r.ServeHTTP(del, req)
	assert.Equal(t, http.StatusNotFound, del.Code)

	_, _, pagination := listEvents(t, r, "")
	assert.Equal(t, 1, pagination["totalRecords"])
}

package main

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pivolan/data_visualizer/config"
	"github.com/pivolan/data_visualizer/dataset"
	"github.com/pivolan/data_visualizer/domain/models"
	"github.com/pivolan/data_visualizer/visualizer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const salesCSV = "city,sales,units\nNY,10,1\nLA,20,3\nNY,30,2\n"

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func newTestStore(t *testing.T) *dataset.Store {
	t.Helper()
	store, err := dataset.NewStore(filepath.Join(t.TempDir(), "data"))
	require.NoError(t, err)
	_, err = store.Save("sales.csv", strings.NewReader(salesCSV))
	require.NoError(t, err)
	return store
}

func newTestApp(t *testing.T) (*App, *dataset.Store) {
	t.Helper()
	cfg := &config.Config{MaxUploadMB: 1, ChartWidth: 640, ChartHeight: 400, ChartFormat: "png", PublicURL: "http://localhost:8005"}
	store := newTestStore(t)
	app, err := NewApp(cfg, store, nil, visualizer.New(store, newDispatcher(cfg)))
	require.NoError(t, err)
	return app, store
}

func doRequest(t *testing.T, app *App, method, target string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == nil {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, body)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestListDatasets(t *testing.T) {
	app, _ := newTestApp(t)
	rec := doRequest(t, app, http.MethodGet, "/api/datasets", nil, "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []interface{}{"sales.csv"}, decodeBody(t, rec)["datasets"])
}

func TestDatasetStatusCodes(t *testing.T) {
	app, _ := newTestApp(t)

	tests := []struct {
		name   string
		target string
		status int
	}{
		{"dataset", "/api/datasets/sales.csv", http.StatusOK},
		{"unknown dataset", "/api/datasets/missing.csv", http.StatusNotFound},
		{"values", "/api/datasets/sales.csv/values?column=city", http.StatusOK},
		{"values without column", "/api/datasets/sales.csv/values", http.StatusBadRequest},
		{"values of unknown column", "/api/datasets/sales.csv/values?column=region", http.StatusNotFound},
		{"filter", "/api/datasets/sales.csv/filter?column=city&value=LA", http.StatusOK},
		{"filter unknown column", "/api/datasets/sales.csv/filter?column=region&value=LA", http.StatusNotFound},
		{"filter unknown dataset", "/api/datasets/missing.csv/filter", http.StatusNotFound},
		{"correlation", "/api/datasets/sales.csv/correlation", http.StatusOK},
		{"plot", "/api/datasets/sales.csv/plot?x=sales&y=units&type=scatter", http.StatusOK},
		{"plot missing axes", "/api/datasets/sales.csv/plot?x=sales&type=scatter", http.StatusUnprocessableEntity},
		{"plot unknown type", "/api/datasets/sales.csv/plot?x=sales&y=units&type=violin", http.StatusBadRequest},
		{"plot unknown format", "/api/datasets/sales.csv/plot?x=sales&y=units&format=svg", http.StatusBadRequest},
		{"plot unknown axis", "/api/datasets/sales.csv/plot?x=region&y=units&type=line", http.StatusNotFound},
		{"distribution of text", "/api/datasets/sales.csv/plot?x=city&y=sales&type=distribution", http.StatusUnprocessableEntity},
		{"plot bad index", "/api/datasets/sales.csv/plot?x=sales&y=units&type=scatter&index=3", http.StatusNotFound},
		{"catalog disabled", "/api/catalog", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, app, http.MethodGet, tt.target, nil, "")
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}

func TestValuesAndFilter(t *testing.T) {
	app, _ := newTestApp(t)

	rec := doRequest(t, app, http.MethodGet, "/api/datasets/sales.csv/values?column=city", nil, "")
	assert.Equal(t, []interface{}{"NY", "LA"}, decodeBody(t, rec)["values"])

	rec = doRequest(t, app, http.MethodGet, "/api/datasets/sales.csv/filter?column=sales&value=20", nil, "")
	body := decodeBody(t, rec)
	assert.Equal(t, "Filtered Data (sales = 20):", body["caption"])
	filtered := body["filtered"].(map[string]interface{})
	assert.Equal(t, []interface{}{"city", "sales", "units"}, filtered["columns"])
	assert.Equal(t, []interface{}{[]interface{}{"LA", 20.0, 3.0}}, filtered["rows"])
}

func TestCorrelationFollowsFilter(t *testing.T) {
	app, _ := newTestApp(t)

	rec := doRequest(t, app, http.MethodGet, "/api/datasets/sales.csv/correlation?column=city&value=NY", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, []interface{}{"sales", "units"}, body["columns"])
	values := body["values"].([]interface{})
	assert.InDelta(t, 1.0, values[0].([]interface{})[1].(float64), 1e-9)
}

func TestPlotReturnsImage(t *testing.T) {
	app, _ := newTestApp(t)

	rec := doRequest(t, app, http.MethodGet, "/api/datasets/sales.csv/plot?column=city&value=NY&x=sales&y=units&type=Line+Plot", nil, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), pngMagic))

	rec = doRequest(t, app, http.MethodGet, "/api/datasets/sales.csv/plot?x=city&y=sales&type=pie&format=html", nil, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "echarts")
}

func TestVisualize(t *testing.T) {
	app, _ := newTestApp(t)

	tests := []struct {
		name     string
		body     string
		status   int
		charts   int
		warnings []interface{}
	}{
		{
			name:   "bar chart",
			body:   `{"filter_column":"city","filter_value":"NY","x":"city","y":"sales","plot_type":"Bar Chart","generate":true}`,
			status: http.StatusOK,
			charts: 1,
		},
		{
			name:     "missing axes",
			body:     `{"x":"None","y":"sales","plot_type":"bar","generate":true}`,
			status:   http.StatusUnprocessableEntity,
			warnings: []interface{}{"Please select both X and Y axes."},
		},
		{
			name:   "without generate",
			body:   `{"x":"city","y":"sales","plot_type":"bar"}`,
			status: http.StatusOK,
		},
		{
			name:   "unknown column",
			body:   `{"filter_column":"region"}`,
			status: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, app, http.MethodPost, "/api/datasets/sales.csv/visualize", bytes.NewBufferString(tt.body), "application/json")
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			body := decodeBody(t, rec)
			assert.Len(t, body["charts"], tt.charts)
			if tt.warnings != nil {
				assert.Equal(t, tt.warnings, body["warnings"])
			}
		})
	}

	rec := doRequest(t, app, http.MethodPost, "/api/datasets/sales.csv/visualize", bytes.NewBufferString("{"), "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVisualizeHeatmapBeforeGenerate(t *testing.T) {
	app, _ := newTestApp(t)

	rec := doRequest(t, app, http.MethodPost, "/api/datasets/sales.csv/visualize", bytes.NewBufferString(`{"plot_type":"heatmap"}`), "application/json")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.NotNil(t, body["correlation"])
	heatmap := body["heatmap"].(map[string]interface{})
	assert.Equal(t, "Correlation Heatmap", heatmap["title"])
	assert.Empty(t, body["charts"])
}

func multipartUpload(t *testing.T, name, content, token string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if token != "" {
		require.NoError(t, w.WriteField("id", token))
	}
	part, err := w.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

type recordingNotifier struct {
	tokens []string
}

func (n *recordingNotifier) NotifyUpload(token string, file *dataset.StoredFile, ds *models.Dataset) bool {
	n.tokens = append(n.tokens, token)
	return true
}

func TestUpload(t *testing.T) {
	app, store := newTestApp(t)
	notifier := &recordingNotifier{}
	app.SetNotifier(notifier)

	body, contentType := multipartUpload(t, "Orders 2024.csv", "id,total\n1,9.5\n2,3\n", "abc")
	rec := doRequest(t, app, http.MethodPost, "/upload", body, contentType)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/?dataset=Orders_2024.csv&uploaded=1", rec.Header().Get("Location"))
	assert.Equal(t, []string{"abc"}, notifier.tokens)

	body, contentType = multipartUpload(t, "more.csv", "item,total\npen,1.5\ncup,3\n", "")
	rec = doRequest(t, app, http.MethodPost, "/api/datasets", body, contentType)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeBody(t, rec)
	assert.Equal(t, "more.csv", created["name"])
	assert.Equal(t, 2.0, created["rows"])
	assert.Len(t, notifier.tokens, 1)

	names, err := store.List()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Orders_2024.csv", "more.csv", "sales.csv"}, names)
}

func TestUploadRejects(t *testing.T) {
	app, _ := newTestApp(t)

	body, contentType := multipartUpload(t, "notes.txt", "hello", "")
	rec := doRequest(t, app, http.MethodPost, "/api/datasets", body, contentType)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, app, http.MethodPost, "/api/datasets", bytes.NewBufferString("plain"), "text/plain")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIndexPage(t *testing.T) {
	app, _ := newTestApp(t)

	rec := doRequest(t, app, http.MethodGet, "/", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	page := rec.Body.String()
	assert.Contains(t, page, "Loaded <b>sales.csv</b> successfully!")
	assert.Contains(t, page, "Data Preview")
	assert.Contains(t, page, "Filtered Data (city = NY):")
	assert.NotContains(t, page, "Correlation Heatmap")

	rec = doRequest(t, app, http.MethodGet, "/?dataset=sales.csv&type=Heatmap", nil, "")
	page = rec.Body.String()
	assert.Contains(t, page, "Correlation Heatmap")
	assert.Contains(t, page, "data:image/png;base64,")

	rec = doRequest(t, app, http.MethodGet, "/?dataset=sales.csv&x=None&y=sales&type=bar&generate=true", nil, "")
	assert.Contains(t, rec.Body.String(), "Please select both X and Y axes.")

	rec = doRequest(t, app, http.MethodGet, "/?dataset=sales.csv&column=city&value=SF&x=city&y=sales&type=bar&generate=true", nil, "")
	assert.Contains(t, rec.Body.String(), "Filtered Data (city = SF):")
	assert.Contains(t, rec.Body.String(), "class=\"error\"")
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{dataset.ErrFileNotFound, http.StatusNotFound},
		{&models.ColumnNotFoundError{Column: "x"}, http.StatusNotFound},
		{dataset.ErrBadFileName, http.StatusBadRequest},
		{&models.LoadFailure{Path: "a.csv"}, http.StatusBadRequest},
		{models.NewRenderFailure(models.PlotPie, nil), http.StatusUnprocessableEntity},
		{assert.AnError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.status, statusFor(tt.err), tt.err.Error())
	}
}

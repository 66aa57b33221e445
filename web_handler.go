package main

import (
	"embed"
	"encoding/base64"
	"encoding/json"
	"errors"
	"html/template"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pivolan/data_visualizer/config"
	"github.com/pivolan/data_visualizer/dataset"
	"github.com/pivolan/data_visualizer/domain/models"
	"github.com/pivolan/data_visualizer/engine"
	"github.com/pivolan/data_visualizer/logging"
	"github.com/pivolan/data_visualizer/plot"
	"github.com/pivolan/data_visualizer/visualizer"
)

//go:embed templates/index.html
var templateFiles embed.FS

// uploadNotifier is told about uploads made through a chat's web upload link.
type uploadNotifier interface {
	NotifyUpload(token string, file *dataset.StoredFile, ds *models.Dataset) bool
}

type App struct {
	cfg        *config.Config
	store      *dataset.Store
	catalog    datasetCatalog
	visualizer *visualizer.Visualizer
	notifier   uploadNotifier
	router     *chi.Mux
	index      *template.Template
}

func NewApp(cfg *config.Config, store *dataset.Store, catalog datasetCatalog, v *visualizer.Visualizer) (*App, error) {
	index, err := template.ParseFS(templateFiles, "templates/index.html")
	if err != nil {
		return nil, err
	}
	a := &App{
		cfg:        cfg,
		store:      store,
		catalog:    catalog,
		visualizer: v,
		router:     chi.NewRouter(),
		index:      index,
	}
	a.setupRoutes()
	return a, nil
}

func newDispatcher(cfg *config.Config) *plot.Dispatcher {
	format, err := models.ParseChartFormat(cfg.ChartFormat)
	if err != nil {
		format = models.FormatPNG
	}
	return plot.NewDispatcher(cfg.ChartWidth, cfg.ChartHeight, format)
}

func (a *App) SetNotifier(n uploadNotifier) {
	a.notifier = n
}

func (a *App) Handler() http.Handler {
	return a.router
}

func (a *App) setupRoutes() {
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)

	a.router.Get("/", a.handleIndex)
	a.router.Post("/upload", a.handleUpload)

	a.router.Route("/api", func(r chi.Router) {
		r.Get("/datasets", a.handleListDatasets)
		r.Post("/datasets", a.handleUpload)
		r.Get("/datasets/{name}", a.handleDataset)
		r.Get("/datasets/{name}/values", a.handleValues)
		r.Get("/datasets/{name}/filter", a.handleFilter)
		r.Get("/datasets/{name}/correlation", a.handleCorrelation)
		r.Get("/datasets/{name}/plot", a.handlePlot)
		r.Post("/datasets/{name}/visualize", a.handleVisualize)
		if a.catalog != nil {
			r.Get("/catalog", a.handleCatalog)
		}
	})
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, dataset.ErrFileNotFound), errors.Is(err, models.ErrColumnNotFound):
		return http.StatusNotFound
	case errors.Is(err, dataset.ErrBadFileName), errors.Is(err, models.ErrLoadFailure):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrRenderFailure):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("Error encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// jsonValue turns NaN and infinities into null, encoding/json rejects them.
func jsonValue(v interface{}) interface{} {
	if f, ok := v.(float64); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
		return nil
	}
	return v
}

// requestFromQuery reads the selections of one interaction from query or form values.
func requestFromQuery(name string, q url.Values) (visualizer.Request, error) {
	req := visualizer.Request{
		Dataset:      name,
		FilterColumn: q.Get("column"),
		FilterValue:  q.Get("value"),
		XAxis:        q.Get("x"),
		YAxis:        q.Get("y"),
	}
	if req.XAxis == "" {
		req.XAxis = models.AxisNone
	}
	if req.YAxis == "" {
		req.YAxis = models.AxisNone
	}
	if t := q.Get("type"); t != "" {
		p, err := models.ParsePlotType(t)
		if err != nil {
			return req, err
		}
		req.PlotType = p
	}
	if f := q.Get("format"); f != "" {
		format, err := models.ParseChartFormat(f)
		if err != nil {
			return req, err
		}
		req.Format = format
	}
	req.Generate, _ = strconv.ParseBool(q.Get("generate"))
	return req, nil
}

type tableView struct {
	Header []string        `json:"columns"`
	Rows   [][]interface{} `json:"rows"`
}

func newTableView(ds *models.Dataset) tableView {
	t := tableView{Header: ds.ColumnNames(), Rows: make([][]interface{}, 0, ds.RowCount())}
	for i := 0; i < ds.RowCount(); i++ {
		row := make([]interface{}, 0, ds.Len())
		for _, v := range ds.Row(i) {
			row = append(row, jsonValue(v.Interface()))
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func newSummaryView(s engine.Summary) tableView {
	t := tableView{Header: append([]string{""}, s.Columns...)}
	for i, stat := range s.Stats {
		row := []interface{}{stat}
		for _, v := range s.Cells[i] {
			row = append(row, jsonValue(v))
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

type correlationView struct {
	Columns []string        `json:"columns"`
	Values  [][]interface{} `json:"values"`
}

func newCorrelationView(m models.CorrelationMatrix) correlationView {
	c := correlationView{Columns: m.Columns, Values: make([][]interface{}, 0, len(m.Values))}
	if c.Columns == nil {
		c.Columns = []string{}
	}
	for _, row := range m.Values {
		out := make([]interface{}, len(row))
		for j, v := range row {
			out[j] = jsonValue(v)
		}
		c.Values = append(c.Values, out)
	}
	return c
}

type chartView struct {
	PlotType    string `json:"plot_type"`
	Title       string `json:"title"`
	XLabel      string `json:"x_label"`
	YLabel      string `json:"y_label"`
	Format      string `json:"format"`
	ContentType string `json:"content_type"`
	Content     []byte `json:"content"`
}

func newChartView(art models.ChartArtifact) chartView {
	return chartView{
		PlotType:    art.PlotType.String(),
		Title:       art.Title,
		XLabel:      art.XLabel,
		YLabel:      art.YLabel,
		Format:      string(art.Format),
		ContentType: art.ContentType(),
		Content:     art.Content,
	}
}

type resultView struct {
	Dataset      string              `json:"dataset"`
	Columns      []models.ColumnInfo `json:"schema"`
	Preview      *tableView          `json:"preview,omitempty"`
	Summary      *tableView          `json:"summary,omitempty"`
	FilterColumn string              `json:"filter_column,omitempty"`
	FilterValue  interface{}         `json:"filter_value,omitempty"`
	FilterValues []interface{}       `json:"filter_values,omitempty"`
	Caption      string              `json:"caption,omitempty"`
	Filtered     *tableView          `json:"filtered,omitempty"`
	Correlation  *correlationView    `json:"correlation,omitempty"`
	Heatmap      *chartView          `json:"heatmap,omitempty"`
	Validation   string              `json:"validation,omitempty"`
	Charts       []chartView         `json:"charts"`
	Warnings     []string            `json:"warnings"`
	Errors       []string            `json:"errors"`
}

func newResultView(res visualizer.Result) resultView {
	v := resultView{
		Dataset:      res.Dataset,
		Columns:      res.Columns,
		FilterColumn: res.FilterColumn,
		FilterValue:  jsonValue(res.FilterValue.Interface()),
		Caption:      res.Caption,
		Charts:       make([]chartView, 0, len(res.Charts)),
		Warnings:     res.Warnings,
		Errors:       res.Errors,
	}
	if v.Warnings == nil {
		v.Warnings = []string{}
	}
	if v.Errors == nil {
		v.Errors = []string{}
	}
	if res.Preview != nil {
		preview := newTableView(res.Preview)
		summary := newSummaryView(res.Summary)
		v.Preview, v.Summary = &preview, &summary
	}
	if res.Filtered != nil {
		filtered := newTableView(res.Filtered)
		v.Filtered = &filtered
	}
	for _, fv := range res.FilterValues {
		v.FilterValues = append(v.FilterValues, jsonValue(fv.Interface()))
	}
	if res.Correlation != nil {
		c := newCorrelationView(*res.Correlation)
		v.Correlation = &c
	}
	if res.Heatmap != nil {
		h := newChartView(*res.Heatmap)
		v.Heatmap = &h
	}
	if res.Generated {
		v.Validation = res.Validation.String()
	}
	for _, art := range res.Charts {
		v.Charts = append(v.Charts, newChartView(art))
	}
	return v
}

func (a *App) handleListDatasets(w http.ResponseWriter, r *http.Request) {
	files, err := a.store.List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"datasets": files})
}

func (a *App) handleDataset(w http.ResponseWriter, r *http.Request) {
	ds, err := a.store.Load(chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	preview := newTableView(ds.Head(visualizer.PreviewRows))
	summary := newSummaryView(engine.Describe(ds))
	writeJSON(w, http.StatusOK, resultView{
		Dataset:  ds.Name(),
		Columns:  ds.Schema(),
		Preview:  &preview,
		Summary:  &summary,
		Charts:   []chartView{},
		Warnings: []string{},
		Errors:   []string{},
	})
}

func (a *App) handleValues(w http.ResponseWriter, r *http.Request) {
	column := r.URL.Query().Get("column")
	if column == "" {
		writeError(w, http.StatusBadRequest, "column is required")
		return
	}
	ds, err := a.store.Load(chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	values, err := engine.DistinctValues(ds, column)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = jsonValue(v.Interface())
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"column": column, "values": out})
}

// run executes the request built from the query and writes any failure.
func (a *App) run(w http.ResponseWriter, r *http.Request, generate bool) (visualizer.Result, bool) {
	req, err := requestFromQuery(chi.URLParam(r, "name"), r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return visualizer.Result{}, false
	}
	req.Generate = req.Generate || generate
	res := a.visualizer.Handle(req)
	if res.Filtered == nil {
		if res.Err != nil {
			writeError(w, statusFor(res.Err), res.Err.Error())
		} else {
			writeError(w, http.StatusUnprocessableEntity, strings.Join(res.Warnings, "; "))
		}
		return res, false
	}
	return res, true
}

func (a *App) handleFilter(w http.ResponseWriter, r *http.Request) {
	res, ok := a.run(w, r, false)
	if !ok {
		return
	}
	filtered := newTableView(res.Filtered)
	writeJSON(w, http.StatusOK, resultView{
		Dataset:      res.Dataset,
		Columns:      res.Columns,
		FilterColumn: res.FilterColumn,
		FilterValue:  jsonValue(res.FilterValue.Interface()),
		Caption:      res.Caption,
		Filtered:     &filtered,
		Charts:       []chartView{},
		Warnings:     []string{},
		Errors:       []string{},
	})
}

func (a *App) handleCorrelation(w http.ResponseWriter, r *http.Request) {
	res, ok := a.run(w, r, false)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newCorrelationView(engine.CorrelationMatrix(res.Filtered)))
}

// handlePlot answers with the chart itself, ?index= picks one of several artifacts.
func (a *App) handlePlot(w http.ResponseWriter, r *http.Request) {
	res, ok := a.run(w, r, true)
	if !ok {
		return
	}
	if res.Validation == models.MissingAxes {
		writeError(w, http.StatusUnprocessableEntity, res.Validation.Message())
		return
	}
	if len(res.Charts) == 0 {
		err := res.Err
		if err == nil {
			err = errors.New("no chart produced")
		}
		writeError(w, statusFor(err), err.Error())
		return
	}
	index, _ := strconv.Atoi(r.URL.Query().Get("index"))
	if index < 0 || index >= len(res.Charts) {
		writeError(w, http.StatusNotFound, "no chart at index "+strconv.Itoa(index))
		return
	}
	art := res.Charts[index]
	w.Header().Set("Content-Type", art.ContentType())
	w.WriteHeader(http.StatusOK)
	w.Write(art.Content)
}

type visualizeBody struct {
	FilterColumn string `json:"filter_column"`
	FilterValue  string `json:"filter_value"`
	X            string `json:"x"`
	Y            string `json:"y"`
	PlotType     string `json:"plot_type"`
	Generate     bool   `json:"generate"`
	Format       string `json:"format"`
}

func (a *App) handleVisualize(w http.ResponseWriter, r *http.Request) {
	var body visualizeBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	q := url.Values{}
	q.Set("column", body.FilterColumn)
	q.Set("value", body.FilterValue)
	q.Set("x", body.X)
	q.Set("y", body.Y)
	q.Set("type", body.PlotType)
	q.Set("format", body.Format)
	q.Set("generate", strconv.FormatBool(body.Generate))
	req, err := requestFromQuery(chi.URLParam(r, "name"), q)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res := a.visualizer.Handle(req)
	status := http.StatusOK
	switch {
	case res.Err != nil:
		status = statusFor(res.Err)
	case res.Generated && res.Validation == models.MissingAxes:
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, newResultView(res))
}

func (a *App) handleCatalog(w http.ResponseWriter, r *http.Request) {
	records, err := a.catalog.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"datasets": records})
}

func (a *App) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, a.cfg.MaxUploadMB<<20)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Error uploading file: "+err.Error())
		return
	}
	defer file.Close()

	stored, ds, err := handleFile(r.Context(), a.store, a.catalog, header.Filename, file)
	if err != nil {
		logging.Warn("upload %s rejected: %v", header.Filename, err)
		writeError(w, statusFor(err), err.Error())
		return
	}

	if token := r.FormValue("id"); token != "" && a.notifier != nil {
		if !a.notifier.NotifyUpload(token, stored, ds) {
			logging.Info("upload link %s is unknown or expired", token)
		}
	}

	if strings.HasPrefix(r.URL.Path, "/api/") {
		writeJSON(w, http.StatusCreated, map[string]interface{}{
			"name":     stored.Name,
			"checksum": stored.Checksum,
			"rows":     ds.RowCount(),
			"schema":   ds.Schema(),
		})
		return
	}
	http.Redirect(w, r, "/?dataset="+url.QueryEscape(stored.Name)+"&uploaded=1", http.StatusSeeOther)
}

type chartEmbed struct {
	Title string
	Image template.URL
	HTML  string
}

func newChartEmbed(art models.ChartArtifact) chartEmbed {
	if art.Format == models.FormatHTML {
		return chartEmbed{Title: art.Title, HTML: string(art.Content)}
	}
	return chartEmbed{
		Title: art.Title,
		Image: template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(art.Content)),
	}
}

type indexPage struct {
	Files     []string
	Selected  string
	Uploaded  bool
	Token     string
	Request   url.Values
	PlotTypes []string
	Result    *visualizer.Result
	Preview   *tableView
	Summary   *tableView
	Filtered  *tableView
	Values    []string
	Corr      *tableView
	Heatmap   *chartEmbed
	Charts    []chartEmbed
}

// displayTable formats every cell the way the text tables do.
func displayTable(t tableView) *tableView {
	out := tableView{Header: t.Header, Rows: make([][]interface{}, len(t.Rows))}
	for i, row := range t.Rows {
		out.Rows[i] = make([]interface{}, len(row))
		for j, v := range row {
			out.Rows[i][j] = formatCell(v)
		}
	}
	return &out
}

func correlationTable(m models.CorrelationMatrix) *tableView {
	t := tableView{Header: append([]string{""}, m.Columns...)}
	for i, c := range m.Columns {
		row := []interface{}{c}
		for _, v := range m.Values[i] {
			row = append(row, formatCoefficient(v))
		}
		t.Rows = append(t.Rows, row)
	}
	return &t
}

func (a *App) handleIndex(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	files, err := a.store.List()
	if err != nil {
		logging.Error("Error listing data folder: %v", err)
	}
	page := indexPage{
		Files:    files,
		Selected: q.Get("dataset"),
		Uploaded: q.Get("uploaded") != "",
		Token:    q.Get("id"),
		Request:  q,
	}
	for _, p := range models.PlotTypes() {
		page.PlotTypes = append(page.PlotTypes, p.String())
	}
	if page.Selected == "" && len(files) > 0 {
		page.Selected = files[0]
	}

	if page.Selected != "" {
		req, err := requestFromQuery(page.Selected, q)
		res := a.visualizer.Handle(req)
		if err != nil {
			res.Errors = append(res.Errors, err.Error())
		}
		page.Result = &res
		if res.Preview != nil {
			page.Preview = displayTable(newTableView(res.Preview))
			page.Summary = displayTable(newSummaryView(res.Summary))
		}
		if res.Filtered != nil {
			page.Filtered = displayTable(newTableView(res.Filtered))
		}
		for _, v := range res.FilterValues {
			page.Values = append(page.Values, v.String())
		}
		if res.Correlation != nil {
			page.Corr = correlationTable(*res.Correlation)
		}
		if res.Heatmap != nil {
			h := newChartEmbed(*res.Heatmap)
			page.Heatmap = &h
		}
		for _, art := range res.Charts {
			page.Charts = append(page.Charts, newChartEmbed(art))
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := a.index.Execute(w, page); err != nil {
		logging.Error("Error rendering index page: %v", err)
	}
}

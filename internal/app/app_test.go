package app

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alumnipulse/internal/config"
	"alumnipulse/internal/services"
	"alumnipulse/pkg/contracts/domain"
)

const sampleCSV = `Programa,Año de Egreso,¿Trabajas actualmente?
Ingeniería de Sistemas,2019,Sí
Administración,2020,No
`

func newTestApplication(t *testing.T) *Application {
	t.Helper()

	cfg := config.Default()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	paths := config.GetPathsWithBase(t.TempDir())
	require.NoError(t, paths.EnsureDirectories())

	set := domain.QuestionSet{
		Questions: []domain.QuestionSpec{
			{ID: "a1", Section: "A", Type: domain.QuestionTypeBinary,
				Label: "¿Trabajas actualmente?", Column: "¿Trabajas actualmente?"},
		},
	}

	app := &Application{
		Config: cfg,
		Paths:  paths,
		Logger: logger,
	}
	app.SurveyService = services.NewSurveyService(set, cfg.Report.MaxUploadBytes, cfg.Report.CacheEntries, nil, logger)
	app.Conclusions = services.NewConclusionsStore(logger)
	app.HealthService = services.NewHealthService(config.AppVersion, BuildTime, paths, app.SurveyService, logger)
	app.setupRouter()
	return app
}

func TestInitializeServicesTopKFallback(t *testing.T) {
	cfg := config.Default()
	cfg.Report.TopKCategories = 7

	paths := config.GetPathsWithBase(t.TempDir())
	require.NoError(t, paths.EnsureDirectories())

	// Question set without its own category cap
	questions := `{"questions":[{"id":"a1","section":"A","type":"BINARY",` +
		`"label":"¿Trabajas actualmente?","column":"¿Trabajas actualmente?"}]}`
	paths.QuestionsFile = filepath.Join(t.TempDir(), "questions.json")
	require.NoError(t, os.WriteFile(paths.QuestionsFile, []byte(questions), 0o644))

	app := &Application{
		Config: cfg,
		Paths:  paths,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	require.NoError(t, app.initializeServices())

	assert.Equal(t, 7, app.SurveyService.QuestionSet().TopK)
}

func TestRouterHealthEndpoints(t *testing.T) {
	app := newTestApplication(t)

	for _, path := range []string{"/api/health", "/api/health/ready", "/api/health/live", "/api/version"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		app.Router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestRouterSurveyUpload(t *testing.T) {
	app := newTestApplication(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "encuesta.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(sampleCSV))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/surveys", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var info services.UploadInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.NotEmpty(t, info.ID)
	assert.Equal(t, 2, info.Rows)
}

func TestRouterSurveyUploadRejectsWrongContentType(t *testing.T) {
	app := newTestApplication(t)

	req := httptest.NewRequest(http.MethodPost, "/api/surveys", bytes.NewReader([]byte(sampleCSV)))
	req.Header.Set("Content-Type", "text/csv")
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestRouterRejectsMalformedJSONBody(t *testing.T) {
	app := newTestApplication(t)

	req := httptest.NewRequest(http.MethodPut, "/api/surveys/abc/conclusions",
		bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouterSetsRequestID(t *testing.T) {
	app := newTestApplication(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health/live", nil)
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)

	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestRouterUnknownRoute(t *testing.T) {
	app := newTestApplication(t)

	req := httptest.NewRequest(http.MethodGet, "/api/nonsense", nil)
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

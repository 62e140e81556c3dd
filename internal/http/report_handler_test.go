package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	pgvector "github.com/pgvector/pgvector-go"
	"go.uber.org/zap"

	"medrec-llm/internal/domain"
	"medrec-llm/internal/llm"
	"medrec-llm/internal/service"
)

type mockReportRepo struct {
	reports map[string]domain.Report
}

func newMockReportRepo() *mockReportRepo {
	return &mockReportRepo{reports: make(map[string]domain.Report)}
}

func (m *mockReportRepo) Create(_ context.Context, report domain.Report) error {
	m.reports[report.ID] = report
	return nil
}

func (m *mockReportRepo) GetByID(_ context.Context, id string) (domain.Report, error) {
	report, ok := m.reports[id]
	if !ok {
		return domain.Report{}, pgx.ErrNoRows
	}
	return report, nil
}

func (m *mockReportRepo) ListByPatient(_ context.Context, patientID string) ([]domain.Report, error) {
	var out []domain.Report
	for _, r := range m.reports {
		if r.PatientID == patientID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockReportRepo) SearchSimilar(_ context.Context, _ string, _ pgvector.Vector, _ int) ([]domain.Report, error) {
	return nil, nil
}

type mockObservationRepo struct {
	batches [][]domain.BiomarkerObservation
}

func (m *mockObservationRepo) CreateBatch(_ context.Context, observations []domain.BiomarkerObservation) error {
	m.batches = append(m.batches, observations)
	return nil
}

func (m *mockObservationRepo) HistoryByType(_ context.Context, _, _ string, _ int) ([]domain.BiomarkerObservation, error) {
	return nil, nil
}

func (m *mockObservationRepo) LatestByType(_ context.Context, _ string) (map[string]domain.BiomarkerObservation, error) {
	return map[string]domain.BiomarkerObservation{}, nil
}

func (m *mockObservationRepo) DistinctTypes(_ context.Context, _ string) ([]string, error) {
	return nil, nil
}

type mockAccessRepo struct {
	grants []domain.AccessGrant
}

func (m *mockAccessRepo) Create(_ context.Context, grant domain.AccessGrant) error {
	m.grants = append(m.grants, grant)
	return nil
}

func (m *mockAccessRepo) Revoke(_ context.Context, patientID, doctorID string, revokedAt time.Time) error {
	for i, g := range m.grants {
		if g.PatientID == patientID && g.DoctorID == doctorID && g.RevokedAt == nil {
			m.grants[i].RevokedAt = &revokedAt
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (m *mockAccessRepo) ListByPatient(_ context.Context, patientID string) ([]domain.AccessGrant, error) {
	var out []domain.AccessGrant
	for _, g := range m.grants {
		if g.PatientID == patientID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (m *mockAccessRepo) HasAccess(_ context.Context, patientID, doctorID string) (bool, error) {
	for _, g := range m.grants {
		if g.PatientID == patientID && g.DoctorID == doctorID && g.RevokedAt == nil {
			return true, nil
		}
	}
	return false, nil
}

type reportTestEnv struct {
	router  *gin.Engine
	jwtSvc  *service.JWTService
	reports *mockReportRepo
	obs     *mockObservationRepo
	access  *mockAccessRepo
}

func setupReportEnv(t *testing.T) *reportTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	reports := newMockReportRepo()
	obs := &mockObservationRepo{}
	access := &mockAccessRepo{}
	users := newMockUserRepo()

	mock := &llm.MockClient{Response: "All values look stable.", Embedding: []float32{0.1, 0.2, 0.3}}
	reportSvc := service.NewReportService(mock, mock, reports, obs, zap.NewNop())
	accessSvc := service.NewAccessService(access, users, zap.NewNop())

	jwtSvc := newTestJWTService()
	h := NewReportHandler(zap.NewNop(), reportSvc, accessSvc)

	r := gin.New()
	auth := r.Group("/", JWTAuthMiddleware(jwtSvc))
	auth.POST("/reports", h.CreateReport)
	auth.GET("/reports", h.ListReports)
	auth.GET("/reports/:id", h.GetReport)

	return &reportTestEnv{router: r, jwtSvc: jwtSvc, reports: reports, obs: obs, access: access}
}

func (e *reportTestEnv) tokenFor(t *testing.T, userID, role string) string {
	t.Helper()
	pair, err := e.jwtSvc.GeneratePair(domain.User{ID: userID, Email: userID + "@example.com", Role: role})
	if err != nil {
		t.Fatalf("generate pair: %v", err)
	}
	return pair.AccessToken
}

func performRequestWithToken(r http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	var payload []byte
	if body != nil {
		payload, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestReportHandlerCreateReport(t *testing.T) {
	env := setupReportEnv(t)
	token := env.tokenFor(t, "patient-1", domain.RolePatient)

	rec := performRequestWithToken(env.router, http.MethodPost, "/reports", token, map[string]string{
		"category": "BLOOD_TEST",
		"findings": `{"glucose": 95, "hba1c": 5.4}`,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(env.reports.reports) != 1 {
		t.Fatalf("expected report persisted, got %d", len(env.reports.reports))
	}
	if len(env.obs.batches) != 1 {
		t.Fatalf("expected observations persisted, got %d batches", len(env.obs.batches))
	}
}

func TestReportHandlerCreateReport_InvalidCategory(t *testing.T) {
	env := setupReportEnv(t)
	token := env.tokenFor(t, "patient-1", domain.RolePatient)

	rec := performRequestWithToken(env.router, http.MethodPost, "/reports", token, map[string]string{
		"category": "XRAY",
		"findings": "whatever",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestReportHandlerListReports_DeniesStranger(t *testing.T) {
	env := setupReportEnv(t)
	doctorToken := env.tokenFor(t, "doc-1", domain.RoleDoctor)

	rec := performRequestWithToken(env.router, http.MethodGet, "/reports?patient_id=patient-1", doctorToken, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", rec.Code)
	}
}

func TestReportHandlerListReports_AllowsGrantedDoctor(t *testing.T) {
	env := setupReportEnv(t)
	env.access.grants = append(env.access.grants, domain.AccessGrant{
		ID:        "grant-1",
		PatientID: "patient-1",
		DoctorID:  "doc-1",
		CreatedAt: time.Now().UTC(),
	})
	doctorToken := env.tokenFor(t, "doc-1", domain.RoleDoctor)

	rec := performRequestWithToken(env.router, http.MethodGet, "/reports?patient_id=patient-1", doctorToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestReportHandlerGetReport_NotFound(t *testing.T) {
	env := setupReportEnv(t)
	token := env.tokenFor(t, "patient-1", domain.RolePatient)

	rec := performRequestWithToken(env.router, http.MethodGet, "/reports/nope", token, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}

func TestReportHandlerGetReport_DeniesForeignReport(t *testing.T) {
	env := setupReportEnv(t)
	env.reports.reports["rep-1"] = domain.Report{
		ID:        "rep-1",
		PatientID: "patient-1",
		Category:  domain.CategoryBloodTest,
		Findings:  "x",
	}
	strangerToken := env.tokenFor(t, "patient-2", domain.RolePatient)

	rec := performRequestWithToken(env.router, http.MethodGet, "/reports/rep-1", strangerToken, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", rec.Code)
	}
}

package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"storewatch/internal/logger"
	"storewatch/internal/models"
	"storewatch/internal/service"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastSignUpUsername string
	lastSignUpPassword string
	lastGenUsername    string
	lastGenPassword    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(username, password string) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockReports struct {
	prepareID  string
	prepareErr error

	generateErr error

	result    *service.ReportResult
	resultErr error

	prepareCalls  int
	generateCalls int
	lastGenerated string
	lastAsOf      time.Time
	lastResultID  string
}

func (m *mockReports) Prepare(ctx context.Context) (string, error) {
	m.prepareCalls++
	return m.prepareID, m.prepareErr
}
func (m *mockReports) Generate(ctx context.Context, reportID string, asOf time.Time) error {
	m.generateCalls++
	m.lastGenerated = reportID
	m.lastAsOf = asOf
	return m.generateErr
}
func (m *mockReports) Result(ctx context.Context, reportID string) (*service.ReportResult, error) {
	m.lastResultID = reportID
	return m.result, m.resultErr
}

type mockCatalog struct {
	stores    []models.Store
	err       error
	lastLimit int
}

func (m *mockCatalog) List(ctx context.Context, limit int) ([]models.Store, error) {
	m.lastLimit = limit
	return m.stores, m.err
}

// ---- Router helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(s, logger.Nop())
	return h.InitRoutes()
}

// newReportTestService wires mocks plus a real dispatcher so the
// trigger path can enqueue.
func newReportTestService(reports *mockReports, catalog *mockCatalog, auth *mockAuth) *service.Service {
	s := &service.Service{
		Reports:       reports,
		StoreCatalog:  catalog,
		Authorization: auth,
		Dispatcher:    service.NewReportDispatcher(reports, logger.Nop(), service.Config{}),
	}
	return s
}

package handlers

import (
	"encoding/json"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"storewatch/internal/service"
)

func dialReportWS(t *testing.T, reports *mockReports, reportID string) *websocket.Conn {
	t.Helper()

	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandler(newReportTestService(reports, &mockCatalog{}, &mockAuth{}), nil)
	r.GET("/ws/reports/:id", h.wsReportStatus)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	u, _ := url.Parse(srv.URL)
	u.Scheme = "ws"
	u.Path = "/ws/reports/" + reportID

	dialer := websocket.Dialer{HandshakeTimeout: 2 * time.Second}
	conn, _, err := dialer.Dial(u.String(), nil)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

type wsTestEnvelope struct {
	Type  string          `json:"type"`
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
}

func TestWebSocket_ReportStatus_TerminalClosesStream(t *testing.T) {
	reports := &mockReports{result: &service.ReportResult{ReportID: "run-1", State: service.ResultReady}}
	conn := dialReportWS(t, reports, "run-1")

	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	var env wsTestEnvelope
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read status: %v", err)
	}
	if env.Type != "report_status" {
		t.Fatalf("bad envelope: %+v", env)
	}
	var payload struct {
		ReportID string `json:"report_id"`
		Status   string `json:"status"`
	}
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.ReportID != "run-1" || payload.Status != service.ResultReady {
		t.Fatalf("unexpected payload: %+v", payload)
	}

	// Terminal status: the server closes after the first frame.
	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	var raw json.RawMessage
	if err := conn.ReadJSON(&raw); err == nil {
		t.Fatalf("expected closed stream, got message: %s", string(raw))
	}
}

func TestWebSocket_ReportStatus_UnknownReport(t *testing.T) {
	reports := &mockReports{resultErr: service.ErrReportNotFound}
	conn := dialReportWS(t, reports, "missing")

	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	var env wsTestEnvelope
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read error frame: %v", err)
	}
	if env.Type != "error" || env.Error != "report not found" {
		t.Fatalf("bad envelope: %+v", env)
	}
}

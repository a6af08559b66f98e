package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"costedge/backend/internal/approval"
	"costedge/backend/internal/dto"
	"costedge/backend/internal/ingest"
	"costedge/backend/internal/service"
	pkgerrors "costedge/backend/pkg/errors"
	"costedge/backend/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
	UseJSONFieldNames()
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock BomChangeService ──

type mockBomChangeService struct {
	result       *dto.BomChangeResponse
	list         []dto.BomChangeResponse
	batchResult  *dto.BomChangeBatchResponse
	importResult *dto.BomChangeImportResponse
	err          error

	gotID       uint64
	gotFilename string
	gotItems    int
}

func (m *mockBomChangeService) Create(_ context.Context, _ *dto.BomChangeRequest) (*dto.BomChangeResponse, error) {
	return m.result, m.err
}
func (m *mockBomChangeService) BatchCreate(_ context.Context, items []dto.BomChangeRequest) (*dto.BomChangeBatchResponse, error) {
	m.gotItems = len(items)
	return m.batchResult, m.err
}
func (m *mockBomChangeService) ImportSpreadsheet(_ context.Context, filename string, r io.ReadSeeker) (*dto.BomChangeImportResponse, error) {
	m.gotFilename = filename
	return m.importResult, m.err
}
func (m *mockBomChangeService) GetByID(_ context.Context, id uint64) (*dto.BomChangeResponse, error) {
	m.gotID = id
	return m.result, m.err
}
func (m *mockBomChangeService) GetByPartNumber(_ context.Context, _ string) (*dto.BomChangeResponse, error) {
	return m.result, m.err
}
func (m *mockBomChangeService) List(_ context.Context) ([]dto.BomChangeResponse, error) {
	return m.list, m.err
}
func (m *mockBomChangeService) Update(_ context.Context, id uint64, _ *dto.BomChangeRequest) (*dto.BomChangeResponse, error) {
	m.gotID = id
	return m.result, m.err
}
func (m *mockBomChangeService) Delete(_ context.Context, id uint64) error {
	m.gotID = id
	return m.err
}
func (m *mockBomChangeService) ListByStatus(_ context.Context, _ string) ([]dto.BomChangeResponse, error) {
	return m.list, m.err
}
func (m *mockBomChangeService) ListByDepartment(_ context.Context, _ string) ([]dto.BomChangeResponse, error) {
	return m.list, m.err
}
func (m *mockBomChangeService) ListByModel(_ context.Context, _ string) ([]dto.BomChangeResponse, error) {
	return m.list, m.err
}
func (m *mockBomChangeService) ListBySupplier(_ context.Context, _ string) ([]dto.BomChangeResponse, error) {
	return m.list, m.err
}
func (m *mockBomChangeService) ListByChangeType(_ context.Context, _ string) ([]dto.BomChangeResponse, error) {
	return m.list, m.err
}
func (m *mockBomChangeService) ListByModelAndStatus(_ context.Context, _, _ string) ([]dto.BomChangeResponse, error) {
	return m.list, m.err
}
func (m *mockBomChangeService) ListBySupplierAndChangeType(_ context.Context, _, _ string) ([]dto.BomChangeResponse, error) {
	return m.list, m.err
}
func (m *mockBomChangeService) ListByDateRange(_ context.Context, _ *dto.DateRangeQuery) ([]dto.BomChangeResponse, error) {
	return m.list, m.err
}
func (m *mockBomChangeService) Search(_ context.Context, _ string) ([]dto.BomChangeResponse, error) {
	return m.list, m.err
}

// ── Mock ReportService ──

type mockReportService struct {
	summary map[string]dto.ImpactSummary
	list    []dto.BomChangeResponse
	err     error
}

func (m *mockReportService) SummaryByModel(_ context.Context) (map[string]dto.ImpactSummary, error) {
	return m.summary, m.err
}
func (m *mockReportService) SummaryByChangeType(_ context.Context) (map[string]dto.ImpactSummary, error) {
	return m.summary, m.err
}
func (m *mockReportService) HighImpact(_ context.Context, _ string) ([]dto.BomChangeResponse, error) {
	return m.list, m.err
}
func (m *mockReportService) CostSavings(_ context.Context, _ string) ([]dto.BomChangeResponse, error) {
	return m.list, m.err
}

// ── Mock ExportService ──

type mockExportService struct {
	buf      *bytes.Buffer
	filename string
	err      error
}

func (m *mockExportService) ExportBomChanges(_ context.Context) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}

// ── Mock MilestoneService ──

type mockMilestoneService struct {
	result     *dto.MilestoneResponse
	list       []dto.MilestoneResponse
	feed       string
	err        error
	gotCaller  string
	gotProject int
	gotStatus  string
}

func (m *mockMilestoneService) Create(_ context.Context, _ *dto.MilestoneRequest, callerID string) (*dto.MilestoneResponse, error) {
	m.gotCaller = callerID
	return m.result, m.err
}
func (m *mockMilestoneService) GetByID(_ context.Context, _ uint64) (*dto.MilestoneResponse, error) {
	return m.result, m.err
}
func (m *mockMilestoneService) List(_ context.Context) ([]dto.MilestoneResponse, error) {
	return m.list, m.err
}
func (m *mockMilestoneService) Update(_ context.Context, _ uint64, _ *dto.MilestoneRequest, callerID string) (*dto.MilestoneResponse, error) {
	m.gotCaller = callerID
	return m.result, m.err
}
func (m *mockMilestoneService) Delete(_ context.Context, _ uint64) error {
	return m.err
}
func (m *mockMilestoneService) ListByProjectID(_ context.Context, projectID int) ([]dto.MilestoneResponse, error) {
	m.gotProject = projectID
	return m.list, m.err
}
func (m *mockMilestoneService) ListByProjectName(_ context.Context, _ string) ([]dto.MilestoneResponse, error) {
	return m.list, m.err
}
func (m *mockMilestoneService) ListByMilestone(_ context.Context, _ string) ([]dto.MilestoneResponse, error) {
	return m.list, m.err
}
func (m *mockMilestoneService) ListByApprovalStatus(_ context.Context, _ string) ([]dto.MilestoneResponse, error) {
	return m.list, m.err
}
func (m *mockMilestoneService) SubmitApproval(_ context.Context, _ uint64, _ *dto.ApprovalRequest, callerID string) (*dto.MilestoneResponse, error) {
	m.gotCaller = callerID
	return m.result, m.err
}
func (m *mockMilestoneService) Calendar(_ context.Context, status string) (string, error) {
	m.gotStatus = status
	return m.feed, m.err
}

// ── Mock ImportCostService ──

type mockImportCostService struct {
	result      *dto.ImportCostResponse
	list        []dto.ImportCostResponse
	batchResult *dto.ImportCostBatchResponse
	err         error
}

func (m *mockImportCostService) Create(_ context.Context, _ *dto.ImportCostRequest) (*dto.ImportCostResponse, error) {
	return m.result, m.err
}
func (m *mockImportCostService) BatchCreate(_ context.Context, _ []dto.ImportCostRequest) (*dto.ImportCostBatchResponse, error) {
	return m.batchResult, m.err
}
func (m *mockImportCostService) GetByID(_ context.Context, _ uint64) (*dto.ImportCostResponse, error) {
	return m.result, m.err
}
func (m *mockImportCostService) List(_ context.Context) ([]dto.ImportCostResponse, error) {
	return m.list, m.err
}
func (m *mockImportCostService) ListBySupplier(_ context.Context, _ string) ([]dto.ImportCostResponse, error) {
	return m.list, m.err
}
func (m *mockImportCostService) Update(_ context.Context, _ uint64, _ *dto.ImportCostRequest) (*dto.ImportCostResponse, error) {
	return m.result, m.err
}
func (m *mockImportCostService) Delete(_ context.Context, _ uint64) error {
	return m.err
}

// ── Mock Pinger ──

type mockPinger struct{ err error }

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

func serve(method, pattern, target string, body io.Reader, handle gin.HandlerFunc, mw ...gin.HandlerFunc) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.Handle(method, pattern, append(mw, handle)...)
	r.ServeHTTP(w, req)
	return w
}

func withUser(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Next()
	}
}

func multipartFile(t *testing.T, field, filename string, content []byte) (io.Reader, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	fw, err := mw.CreateFormFile(field, filename)
	if err != nil {
		t.Fatal(err)
	}
	fw.Write(content)
	mw.Close()
	return body, mw.FormDataContentType()
}

func validBomChangeBody() map[string]interface{} {
	return map[string]interface{}{
		"model":          "X100",
		"part_name":      "Bracket",
		"part_number":    "BR-001",
		"old_cost":       "10.00",
		"new_cost":       "12.00",
		"supplier":       "Acme",
		"effective_date": "2024-03-01",
		"change_type":    "ADDITION",
		"status":         "PENDING",
		"department":     "Purchasing",
	}
}

func newBomHandler(bom *mockBomChangeService) *BomChangeHandler {
	return NewBomChangeHandler(bom, &mockReportService{}, &mockExportService{})
}

// ═══════════════════════════════════════════════════════════
// BomChangeHandler Tests
// ═══════════════════════════════════════════════════════════

func TestBomChangeHandler_Create_Success(t *testing.T) {
	h := newBomHandler(&mockBomChangeService{result: &dto.BomChangeResponse{ID: 1, PartNumber: "BR-001"}})

	w := serve("POST", "/bom-changes", "/bom-changes", jsonBody(validBomChangeBody()), h.Create)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if resp := parseResponse(w); resp.Code != 0 {
		t.Errorf("expected code 0, got %d", resp.Code)
	}
}

func TestBomChangeHandler_Create_BadJSON(t *testing.T) {
	h := newBomHandler(&mockBomChangeService{})

	w := serve("POST", "/bom-changes", "/bom-changes", bytes.NewReader([]byte("{oops")), h.Create)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestBomChangeHandler_Create_ValidationNamesJSONFields(t *testing.T) {
	h := newBomHandler(&mockBomChangeService{})
	body := validBomChangeBody()
	delete(body, "part_name")
	body["change_type"] = "SIDEWAYS"

	w := serve("POST", "/bom-changes", "/bom-changes", jsonBody(body), h.Create)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	details, ok := parseResponse(w).Details.(map[string]interface{})
	if !ok {
		t.Fatalf("expected field details, got %s", w.Body.String())
	}
	for _, field := range []string{"part_name", "change_type"} {
		if _, ok := details[field]; !ok {
			t.Errorf("missing detail for %s: %v", field, details)
		}
	}
}

func TestBomChangeHandler_Get_InvalidID(t *testing.T) {
	h := newBomHandler(&mockBomChangeService{})

	w := serve("GET", "/bom-changes/:id", "/bom-changes/abc", nil, h.Get)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestBomChangeHandler_Get_NotFound(t *testing.T) {
	mock := &mockBomChangeService{err: service.ErrBomChangeNotFound}
	h := newBomHandler(mock)

	w := serve("GET", "/bom-changes/:id", "/bom-changes/42", nil, h.Get)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != codeBomChangeNotFound {
		t.Errorf("expected code %d, got %d", codeBomChangeNotFound, resp.Code)
	}
	if mock.gotID != 42 {
		t.Errorf("expected id 42, got %d", mock.gotID)
	}
}

func TestBomChangeHandler_Update_PathIDWins(t *testing.T) {
	mock := &mockBomChangeService{result: &dto.BomChangeResponse{ID: 9}}
	h := newBomHandler(mock)
	body := validBomChangeBody()
	body["id"] = 1

	w := serve("PUT", "/bom-changes/:id", "/bom-changes/9", jsonBody(body), h.Update)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if mock.gotID != 9 {
		t.Errorf("expected path id 9, got %d", mock.gotID)
	}
}

func TestBomChangeHandler_BatchCreate_NotAnArray(t *testing.T) {
	h := newBomHandler(&mockBomChangeService{})

	w := serve("POST", "/bom-changes/batch", "/bom-changes/batch", jsonBody(validBomChangeBody()), h.BatchCreate)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestBomChangeHandler_BatchCreate_Empty(t *testing.T) {
	h := newBomHandler(&mockBomChangeService{err: service.ErrEmptyBatch})

	w := serve("POST", "/bom-changes/batch", "/bom-changes/batch", bytes.NewReader([]byte("[]")), h.BatchCreate)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != codeNoUsableRecords {
		t.Errorf("expected code %d, got %d", codeNoUsableRecords, resp.Code)
	}
}

func TestBomChangeHandler_BatchCreate_PassesInvalidItemsThrough(t *testing.T) {
	mock := &mockBomChangeService{batchResult: &dto.BomChangeBatchResponse{Total: 2, Success: 1, Failed: 1}}
	h := newBomHandler(mock)
	items := []interface{}{validBomChangeBody(), map[string]interface{}{"model": "X"}}

	w := serve("POST", "/bom-changes/batch", "/bom-changes/batch", jsonBody(items), h.BatchCreate)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if mock.gotItems != 2 {
		t.Errorf("items are validated by the service, handler passed %d", mock.gotItems)
	}
}

func TestBomChangeHandler_Import_MissingFile(t *testing.T) {
	h := newBomHandler(&mockBomChangeService{})

	w := serve("POST", "/bom-changes/import", "/bom-changes/import", nil, h.Import)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestBomChangeHandler_Import_UnsupportedFormat(t *testing.T) {
	mock := &mockBomChangeService{}
	h := newBomHandler(mock)
	body, contentType := multipartFile(t, "file", "changes.csv", []byte("a,b,c"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/bom-changes/import", body)
	req.Header.Set("Content-Type", contentType)
	r := gin.New()
	r.POST("/bom-changes/import", h.Import)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnsupportedMediaType {
		t.Errorf("expected 415, got %d", w.Code)
	}
	if mock.gotFilename != "" {
		t.Error("unsupported files must not reach the service")
	}
}

func TestBomChangeHandler_Import_NoUsableRecordsKeepsRowErrors(t *testing.T) {
	mock := &mockBomChangeService{
		importResult: &dto.BomChangeImportResponse{
			Total:  1,
			Failed: 1,
			Errors: []dto.ImportRowError{{Row: 2, Reason: "model is required"}},
		},
		err: ingest.ErrNoUsableRecords,
	}
	h := newBomHandler(mock)
	body, contentType := multipartFile(t, "file", "changes.xlsx", []byte("PK"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/bom-changes/import", body)
	req.Header.Set("Content-Type", contentType)
	r := gin.New()
	r.POST("/bom-changes/import", h.Import)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != codeNoUsableRecords || resp.Data == nil {
		t.Errorf("expected code %d with row errors, got %s", codeNoUsableRecords, w.Body.String())
	}
	if mock.gotFilename != "changes.xlsx" {
		t.Errorf("filename = %q", mock.gotFilename)
	}
}

func TestBomChangeHandler_Import_UnreadableWorkbook(t *testing.T) {
	h := newBomHandler(&mockBomChangeService{err: ingest.ErrUnreadableWorkbook})
	body, contentType := multipartFile(t, "file", "changes.xlsx", []byte("garbage"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/bom-changes/import", body)
	req.Header.Set("Content-Type", contentType)
	r := gin.New()
	r.POST("/bom-changes/import", h.Import)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d", w.Code)
	}
}

func TestBomChangeHandler_ListByStatus_Invalid(t *testing.T) {
	ve := pkgerrors.NewValidationError()
	ve.Add("status", "must be one of PENDING, APPROVED, REJECTED, COMPLETED")
	h := newBomHandler(&mockBomChangeService{err: ve})

	w := serve("GET", "/bom-changes/status/:status", "/bom-changes/status/DONE", nil, h.ListByStatus)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	details, _ := parseResponse(w).Details.(map[string]interface{})
	if details["status"] == nil {
		t.Errorf("expected status detail, got %s", w.Body.String())
	}
}

func TestBomChangeHandler_ListByDateRange_MissingParams(t *testing.T) {
	h := newBomHandler(&mockBomChangeService{})

	w := serve("GET", "/bom-changes/date-range", "/bom-changes/date-range?start=2024-01-01", nil, h.ListByDateRange)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestBomChangeHandler_HighImpact(t *testing.T) {
	report := &mockReportService{list: []dto.BomChangeResponse{{ID: 3}}}
	h := NewBomChangeHandler(&mockBomChangeService{}, report, &mockExportService{})

	w := serve("GET", "/bom-changes/high-impact", "/bom-changes/high-impact?threshold=100", nil, h.HighImpact)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestBomChangeHandler_Export(t *testing.T) {
	export := &mockExportService{buf: bytes.NewBufferString("xlsx-bytes"), filename: "bom_changes_20240615.xlsx"}
	h := NewBomChangeHandler(&mockBomChangeService{}, &mockReportService{}, export)

	w := serve("GET", "/bom-changes/export", "/bom-changes/export", nil, h.Export)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Errorf("content type = %s", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); cd != "attachment; filename*=UTF-8''bom_changes_20240615.xlsx" {
		t.Errorf("content disposition = %s", cd)
	}
	if w.Body.String() != "xlsx-bytes" {
		t.Errorf("body = %q", w.Body.String())
	}
}

func TestBomChangeHandler_StorageErrorIs500(t *testing.T) {
	h := newBomHandler(&mockBomChangeService{err: errors.New("connection reset")})

	w := serve("GET", "/bom-changes", "/bom-changes", nil, h.List)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// MilestoneHandler Tests
// ═══════════════════════════════════════════════════════════

func TestMilestoneHandler_SubmitApproval_PassesCaller(t *testing.T) {
	mock := &mockMilestoneService{result: &dto.MilestoneResponse{ID: 1, ApprovalStatus: "Approved"}}
	h := NewMilestoneHandler(mock)

	w := serve("PUT", "/milestones/:id/approval", "/milestones/1/approval",
		jsonBody(dto.ApprovalRequest{ApprovalStatus: "Approved"}), h.SubmitApproval, withUser("manager-7"))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if mock.gotCaller != "manager-7" {
		t.Errorf("caller = %q", mock.gotCaller)
	}
}

func TestMilestoneHandler_SubmitApproval_RejectionReasonRequired(t *testing.T) {
	h := NewMilestoneHandler(&mockMilestoneService{err: approval.ErrRejectionReasonRequired})

	w := serve("PUT", "/milestones/:id/approval", "/milestones/1/approval",
		jsonBody(dto.ApprovalRequest{ApprovalStatus: "Rejected", ApprovedBy: "m"}), h.SubmitApproval)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != codeRejectionReason {
		t.Errorf("expected code %d, got %d", codeRejectionReason, resp.Code)
	}
}

func TestMilestoneHandler_SubmitApproval_MissingStatus(t *testing.T) {
	h := NewMilestoneHandler(&mockMilestoneService{})

	w := serve("PUT", "/milestones/:id/approval", "/milestones/1/approval",
		jsonBody(map[string]string{"approved_by": "m"}), h.SubmitApproval)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestMilestoneHandler_Get_NotFound(t *testing.T) {
	h := NewMilestoneHandler(&mockMilestoneService{err: service.ErrMilestoneNotFound})

	w := serve("GET", "/milestones/:id", "/milestones/5", nil, h.Get)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestMilestoneHandler_ListByProjectID(t *testing.T) {
	mock := &mockMilestoneService{}
	h := NewMilestoneHandler(mock)

	w := serve("GET", "/milestones/project/:projectID", "/milestones/project/12", nil, h.ListByProjectID)
	if w.Code != http.StatusOK || mock.gotProject != 12 {
		t.Errorf("code %d, project %d", w.Code, mock.gotProject)
	}

	w = serve("GET", "/milestones/project/:projectID", "/milestones/project/twelve", nil, h.ListByProjectID)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestMilestoneHandler_Calendar(t *testing.T) {
	mock := &mockMilestoneService{feed: "BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n"}
	h := NewMilestoneHandler(mock)

	w := serve("GET", "/milestones/calendar.ics", "/milestones/calendar.ics?approval_status=Approved", nil, h.Calendar)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != calendarContentType {
		t.Errorf("content type = %s", ct)
	}
	if mock.gotStatus != "Approved" {
		t.Errorf("status filter = %q", mock.gotStatus)
	}
	if w.Body.String() != mock.feed {
		t.Errorf("body = %q", w.Body.String())
	}
}

func TestMilestoneHandler_Calendar_BadStatus(t *testing.T) {
	ve := pkgerrors.NewValidationError()
	ve.Add("approval_status", "must be one of Pending, Approved, Rejected")
	h := NewMilestoneHandler(&mockMilestoneService{err: ve})

	w := serve("GET", "/milestones/calendar.ics", "/milestones/calendar.ics?approval_status=maybe", nil, h.Calendar)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestMilestoneHandler_Create_RejectsDecisionStatus(t *testing.T) {
	h := NewMilestoneHandler(&mockMilestoneService{})
	body := map[string]interface{}{
		"project_id":               1,
		"project_name":             "Falcon",
		"milestone":                "Tooling",
		"planned":                  "10",
		"actual":                   "12",
		"project_quantity":         "1",
		"reason":                   "r",
		"date":                     "2024-01-01",
		"milestone_type":           "Engineering",
		"department":               "R&D",
		"category":                 "Capex",
		"expected_completion_date": "2024-02-01",
		"approval_status":          "Approved",
	}

	w := serve("POST", "/milestones", "/milestones", jsonBody(body), h.Create)

	if w.Code != http.StatusBadRequest {
		t.Errorf("approval verdicts go through the approval endpoint, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ImportCostHandler Tests
// ═══════════════════════════════════════════════════════════

func TestImportCostHandler_Create_DuplicateShipment(t *testing.T) {
	h := NewImportCostHandler(&mockImportCostService{err: service.ErrShipmentIDExists})
	body := map[string]interface{}{
		"shipment_id": "SH-1",
		"date":        "2024-04-02",
		"supplier":    "Oceanic",
		"model":       "X100",
		"part_name":   "Housing",
	}

	w := serve("POST", "/import-costs", "/import-costs", jsonBody(body), h.Create)

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
}

func TestImportCostHandler_Delete_NotFound(t *testing.T) {
	h := NewImportCostHandler(&mockImportCostService{err: service.ErrImportCostNotFound})

	w := serve("DELETE", "/import-costs/:id", "/import-costs/8", nil, h.Delete)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// HealthHandler Tests
// ═══════════════════════════════════════════════════════════

func TestHealthHandler(t *testing.T) {
	w := serve("GET", "/health", "/health", nil, NewHealthHandler(&mockPinger{}).Health)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}

	w = serve("GET", "/health", "/health", nil, NewHealthHandler(&mockPinger{err: errors.New("down")}).Health)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", w.Code)
	}
}

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	catalogdomain "github.com/klinikita/billing/internal/catalog/domain"
	invoicedomain "github.com/klinikita/billing/internal/invoice/domain"
	patientdomain "github.com/klinikita/billing/internal/patient/domain"
	prescriptiondomain "github.com/klinikita/billing/internal/prescription/domain"
)

type fakePatientService struct {
	patients  []patientdomain.Patient
	lastQuery string
}

func (f *fakePatientService) Search(ctx context.Context, query string) ([]patientdomain.Patient, error) {
	_ = ctx
	f.lastQuery = query
	return f.patients, nil
}

type fakeCatalogService struct {
	items []catalogdomain.Item
	err   error
}

func (f *fakeCatalogService) Search(ctx context.Context, query string) ([]catalogdomain.Item, error) {
	_ = ctx
	_ = query
	return f.items, f.err
}

type fakePrescriptionService struct {
	result prescriptiondomain.ClaimResult
	err    error
	calls  int
}

func (f *fakePrescriptionService) ClaimOutstanding(ctx context.Context, patientID snowflake.ID) (prescriptiondomain.ClaimResult, error) {
	_ = ctx
	_ = patientID
	f.calls++
	return f.result, f.err
}

type fakeInvoiceService struct {
	createResp invoicedomain.CreateInvoiceResponse
	createErr  error
	lastReq    invoicedomain.CreateInvoiceRequest
	detail     invoicedomain.Detail
	getErr     error
}

func (f *fakeInvoiceService) CreateInvoice(ctx context.Context, req invoicedomain.CreateInvoiceRequest) (invoicedomain.CreateInvoiceResponse, error) {
	_ = ctx
	f.lastReq = req
	return f.createResp, f.createErr
}

func (f *fakeInvoiceService) GetByID(ctx context.Context, id snowflake.ID) (invoicedomain.Detail, error) {
	_ = ctx
	_ = id
	return f.detail, f.getErr
}

func newTestRouter(srv *Server) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(ErrorHandlingMiddleware())
	srv.engine = router
	srv.RegisterAPIRoutes()
	return router
}

func TestSearchPatientsTrimsQuery(t *testing.T) {
	patientSvc := &fakePatientService{patients: []patientdomain.Patient{{
		ID:       snowflake.ID(100),
		FullName: "Budi Santoso",
		MRNo:     "MR-0001",
	}}}
	router := newTestRouter(&Server{patientSvc: patientSvc})

	req := httptest.NewRequest(http.MethodGet, "/api/patients?q=%20budi%20", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if patientSvc.lastQuery != "budi" {
		t.Fatalf("expected trimmed query %q, got %q", "budi", patientSvc.lastQuery)
	}

	var body struct {
		Data []patientdomain.Patient `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(body.Data) != 1 || body.Data[0].MRNo != "MR-0001" {
		t.Fatalf("unexpected body: %s", resp.Body.String())
	}
}

func TestSearchMasterCatalog(t *testing.T) {
	router := newTestRouter(&Server{catalogSvc: &fakeCatalogService{items: []catalogdomain.Item{
		{Code: "KFA-001", Name: "Paracetamol 500 mg", Price: 2000, Kind: catalogdomain.KindDrug},
		{Code: "54.91", Name: "Paracentesis abdominis", Price: 150000, Kind: catalogdomain.KindProcedureICD9},
	}}})

	req := httptest.NewRequest(http.MethodGet, "/api/master-data?q=para", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}

	var body struct {
		Data []catalogdomain.Item `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(body.Data) != 2 || body.Data[0].Kind != catalogdomain.KindDrug {
		t.Fatalf("unexpected body: %s", resp.Body.String())
	}
}

func TestClaimOutstandingRejectsBadPatientID(t *testing.T) {
	prescriptionSvc := &fakePrescriptionService{}
	router := newTestRouter(&Server{prescriptionSvc: prescriptionSvc})

	req := httptest.NewRequest(http.MethodGet, "/api/prescriptions/outstanding?patient_id=abc", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
	if prescriptionSvc.calls != 0 {
		t.Fatal("expected service not to be called for an invalid id")
	}

	var body errorResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Error.Type != "validation_error" {
		t.Fatalf("expected validation_error, got %q", body.Error.Type)
	}
}

func TestClaimOutstandingNotFoundIsNormal(t *testing.T) {
	router := newTestRouter(&Server{prescriptionSvc: &fakePrescriptionService{
		result: prescriptiondomain.ClaimResult{Found: false},
	}})

	req := httptest.NewRequest(http.MethodGet, "/api/prescriptions/outstanding?patient_id=123456789", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if found, ok := body["found"].(bool); !ok || found {
		t.Fatalf("expected found=false, got %s", resp.Body.String())
	}
}

func TestClaimOutstandingReturnsItems(t *testing.T) {
	router := newTestRouter(&Server{prescriptionSvc: &fakePrescriptionService{
		result: prescriptiondomain.ClaimResult{
			Found:          true,
			PrescriptionID: snowflake.ID(42),
			Items: []prescriptiondomain.ClaimedItem{{
				Code:         "KFA-001",
				Name:         "Paracetamol 500 mg",
				DrugCategory: "generik",
				Kind:         catalogdomain.KindDrug,
				Quantity:     2,
				UnitPrice:    1500,
			}},
		},
	}})

	req := httptest.NewRequest(http.MethodGet, "/api/prescriptions/outstanding?patient_id=123456789", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}

	var body struct {
		Found          bool                             `json:"found"`
		PrescriptionID string                           `json:"prescription_id"`
		Items          []prescriptiondomain.ClaimedItem `json:"items"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !body.Found || body.PrescriptionID != "42" {
		t.Fatalf("unexpected body: %s", resp.Body.String())
	}
	if len(body.Items) != 1 || body.Items[0].UnitPrice != 1500 {
		t.Fatalf("unexpected items: %s", resp.Body.String())
	}
}

func TestCreateInvoiceParsesRequest(t *testing.T) {
	invoiceSvc := &fakeInvoiceService{createResp: invoicedomain.CreateInvoiceResponse{
		InvoiceID: snowflake.ID(7),
		Total:     7500,
	}}
	router := newTestRouter(&Server{invoiceSvc: invoiceSvc})

	payload := `{
		"patient_id": "100",
		"prescription_id": "42",
		"items": [
			{"kind": "drug", "code": "KFA-001", "name": "Paracetamol 500 mg", "price": 2000, "qty": 2},
			{"kind": "icd9", "code": "54.91", "name": "Paracentesis abdominis", "price": 3500, "qty": 1}
		],
		"total_final": 7500,
		"settle_immediately": true,
		"payment_method": "cash"
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/invoices", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	got := invoiceSvc.lastReq
	if got.PatientID != snowflake.ID(100) {
		t.Fatalf("expected patient 100, got %d", got.PatientID)
	}
	if got.PrescriptionID == nil || *got.PrescriptionID != snowflake.ID(42) {
		t.Fatalf("expected prescription 42, got %v", got.PrescriptionID)
	}
	if len(got.Items) != 2 || got.Items[1].Kind != catalogdomain.KindProcedureICD9 {
		t.Fatalf("unexpected items: %+v", got.Items)
	}
	if got.ExpectedTotal != 7500 || !got.SettleImmediately {
		t.Fatalf("unexpected request: %+v", got)
	}

	var body map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["invoice_id"] != "7" {
		t.Fatalf("unexpected body: %s", resp.Body.String())
	}
}

func TestCreateInvoiceMapsDomainErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{"total mismatch", fmt.Errorf("%w: computed 100, caller sent 90", invoicedomain.ErrTotalMismatch), http.StatusBadRequest, "validation_error"},
		{"empty items", invoicedomain.ErrEmptyItems, http.StatusBadRequest, "validation_error"},
		{"prescription gone", invoicedomain.ErrPrescriptionGone, http.StatusConflict, "conflict"},
		{"duplicate payment", invoicedomain.ErrDuplicatePayment, http.StatusConflict, "conflict"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(&Server{invoiceSvc: &fakeInvoiceService{createErr: tt.err}})

			payload := `{"patient_id":"100","items":[{"kind":"drug","code":"A","name":"A","price":100,"qty":1}],"total_final":100}`
			req := httptest.NewRequest(http.MethodPost, "/api/invoices", bytes.NewBufferString(payload))
			req.Header.Set("Content-Type", "application/json")
			resp := httptest.NewRecorder()
			router.ServeHTTP(resp, req)

			if resp.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.wantStatus, resp.Code, resp.Body.String())
			}

			var body errorResponse
			if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if body.Error.Type != tt.wantType {
				t.Fatalf("expected %q, got %q", tt.wantType, body.Error.Type)
			}
		})
	}
}

func TestGetInvoiceNotFound(t *testing.T) {
	router := newTestRouter(&Server{invoiceSvc: &fakeInvoiceService{getErr: invoicedomain.ErrNotFound}})

	req := httptest.NewRequest(http.MethodGet, "/api/invoices/999", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", resp.Code)
	}
}

func TestGetInvoiceReceiptRequiresSettlement(t *testing.T) {
	router := newTestRouter(&Server{invoiceSvc: &fakeInvoiceService{detail: invoicedomain.Detail{
		Invoice: invoicedomain.Invoice{ID: snowflake.ID(7), Status: invoicedomain.InvoiceStatusUnpaid},
	}}})

	req := httptest.NewRequest(http.MethodGet, "/api/invoices/7/receipt", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", resp.Code)
	}

	var body errorResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Error.Code != ErrInvoiceNotSettled.Error() {
		t.Fatalf("expected code %q, got %q", ErrInvoiceNotSettled.Error(), body.Error.Code)
	}
}

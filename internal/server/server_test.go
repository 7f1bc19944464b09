package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/billdesk/internal/config"
	invoicedomain "github.com/smallbiznis/billdesk/internal/invoice/domain"
	"github.com/smallbiznis/billdesk/internal/observability"
	"github.com/smallbiznis/billdesk/internal/ratelimit"
	obsmetrics "github.com/smallbiznis/billdesk/internal/observability/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const testPassword = "s3cret-billing"

type mockInvoiceService struct {
	mock.Mock
}

func (m *mockInvoiceService) Create(ctx context.Context, req invoicedomain.CreateInvoiceRequest) (invoicedomain.InvoiceResult, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(invoicedomain.InvoiceResult), args.Error(1)
}

func (m *mockInvoiceService) Update(ctx context.Context, id string, req invoicedomain.UpdateInvoiceRequest) (invoicedomain.InvoiceResult, error) {
	args := m.Called(ctx, id, req)
	return args.Get(0).(invoicedomain.InvoiceResult), args.Error(1)
}

func (m *mockInvoiceService) Resend(ctx context.Context, id string) (invoicedomain.ResendResult, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(invoicedomain.ResendResult), args.Error(1)
}

func (m *mockInvoiceService) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockInvoiceService) Get(ctx context.Context, id string) (invoicedomain.Invoice, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(invoicedomain.Invoice), args.Error(1)
}

func (m *mockInvoiceService) List(ctx context.Context, req invoicedomain.ListInvoiceRequest) (invoicedomain.ListInvoiceResponse, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(invoicedomain.ListInvoiceResponse), args.Error(1)
}

func (m *mockInvoiceService) UpdateStatus(ctx context.Context, id string, status invoicedomain.InvoiceStatus) (invoicedomain.Invoice, error) {
	args := m.Called(ctx, id, status)
	return args.Get(0).(invoicedomain.Invoice), args.Error(1)
}

func (m *mockInvoiceService) Download(ctx context.Context, id string) (invoicedomain.Artifact, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(invoicedomain.Artifact), args.Error(1)
}

func (m *mockInvoiceService) Preview(ctx context.Context, id string) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func newTestServer(t *testing.T) (*Server, *mockInvoiceService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)

	limitCfg := config.RateLimitConfig{
		LoginRate:   0.1,
		LoginBurst:  5,
		CreateRate:  1,
		CreateBurst: 20,
	}
	limiter := ratelimit.New(ratelimit.NewMemoryBucket(0), ratelimit.NewMemoryLocker(), limitCfg, zap.NewNop())

	svc := &mockInvoiceService{}
	engine := NewEngine(observability.Config{Environment: "test"}, obsmetrics.NewHTTPMetricsWithRegisterer(prometheus.NewRegistry()))
	srv := NewServer(ServerParams{
		Gin:        engine,
		Cfg:        config.Config{Environment: "test", BillingPasswordHash: string(hash)},
		Log:        zap.NewNop(),
		InvoiceSvc: svc,
		Limiter:    limiter,
	})
	return srv, svc
}

func do(srv *Server, method, path, body string, authed bool) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if authed {
		req.Header.Set(HeaderBillingAuth, testPassword)
	}
	w := httptest.NewRecorder()
	srv.Engine().ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorPayload {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Error
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	w := do(srv, http.MethodGet, "/health", "", false)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLogin(t *testing.T) {
	srv, _ := newTestServer(t)

	w := do(srv, http.MethodPost, "/billing/login", `{"password":"`+testPassword+`"}`, false)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(srv, http.MethodPost, "/billing/login", `{"password":"nope"}`, false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(srv, http.MethodPost, "/billing/login", `{}`, false)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginRateLimited(t *testing.T) {
	srv, _ := newTestServer(t)

	var last int
	for i := 0; i < 10; i++ {
		last = do(srv, http.MethodPost, "/billing/login", `{"password":"nope"}`, false).Code
	}
	assert.Equal(t, http.StatusTooManyRequests, last)
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	srv, svc := newTestServer(t)

	w := do(srv, http.MethodGet, "/billing/invoices", "", false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "unauthorized", decodeError(t, w).Type)
	svc.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestCreateInvoice(t *testing.T) {
	srv, svc := newTestServer(t)

	svc.On("Create", mock.Anything, mock.MatchedBy(func(req invoicedomain.CreateInvoiceRequest) bool {
		return req.Client.Name == "Acme" && len(req.Items) == 1 && req.Items[0].Amount == "1000"
	})).Return(invoicedomain.InvoiceResult{
		ID:        "1",
		InvoiceNo: "INV/2024/001",
		Total:     decimal.RequireFromString("1180.00"),
		Currency:  "INR",
		PDFURL:    "https://cdn.test/invoices/INV-2024-001.pdf",
	}, nil)

	body := `{"document_type":"INVOICE","jurisdiction":"DOMESTIC","client":{"name":"Acme"},"items":[{"service_name":"Design","amount":1000}]}`
	w := do(srv, http.MethodPost, "/billing/invoices/create", body, false)
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Data invoicedomain.InvoiceResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "INV/2024/001", resp.Data.InvoiceNo)
	assert.True(t, resp.Data.Total.Equal(decimal.RequireFromString("1180")))
	svc.AssertExpectations(t)
}

func TestCreateInvoiceErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		typ    string
	}{
		{"validation", invoicedomain.NewFieldError("client.email", invoicedomain.ErrInvalidEmail), http.StatusBadRequest, "validation_error"},
		{"render", invoicedomain.ErrRenderFailed, http.StatusBadGateway, "render_failed"},
		{"artifact", invoicedomain.ErrArtifactUploadFailed, http.StatusBadGateway, "artifact_failed"},
		{"alloc", invoicedomain.ErrAllocFailed, http.StatusConflict, "alloc_failed"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv, svc := newTestServer(t)
			svc.On("Create", mock.Anything, mock.Anything).Return(invoicedomain.InvoiceResult{}, tc.err)

			w := do(srv, http.MethodPost, "/billing/invoices/create", `{"client":{"name":"x"}}`, false)
			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, tc.typ, decodeError(t, w).Type)
		})
	}
}

func TestCreateInvoiceMalformedBody(t *testing.T) {
	srv, svc := newTestServer(t)

	w := do(srv, http.MethodPost, "/billing/invoices/create", `{"client":`, false)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestGetInvoice(t *testing.T) {
	srv, svc := newTestServer(t)

	svc.On("Get", mock.Anything, "42").Return(invoicedomain.Invoice{InvoiceNo: "INV/2024/042"}, nil)
	svc.On("Get", mock.Anything, "43").Return(invoicedomain.Invoice{}, invoicedomain.ErrInvoiceNotFound)

	w := do(srv, http.MethodGet, "/billing/invoices/42", "", true)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "INV/2024/042")

	w = do(srv, http.MethodGet, "/billing/invoices/43", "", true)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateInvoiceConflict(t *testing.T) {
	srv, svc := newTestServer(t)

	svc.On("Update", mock.Anything, "7", mock.MatchedBy(func(req invoicedomain.UpdateInvoiceRequest) bool {
		return req.ExpectedVersion == 2
	})).Return(invoicedomain.InvoiceResult{}, invoicedomain.ErrVersionConflict)

	w := do(srv, http.MethodPut, "/billing/invoices/7", `{"expected_version":2,"client":{"name":"Acme"}}`, true)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "conflict", decodeError(t, w).Type)
}

func TestUpdateInvoiceStatus(t *testing.T) {
	srv, svc := newTestServer(t)

	svc.On("UpdateStatus", mock.Anything, "7", invoicedomain.InvoiceStatus("paid")).
		Return(invoicedomain.Invoice{InvoiceNo: "INV/2024/007", Status: invoicedomain.InvoiceStatusPaid}, nil)

	w := do(srv, http.MethodPut, "/billing/invoices/7/status", `{"status":"paid"}`, true)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(srv, http.MethodPut, "/billing/invoices/7/status", `{}`, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteInvoice(t *testing.T) {
	srv, svc := newTestServer(t)
	svc.On("Delete", mock.Anything, "9").Return(nil)

	w := do(srv, http.MethodDelete, "/billing/invoices/9", "", true)
	assert.Equal(t, http.StatusNoContent, w.Code)
	svc.AssertExpectations(t)
}

func TestListInvoices(t *testing.T) {
	srv, svc := newTestServer(t)

	svc.On("List", mock.Anything, mock.MatchedBy(func(req invoicedomain.ListInvoiceRequest) bool {
		return req.Client == "acme" && req.Status == "PAID"
	})).Return(invoicedomain.ListInvoiceResponse{
		Invoices: []invoicedomain.Invoice{{InvoiceNo: "INV/2024/001"}},
	}, nil)

	w := do(srv, http.MethodGet, "/billing/invoices?client=acme&status=PAID", "", true)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "page_info")
	svc.AssertExpectations(t)
}

func TestDownloadAndPreview(t *testing.T) {
	srv, svc := newTestServer(t)

	svc.On("Download", mock.Anything, "5").Return(invoicedomain.Artifact{
		FileName: "INV-2024-005.pdf",
		Content:  []byte("%PDF-1.4"),
	}, nil)
	svc.On("Preview", mock.Anything, "5").Return("<html>ok</html>", nil)

	w := do(srv, http.MethodGet, "/billing/invoices/5/download", "", true)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "INV-2024-005.pdf")

	w = do(srv, http.MethodGet, "/billing/invoices/5/preview", "", true)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "<html>ok</html>", w.Body.String())
}

func TestResendInvoice(t *testing.T) {
	srv, svc := newTestServer(t)

	svc.On("Resend", mock.Anything, "5").Return(invoicedomain.ResendResult{
		InvoiceNo:   "INV/2024/005",
		Regenerated: true,
		Sent:        false,
		Warnings:    []string{"notification: notify_timeout"},
	}, nil)

	w := do(srv, http.MethodPost, "/billing/invoices/5/resend", "", true)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "notify_timeout")
}

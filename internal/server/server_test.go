package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/joseph-ayodele/paystubs/internal/common"
	"github.com/joseph-ayodele/paystubs/internal/core"
	"github.com/joseph-ayodele/paystubs/internal/core/extract"
	"github.com/joseph-ayodele/paystubs/internal/core/ocr"
	"github.com/joseph-ayodele/paystubs/internal/core/patterns"
	"github.com/joseph-ayodele/paystubs/internal/export"
)

const stub = "Employer: Acme Widgets LLC\n" +
	"Gross Pay: $2,375.00\n" +
	"Net Pay: $1,592.06\n" +
	"Pay Period: 01/01/2024 - 01/15/2024\n"

func newTestServer(t *testing.T, opts Options) *Server {
	t.Helper()
	acq := ocr.NewExtractorWithTools(ocr.Config{TempDir: t.TempDir()}, nil, ocr.Tools{})
	proc := core.NewProcessor(nil, acq, extract.NewExtractor(patterns.DefaultLibrary(), nil), nil, core.ProcessorConfig{})
	return New(proc, opts, nil)
}

func do(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func multipartBody(t *testing.T, field string, files map[string]string, order ...string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, name := range order {
		fw, err := mw.CreateFormFile(field, name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(files[name]))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t, Options{})

	rec := do(s, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))

	rec = do(s, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestExtractRawBody(t *testing.T) {
	s := newTestServer(t, Options{})
	req := httptest.NewRequest(http.MethodPost, "/v1/extract", bytes.NewBufferString(stub))
	req.Header.Set(RequestIDHeader, "req-123")

	rec := do(s, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "req-123", rec.Header().Get(RequestIDHeader))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.NoError(t, extract.ValidateJSON(rec.Body.Bytes()))

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.InDelta(t, 2375.0, out["gross_pay"], 1e-9)
	assert.InDelta(t, 1592.06, out["net_pay"], 1e-9)
	assert.Equal(t, "2024-01-01", out["pay_period_start"])
	assert.Equal(t, "semi-monthly", out["pay_frequency"])
}

func TestExtractMultipart(t *testing.T) {
	s := newTestServer(t, Options{})
	body, ct := multipartBody(t, "file", map[string]string{"stub.txt": stub}, "stub.txt")
	req := httptest.NewRequest(http.MethodPost, "/v1/extract?ocr=false", body)
	req.Header.Set("Content-Type", ct)

	rec := do(s, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"name":"Acme Widgets LLC"`)
}

func TestExtractErrors(t *testing.T) {
	tests := []struct {
		name   string
		target string
		body   string
		status int
		code   string
		msg    string
	}{
		{"empty body", "/v1/extract", "", http.StatusBadRequest, common.CodeInvalidInput, "no file provided"},
		{"bad ocr flag", "/v1/extract?ocr=maybe", stub, http.StatusBadRequest, common.CodeInvalidInput, "ocr must be true or false"},
		{"pdf without text", "/v1/extract", "%PDF-1.4\n%stub", http.StatusUnprocessableEntity, common.CodeAcquisition, "unable to extract meaningful data"},
		{"no pay amounts", "/v1/extract", "Employer: Acme Widgets LLC\n", http.StatusUnprocessableEntity, common.CodeValidation, "no gross or net pay found"},
	}
	s := newTestServer(t, Options{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(s, httptest.NewRequest(http.MethodPost, tt.target, bytes.NewBufferString(tt.body)))
			assert.Equal(t, tt.status, rec.Code)
			body := decodeError(t, rec)
			assert.Equal(t, tt.code, body.Code)
			assert.Equal(t, tt.msg, body.Error)
		})
	}
}

func TestExtractUploadTooLarge(t *testing.T) {
	s := newTestServer(t, Options{MaxUploadBytes: 16})
	rec := do(s, httptest.NewRequest(http.MethodPost, "/v1/extract", bytes.NewBufferString(stub)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeError(t, rec).Error, "exceeds 16 bytes")
}

func TestBatchJSON(t *testing.T) {
	s := newTestServer(t, Options{})
	files := map[string]string{"b.txt": stub, "a.pdf": "%PDF-1.4\n%stub"}
	body, ct := multipartBody(t, "files", files, "b.txt", "a.pdf")
	req := httptest.NewRequest(http.MethodPost, "/v1/extract/batch", body)
	req.Header.Set("Content-Type", ct)

	rec := do(s, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var entries []struct {
		Filename string         `json:"filename"`
		Success  bool           `json:"success"`
		Data     map[string]any `json:"data"`
		Error    string         `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "b.txt", entries[0].Filename)
	assert.True(t, entries[0].Success)
	assert.InDelta(t, 2375.0, entries[0].Data["gross_pay"], 1e-9)
	assert.Equal(t, "a.pdf", entries[1].Filename)
	assert.False(t, entries[1].Success)
	assert.NotEmpty(t, entries[1].Error)
}

func TestBatchXLSX(t *testing.T) {
	s := newTestServer(t, Options{})
	body, ct := multipartBody(t, "files", map[string]string{"b.txt": stub}, "b.txt")
	req := httptest.NewRequest(http.MethodPost, "/v1/extract/batch?format=xlsx", body)
	req.Header.Set("Content-Type", ct)

	rec := do(s, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, export.ContentType, rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")), "xlsx is a zip archive")
}

func TestBatchRejects(t *testing.T) {
	s := newTestServer(t, Options{})

	files := map[string]string{}
	var order []string
	for i := 0; i < 11; i++ {
		name := fmt.Sprintf("%02d.txt", i)
		files[name] = stub
		order = append(order, name)
	}
	body, ct := multipartBody(t, "files", files, order...)
	req := httptest.NewRequest(http.MethodPost, "/v1/extract/batch", body)
	req.Header.Set("Content-Type", ct)
	rec := do(s, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, common.CodeInvalidInput, decodeError(t, rec).Code)

	rec = do(s, httptest.NewRequest(http.MethodPost, "/v1/extract/batch", bytes.NewBufferString(stub)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body, ct = multipartBody(t, "files", map[string]string{"b.txt": stub}, "b.txt")
	req = httptest.NewRequest(http.MethodPost, "/v1/extract/batch?format=csv", body)
	req.Header.Set("Content-Type", ct)
	rec = do(s, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeError(t, rec).Error, "format")
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t, Options{RateLimit: 0.001, RateBurst: 1})
	newReq := func() *http.Request {
		return httptest.NewRequest(http.MethodPost, "/v1/extract", bytes.NewBufferString(stub))
	}

	assert.Equal(t, http.StatusOK, do(s, newReq()).Code)
	rec := do(s, newReq())
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, codeRateLimited, decodeError(t, rec).Code)

	spoofed := newReq()
	spoofed.Header.Set("X-Forwarded-For", "10.0.0.9")
	spoofed.Header.Set("X-Real-IP", "10.0.0.10")
	assert.Equal(t, http.StatusTooManyRequests, do(s, spoofed).Code, "forwarding headers from an untrusted peer are ignored")

	other := newReq()
	other.RemoteAddr = "198.51.100.4:5555"
	assert.Equal(t, http.StatusOK, do(s, other).Code, "limits are per client")

	assert.Equal(t, http.StatusOK, do(s, httptest.NewRequest(http.MethodGet, "/healthz", nil)).Code)
}

func TestRateLimitBehindTrustedProxy(t *testing.T) {
	// httptest requests come from 192.0.2.1
	s := newTestServer(t, Options{RateLimit: 0.001, RateBurst: 1, TrustedProxies: []string{"192.0.2.0/24"}})
	fromClient := func(xff string) *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/v1/extract", bytes.NewBufferString(stub))
		req.Header.Set("X-Forwarded-For", xff)
		return req
	}

	assert.Equal(t, http.StatusOK, do(s, fromClient("203.0.113.7")).Code)
	assert.Equal(t, http.StatusTooManyRequests, do(s, fromClient("203.0.113.7")).Code)
	assert.Equal(t, http.StatusOK, do(s, fromClient("203.0.113.8")).Code)
	assert.Equal(t, http.StatusTooManyRequests, do(s, fromClient("6.6.6.6, 203.0.113.8, 192.0.2.50")).Code,
		"the rightmost untrusted hop is the client")
}

func TestClientIP(t *testing.T) {
	s := New(nil, Options{TrustedProxies: []string{"10.0.0.1", "192.0.2.0/24"}}, nil)
	tests := []struct {
		name   string
		remote string
		xff    string
		realIP string
		want   string
	}{
		{"untrusted peer", "198.51.100.4:1234", "1.2.3.4", "5.6.7.8", "198.51.100.4"},
		{"trusted single address", "10.0.0.1:1234", "1.2.3.4", "", "1.2.3.4"},
		{"trusted chain", "192.0.2.9:1234", "1.2.3.4, 203.0.113.7, 192.0.2.50", "", "203.0.113.7"},
		{"all hops trusted", "192.0.2.9:1234", "192.0.2.60, 192.0.2.50", "", "192.0.2.60"},
		{"real ip fallback", "192.0.2.9:1234", "", "203.0.113.9", "203.0.113.9"},
		{"no headers", "192.0.2.9:1234", "", "", "192.0.2.9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			req.RemoteAddr = tt.remote
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}
			assert.Equal(t, tt.want, s.clientIP(req))
		})
	}
}

func TestGRPCHealth(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	g := NewGRPCHealth(nil)
	done := make(chan error, 1)
	go func() { done <- g.Serve(ctx, lis) }()

	conn, err := grpc.NewClient(lis.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer conn.Close()

	resp, err := healthpb.NewHealthClient(conn).Check(context.Background(), &healthpb.HealthCheckRequest{Service: HealthService})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())

	cancel()
	assert.NoError(t, <-done)
}

package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// APIResponse mirrors the service's response envelope for decoding in
// tests without importing the dto package everywhere.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *APIMeta    `json:"meta,omitempty"`
}

// APIError is the error half of the envelope.
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
	TraceID   string `json:"trace_id,omitempty"`
}

// APIMeta is the pagination half of the envelope.
type APIMeta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// DecodeAPIResponse parses a recorded response body into the envelope.
func DecodeAPIResponse(t *testing.T, body []byte) APIResponse {
	t.Helper()

	var resp APIResponse
	require.NoError(t, json.Unmarshal(body, &resp), "Failed to parse response envelope")
	return resp
}

// DataMap returns the response data as an object, failing when the
// payload is not one.
func (r APIResponse) DataMap(t *testing.T) map[string]interface{} {
	t.Helper()

	m, ok := r.Data.(map[string]interface{})
	require.True(t, ok, "Response data is not an object: %T", r.Data)
	return m
}

// DataSlice returns the response data as a list.
func (r APIResponse) DataSlice(t *testing.T) []interface{} {
	t.Helper()

	s, ok := r.Data.([]interface{})
	require.True(t, ok, "Response data is not a list: %T", r.Data)
	return s
}

// RequireSuccess decodes the recorder body and fails unless the envelope
// reports success with the given status.
func RequireSuccess(t *testing.T, w *httptest.ResponseRecorder, status int) APIResponse {
	t.Helper()

	require.Equal(t, status, w.Code, "body: %s", w.Body.String())
	resp := DecodeAPIResponse(t, w.Body.Bytes())
	require.True(t, resp.Success, "Expected success envelope, got %s", w.Body.String())
	require.Nil(t, resp.Error)
	return resp
}

// RequireError decodes the recorder body and fails unless the envelope
// carries the given status and error code.
func RequireError(t *testing.T, w *httptest.ResponseRecorder, status int, code string) APIResponse {
	t.Helper()

	require.Equal(t, status, w.Code, "body: %s", w.Body.String())
	resp := DecodeAPIResponse(t, w.Body.Bytes())
	require.False(t, resp.Success)
	require.NotNil(t, resp.Error, "Expected error envelope, got %s", w.Body.String())
	require.Equal(t, code, resp.Error.Code)
	return resp
}

// HTTPTestCase drives a single handler invocation through a recorded
// request, without routing or middleware.
type HTTPTestCase struct {
	Name           string
	Method         string
	Path           string
	Body           interface{}
	Headers        map[string]string
	ExpectedStatus int
	// ExpectedErrorCode, when set, asserts the envelope's error code.
	ExpectedErrorCode string
	Setup             func(t *testing.T, tc *TestContext)
	Validate          func(t *testing.T, tc *TestContext)
}

// RunHTTPTestCases runs each case as a subtest against the handler.
func RunHTTPTestCases(t *testing.T, handler gin.HandlerFunc, cases []HTTPTestCase) {
	t.Helper()

	for _, tc := range cases {
		t.Run(tc.Name, func(t *testing.T) {
			RunHTTPTestCase(t, handler, tc)
		})
	}
}

// RunHTTPTestCase builds the request, invokes the handler directly, and
// applies the case's assertions.
func RunHTTPTestCase(t *testing.T, handler gin.HandlerFunc, tc HTTPTestCase) {
	t.Helper()

	method := tc.Method
	if method == "" {
		method = http.MethodGet
	}
	path := tc.Path
	if path == "" {
		path = "/"
	}

	var body io.Reader
	if tc.Body != nil {
		body = JSONReader(t, tc.Body)
	}
	req := httptest.NewRequest(method, path, body)
	if tc.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range tc.Headers {
		req.Header.Set(k, v)
	}

	testCtx := NewTestContextWithRequest(t, req)
	if tc.Setup != nil {
		tc.Setup(t, testCtx)
	}

	handler(testCtx.Context)

	if tc.ExpectedStatus != 0 {
		assert.Equal(t, tc.ExpectedStatus, testCtx.Code(),
			"body: %s", testCtx.Recorder.Body.String())
	}
	if tc.ExpectedErrorCode != "" {
		resp := DecodeAPIResponse(t, testCtx.Body())
		require.NotNil(t, resp.Error, "Expected error envelope")
		assert.Equal(t, tc.ExpectedErrorCode, resp.Error.Code)
	}
	if tc.Validate != nil {
		tc.Validate(t, testCtx)
	}
}

// JSONReader marshals v for use as a request body.
func JSONReader(t *testing.T, v interface{}) io.Reader {
	t.Helper()

	data, err := json.Marshal(v)
	require.NoError(t, err, "Failed to marshal request body")
	return bytes.NewReader(data)
}

package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/spreadlabs/spread-engine/internal/common"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad envelope: %v", err)
	}
	return resp
}

// TestErrorStatusMapping checks every helper answers with the status code
// its common.HttpError carries and the message inside the envelope.
func TestErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		write  func(*gin.Context)
		status int
		msg    string
	}{
		{"bad request", func(c *gin.Context) { BadRequest(c, "broken body") }, http.StatusBadRequest, "broken body"},
		{"unprocessable", func(c *gin.Context) { Unprocessable(c, "bad instance") }, http.StatusUnprocessableEntity, "bad instance"},
		{"not found", func(c *gin.Context) { NotFound(c, "missing") }, http.StatusNotFound, "missing"},
		{"internal", func(c *gin.Context) { InternalError(c, "boom") }, http.StatusInternalServerError, "boom"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			tc.write(c)

			if w.Code != tc.status {
				t.Errorf("status = %d, want %d", w.Code, tc.status)
			}
			resp := decode(t, w)
			if resp.Success {
				t.Error("error response marked successful")
			}
			if resp.Error != tc.msg {
				t.Errorf("error message = %q, want %q", resp.Error, tc.msg)
			}
		})
	}
}

func TestErrorDefaultMessage(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	Error(c, common.HTTPErrorNotFound(""))

	if resp := decode(t, w); resp.Error != "Not found" {
		t.Errorf("empty message should fall back to the default, got %q", resp.Error)
	}
}

func TestSuccessEnvelope(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	Success(c, map[string]string{"id": "abc"})

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	resp := decode(t, w)
	if !resp.Success || resp.Error != "" {
		t.Errorf("unexpected envelope: %+v", resp)
	}
}

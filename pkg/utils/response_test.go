package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusCreated, map[string]int{"id": 7})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"id": 7}`, rec.Body.String())
}

func TestError(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, http.StatusBadRequest, "amount must be positive")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "amount must be positive\n", rec.Body.String())
}

func TestAttachment(t *testing.T) {
	rec := httptest.NewRecorder()
	Attachment(rec, "application/pdf", "BILL-000001.pdf", []byte("%PDF-1.3"))

	assert.Equal(t, `attachment; filename="BILL-000001.pdf"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "8", rec.Header().Get("Content-Length"))
	assert.Equal(t, "%PDF-1.3", rec.Body.String())
}

func TestQueryInt(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?limit=25&offset=x", nil)
	assert.Equal(t, 25, QueryInt(r, "limit", 50))
	assert.Equal(t, 0, QueryInt(r, "offset", 0))
	assert.Equal(t, 3, QueryInt(r, "page", 3))
}

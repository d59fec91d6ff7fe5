package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/erp/stockflow/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lineRequest struct {
	UnitType string   `json:"unit_type" binding:"required,unit_type"`
	Notes    string   `json:"notes" binding:"max=5"`
	Items    []string `json:"items" binding:"required,min=1"`
}

func TestSetupValidator(t *testing.T) {
	SetupValidator()

	r := gin.New()
	r.POST("/lines", func(c *gin.Context) {
		var req lineRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})

	send := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/lines", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	t.Run("accepts known units", func(t *testing.T) {
		assert.Equal(t, http.StatusNoContent, send(`{"unit_type":"kg","items":["a"]}`).Code)
		assert.Equal(t, http.StatusNoContent, send(`{"unit_type":"bag","items":["a"]}`).Code)
	})

	t.Run("reports fields by json name", func(t *testing.T) {
		w := send(`{"unit_type":"ton","notes":"far too long","items":[]}`)
		require.Equal(t, http.StatusBadRequest, w.Code)

		body := w.Body.String()
		assert.Contains(t, body, dto.ErrCodeValidation)
		assert.Contains(t, body, `"field":"unit_type"`)
		assert.Contains(t, body, "Must be one of: kg bag")
		assert.Contains(t, body, `"field":"notes"`)
		assert.Contains(t, body, `"field":"items"`)
	})
}

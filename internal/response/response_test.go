package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geoguard-backend/internal/apperror"
)

func TestError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	testCases := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   ErrorBody
	}{
		{
			name:       "app error",
			err:        apperror.ErrWorkerNotFound,
			wantStatus: http.StatusNotFound,
			wantBody:   ErrorBody{Error: "Worker not found", Code: apperror.CodeNotFound},
		},
		{
			name:       "plain error",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   ErrorBody{Error: "An unexpected error occurred", Code: apperror.CodeInternal},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			Abort(c, tc.err)

			assert.True(t, c.IsAborted())
			assert.Equal(t, tc.wantStatus, w.Code)
			var body ErrorBody
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tc.wantBody, body)
		})
	}
}

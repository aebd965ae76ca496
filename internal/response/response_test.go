package response

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/weiwangfds/keepsake/internal/errors"
)

func newContext(lang string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	if lang != "" {
		c.Request.Header.Set("Accept-Language", lang)
	}
	c.Set("request_id", "req-1")
	return c, w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) Response {
	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestSuccessWithKey(t *testing.T) {
	now = func() time.Time { return time.UnixMilli(1700000000123) }
	t.Cleanup(func() { now = time.Now })

	c, w := newContext("")
	SuccessWithKey(c, "note_added", gin.H{"id": "n1"})

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.Equal(t, 0, resp.Code)
	assert.Equal(t, "Love note added!", resp.Message)
	assert.Equal(t, "req-1", resp.RequestID)
	assert.Equal(t, int64(1700000000123), resp.Timestamp)
}

func TestErrorMapsAppErrors(t *testing.T) {
	t.Run("未找到", func(t *testing.T) {
		c, w := newContext("zh-CN")
		Error(c, apperrors.Newf(apperrors.ErrNoteNotFound, "id %s", "n9"))

		assert.Equal(t, http.StatusNotFound, w.Code)
		resp := decode(t, w)
		assert.Equal(t, int(apperrors.ErrNoteNotFound), resp.Code)
		assert.Equal(t, "情书未找到", resp.Message)
	})

	t.Run("字段缺失", func(t *testing.T) {
		c, w := newContext("")
		Error(c, apperrors.ErrNoteFieldsRequiredError)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Please fill in all fields", decode(t, w).Message)
	})

	t.Run("普通错误不泄露细节", func(t *testing.T) {
		c, w := newContext("")
		Error(c, stderrors.New("connection refused on 10.0.0.3"))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "10.0.0.3")
	})
}

func TestUnauthorizedAborts(t *testing.T) {
	c, w := newContext("")
	Unauthorized(c)
	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

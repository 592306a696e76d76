package response

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func render(e *Err) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(rec)
	ctx.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	RenderErr(ctx, e)

	return rec
}

func TestRenderErr(t *testing.T) {
	rec := render(ErrInternalServerError(errors.New("pq: password authentication failed")))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"status_code":500,"message":"internal server error"}`, rec.Body.String())

	rec = render(ErrConflict(errors.New("ticket is not available")))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"status_code":409,"message":"ticket is not available"}`, rec.Body.String())

	rec = render(ErrNotFound("draw", "ID", "105"))
	assert.JSONEq(t, `{"status_code":404,"message":"draw with ID 105 not found"}`, rec.Body.String())
}

func TestErrUnwrap(t *testing.T) {
	cause := errors.New("cause")
	assert.ErrorIs(t, ErrUnprocessable(cause), cause)
}

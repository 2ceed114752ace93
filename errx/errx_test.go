package errx

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testErrs     = NewRegistry("TEST")
	ErrTestThing = testErrs.Register("THING", TypeExternal, http.StatusBadGateway, "Thing failed")
)

func TestRegistryNew(t *testing.T) {
	assert.Equal(t, Code("TEST_THING"), ErrTestThing)

	err := testErrs.New(ErrTestThing)
	assert.Equal(t, TypeExternal, err.Type)
	assert.Equal(t, http.StatusBadGateway, err.HTTPStatus)
	assert.Equal(t, "[EXTERNAL] TEST_THING: Thing failed", err.Error())

	// instances do not share details
	err.WithDetail("a", 1)
	assert.Nil(t, testErrs.New(ErrTestThing).Details)
}

func TestRegistryUnknownCode(t *testing.T) {
	err := testErrs.New("NOPE")
	assert.Equal(t, Code("UNKNOWN_ERROR"), err.Code)
	assert.Equal(t, http.StatusInternalServerError, err.HTTPStatus)
}

func TestCauseAndMatching(t *testing.T) {
	cause := io.ErrUnexpectedEOF
	err := testErrs.NewWithCause(ErrTestThing, cause)

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, testErrs.New(ErrTestThing))
	assert.True(t, IsCode(err, ErrTestThing))
	assert.True(t, IsType(err, TypeExternal))
	assert.Contains(t, err.Error(), "unexpected EOF")

	wrapped := Wrap(err, "sending reply", TypeInternal)
	assert.True(t, IsCode(wrapped, ErrTestThing))
	assert.True(t, IsType(wrapped, TypeInternal))
	assert.False(t, IsCode(errors.New("plain"), ErrTestThing))
	assert.Nil(t, Wrap(nil, "x", TypeInternal))
}

func TestWrapPlainError(t *testing.T) {
	err := Wrap(errors.New("boom"), "decode", TypeBadRequest)
	assert.Equal(t, Code("BAD_REQUEST_ERROR"), err.Code)
	assert.Equal(t, "boom", errors.Unwrap(err).Error())
}

func TestPrintSortsDetails(t *testing.T) {
	err := testErrs.New(ErrTestThing).WithDetail("b", 2).WithDetail("a", "x")
	assert.Equal(t, "Error: [EXTERNAL] TEST_THING: Thing failed, Details: {a: x, b: 2}, HTTP Status: 502", Print(err))
	assert.Equal(t, "Error: plain", Print(errors.New("plain")))
	assert.Equal(t, "nil", Print(nil))
}

func TestToFiber(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return testErrs.New(ErrTestThing).WithDetail("upstream", "graph").ToFiber(c)
	})
	app.Get("/bare", func(c *fiber.Ctx) error {
		return New("no status", TypeInternal).ToFiber(c)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, `{"code":"TEST_THING","type":"EXTERNAL","message":"Thing failed","details":{"upstream":"graph"}}`, string(body))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/bare", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

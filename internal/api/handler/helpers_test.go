package handler

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/autodealer/showroom/internal/api/middleware"
	"github.com/autodealer/showroom/internal/core/domain"
)

// tokenCodec maps literal tokens "user", "admin" and "super" to principals.
type tokenCodec struct{}

func (tokenCodec) Encode(id string, role domain.Role) (string, error) { return role, nil }

func (tokenCodec) Decode(raw string) (domain.Principal, bool) {
	switch raw {
	case "user":
		return domain.Principal{ID: "u1", Role: domain.RoleUser}, true
	case "admin":
		return domain.Principal{ID: "a1", Role: domain.RoleAdmin}, true
	case "super":
		return domain.Principal{ID: "s1", Role: domain.RoleSuperadmin}, true
	}
	return domain.Principal{}, false
}

type call struct {
	method string
	target string
	body   string
	token  string
}

// do runs h for the request, wrapped in OptionalAuth so handlers see the
// principal when a token is given. Path params are passed as name/value pairs.
func do(t *testing.T, h echo.HandlerFunc, r call, params ...string) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()

	var body io.Reader
	if r.body != "" {
		body = strings.NewReader(r.body)
	}
	req := httptest.NewRequest(r.method, r.target, body)
	if r.body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if r.token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+r.token)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if len(params) > 0 {
		var names, values []string
		for i := 0; i+1 < len(params); i += 2 {
			names = append(names, params[i])
			values = append(values, params[i+1])
		}
		c.SetParamNames(names...)
		c.SetParamValues(values...)
	}
	return rec, middleware.OptionalAuth(tokenCodec{})(h)(c)
}

func httpStatus(err error) int {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	return 0
}

func isValidation(err error) bool {
	var ve *domain.ValidationError
	return errors.As(err, &ve)
}

func testLogger() zerolog.Logger { return zerolog.Nop() }

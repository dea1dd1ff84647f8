package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	dashboard "github.com/saludarte/go-master-dashboard/components/dashboard"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{dashboard.ErrUnknownView, http.StatusNotFound},
		{fmt.Errorf("%w: p1", dashboard.ErrProductNotFound), http.StatusNotFound},
		{&dashboard.ValidationError{Fields: []string{"Name"}}, http.StatusBadRequest},
		{dashboard.ErrNoFile, http.StatusBadRequest},
		{dashboard.ErrMissingCaseID, http.StatusBadRequest},
		{&dashboard.ApplicationError{Path: "/x", Message: "boom"}, http.StatusBadGateway},
		{&dashboard.TransportError{Method: "GET", Path: "/x", Err: context.DeadlineExceeded}, http.StatusServiceUnavailable},
		{errors.New("other"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, StatusFor(tc.err), "%v", tc.err)
	}
}

func TestNewErrorBodyCarriesFields(t *testing.T) {
	res := dashboard.ActionResult{Status: dashboard.ActionFailed}
	body := NewErrorBody(&dashboard.ValidationError{Fields: []string{"Name"}}, &res)
	assert.Equal(t, []string{"Name"}, body.Fields)
	assert.Same(t, &res, body.Result)
}

func TestTargetResolver(t *testing.T) {
	r := TargetResolver{Locales: []string{"es", "en"}}

	target := r.Resolve(RequestValues{SessionHeader: "h", SessionQuery: "q", AcceptLanguage: "en-US,en;q=0.9", User: " u1 "})
	assert.Equal(t, "h", target.Session)
	assert.Equal(t, "en", target.Locale)
	assert.Equal(t, "u1", target.ActorID)
	assert.Equal(t, "u1", target.UserID)

	target = r.Resolve(RequestValues{SessionQuery: "q", LocaleQuery: "es-MX", AcceptLanguage: "en"})
	assert.Equal(t, "q", target.Session)
	assert.Equal(t, "es", target.Locale)

	target = r.Resolve(RequestValues{})
	assert.Equal(t, dashboard.DefaultSession, target.Session)
	assert.Equal(t, "es", target.Locale)
}

func TestTruthy(t *testing.T) {
	for _, v := range []string{"1", "true", "TRUE", "yes", "on", "sí"} {
		assert.True(t, Truthy(v), v)
	}
	for _, v := range []string{"", "0", "false", "no"} {
		assert.False(t, Truthy(v), v)
	}
}

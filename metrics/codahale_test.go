package metrics

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodaHaleHandler(t *testing.T) {
	c := NewCodaHale(Options{Prefix: "storefront."})
	c.IncRebuilds("rebuilt")
	c.SetRegistrations("literal", 3)
	c.MeasureLookup("literal", time.Now())

	mux := http.NewServeMux()
	c.RegisterHandler("/metrics", mux)

	rsp := httptest.NewRecorder()
	mux.ServeHTTP(rsp, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, http.StatusOK, rsp.Code)

	var doc map[string]map[string]any
	require.NoError(t, json.Unmarshal(rsp.Body.Bytes(), &doc))
	assert.Equal(t, 1.0, doc["storefront.routing.rebuilds.rebuilt"]["count"])
	assert.Equal(t, 3.0, doc["storefront.routing.registrations.literal"]["value"])
	assert.Contains(t, doc, "storefront.routing.lookup.literal")
}

func TestCodaHaleRejectsPost(t *testing.T) {
	c := NewCodaHale(Options{})
	rsp := httptest.NewRecorder()
	c.ServeHTTP(rsp, httptest.NewRequest("POST", "/metrics", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rsp.Code)
}

func TestNewByFormat(t *testing.T) {
	assert.IsType(t, &Prometheus{}, New(Options{}))
	assert.IsType(t, &CodaHale{}, New(Options{Format: ParseKind("codahale")}))
	assert.IsType(t, &All{}, New(Options{Format: ParseKind("all")}))
	assert.Equal(t, UnknownKind, ParseKind("graphite"))
}

func TestAllServesBoth(t *testing.T) {
	a := NewAll(Options{})
	a.IncRebuilds("rebuilt")

	mux := http.NewServeMux()
	a.RegisterHandler("/metrics", mux)

	for _, path := range []string{"/metrics", "/metrics/codahale"} {
		rsp := httptest.NewRecorder()
		mux.ServeHTTP(rsp, httptest.NewRequest("GET", path, nil))
		assert.Equal(t, http.StatusOK, rsp.Code, path)
		assert.Contains(t, rsp.Body.String(), "rebuilds", path)
	}
}

package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstrumentHandlerUsesRouteTemplate(t *testing.T) {
	router := mux.NewRouter()
	router.Use(InstrumentHandler)
	router.HandleFunc("/meals/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}).Methods("GET")

	counter := httpRequests.WithLabelValues("GET", "/meals/{id}", "404")
	before := testutil.ToFloat64(counter)

	for _, id := range []string{"a", "b", "c"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/meals/"+id, nil))
	}

	assert.Equal(t, before+3, testutil.ToFloat64(counter))
}

func TestDomainCounters(t *testing.T) {
	added := likes.WithLabelValues("meal", "added")
	dup := likes.WithLabelValues("meal", "duplicate")
	beforeAdded, beforeDup := testutil.ToFloat64(added), testutil.ToFloat64(dup)

	RecordLike("meal", true)
	RecordLike("meal", false)
	RecordLike("meal", false)

	assert.Equal(t, beforeAdded+1, testutil.ToFloat64(added))
	assert.Equal(t, beforeDup+2, testutil.ToFloat64(dup))
}

func TestHandlerExposesRegistry(t *testing.T) {
	RecordPublish("published")

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "hostel_meals_fulfillment_publishes_total"))
}

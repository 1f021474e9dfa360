package database

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/v-i-n-a-y-29/HackVeda/internal/common/config"
)

func newESServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestElasticsearch_PingAndIndexExists(t *testing.T) {
	srv := newESServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/fisheries_biology_collection":
			w.WriteHeader(http.StatusOK)
		case "/":
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	es, err := NewElasticsearch(config.ElasticsearchConfig{URL: srv.URL})
	require.NoError(t, err)
	require.NoError(t, es.Ping())

	ok, err := es.IndexExists(context.Background(), "fisheries_biology_collection")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = es.IndexExists(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedis_Ping(t *testing.T) {
	mr := miniredis.RunT(t)

	rc, err := NewRedis(config.RedisConfig{Address: mr.Addr()})
	require.NoError(t, err)
	defer rc.Close()

	assert.NoError(t, rc.Ping(context.Background()))

	mr.Close()
	assert.Error(t, rc.Ping(context.Background()))
}

func TestPostgres_PingAndClose(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	mock.ExpectPing()
	mock.ExpectClose()

	pc := &PostgresClient{DB: db}
	assert.NoError(t, pc.Ping(context.Background()))
	assert.NoError(t, pc.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

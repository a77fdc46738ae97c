package system

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glasswing-labs/imagedepot/internal/config"
	"github.com/glasswing-labs/imagedepot/internal/store"
	"github.com/glasswing-labs/imagedepot/internal/store/storetest"
)

type fakeObjects struct {
	headErr error
}

func (f *fakeObjects) HeadBucket(context.Context) error { return f.headErr }
func (f *fakeObjects) Bucket() string                   { return "test-bucket" }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.S3.Bucket = "test-bucket"
	cfg.S3.Region = "us-west-2"
	return cfg
}

func serve(t *testing.T, objects ObjectStore, st store.Store, target string) *httptest.ResponseRecorder {
	t.Helper()
	router := chi.NewRouter()
	SetupRoutes(router, objects, st, testConfig(), testLogger())

	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthAllHealthy(t *testing.T) {
	rec := serve(t, &fakeObjects{}, &storetest.Fake{}, "/api/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "lambda_async", resp.ProcessingMode)
	assert.Equal(t, "healthy", resp.Components["s3"].Status)
	assert.Equal(t, "test-bucket", resp.Components["s3"].Bucket)
	assert.Equal(t, "healthy", resp.Components["database"].Status)
	assert.Equal(t, "lambda_managed", resp.Components["rekognition"].Status)
}

func TestHealthDegradedOnS3Failure(t *testing.T) {
	rec := serve(t, &fakeObjects{headErr: fmt.Errorf("forbidden")}, &storetest.Fake{}, "/api/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp.Status)
	assert.Equal(t, "unhealthy", resp.Components["s3"].Status)
	assert.Contains(t, resp.Components["s3"].Message, "forbidden")
}

func TestHealthDegradedOnDatabaseFailure(t *testing.T) {
	st := &storetest.Fake{
		PingFn: func(context.Context) error { return fmt.Errorf("connection refused") },
	}
	rec := serve(t, &fakeObjects{}, st, "/api/health")

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp.Status)
	assert.Equal(t, "unhealthy", resp.Components["database"].Status)
}

func TestHealthWithoutDatabase(t *testing.T) {
	rec := serve(t, &fakeObjects{}, nil, "/api/health")

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "unavailable", resp.Components["database"].Status)
}

func TestInfrastructure(t *testing.T) {
	rec := serve(t, &fakeObjects{}, &storetest.Fake{}, "/api/status/infrastructure")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp InfrastructureResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Overall)
	assert.Equal(t, "healthy", resp.Services["s3"].Status)
	assert.Equal(t, "lambda_managed", resp.Services["lambda"].Status)
}

func TestConfigEndpoint(t *testing.T) {
	rec := serve(t, &fakeObjects{}, &storetest.Fake{}, "/api/config")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ConfigResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "test-bucket", resp.Bucket)
	assert.Equal(t, "us-west-2", resp.Region)
	assert.True(t, resp.DatabaseEnabled)
	assert.True(t, resp.Features["database_storage"])
}

func TestConfigEndpointWithoutDatabase(t *testing.T) {
	rec := serve(t, &fakeObjects{}, nil, "/api/config")

	var resp ConfigResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.DatabaseEnabled)
	assert.False(t, resp.Features["real_time_status"])
	assert.True(t, resp.Features["async_processing"])
}

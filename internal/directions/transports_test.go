package directions

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/watnow/routeloop/internal/model"
)

func validDirectionsResponse() string {
	return `{"routes":[{"geometry":{"type":"LineString","coordinates":[[135.0,35.0],[135.01,35.01]]},"distance":500,"duration":300}]}`
}

func TestDirectClient_AttachesSharedSecretAsQueryParam(t *testing.T) {
	var sawKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawKey = r.URL.Query().Get("key")
		_, _ = w.Write([]byte(validDirectionsResponse()))
	}))
	defer srv.Close()

	client := NewDirectClient(srv.URL, "s3cr3t", time.Second)
	_, err := client.GetDirections(context.Background(), twoWaypoints(), model.ModeWalking)
	require.NoError(t, err)
	assert.Equal(t, "s3cr3t", sawKey)
}

func TestProxiedClient_AttachesBearerHeader(t *testing.T) {
	var sawAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(validDirectionsResponse()))
	}))
	defer srv.Close()

	client := NewProxiedClient(srv.URL, "tok123", time.Second)
	_, err := client.GetDirections(context.Background(), twoWaypoints(), model.ModeWalking)
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok123", sawAuth)
}

func TestNewClient_SelectsProxiedWhenProxyURLConfigured(t *testing.T) {
	client := NewClient("http://direct.test", "http://proxy.test", "secret", "token", time.Second)
	_, ok := client.(*ProxiedClient)
	assert.True(t, ok)
}

func TestNewClient_SelectsDirectWhenNoProxyURL(t *testing.T) {
	client := NewClient("http://direct.test", "", "secret", "token", time.Second)
	_, ok := client.(*DirectClient)
	assert.True(t, ok)
}

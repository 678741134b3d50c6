package directory

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureSleeps replaces the backoff sleep with a recorder so tests observe
// the delays without waiting for them.
func captureSleeps(t *testing.T) *[]time.Duration {
	t.Helper()
	var slept []time.Duration
	orig := sleepFunc
	sleepFunc = func(d time.Duration) { slept = append(slept, d) }
	t.Cleanup(func() { sleepFunc = orig })
	return &slept
}

func TestClient_ResolveIdentity(t *testing.T) {
	t.Run("first match wins", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/v1/users", r.URL.Path)
			assert.Equal(t, "Jo Lee", r.URL.Query().Get("search"))
			w.Write([]byte(`{"users":[{"id":"u-1","name":"Jo Lee"},{"id":"u-2","name":"Jo Leery"}]}`))
		}))
		defer srv.Close()

		client := NewClient(srv.URL, "test-key")
		id, err := client.ResolveIdentity(context.Background(), "Jo Lee")
		require.NoError(t, err)
		assert.Equal(t, "u-1", id)
	})

	t.Run("empty result is not found", func(t *testing.T) {
		slept := captureSleeps(t)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"users":[]}`))
		}))
		defer srv.Close()

		client := NewClient(srv.URL, "")
		_, err := client.ResolveIdentity(context.Background(), "Nobody")
		var notFound *NotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, "Nobody", notFound.Query)
		assert.Empty(t, *slept, "not-found must not be retried")
	})

	t.Run("404 is not found without retry", func(t *testing.T) {
		slept := captureSleeps(t)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		client := NewClient(srv.URL, "")
		_, err := client.ResolveIdentity(context.Background(), "Nobody")
		var notFound *NotFoundError
		assert.ErrorAs(t, err, &notFound)
		assert.Empty(t, *slept)
	})

	t.Run("malformed response fails without retry", func(t *testing.T) {
		slept := captureSleeps(t)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"users": not json`))
		}))
		defer srv.Close()

		client := NewClient(srv.URL, "")
		_, err := client.ResolveIdentity(context.Background(), "Jo Lee")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "malformed")
		assert.Empty(t, *slept)
	})
}

func TestClient_Retry(t *testing.T) {
	t.Run("transient failures back off then succeed", func(t *testing.T) {
		slept := captureSleeps(t)
		attempts := 0
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			attempts++
			if attempts < 3 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.Write([]byte(`{"users":[{"id":"u-1","name":"Jo Lee"}]}`))
		}))
		defer srv.Close()

		client := NewClient(srv.URL, "")
		id, err := client.ResolveIdentity(context.Background(), "Jo Lee")
		require.NoError(t, err)
		assert.Equal(t, "u-1", id)
		assert.Equal(t, 3, attempts)
		assert.Equal(t, []time.Duration{1 * time.Second, 2 * time.Second}, *slept)
	})

	t.Run("exhausted retries surface service unavailable", func(t *testing.T) {
		slept := captureSleeps(t)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		client := NewClient(srv.URL, "")
		_, err := client.ResolveIdentity(context.Background(), "Jo Lee")
		var unavailable *ServiceUnavailableError
		require.ErrorAs(t, err, &unavailable)
		assert.Equal(t, 3, unavailable.Attempts)
		assert.Equal(t, []time.Duration{1 * time.Second, 2 * time.Second}, *slept)
	})

	t.Run("connection failure is transient", func(t *testing.T) {
		captureSleeps(t)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close() // refuse all connections

		client := NewClient(srv.URL, "")
		_, err := client.ResolveIdentity(context.Background(), "Jo Lee")
		var unavailable *ServiceUnavailableError
		assert.ErrorAs(t, err, &unavailable)
	})
}

func TestClient_FetchAssignedDevices(t *testing.T) {
	t.Run("maps asset descriptors", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/v1/assets", r.URL.Path)
			assert.Equal(t, "u-1", r.URL.Query().Get("assigned_to"))
			assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
			w.Write([]byte(`{"assets":[
				{"id":"a-1","asset_tag":"K12-0001","serial_number":"SN1","type":"laptop"},
				{"id":"a-2","asset_tag":"K12-0002","serial_number":"SN2","type":"charger"}
			]}`))
		}))
		defer srv.Close()

		client := NewClient(srv.URL, "test-key")
		devices, err := client.FetchAssignedDevices(context.Background(), "u-1")
		require.NoError(t, err)
		require.Len(t, devices, 2)
		assert.Equal(t, DeviceDescriptor{
			AssetID: "a-1", AssetTag: "K12-0001", SerialNumber: "SN1", DeviceType: "laptop",
		}, devices[0])
	})

	t.Run("zero assigned devices is a valid result", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"assets":[]}`))
		}))
		defer srv.Close()

		client := NewClient(srv.URL, "")
		devices, err := client.FetchAssignedDevices(context.Background(), "u-1")
		require.NoError(t, err)
		assert.Empty(t, devices)
	})
}

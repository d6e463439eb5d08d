package ethereum

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlchemyClient_NFTCount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/key/getNFTs", r.URL.Path)
		assert.Equal(t, testAddress, r.URL.Query().Get("owner"))
		assert.Equal(t, "false", r.URL.Query().Get("withMetadata"))

		w.Write([]byte(`{"ownedNfts":[],"totalCount":12,"blockHash":"0x1"}`))
	}))
	defer server.Close()

	client := NewAlchemyClient("key", WithAlchemyURL(server.URL))
	n, err := client.NFTCount(context.Background(), testAddress)
	require.NoError(t, err)
	assert.Equal(t, 12, n)
}

func TestAlchemyClient_MissingTotalCount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ownedNfts":[]}`))
	}))
	defer server.Close()

	client := NewAlchemyClient("key", WithAlchemyURL(server.URL))
	n, err := client.NFTCount(context.Background(), testAddress)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestAlchemyClient_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"Must be authenticated!"}`))
	}))
	defer server.Close()

	client := NewAlchemyClient("bad", WithAlchemyURL(server.URL))
	_, err := client.NFTCount(context.Background(), testAddress)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 401")
}

package main

import (
	"net/http"
	"testing"

	"github.com/ecotrack/backend/internal/handlers"
	"github.com/stretchr/testify/assert"
)

func TestNewServer_WriteDeadlineOutlastsRequestTimeout(t *testing.T) {
	srv := newServer(":0", http.NotFoundHandler())

	assert.Equal(t, ":0", srv.Addr)
	assert.Greater(t, srv.WriteTimeout, handlers.RequestTimeout)
	assert.Greater(t, srv.IdleTimeout, srv.ReadTimeout)
}

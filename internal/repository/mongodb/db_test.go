package mongodb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnect_PingFailure(t *testing.T) {
	start := time.Now()
	client, err := Connect(context.Background(), "mongodb://127.0.0.1:1/?serverSelectionTimeoutMS=200&connectTimeoutMS=200", time.Second)

	require.Error(t, err)
	assert.Nil(t, client)
	assert.Contains(t, err.Error(), "ping mongo")
	assert.Less(t, time.Since(start), 5*time.Second)
}

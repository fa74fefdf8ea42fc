package gatewaytest_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/kiranshivaraju/keyconsole/internal/gateway"
	"github.com/kiranshivaraju/keyconsole/internal/gatewaytest"
	"github.com/kiranshivaraju/keyconsole/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginAndVerify(t *testing.T) {
	srv := gatewaytest.New(t, gatewaytest.WithCredentials("root", "hunter2"))
	c := srv.Client()
	ctx := context.Background()

	_, err := c.Login(ctx, "root", "wrong")
	require.Error(t, err)
	assert.Equal(t, "invalid credentials", gateway.ServerMessage(err))

	token, err := c.Login(ctx, "root", "hunter2")
	require.NoError(t, err)
	require.NoError(t, c.Verify(ctx, token))

	srv.Revoke(token)
	assert.ErrorIs(t, c.Verify(ctx, token), gateway.ErrUnauthorized)
	assert.Equal(t, 1, srv.Calls(gatewaytest.RouteVerify), "rejected requests never reach the route")
	assert.Equal(t, 4, srv.Requests())
}

func TestKeyLifecycle(t *testing.T) {
	srv := gatewaytest.New(t)
	c := srv.Client()
	ctx := context.Background()
	token := srv.IssueToken()

	generated, err := c.CreateKey(ctx, token, models.CreateKeyRequest{KeyName: "ci"})
	require.NoError(t, err)
	assert.NotEmpty(t, generated.APIKey)

	custom, err := c.CreateKey(ctx, token, models.CreateKeyRequest{KeyName: "batch", APIKey: "my-own-secret-value"})
	require.NoError(t, err)
	assert.Empty(t, custom.APIKey, "caller-supplied secrets are not echoed")

	_, err = c.CreateKey(ctx, token, models.CreateKeyRequest{KeyName: "ci"})
	assert.Equal(t, "key name already exists", gateway.ServerMessage(err))

	keys, err := c.ListKeys(ctx, token)
	require.NoError(t, err)
	require.Len(t, keys, 2)
	assert.Equal(t, "ci", keys[0].KeyName)
	assert.Equal(t, "my-own-secret-value", keys[1].APIKey)

	require.NoError(t, c.UpdateKey(ctx, token, custom.ID, models.UpdateKeyRequest{KeyName: "batch-2", IsActive: false}))
	got, err := c.GetKey(ctx, token, custom.ID)
	require.NoError(t, err)
	assert.Equal(t, "batch-2", got.KeyName)
	assert.False(t, got.IsActive)

	summary, err := c.Dashboard(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, int64(2), summary.TotalAPIKeys)
	assert.Equal(t, int64(1), summary.ActiveKeys)

	require.NoError(t, c.DeleteKey(ctx, token, generated.ID))
	err = c.DeleteKey(ctx, token, generated.ID)
	var apiErr *gateway.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Len(t, srv.Keys(), 1)
}

func TestFailAndIntercept(t *testing.T) {
	srv := gatewaytest.New(t, gatewaytest.WithKeys(models.APIKey{ID: "k1", KeyName: "one"}))
	c := srv.Client()
	ctx := context.Background()
	token := srv.IssueToken()

	srv.Fail(gatewaytest.RouteListKeys, http.StatusServiceUnavailable, "maintenance")

	intercepted := 0
	srv.Intercept(gatewaytest.RouteListKeys, func(*http.Request) { intercepted++ })

	_, err := c.ListKeys(ctx, token)
	assert.Equal(t, "maintenance", gateway.ServerMessage(err))

	keys, err := c.ListKeys(ctx, token)
	require.NoError(t, err)
	assert.Len(t, keys, 1)
	assert.Equal(t, 2, intercepted)
	assert.Equal(t, 2, srv.Calls(gatewaytest.RouteListKeys))
}

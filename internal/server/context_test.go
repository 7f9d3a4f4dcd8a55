package server

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/draftdesk/draftdesk/internal/drive"
	"github.com/draftdesk/draftdesk/internal/gmail"
)

func newTestContext(t *testing.T) *ServerContext {
	t.Helper()
	// No token files exist under a fresh HOME, so no clients are created.
	t.Setenv("HOME", t.TempDir())

	sc, err := NewServerContext(context.Background(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

func TestServerContextWithoutTokens(t *testing.T) {
	sc := newTestContext(t)

	assert.Nil(t, sc.GmailClient())
	assert.Nil(t, sc.DriveClient())
	assert.Nil(t, sc.GmailClientForAccount("work"))
	assert.Nil(t, sc.Sessions())
}

func TestServerContextCachesInjectedClients(t *testing.T) {
	sc := newTestContext(t)

	gmailClient := &gmail.Client{}
	sc.SetGmailClient(gmailClient)
	assert.Same(t, gmailClient, sc.GmailClient())
	assert.Same(t, gmailClient, sc.GmailClientForAccount("default"))

	driveClient := &drive.Client{}
	sc.SetDriveClientForAccount("work", driveClient)
	assert.Same(t, driveClient, sc.DriveClientForAccount("work"))
	assert.Nil(t, sc.DriveClient())
}

func TestServerContextShutdown(t *testing.T) {
	sc := newTestContext(t)

	assert.False(t, sc.IsShutdown())
	require.NoError(t, sc.Shutdown())
	assert.True(t, sc.IsShutdown())

	// Shutdown is idempotent and cancels the shared context.
	require.NoError(t, sc.Shutdown())
	assert.Error(t, sc.Context().Err())
}

package daemon

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStartWritesPIDAndStateThenStatusReportsRunning(t *testing.T) {
	dir := t.TempDir()
	d := New(dir, "test-version")

	require.NoError(t, d.Start(true, "0.0.0.0", 3030, true))
	t.Cleanup(func() { d.Cleanup() })

	status := d.Status()
	require.True(t, status.Running)
	require.Equal(t, os.Getpid(), status.PID)
	require.Equal(t, "test-version", status.Version)
	require.Equal(t, 3030, status.RESTPort)
}

func TestStartTwiceFails(t *testing.T) {
	dir := t.TempDir()
	d := New(dir, "test-version")
	require.NoError(t, d.Start(true, "0.0.0.0", 3030, true))
	t.Cleanup(func() { d.Cleanup() })

	require.Error(t, d.Start(true, "0.0.0.0", 3030, true))
}

func TestStatusWithNoPIDFileReportsNotRunning(t *testing.T) {
	dir := t.TempDir()
	d := New(dir, "test-version")
	status := d.Status()
	require.False(t, status.Running)
}

func TestStatusCleansUpStalePIDFile(t *testing.T) {
	dir := t.TempDir()
	d := New(dir, "test-version")
	require.NoError(t, os.WriteFile(d.PIDPath(), []byte("999999"), 0644))

	status := d.Status()
	require.False(t, status.Running)
	_, err := os.Stat(d.PIDPath())
	require.True(t, os.IsNotExist(err))
}

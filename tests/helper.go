package tests

import (
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sta4888/TZL/internal/cli"
	"github.com/sta4888/TZL/internal/config"
	"github.com/sta4888/TZL/internal/ctrl"
	"github.com/sta4888/TZL/internal/hdl/tcp"
	"github.com/sta4888/TZL/internal/items"
	"github.com/sta4888/TZL/internal/repo/db"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// setupTestServer wires the full stack against a temp database and
// catalog file and starts it on an ephemeral port.
func setupTestServer(t *testing.T, game config.GameConfig, catalogJSON string) (int, *db.Repository) {
	zap.ReplaceGlobals(zap.Must(zap.NewDevelopment()))

	dir := t.TempDir()
	itemsPath := filepath.Join(dir, "items.json")
	require.NoError(t, os.WriteFile(itemsPath, []byte(catalogJSON), 0644))

	repo := db.New(&config.DBConfig{File: filepath.Join(dir, "game.db")})
	catalog, err := items.New(itemsPath)
	require.NoError(t, err)

	svc := ctrl.New(repo, catalog, game)
	h := tcp.New(svc)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	go h.Start("127.0.0.1", port)

	t.Cleanup(
		func() {
			if err := h.Close(); err != nil {
				t.Log(err)
			}
			if err := repo.Close(); err != nil {
				t.Log(err)
			}
		},
	)

	return port, repo
}

func connect(t *testing.T, port int) *cli.Client {
	var c *cli.Client
	require.Eventually(
		t, func() bool {
			var err error
			c, err = cli.Connect("127.0.0.1", port)
			return err == nil
		}, 5*time.Second, 50*time.Millisecond,
	)

	t.Cleanup(
		func() {
			if err := c.Close(); err != nil {
				t.Log(err)
			}
		},
	)
	return c
}

package integrity

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"account-audit/core/database"
	"account-audit/core/storage/mocks"
	"account-audit/feature/accounts/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func migrate(t *testing.T, path string, model any) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: path})
	require.NoError(t, err)
	defer database.Close(db)
	if model != nil {
		require.NoError(t, db.AutoMigrate(model))
	} else {
		require.NoError(t, db.Exec("CREATE TABLE other (id INTEGER)").Error)
	}
}

func setupOptions(t *testing.T) Options {
	t.Helper()
	dir := t.TempDir()
	archiver := filepath.Join(dir, "archiver.sqlite3")
	nodes := filepath.Join(dir, "instances")

	migrate(t, archiver, &models.ArchiverAccount{})
	migrate(t, filepath.Join(nodes, "node-1", "db", "shardeum.sqlite"), &models.NodeAccountEntry{})

	return Options{
		Archiver:       database.SQLite(archiver, 5),
		ArchiverTable:  "accounts",
		NodesFolder:    nodes,
		NodeDBFile:     "shardeum.sqlite",
		NodeTable:      "accountsEntry",
		TimeoutSeconds: 5,
	}
}

func TestService_CheckStores(t *testing.T) {
	opts := setupOptions(t)
	svc := NewService(opts, nil, "", "", "", zap.NewNop())

	report, err := svc.CheckStores(context.Background())
	require.NoError(t, err)
	assert.True(t, report.Matched)
	require.Len(t, report.Stores, 2)
	assert.Equal(t, RoleArchiver, report.Stores[0].Role)
	assert.Equal(t, RoleNode, report.Stores[1].Role)
	assert.Equal(t, "node-1", report.Stores[1].Name)
}

func TestService_CheckStores_Problems(t *testing.T) {
	opts := setupOptions(t)
	// Node without the account table
	migrate(t, filepath.Join(opts.NodesFolder, "node-2", "db", "shardeum.sqlite"), nil)
	// Unreadable archiver
	opts.Archiver = database.SQLite(filepath.Join(t.TempDir(), "missing.sqlite3"), 1)

	svc := NewService(opts, nil, "", "", "", zap.NewNop())
	report, err := svc.CheckStores(context.Background())
	require.NoError(t, err)

	assert.False(t, report.Matched)
	require.Len(t, report.Stores, 3)
	assert.NotEmpty(t, report.Stores[0].Error)
	assert.True(t, report.Stores[1].Matched())
	require.NotNil(t, report.Stores[2].Table)
	assert.False(t, report.Stores[2].Matched())
}

func TestService_CheckStores_DiscoveryError(t *testing.T) {
	opts := setupOptions(t)
	opts.NodesFolder = filepath.Join(t.TempDir(), "missing")

	_, err := NewService(opts, nil, "", "", "", zap.NewNop()).CheckStores(context.Background())
	assert.Error(t, err)
}

func TestService_CheckStorage_Disabled(t *testing.T) {
	_, err := NewService(Options{}, nil, "", "", "", zap.NewNop()).CheckStorage(context.Background(), true)
	assert.ErrorIs(t, err, ErrStorageDisabled)
}

func TestHandler(t *testing.T) {
	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything, "audit-reports").Return(true, nil)
	// An empty listing reports the prefix as missing.
	client.On("ListObjects", mock.Anything, "audit-reports", mock.Anything).Return(nil)

	svc := NewService(setupOptions(t), client, "audit-reports", "reports/accounts/", "", zap.NewNop())
	feature := NewFeature(svc)
	assert.Equal(t, "integrity", feature.Name())
	assert.True(t, feature.IsEnabled())

	app := fiber.New()
	require.NoError(t, feature.Load(app))

	t.Run("Stores", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/integrity/stores", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var report StoresReport
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
		assert.True(t, report.Matched)
	})

	t.Run("Storage", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/integrity/storage", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("All", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/integrity", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var report map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
		assert.Contains(t, report, "stores")
		assert.Contains(t, report, "storage")
	})
}

func TestHandler_StorageDisabled(t *testing.T) {
	app := fiber.New()
	require.NoError(t, NewFeature(NewService(setupOptions(t), nil, "", "", "", zap.NewNop())).Load(app))

	resp, err := app.Test(httptest.NewRequest("GET", "/integrity/storage?fix=true", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}

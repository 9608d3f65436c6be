package catalog

import (
	"compress/gzip"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestSnapshotFile creates a gzipped JSON-lines snapshot file.
func createTestSnapshotFile(t *testing.T, filename string, lines []string) string {
	tmpDir := t.TempDir()
	filePath := filepath.Join(tmpDir, filename)

	file, err := os.Create(filePath)
	require.NoError(t, err)
	defer file.Close()

	gzipWriter := gzip.NewWriter(file)
	defer gzipWriter.Close()

	for _, line := range lines {
		_, err := gzipWriter.Write([]byte(line + "\n"))
		require.NoError(t, err)
	}

	return filePath
}

func saleLine(id uuid.UUID, target string, priority int) string {
	return fmt.Sprintf(`{"id":%q,"name":"Sale","type":"percentage","percentage":"10","target_type":%q,"priority":%d,"active":true,"created_at":"2026-01-01T00:00:00Z"}`,
		id, target, priority)
}

func couponLine(id uuid.UUID, code string) string {
	return fmt.Sprintf(`{"id":%q,"name":"Coupon","code":%q,"type":"amount","amounts":{"PLN":"15.00"},"target_type":"order-value","active":true,"created_at":"2026-01-01T00:00:00Z"}`,
		id, code)
}

func TestFileLoader_Load_Success(t *testing.T) {
	loader := NewFileLoader(zerolog.Nop())
	saleID, couponID := uuid.New(), uuid.New()

	filePath := createTestSnapshotFile(t, "discounts.jsonl.gz", []string{
		saleLine(saleID, "products", 1),
		"",
		couponLine(couponID, "WELCOME15"),
	})

	discounts, err := loader.Load(context.Background(), filePath)

	require.NoError(t, err)
	require.Len(t, discounts, 2)
	assert.Equal(t, saleID, discounts[0].ID)
	assert.False(t, discounts[0].IsCoupon())
	assert.Equal(t, couponID, discounts[1].ID)
	assert.Equal(t, "WELCOME15", *discounts[1].Code)
	assert.Equal(t, int64(1500), discounts[1].Amounts["PLN"])
}

func TestFileLoader_Load_FileNotFound(t *testing.T) {
	loader := NewFileLoader(zerolog.Nop())

	discounts, err := loader.Load(context.Background(), "/nonexistent/path/to/file.gz")

	require.Error(t, err)
	assert.Nil(t, discounts)
	assert.Contains(t, err.Error(), "failed to open snapshot file")
}

func TestFileLoader_Load_InvalidGzip(t *testing.T) {
	loader := NewFileLoader(zerolog.Nop())

	filePath := filepath.Join(t.TempDir(), "invalid.gz")
	require.NoError(t, os.WriteFile(filePath, []byte("not a gzip file"), 0644))

	discounts, err := loader.Load(context.Background(), filePath)

	require.Error(t, err)
	assert.Nil(t, discounts)
	assert.Contains(t, err.Error(), "failed to create gzip reader")
}

func TestFileLoader_Load_InvalidLine(t *testing.T) {
	loader := NewFileLoader(zerolog.Nop())

	filePath := createTestSnapshotFile(t, "broken.jsonl.gz", []string{
		saleLine(uuid.New(), "products", 0),
		`{"id": "not-json"`,
	})

	discounts, err := loader.Load(context.Background(), filePath)

	require.Error(t, err)
	assert.Nil(t, discounts)
	assert.Contains(t, err.Error(), "line 2")
}

func TestFileLoader_Load_EmptyFile(t *testing.T) {
	loader := NewFileLoader(zerolog.Nop())

	filePath := createTestSnapshotFile(t, "empty.jsonl.gz", nil)

	discounts, err := loader.Load(context.Background(), filePath)

	require.NoError(t, err)
	assert.Empty(t, discounts)
}

func TestFileLoader_Load_ContextCancellation(t *testing.T) {
	loader := NewFileLoader(zerolog.Nop())

	lines := make([]string, 20_000)
	for i := range lines {
		lines[i] = saleLine(uuid.New(), "products", i)
	}
	filePath := createTestSnapshotFile(t, "large.jsonl.gz", lines)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	discounts, err := loader.Load(ctx, filePath)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, discounts)
}

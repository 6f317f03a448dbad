package audit

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLogger_LogAppendsNDJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "audit.log")
	logger, err := NewLogger(path)
	require.NoError(t, err)

	require.NoError(t, logger.Log(Entry{
		Timestamp: time.Now(),
		RequestID: "0x01deadbeef",
		ChainID:   2,
		Operation: OpAdmitted,
		Status:    "SUCCESS",
	}))
	require.NoError(t, logger.Log(Entry{
		Timestamp:     time.Now(),
		RequestID:     "0x01deadbeef",
		ChainID:       2,
		Operation:     OpFailed,
		Status:        "FAILURE",
		FailureReason: "adapter unavailable",
	}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 2)
}

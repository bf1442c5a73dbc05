package logging_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/dom/gemrealm/internal/logging"
	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.Setup("gemrealm", "json", "info", &buf)

	logger.Info("hello", "k", "v")
	logger.Debug("hidden")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "gemrealm", entry["service"])
	assert.Equal(t, "v", entry["k"])
	assert.NotContains(t, buf.String(), "hidden")
}

func TestSetup_Text(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.Setup("gemrealm", "text", "debug", &buf)

	logger.Debug("visible")

	assert.Contains(t, buf.String(), "msg=visible")
	assert.Contains(t, buf.String(), "service=gemrealm")
}

func TestError_OopsContext(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.Setup("gemrealm", "json", "info", &buf)

	err := oops.Code("ACCOUNT_INSERT_FAILED").With("username", "alice").Wrap(errors.New("connection refused"))
	logging.Error(logger, "registration failed", err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "ACCOUNT_INSERT_FAILED", entry["code"])
	assert.Contains(t, entry["error"], "connection refused")
	ctx, ok := entry["context"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "alice", ctx["username"])
}

func TestWarn_PlainError(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.Setup("gemrealm", "json", "info", &buf)

	logging.Warn(logger, "referral skipped", errors.New("boom"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "boom", entry["error"])
	assert.NotContains(t, entry, "code")
}

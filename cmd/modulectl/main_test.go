package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/AgentOS/modulegate/internal/assets"
	"github.com/GriffinCanCode/AgentOS/modulegate/internal/modules"
)

const glue = `
function execute(module, identifier, options, action, handleResult, handleError) {
    try {
        if (action.type === 'loadModules') {
            return handleResult(module.load(action.protocolType));
        }
        return handleResult(module[action.target][action.method](action, identifier));
    } catch (error) {
        return handleError(error);
    }
}
`

const bitcoinBundle = `
global.airgapCoinLibBitcoin = {
    load: function (protocolType) { return { identifier: 'btc', protocolType: protocolType || 'all' }; },
    offline: {
        getName: function () { return 'Bitcoin'; },
        getDecimals: function () { return 8; },
        sum: function (action) { return action.args[0] + action.args[1]; },
        fail: function () { throw new Error('boom'); }
    },
    online: {
        getNetwork: function (action) { return action.networkId; }
    }
};`

func setupAssets(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	write := func(rel, content string) {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	write(assets.GluePath, glue)
	write(strings.Replace(assets.ModulePattern, "%s", string(modules.Bitcoin), 1), bitcoinBundle)
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--assets", setupAssets(t)}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestCallCommand(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"json string", []string{"call", "offline", "getName", "--protocol", "btc-main"}, "\"Bitcoin\"\n"},
		{"yaml number", []string{"call", "offline", "getDecimals", "--protocol", "btc", "-o", "yaml"}, "8\n"},
		{"args", []string{"call", "offline", "sum", "[2, 3]", "--protocol", "btc"}, "5\n"},
		{"network", []string{"call", "online", "getNetwork", "--protocol", "btc", "--network", "testnet"}, "\"testnet\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestCallCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want error
	}{
		{"module error", []string{"call", "offline", "fail", "--protocol", "btc"}, &modules.SandboxError{Message: "boom"}},
		{"unknown protocol", []string{"call", "offline", "getName", "--protocol", "doge"}, modules.ErrModuleNotFound},
		{"missing protocol", []string{"call", "offline", "getName"}, modules.ErrInvalidAction},
		{"missing bundle", []string{"call", "offline", "getName", "--protocol", "eth"}, modules.ErrBootstrap},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			require.Error(t, err)
			if sandboxErr, ok := tt.want.(*modules.SandboxError); ok {
				assert.EqualError(t, err, sandboxErr.Message)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err := run(t, "call", "offline", "sum", "{not json", "--protocol", "btc")
	assert.ErrorContains(t, err, "args must be a JSON array")

	_, err = run(t, "call", "offline", "getName", "--protocol", "btc", "-o", "xml")
	assert.ErrorContains(t, err, "unknown output format")
}

func TestLoadCommand(t *testing.T) {
	out, err := run(t, "load", "--module", "bitcoin", "--protocol-type", "online")
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, map[string]any{"identifier": "btc", "protocolType": "online"}, decoded)

	_, err = run(t, "load", "--protocol-type", "partial")
	assert.ErrorIs(t, err, modules.ErrInvalidAction)
}

func TestPlain(t *testing.T) {
	value := map[modules.ModuleName]any{
		modules.Bitcoin: []any{json.Number("21"), json.Number("0.5"), json.Number("123456789012345678901234567890")},
	}
	assert.Equal(t, map[string]any{
		"bitcoin": []any{int64(21), 0.5, "123456789012345678901234567890"},
	}, plain(value))
}

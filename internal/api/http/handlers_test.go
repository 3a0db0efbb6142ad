package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/GriffinCanCode/AgentOS/modulegate/internal/assets"
	"github.com/GriffinCanCode/AgentOS/modulegate/internal/gateway"
	"github.com/GriffinCanCode/AgentOS/modulegate/internal/logging"
	"github.com/GriffinCanCode/AgentOS/modulegate/internal/modules"
	"github.com/GriffinCanCode/AgentOS/modulegate/internal/sandbox"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
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

func bundle(module modules.ModuleName) string {
	return fmt.Sprintf(`
global.%s = {
    load: function (protocolType) { return { module: %q, protocolType: protocolType || null }; },
    offline: {
        getName: function () { return %q; },
        echo: function (action) { return action.args; },
        fail: function () { throw new Error('boom'); }
    },
    online: {
        getNetwork: function (action) { return action.networkId === undefined ? 'default' : action.networkId; }
    },
    v3serializercompanion: {
        owner: function (action, identifier) { return identifier; }
    }
};`, modules.Namespace(module), module, module)
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T, initialize bool) (*gin.Engine, *gateway.Guard) {
	t.Helper()

	fsys := fstest.MapFS{assets.GluePath: {Data: []byte(glue)}}
	for _, module := range modules.Modules() {
		fsys[fmt.Sprintf(assets.ModulePattern, module)] = &fstest.MapFile{Data: []byte(bundle(module))}
	}
	delete(fsys, fmt.Sprintf(assets.ModulePattern, modules.Tezos))

	guard := gateway.NewGuard(func() (*gateway.Gateway, error) {
		engine := sandbox.NewEngine(sandbox.DefaultConfig(), logging.NewNop())
		return gateway.New(gateway.EngineSandbox{Engine: engine}, assets.New(fsys), logging.NewNop(), nil), nil
	})
	if initialize {
		require.NoError(t, guard.Initialize())
	}
	t.Cleanup(func() { guard.Teardown() })

	router := gin.New()
	NewHandlers(guard, logging.NewNop()).Register(router)
	return router, guard
}

func post(t *testing.T, router *gin.Engine, path, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var decoded map[string]any
	decoder := json.NewDecoder(w.Body)
	decoder.UseNumber()
	require.NoError(t, decoder.Decode(&decoded))
	return w.Code, decoded
}

func TestCallMethod(t *testing.T) {
	router, _ := newTestRouter(t, true)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		want       map[string]any
	}{
		{
			name:       "offline",
			body:       `{"target":"offline","method":"getName","protocolIdentifier":"btc-main"}`,
			wantStatus: http.StatusOK,
			want:       map[string]any{"result": "bitcoin"},
		},
		{
			name:       "large integers travel as strings",
			body:       `{"target":"offline","method":"echo","args":[9007199254740991,"12345678901234567890"],"protocolIdentifier":"eth"}`,
			wantStatus: http.StatusOK,
			want:       map[string]any{"result": []any{json.Number("9007199254740991"), "12345678901234567890"}},
		},
		{
			name:       "online default network",
			body:       `{"target":"online","method":"getNetwork","protocolIdentifier":"eth"}`,
			wantStatus: http.StatusOK,
			want:       map[string]any{"result": "default"},
		},
		{
			name:       "online explicit network",
			body:       `{"target":"online","method":"getNetwork","protocolIdentifier":"eth","networkId":"goerli"}`,
			wantStatus: http.StatusOK,
			want:       map[string]any{"result": "goerli"},
		},
		{
			name:       "serializer companion",
			body:       `{"target":"v3serializercompanion","method":"owner","moduleIdentifier":"cosmos"}`,
			wantStatus: http.StatusOK,
			want:       map[string]any{"result": "cosmos"},
		},
		{
			name:       "module error",
			body:       `{"target":"offline","method":"fail","protocolIdentifier":"btc-main"}`,
			wantStatus: http.StatusUnprocessableEntity,
			want:       map[string]any{"error": "boom"},
		},
		{
			name:       "unknown protocol",
			body:       `{"target":"offline","method":"getName","protocolIdentifier":"doge"}`,
			wantStatus: http.StatusNotFound,
			want:       map[string]any{"error": "module doge could not be found"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := post(t, router, "/modules/call", tt.body)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.want, body)
		})
	}
}

func TestCallMethodValidation(t *testing.T) {
	router, _ := newTestRouter(t, true)

	bodies := []string{
		`{"method":"getName","protocolIdentifier":"btc"}`,
		`{"target":"offline","protocolIdentifier":"btc"}`,
		`{"target":"offline","method":"getName"}`,
		`{"target":"v3serializercompanion","method":"owner","protocolIdentifier":"btc"}`,
		`{"target":"wallet","method":"getName","protocolIdentifier":"btc"}`,
		`{"target":`,
	}
	for _, body := range bodies {
		status, decoded := post(t, router, "/modules/call", body)
		assert.Equal(t, http.StatusBadRequest, status, body)
		assert.Contains(t, decoded, "error", body)
	}
}

func TestLoadModules(t *testing.T) {
	router, _ := newTestRouter(t, true)

	t.Run("single module", func(t *testing.T) {
		status, body := post(t, router, "/modules/load", `{"module":"ethereum","protocolType":"Offline"}`)
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, map[string]any{
			"loadModules": map[string]any{"module": "ethereum", "protocolType": "offline"},
		}, body)
	})

	t.Run("unknown module", func(t *testing.T) {
		status, _ := post(t, router, "/modules/load", `{"module":"dogecoin"}`)
		assert.Equal(t, http.StatusNotFound, status)
	})

	t.Run("invalid protocol type", func(t *testing.T) {
		status, _ := post(t, router, "/modules/load", `{"protocolType":"partial"}`)
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("all modules fail on a missing bundle", func(t *testing.T) {
		status, body := post(t, router, "/modules/load", ``)
		assert.Equal(t, http.StatusBadGateway, status)
		assert.Contains(t, body["error"], "tezos")
	})
}

func TestHealth(t *testing.T) {
	router, guard := newTestRouter(t, false)

	get := func() (int, map[string]any) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		return w.Code, body
	}

	status, body := get()
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "uninitialized", body["status"])

	require.NoError(t, guard.Initialize())
	_, _ = post(t, router, "/modules/call", `{"target":"offline","method":"getName","protocolIdentifier":"btc"}`)

	status, body = get()
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ready", body["status"])
	assert.Equal(t, []any{"bitcoin"}, body["live"])
	assert.Len(t, body["modules"], len(modules.Modules()))

	require.NoError(t, guard.Teardown())
	status, body = get()
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "destroyed", body["status"])
}

func TestNotInitialized(t *testing.T) {
	router, _ := newTestRouter(t, false)

	status, body := post(t, router, "/modules/call", `{"target":"offline","method":"getName","protocolIdentifier":"btc"}`)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, modules.ErrNotInitialized.Error(), body["error"])
}

func TestStatusCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{&modules.SandboxError{Message: "x"}, http.StatusUnprocessableEntity},
		{&modules.ModuleNotFoundError{Identifier: "x"}, http.StatusNotFound},
		{modules.ErrInvalidAction, http.StatusBadRequest},
		{modules.ErrNotInitialized, http.StatusServiceUnavailable},
		{modules.ErrClosed, http.StatusServiceUnavailable},
		{&modules.BootstrapError{Module: modules.Bitcoin, Err: assert.AnError}, http.StatusBadGateway},
		{modules.ErrMissingResult, http.StatusBadGateway},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{assert.AnError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusCode(tt.err), fmt.Sprint(tt.err))
	}
}

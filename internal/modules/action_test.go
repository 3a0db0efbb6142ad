package modules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCallAction(t *testing.T) {
	tests := []struct {
		name    string
		req     CallRequest
		want    Action
		wantErr bool
	}{
		{
			name: "offline",
			req:  CallRequest{Target: "offline", Method: "getName", ProtocolIdentifier: "btc", NetworkID: "ignored"},
			want: CallOfflineProtocolMethod{Method: "getName", ProtocolIdentifier: "btc"},
		},
		{
			name: "online keeps network",
			req:  CallRequest{Target: "Online", Method: "getBalance", Args: []any{"addr"}, ProtocolIdentifier: "eth", NetworkID: "mainnet"},
			want: CallOnlineProtocolMethod{Method: "getBalance", Args: []any{"addr"}, ProtocolIdentifier: "eth", NetworkID: "mainnet"},
		},
		{
			name: "block explorer",
			req:  CallRequest{Target: "blockexplorer", Method: "createAddressUrl", ProtocolIdentifier: "xtz"},
			want: CallBlockExplorerMethod{Method: "createAddressUrl", ProtocolIdentifier: "xtz"},
		},
		{
			name: "serializer companion",
			req:  CallRequest{Target: "v3serializercompanion", Method: "schemas", ModuleIdentifier: "cosmos"},
			want: CallSerializerCompanionMethod{Method: "schemas", ModuleIdentifier: "cosmos"},
		},
		{name: "unknown target", req: CallRequest{Target: "wallet", Method: "x", ProtocolIdentifier: "btc"}, wantErr: true},
		{name: "missing method", req: CallRequest{Target: "offline", ProtocolIdentifier: "btc"}, wantErr: true},
		{name: "missing protocol", req: CallRequest{Target: "online", Method: "x", ModuleIdentifier: "bitcoin"}, wantErr: true},
		{name: "missing module", req: CallRequest{Target: "v3serializercompanion", Method: "x", ProtocolIdentifier: "btc"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			action, err := NewCallAction(tt.req)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidAction)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, action)
		})
	}
}

func TestParseProtocolType(t *testing.T) {
	for _, value := range []string{"", "offline", "ONLINE", "Full"} {
		_, err := ParseProtocolType(value)
		assert.NoError(t, err, value)
	}
	_, err := ParseProtocolType("partial")
	assert.ErrorIs(t, err, ErrInvalidAction)
}

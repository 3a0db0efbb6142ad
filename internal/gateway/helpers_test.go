package gateway

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"testing/fstest"
	"time"

	"github.com/GriffinCanCode/AgentOS/modulegate/internal/assets"
	"github.com/GriffinCanCode/AgentOS/modulegate/internal/logging"
	"github.com/GriffinCanCode/AgentOS/modulegate/internal/modules"
	"github.com/GriffinCanCode/AgentOS/modulegate/internal/sandbox"
)

const testGlue = `
function execute(module, identifier, options, action, handleResult, handleError) {
    try {
        if (module === undefined) {
            throw new Error('module is not loaded');
        }
        var result;
        if (action.type === 'loadModules') {
            result = module.load(action.protocolType);
        } else {
            var facet = module[action.target];
            var fn = facet && facet[action.method];
            if (typeof fn !== 'function') {
                throw new Error('unknown method ' + action.target + '.' + action.method);
            }
            result = fn.call(facet, action, identifier);
        }
        return Promise.resolve(result).then(handleResult, handleError);
    } catch (error) {
        return handleError(error);
    }
}
`

// genericBundle installs a module that only answers LoadModules and getName.
func genericBundle(module modules.ModuleName) string {
	return fmt.Sprintf(`
global.%s = {
    load: function (protocolType) {
        return [{ module: %q, protocolType: protocolType === undefined ? 'all' : protocolType }];
    },
    offline: {
        getName: function () { return %q; }
    }
};`, modules.Namespace(module), module, module)
}

const ethereumBundle = `
var calls = 0;
global.airgapCoinLibEthereum = {
    load: function (protocolType) {
        return [{ identifier: 'eth', protocolType: protocolType === undefined ? 'all' : protocolType }];
    },
    offline: {
        getSymbol: function () { return 'ETH'; },
        getName: function () { return 'Ethereum'; },
        getArgs: function (action) { return action.args; },
        nextCall: function () {
            var seen = calls;
            for (var i = 0; i < 2000; i++) {}
            calls = seen + 1;
            return calls;
        }
    },
    online: {
        getNetwork: function (action) {
            if (action.networkId === undefined) { return 'undefined'; }
            if (action.networkId === null) { return 'null'; }
            return action.networkId;
        },
        getBalance: function (action, identifier) {
            return Promise.resolve({ identifier: identifier, balance: '1000000000000000000' });
        }
    },
    blockexplorer: {
        createAddressUrl: function (action) {
            return 'https://etherscan.io/address/' + action.args[0];
        }
    },
    v3serializercompanion: {
        schemas: function (action, identifier) { return [identifier]; }
    }
};`

const bitcoinBundle = `
global.airgapCoinLibBitcoin = {
    load: function () { return [{ identifier: 'btc' }]; },
    offline: {
        getName: function () { return 'Bitcoin'; },
        getUnicode: function () { return '₿ € ü 🚀'; },
        fail: function () { throw new Error('boom'); },
        failString: function () { throw 'plain failure'; },
        reject: function () { return Promise.reject(new Error('async boom')); }
    }
};`

func bundlePath(module modules.ModuleName) string {
	return fmt.Sprintf(assets.ModulePattern, module)
}

// newTestFS returns an asset tree with a bundle for every module.
func newTestFS() fstest.MapFS {
	fsys := fstest.MapFS{
		assets.GluePath: {Data: []byte(testGlue)},
	}
	for _, module := range modules.Modules() {
		fsys[bundlePath(module)] = &fstest.MapFile{Data: []byte(genericBundle(module))}
	}
	fsys[bundlePath(modules.Ethereum)] = &fstest.MapFile{Data: []byte(ethereumBundle)}
	fsys[bundlePath(modules.Bitcoin)] = &fstest.MapFile{Data: []byte(bitcoinBundle)}
	return fsys
}

// countingSandbox wraps a real engine and records isolate lifecycles.
type countingSandbox struct {
	inner Sandbox
	delay time.Duration

	mu                 sync.Mutex
	created            map[modules.ModuleName]int
	isolates           []*countingIsolate
	sandboxCloses      int
	openAtSandboxClose int
}

func newCountingSandbox() *countingSandbox {
	engine := sandbox.NewEngine(sandbox.DefaultConfig(), logging.NewNop())
	return &countingSandbox{
		inner:   EngineSandbox{Engine: engine},
		created: make(map[modules.ModuleName]int),
	}
}

func (s *countingSandbox) NewIsolate(ctx context.Context, module modules.ModuleName) (Isolate, error) {
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	isolate, err := s.inner.NewIsolate(ctx, module)
	if err != nil {
		return nil, err
	}

	counted := &countingIsolate{Isolate: isolate}
	s.mu.Lock()
	s.created[module]++
	s.isolates = append(s.isolates, counted)
	s.mu.Unlock()
	return counted, nil
}

func (s *countingSandbox) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sandboxCloses++
	for _, isolate := range s.isolates {
		if isolate.closes.Load() == 0 {
			s.openAtSandboxClose++
		}
	}
	return s.inner.Close()
}

func (s *countingSandbox) createdFor(module modules.ModuleName) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.created[module]
}

func (s *countingSandbox) all() []*countingIsolate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*countingIsolate(nil), s.isolates...)
}

type countingIsolate struct {
	Isolate
	closes atomic.Int32
}

func (i *countingIsolate) Close() error {
	i.closes.Add(1)
	return i.Isolate.Close()
}

func newTestGateway(t *testing.T, fsys fstest.MapFS) (*Gateway, *countingSandbox) {
	t.Helper()
	sb := newCountingSandbox()
	gw := New(sb, assets.New(fsys), logging.NewNop(), nil)
	t.Cleanup(func() { gw.Close() })
	return gw, sb
}

package gateway

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/GriffinCanCode/AgentOS/modulegate/internal/modules"
	"github.com/bytedance/sonic"
)

var errInvalidSource = errors.New("module source is not valid UTF-8")

const globalNamespaceScript = "var global = {};"

// decoderScript turns UTF-8 bytes back into a string. Code points are
// collected in chunks so large bundles stay linear.
const decoderScript = `
function __modulegateDecodeUtf8(bytes) {
    var chunks = [], codes = [], i = 0, len = bytes.length, c, cp;
    while (i < len) {
        c = bytes[i++];
        switch (c >> 4) {
        case 0: case 1: case 2: case 3: case 4: case 5: case 6: case 7:
            codes.push(c);
            break;
        case 12: case 13:
            codes.push(((c & 0x1F) << 6) | (bytes[i++] & 0x3F));
            break;
        case 14:
            codes.push(((c & 0x0F) << 12) | ((bytes[i++] & 0x3F) << 6) | (bytes[i++] & 0x3F));
            break;
        case 15:
            cp = ((c & 0x07) << 18) | ((bytes[i++] & 0x3F) << 12) | ((bytes[i++] & 0x3F) << 6) | (bytes[i++] & 0x3F);
            cp -= 0x10000;
            codes.push(0xD800 + (cp >> 10), 0xDC00 + (cp & 0x3FF));
            break;
        }
        if (codes.length >= 8192) {
            chunks.push(String.fromCharCode.apply(null, codes));
            codes = [];
        }
    }
    chunks.push(String.fromCharCode.apply(null, codes));
    return chunks.join('');
}
`

// loaderTemplate evaluates the named bundle in global scope.
const loaderTemplate = `
host.consumeNamedDataAsArrayBuffer(%s).then(function (value) {
    var source = __modulegateDecodeUtf8(new Uint8Array(value));
    (0, eval)(source);
});
`

func scriptDataName(module modules.ModuleName) string {
	return string(module) + "-script"
}

// bootstrap prepares a fresh isolate for module. On any failure the isolate
// is closed and nothing is returned, so no half-initialized context escapes.
func (r *Registry) bootstrap(ctx context.Context, module modules.ModuleName) (*IsolatedContext, error) {
	glue, err := r.assets.Glue()
	if err != nil {
		return nil, &modules.BootstrapError{Module: module, Err: err}
	}
	source, err := r.assets.Module(module)
	if err != nil {
		return nil, &modules.BootstrapError{Module: module, Err: err}
	}
	if !utf8.Valid(source) {
		return nil, &modules.BootstrapError{Module: module, Err: errInvalidSource}
	}

	isolate, err := r.sandbox.NewIsolate(ctx, module)
	if err != nil {
		return nil, &modules.BootstrapError{Module: module, Err: err}
	}

	if err := loadModule(ctx, isolate, module, glue, source); err != nil {
		isolate.Close()
		return nil, &modules.BootstrapError{Module: module, Err: err}
	}

	return &IsolatedContext{module: module, isolate: isolate}, nil
}

func loadModule(ctx context.Context, isolate Isolate, module modules.ModuleName, glue, source []byte) error {
	if _, err := isolate.Evaluate(ctx, globalNamespaceScript); err != nil {
		return fmt.Errorf("init global namespace: %w", err)
	}
	if _, err := isolate.Evaluate(ctx, string(glue)); err != nil {
		return fmt.Errorf("evaluate protocol glue: %w", err)
	}

	dataName := scriptDataName(module)
	if err := isolate.ProvideNamedData(ctx, dataName, source); err != nil {
		return fmt.Errorf("provide module source: %w", err)
	}
	if _, err := isolate.Evaluate(ctx, decoderScript); err != nil {
		return fmt.Errorf("install source decoder: %w", err)
	}

	quoted, err := sonic.MarshalString(dataName)
	if err != nil {
		return err
	}
	if _, err := isolate.Evaluate(ctx, fmt.Sprintf(loaderTemplate, quoted)); err != nil {
		return fmt.Errorf("evaluate module source: %w", err)
	}
	return nil
}

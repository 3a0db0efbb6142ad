package modules

import (
	"fmt"

	"github.com/bytedance/sonic"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NamespacePrefix is prepended to the title-cased module name to form the
// global binding a module bundle installs itself under.
const NamespacePrefix = "airgapCoinLib"

// ErrorField is the response key carrying a module-reported error.
const ErrorField = "error"

// Numbers stay json.Number so amounts keep every digit.
var responseAPI = sonic.Config{UseNumber: true}.Froze()

// Namespace derives the global binding name of a module, e.g. airgapCoinLibEthereum.
// A Caser carries state, so each call builds its own.
func Namespace(module ModuleName) string {
	return NamespacePrefix + cases.Title(language.Und, cases.NoLower).String(string(module))
}

const invocationTemplate = `execute(
    global.%s,
    %s,
    undefined,
    %s,
    function (result) {
        return JSON.stringify({ %s: result });
    },
    function (error) {
        var message = typeof error === 'string' ? error
            : (error && error.message !== undefined ? String(error.message) : String(error));
        return JSON.stringify({ %s: message });
    }
);`

// Script renders the invocation evaluated in the module's context. The glue's
// execute function calls exactly one of the two continuations, whose JSON
// string becomes the evaluation result.
func Script(module ModuleName, action Action) (string, error) {
	encoded, err := Encode(action)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(invocationTemplate,
		Namespace(module),
		quote(action.Identifier()),
		encoded,
		quote(action.ResultField()),
		quote(ErrorField),
	), nil
}

// Decode unwraps the response envelope produced by Script. An error key
// becomes a *SandboxError with the message verbatim; otherwise the value under
// the action's result field is returned as is.
func Decode(action Action, raw string) (any, error) {
	var envelope map[string]any
	if err := responseAPI.UnmarshalFromString(raw, &envelope); err != nil {
		return nil, fmt.Errorf("%w: malformed response: %v", ErrEvaluation, err)
	}
	if envelope == nil {
		return nil, fmt.Errorf("%w: response is not an object", ErrEvaluation)
	}

	if reported, ok := envelope[ErrorField]; ok {
		return nil, &SandboxError{Message: errorMessage(reported)}
	}

	value, ok := envelope[action.ResultField()]
	if !ok {
		return nil, fmt.Errorf("%w (expected %q)", ErrMissingResult, action.ResultField())
	}
	return value, nil
}

func errorMessage(reported any) string {
	if s, ok := reported.(string); ok {
		return s
	}
	raw, err := responseAPI.MarshalToString(reported)
	if err != nil {
		return fmt.Sprint(reported)
	}
	return raw
}

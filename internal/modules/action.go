package modules

import (
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
)

// ActionType is the wire discriminator of an action.
type ActionType string

const (
	ActionLoadModules ActionType = "loadModules"
	ActionCallMethod  ActionType = "callMethod"
)

// Result field names the glue wraps successful values under.
const (
	ResultFieldLoadModules = "loadModules"
	ResultFieldCallMethod  = "result"
)

// ProtocolType narrows which protocol facets LoadModules reports.
type ProtocolType string

const (
	ProtocolOffline ProtocolType = "offline"
	ProtocolOnline  ProtocolType = "online"
	ProtocolFull    ProtocolType = "full"
)

// ParseProtocolType accepts any letter case. An empty string yields the unset type.
func ParseProtocolType(value string) (ProtocolType, error) {
	switch t := ProtocolType(strings.ToLower(value)); t {
	case "", ProtocolOffline, ProtocolOnline, ProtocolFull:
		return t, nil
	}
	return "", fmt.Errorf("%w: unknown protocol type %q", ErrInvalidAction, value)
}

// Target selects the facet of a module a method is called on.
type Target string

const (
	TargetOffline               Target = "offline"
	TargetOnline                Target = "online"
	TargetBlockExplorer         Target = "blockexplorer"
	TargetV3SerializerCompanion Target = "v3serializercompanion"
)

// ParseTarget accepts any letter case.
func ParseTarget(value string) (Target, error) {
	switch t := Target(strings.ToLower(value)); t {
	case TargetOffline, TargetOnline, TargetBlockExplorer, TargetV3SerializerCompanion:
		return t, nil
	}
	return "", fmt.Errorf("%w: unknown call target %q", ErrInvalidAction, value)
}

// Action is one operation to perform inside a module context. The set of
// implementations is closed: LoadModules and the four call-method variants.
type Action interface {
	Type() ActionType
	// ResultField is the response key a successful value is wrapped under.
	ResultField() string
	// Identifier routes the action to a module.
	Identifier() string
	isAction()
}

// LoadModules asks the glue to describe the protocols a module provides.
// Module selects the context; ProtocolType may be left empty.
type LoadModules struct {
	ProtocolType ProtocolType
	Module       ModuleName
}

// CallOfflineProtocolMethod calls a method of a protocol's offline facet.
type CallOfflineProtocolMethod struct {
	Method             string
	Args               []any
	ProtocolIdentifier string
}

// CallOnlineProtocolMethod calls a method of a protocol's online facet.
// An empty NetworkID is sent as undefined.
type CallOnlineProtocolMethod struct {
	Method             string
	Args               []any
	ProtocolIdentifier string
	NetworkID          string
}

// CallBlockExplorerMethod calls a method of a protocol's block explorer.
// An empty NetworkID is sent as undefined.
type CallBlockExplorerMethod struct {
	Method             string
	Args               []any
	ProtocolIdentifier string
	NetworkID          string
}

// CallSerializerCompanionMethod calls a method of a module's v3 serializer companion.
type CallSerializerCompanionMethod struct {
	Method           string
	Args             []any
	ModuleIdentifier string
}

func (LoadModules) Type() ActionType                   { return ActionLoadModules }
func (CallOfflineProtocolMethod) Type() ActionType     { return ActionCallMethod }
func (CallOnlineProtocolMethod) Type() ActionType      { return ActionCallMethod }
func (CallBlockExplorerMethod) Type() ActionType       { return ActionCallMethod }
func (CallSerializerCompanionMethod) Type() ActionType { return ActionCallMethod }

func (LoadModules) ResultField() string                   { return ResultFieldLoadModules }
func (CallOfflineProtocolMethod) ResultField() string     { return ResultFieldCallMethod }
func (CallOnlineProtocolMethod) ResultField() string      { return ResultFieldCallMethod }
func (CallBlockExplorerMethod) ResultField() string       { return ResultFieldCallMethod }
func (CallSerializerCompanionMethod) ResultField() string { return ResultFieldCallMethod }

func (a LoadModules) Identifier() string                   { return string(a.Module) }
func (a CallOfflineProtocolMethod) Identifier() string     { return a.ProtocolIdentifier }
func (a CallOnlineProtocolMethod) Identifier() string      { return a.ProtocolIdentifier }
func (a CallBlockExplorerMethod) Identifier() string       { return a.ProtocolIdentifier }
func (a CallSerializerCompanionMethod) Identifier() string { return a.ModuleIdentifier }

func (LoadModules) isAction()                   {}
func (CallOfflineProtocolMethod) isAction()     {}
func (CallOnlineProtocolMethod) isAction()      {}
func (CallBlockExplorerMethod) isAction()       {}
func (CallSerializerCompanionMethod) isAction() {}

// TargetOf returns the call target of a call-method action, or "" for LoadModules.
func TargetOf(action Action) Target {
	switch action.(type) {
	case CallOfflineProtocolMethod:
		return TargetOffline
	case CallOnlineProtocolMethod:
		return TargetOnline
	case CallBlockExplorerMethod:
		return TargetBlockExplorer
	case CallSerializerCompanionMethod:
		return TargetV3SerializerCompanion
	}
	return ""
}

// MethodOf returns the method name of a call-method action, or the action type for LoadModules.
func MethodOf(action Action) string {
	switch a := action.(type) {
	case CallOfflineProtocolMethod:
		return a.Method
	case CallOnlineProtocolMethod:
		return a.Method
	case CallBlockExplorerMethod:
		return a.Method
	case CallSerializerCompanionMethod:
		return a.Method
	}
	return string(action.Type())
}

// ModuleOf routes an action to its module. LoadModules names its module
// directly; every other action goes through Resolve.
func ModuleOf(action Action) (ModuleName, error) {
	if action == nil {
		return "", fmt.Errorf("%w: nil action", ErrInvalidAction)
	}
	if a, ok := action.(LoadModules); ok {
		if !IsKnown(a.Module) {
			return "", &ModuleNotFoundError{Identifier: string(a.Module)}
		}
		return a.Module, nil
	}
	return Lookup(action.Identifier())
}

// Encode renders the action as a script object literal. Unset optional fields
// are written as undefined, which the glue tells apart from null and from a
// missing key.
func Encode(action Action) (string, error) {
	switch a := action.(type) {
	case LoadModules:
		return encodeLoadModules(a)
	case CallOfflineProtocolMethod:
		return encodeCallMethod(TargetOffline, a.Method, a.Args,
			requiredString("protocolIdentifier", a.ProtocolIdentifier))
	case CallOnlineProtocolMethod:
		return encodeCallMethod(TargetOnline, a.Method, a.Args,
			requiredString("protocolIdentifier", a.ProtocolIdentifier),
			optionalString("networkId", a.NetworkID))
	case CallBlockExplorerMethod:
		return encodeCallMethod(TargetBlockExplorer, a.Method, a.Args,
			requiredString("protocolIdentifier", a.ProtocolIdentifier),
			optionalString("networkId", a.NetworkID))
	case CallSerializerCompanionMethod:
		return encodeCallMethod(TargetV3SerializerCompanion, a.Method, a.Args,
			requiredString("moduleIdentifier", a.ModuleIdentifier))
	case nil:
		return "", fmt.Errorf("%w: nil action", ErrInvalidAction)
	}
	return "", fmt.Errorf("%w: unsupported action %T", ErrInvalidAction, action)
}

func encodeLoadModules(a LoadModules) (string, error) {
	protocolType, err := ParseProtocolType(string(a.ProtocolType))
	if err != nil {
		return "", err
	}
	var obj literal
	obj.set("type", quote(string(ActionLoadModules)))
	obj.set("protocolType", orUndefined(string(protocolType)))
	return obj.String(), nil
}

func encodeCallMethod(target Target, method string, args []any, extra ...field) (string, error) {
	if method == "" {
		return "", fmt.Errorf("%w: method is required", ErrInvalidAction)
	}
	encodedArgs := "[]"
	if args != nil {
		raw, err := sonic.Marshal(args)
		if err != nil {
			return "", fmt.Errorf("%w: args: %v", ErrInvalidAction, err)
		}
		encodedArgs = string(raw)
	}

	var obj literal
	obj.set("type", quote(string(ActionCallMethod)))
	obj.set("target", quote(string(target)))
	obj.set("method", quote(method))
	obj.set("args", encodedArgs)
	for _, f := range extra {
		if f.err != nil {
			return "", f.err
		}
		obj.set(f.key, f.value)
	}
	return obj.String(), nil
}

type field struct {
	key   string
	value string
	err   error
}

func requiredString(key, value string) field {
	if value == "" {
		return field{err: fmt.Errorf("%w: %s is required", ErrInvalidAction, key)}
	}
	return field{key: key, value: quote(value)}
}

func optionalString(key, value string) field {
	return field{key: key, value: orUndefined(value)}
}

// literal keeps keys in insertion order so the rendered script is stable.
type literal struct {
	keys   []string
	values []string
}

func (l *literal) set(key, value string) {
	l.keys = append(l.keys, key)
	l.values = append(l.values, value)
}

func (l *literal) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, key := range l.keys {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(quote(key))
		b.WriteByte(':')
		b.WriteString(l.values[i])
	}
	b.WriteByte('}')
	return b.String()
}

const undefinedToken = "undefined"

func orUndefined(value string) string {
	if value == "" {
		return undefinedToken
	}
	return quote(value)
}

func quote(value string) string {
	s, err := sonic.MarshalString(value)
	if err != nil {
		// strings always marshal
		return `""`
	}
	return s
}

// CallRequest is the transport-neutral form of a call-method action.
type CallRequest struct {
	Target             string
	Method             string
	Args               []any
	ProtocolIdentifier string
	ModuleIdentifier   string
	NetworkID          string
}

// NewCallAction builds the call-method variant selected by req.Target. The
// protocol identifier is required for protocol targets and the module
// identifier for the serializer companion.
func NewCallAction(req CallRequest) (Action, error) {
	target, err := ParseTarget(req.Target)
	if err != nil {
		return nil, err
	}
	if req.Method == "" {
		return nil, fmt.Errorf("%w: method is required", ErrInvalidAction)
	}

	if target == TargetV3SerializerCompanion {
		if req.ModuleIdentifier == "" {
			return nil, fmt.Errorf("%w: moduleIdentifier is required", ErrInvalidAction)
		}
		return CallSerializerCompanionMethod{
			Method:           req.Method,
			Args:             req.Args,
			ModuleIdentifier: req.ModuleIdentifier,
		}, nil
	}

	if req.ProtocolIdentifier == "" {
		return nil, fmt.Errorf("%w: protocolIdentifier is required", ErrInvalidAction)
	}
	switch target {
	case TargetOnline:
		return CallOnlineProtocolMethod{
			Method:             req.Method,
			Args:               req.Args,
			ProtocolIdentifier: req.ProtocolIdentifier,
			NetworkID:          req.NetworkID,
		}, nil
	case TargetBlockExplorer:
		return CallBlockExplorerMethod{
			Method:             req.Method,
			Args:               req.Args,
			ProtocolIdentifier: req.ProtocolIdentifier,
			NetworkID:          req.NetworkID,
		}, nil
	default:
		return CallOfflineProtocolMethod{
			Method:             req.Method,
			Args:               req.Args,
			ProtocolIdentifier: req.ProtocolIdentifier,
		}, nil
	}
}

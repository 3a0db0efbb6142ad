package modules

import "strings"

// ModuleName names one sandboxed module bundle.
type ModuleName string

func (n ModuleName) String() string {
	return string(n)
}

const (
	Aeternity   ModuleName = "aeternity"
	Astar       ModuleName = "astar"
	Bitcoin     ModuleName = "bitcoin"
	Cosmos      ModuleName = "cosmos"
	Ethereum    ModuleName = "ethereum"
	Groestlcoin ModuleName = "groestlcoin"
	Moonbeam    ModuleName = "moonbeam"
	Polkadot    ModuleName = "polkadot"
	Tezos       ModuleName = "tezos"
)

type family struct {
	prefixes []string
	module   ModuleName
}

// Order matters: the first family with a matching prefix wins.
var families = []family{
	{prefixes: []string{"ae"}, module: Aeternity},
	{prefixes: []string{"astar", "shiden"}, module: Astar},
	{prefixes: []string{"btc"}, module: Bitcoin},
	{prefixes: []string{"cosmos"}, module: Cosmos},
	{prefixes: []string{"eth"}, module: Ethereum},
	{prefixes: []string{"grs"}, module: Groestlcoin},
	{prefixes: []string{"moonbeam", "moonriver", "moonbase"}, module: Moonbeam},
	{prefixes: []string{"polkadot", "kusama"}, module: Polkadot},
	{prefixes: []string{"xtz"}, module: Tezos},
}

// Resolve maps a protocol or module identifier to its module.
func Resolve(identifier string) (ModuleName, bool) {
	for _, f := range families {
		for _, prefix := range f.prefixes {
			if strings.HasPrefix(identifier, prefix) {
				return f.module, true
			}
		}
	}
	return "", false
}

// Lookup is Resolve returning a *ModuleNotFoundError for unknown identifiers.
func Lookup(identifier string) (ModuleName, error) {
	name, ok := Resolve(identifier)
	if !ok {
		return "", &ModuleNotFoundError{Identifier: identifier}
	}
	return name, nil
}

// Modules lists every known module in table order.
func Modules() []ModuleName {
	names := make([]ModuleName, 0, len(families))
	for _, f := range families {
		names = append(names, f.module)
	}
	return names
}

// IsKnown reports whether name is one of the bundled modules.
func IsKnown(name ModuleName) bool {
	for _, f := range families {
		if f.module == name {
			return true
		}
	}
	return false
}

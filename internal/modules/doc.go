/*
Package modules defines the protocol-module action protocol.

It maps caller identifiers to bundled module names, renders actions into the
invocation script evaluated inside a module context, and decodes the JSON
envelope that script returns.

# Wire protocol

Requests are object literals:

	{"type":"callMethod","target":"online","method":"getBalance","args":["..."],
	 "protocolIdentifier":"eth-main","networkId":undefined}

Responses are one of:

	{"result": <value>}        call-method actions
	{"loadModules": <value>}   LoadModules
	{"error": "<message>"}     module-reported failure

Field names are part of the contract with the protocol glue script and must
not change.
*/
package modules

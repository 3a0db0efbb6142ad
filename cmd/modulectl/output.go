package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/bytedance/sonic"
	"github.com/goccy/go-yaml"

	"github.com/GriffinCanCode/AgentOS/modulegate/internal/modules"
)

type formatter func(value any) ([]byte, error)

func formatterFor(output string) (formatter, error) {
	switch output {
	case "json", "":
		return func(value any) ([]byte, error) {
			return sonic.ConfigStd.MarshalIndent(value, "", "  ")
		}, nil
	case "yaml":
		return func(value any) ([]byte, error) {
			return yaml.Marshal(plain(value))
		}, nil
	}
	return nil, fmt.Errorf("unknown output format %q (want json or yaml)", output)
}

func writeValue(w io.Writer, output string, value any) error {
	format, err := formatterFor(output)
	if err != nil {
		return err
	}
	data, err := format(value)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	if len(data) == 0 || data[len(data)-1] != '\n' {
		_, err = io.WriteString(w, "\n")
	}
	return err
}

// plain turns json.Number into int64 or float64 where that is lossless, so
// YAML prints numbers rather than strings.
func plain(value any) any {
	switch v := value.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i
		}
		if f, err := v.Float64(); err == nil && json.Number(fmt.Sprint(f)) == v {
			return f
		}
		return v.String()
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = plain(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = plain(item)
		}
		return out
	case map[modules.ModuleName]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[string(key)] = plain(item)
		}
		return out
	}
	return value
}

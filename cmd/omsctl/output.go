package main

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// print writes v to out as JSON or YAML.
func (a *app) print(out io.Writer, v any) error {
	switch a.output {
	case "yaml", "yml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case "json", "":
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		_, err = fmt.Fprintln(out, string(b))
		return err
	default:
		return fmt.Errorf("unknown output format %q (valid: json, yaml)", a.output)
	}
}

func (a *app) done(out io.Writer, what string) error {
	return a.print(out, map[string]string{"status": "ok", "operation": what})
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package normalize

import (
	"bytes"
	"embed"
	"fmt"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// shapeSchemas holds the compiled schemas for each recognised response shape.
type shapeSchemas struct {
	files     *jsonschema.Schema
	canonical *jsonschema.Schema
	legacy    *jsonschema.Schema
}

var schemas = mustCompileSchemas()

func mustCompileSchemas() *shapeSchemas {
	s := &shapeSchemas{}
	for name, dst := range map[string]**jsonschema.Schema{
		"files.json":     &s.files,
		"canonical.json": &s.canonical,
		"legacy.json":    &s.legacy,
	} {
		sch, err := compileSchema(name)
		if err != nil {
			panic(err)
		}
		*dst = sch
	}
	return s
}

func compileSchema(name string) (*jsonschema.Schema, error) {
	data, err := schemaFS.ReadFile("schemas/" + name)
	if err != nil {
		return nil, fmt.Errorf("read schema %s: %w", name, err)
	}

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(name, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("add schema %s: %w", name, err)
	}
	sch, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", name, err)
	}
	return sch, nil
}

// matches reports whether v validates against sch.
func matches(sch *jsonschema.Schema, v map[string]any) bool {
	return sch.Validate(v) == nil
}

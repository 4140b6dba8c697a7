package api

import (
	"net/http"
	"reflect"
	"strings"
)

// buildOpenAPIDoc returns an OpenAPI 3.1 document covering every invoke command.
func buildOpenAPIDoc(version string) map[string]any {
	if version == "" {
		version = "dev"
	}
	paths := map[string]any{}
	for _, name := range commandNames() {
		paths["/invoke/"+name] = map[string]any{"post": buildCommandOperation(name, commands[name])}
	}

	return map[string]any{
		"openapi": "3.1.0",
		"info": map[string]any{
			"title":   "Mira Bridge",
			"version": version,
		},
		"paths": paths,
		"components": map[string]any{
			"securitySchemes": map[string]any{
				"BearerAuth": map[string]any{
					"type":   "http",
					"scheme": "bearer",
				},
			},
		},
	}
}

func buildCommandOperation(name string, cmd command) map[string]any {
	operation := map[string]any{
		"operationId": name,
		"summary":     cmd.summary,
		"tags":        []string{"invoke"},
		"responses": map[string]any{
			"200": map[string]any{"description": "Result envelope"},
			"400": map[string]any{"description": "Undecodable arguments"},
			"403": map[string]any{"description": "Insufficient scope"},
		},
		"security": []any{map[string]any{"BearerAuth": []string{}}},
	}
	if cmd.args != nil {
		operation["requestBody"] = map[string]any{
			"required": false,
			"content": map[string]any{
				"application/json": map[string]any{"schema": objectSchema(cmd.args)},
			},
		}
	}
	return operation
}

// objectSchema derives a flat JSON schema from a struct's json tags.
func objectSchema(v any) map[string]any {
	props := map[string]any{}
	t := reflect.TypeOf(v)
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			continue
		}
		props[name] = map[string]any{"type": jsonType(f.Type)}
	}
	return map[string]any{"type": "object", "properties": props}
}

func jsonType(t reflect.Type) string {
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			// json.RawMessage
			return "object"
		}
		return "array"
	case reflect.Int, reflect.Int64, reflect.Uint64:
		return "integer"
	}
	return "object"
}

// handleOpenAPI handles GET /openapi.json (no auth).
func (s *Server) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, buildOpenAPIDoc(s.config.Version))
}

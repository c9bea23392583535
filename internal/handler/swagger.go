package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dafibh/finora/finora-backend/docs"
	"github.com/labstack/echo/v4"
	"github.com/swaggo/swag"
)

// OpenAPI3Spec is the document served at /openapi.json
type OpenAPI3Spec struct {
	OpenAPI    string                 `json:"openapi"`
	Info       map[string]interface{} `json:"info"`
	Servers    []Server               `json:"servers"`
	Paths      map[string]interface{} `json:"paths"`
	Components map[string]interface{} `json:"components,omitempty"`
}

// Server represents an OpenAPI 3.0 server
type Server struct {
	URL         string `json:"url"`
	Description string `json:"description"`
}

// DocsHandler serves the swag description converted to OpenAPI 3
type DocsHandler struct {
	publicURL string
}

// NewDocsHandler creates a DocsHandler. publicURL is the externally visible
// origin of the API (PUBLIC_API_URL) and may be empty.
func NewDocsHandler(publicURL string) *DocsHandler {
	return &DocsHandler{publicURL: strings.TrimRight(publicURL, "/")}
}

// ServeOpenAPI3 serves GET /openapi.json
func (h *DocsHandler) ServeOpenAPI3(c echo.Context) error {
	doc, err := swag.ReadDoc(docs.SwaggerInfo.InstanceName())
	if err != nil {
		return NewInternalError(c, "Failed to read API description")
	}

	var swagger2 map[string]interface{}
	if err := json.Unmarshal([]byte(doc), &swagger2); err != nil {
		return NewInternalError(c, "Failed to parse API description")
	}

	basePath, _ := swagger2["basePath"].(string)
	info, _ := swagger2["info"].(map[string]interface{})
	paths, _ := swagger2["paths"].(map[string]interface{})

	components := make(map[string]interface{})
	if secDefs, ok := swagger2["securityDefinitions"].(map[string]interface{}); ok {
		components["securitySchemes"] = secDefs
	}
	if definitions, ok := swagger2["definitions"].(map[string]interface{}); ok {
		components["schemas"] = rewriteRefs(definitions)
	}

	return c.JSON(http.StatusOK, OpenAPI3Spec{
		OpenAPI:    "3.0.3",
		Info:       info,
		Servers:    h.servers(c, basePath),
		Paths:      convertPaths(paths),
		Components: components,
	})
}

// servers lists the configured public origin first, then the origin the
// request came in on when it differs.
func (h *DocsHandler) servers(c echo.Context, basePath string) []Server {
	servers := make([]Server, 0, 2)
	if h.publicURL != "" {
		servers = append(servers, Server{URL: h.publicURL + basePath, Description: "Public"})
	}
	local := c.Scheme() + "://" + c.Request().Host + basePath
	if len(servers) == 0 || servers[0].URL != local {
		servers = append(servers, Server{URL: local, Description: "This server"})
	}
	return servers
}

// rewriteRefs points every #/definitions/ reference at #/components/schemas/
func rewriteRefs(data interface{}) interface{} {
	switch v := data.(type) {
	case map[string]interface{}:
		result := make(map[string]interface{}, len(v))
		for key, value := range v {
			if ref, ok := value.(string); ok && key == "$ref" {
				result[key] = strings.Replace(ref, "#/definitions/", "#/components/schemas/", 1)
				continue
			}
			result[key] = rewriteRefs(value)
		}
		return result
	case []interface{}:
		result := make([]interface{}, len(v))
		for i, item := range v {
			result[i] = rewriteRefs(item)
		}
		return result
	}
	return data
}

func convertPaths(paths map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{}, len(paths))
	for path, item := range paths {
		methods, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		converted := make(map[string]interface{}, len(methods))
		for method, op := range methods {
			if operation, ok := op.(map[string]interface{}); ok {
				converted[method] = convertOperation(operation)
			}
		}
		result[path] = converted
	}
	return result
}

// convertOperation moves body and formData parameters into requestBody and
// wraps response schemas in a JSON content entry.
func convertOperation(op map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{}, len(op))
	for key, value := range op {
		switch key {
		case "consumes", "produces", "parameters", "responses":
		default:
			result[key] = rewriteRefs(value)
		}
	}

	params, _ := op["parameters"].([]interface{})
	var plain []interface{}
	formProps := make(map[string]interface{})
	var formRequired []string
	for _, raw := range params {
		param, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		switch param["in"] {
		case "body":
			result["requestBody"] = map[string]interface{}{
				"description": param["description"],
				"required":    param["required"],
				"content": map[string]interface{}{
					echo.MIMEApplicationJSON: map[string]interface{}{"schema": rewriteRefs(param["schema"])},
				},
			}
		case "formData":
			name, _ := param["name"].(string)
			formProps[name] = formDataSchema(param)
			if required, _ := param["required"].(bool); required {
				formRequired = append(formRequired, name)
			}
		default:
			plain = append(plain, convertParameter(param))
		}
	}
	if len(formProps) > 0 {
		schema := map[string]interface{}{"type": "object", "properties": formProps}
		if len(formRequired) > 0 {
			schema["required"] = formRequired
		}
		result["requestBody"] = map[string]interface{}{
			"required": len(formRequired) > 0,
			"content": map[string]interface{}{
				echo.MIMEMultipartForm: map[string]interface{}{"schema": schema},
			},
		}
	}
	if len(plain) > 0 {
		result["parameters"] = plain
	}

	if responses, ok := op["responses"].(map[string]interface{}); ok {
		converted := make(map[string]interface{}, len(responses))
		for code, raw := range responses {
			resp, ok := raw.(map[string]interface{})
			if !ok {
				continue
			}
			out := map[string]interface{}{"description": resp["description"]}
			if schema, ok := resp["schema"]; ok {
				out["content"] = map[string]interface{}{
					echo.MIMEApplicationJSON: map[string]interface{}{"schema": rewriteRefs(schema)},
				}
			}
			converted[code] = out
		}
		result["responses"] = converted
	}
	return result
}

// convertParameter moves the type fields of a path or query parameter into
// its schema.
func convertParameter(param map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{})
	for _, field := range []string{"name", "in", "description", "required"} {
		if val, ok := param[field]; ok {
			result[field] = val
		}
	}
	schema := make(map[string]interface{})
	for _, field := range []string{"type", "format", "enum", "default", "minimum", "maximum", "items"} {
		if val, ok := param[field]; ok {
			schema[field] = rewriteRefs(val)
		}
	}
	if len(schema) > 0 {
		result["schema"] = schema
	}
	return result
}

func formDataSchema(param map[string]interface{}) map[string]interface{} {
	if param["type"] == "file" {
		return map[string]interface{}{"type": "string", "format": "binary", "description": param["description"]}
	}
	return map[string]interface{}{"type": param["type"], "description": param["description"]}
}

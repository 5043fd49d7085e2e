package api

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/swaggo/swag"
)

// Info is the header of the generated API document
type Info struct {
	Title       string
	Description string
	Version     string
	Host        string
	BasePath    string
}

// SwaggerDoc renders the table as a Swagger 2.0 document
func SwaggerDoc(t *Table, info Info) map[string]any {
	paths := map[string]any{}
	tags := map[string]bool{}

	for _, r := range t.All() {
		path := MuxPath(r.Path())
		item, ok := paths[path].(map[string]any)
		if !ok {
			item = map[string]any{}
			paths[path] = item
		}
		item[strings.ToLower(r.Method())] = operation(r)
		tags[r.Tag()] = true
	}

	tagList := make([]map[string]any, 0, len(tags))
	for _, name := range sortedKeys(tags) {
		tagList = append(tagList, map[string]any{"name": name})
	}

	basePath := info.BasePath
	if basePath == "" {
		basePath = "/"
	}

	doc := map[string]any{
		"swagger": "2.0",
		"info": map[string]any{
			"title":       info.Title,
			"description": info.Description,
			"version":     info.Version,
		},
		"basePath": basePath,
		"schemes":  []string{"http", "https"},
		"consumes": []string{"application/json"},
		"produces": []string{"application/json"},
		"tags":     tagList,
		"paths":    paths,
		"securityDefinitions": map[string]any{
			"BearerAuth": map[string]any{
				"type":        "apiKey",
				"in":          "header",
				"name":        "Authorization",
				"description": `Type "Bearer" followed by a space and the session token.`,
			},
		},
	}
	if info.Host != "" {
		doc["host"] = info.Host
	}
	return doc
}

func operation(r *Route) map[string]any {
	var params []map[string]any
	for _, name := range r.Params() {
		params = append(params, map[string]any{
			"name": name, "in": "path", "required": true, "type": "integer",
		})
	}
	if q := r.Query(); q != nil {
		props, _ := q.Describe()["properties"].(map[string]any)
		for _, name := range sortedKeys(props) {
			params = append(params, map[string]any{
				"name": name, "in": "query", "required": false, "type": "string",
			})
		}
	}
	if in := r.Input(); in != nil {
		params = append(params, map[string]any{
			"name": "body", "in": "body", "required": true, "schema": in.Describe(),
		})
	}

	responses := map[string]any{}
	for _, status := range r.Statuses() {
		resp := map[string]any{"description": http.StatusText(status)}
		if v, _ := r.Response(status); v != nil {
			if s := v.Describe(); s != nil {
				resp["schema"] = s
			}
		}
		responses[strconv.Itoa(status)] = resp
	}

	op := map[string]any{
		"operationId": r.Name(),
		"summary":     r.Summary(),
		"tags":        []string{r.Tag()},
		"responses":   responses,
	}
	if len(params) > 0 {
		op["parameters"] = params
	}
	if !r.Public() {
		op["security"] = []map[string][]string{{"BearerAuth": {}}}
	}
	return op
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type swaggerDoc struct {
	doc string
}

func (d swaggerDoc) ReadDoc() string { return d.doc }

var registerOnce sync.Once

// RegisterSwagger publishes the generated document in the swag registry
// that http-swagger serves from. Only the first call has an effect.
func RegisterSwagger(t *Table, info Info) {
	registerOnce.Do(func() {
		raw, err := json.Marshal(SwaggerDoc(t, info))
		if err != nil {
			panic(err)
		}
		swag.Register(swag.Name, swaggerDoc{doc: string(raw)})
	})
}

package schema

import (
	"encoding/json"
	"net/url"
	"sort"
)

// ConsumerQuerySchema declares the list filters for consumers
var ConsumerQuerySchema = Define("ConsumerQuery",
	StringField("search"),
	StringField("status"),
)

// InventoryQuerySchema declares the list filters for inventory
var InventoryQuerySchema = Define("InventoryQuery",
	StringField("search"),
)

type ConsumerQuery struct {
	Search string `json:"search,omitempty"`
	Status string `json:"status,omitempty"`
}

type InventoryQuery struct {
	Search string `json:"search,omitempty"`
}

// QueryObject turns query parameters into a JSON object of strings, keeping
// the first value of repeated keys
func QueryObject(values url.Values) json.RawMessage {
	obj := make(map[string]string, len(values))
	for key, vals := range values {
		if len(vals) > 0 {
			obj[key] = vals[0]
		}
	}
	raw, _ := json.Marshal(obj)
	return raw
}

// QueryValues is the inverse of QueryObject; null and empty values are dropped
func QueryValues(raw json.RawMessage) url.Values {
	var obj map[string]*string
	_ = json.Unmarshal(raw, &obj)

	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	values := url.Values{}
	for _, k := range keys {
		if v := obj[k]; v != nil && *v != "" {
			values.Set(k, *v)
		}
	}
	return values
}

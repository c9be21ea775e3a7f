package entity

import "github.com/invopop/jsonschema"

// BindingInfo describes a host function exposed to script.
type BindingInfo struct {
	Name   string             `json:"name"`
	Params *jsonschema.Schema `json:"params,omitempty"`
}

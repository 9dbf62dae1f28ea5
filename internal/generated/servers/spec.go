package servers

import (
	_ "embed"
	"encoding/json"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/swaggo/swag"
)

//go:embed openapi.yaml
var rawSpec []byte

// GetSwagger parses the embedded OpenAPI document. Callers get a fresh copy
// they may mutate, e.g. to clear Servers before request validation.
func GetSwagger() (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(rawSpec)
	if err != nil {
		return nil, err
	}
	if err := doc.Validate(loader.Context); err != nil {
		return nil, err
	}
	return doc, nil
}

// SpecJSON renders the embedded document as JSON.
func SpecJSON() ([]byte, error) {
	doc, err := GetSwagger()
	if err != nil {
		return nil, err
	}
	return json.Marshal(doc)
}

// swaggerDoc serves the embedded document to echo-swagger through the swag registry.
type swaggerDoc struct {
	once sync.Once
	doc  string
}

func (d *swaggerDoc) ReadDoc() string {
	d.once.Do(func() {
		b, err := SpecJSON()
		if err != nil {
			d.doc = "{}"
			return
		}
		d.doc = string(b)
	})
	return d.doc
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}

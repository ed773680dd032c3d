// Package schemas embeds the JSON Schemas that constrain structured
// artifacts: the offer catalog and LLM-generated outreach messages.
// Embedding keeps validation available wherever the binary runs instead
// of depending on the working directory.
package schemas

import (
	"embed"
	"fmt"
)

//go:embed *.schema.json
var schemaFiles embed.FS

// Names of the embedded schema files.
const (
	OfferCatalogSchema    = "offer_catalog.schema.json"
	OutreachMessageSchema = "outreach_message.schema.json"
)

// Get returns the content of an embedded schema file.
func Get(name string) (string, error) {
	data, err := schemaFiles.ReadFile(name)
	if err != nil {
		return "", fmt.Errorf("failed to read embedded schema %s: %w", name, err)
	}
	return string(data), nil
}

// MustGet returns an embedded schema, panicking if it is missing.
// A missing schema is a build problem, not a runtime condition.
func MustGet(name string) string {
	content, err := Get(name)
	if err != nil {
		panic(fmt.Sprintf("failed to load schema: %v", err))
	}
	return content
}

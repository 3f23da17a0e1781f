// Package schemas embeds the JSON Schemas that describe the dashboard's data files.
package schemas

import "embed"

// Schema file names.
const (
	Tenders = "tenders.schema.json"
	Summary = "summary.schema.json"
)

//go:embed *.schema.json
var files embed.FS

// Read returns the contents of an embedded schema file.
func Read(name string) ([]byte, error) {
	return files.ReadFile(name)
}

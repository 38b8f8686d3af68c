// Package schemas embeds the JSON Schemas of the job-board API payloads.
package schemas

import "embed"

// Schema file names.
const (
	Job           = "job.schema.json"
	Application   = "application.schema.json"
	LoginResponse = "login_response.schema.json"
)

// FS holds every *.schema.json file of this directory.
//
//go:embed *.schema.json
var FS embed.FS

// Names returns the embedded schema file names.
func Names() []string {
	return []string{Job, Application, LoginResponse}
}

// Read returns the content of the named schema.
func Read(name string) (string, error) {
	data, err := FS.ReadFile(name)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// pkg/registry/schema.go
package registry

// TemplateRegistry is the versioned catalog of notification templates,
// loadable from a JSON file so copy changes do not require a rebuild.
type TemplateRegistry struct {
	Version     string     `json:"version"`
	LastUpdated string     `json:"lastUpdated"`
	Templates   []Template `json:"templates"`
}

// Template describes one notification type. Subject and Body use {{name}}
// placeholders; VariableSchema is a JSON schema the render data must satisfy
// before the template is considered safe to send.
type Template struct {
	ID             string                 `json:"id"`
	Type           string                 `json:"type"`
	Description    string                 `json:"description,omitempty"`
	Subject        string                 `json:"subject"`
	Body           string                 `json:"body"`
	Priority       string                 `json:"priority,omitempty"` // "high" templates also go out as SMS
	VariableSchema map[string]interface{} `json:"variableSchema,omitempty"`
	Version        string                 `json:"version,omitempty"`
}

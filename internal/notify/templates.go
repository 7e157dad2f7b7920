// internal/notify/templates.go
package notify

import (
	"fmt"
	"strings"

	"jobmate-backend/pkg/registry"
)

// defaultTemplates ship with the binary; a registry file on disk overrides
// them wholesale.
var defaultTemplates = []registry.Template{
	{
		ID:      "tmpl-application-received",
		Type:    "application_received",
		Subject: "Application received for {{jobTitle}}",
		Body: "Hi {{seekerName}},\n\nYour application for {{jobTitle}} at {{companyName}} " +
			"has been received. The recruiting team will review it shortly.\n\nJobMate",
		Priority: "normal",
		VariableSchema: map[string]interface{}{
			"type":     "object",
			"required": []interface{}{"seekerName", "jobTitle", "companyName"},
		},
	},
	{
		ID:      "tmpl-new-applicant",
		Type:    "new_applicant",
		Subject: "New applicant for {{jobTitle}}",
		Body: "A new candidate has applied to {{jobTitle}}. " +
			"Open the recruiter dashboard to review the application.\n\nJobMate",
		Priority: "normal",
		VariableSchema: map[string]interface{}{
			"type":     "object",
			"required": []interface{}{"jobTitle"},
		},
	},
	{
		ID:      "tmpl-application-status",
		Type:    "application_status",
		Subject: "Update on your application for {{jobTitle}}",
		Body: "Hi {{seekerName}},\n\nYour application for {{jobTitle}} at {{companyName}} " +
			"is now marked as {{status}}.\n\nJobMate",
		Priority: "normal",
		VariableSchema: map[string]interface{}{
			"type":     "object",
			"required": []interface{}{"seekerName", "jobTitle", "companyName", "status"},
		},
	},
}

// loadTemplates returns the template map, preferring the registry file at
// path when one is configured.
func loadTemplates(path string) (map[string]registry.Template, error) {
	if path == "" {
		reg := &registry.TemplateRegistry{Templates: defaultTemplates}
		return reg.ByType()
	}

	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return nil, fmt.Errorf("load template registry: %w", err)
	}
	return reg.ByType()
}

// renderTemplate substitutes {{key}} placeholders from data. Unknown
// placeholders are left in place so a copy mistake is visible, not silent.
func renderTemplate(template string, data map[string]interface{}) string {
	out := template
	for key, value := range data {
		out = strings.ReplaceAll(out, "{{"+key+"}}", fmt.Sprintf("%v", value))
	}
	return out
}

// cmd/tools/template-registry/main.go

// template-registry maintains the notification template catalog that
// internal/notify loads at startup. Copy edits go through this tool so the
// registry file stays well-formed.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"jobmate-backend/pkg/registry"

	"github.com/xeipuuv/gojsonschema"
)

var registryPath string

func main() {
	addCmd := flag.NewFlagSet("add", flag.ExitOnError)
	updateCmd := flag.NewFlagSet("update", flag.ExitOnError)
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)

	// Add command flags
	idAdd := addCmd.String("id", "", "Template ID (e.g., tmpl-application-status)")
	typeAdd := addCmd.String("type", "", "Notification type (e.g., application_status)")
	description := addCmd.String("description", "", "Description")
	subject := addCmd.String("subject", "", "Subject line, {{name}} placeholders allowed")
	body := addCmd.String("body", "", "Message body, {{name}} placeholders allowed")
	priority := addCmd.String("priority", "normal", "Priority (normal, high)")
	version := addCmd.String("version", "1.0.0", "Template version")
	addCmd.StringVar(&registryPath, "path", "configs/notification-templates.json", "Path to registry file")

	// Update command flags
	idUpdate := updateCmd.String("id", "", "Template ID to update")
	field := updateCmd.String("field", "", "Field to update (subject, body, priority, ...)")
	value := updateCmd.String("value", "", "New value for the field")
	updateCmd.StringVar(&registryPath, "path", "configs/notification-templates.json", "Path to registry file")

	// Validate command flags
	validateCmd.StringVar(&registryPath, "path", "configs/notification-templates.json", "Path to registry file")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "add":
		addCmd.Parse(os.Args[2:])
		if *idAdd == "" || *typeAdd == "" || *subject == "" || *body == "" {
			fmt.Println("Error: id, type, subject, and body are required for add.")
			addCmd.Usage()
			os.Exit(1)
		}
		tmpl := registry.Template{
			ID:          *idAdd,
			Type:        *typeAdd,
			Description: *description,
			Subject:     *subject,
			Body:        *body,
			Priority:    *priority,
			Version:     *version,
		}
		if err := addTemplate(&tmpl); err != nil {
			fmt.Printf("Error adding template: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Added template: %s\n", *idAdd)

	case "update":
		updateCmd.Parse(os.Args[2:])
		if *idUpdate == "" || *field == "" || *value == "" {
			fmt.Println("Error: id, field, and value are required for update.")
			updateCmd.Usage()
			os.Exit(1)
		}
		if err := updateTemplate(*idUpdate, *field, *value); err != nil {
			fmt.Printf("Error updating template: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Updated template %s, field %s\n", *idUpdate, *field)

	case "validate":
		validateCmd.Parse(os.Args[2:])
		if err := validateRegistry(); err != nil {
			fmt.Printf("Registry validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Registry validation passed.")

	case "help":
		fallthrough
	default:
		help()
	}
}

func addTemplate(tmpl *registry.Template) error {
	reg, err := registry.LoadRegistry(registryPath)
	if err != nil {
		// A missing file means this is the first template.
		if os.IsNotExist(err) {
			reg = &registry.TemplateRegistry{
				Version:     "1.0.0",
				LastUpdated: time.Now().Format(time.RFC3339),
				Templates:   []registry.Template{},
			}
		} else {
			return fmt.Errorf("failed to load registry: %w", err)
		}
	}

	for _, existing := range reg.Templates {
		if existing.ID == tmpl.ID {
			return fmt.Errorf("template with ID %s already exists", tmpl.ID)
		}
		if existing.Type == tmpl.Type {
			return fmt.Errorf("type %s is already served by template %s", tmpl.Type, existing.ID)
		}
	}

	reg.Templates = append(reg.Templates, *tmpl)
	reg.LastUpdated = time.Now().Format(time.RFC3339)

	return saveRegistry(reg, registryPath)
}

func updateTemplate(id, field, value string) error {
	reg, err := registry.LoadRegistry(registryPath)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	found := false
	for i := range reg.Templates {
		if reg.Templates[i].ID == id {
			found = true
			switch field {
			case "subject":
				reg.Templates[i].Subject = value
			case "body":
				reg.Templates[i].Body = value
			case "priority":
				if value != "normal" && value != "high" {
					return fmt.Errorf("priority must be normal or high, got %q", value)
				}
				reg.Templates[i].Priority = value
			case "description":
				reg.Templates[i].Description = value
			case "version":
				reg.Templates[i].Version = value
			default:
				return fmt.Errorf("unknown field: %s", field)
			}
			break
		}
	}

	if !found {
		return fmt.Errorf("template with ID %s not found", id)
	}

	reg.LastUpdated = time.Now().Format(time.RFC3339)
	return saveRegistry(reg, registryPath)
}

func validateRegistry() error {
	reg, err := registry.LoadRegistry(registryPath)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	if len(reg.Templates) == 0 {
		return fmt.Errorf("registry contains no templates")
	}

	if _, err := reg.ByType(); err != nil {
		return err
	}

	ids := make(map[string]bool)
	for _, tmpl := range reg.Templates {
		if ids[tmpl.ID] {
			return fmt.Errorf("duplicate template ID: %s", tmpl.ID)
		}
		ids[tmpl.ID] = true

		if tmpl.ID == "" {
			return fmt.Errorf("template missing required field: ID")
		}
		if tmpl.Type == "" {
			return fmt.Errorf("template %s missing required field: Type", tmpl.ID)
		}
		if tmpl.Subject == "" {
			return fmt.Errorf("template %s missing required field: Subject", tmpl.ID)
		}
		if tmpl.Body == "" {
			return fmt.Errorf("template %s missing required field: Body", tmpl.ID)
		}
		if p := tmpl.Priority; p != "" && p != "normal" && p != "high" {
			return fmt.Errorf("template %s has unknown priority %q", tmpl.ID, p)
		}

		// Placeholders must come in matched braces.
		if strings.Count(tmpl.Subject+tmpl.Body, "{{") != strings.Count(tmpl.Subject+tmpl.Body, "}}") {
			return fmt.Errorf("template %s has unbalanced placeholders", tmpl.ID)
		}

		// The variable schema has to compile, or sends will fail at runtime.
		if tmpl.VariableSchema != nil {
			loader := gojsonschema.NewGoLoader(tmpl.VariableSchema)
			if _, err := gojsonschema.NewSchema(loader); err != nil {
				return fmt.Errorf("template %s has an invalid variable schema: %w", tmpl.ID, err)
			}
		}
	}

	fmt.Printf("Registry validation passed. Found %d templates.\n", len(reg.Templates))
	return nil
}

// saveRegistry handles saving the registry to file
func saveRegistry(reg *registry.TemplateRegistry, path string) error {
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}

	return nil
}

func help() {
	fmt.Print(`
Usage: template-registry <command> [flags]

Commands:
  add      Add a new notification template to the registry
  update   Update an existing template's field
  validate Validate the registry file
  help     Show this help message

Examples:
  template-registry add -id tmpl-interview-invite -type interview_invite -subject "Interview for {{jobTitle}}" -body "Hi {{seekerName}}, ..."
  template-registry update -id tmpl-interview-invite -field priority -value high
  template-registry validate -path configs/notification-templates.json

Use 'template-registry <command> -h' for more information about a command.
`)
}

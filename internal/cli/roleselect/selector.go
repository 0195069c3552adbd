package roleselect

import (
	"fmt"

	"github.com/manifoldco/promptui"

	"github.com/placementcell/portal/internal/models"
)

type roleOption struct {
	Label string
	Role  models.Role
}

var options = []roleOption{
	{Label: "Student", Role: models.RoleStudent},
	{Label: "Placement cell (admin)", Role: models.RoleAdmin},
}

// Prompt shows an interactive prompt for the user to pick the role to log in as.
// remembered, when valid, is preselected.
func Prompt(remembered string) (models.Role, error) {
	cursor := 0
	for i, opt := range options {
		if string(opt.Role) == remembered {
			cursor = i
		}
	}

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "> {{ .Label | cyan }}",
		Inactive: "  {{ .Label }}",
		Selected: "✓ {{ .Label | green }}",
	}

	prompt := promptui.Select{
		Label:     "Log in as",
		Items:     options,
		Templates: templates,
		Size:      len(options),
		CursorPos: cursor,
	}

	idx, _, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("role selection cancelled: %w", err)
	}

	return options[idx].Role, nil
}

package steps

import (
	"bytes"
	"fmt"
	"path/filepath"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"github.com/mrz1836/qaforge/internal/domain"
	qaerrors "github.com/mrz1836/qaforge/internal/errors"
)

// Commands maps a collaborator step to its argv template. Every element is
// rendered with text/template and the sprig function set against
// CommandData; elements that render to an empty string are dropped.
type Commands map[domain.StepName][]string

// CommandData is the data an argv template is rendered against.
type CommandData struct {
	ScenarioID    string
	ScenarioTitle string
	ScenarioDir   string
	VariantsFile  string
	TestDataFile  string
	ScriptsDir    string
	PlanFile      string
	ScenariosFile string
	ToolsDir      string
}

// NewCommandData derives template data from a step target.
func NewCommandData(target *Target, toolsDir string) CommandData {
	return CommandData{
		ScenarioID:    target.Scenario.ID,
		ScenarioTitle: target.Scenario.Title,
		ScenarioDir:   target.Paths.Dir,
		VariantsFile:  target.Paths.Variants,
		TestDataFile:  target.Paths.TestData,
		ScriptsDir:    target.Paths.ScriptsDir,
		PlanFile:      target.Paths.Plan,
		ScenariosFile: target.ScenariosFile,
		ToolsDir:      filepath.Clean(toolsDir),
	}
}

// Render produces the argument vector for a step.
func (c Commands) Render(name domain.StepName, data CommandData) ([]string, error) {
	tmpl, ok := c[name]
	if !ok || len(tmpl) == 0 {
		return nil, qaerrors.Wrapf(qaerrors.ErrCollaboratorNotConfigured, "step %s", name)
	}

	args := make([]string, 0, len(tmpl))
	for i, raw := range tmpl {
		t, err := template.New(fmt.Sprintf("%s[%d]", name, i)).
			Funcs(sprig.TxtFuncMap()).
			Option("missingkey=error").
			Parse(raw)
		if err != nil {
			return nil, qaerrors.Wrapf(qaerrors.ErrConfiguration, "parse %s command argument %d: %v", name, i, err)
		}
		var buf bytes.Buffer
		if err := t.Execute(&buf, data); err != nil {
			return nil, qaerrors.Wrapf(qaerrors.ErrConfiguration, "render %s command argument %d: %v", name, i, err)
		}
		if buf.Len() > 0 {
			args = append(args, buf.String())
		}
	}
	if len(args) == 0 {
		return nil, qaerrors.Wrapf(qaerrors.ErrCollaboratorNotConfigured, "step %s rendered no arguments", name)
	}
	return args, nil
}

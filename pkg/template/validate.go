package template

import (
	"fmt"
	"path"
	"strings"

	"github.com/deckforge/deckforge/pkg/opc"
)

// ValidationReport lists structural problems found in a template.
// Errors make the template unusable; warnings are survivable defects.
type ValidationReport struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// OK reports whether the template passed without errors.
func (r *ValidationReport) OK() bool {
	return len(r.Errors) == 0
}

// Validate checks the template for missing structural pieces: the theme
// part, the content type registry, and dangling relationship targets.
func (t *Template) Validate() (*ValidationReport, error) {
	report := &ValidationReport{}

	if !t.pkg.Has(t.themePart) {
		report.Errors = append(report.Errors, fmt.Sprintf("missing theme part: %s", t.themePart))
	}

	if !t.pkg.Has(opc.ContentTypesPart) {
		report.Errors = append(report.Errors, "missing "+opc.ContentTypesPart)
	} else if !opc.HasOverride(t.pkg, t.themePart) {
		report.Warnings = append(report.Warnings, fmt.Sprintf("no content type override for /%s", t.themePart))
	}

	if err := t.validateRelationshipTargets(report); err != nil {
		return nil, err
	}
	return report, nil
}

func (t *Template) validateRelationshipTargets(report *ValidationReport) error {
	for _, relsPart := range t.pkg.Parts() {
		if !strings.HasSuffix(relsPart, ".rels") {
			continue
		}
		source := opc.SourcePartFor(relsPart)
		rels, err := opc.Relationships(t.pkg, source)
		if err != nil {
			return err
		}
		for _, rel := range rels {
			if rel.IsExternal() || rel.Target == "" {
				continue
			}
			target := opc.ResolveTarget(sourceDir(source), rel.Target)
			if !t.pkg.Has(target) {
				report.Errors = append(report.Errors,
					fmt.Sprintf("missing rel target: %s -> %s", relsPart, rel.Target))
			}
		}
	}
	return nil
}

func sourceDir(source string) string {
	if source == "" {
		return ""
	}
	dir := path.Dir(source)
	if dir == "." {
		return ""
	}
	return dir
}

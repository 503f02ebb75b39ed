package checker

import (
	"context"
	"fmt"
	"strings"
)

const (
	formValidationMissingDetail = "No client-side validations found."
	formValidationAdvice        = "Add proper validation attributes like `required`, `pattern`, `minlength`, and `maxlength` for better form validation."
	unnamedField                = "unnamed"
)

// FormValidationCheck lists the HTML5 validation attributes on form controls.
type FormValidationCheck struct {
	fetcher Fetcher
}

func NewFormValidationCheck(fetcher Fetcher) *FormValidationCheck {
	return &FormValidationCheck{fetcher: fetcher}
}

func (c *FormValidationCheck) Name() CheckName { return CheckFormValidation }

func (c *FormValidationCheck) Run(ctx context.Context, target Target) (Finding, error) {
	_, doc, err := fetchDocument(ctx, c.fetcher, target)
	if err != nil {
		return Finding{}, err
	}

	fields := doc.Select(formFieldSelector)
	var lines []string
	for _, field := range fields {
		lines = append(lines, fieldValidations(field)...)
	}

	var ev evidence
	ev.addf("fields_inspected", "%d", len(fields))
	if len(lines) == 0 {
		return failFinding(CheckFormValidation, formValidationMissingDetail, formValidationAdvice, ev), nil
	}

	for _, line := range lines {
		ev.add("validation", line)
	}
	return passFinding(CheckFormValidation, strings.Join(lines, "; "), ev), nil
}

// fieldValidations describes each validation attribute present on one control.
func fieldValidations(field Element) []string {
	name, ok := field.Attr("name")
	if !ok || strings.TrimSpace(name) == "" {
		name = unnamedField
	}

	var lines []string
	if _, ok := field.Attr("required"); ok {
		lines = append(lines, fmt.Sprintf("Field '%s' is required", name))
	}
	if _, ok := field.Attr("pattern"); ok {
		lines = append(lines, fmt.Sprintf("Field '%s' has a pattern", name))
	}
	if v, ok := field.Attr("minlength"); ok {
		lines = append(lines, fmt.Sprintf("Field '%s' has a minlength of %s", name, v))
	}
	if v, ok := field.Attr("maxlength"); ok {
		lines = append(lines, fmt.Sprintf("Field '%s' has a maxlength of %s", name, v))
	}
	if v, ok := field.Attr("type"); ok && strings.EqualFold(strings.TrimSpace(v), "email") {
		lines = append(lines, fmt.Sprintf("Field '%s' requires email format", name))
	}
	return lines
}

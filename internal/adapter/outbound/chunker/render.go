package chunker

import (
	"fmt"
	"sort"
	"strings"

	"github.com/soapsift/soapsift/internal/domain"
)

// RenderSpec produces the full textual rendering of a CommonSpec used by the
// fixed-size and semantic strategies. Sections are separated by blank lines
// so paragraph-based splitting has natural boundaries.
func RenderSpec(spec *domain.CommonSpec) string {
	sections := []string{renderOverview(spec), renderAuth(spec)}
	for i := range spec.Operations {
		sections = append(sections, renderOperation(&spec.Operations[i]))
	}
	if dm := renderDataModel(spec); dm != "" {
		sections = append(sections, dm)
	}
	if integ := renderIntegration(spec); integ != "" {
		sections = append(sections, integ)
	}
	return strings.Join(sections, "\n\n")
}

func renderOverview(spec *domain.CommonSpec) string {
	var b strings.Builder
	fmt.Fprintf(&b, "API: %s (version %s).", spec.APIName, spec.Version)
	if spec.Description != "" {
		fmt.Fprintf(&b, " %s", spec.Description)
	}
	if spec.BaseURL != "" {
		fmt.Fprintf(&b, " Base URL: %s.", spec.BaseURL)
	}
	if spec.Category != "" {
		fmt.Fprintf(&b, " Category: %s.", spec.Category)
	}
	fmt.Fprintf(&b, " Operations: %d.", len(spec.Operations))
	return b.String()
}

func renderAuth(spec *domain.CommonSpec) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Authentication: %s.", spec.Auth.Type)
	if spec.Auth.Description != "" {
		fmt.Fprintf(&b, " %s", spec.Auth.Description)
	}
	if spec.Auth.Location != "" {
		fmt.Fprintf(&b, " Credentials are supplied via %s", spec.Auth.Location)
		if spec.Auth.ParamName != "" {
			fmt.Fprintf(&b, " parameter %q", spec.Auth.ParamName)
		}
		b.WriteString(".")
	}
	return b.String()
}

func renderOperation(op *domain.Operation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Operation: %s.", op.Name)
	if op.SOAPAction != "" {
		fmt.Fprintf(&b, " Action: %s.", op.SOAPAction)
	}
	if op.Path != "" {
		fmt.Fprintf(&b, " Path: %s.", op.Path)
	}
	if op.Documentation != "" {
		fmt.Fprintf(&b, " %s", op.Documentation)
	}
	if op.Security != "" {
		fmt.Fprintf(&b, " Requires %s authentication.", op.Security)
	}
	if len(op.Input) > 0 {
		fmt.Fprintf(&b, "\nParameters: %s.", renderAttributes(op.Input))
	}
	for _, code := range sortedCodes(op.Responses) {
		body := op.Responses[code]
		fmt.Fprintf(&b, "\nResponse %s: %s.", code, renderAttributes(body.Attributes))
	}
	return b.String()
}

// renderDataModel aggregates every distinct attribute across all operations.
func renderDataModel(spec *domain.CommonSpec) string {
	seen := make(map[string]bool)
	var fields []string
	record := func(attrs []domain.ResolvedAttribute) {
		for _, a := range domain.FlattenAttributes(attrs) {
			key := a.Name + ":" + a.Type
			if !seen[key] {
				seen[key] = true
				fields = append(fields, fmt.Sprintf("%s (%s)", a.Name, a.Type))
			}
		}
	}
	for _, op := range spec.Operations {
		record(op.Input)
		for _, body := range op.Responses {
			record(body.Attributes)
		}
	}
	if len(fields) == 0 {
		return ""
	}
	return fmt.Sprintf("Data model for %s: %s.", spec.APIName, strings.Join(fields, ", "))
}

func renderIntegration(spec *domain.CommonSpec) string {
	integ := spec.Integration
	if len(integ.Steps) == 0 && integ.BestPractices == "" && len(integ.UseCases) == 0 && len(integ.Custom) == 0 {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Integration guidance for %s.", spec.APIName)
	if len(integ.Steps) > 0 {
		fmt.Fprintf(&b, " Steps: %s.", strings.Join(integ.Steps, "; "))
	}
	if integ.BestPractices != "" {
		fmt.Fprintf(&b, " Best practices: %s", integ.BestPractices)
	}
	if len(integ.UseCases) > 0 {
		fmt.Fprintf(&b, " Use cases: %s.", strings.Join(integ.UseCases, "; "))
	}
	for _, key := range sortedMetaKeys(integ.Custom) {
		fmt.Fprintf(&b, " %s: %s.", key, renderMeta(integ.Custom[key]))
	}
	return b.String()
}

// renderAttributes serializes an attribute tree inline, marking circular
// sentinels and descending into children.
func renderAttributes(attrs []domain.ResolvedAttribute) string {
	parts := make([]string, 0, len(attrs))
	for _, a := range attrs {
		s := fmt.Sprintf("%s (%s)", a.Name, a.Type)
		if a.Circular {
			s += " [circular]"
		}
		if len(a.Children) > 0 {
			s += " {" + renderAttributes(a.Children) + "}"
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ", ")
}

func renderMeta(v domain.MetaValue) string {
	switch v.Kind {
	case domain.MetaString:
		return v.Str
	case domain.MetaNumber:
		return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%f", v.Num), "0"), ".")
	case domain.MetaList:
		parts := make([]string, 0, len(v.List))
		for _, item := range v.List {
			parts = append(parts, renderMeta(item))
		}
		return strings.Join(parts, "; ")
	case domain.MetaMap:
		parts := make([]string, 0, len(v.Map))
		for _, key := range sortedMetaKeys(v.Map) {
			parts = append(parts, key+"="+renderMeta(v.Map[key]))
		}
		return strings.Join(parts, "; ")
	default:
		return ""
	}
}

func sortedCodes(responses map[string]domain.ResponseBody) []string {
	codes := make([]string, 0, len(responses))
	for code := range responses {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

func sortedMetaKeys(m map[string]domain.MetaValue) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

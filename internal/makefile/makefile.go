// SPDX-License-Identifier: MPL-2.0

// Package makefile renders a rules.RuleSet as a make include file.
//
// The output is a pure function of the rule set: identical rule sets render to
// identical bytes, and nothing time-dependent is written.
package makefile

import (
	"fmt"
	"os"
	"strings"

	"github.com/invowk/packmk/internal/rules"
)

// Header is the first line of every rendered file.
const Header = "# Generated by packmk. Do not edit; run packmk --generate-makefile."

// listIndent aligns continuation lines under the first PACKS entry.
var listIndent = strings.Repeat(" ", len(rules.PacksVar+" := "))

// Render serializes rs.
func Render(rs *rules.RuleSet) []byte {
	var sb strings.Builder

	sb.WriteString(Header)
	sb.WriteString("\n\n")
	fmt.Fprintf(&sb, "%s := %s\n", rules.OutputDirVar, rs.OutputDir)

	for _, r := range rs.Artifacts {
		sb.WriteString("\n")
		writeRule(&sb, r)
	}

	sb.WriteString("\n")
	writeList(&sb, rules.PacksVar, rs.Targets())

	fmt.Fprintf(&sb, "\n.PHONY: %s %s\n", rules.PacksTarget, rules.AddonTarget)
	fmt.Fprintf(&sb, "\n%s: $(%s)\n", rules.PacksTarget, rules.PacksVar)

	sb.WriteString("\n")
	writeRule(&sb, rs.Aggregate)

	fmt.Fprintf(&sb, "\n%s := %s\n", rules.AddonVar, rs.Aggregate.Target)
	fmt.Fprintf(&sb, "\n%s: $(%s)\n", rules.AddonTarget, rules.AddonVar)

	return []byte(sb.String())
}

// WriteFile renders rs to path, replacing any previous content.
func WriteFile(path string, rs *rules.RuleSet) error {
	if err := os.WriteFile(path, Render(rs), 0o644); err != nil {
		return fmt.Errorf("write rule file: %w", err)
	}
	return nil
}

func writeRule(sb *strings.Builder, r rules.Rule) {
	sb.WriteString(r.Target)
	sb.WriteString(":")
	for _, p := range r.Prerequisites {
		sb.WriteString(" ")
		sb.WriteString(p)
	}
	sb.WriteString("\n")
	for _, line := range r.Recipe {
		sb.WriteString("\t")
		sb.WriteString(line)
		sb.WriteString("\n")
	}
}

func writeList(sb *strings.Builder, name string, items []string) {
	sb.WriteString(name)
	sb.WriteString(" :=")
	for i, item := range items {
		if i == 0 {
			sb.WriteString(" ")
		} else {
			sb.WriteString(" \\\n")
			sb.WriteString(listIndent)
		}
		sb.WriteString(item)
	}
	sb.WriteString("\n")
}

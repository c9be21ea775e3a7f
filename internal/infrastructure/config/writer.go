package config

import (
	"bytes"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

var sectionHeader = regexp.MustCompile(`^\s*\[([^\]]+)\]\s*$`)

// WriteConfigOrdered writes the configuration to disk with TOML sections
// sorted alphabetically so regenerated files diff cleanly.
func WriteConfigOrdered(cfg *Config, path string) error {
	data, err := EncodeTOML(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, filePerm); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// EncodeTOML renders cfg the way WriteConfigOrdered stores it.
func EncodeTOML(cfg *Config) ([]byte, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(cfg); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return []byte(sortTOMLSections(buf.String())), nil
}

// sortTOMLSections reorders [section] blocks by header. Lines before the
// first header stay on top.
func sortTOMLSections(content string) string {
	type section struct {
		header string
		lines  []string
	}

	var (
		preamble []string
		sections []section
	)
	for _, line := range strings.Split(content, "\n") {
		if match := sectionHeader.FindStringSubmatch(line); match != nil {
			sections = append(sections, section{header: match[1], lines: []string{line}})
			continue
		}
		if len(sections) == 0 {
			preamble = append(preamble, line)
			continue
		}
		last := &sections[len(sections)-1]
		last.lines = append(last.lines, line)
	}

	sort.SliceStable(sections, func(i, j int) bool {
		return sections[i].header < sections[j].header
	})

	var out strings.Builder
	writeBlock := func(lines []string) {
		block := strings.TrimRight(strings.Join(lines, "\n"), "\n")
		if block == "" {
			return
		}
		if out.Len() > 0 {
			out.WriteString("\n\n")
		}
		out.WriteString(block)
	}
	writeBlock(preamble)
	for _, sec := range sections {
		writeBlock(sec.lines)
	}
	if out.Len() == 0 {
		return ""
	}
	out.WriteString("\n")
	return out.String()
}

package history

import (
	"bytes"
	"fmt"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

// FileVersion is written into every history.yaml.
const FileVersion = "1.0"

// The history file keeps parallel ordered sections: logs holds the literal
// user commands, actions the fully pinned reproducible commands, debug the
// per-entry platform context. The packages section is derived from the
// entries at encode time and is never authoritative.
type fileDoc struct {
	Name        string          `yaml:"name"`
	ID          string          `yaml:"id"`
	FileVersion string          `yaml:"history-file-version"`
	Channels    []string        `yaml:"channels"`
	Packages    orderedPackages `yaml:"packages"`
	Logs        []string        `yaml:"logs"`
	Actions     []string        `yaml:"actions"`
	Debug       []debugDoc      `yaml:"debug"`
}

type debugDoc struct {
	Platform     string `yaml:"platform"`
	CondaVersion string `yaml:"conda_version,omitempty"`
	PipVersion   string `yaml:"pip_version,omitempty"`
	ToolVersion  string `yaml:"tool_version,omitempty"`
	Timestamp    string `yaml:"timestamp"`
}

type readDoc struct {
	Name     string     `yaml:"name"`
	ID       string     `yaml:"id"`
	Channels []string   `yaml:"channels"`
	Logs     []string   `yaml:"logs"`
	Actions  []string   `yaml:"actions"`
	Debug    []debugDoc `yaml:"debug"`
}

// orderedPackages serializes the live package set with ecosystems in
// canonical conda, pip, r order and packages sorted by name, so re-encoding
// an unchanged log is byte-identical and diffs stay minimal.
type orderedPackages struct {
	latest map[Ecosystem]map[string]ResolvedSpec
}

func (p orderedPackages) MarshalYAML() (interface{}, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, eco := range Ecosystems {
		pkgs := p.latest[eco]
		if len(pkgs) == 0 {
			continue
		}
		names := make([]string, 0, len(pkgs))
		for name := range pkgs {
			names = append(names, name)
		}
		sort.Strings(names)
		section := &yaml.Node{Kind: yaml.MappingNode}
		for _, name := range names {
			section.Content = append(section.Content,
				strNode(name), strNode(pkgs[name].Version))
		}
		root.Content = append(root.Content, strNode(string(eco)), section)
	}
	return root, nil
}

func strNode(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

// Encode serializes the history into the history.yaml format.
func Encode(h *History) ([]byte, error) {
	doc := fileDoc{
		Name:        h.Name,
		ID:          h.ID,
		FileVersion: FileVersion,
		Channels:    h.Channels,
		Packages:    orderedPackages{latest: h.Latest()},
	}
	for _, e := range h.Entries {
		doc.Logs = append(doc.Logs, e.Log)
		doc.Actions = append(doc.Actions, e.Action)
		doc.Debug = append(doc.Debug, debugDoc{
			Platform:     e.Debug.Platform,
			CondaVersion: e.Debug.CondaVersion,
			PipVersion:   e.Debug.PipVersion,
			ToolVersion:  e.Debug.ToolVersion,
			Timestamp:    e.Timestamp.UTC().Format(time.RFC3339Nano),
		})
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("failed to encode history: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode history: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode parses history.yaml content. Structural damage (undecodable yaml,
// mismatched section lengths, out-of-order timestamps, a missing name)
// fails with *CorruptLogError; entries are never silently dropped.
func Decode(data []byte, path string) (*History, error) {
	var doc readDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &CorruptLogError{Path: path, Reason: "invalid yaml", Err: err}
	}
	if doc.Name == "" {
		return nil, &CorruptLogError{Path: path, Reason: "missing environment name"}
	}
	if len(doc.Logs) != len(doc.Actions) || len(doc.Logs) != len(doc.Debug) {
		return nil, &CorruptLogError{Path: path, Reason: fmt.Sprintf(
			"truncated sections: %d logs, %d actions, %d debug entries",
			len(doc.Logs), len(doc.Actions), len(doc.Debug))}
	}
	h := &History{Name: doc.Name, ID: doc.ID, Channels: doc.Channels}
	var last time.Time
	for i := range doc.Logs {
		ts, err := time.Parse(time.RFC3339Nano, doc.Debug[i].Timestamp)
		if err != nil {
			return nil, &CorruptLogError{Path: path, Reason: fmt.Sprintf(
				"entry %d has an unparseable timestamp %q", i, doc.Debug[i].Timestamp), Err: err}
		}
		if i > 0 && !ts.After(last) {
			return nil, &CorruptLogError{Path: path, Reason: fmt.Sprintf(
				"entry %d timestamp %s is not after entry %d", i, doc.Debug[i].Timestamp, i-1)}
		}
		last = ts
		entry, err := ParseEntry(doc.Logs[i], doc.Actions[i], DebugInfo{
			Platform:     doc.Debug[i].Platform,
			CondaVersion: doc.Debug[i].CondaVersion,
			PipVersion:   doc.Debug[i].PipVersion,
			ToolVersion:  doc.Debug[i].ToolVersion,
			Timestamp:    ts,
		})
		if err != nil {
			return nil, &CorruptLogError{Path: path, Reason: fmt.Sprintf("entry %d", i), Err: err}
		}
		h.Entries = append(h.Entries, entry)
	}
	return h, nil
}

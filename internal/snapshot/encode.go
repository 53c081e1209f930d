package snapshot

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// CondaEnvYAML renders conda-env.yaml: the portable, declarative manifest
// for the conda ecosystem with the pip section nested the way conda env
// files expect. The nodefaults channel is appended so applying the file
// never mixes in channels from the machine's condarc.
func (s *Snapshot) CondaEnvYAML() ([]byte, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}
	root.Content = append(root.Content, scalar("name"), scalar(s.Name))

	channels := &yaml.Node{Kind: yaml.SequenceNode}
	hasNoDefaults := false
	for _, c := range s.Channels {
		if c == "nodefaults" {
			hasNoDefaults = true
		}
		channels.Content = append(channels.Content, scalar(c))
	}
	if !hasNoDefaults {
		channels.Content = append(channels.Content, scalar("nodefaults"))
	}
	root.Content = append(root.Content, scalar("channels"), channels)

	deps := &yaml.Node{Kind: yaml.SequenceNode}
	for _, p := range s.Conda {
		deps.Content = append(deps.Content, scalar(fmt.Sprintf("%s=%s", p.Name, p.Version)))
	}
	if len(s.Pip) > 0 {
		pipSeq := &yaml.Node{Kind: yaml.SequenceNode}
		for _, p := range s.Pip {
			if p.Custom != "" {
				pipSeq.Content = append(pipSeq.Content, scalar(p.Custom))
				continue
			}
			pipSeq.Content = append(pipSeq.Content, scalar(fmt.Sprintf("%s==%s", p.Name, p.Version)))
		}
		pipMap := &yaml.Node{Kind: yaml.MappingNode}
		pipMap.Content = append(pipMap.Content, scalar("pip"), pipSeq)
		deps.Content = append(deps.Content, pipMap)
	}
	root.Content = append(root.Content, scalar("dependencies"), deps)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return nil, fmt.Errorf("failed to encode conda-env.yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode conda-env.yaml: %w", err)
	}
	return buf.Bytes(), nil
}

func scalar(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

// InstallR renders install.R: one pinned install command per surviving R
// package, in install order, with the recorded version and date.
func (s *Snapshot) InstallR() string {
	if len(s.RScripts) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, r := range s.RScripts {
		sb.WriteString(fmt.Sprintf("%s  # %s %s (%s)\n",
			r.Command, r.Name, r.Version, r.Date.UTC().Format("2006-01-02")))
	}
	return sb.String()
}

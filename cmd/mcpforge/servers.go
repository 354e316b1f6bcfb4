package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ServerEntry is one repository in a servers.yaml batch file.
type ServerEntry struct {
	Name       string `yaml:"name,omitempty"`
	Repository string `yaml:"repository"`
	Branch     string `yaml:"branch,omitempty"`
}

type serverList struct {
	Servers []ServerEntry `yaml:"servers"`
}

func readServerList(path string) ([]ServerEntry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var list serverList
	if err := yaml.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(list.Servers) == 0 {
		return nil, fmt.Errorf("%s lists no servers", path)
	}
	for i, srv := range list.Servers {
		if srv.Repository == "" {
			return nil, fmt.Errorf("%s: server %d has no repository", path, i)
		}
	}
	return list.Servers, nil
}

func writeServerList(path string, servers []ServerEntry) error {
	raw, err := yaml.Marshal(serverList{Servers: servers})
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}

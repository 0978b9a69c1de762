package cmd

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/OpenTraceLab/OpenTraceDFT/pkg/device"
	"github.com/OpenTraceLab/OpenTraceDFT/pkg/icl"
	"github.com/OpenTraceLab/OpenTraceDFT/pkg/sibnet"
)

// fileProfile is the on-disk TOML shape of a device profile.
type fileProfile struct {
	Name            string `toml:"name"`
	IDCode          string `toml:"idcode"`
	CoreInputWidth  int    `toml:"core_input_width"`
	CoreOutputWidth int    `toml:"core_output_width"`
	Topology        string `toml:"topology"`
}

// profile is a loaded device profile, ready to instantiate.
type profile struct {
	Name     string
	Config   device.Config
	Topology sibnet.Topology
}

func loadProfile(path string) (profile, error) {
	var raw fileProfile
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return profile{}, fmt.Errorf("load device profile: %w", err)
	}

	p := profile{Name: "device"}
	if meta.IsDefined("name") {
		name := strings.TrimSpace(raw.Name)
		if name != "" {
			p.Name = name
		}
	}

	if meta.IsDefined("idcode") {
		id, err := strconv.ParseUint(strings.TrimSpace(raw.IDCode), 0, 32)
		if err != nil {
			return profile{}, fmt.Errorf("parse idcode: %w", err)
		}
		p.Config.IDCode = uint32(id)
	}

	p.Config.CoreInputWidth = raw.CoreInputWidth
	p.Config.CoreOutputWidth = raw.CoreOutputWidth

	if meta.IsDefined("topology") {
		topoPath := strings.TrimSpace(raw.Topology)
		if !filepath.IsAbs(topoPath) {
			topoPath = filepath.Join(filepath.Dir(path), topoPath)
		}
		topo, err := loadTopology(topoPath)
		if err != nil {
			return profile{}, err
		}
		p.Topology = topo
		p.Config.Topology = topo
	}

	return p, nil
}

func loadTopology(path string) (sibnet.Topology, error) {
	parser, err := icl.NewParser()
	if err != nil {
		return sibnet.Topology{}, err
	}
	file, err := parser.ParseFile(path)
	if err != nil {
		return sibnet.Topology{}, err
	}
	return file.Topology()
}

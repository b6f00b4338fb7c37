// Package config collects every tunable constant of the placement flow in
// one YAML-loadable structure, so the convergence knobs the algorithms
// depend on are named parameters rather than magic numbers.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Global tunes the analytical global placer.
type Global struct {
	MaxIter          int     `yaml:"max_iter"`
	B2BUpdateMaxIter int     `yaml:"b2b_update_max_iter"`
	CGMaxIter        int     `yaml:"cg_iteration_max_num"`
	CGTolerance      float64 `yaml:"cg_tolerance"`
	CGStopCriterion  float64 `yaml:"cg_stop_criterion"`
	SimPLCriterion   float64 `yaml:"simpl_lal_converge_criterion"`
	PolarCriterion   float64 `yaml:"polar_converge_criterion"`
	Criterion        string  `yaml:"criterion"` // "simpl" or "polar"
	NetModel         string  `yaml:"net_model"` // "b2b", "star", "hpwl", "star-hpwl"
	CellsPerBin      int     `yaml:"cells_per_bin"`
	ClusterUpperSize int     `yaml:"cluster_upper_size"`
	CenterWeight     float64 `yaml:"center_weight"` // 0 selects 0.03/√N
	AlphaInit        float64 `yaml:"alpha_init"`
	AlphaGrowth      float64 `yaml:"alpha_growth"`
	Seed             int64   `yaml:"seed"`
}

// Legal tunes the Tetris legalizer.
type Legal struct {
	MaxIter int     `yaml:"max_iter"`
	KWidth  float64 `yaml:"k_width"`
	KHeight float64 `yaml:"k_height"`
	KLeft   float64 `yaml:"k_left"`
}

// Well tunes the well-aware legalization flow.
type Well struct {
	PackMaxIter      int     `yaml:"pack_max_iter"`
	ConsensusMaxIter int     `yaml:"consensus_max_iter"`
	ConsensusEpsilon float64 `yaml:"consensus_epsilon"`
	Lambda           float64 `yaml:"lambda"`
	CheckerBoard     bool    `yaml:"checker_board"`
	TapInterval      float64 `yaml:"tap_interval_microns"` // 0 selects the rule default
	EndCaps          bool    `yaml:"end_caps"`
	FirstRowOrientN  bool    `yaml:"first_row_orient_n"`
}

// Params is the full tuning surface.
type Params struct {
	Global Global `yaml:"global"`
	Legal  Legal  `yaml:"legal"`
	Well   Well   `yaml:"well"`
}

// Default returns the shipped tuning.
func Default() Params {
	return Params{
		Global: Global{
			MaxIter:          100,
			B2BUpdateMaxIter: 50,
			CGMaxIter:        100,
			CGTolerance:      1e-5,
			CGStopCriterion:  1e-3,
			SimPLCriterion:   0.01,
			PolarCriterion:   0.08,
			Criterion:        "simpl",
			NetModel:         "b2b",
			CellsPerBin:      30,
			ClusterUpperSize: 512,
			AlphaInit:        0.002,
			AlphaGrowth:      1.2,
			Seed:             1,
		},
		Legal: Legal{MaxIter: 10, KLeft: 1},
		Well: Well{
			PackMaxIter:      10,
			ConsensusMaxIter: 10,
			ConsensusEpsilon: 0.1,
			Lambda:           1,
			EndCaps:          true,
			FirstRowOrientN:  true,
		},
	}
}

// Load overlays a YAML file onto the defaults. A missing path returns the
// defaults unchanged.
func Load(path string) (Params, error) {
	p := Default()
	if path == "" {
		return p, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("config: %w", err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return p, nil
}

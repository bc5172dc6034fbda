package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ScenarioStep is one scripted tick in a scenario file. Repeat expands the
// step over multiple consecutive ticks (0 and 1 both mean one tick).
type ScenarioStep struct {
	Repeat int `yaml:"repeat"`

	Reset  bool   `yaml:"reset"`
	Enable bool   `yaml:"enable"`
	Data   uint64 `yaml:"data"`

	Valid   bool   `yaml:"valid"`
	Ready   bool   `yaml:"ready"`
	BusData uint64 `yaml:"bus_data"`
	Last    bool   `yaml:"last"`
}

// Scenario is a directed stimulus script.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// LoadScenario reads a YAML scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load scenario %s: %w", path, err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if len(sc.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", sc.Name)
	}
	return &sc, nil
}

// Stimulus expands the scenario into a schedule stimulus.
func (sc *Scenario) Stimulus(widths FieldWidths) *ScheduleStimulus {
	steps := make([]ScheduleStep, 0, len(sc.Steps))
	for _, s := range sc.Steps {
		repeat := s.Repeat
		if repeat < 1 {
			repeat = 1
		}
		step := ScheduleStep{
			Reset:   s.Reset,
			Enable:  s.Enable,
			Data:    s.Data,
			Valid:   s.Valid,
			Ready:   s.Ready,
			BusData: s.BusData,
			Last:    s.Last,
		}
		for i := 0; i < repeat; i++ {
			steps = append(steps, step)
		}
	}
	return NewScheduleStimulus(steps, widths)
}

// Ticks returns the expanded scenario length.
func (sc *Scenario) Ticks() int {
	total := 0
	for _, s := range sc.Steps {
		if s.Repeat < 1 {
			total++
		} else {
			total += s.Repeat
		}
	}
	return total
}

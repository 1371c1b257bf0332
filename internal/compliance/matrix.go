package compliance

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	apperrors "github.com/slaworks/sla-service/pkg/util/errorutil"
)

// Matrix maps window kind, tier and priority to a window length in hours.
// A missing entry means the combination is not SLA-tracked.
type Matrix map[WindowKind]map[Tier]map[Priority]float64

// MatrixEntry is a flattened matrix cell.
type MatrixEntry struct {
	Kind     WindowKind `json:"kind"`
	Tier     Tier       `json:"tier"`
	Priority Priority   `json:"priority"`
	Hours    float64    `json:"hours"`
}

// DefaultMatrix returns the built-in response and resolution windows.
func DefaultMatrix() Matrix {
	return Matrix{
		WindowResponse: {
			TierBasic:      {PriorityLow: 48, PriorityMedium: 24, PriorityHigh: 8, PriorityCritical: 4},
			TierStandard:   {PriorityLow: 24, PriorityMedium: 8, PriorityHigh: 4, PriorityCritical: 2},
			TierPremium:    {PriorityLow: 8, PriorityMedium: 4, PriorityHigh: 2, PriorityCritical: 1},
			TierEnterprise: {PriorityLow: 4, PriorityMedium: 2, PriorityHigh: 1, PriorityCritical: 0.5},
		},
		WindowResolution: {
			TierBasic:      {PriorityLow: 240, PriorityMedium: 120, PriorityHigh: 72, PriorityCritical: 24},
			TierStandard:   {PriorityLow: 120, PriorityMedium: 72, PriorityHigh: 24, PriorityCritical: 8},
			TierPremium:    {PriorityLow: 72, PriorityMedium: 24, PriorityHigh: 8, PriorityCritical: 4},
			TierEnterprise: {PriorityLow: 24, PriorityMedium: 8, PriorityHigh: 4, PriorityCritical: 2},
		},
	}
}

// Hours returns the configured window length in hours.
func (m Matrix) Hours(tier Tier, priority Priority, kind WindowKind) (float64, bool) {
	byTier, ok := m[kind]
	if !ok {
		return 0, false
	}
	byPriority, ok := byTier[tier]
	if !ok {
		return 0, false
	}
	hours, ok := byPriority[priority]
	return hours, ok
}

// Duration returns the configured window length as a time.Duration.
func (m Matrix) Duration(tier Tier, priority Priority, kind WindowKind) (time.Duration, bool) {
	hours, ok := m.Hours(tier, priority, kind)
	if !ok {
		return 0, false
	}
	return time.Duration(hours * float64(time.Hour)), true
}

// Entries flattens the matrix in kind, tier, priority order.
func (m Matrix) Entries() []MatrixEntry {
	entries := make([]MatrixEntry, 0, len(WindowKinds)*len(Tiers)*len(Priorities))
	for _, kind := range WindowKinds {
		for _, tier := range Tiers {
			for _, priority := range Priorities {
				if hours, ok := m.Hours(tier, priority, kind); ok {
					entries = append(entries, MatrixEntry{Kind: kind, Tier: tier, Priority: priority, Hours: hours})
				}
			}
		}
	}
	return entries
}

// LoadMatrix reads a YAML matrix file.
func LoadMatrix(path string) (Matrix, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sla matrix %s: %w", path, err)
	}
	return ParseMatrix(data)
}

// ParseMatrix decodes a YAML document of the form kind -> tier -> priority -> hours.
func ParseMatrix(data []byte) (Matrix, error) {
	var raw map[string]map[string]map[string]float64
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode sla matrix: %w", err)
	}

	matrix := Matrix{}
	for kindKey, tiers := range raw {
		kind, err := ParseWindowKind(kindKey)
		if err != nil {
			return nil, err
		}
		if matrix[kind] == nil {
			matrix[kind] = map[Tier]map[Priority]float64{}
		}
		for tierKey, priorities := range tiers {
			tier, err := ParseTier(tierKey)
			if err != nil {
				return nil, err
			}
			if matrix[kind][tier] == nil {
				matrix[kind][tier] = map[Priority]float64{}
			}
			for priorityKey, hours := range priorities {
				priority, err := ParsePriority(priorityKey)
				if err != nil {
					return nil, err
				}
				if hours < 0 {
					return nil, apperrors.NewValidationError("negative sla window", map[string]any{
						"kind": kind, "tier": tier, "priority": priority, "hours": hours,
					})
				}
				matrix[kind][tier][priority] = hours
			}
		}
	}
	return matrix, nil
}

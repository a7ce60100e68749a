package part

import (
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/hpungsan/origami/internal/errors"
)

// Built-in helix property keys. min_idx and max_idx are read-only.
const (
	PropName   = "name"
	PropMinIdx = "min_idx"
	PropMaxIdx = "max_idx"
)

// PropertyKind tags a combined property value.
type PropertyKind string

const (
	// SingleValue means every selected helix agrees on Value.
	SingleValue PropertyKind = "single"
	// ConflictingValues means the helices disagree; Values lists the distinct values.
	ConflictingValues PropertyKind = "conflicting"
)

// PropertyValue is one property combined across several helices.
type PropertyValue struct {
	Kind   PropertyKind `json:"kind"`
	Value  string       `json:"value,omitempty"`
	Values []string     `json:"values,omitempty"`
}

func (vh *VirtualHelix) propertyMap() map[string]string {
	props := maps.Clone(vh.properties)
	if props == nil {
		props = make(map[string]string)
	}
	props[PropName] = vh.name
	props[PropMinIdx] = strconv.Itoa(vh.minIdx)
	props[PropMaxIdx] = strconv.Itoa(vh.maxIdx)
	return props
}

// CombineHelixProperties merges the properties of the given helices. A key
// missing on some helix counts as the empty value.
func (p *Part) CombineHelixProperties(ids []HelixID) (map[string]PropertyValue, error) {
	if len(ids) == 0 {
		return nil, errors.NewInvalidRequest("at least one helix is required")
	}
	perHelix := make([]map[string]string, 0, len(ids))
	keys := make(map[string]bool)
	for _, id := range ids {
		vh, err := p.helix(id)
		if err != nil {
			return nil, err
		}
		props := vh.propertyMap()
		for k := range props {
			keys[k] = true
		}
		perHelix = append(perHelix, props)
	}

	out := make(map[string]PropertyValue, len(keys))
	for key := range keys {
		seen := make(map[string]bool)
		for _, props := range perHelix {
			seen[props[key]] = true
		}
		values := slices.Sorted(maps.Keys(seen))
		if len(values) == 1 {
			out[key] = PropertyValue{Kind: SingleValue, Value: values[0]}
		} else {
			out[key] = PropertyValue{Kind: ConflictingValues, Values: values}
		}
	}
	return out, nil
}

// SetHelixProperty sets key to value on every listed helix, or on none if any
// helix is missing.
func (p *Part) SetHelixProperty(ids []HelixID, key, value string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.NewInvalidRequest("property key must not be empty")
	}
	if key == PropMinIdx || key == PropMaxIdx {
		return errors.NewInvalidRequest("property " + key + " is read-only")
	}
	if len(ids) == 0 {
		return errors.NewInvalidRequest("at least one helix is required")
	}
	targets := make([]*VirtualHelix, 0, len(ids))
	for _, id := range ids {
		vh, err := p.helix(id)
		if err != nil {
			return err
		}
		targets = append(targets, vh)
	}

	changed := make([]HelixID, 0, len(targets))
	for _, vh := range targets {
		if key == PropName {
			vh.name = value
		} else {
			if vh.properties == nil {
				vh.properties = make(map[string]string)
			}
			vh.properties[key] = value
		}
		changed = append(changed, vh.id)
	}
	p.emit(Event{Kind: HelixChanged, Helices: changed})
	p.commit()
	return nil
}

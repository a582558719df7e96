package pillar

import (
	"fmt"
	"sort"
	"strings"

	"integrity-service/core/model"
	"integrity-service/core/storage"
)

// Kind selects the pillar variant.
type Kind string

const (
	KindFull     Kind = "full"
	KindChecksum Kind = "checksum"
)

// Definition is one parsed pillar declaration.
type Definition struct {
	ID   string
	Kind Kind
	// Location is the object prefix of a full pillar or the manifest object of a
	// checksum pillar.
	Location string
}

// ParseDefinitions parses "id=kind:location" declarations separated by ";".
func ParseDefinitions(raw string) ([]Definition, error) {
	var defs []Definition
	seen := make(map[string]bool)
	for _, part := range strings.Split(raw, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, rest, ok := strings.Cut(part, "=")
		id = strings.TrimSpace(id)
		if !ok || id == "" {
			return nil, fmt.Errorf("invalid pillar definition %q: expected id=kind:location", part)
		}
		kind, location, _ := strings.Cut(strings.TrimSpace(rest), ":")
		def := Definition{ID: id, Kind: Kind(strings.ToLower(strings.TrimSpace(kind))), Location: strings.TrimSpace(location)}
		switch def.Kind {
		case KindFull:
		case KindChecksum:
			if def.Location == "" {
				return nil, fmt.Errorf("checksum pillar %s needs a manifest object", id)
			}
		default:
			return nil, fmt.Errorf("pillar %s: unknown kind %q", id, kind)
		}
		if seen[id] {
			return nil, fmt.Errorf("pillar %s declared twice", id)
		}
		seen[id] = true
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].ID < defs[j].ID })
	return defs, nil
}

// Build creates the models for defs over one bucket.
func Build(defs []Definition, client storage.Client, bucket string, spec model.ChecksumSpec) []Model {
	models := make([]Model, 0, len(defs))
	for _, def := range defs {
		switch def.Kind {
		case KindChecksum:
			models = append(models, NewChecksumPillar(def.ID, client, bucket, def.Location, spec))
		default:
			models = append(models, NewFullPillar(def.ID, client, bucket, def.Location, spec))
		}
	}
	return models
}

package mapping

import (
	"fmt"

	"brpgateway/internal/brp/convert"
)

// Registry holds the known mappings keyed by answer code and entity type.
type Registry struct {
	mappings map[string]map[string]Mapping
}

func NewRegistry() *Registry {
	return &Registry{mappings: map[string]map[string]Mapping{}}
}

// Register adds a mapping. Registering the same answer code and entity type
// twice is a wiring defect and fails immediately.
func (r *Registry) Register(m Mapping) error {
	byEntity, ok := r.mappings[m.AnswerCode()]
	if !ok {
		byEntity = map[string]Mapping{}
		r.mappings[m.AnswerCode()] = byEntity
	}
	if _, exists := byEntity[m.EntityType()]; exists {
		return fmt.Errorf("mapping: duplicate registration for %s/%s", m.AnswerCode(), m.EntityType())
	}
	byEntity[m.EntityType()] = m
	return nil
}

// Get returns the mapping for an answer code and entity type. A miss means
// the server configuration does not cover a message MKS actually sent.
func (r *Registry) Get(answerCode, entityType string) (Mapping, error) {
	if m, ok := r.mappings[answerCode][entityType]; ok {
		return m, nil
	}
	return nil, &UnknownMappingError{AnswerCode: answerCode, EntityType: entityType}
}

// UnknownMappingError identifies the missing answer/entity combination.
type UnknownMappingError struct {
	AnswerCode string
	EntityType string
}

func (e *UnknownMappingError) Error() string {
	return fmt.Sprintf("mapping: no mapping for answer/entity combination %s/%s", e.AnswerCode, e.EntityType)
}

// NewDefaultRegistry builds the registry with all BG 03.10 person mappings.
func NewDefaultRegistry(conv *convert.Converter, bag BAGEndpoints) (*Registry, error) {
	r := NewRegistry()
	for _, m := range []Mapping{
		NewNPSMapping(conv),
		NewNPSNPSHUWMapping(conv),
		NewNPSNPSOUDMapping(conv),
		NewNPSNPSKNDMapping(conv),
		NewVerblijfplaatsHistorieMapping(conv, bag),
	} {
		if err := r.Register(m); err != nil {
			return nil, err
		}
	}
	return r, nil
}

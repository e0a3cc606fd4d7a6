// Package kv encodes plant snapshots as the two JSON values stored under the fixed plant data keys.
package kv

import (
	"encoding/json"
	"fmt"

	"github.com/vsinha/pluanalyzer/pkg/domain/entities"
	"github.com/vsinha/pluanalyzer/pkg/domain/repositories"
)

// Encode returns the values to store under PlantDataKey and PlantMetadataKey
func Encode(snapshot entities.PlantSnapshot) (map[string][]byte, error) {
	records := snapshot.Records
	if records == nil {
		records = []entities.PlantRecord{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("failed to encode plant data: %w", err)
	}
	meta, err := json.Marshal(snapshot.Metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to encode plant metadata: %w", err)
	}
	return map[string][]byte{
		repositories.PlantDataKey:     data,
		repositories.PlantMetadataKey: meta,
	}, nil
}

// Decode rebuilds a snapshot; both values must be present
func Decode(data, meta []byte) (*entities.PlantSnapshot, error) {
	if data == nil || meta == nil {
		return nil, repositories.ErrPlantDataNotFound
	}
	var snapshot entities.PlantSnapshot
	if err := json.Unmarshal(data, &snapshot.Records); err != nil {
		return nil, fmt.Errorf("failed to decode plant data: %w", err)
	}
	if err := json.Unmarshal(meta, &snapshot.Metadata); err != nil {
		return nil, fmt.Errorf("failed to decode plant metadata: %w", err)
	}
	return &snapshot, nil
}

// Keys lists the storage keys in write order
func Keys() []string {
	return []string{repositories.PlantDataKey, repositories.PlantMetadataKey}
}

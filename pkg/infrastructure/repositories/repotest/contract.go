// Package repotest holds behaviour checks shared by every PlantRepository backend.
package repotest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/pluanalyzer/pkg/domain/entities"
	"github.com/vsinha/pluanalyzer/pkg/domain/repositories"
)

// SampleSnapshot returns plant data exercising serial, text and empty date cells
func SampleSnapshot() entities.PlantSnapshot {
	return entities.PlantSnapshot{
		Records: []entities.PlantRecord{
			{
				SiteNumber:         "1001",
				Region:             "West",
				OrganizationNumber: "9000",
				OpenDate:           entities.SerialDate(43831),
				SiteDescription:    "Downtown",
			},
			{
				SiteNumber:         "1002",
				Region:             "Canada",
				OrganizationNumber: "9000",
				OpenDate:           entities.TextDate("01/15/2021"),
				CloseDate:          entities.TextDate("2023-05-01"),
			},
		},
		Metadata: entities.PlantMetadata{
			LastUpdated: time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC),
			SourceFile:  "v_dim_plant.csv",
		},
	}
}

// RunPlantRepositoryContract checks save, load, overwrite and clear semantics
func RunPlantRepositoryContract(t *testing.T, repo repositories.PlantRepository) {
	t.Helper()
	ctx := context.Background()

	t.Run("load before save reports not found", func(t *testing.T) {
		require.NoError(t, repo.Clear(ctx))
		_, err := repo.Load(ctx)
		assert.ErrorIs(t, err, repositories.ErrPlantDataNotFound)
	})

	t.Run("save then load round trips", func(t *testing.T) {
		snapshot := SampleSnapshot()
		require.NoError(t, repo.Save(ctx, snapshot))

		loaded, err := repo.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, snapshot.Records, loaded.Records)
		assert.True(t, snapshot.Metadata.LastUpdated.Equal(loaded.Metadata.LastUpdated))
		assert.Equal(t, snapshot.Metadata.SourceFile, loaded.Metadata.SourceFile)
	})

	t.Run("save overwrites previous data", func(t *testing.T) {
		replacement := entities.PlantSnapshot{
			Records:  []entities.PlantRecord{{SiteNumber: "2001", Region: "East", OrganizationNumber: "9000"}},
			Metadata: entities.PlantMetadata{LastUpdated: time.Now().UTC(), SourceFile: "plants-v2.csv"},
		}
		require.NoError(t, repo.Save(ctx, replacement))

		loaded, err := repo.Load(ctx)
		require.NoError(t, err)
		require.Len(t, loaded.Records, 1)
		assert.Equal(t, "2001", loaded.Records[0].SiteNumber)
		assert.Equal(t, "plants-v2.csv", loaded.Metadata.SourceFile)
	})

	t.Run("empty record set is stored", func(t *testing.T) {
		require.NoError(t, repo.Save(ctx, entities.PlantSnapshot{Metadata: entities.PlantMetadata{SourceFile: "empty.csv"}}))

		loaded, err := repo.Load(ctx)
		require.NoError(t, err)
		assert.Empty(t, loaded.Records)
	})

	t.Run("clear removes data", func(t *testing.T) {
		require.NoError(t, repo.Save(ctx, SampleSnapshot()))
		require.NoError(t, repo.Clear(ctx))

		_, err := repo.Load(ctx)
		assert.ErrorIs(t, err, repositories.ErrPlantDataNotFound)

		// Clearing twice is fine
		assert.NoError(t, repo.Clear(ctx))
	})
}

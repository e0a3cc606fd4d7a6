package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/vsinha/pluanalyzer/pkg/infrastructure/repositories/repotest"
)

func TestPlantRepository_Contract(t *testing.T) {
	repotest.RunPlantRepositoryContract(t, NewPlantRepository())
}

func TestPlantRepository_ConcurrentAccess(t *testing.T) {
	repo := NewPlantRepository()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if err := repo.Save(ctx, repotest.SampleSnapshot()); err != nil {
				t.Errorf("Save failed: %v", err)
			}
		}()
		go func() {
			defer wg.Done()
			_, _ = repo.Load(ctx)
		}()
	}
	wg.Wait()

	loaded, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Expected data after concurrent saves: %v", err)
	}
	if len(loaded.Records) != 2 {
		t.Errorf("Expected 2 records, got %d", len(loaded.Records))
	}
}

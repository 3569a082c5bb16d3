package accounts

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/recipekeeper/internal/common"
	"github.com/dmitrijs2005/recipekeeper/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_CreateGet(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()

	require.NoError(t, r.Create(ctx, &models.Account{Username: "ravi", PasswordHash: "h"}))
	assert.ErrorIs(t, r.Create(ctx, &models.Account{Username: "ravi", PasswordHash: "x"}), common.ErrorUsernameTaken)

	got, err := r.GetByUsername(ctx, "ravi")
	require.NoError(t, err)
	assert.Equal(t, "h", got.PasswordHash)

	// returned value is a copy
	got.PasswordHash = "mutated"
	again, _ := r.GetByUsername(ctx, "ravi")
	assert.Equal(t, "h", again.PasswordHash)

	_, err = r.GetByUsername(ctx, "ghost")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestMemory_ConcurrentCreateSameUsername(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := r.Create(ctx, &models.Account{Username: "ravi", PasswordHash: fmt.Sprint(i), CreatedAt: time.Now()})
			if err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
}

package memory_test

import (
	"testing"

	"catalog-sync/core/store"
	"catalog-sync/core/store/memory"
	"catalog-sync/core/store/storetest"
)

func TestStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		return memory.New()
	})
}

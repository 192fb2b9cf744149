package feed

import (
	"sync"
	"testing"
	"time"

	"depth_go/internal/domain"

	"github.com/shopspring/decimal"
)

func storeSnap(bid, ask int64) *domain.BookSnapshot {
	return &domain.BookSnapshot{
		Bids:       []domain.PriceLevel{{Price: decimal.NewFromInt(bid), Quantity: decimal.NewFromInt(1)}},
		Asks:       []domain.PriceLevel{{Price: decimal.NewFromInt(ask), Quantity: decimal.NewFromInt(1)}},
		CapturedAt: time.Now(),
	}
}

func TestSnapshotStore_ReplaceAndLatest(t *testing.T) {
	store := NewSnapshotStore()
	if store.Latest() != nil {
		t.Fatal("Fresh store should be empty")
	}

	first := storeSnap(100, 101)
	store.Replace(first)
	if store.Latest() != first {
		t.Error("Latest should return the installed snapshot")
	}

	second := storeSnap(102, 103)
	store.Replace(second)
	if store.Latest() != second {
		t.Error("Replace should swap the whole snapshot")
	}

	store.Clear()
	if store.Latest() != nil {
		t.Error("Clear should drop the snapshot")
	}
}

func TestSnapshotStore_ConcurrentReaders(t *testing.T) {
	store := NewSnapshotStore()
	store.Replace(storeSnap(100, 101))

	var wg sync.WaitGroup
	stop := make(chan struct{})

	// Single writer
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := int64(0); ; i++ {
			select {
			case <-stop:
				return
			default:
				store.Replace(storeSnap(100+i, 101+i))
			}
		}
	}()

	// Many readers: each read must observe a coherent snapshot,
	// never old bids with new asks
	for r := 0; r < 8; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10000; j++ {
				snap := store.Latest()
				if snap == nil {
					continue
				}
				diff := snap.Asks[0].Price.Sub(snap.Bids[0].Price)
				if !diff.Equal(decimal.NewFromInt(1)) {
					t.Errorf("Torn snapshot observed: bid %v ask %v", snap.Bids[0].Price, snap.Asks[0].Price)
					return
				}
			}
		}()
	}

	time.Sleep(50 * time.Millisecond)
	close(stop)
	wg.Wait()
}

package forge

import "testing"

func TestCacheBasicOperations(t *testing.T) {
	const capacity = 10
	cache := NewCache[string](capacity)

	items := []string{"item1", "item2", "item3", "item4", "item5"}
	indices := make([]int, len(items))

	for i, item := range items {
		index, err := cache.Register(item, item)
		if err != nil {
			t.Errorf("Failed to register item %s: %v", item, err)
		}
		indices[i] = index
		if index != i {
			t.Errorf("index for item %s is %d, want %d", item, index, i)
		}
	}

	for i, item := range items {
		index, found := cache.GetIndex(item)
		if !found {
			t.Errorf("item %s not found in cache", item)
		}
		if index != indices[i] {
			t.Errorf("index for item %s is %d, want %d", item, index, indices[i])
		}
		cached := cache.GetItem(index)
		if *cached != item {
			t.Errorf("item at index %d is %s, want %s", index, *cached, item)
		}
	}

	if _, found := cache.GetIndex("nonexistent"); found {
		t.Error("found non-existent item in cache")
	}
}

func TestCacheCapacity(t *testing.T) {
	const capacity = 5
	cache := NewCache[int](capacity)

	for i := 0; i < capacity; i++ {
		if _, err := cache.Register(string(rune('a'+i)), i); err != nil {
			t.Fatalf("Register: %v", err)
		}
	}
	if _, err := cache.Register("overflow", 100); err == nil {
		t.Error("expected error when exceeding cache capacity, got none")
	}
}

func TestCacheRegisterIsIdempotentPerKey(t *testing.T) {
	cache := NewCache[int](4)
	i1, _ := cache.Register("k", 1)
	i2, err := cache.Register("k", 2)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if i1 != i2 {
		t.Fatalf("re-registering the same key changed its slot: %d vs %d", i1, i2)
	}
	if got := *cache.GetItem(i2); got != 2 {
		t.Fatalf("re-registering the same key did not update its value: got %d, want 2", got)
	}
}

func TestCacheClear(t *testing.T) {
	cache := NewCache[string](10)
	items := []string{"item1", "item2", "item3"}
	for _, item := range items {
		if _, err := cache.Register(item, item); err != nil {
			t.Fatalf("Register: %v", err)
		}
	}

	cache.Clear()

	for _, item := range items {
		if _, found := cache.GetIndex(item); found {
			t.Errorf("item %s still found after Clear", item)
		}
	}

	for _, item := range items {
		if _, err := cache.Register(item, item); err != nil {
			t.Errorf("Register after Clear: %v", err)
		}
	}
}

func TestCacheWithComplexTypes(t *testing.T) {
	cache := NewCache[Position](10)
	positions := []Position{{X: 1, Y: 2}, {X: 3, Y: 4}, {X: 5, Y: 6}}
	keys := []string{"pos1", "pos2", "pos3"}

	for i, pos := range positions {
		if _, err := cache.Register(keys[i], pos); err != nil {
			t.Fatalf("Register: %v", err)
		}
	}

	for i, key := range keys {
		index, found := cache.GetIndex(key)
		if !found {
			t.Fatalf("position with key %s not found", key)
		}
		pos := cache.GetItem(index)
		if *pos != positions[i] {
			t.Errorf("position at index %d is %+v, want %+v", index, *pos, positions[i])
		}
	}
}

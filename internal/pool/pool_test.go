package pool

import "testing"

type item struct {
	id    int
	value int
}

func newPool(size int) *Pool[item] {
	return New(size, func(id int) *item { return &item{id: id} })
}

func TestCreateUsesLowestFreeID(t *testing.T) {
	p := newPool(4)
	for i := 0; i < 4; i++ {
		it := p.Create(func(it *item) { it.value = i })
		if it == nil || it.id != i {
			t.Fatalf("create %d returned %+v", i, it)
		}
	}
	if p.Create(nil) != nil {
		t.Error("expected nil on exhaustion")
	}

	p.Discard(1)
	p.Discard(2)
	if it := p.Create(nil); it.id != 1 {
		t.Errorf("expected id 1 to be reused, got %d", it.id)
	}
	if p.Active() != 3 {
		t.Errorf("expected 3 active, got %d", p.Active())
	}
}

func TestCreateWithIDGreaterThan(t *testing.T) {
	p := newPool(4)
	head := p.Create(nil)
	p.Create(nil)
	p.Discard(0)

	extra := p.CreateWithIDGreaterThan(nil, head.id)
	if extra == nil || extra.id != 2 {
		t.Fatalf("expected id 2, got %+v", extra)
	}
	if p.IsActive(0) {
		t.Error("id 0 should still be free")
	}

	p.CreateWithIDGreaterThan(nil, 2)
	if p.CreateWithIDGreaterThan(nil, 2) != nil {
		t.Error("expected nil when no id above 2 is free")
	}
}

func TestForEachActiveAllowsDiscard(t *testing.T) {
	p := newPool(5)
	for i := 0; i < 5; i++ {
		p.Create(nil)
	}

	visited := []int{}
	p.ForEachActive(func(it *item) {
		visited = append(visited, it.id)
		if it.id%2 == 0 {
			p.Discard(it.id)
		}
	})
	if len(visited) != 5 {
		t.Errorf("expected 5 visits, got %v", visited)
	}
	if p.Active() != 2 {
		t.Errorf("expected 2 active, got %d", p.Active())
	}

	p.Clear()
	if p.Active() != 0 || p.IsActive(1) {
		t.Error("expected empty pool after Clear")
	}
	p.Discard(3)
	if p.Active() != 0 {
		t.Error("discarding a free item must not change the count")
	}
}

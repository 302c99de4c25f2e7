package storage

import (
	"fmt"
	"sync"
	"testing"

	"github.com/lehigh-university-libraries/nlpkit/internal/models"
)

func TestSetGet(t *testing.T) {
	s := New(0)
	s.Set(&models.Analysis{ID: "a", Task: "sentiment"})

	got, ok := s.Get("a")
	if !ok || got.Task != "sentiment" {
		t.Fatalf("Get(a) = %v, %v", got, ok)
	}
	if _, ok := s.Get("missing"); ok {
		t.Error("Get(missing) found an entry")
	}
}

func TestEvictsOldest(t *testing.T) {
	s := New(2)
	for _, id := range []string{"a", "b", "c"} {
		s.Set(&models.Analysis{ID: id})
	}

	if _, ok := s.Get("a"); ok {
		t.Error("oldest entry was not evicted")
	}
	list := s.List()
	if len(list) != 2 || list[0].ID != "b" || list[1].ID != "c" {
		t.Errorf("List() = %v, want [b c]", ids(list))
	}

	// replacing an entry does not change its position
	s.Set(&models.Analysis{ID: "b", Task: "language"})
	list = s.List()
	if list[0].ID != "b" || list[0].Task != "language" {
		t.Errorf("List() = %v after replace", ids(list))
	}
}

func TestDelete(t *testing.T) {
	s := New(10)
	s.Set(&models.Analysis{ID: "a"})
	s.Set(&models.Analysis{ID: "b"})

	if !s.Delete("a") {
		t.Fatal("Delete(a) = false")
	}
	if s.Delete("a") {
		t.Error("second Delete(a) = true")
	}
	if list := s.List(); len(list) != 1 || list[0].ID != "b" {
		t.Errorf("List() = %v, want [b]", ids(list))
	}
}

func TestConcurrentSet(t *testing.T) {
	s := New(50)
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Set(&models.Analysis{ID: fmt.Sprintf("id-%d", i)})
		}(i)
	}
	wg.Wait()

	if n := len(s.List()); n != 50 {
		t.Errorf("len(List()) = %d, want 50", n)
	}
}

func ids(list []*models.Analysis) []string {
	out := make([]string, len(list))
	for i, a := range list {
		out[i] = a.ID
	}
	return out
}

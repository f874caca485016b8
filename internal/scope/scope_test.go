package scope

import "testing"

func TestInsertAndGet_SameFrame(t *testing.T) {
	s := New[int]()
	s.Push()
	if !s.Insert("x", 1) {
		t.Fatal("first insert of x should succeed")
	}
	v, ok := s.Get("x")
	if !ok || v != 1 {
		t.Fatalf("Get(x) = %d, %v; want 1, true", v, ok)
	}
}

func TestInsert_RedeclarationInSameFrameFails(t *testing.T) {
	s := New[int]()
	s.Push()
	s.Insert("x", 1)
	if s.Insert("x", 2) {
		t.Fatal("re-inserting x in the same frame must fail")
	}
	v, _ := s.Get("x")
	if v != 1 {
		t.Fatalf("failed Insert must not overwrite the existing binding, got %d", v)
	}
}

func TestGet_DoesNotSeeOuterFrames(t *testing.T) {
	s := New[int]()
	s.Push()
	s.Insert("x", 1)
	s.Push()
	if _, ok := s.Get("x"); ok {
		t.Fatal("Get must only search the innermost frame")
	}
}

func TestGetAll_SearchesOutward(t *testing.T) {
	s := New[int]()
	s.Push()
	s.Insert("x", 1)
	s.Push()
	s.Insert("y", 2)

	v, ok := s.GetAll("x")
	if !ok || v != 1 {
		t.Fatalf("GetAll(x) = %d, %v; want 1, true", v, ok)
	}
	v, ok = s.GetAll("y")
	if !ok || v != 2 {
		t.Fatalf("GetAll(y) = %d, %v; want 2, true", v, ok)
	}
	if _, ok := s.GetAll("z"); ok {
		t.Fatal("GetAll must report false for an unbound name")
	}
}

func TestGetAll_InnerShadowsOuter(t *testing.T) {
	s := New[int]()
	s.Push()
	s.Insert("x", 1)
	s.Push()
	s.Insert("x", 2)

	v, _ := s.GetAll("x")
	if v != 2 {
		t.Fatalf("inner binding should shadow outer, got %d", v)
	}
	s.Pop()
	v, _ = s.GetAll("x")
	if v != 1 {
		t.Fatalf("after popping the inner frame, outer binding should resurface, got %d", v)
	}
}

func TestGuard_PopsOnCall(t *testing.T) {
	s := New[int]()
	s.Push()
	s.Insert("outer", 1)

	func() {
		pop := s.Guard()
		defer pop()
		s.Insert("inner", 2)
		if _, ok := s.Get("inner"); !ok {
			t.Fatal("inner binding should be visible before the guard pops")
		}
	}()

	if _, ok := s.GetAll("inner"); ok {
		t.Fatal("Guard's deferred pop should have removed the inner frame")
	}
	if _, ok := s.GetAll("outer"); !ok {
		t.Fatal("outer frame must survive the inner guard's pop")
	}
}

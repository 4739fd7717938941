package projection

import "testing"

func TestInclude(t *testing.T) {
	p, err := Include("title", "author", "price", "title")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Mode() != ModeInclude {
		t.Errorf("Mode() = %v", p.Mode())
	}
	if got := p.Fields(); len(got) != 3 {
		t.Errorf("Fields() = %v, want deduplicated", got)
	}
	for _, f := range []string{"title", "author", "price"} {
		if !p.Keeps(f) {
			t.Errorf("Keeps(%q) = false", f)
		}
	}
	for _, f := range []string{IDField, "genre", "in_stock"} {
		if p.Keeps(f) {
			t.Errorf("Keeps(%q) = true", f)
		}
	}
	if p.String() != "include[title,author,price]" {
		t.Errorf("String() = %q", p.String())
	}
}

func TestInclude_ExplicitID(t *testing.T) {
	p, _ := Include(IDField, "title")
	if !p.Keeps(IDField) {
		t.Error("explicitly included _id must be kept")
	}
}

func TestExclude(t *testing.T) {
	p, err := Exclude("price")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Keeps("price") {
		t.Error("excluded field kept")
	}
	if !p.Keeps("title") || !p.Keeps(IDField) {
		t.Error("non-excluded field dropped")
	}
}

func TestProjection_Invalid(t *testing.T) {
	if _, err := Include(); err == nil {
		t.Error("expected error for empty include")
	}
	if _, err := Exclude("title", " "); err == nil {
		t.Error("expected error for blank field")
	}
}

func TestProjection_ZeroKeepsAll(t *testing.T) {
	var p Projection
	if !p.IsZero() || !p.Keeps("anything") {
		t.Error("zero projection must keep all fields")
	}
}

func TestProjection_FieldsIsCopy(t *testing.T) {
	p, _ := Include("title")
	f := p.Fields()
	f[0] = "price"
	if !p.Keeps("title") {
		t.Error("Fields() exposes internal slice")
	}
}

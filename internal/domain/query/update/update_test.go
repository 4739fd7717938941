package update

import "testing"

func TestSet(t *testing.T) {
	u, err := Set("price", 10.99)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Field() != "price" || u.Value() != 10.99 {
		t.Errorf("got %v", u)
	}
	if u.String() != "set price = 10.99" {
		t.Errorf("String() = %q", u.String())
	}
}

func TestSet_Invalid(t *testing.T) {
	if _, err := Set("", 1); err == nil {
		t.Error("expected error for empty field")
	}
	if _, err := Set("_id", "x"); err == nil {
		t.Error("expected error for _id")
	}
}

package document

import "testing"

func TestDocument_Accessors(t *testing.T) {
	d := Document{
		FieldTitle:         "Circe",
		FieldPublishedYear: int32(2018),
		FieldPrice:         "12.5",
		FieldInStock:       true,
	}

	if d.String(FieldTitle) != "Circe" {
		t.Errorf("String() = %q", d.String(FieldTitle))
	}
	if d.Int(FieldPublishedYear) != 2018 {
		t.Errorf("Int() = %d", d.Int(FieldPublishedYear))
	}
	if d.Float(FieldPrice) != 12.5 {
		t.Errorf("Float() = %v", d.Float(FieldPrice))
	}
	if !d.Bool(FieldInStock) {
		t.Error("Bool() = false")
	}
	if d.String(FieldAuthor) != "" {
		t.Errorf("missing field String() = %q", d.String(FieldAuthor))
	}
	if d.Has(FieldAuthor) {
		t.Error("Has() = true for missing field")
	}
}

func TestDocument_CloneIsDeep(t *testing.T) {
	orig := Document{
		"tags":   []any{"a", "b"},
		"nested": map[string]any{"k": 1},
	}
	c := orig.Clone()

	c["tags"].([]any)[0] = "z"
	c["nested"].(map[string]any)["k"] = 2

	if orig["tags"].([]any)[0] != "a" {
		t.Error("slice shared between clone and original")
	}
	if orig["nested"].(map[string]any)["k"] != 1 {
		t.Error("map shared between clone and original")
	}
}

func TestDocument_CloneNil(t *testing.T) {
	var d Document
	if d.Clone() != nil {
		t.Error("Clone() of nil should be nil")
	}
}

func TestBook_RoundTrip(t *testing.T) {
	b := Book{
		Title: "Educated", Author: "Tara Westover", Genre: "Memoir",
		PublishedYear: 2018, Price: 10.99, InStock: true,
	}
	got := BookFromDocument(b.ToDocument())
	if got != b {
		t.Errorf("BookFromDocument(ToDocument()) = %+v, want %+v", got, b)
	}
}

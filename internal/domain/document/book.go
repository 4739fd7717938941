package document

// Book fields observed in the collection.
const (
	FieldTitle         = "title"
	FieldAuthor        = "author"
	FieldGenre         = "genre"
	FieldPublishedYear = "published_year"
	FieldPrice         = "price"
	FieldInStock       = "in_stock"
)

// Book is the typed form of a book record, used for seeding and reporting.
type Book struct {
	Title         string  `bson:"title" json:"title"`
	Author        string  `bson:"author" json:"author"`
	Genre         string  `bson:"genre" json:"genre"`
	PublishedYear int     `bson:"published_year" json:"published_year"`
	Price         float64 `bson:"price" json:"price"`
	InStock       bool    `bson:"in_stock" json:"in_stock"`
}

// ToDocument converts the book into an untyped Document.
func (b Book) ToDocument() Document {
	return Document{
		FieldTitle:         b.Title,
		FieldAuthor:        b.Author,
		FieldGenre:         b.Genre,
		FieldPublishedYear: b.PublishedYear,
		FieldPrice:         b.Price,
		FieldInStock:       b.InStock,
	}
}

// BookFromDocument reads the known book fields from d. Missing fields stay zero.
func BookFromDocument(d Document) Book {
	return Book{
		Title:         d.String(FieldTitle),
		Author:        d.String(FieldAuthor),
		Genre:         d.String(FieldGenre),
		PublishedYear: d.Int(FieldPublishedYear),
		Price:         d.Float(FieldPrice),
		InStock:       d.Bool(FieldInStock),
	}
}

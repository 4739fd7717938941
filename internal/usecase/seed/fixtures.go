package seed

import "github.com/kailas-cloud/bookstore/internal/domain/document"

// Fixtures returns the hand-picked sample books. Every title the default
// walkthrough touches is present exactly once.
func Fixtures() []document.Book {
	return []document.Book{
		{Title: "The Hobbit", Author: "J.R.R. Tolkien", Genre: "Fantasy", PublishedYear: 1937, Price: 14.99, InStock: true},
		{Title: "The Fellowship of the Ring", Author: "J.R.R. Tolkien", Genre: "Fantasy", PublishedYear: 1954, Price: 17.99, InStock: true},
		{Title: "Circe", Author: "Madeline Miller", Genre: "Fantasy", PublishedYear: 2018, Price: 16.5, InStock: true},
		{Title: "The Song of Achilles", Author: "Madeline Miller", Genre: "Fantasy", PublishedYear: 2011, Price: 13.25, InStock: false},
		{Title: "The Name of the Wind", Author: "Patrick Rothfuss", Genre: "Fantasy", PublishedYear: 2007, Price: 12.99, InStock: true},
		{Title: "Piranesi", Author: "Susanna Clarke", Genre: "Fantasy", PublishedYear: 2020, Price: 15.0, InStock: true},
		{Title: "Educated", Author: "Tara Westover", Genre: "Memoir", PublishedYear: 2018, Price: 18.0, InStock: true},
		{Title: "Becoming", Author: "Michelle Obama", Genre: "Memoir", PublishedYear: 2018, Price: 19.5, InStock: false},
		{Title: "Project Hail Mary", Author: "Andy Weir", Genre: "Science Fiction", PublishedYear: 2021, Price: 21.99, InStock: true},
		{Title: "The Martian", Author: "Andy Weir", Genre: "Science Fiction", PublishedYear: 2011, Price: 11.99, InStock: true},
		{Title: "Dune", Author: "Frank Herbert", Genre: "Science Fiction", PublishedYear: 1965, Price: 10.99, InStock: true},
		{Title: "Wuthering Heights", Author: "Emily Bronte", Genre: "Classic", PublishedYear: 1847, Price: 7.99, InStock: true},
		{Title: "Pride and Prejudice", Author: "Jane Austen", Genre: "Classic", PublishedYear: 1813, Price: 6.99, InStock: true},
		{Title: "Where the Crawdads Sing", Author: "Delia Owens", Genre: "Mystery", PublishedYear: 2018, Price: 12.5, InStock: true},
		{Title: "The Silent Patient", Author: "Alex Michaelides", Genre: "Mystery", PublishedYear: 2019, Price: 13.99, InStock: false},
		{Title: "The Thursday Murder Club", Author: "Richard Osman", Genre: "Mystery", PublishedYear: 2020, Price: 14.25, InStock: true},
	}
}

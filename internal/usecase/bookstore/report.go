package bookstore

import (
	"github.com/samber/lo"
	"github.com/spf13/cast"

	"github.com/kailas-cloud/bookstore/internal/domain/aggregate"
	"github.com/kailas-cloud/bookstore/internal/domain/document"
	"github.com/kailas-cloud/bookstore/internal/domain/explain"
	"github.com/kailas-cloud/bookstore/internal/usecase/catalog"
)

// GenreAverage is one row of the average-price-by-genre report.
type GenreAverage struct {
	Genre        string  `json:"genre"`
	AveragePrice float64 `json:"average_price"`
}

// AuthorCount is one row of the books-per-author report.
type AuthorCount struct {
	Author     string `json:"author"`
	TotalBooks int64  `json:"total_books"`
}

// DecadeCount is one row of the books-per-decade report.
type DecadeCount struct {
	Decade int64 `json:"decade"`
	Total  int64 `json:"total"`
}

// Listing is a projected title/author/price row.
type Listing struct {
	Title  string  `json:"title"`
	Author string  `json:"author"`
	Price  float64 `json:"price"`
}

// Report collects the results of every walkthrough step in order.
type Report struct {
	ByGenre         []document.Book      `json:"by_genre"`
	PublishedAfter  []document.Book      `json:"published_after"`
	ByAuthor        []document.Book      `json:"by_author"`
	PriceUpdate     catalog.UpdateResult `json:"price_update"`
	Deleted         int64                `json:"deleted"`
	InStockAfter    []document.Book      `json:"in_stock_after"`
	Listing         []Listing            `json:"listing"`
	PriceAscending  []document.Book      `json:"price_ascending"`
	PriceDescending []document.Book      `json:"price_descending"`
	Page            []document.Book      `json:"page"`
	GenreAverages   []GenreAverage       `json:"genre_averages"`
	TopAuthors      []AuthorCount        `json:"top_authors"`
	Decades         []DecadeCount        `json:"decades"`
	Indexes         []string             `json:"indexes"`
	TitlePlan       explain.Stats        `json:"title_plan"`
	AuthorYearPlan  explain.Stats        `json:"author_year_plan"`
}

// Books converts documents into typed books.
func Books(docs []document.Document) []document.Book {
	return lo.Map(docs, func(d document.Document, _ int) document.Book { return document.BookFromDocument(d) })
}

// Listings converts projected documents into listing rows.
func Listings(docs []document.Document) []Listing {
	return lo.Map(docs, func(d document.Document, _ int) Listing {
		return Listing{
			Title:  d.String(document.FieldTitle),
			Author: d.String(document.FieldAuthor),
			Price:  d.Float(document.FieldPrice),
		}
	})
}

// GenreAverages converts AveragePriceByGenre output rows.
func GenreAverages(rows []document.Document) []GenreAverage {
	return lo.Map(rows, func(d document.Document, _ int) GenreAverage {
		return GenreAverage{
			Genre:        d.String(aggregate.GroupIDField),
			AveragePrice: d.Float(aggregate.FieldAveragePrice),
		}
	})
}

// AuthorCounts converts TopAuthors output rows.
func AuthorCounts(rows []document.Document) []AuthorCount {
	return lo.Map(rows, func(d document.Document, _ int) AuthorCount {
		return AuthorCount{
			Author:     d.String(aggregate.GroupIDField),
			TotalBooks: d.Int64(aggregate.FieldTotalBooks),
		}
	})
}

// DecadeCounts converts CountByDecade output rows. Rows whose decade is
// missing (books without a numeric year) are skipped.
func DecadeCounts(rows []document.Document) []DecadeCount {
	rows = lo.Filter(rows, func(d document.Document, _ int) bool {
		_, err := cast.ToInt64E(d[aggregate.GroupIDField])
		return d[aggregate.GroupIDField] != nil && err == nil
	})
	return lo.Map(rows, func(d document.Document, _ int) DecadeCount {
		return DecadeCount{
			Decade: d.Int64(aggregate.GroupIDField),
			Total:  d.Int64(aggregate.FieldTotal),
		}
	})
}

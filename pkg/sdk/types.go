package bookstore

import (
	"github.com/kailas-cloud/bookstore/internal/domain/document"
	"github.com/kailas-cloud/bookstore/internal/domain/explain"
	"github.com/kailas-cloud/bookstore/internal/domain/query/filter"
	"github.com/kailas-cloud/bookstore/internal/config"
	bookstoreuc "github.com/kailas-cloud/bookstore/internal/usecase/bookstore"
	"github.com/kailas-cloud/bookstore/internal/usecase/catalog"
	seeduc "github.com/kailas-cloud/bookstore/internal/usecase/seed"
)

type (
	// Document is an untyped book record.
	Document = document.Document
	// Book is the typed form of a book record.
	Book = document.Book
	// FilterBuilder composes conjunctive filters.
	FilterBuilder = filter.Builder
	// UpdateResult reports a single-document update.
	UpdateResult = catalog.UpdateResult
	// Stats are the execution statistics of a find.
	Stats = explain.Stats
	// Report holds the walkthrough results.
	Report = bookstoreuc.Report
	// SeedOptions select the sample data to load.
	SeedOptions = seeduc.Options
	// SeedResult reports loaded sample data.
	SeedResult = seeduc.Result
	// GenreAverage is one row of AveragePriceByGenre.
	GenreAverage = bookstoreuc.GenreAverage
	// AuthorCount is one row of TopAuthors.
	AuthorCount = bookstoreuc.AuthorCount
	// DecadeCount is one row of CountByDecade.
	DecadeCount = bookstoreuc.DecadeCount
	// WalkthroughParams parameterize Walkthrough. Zero fields take defaults.
	WalkthroughParams = config.WalkthroughConfig
)

// Book field names.
const (
	FieldTitle         = document.FieldTitle
	FieldAuthor        = document.FieldAuthor
	FieldGenre         = document.FieldGenre
	FieldPublishedYear = document.FieldPublishedYear
	FieldPrice         = document.FieldPrice
	FieldInStock       = document.FieldInStock
)

// Where starts a filter. Conditions added to it must all hold.
func Where() *FilterBuilder {
	return filter.NewBuilder()
}

// DefaultWalkthroughParams returns the stock walkthrough parameters.
func DefaultWalkthroughParams() WalkthroughParams {
	var p WalkthroughParams
	p.ApplyDefaults()
	return p
}

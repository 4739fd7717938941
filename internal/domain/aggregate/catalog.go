package aggregate

import (
	"github.com/kailas-cloud/bookstore/internal/domain/document"
	"github.com/kailas-cloud/bookstore/internal/domain/query/sortspec"
)

// Output field names of the canned pipelines.
const (
	FieldAveragePrice = "averagePrice"
	FieldTotalBooks   = "totalBooks"
	FieldTotal        = "total"
)

// AveragePriceByGenre averages price per genre value.
func AveragePriceByGenre() (Pipeline, error) {
	g, err := GroupStage(Group{
		Key:          ByField(document.FieldGenre),
		Accumulators: []Accumulator{Avg(FieldAveragePrice, document.FieldPrice)},
	})
	if err != nil {
		return Pipeline{}, err
	}
	return NewPipeline(g)
}

// TopAuthors counts books per author value and keeps the n largest.
func TopAuthors(n int64) (Pipeline, error) {
	g, err := GroupStage(Group{
		Key:          ByField(document.FieldAuthor),
		Accumulators: []Accumulator{Count(FieldTotalBooks)},
	})
	if err != nil {
		return Pipeline{}, err
	}
	spec, err := sortspec.New(sortspec.Descending(FieldTotalBooks), sortspec.Ascending(GroupIDField))
	if err != nil {
		return Pipeline{}, err
	}
	s, err := SortStage(spec)
	if err != nil {
		return Pipeline{}, err
	}
	l, err := LimitStage(n)
	if err != nil {
		return Pipeline{}, err
	}
	return NewPipeline(g, s, l)
}

// CountByDecade counts books per publication decade, oldest first.
func CountByDecade() (Pipeline, error) {
	g, err := GroupStage(Group{
		Key:          ByDecade(document.FieldPublishedYear),
		Accumulators: []Accumulator{Count(FieldTotal)},
	})
	if err != nil {
		return Pipeline{}, err
	}
	spec, err := sortspec.By(GroupIDField, sortspec.Asc)
	if err != nil {
		return Pipeline{}, err
	}
	s, err := SortStage(spec)
	if err != nil {
		return Pipeline{}, err
	}
	return NewPipeline(g, s)
}

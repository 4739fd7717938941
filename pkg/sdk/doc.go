// Package bookstore provides an in-process Go client for the books catalog
// backed by MongoDB or an in-memory store.
//
//	client, _ := bookstore.New(ctx, bookstore.WithMongo("mongodb://localhost:27017", "plp_bookstore", "books"))
//	defer client.Close(ctx)
//
//	fantasy, _ := client.Find(ctx, bookstore.Where().Eq("genre", "Fantasy"))
//	recent, _ := client.Find(ctx, bookstore.Where().Eq("in_stock", true).Gt("published_year", 2010))
//	res, _ := client.UpdatePrice(ctx, "Educated", 10.99)
//	stats, _ := client.Explain(ctx, bookstore.Where().Eq("title", "Project Hail Mary"))
package bookstore

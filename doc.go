// Package lpsearch provides a Go client for full-text search over an
// Elasticsearch index using the lpsearch search language.
//
// Searches come in three shapes:
//   - Simple searches over the title or title and body
//   - Advanced searches of up to six conditions with proximity windows
//   - Raw engine queries passed through untouched
//
// # Builders
//
//	client, _ := lpsearch.New(lpsearch.WithElasticsearch("http://localhost:9200"))
//	page, _ := client.Advanced().
//	    Include(lpsearch.Title, "budget").
//	    Near(lpsearch.Body, lpsearch.SameSentence, "revenue growth", 5, false).
//	    Refine("category", "finance").
//	    Do(ctx)
//
// # Search-box payloads
//
//	s, _ := lpsearch.ParseForm(formJSON)
//	q, _ := lpsearch.Translate(s) // offline, no cluster needed
//	page, _ := client.Search(ctx, s, lpsearch.SearchOptions{Size: 20})
//
// WithCache puts a Redis or Valkey result cache in front of the engine.
package lpsearch

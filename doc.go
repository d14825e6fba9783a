// Package newsrec recommends related news articles by TF-IDF cosine similarity.
//
// # Stateless ranking
//
//	engine := newsrec.NewEngine(newsrec.WithStopWords("the", "a"))
//	res := engine.Recommend(ctx, query, corpus, 4)
//	if res.Status == newsrec.StatusOK { ... }
//
// # Store-backed related articles
//
//	client, _ := newsrec.New(newsrec.WithValkey("localhost:6379", ""))
//	defer client.Close()
//	client.Articles().Upsert(ctx, newsrec.Article{ID: "a1", Category: "tech", Title: "..."})
//	res, _ := client.Related(ctx, "a1", 4)
//
// Recommend never returns an error: an empty corpus, a corpus without terms or
// a non-positive limit yield StatusEmpty, and internal failures yield
// StatusFailed with empty items.
package newsrec

// Package blogfront holds the records shared by the blog frontend: posts,
// their categories and tags, authors and the status errors every layer returns.
package blogfront

const Version = "v0.3.1"

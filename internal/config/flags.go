package config

// Flags shared by more than one package. Integrations declare their own next to their code.
var (
	DraftsEnabled = GenFlag("feature.drafts.enabled", true, "Show the drafts page to logged in users")
	PostsPerPage  = GenFlag("behavior.listing.posts_per_page", 9, "Number of post cards on a listing page")
	PreviewAPI    = GenFlag("feature.api.preview", true, "Expose the sanitized preview endpoint under /api")
)

package models

// Task represents a unit of homework content discovered on a page.
// The ID is chosen by the content author and is globally unique; rows are
// created lazily on first sight and never updated or deleted (first write wins).
type Task struct {
	ID           string `json:"id"`
	PageSlug     string `json:"pageSlug"`
	Title        string `json:"title"`
	DisplayOrder int    `json:"displayOrder"`
}

// PageTask is a task tuple as reported by a content page during sync.
// PageSlug comes from the URL, so it is not part of the payload.
type PageTask struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	DisplayOrder int    `json:"displayOrder"`
}

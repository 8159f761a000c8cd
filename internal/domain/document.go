package domain

// Document is one record in a tenant's data store. ID is store-local and is
// never carried across stores; the migration copier strips it.
type Document struct {
	ID   string
	Data map[string]any
}

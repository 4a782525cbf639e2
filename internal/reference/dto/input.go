package dto

// CreateReferenceInput creates a size or a color. Without a sort order the row goes last.
type CreateReferenceInput struct {
	Name      string `json:"name" binding:"required"`
	SortOrder *int   `json:"sort_order"`
}

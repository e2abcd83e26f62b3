package dto

type CreateCommentRequest struct {
	Body string `json:"body" binding:"required,max=2000"`
}

type UpdateCommentRequest struct {
	Body string `json:"body" binding:"required,max=2000"`
}

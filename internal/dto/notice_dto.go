package dto

type NoticeCreateRequest struct {
	Title       string `json:"title"`
	Content     string `json:"content"`
	IsImportant bool   `json:"is_important"`
}

type NoticeUpdateRequest struct {
	Title       *string `json:"title,omitempty"`
	Content     *string `json:"content,omitempty"`
	IsImportant *bool   `json:"is_important,omitempty"`
}

package models

type Tag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type CreateTagRequest struct {
	Name string `json:"name"`
}

package models

// Page is the backend's pagination envelope. Pages are 1-based.
type Page[T any] struct {
	Items     []T `json:"dtoList"`
	TotalPage int `json:"totalPage"`
	Page      int `json:"page"`
	Size      int `json:"size"`
}

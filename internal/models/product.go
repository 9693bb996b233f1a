package models

// Product represents a catalog product.
// Schema matches the mall backend's product DTO.
type Product struct {
	ID              int64    `json:"id"`
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Price           int64    `json:"price"`
	Category        string   `json:"category"`
	Stock           int      `json:"stock"`
	UploadFileNames []string `json:"uploadFileNames,omitempty"`
}

// Recommendation is the AI recommendation response for a free-text query.
type Recommendation struct {
	UserQuery           string    `json:"userQuery"`
	RecommendedProducts []Product `json:"recommendedProducts"`
	Explanation         string    `json:"explanation"`
	Confidence          float64   `json:"confidence"`
}

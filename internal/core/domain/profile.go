package domain

// UserProfile identifies the resource owner at the streaming provider.
// Fetched once after code exchange to confirm the new token works, and
// served to the frontend afterwards.
type UserProfile struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
}

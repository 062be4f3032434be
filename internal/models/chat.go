package models

// ChatMessage is one turn of an assistant conversation.
type ChatMessage struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"required,max=2000"`
}

// ChatRequest is the body of POST /api/v1/chat.
type ChatRequest struct {
	Messages []ChatMessage  `json:"messages" validate:"required,min=1,max=50,dive"`
	Context  map[string]any `json:"context,omitempty"`
}

// SuggestedMovie is a TMDB match for a title the assistant mentioned.
type SuggestedMovie struct {
	ID     int     `json:"id"`
	Title  string  `json:"title"`
	Poster *string `json:"poster"`
	Year   *string `json:"year"`
}

// ChatResponse is the assistant's reply plus any titles it suggested.
type ChatResponse struct {
	Message         ChatMessage      `json:"message"`
	SuggestedMovies []SuggestedMovie `json:"suggested_movies"`
}

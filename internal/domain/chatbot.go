package domain

// ChatbotRequest is one question put to the marketplace assistant.
type ChatbotRequest struct {
	Question string `json:"question"`
}

type ChatbotAnswer struct {
	Answer string `json:"answer"`
}

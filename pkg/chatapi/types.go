package chatapi

import "time"

// Token is the payload returned by /auth/login and /auth/refresh.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// User is the profile returned by /auth/me.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	CreatedAt time.Time `json:"created_at"`
	IsActive  bool      `json:"is_active"`
}

// Session is a server-persisted conversation thread.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"session_title"`
	StartedAt time.Time `json:"started_at"`
	IsActive  bool      `json:"is_active"`
}

// Answer is one bot reply to a question.
type Answer struct {
	ID          string    `json:"id"`
	QuestionID  string    `json:"question_id"`
	Content     string    `json:"content"`
	GeneratedBy string    `json:"generated_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// ConversationItem pairs one question with its ordered answers.
type ConversationItem struct {
	QuestionID   string    `json:"question_id"`
	Question     string    `json:"question"`
	QuestionTime time.Time `json:"question_time"`
	Answers      []Answer  `json:"answers"`
}

// Conversation is the full ordered history of one session.
type Conversation struct {
	SessionID string             `json:"session_id"`
	Items     []ConversationItem `json:"conversation"`
}

// ChatResponse is the result of POST /chat/.
type ChatResponse struct {
	QuestionID string    `json:"question_id"`
	AnswerID   string    `json:"answer_id"`
	Question   string    `json:"question"`
	Answer     string    `json:"answer"`
	CreatedAt  time.Time `json:"created_at"`
}

// FileInfo describes an uploaded file as stored by the backend.
type FileInfo struct {
	Filename         string `json:"filename"`
	Size             int64  `json:"size"`
	ContentType      string `json:"content_type"`
	Path             string `json:"path"`
	ExtractedContent string `json:"extracted_content"`
}

// UploadResult is the response from /file/upload-file/.
type UploadResult struct {
	Message  string   `json:"message"`
	FileInfo FileInfo `json:"file_info"`
}

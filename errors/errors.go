package errors

import "fmt"

var (
	ErrInvalidToken         = fmt.Errorf("invalid or expired token")
	ErrTokenGeneration      = fmt.Errorf("token generation failed")
	ErrNotAuthenticated     = fmt.Errorf("connection is not authenticated")
	ErrSenderMismatch       = fmt.Errorf("sender does not match the authenticated session")
	ErrNotParticipant       = fmt.Errorf("caller is not a participant of the conversation")
	ErrEmptyMessage         = fmt.Errorf("message body is empty")
	ErrUserNotFound         = fmt.Errorf("user document not found")
	ErrConversationNotFound = fmt.Errorf("conversation not found")
	ErrInvalidCredentials   = fmt.Errorf("email or password does not match")
)

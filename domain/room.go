// Package domain contains core concepts of the Connectrix real-time layer.
// No runtime, network, or storage logic should be added here.
package domain

// RoomID names a fan-out group of live connections.
// User rooms receive targeted events independent of any open conversation;
// chat rooms receive events scoped to one conversation.
type RoomID string

func UserRoom(userID string) RoomID {
	return RoomID("user_" + userID)
}

func ChatRoom(conversationID string) RoomID {
	return RoomID("chat_" + conversationID)
}

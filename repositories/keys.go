package repositories

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Key layout. Message and notification keys embed a 19-digit zero-padded
// nanosecond timestamp so that a plain prefix scan yields chronological
// order, with the UUID as a collision disconnector if two writes land on
// the same nanosecond.
//
//	user:{id}                          user document (presence included)
//	useremail:{email}                  email -> user id index
//	conv:{id}                          conversation document
//	convpair:{a}:{b}                   unordered participant pair -> conversation id
//	msg:{convID}:{padded-ts}:{uuid}    message document
//	notif:{recipientID}:{padded-ts}:{uuid}  notification document
const (
	userPrefix      = "user:"
	userEmailPrefix = "useremail:"
	convPrefix      = "conv:"
	convPairPrefix  = "convpair:"
	msgPrefix       = "msg:"
	notifPrefix     = "notif:"
)

func userKey(id string) []byte       { return []byte(userPrefix + id) }
func userEmailKey(e string) []byte   { return []byte(userEmailPrefix + e) }
func convKey(id string) []byte       { return []byte(convPrefix + id) }
func convPairKey(pair string) []byte { return []byte(convPairPrefix + pair) }

func messageKey(conversationID string, at time.Time, id uuid.UUID) []byte {
	return []byte(fmt.Sprintf("%s%s:%019d:%s", msgPrefix, conversationID, at.UnixNano(), id))
}

func messagePrefix(conversationID string) []byte {
	return []byte(msgPrefix + conversationID + ":")
}

func notificationKey(recipientID string, at time.Time, id uuid.UUID) []byte {
	return []byte(fmt.Sprintf("%s%s:%019d:%s", notifPrefix, recipientID, at.UnixNano(), id))
}

// NotificationPrefix is exported for the live-query subscriptions of the
// client-side aggregator.
func NotificationPrefix(recipientID string) []byte {
	return []byte(notifPrefix + recipientID + ":")
}

// ConversationPrefix covers every conversation document; subscribers filter
// by participant in their callback since the key carries no user id.
func ConversationPrefix() []byte {
	return []byte(convPrefix)
}

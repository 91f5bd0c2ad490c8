package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeUserCreated          = "user.created"
	EventTypeUserVerified         = "user.verified"
	EventTypeUserDeleted          = "user.deleted"
	EventTypeStoreCreated         = "store.created"
	EventTypeStoreDeleted         = "store.deleted"
	EventTypeStoreEmployeeAdded   = "store.employee_added"
	EventTypeStoreEmployeeRemoved = "store.employee_removed"
	EventTypeInventoryItemChanged = "inventory.item_changed"
)

func newEvent(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
	}
}

func NewUserCreatedEvent(email, role string) BaseEvent {
	return newEvent(EventTypeUserCreated, map[string]interface{}{"email": email, "role": role})
}

func NewUserVerifiedEvent(userID int64, email string) BaseEvent {
	return newEvent(EventTypeUserVerified, map[string]interface{}{"user_id": userID, "email": email})
}

func NewUserDeletedEvent(userID int64, email string) BaseEvent {
	return newEvent(EventTypeUserDeleted, map[string]interface{}{"user_id": userID, "email": email})
}

func NewStoreCreatedEvent(storeName string) BaseEvent {
	return newEvent(EventTypeStoreCreated, map[string]interface{}{"store": storeName})
}

func NewStoreDeletedEvent(storeID int64, storeName string) BaseEvent {
	return newEvent(EventTypeStoreDeleted, map[string]interface{}{"store_id": storeID, "store": storeName})
}

func NewEmployeeAddedEvent(storeName, email string) BaseEvent {
	return newEvent(EventTypeStoreEmployeeAdded, map[string]interface{}{"store": storeName, "email": email})
}

func NewEmployeeRemovedEvent(storeName, email string) BaseEvent {
	return newEvent(EventTypeStoreEmployeeRemoved, map[string]interface{}{"store": storeName, "email": email})
}

// NewItemChangedEvent reports an item being created, updated or deleted.
func NewItemChangedEvent(storeName, itemName, change string, quantity int64) BaseEvent {
	return newEvent(EventTypeInventoryItemChanged, map[string]interface{}{
		"store":    storeName,
		"item":     itemName,
		"change":   change,
		"quantity": quantity,
	})
}

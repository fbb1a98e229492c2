package amqp

import (
	"encoding/json"
	"time"
)

// SnapshotDirtyMessage tells the sync worker that the local snapshot changed
// and the cloud document needs a push. It carries no payload beyond the group
// id; the worker reads the current snapshot from the cache, so a burst of
// edits collapses into whatever state is current when the push runs.
type SnapshotDirtyMessage struct {
	GroupID   string    `json:"groupId"`
	Timestamp time.Time `json:"timestamp"`
}

func NewSnapshotDirtyMessage(groupID string) *SnapshotDirtyMessage {
	return &SnapshotDirtyMessage{
		GroupID:   groupID,
		Timestamp: time.Now(),
	}
}

func (m *SnapshotDirtyMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func SnapshotDirtyMessageFromJSON(data []byte) (*SnapshotDirtyMessage, error) {
	var msg SnapshotDirtyMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

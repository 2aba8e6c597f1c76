package delivery

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var bucketOutbox = []byte("outbox")

// Message is a rendered email captured by the simulator instead of being
// handed to a real transport.
type Message struct {
	ID         string    `json:"id"`
	EmailID    int64     `json:"email_id"`
	CampaignID int64     `json:"campaign_id"`
	To         string    `json:"to"`
	Subject    string    `json:"subject"`
	Body       string    `json:"body"`
	CapturedAt time.Time `json:"captured_at"`
}

// Outbox stores captured messages in BoltDB
type Outbox struct {
	db *bolt.DB
}

// OpenOutbox opens (creating if needed) the outbox database at path
func OpenOutbox(path string) (*Outbox, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create outbox directory: %w", err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open outbox: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketOutbox)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create outbox bucket: %w", err)
	}

	return &Outbox{db: db}, nil
}

// Close closes the underlying database
func (o *Outbox) Close() error {
	return o.db.Close()
}

// Save stores a captured message
func (o *Outbox) Save(ctx context.Context, msg *Message) error {
	return o.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketOutbox)

		data, err := json.Marshal(msg)
		if err != nil {
			return fmt.Errorf("failed to marshal message: %w", err)
		}

		// Key by capture time so cursor order is chronological
		return bucket.Put(makeIndexKey(msg.CapturedAt, msg.ID), data)
	})
}

// List returns captured messages, newest first
func (o *Outbox) List(ctx context.Context, limit int) ([]*Message, error) {
	var messages []*Message

	err := o.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketOutbox).Cursor()

		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			var msg Message
			if err := json.Unmarshal(v, &msg); err != nil {
				continue
			}
			messages = append(messages, &msg)

			if limit > 0 && len(messages) >= limit {
				break
			}
		}
		return nil
	})

	return messages, err
}

// Count returns the number of captured messages
func (o *Outbox) Count(ctx context.Context) (int, error) {
	var n int
	err := o.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(bucketOutbox).Stats().KeyN
		return nil
	})
	return n, err
}

// Clear removes all captured messages
func (o *Outbox) Clear(ctx context.Context) error {
	return o.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(bucketOutbox); err != nil {
			return err
		}
		_, err := tx.CreateBucket(bucketOutbox)
		return err
	})
}

func makeIndexKey(t time.Time, id string) []byte {
	return []byte(t.Format(time.RFC3339Nano) + ":" + id)
}

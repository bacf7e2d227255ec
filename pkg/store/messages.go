package store

import (
	"errors"
	"sort"

	"anonymchat/pkg/logger"
	"anonymchat/pkg/models"
	"anonymchat/pkg/utils"
)

// ErrParentNotFound is returned when a reply references a parent id absent
// from the store.
var ErrParentNotFound = errors.New("parent message not found")

// ErrParentIsReply is returned when a reply targets another reply; threads
// are two levels deep only.
var ErrParentIsReply = errors.New("cannot reply to a reply")

func loadMessages() ([]models.Message, error) {
	msgs := []models.Message{}
	if err := messages.load(&msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

func sortNewestFirst(msgs []models.Message) {
	sort.SliceStable(msgs, func(i, j int) bool {
		return newerThan(msgs[i].Timestamp, msgs[j].Timestamp)
	})
}

// ListTopLevel returns messages with no parent, newest-first. This backs
// the public feed and the client polling endpoint.
func ListTopLevel() ([]models.Message, error) {
	messages.mu.Lock()
	defer messages.mu.Unlock()
	msgs, err := loadMessages()
	if err != nil {
		return nil, err
	}
	out := make([]models.Message, 0, len(msgs))
	for _, m := range msgs {
		if !m.IsReply() {
			out = append(out, m)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

// ListAllMessages returns every message, replies included, newest-first.
// Used by the admin view and reply lookups.
func ListAllMessages() ([]models.Message, error) {
	messages.mu.Lock()
	defer messages.mu.Unlock()
	msgs, err := loadMessages()
	if err != nil {
		return nil, err
	}
	sortNewestFirst(msgs)
	return msgs, nil
}

// ListReplies returns the direct replies of parentID, oldest-first
// (conversational order).
func ListReplies(parentID string) ([]models.Message, error) {
	messages.mu.Lock()
	defer messages.mu.Unlock()
	msgs, err := loadMessages()
	if err != nil {
		return nil, err
	}
	out := make([]models.Message, 0)
	for _, m := range msgs {
		if m.ParentID == parentID {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return newerThan(out[j].Timestamp, out[i].Timestamp)
	})
	return out, nil
}

// AddMessage assigns the id, timestamp and zeroed counters, prepends the
// message and rewrites the file. When the message is a reply the parent's
// ReplyCount is incremented in the same write, keeping the denormalized
// counter consistent with the rewrite it belongs to.
func AddMessage(m models.Message) (models.Message, error) {
	messages.mu.Lock()
	defer messages.mu.Unlock()
	msgs, err := loadMessages()
	if err != nil {
		return models.Message{}, err
	}

	m.ID = utils.GenMessageID()
	m.Timestamp = utils.NowISO()
	m.Reposts = 0
	m.ReplyCount = 0

	if m.IsReply() {
		idx := -1
		for i := range msgs {
			if msgs[i].ID == m.ParentID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return models.Message{}, ErrParentNotFound
		}
		if msgs[idx].IsReply() {
			return models.Message{}, ErrParentIsReply
		}
		msgs[idx].ReplyCount++
	}

	msgs = append([]models.Message{m}, msgs...)
	if err := messages.save(msgs); err != nil {
		return models.Message{}, err
	}
	logger.Info("message_saved", "id", m.ID, "parent", m.ParentID, "nickname", m.Nickname)
	return m, nil
}

// IncrementReposts bumps the repost counter of one message. There is no cap
// and no dedup; every call counts. Returns ok=false when the id is unknown.
func IncrementReposts(id string) (models.Message, bool, error) {
	messages.mu.Lock()
	defer messages.mu.Unlock()
	msgs, err := loadMessages()
	if err != nil {
		return models.Message{}, false, err
	}
	for i := range msgs {
		if msgs[i].ID == id {
			msgs[i].Reposts++
			if err := messages.save(msgs); err != nil {
				return models.Message{}, false, err
			}
			return msgs[i], true, nil
		}
	}
	return models.Message{}, false, nil
}

// DeleteMessageCascade removes the message and, when it is top-level, every
// direct reply, in one rewrite. Deleting a reply decrements its parent's
// ReplyCount, floored at zero. The removed messages are returned so callers
// can clean up uploaded files.
func DeleteMessageCascade(id string) ([]models.Message, bool, error) {
	messages.mu.Lock()
	defer messages.mu.Unlock()
	msgs, err := loadMessages()
	if err != nil {
		return nil, false, err
	}

	var target *models.Message
	for i := range msgs {
		if msgs[i].ID == id {
			target = &msgs[i]
			break
		}
	}
	if target == nil {
		return nil, false, nil
	}

	doomed := map[string]struct{}{id: {}}
	if !target.IsReply() {
		for i := range msgs {
			if msgs[i].ParentID == id {
				doomed[msgs[i].ID] = struct{}{}
			}
		}
	}

	removed := make([]models.Message, 0, len(doomed))
	kept := make([]models.Message, 0, len(msgs))
	parentID := target.ParentID
	for _, m := range msgs {
		if _, gone := doomed[m.ID]; gone {
			removed = append(removed, m)
			continue
		}
		kept = append(kept, m)
	}
	if parentID != "" {
		for i := range kept {
			if kept[i].ID == parentID {
				if kept[i].ReplyCount > 0 {
					kept[i].ReplyCount--
				}
				break
			}
		}
	}
	if err := messages.save(kept); err != nil {
		return nil, false, err
	}
	logger.Info("message_deleted", "id", id, "cascade", len(removed)-1)
	return removed, true, nil
}

// CountMessages returns the number of top-level messages and replies.
func CountMessages() (topLevel int, replies int, err error) {
	messages.mu.Lock()
	defer messages.mu.Unlock()
	msgs, err := loadMessages()
	if err != nil {
		return 0, 0, err
	}
	for _, m := range msgs {
		if m.IsReply() {
			replies++
		} else {
			topLevel++
		}
	}
	return topLevel, replies, nil
}

// ReconcileMessages recomputes every ReplyCount from a full scan and drops
// replies whose parent no longer exists. It rewrites the file only when
// drift was found. Returns the number of repaired counters and removed
// orphans.
func ReconcileMessages() (repaired int, orphans int, err error) {
	messages.mu.Lock()
	defer messages.mu.Unlock()
	msgs, err := loadMessages()
	if err != nil {
		return 0, 0, err
	}

	topLevel := map[string]int{}
	for _, m := range msgs {
		if !m.IsReply() {
			topLevel[m.ID] = 0
		}
	}
	kept := make([]models.Message, 0, len(msgs))
	for _, m := range msgs {
		if m.IsReply() {
			if _, ok := topLevel[m.ParentID]; !ok {
				orphans++
				continue
			}
			topLevel[m.ParentID]++
		}
		kept = append(kept, m)
	}
	for i := range kept {
		if kept[i].IsReply() {
			continue
		}
		if want := topLevel[kept[i].ID]; kept[i].ReplyCount != want {
			kept[i].ReplyCount = want
			repaired++
		}
	}
	if repaired == 0 && orphans == 0 {
		return 0, 0, nil
	}
	if err := messages.save(kept); err != nil {
		return 0, 0, err
	}
	logger.Warn("messages_reconciled", "repaired", repaired, "orphans", orphans)
	return repaired, orphans, nil
}

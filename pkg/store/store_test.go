package store

import (
	"os"
	"path/filepath"
	"testing"

	"anonymchat/pkg/logger"
	"anonymchat/pkg/models"
)

func setup(t *testing.T) string {
	t.Helper()
	logger.Init()
	dir := t.TempDir()
	if err := Open(dir); err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { _ = Close() })
	return dir
}

func TestRoundTrip(t *testing.T) {
	setup(t)
	want := []string{"first", "second", "third"}
	for _, c := range want {
		if _, err := AddMessage(models.Message{Nickname: "anon", Content: c}); err != nil {
			t.Fatalf("AddMessage(%q): %v", c, err)
		}
	}
	got, err := ListTopLevel()
	if err != nil {
		t.Fatalf("ListTopLevel: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d messages, got %d", len(want), len(got))
	}
	for _, m := range got {
		if m.ID == "" || m.Timestamp == "" || m.Nickname != "anon" {
			t.Fatalf("field loss on round trip: %+v", m)
		}
		if m.Reposts != 0 || m.ReplyCount != 0 {
			t.Fatalf("counters not zeroed: %+v", m)
		}
	}
	// newest-first
	if got[0].Content != "third" {
		t.Fatalf("expected newest first, got %q", got[0].Content)
	}
}

func TestReplyIncrementsParent(t *testing.T) {
	setup(t)
	a, err := AddMessage(models.Message{Nickname: "anon", Content: "A"})
	if err != nil {
		t.Fatalf("AddMessage A: %v", err)
	}
	b, err := AddMessage(models.Message{Nickname: "anon", Content: "B", ParentID: a.ID})
	if err != nil {
		t.Fatalf("AddMessage B: %v", err)
	}

	top, err := ListTopLevel()
	if err != nil {
		t.Fatalf("ListTopLevel: %v", err)
	}
	if len(top) != 1 || top[0].ID != a.ID {
		t.Fatalf("expected only A top-level, got %+v", top)
	}
	if top[0].ReplyCount != 1 {
		t.Fatalf("expected ReplyCount=1, got %d", top[0].ReplyCount)
	}
	replies, err := ListReplies(a.ID)
	if err != nil {
		t.Fatalf("ListReplies: %v", err)
	}
	if len(replies) != 1 || replies[0].ID != b.ID {
		t.Fatalf("expected replies=[B], got %+v", replies)
	}
}

func TestReplyOrderingOldestFirst(t *testing.T) {
	setup(t)
	a, _ := AddMessage(models.Message{Nickname: "anon", Content: "A"})
	r1, _ := AddMessage(models.Message{Nickname: "anon", Content: "r1", ParentID: a.ID})
	r2, _ := AddMessage(models.Message{Nickname: "anon", Content: "r2", ParentID: a.ID})
	replies, err := ListReplies(a.ID)
	if err != nil {
		t.Fatalf("ListReplies: %v", err)
	}
	if len(replies) != 2 || replies[0].ID != r1.ID || replies[1].ID != r2.ID {
		t.Fatalf("expected conversational order [r1 r2], got %+v", replies)
	}
}

func TestReplyToReplyRejected(t *testing.T) {
	setup(t)
	a, _ := AddMessage(models.Message{Nickname: "anon", Content: "A"})
	b, _ := AddMessage(models.Message{Nickname: "anon", Content: "B", ParentID: a.ID})
	if _, err := AddMessage(models.Message{Nickname: "anon", Content: "C", ParentID: b.ID}); err != ErrParentIsReply {
		t.Fatalf("expected ErrParentIsReply, got %v", err)
	}
}

func TestReplyToMissingParentRejected(t *testing.T) {
	setup(t)
	if _, err := AddMessage(models.Message{Nickname: "anon", Content: "B", ParentID: "msg_nope"}); err != ErrParentNotFound {
		t.Fatalf("expected ErrParentNotFound, got %v", err)
	}
}

func TestCascadeDelete(t *testing.T) {
	setup(t)
	a, _ := AddMessage(models.Message{Nickname: "anon", Content: "A"})
	AddMessage(models.Message{Nickname: "anon", Content: "r1", ParentID: a.ID})
	AddMessage(models.Message{Nickname: "anon", Content: "r2", ParentID: a.ID})
	other, _ := AddMessage(models.Message{Nickname: "anon", Content: "other"})

	removed, ok, err := DeleteMessageCascade(a.ID)
	if err != nil || !ok {
		t.Fatalf("DeleteMessageCascade: ok=%v err=%v", ok, err)
	}
	if len(removed) != 3 {
		t.Fatalf("expected 3 removed (A + 2 replies), got %d", len(removed))
	}
	all, err := ListAllMessages()
	if err != nil {
		t.Fatalf("ListAllMessages: %v", err)
	}
	if len(all) != 1 || all[0].ID != other.ID {
		t.Fatalf("expected only %q to survive, got %+v", other.ID, all)
	}
}

func TestDeleteReplyDecrementsParent(t *testing.T) {
	setup(t)
	a, _ := AddMessage(models.Message{Nickname: "anon", Content: "A"})
	b, _ := AddMessage(models.Message{Nickname: "anon", Content: "B", ParentID: a.ID})

	removed, ok, err := DeleteMessageCascade(b.ID)
	if err != nil || !ok {
		t.Fatalf("delete reply: ok=%v err=%v", ok, err)
	}
	if len(removed) != 1 {
		t.Fatalf("reply delete should not cascade, removed %d", len(removed))
	}
	top, _ := ListTopLevel()
	if top[0].ReplyCount != 0 {
		t.Fatalf("expected ReplyCount back to 0, got %d", top[0].ReplyCount)
	}
}

func TestDeleteReplyFloorsAtZero(t *testing.T) {
	setup(t)
	// Craft a store where the parent's counter already drifted to zero.
	msgs := []models.Message{
		{ID: "msg_b", Nickname: "anon", Content: "B", Timestamp: "2024-01-02T00:00:00Z", ParentID: "msg_a"},
		{ID: "msg_a", Nickname: "anon", Content: "A", Timestamp: "2024-01-01T00:00:00Z", ReplyCount: 0},
	}
	if err := messages.save(msgs); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, ok, err := DeleteMessageCascade("msg_b"); err != nil || !ok {
		t.Fatalf("delete: ok=%v err=%v", ok, err)
	}
	all, _ := ListAllMessages()
	if len(all) != 1 || all[0].ReplyCount != 0 {
		t.Fatalf("ReplyCount must not go below 0: %+v", all)
	}
}

func TestDeleteUnknownMessage(t *testing.T) {
	setup(t)
	if _, ok, err := DeleteMessageCascade("msg_nope"); err != nil || ok {
		t.Fatalf("expected ok=false for unknown id, got ok=%v err=%v", ok, err)
	}
}

func TestRepostThreeTimes(t *testing.T) {
	setup(t)
	a, _ := AddMessage(models.Message{Nickname: "anon", Content: "A"})
	var got models.Message
	for i := 0; i < 3; i++ {
		m, ok, err := IncrementReposts(a.ID)
		if err != nil || !ok {
			t.Fatalf("IncrementReposts: ok=%v err=%v", ok, err)
		}
		got = m
	}
	if got.Reposts != 3 {
		t.Fatalf("expected 3 reposts, got %d", got.Reposts)
	}
	if _, ok, _ := IncrementReposts("msg_nope"); ok {
		t.Fatalf("expected ok=false for unknown id")
	}
}

func TestVoteTotals(t *testing.T) {
	setup(t)
	p, err := AddPoll("Admin", "Red or Blue?", []string{"Red", "Blue"}, "")
	if err != nil {
		t.Fatalf("AddPoll: %v", err)
	}
	blue := p.Options[1]
	for i := 0; i < 2; i++ {
		if _, ok, err := Vote(p.ID, blue.ID); err != nil || !ok {
			t.Fatalf("Vote: ok=%v err=%v", ok, err)
		}
	}
	ps, err := ListPolls()
	if err != nil {
		t.Fatalf("ListPolls: %v", err)
	}
	got := ps[0]
	if got.TotalVotes != 2 {
		t.Fatalf("expected TotalVotes=2, got %d", got.TotalVotes)
	}
	if got.Options[0].Votes != 0 || got.Options[1].Votes != 2 {
		t.Fatalf("expected Red=0 Blue=2, got %+v", got.Options)
	}
	if got.TotalVotes != got.SumVotes() {
		t.Fatalf("TotalVotes %d != sum %d", got.TotalVotes, got.SumVotes())
	}
}

func TestVoteUnknownIDs(t *testing.T) {
	setup(t)
	p, _ := AddPoll("Admin", "Q", []string{"a", "b"}, "")
	if _, ok, _ := Vote("poll_nope", p.Options[0].ID); ok {
		t.Fatalf("expected ok=false for unknown poll")
	}
	if _, ok, _ := Vote(p.ID, "opt_nope"); ok {
		t.Fatalf("expected ok=false for unknown option")
	}
}

func TestPollOptionBounds(t *testing.T) {
	setup(t)
	mk := func(n int) []string {
		out := make([]string, n)
		for i := range out {
			out[i] = "opt"
		}
		return out
	}
	if _, err := AddPoll("Admin", "Q", mk(1), ""); err == nil {
		t.Fatalf("1 option must fail")
	}
	if _, err := AddPoll("Admin", "Q", mk(11), ""); err == nil {
		t.Fatalf("11 options must fail")
	}
	if _, err := AddPoll("Admin", "Q", mk(2), ""); err != nil {
		t.Fatalf("2 options must succeed: %v", err)
	}
	if _, err := AddPoll("Admin", "Q", mk(10), ""); err != nil {
		t.Fatalf("10 options must succeed: %v", err)
	}
	// blank options are dropped before the bounds check
	if _, err := AddPoll("Admin", "Q", []string{"a", "  ", ""}, ""); err == nil {
		t.Fatalf("one non-blank option must fail")
	}
}

func TestDeletePoll(t *testing.T) {
	setup(t)
	p, _ := AddPoll("Admin", "Q", []string{"a", "b"}, "")
	ok, err := DeletePoll(p.ID)
	if err != nil || !ok {
		t.Fatalf("DeletePoll: ok=%v err=%v", ok, err)
	}
	if ok, _ := DeletePoll(p.ID); ok {
		t.Fatalf("second delete must report not found")
	}
	ps, _ := ListPolls()
	if len(ps) != 0 {
		t.Fatalf("expected empty poll store, got %d", len(ps))
	}
}

func TestMissingAndEmptyFiles(t *testing.T) {
	dir := setup(t)
	msgs, err := ListTopLevel()
	if err != nil || len(msgs) != 0 {
		t.Fatalf("missing file: want empty, got %v err=%v", msgs, err)
	}
	if err := os.WriteFile(filepath.Join(dir, "messages.json"), []byte("  \n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	msgs, err = ListTopLevel()
	if err != nil || len(msgs) != 0 {
		t.Fatalf("empty file: want empty, got %v err=%v", msgs, err)
	}
}

func TestCorruptFileReadAsEmpty(t *testing.T) {
	dir := setup(t)
	if err := os.WriteFile(filepath.Join(dir, "polls.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	ps, err := ListPolls()
	if err != nil || len(ps) != 0 {
		t.Fatalf("corrupt file: want empty, got %v err=%v", ps, err)
	}
	// a write after the parse failure replaces the corrupt file wholesale
	if _, err := AddPoll("Admin", "Q", []string{"a", "b"}, ""); err != nil {
		t.Fatalf("AddPoll after corruption: %v", err)
	}
	ps, err = ListPolls()
	if err != nil || len(ps) != 1 {
		t.Fatalf("expected fresh store with 1 poll, got %v err=%v", ps, err)
	}
}

func TestPreferenceMergeUpsert(t *testing.T) {
	setup(t)
	p, _, err := UpsertPreference("kasper", PreferenceUpdate{Badges: []string{models.BadgeMod}})
	if err != nil {
		t.Fatalf("upsert badges: %v", err)
	}
	if len(p.Badges) != 1 || p.Badges[0] != models.BadgeMod {
		t.Fatalf("badges not applied: %+v", p)
	}

	// setting the background must not touch badges
	p, replaced, err := UpsertPreference("kasper", PreferenceUpdate{SetBackground: true, BackgroundURL: "/uploads/userbg-kasper-1.gif"})
	if err != nil {
		t.Fatalf("upsert bg: %v", err)
	}
	if replaced != "" {
		t.Fatalf("no previous background to replace, got %q", replaced)
	}
	if len(p.Badges) != 1 || p.BackgroundGifURL == "" {
		t.Fatalf("merge lost fields: %+v", p)
	}

	// replacing returns the old URL for cleanup
	_, replaced, err = UpsertPreference("kasper", PreferenceUpdate{SetBackground: true, BackgroundURL: "/uploads/userbg-kasper-2.gif"})
	if err != nil || replaced != "/uploads/userbg-kasper-1.gif" {
		t.Fatalf("expected old bg back, got %q err=%v", replaced, err)
	}

	// explicit removal clears the field and reports the removed URL
	p, replaced, err = UpsertPreference("kasper", PreferenceUpdate{SetBackground: true})
	if err != nil || replaced != "/uploads/userbg-kasper-2.gif" {
		t.Fatalf("expected removed bg back, got %q err=%v", replaced, err)
	}
	if p.BackgroundGifURL != "" {
		t.Fatalf("background not removed: %+v", p)
	}

	got, ok, err := GetPreference("kasper")
	if err != nil || !ok {
		t.Fatalf("GetPreference: ok=%v err=%v", ok, err)
	}
	if len(got.Badges) != 1 {
		t.Fatalf("badges lost across upserts: %+v", got)
	}
}

func TestDeletePreference(t *testing.T) {
	setup(t)
	UpsertPreference("kasper", PreferenceUpdate{SetBackground: true, BackgroundURL: "/uploads/userbg-kasper-1.gif"})
	ok, oldBG, err := DeletePreference("kasper")
	if err != nil || !ok || oldBG != "/uploads/userbg-kasper-1.gif" {
		t.Fatalf("DeletePreference: ok=%v bg=%q err=%v", ok, oldBG, err)
	}
	if _, ok, _ := GetPreference("kasper"); ok {
		t.Fatalf("preference should be gone")
	}
	if ok, _, _ := DeletePreference("kasper"); ok {
		t.Fatalf("second delete must report not found")
	}
}

func TestReconcileRepairsDrift(t *testing.T) {
	setup(t)
	msgs := []models.Message{
		{ID: "msg_a", Content: "A", Timestamp: "2024-01-01T00:00:00Z", ReplyCount: 5},
		{ID: "msg_b", Content: "B", Timestamp: "2024-01-02T00:00:00Z", ParentID: "msg_a"},
		{ID: "msg_orphan", Content: "o", Timestamp: "2024-01-03T00:00:00Z", ParentID: "msg_gone"},
	}
	if err := messages.save(msgs); err != nil {
		t.Fatalf("seed: %v", err)
	}
	repaired, orphans, err := ReconcileMessages()
	if err != nil {
		t.Fatalf("ReconcileMessages: %v", err)
	}
	if repaired != 1 || orphans != 1 {
		t.Fatalf("expected repaired=1 orphans=1, got %d/%d", repaired, orphans)
	}
	all, _ := ListAllMessages()
	if len(all) != 2 {
		t.Fatalf("orphan not dropped: %+v", all)
	}
	for _, m := range all {
		if m.ID == "msg_a" && m.ReplyCount != 1 {
			t.Fatalf("ReplyCount not repaired: %+v", m)
		}
	}

	pollsSeed := []models.Poll{{
		ID: "poll_x", Question: "Q", Timestamp: "2024-01-01T00:00:00Z",
		Options:    []models.PollOption{{ID: "o1", Text: "a", Votes: 3}, {ID: "o2", Text: "b", Votes: 1}},
		TotalVotes: 9,
	}}
	if err := polls.save(pollsSeed); err != nil {
		t.Fatalf("seed polls: %v", err)
	}
	fixed, err := ReconcilePolls()
	if err != nil || fixed != 1 {
		t.Fatalf("ReconcilePolls: fixed=%d err=%v", fixed, err)
	}
	ps, _ := ListPolls()
	if ps[0].TotalVotes != 4 {
		t.Fatalf("TotalVotes not repaired: %d", ps[0].TotalVotes)
	}

	// a clean store is left untouched
	if repaired, orphans, err := ReconcileMessages(); err != nil || repaired != 0 || orphans != 0 {
		t.Fatalf("second reconcile should be a no-op: %d/%d err=%v", repaired, orphans, err)
	}
}

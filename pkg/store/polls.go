package store

import (
	"fmt"
	"sort"
	"strings"

	"anonymchat/pkg/logger"
	"anonymchat/pkg/models"
	"anonymchat/pkg/utils"
)

// MinPollOptions and MaxPollOptions bound the option list at creation.
const (
	MinPollOptions = 2
	MaxPollOptions = 10
)

func loadPolls() ([]models.Poll, error) {
	ps := []models.Poll{}
	if err := polls.load(&ps); err != nil {
		return nil, err
	}
	return ps, nil
}

// ListPolls returns all polls, newest-first.
func ListPolls() ([]models.Poll, error) {
	polls.mu.Lock()
	defer polls.mu.Unlock()
	ps, err := loadPolls()
	if err != nil {
		return nil, err
	}
	sort.SliceStable(ps, func(i, j int) bool {
		return newerThan(ps[i].Timestamp, ps[j].Timestamp)
	})
	return ps, nil
}

// AddPoll creates a poll from 2..10 non-empty option texts. Option ids are
// assigned here; votes and TotalVotes start at zero.
func AddPoll(nickname, question string, optionTexts []string, ip string) (models.Poll, error) {
	texts := make([]string, 0, len(optionTexts))
	for _, t := range optionTexts {
		if s := strings.TrimSpace(t); s != "" {
			texts = append(texts, s)
		}
	}
	if len(texts) < MinPollOptions {
		return models.Poll{}, fmt.Errorf("poll must have at least %d options", MinPollOptions)
	}
	if len(texts) > MaxPollOptions {
		return models.Poll{}, fmt.Errorf("poll must have at most %d options", MaxPollOptions)
	}

	polls.mu.Lock()
	defer polls.mu.Unlock()
	ps, err := loadPolls()
	if err != nil {
		return models.Poll{}, err
	}

	p := models.Poll{
		ID:        utils.GenPollID(),
		Nickname:  nickname,
		Question:  question,
		Timestamp: utils.NowISO(),
		IPAddress: ip,
	}
	for i, t := range texts {
		p.Options = append(p.Options, models.PollOption{ID: utils.GenOptionID(i), Text: t})
	}

	ps = append([]models.Poll{p}, ps...)
	if err := polls.save(ps); err != nil {
		return models.Poll{}, err
	}
	logger.Info("poll_saved", "id", p.ID, "options", len(p.Options))
	return p, nil
}

// Vote increments one option's vote count and the poll's TotalVotes in the
// same rewrite. There is no duplicate-vote prevention; repeated votes all
// count. Returns ok=false when the poll or option id is unknown.
func Vote(pollID, optionID string) (models.Poll, bool, error) {
	polls.mu.Lock()
	defer polls.mu.Unlock()
	ps, err := loadPolls()
	if err != nil {
		return models.Poll{}, false, err
	}
	for i := range ps {
		if ps[i].ID != pollID {
			continue
		}
		for j := range ps[i].Options {
			if ps[i].Options[j].ID == optionID {
				ps[i].Options[j].Votes++
				ps[i].TotalVotes++
				if err := polls.save(ps); err != nil {
					return models.Poll{}, false, err
				}
				return ps[i], true, nil
			}
		}
		logger.Warn("vote_option_missing", "poll", pollID, "option", optionID)
		return models.Poll{}, false, nil
	}
	return models.Poll{}, false, nil
}

// DeletePoll removes the poll by id. Returns ok=false when unknown.
func DeletePoll(id string) (bool, error) {
	polls.mu.Lock()
	defer polls.mu.Unlock()
	ps, err := loadPolls()
	if err != nil {
		return false, err
	}
	kept := make([]models.Poll, 0, len(ps))
	found := false
	for _, p := range ps {
		if p.ID == id {
			found = true
			continue
		}
		kept = append(kept, p)
	}
	if !found {
		return false, nil
	}
	if err := polls.save(kept); err != nil {
		return false, err
	}
	logger.Info("poll_deleted", "id", id)
	return true, nil
}

// CountPolls returns the number of stored polls.
func CountPolls() (int, error) {
	polls.mu.Lock()
	defer polls.mu.Unlock()
	ps, err := loadPolls()
	if err != nil {
		return 0, err
	}
	return len(ps), nil
}

// ReconcilePolls repairs TotalVotes drift against the option sums,
// rewriting only when a mismatch was found.
func ReconcilePolls() (repaired int, err error) {
	polls.mu.Lock()
	defer polls.mu.Unlock()
	ps, err := loadPolls()
	if err != nil {
		return 0, err
	}
	for i := range ps {
		if sum := ps[i].SumVotes(); ps[i].TotalVotes != sum {
			ps[i].TotalVotes = sum
			repaired++
		}
	}
	if repaired == 0 {
		return 0, nil
	}
	if err := polls.save(ps); err != nil {
		return 0, err
	}
	logger.Warn("polls_reconciled", "repaired", repaired)
	return repaired, nil
}

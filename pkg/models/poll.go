package models

// PollOption is one votable entry of a poll.
type PollOption struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Votes int    `json:"votes"`
}

// Poll is a question with 2..10 options. TotalVotes must always equal the
// sum of the option vote counts; both are bumped in the same store write.
type Poll struct {
	ID         string       `json:"id"`
	Nickname   string       `json:"nickname"`
	Question   string       `json:"question"`
	Options    []PollOption `json:"options"`
	Timestamp  string       `json:"timestamp"`
	TotalVotes int          `json:"totalVotes"`
	IPAddress  string       `json:"ipAddress,omitempty"`
}

// SumVotes returns the sum of the option vote counts.
func (p *Poll) SumVotes() int {
	n := 0
	for _, o := range p.Options {
		n += o.Votes
	}
	return n
}

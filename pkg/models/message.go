package models

// Message is a forum post. A message with ParentID set is a reply and is
// rendered nested under its parent; replies never accept further replies,
// so threads are at most two levels deep.
type Message struct {
	ID       string `json:"id"`
	Nickname string `json:"nickname"`
	Content  string `json:"content"`
	// Timestamp is an ISO-8601 string; immutable after creation.
	Timestamp string `json:"timestamp"`
	ParentID  string `json:"parentId,omitempty"`
	Reposts   int    `json:"reposts"`
	// ReplyCount is the denormalized count of direct replies. It is
	// maintained incrementally on reply create/delete, never recomputed
	// on the hot path; the reconcile job repairs drift.
	ReplyCount int `json:"replyCount"`

	// Attachment metadata. FilePreview is a client-supplied data URI used
	// for instant display of images before FileURL is authoritative.
	FileURL     string `json:"fileUrl,omitempty"`
	FileName    string `json:"fileName,omitempty"`
	FileType    string `json:"fileType,omitempty"`
	FilePreview string `json:"filePreview,omitempty"`
	// VideoEmbedURL and the file fields are mutually exclusive; see SetMedia.
	VideoEmbedURL string `json:"videoEmbedUrl,omitempty"`

	// IPAddress is captured server-side for moderation and only exposed
	// through the admin surface.
	IPAddress string `json:"ipAddress,omitempty"`
}

// IsReply reports whether the message is a reply to another message.
func (m *Message) IsReply() bool { return m.ParentID != "" }

// Media describes the single optional media payload of a message.
type Media struct {
	FileName    string
	FileType    string
	FileURL     string
	FilePreview string
	VideoURL    string
}

// SetMedia applies media to the message enforcing exclusivity: a
// non-empty video URL wins and clears every file field.
func (m *Message) SetMedia(media Media) {
	if media.VideoURL != "" {
		m.VideoEmbedURL = media.VideoURL
		m.FileURL = ""
		m.FileName = ""
		m.FileType = ""
		m.FilePreview = ""
		return
	}
	m.VideoEmbedURL = ""
	m.FileURL = media.FileURL
	m.FileName = media.FileName
	m.FileType = media.FileType
	m.FilePreview = media.FilePreview
}

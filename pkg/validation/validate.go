package validation

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultAttachmentTypes is the MIME allowlist applied when the config does
// not supply one. Matches the media the forum UI can render.
var DefaultAttachmentTypes = []string{
	"image/jpeg",
	"image/png",
	"image/gif",
	"image/webp",
	"video/mp4",
	"video/webm",
}

// ValidateNickname checks the nickname length bounds. The nickname is
// free-text and not unique; length is the only constraint.
func ValidateNickname(nickname string, min, max int) error {
	n := len(strings.TrimSpace(nickname))
	if n < min {
		return fmt.Errorf("nickname must be at least %d characters", min)
	}
	if n > max {
		return fmt.Errorf("nickname can be at most %d characters long", max)
	}
	return nil
}

// ValidateContent rejects empty or whitespace-only message content.
func ValidateContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return errors.New("message content cannot be empty")
	}
	return nil
}

// ValidatePollQuestion rejects empty or whitespace-only questions.
func ValidatePollQuestion(question string) error {
	if strings.TrimSpace(question) == "" {
		return errors.New("poll question cannot be empty")
	}
	return nil
}

// ValidateAttachmentType checks an uploaded file's MIME type against the
// allowlist. An empty allowed list falls back to DefaultAttachmentTypes.
func ValidateAttachmentType(mime string, allowed []string) error {
	if len(allowed) == 0 {
		allowed = DefaultAttachmentTypes
	}
	mime = strings.ToLower(strings.TrimSpace(mime))
	for _, a := range allowed {
		if mime == strings.ToLower(a) {
			return nil
		}
	}
	return fmt.Errorf("unsupported attachment type: %s", mime)
}

package validation

import "testing"

func TestValidateNickname(t *testing.T) {
	cases := []struct {
		name string
		nick string
		ok   bool
	}{
		{"too short", "ab", false},
		{"min length", "abc", true},
		{"max length", "12345678901234567890", true},
		{"too long", "123456789012345678901", false},
		{"whitespace only", "    ", false},
		{"trimmed", "  bob  ", true},
	}
	for _, c := range cases {
		err := ValidateNickname(c.nick, 3, 20)
		if (err == nil) != c.ok {
			t.Errorf("%s: nickname %q: err=%v, want ok=%v", c.name, c.nick, err, c.ok)
		}
	}
}

func TestValidateContent(t *testing.T) {
	if err := ValidateContent(""); err == nil {
		t.Errorf("empty content must fail")
	}
	if err := ValidateContent("   \n\t "); err == nil {
		t.Errorf("whitespace-only content must fail")
	}
	if err := ValidateContent("hello"); err != nil {
		t.Errorf("valid content rejected: %v", err)
	}
}

func TestValidateAttachmentType(t *testing.T) {
	if err := ValidateAttachmentType("image/png", nil); err != nil {
		t.Errorf("png should pass default allowlist: %v", err)
	}
	if err := ValidateAttachmentType("IMAGE/GIF", nil); err != nil {
		t.Errorf("mime check should be case-insensitive: %v", err)
	}
	if err := ValidateAttachmentType("application/x-msdownload", nil); err == nil {
		t.Errorf("executable mime must fail")
	}
	if err := ValidateAttachmentType("audio/ogg", []string{"audio/ogg"}); err != nil {
		t.Errorf("config allowlist should win: %v", err)
	}
}

package handlers

// Options carries the effective config values handlers need. Populated once
// at router assembly.
type Options struct {
	NicknameMin     int
	NicknameMax     int
	AdminUser       string
	AdminPass       string
	UploadMaxBytes  int64
	AttachmentTypes []string
}

var opts Options

// Configure sets the handler options for the running server.
func Configure(o Options) { opts = o }

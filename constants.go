package relay_go

const (
	SessionIDKey = "sessionId"
	CodeKey      = "code"
	FileIndexKey = "fileIndex"
	FilesField   = "files"
)

// Allowed MIME types of uploaded files
const (
	MimePDF  = "application/pdf"
	MimeJPEG = "image/jpeg"
	MimePNG  = "image/png"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

const (
	Megabyte = 1 << 20
)

const (
	// Landing page of the static UI
	IndexPage = "/paginas/index.html"
)

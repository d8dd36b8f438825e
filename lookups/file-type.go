package lookups

// Symbols of legal values
// (the set matches what the ingestion sources actually deliver)
const (
	FTunknown = iota
	FTpdf
	FThtml
	FTdocx
	FTpptx
	FTtxt
	FTmd
)

// FileType returns a "generic" string for a given value
func FileType(value int) string {

	var str = ""

	switch {
	case value == FTpdf:
		str = "pdf"
	case value == FThtml:
		str = "html"
	case value == FTdocx:
		str = "docx"
	case value == FTpptx:
		str = "pptx"
	case value == FTtxt:
		str = "txt"
	case value == FTmd:
		str = "md"
	case value == FTunknown:
		str = "unknown"
	}

	return str
}

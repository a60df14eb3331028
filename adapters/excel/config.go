package excel

// Supported CSV text encodings
const (
	EncodingUTF8   = "utf-8"
	EncodingASCII  = "ascii"
	EncodingLatin1 = "latin-1"
)

// ReaderConfig holds configuration for a file data source
type ReaderConfig struct {
	FilePath string `json:"file_path"`
	Encoding string `json:"encoding"`
	// Sheet is the XLSX sheet to read; empty means the first sheet
	Sheet     string `json:"sheet"`
	Delimiter rune   `json:"delimiter"`
	// ParseDates types ISO date/time columns as datetime instead of string
	ParseDates bool `json:"parse_dates"`
	// LenientNumbers accepts currency symbols, percent signs, thousands
	// separators and (123) negatives when typing numeric columns
	LenientNumbers bool `json:"lenient_numbers"`
}

// DefaultReaderConfig returns sensible defaults for reading path
func DefaultReaderConfig(path string) ReaderConfig {
	return ReaderConfig{
		FilePath:  path,
		Encoding:  EncodingUTF8,
		Delimiter: ',',
	}
}

package port

// Sheet is one decoded worksheet: an ordered sequence of rows of raw cell values.
type Sheet struct {
	Name string
	Rows [][]string
}

// SheetDecoder turns raw spreadsheet bytes into ordered sheets.
type SheetDecoder interface {
	Decode(fileBytes []byte) ([]Sheet, error)
}

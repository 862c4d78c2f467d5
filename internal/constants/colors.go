package constants

// Terminal color codes used by the themes
const (
	ColorBlack   = "0"
	ColorRed     = "9"
	ColorGreen   = "10"
	ColorYellow  = "11"
	ColorBlue    = "12"
	ColorMagenta = "13"
	ColorCyan    = "14"
	ColorWhite   = "15"

	ColorBrightCyan     = "51"
	ColorBrightMagenta  = "207"
	ColorDarkBackground = "235"
	ColorDarkerGray     = "236"
	ColorDarkGray       = "240"
	ColorDimGray        = "242"
	ColorMediumGray     = "244"
)

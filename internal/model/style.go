package model

// StyleTag is the presentation class of a row, independent of output format.
type StyleTag string

const (
	StyleNone     StyleTag = ""
	StyleCurrent  StyleTag = "current"
	StylePrevious StyleTag = "previous"
)

// StyleOf derives the presentation class of a row from its execution tag.
func StyleOf(q Quote) StyleTag {
	switch q.Execution {
	case ExecutionCurrent:
		return StyleCurrent
	case ExecutionPrevious:
		return StylePrevious
	default:
		return StyleNone
	}
}

// Color returns the display color name of the tag, or "" for no color.
func (s StyleTag) Color() string {
	switch s {
	case StyleCurrent:
		return "green"
	case StylePrevious:
		return "orange"
	default:
		return ""
	}
}

// HexColor returns the RGB hex code (no leading '#') of the tag's color.
func (s StyleTag) HexColor() string {
	switch s {
	case StyleCurrent:
		return "008000"
	case StylePrevious:
		return "FFA500"
	default:
		return ""
	}
}

package gui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
)

// Terminal safe color palette is available here
// https://upload.wikimedia.org/wikipedia/commons/1/15/Xterm_256color_chart.svg

// Theme is used for coloring the UI
type Theme struct {
	Name         string
	SquareDark   tcell.Color
	SquareLight  tcell.Color
	SquareHigh   tcell.Color
	SquareCheck  tcell.Color
	White        tcell.Color
	Black        tcell.Color
	Rank         tcell.Color
	File         tcell.Color
	Status       tcell.Color
	MeterBase    tcell.Color
	MeterNeutral tcell.Color
	MeterWin     tcell.Color
	MeterLose    tcell.Color
	Score        tcell.Color
	MoveBox      tcell.Color
	Log          tcell.Color
}

// ThemeBasic is the default theme
var ThemeBasic = Theme{
	"basic",            // Name
	tcell.Color188,     // SquareDark
	tcell.Color230,     // SquareLight
	tcell.Color226,     // SquareHigh
	tcell.Color218,     // SquareCheck
	tcell.Color232,     // White
	tcell.Color232,     // Black
	tcell.Color247,     // Rank
	tcell.Color247,     // File
	tcell.Color45,      // Status
	tcell.Color240,     // MeterBase
	tcell.Color45,      // MeterNeutral
	tcell.Color122,     // MeterWin
	tcell.Color167,     // MeterLose
	tcell.Color247,     // Score
	tcell.ColorDefault, // MoveBox
	tcell.Color244,     // Log
}

// ThemeGreen uses the tournament board colors
var ThemeGreen = Theme{
	"green",
	tcell.NewHexColor(0x769656),
	tcell.NewHexColor(0xEEEED2),
	tcell.NewHexColor(0xF6F669),
	tcell.NewHexColor(0xE06666),
	tcell.Color231,
	tcell.Color232,
	tcell.Color247,
	tcell.Color247,
	tcell.Color114,
	tcell.Color240,
	tcell.Color45,
	tcell.Color122,
	tcell.Color167,
	tcell.Color247,
	tcell.ColorDefault,
	tcell.Color244,
}

// ThemeMono sticks to the terminal's own colors plus reverse video squares
var ThemeMono = Theme{
	"mono",
	tcell.ColorGray,
	tcell.ColorSilver,
	tcell.ColorWhite,
	tcell.ColorWhite,
	tcell.ColorBlack,
	tcell.ColorBlack,
	tcell.ColorDefault,
	tcell.ColorDefault,
	tcell.ColorDefault,
	tcell.ColorGray,
	tcell.ColorDefault,
	tcell.ColorWhite,
	tcell.ColorGray,
	tcell.ColorDefault,
	tcell.ColorDefault,
	tcell.ColorGray,
}

var themes = []Theme{ThemeBasic, ThemeGreen, ThemeMono}

// ThemeByName returns the built in theme called name.
func ThemeByName(name string) (Theme, error) {
	for _, t := range themes {
		if t.Name == name {
			return t, nil
		}
	}
	return Theme{}, fmt.Errorf("theme: no theme named %q", name)
}

// colorTag returns the tview style tag for c. ColorDefault resets to the
// terminal's own color instead of being read as black.
func colorTag(c tcell.Color) string {
	if c == tcell.ColorDefault {
		return "[-]"
	}
	return fmt.Sprintf("[#%06x]", c.Hex())
}

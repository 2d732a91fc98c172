package theme

// Centralized theming for the camera window. Provides palette values and InitStyles to
// activate a base theme and configure semantic widget styles.

import (
	tk "modernc.org/tk9.0"
)

// Palette defines core semantic colors used across widgets.
const (
	ColorBg        = "#f7f9fb" // app background
	ColorSurface   = "#ffffff" // preview border, panels
	ColorBorder    = "#d0d7de"
	ColorPrimary   = "#2563eb" // shutter button
	ColorDanger    = "#dc2626" // error panel
	ColorAccent    = "#10b981" // save button
	ColorText      = "#1e293b"
	ColorTextMuted = "#64748b"
)

// PaletteSnapshot represents resolved colors for the active mode.
type PaletteSnapshot struct {
	AppBg     string
	Surface   string
	Border    string
	Primary   string
	Danger    string
	Accent    string
	Text      string
	TextMuted string
}

// Palette returns colors for dark or light mode.
func Palette(dark bool) PaletteSnapshot {
	if dark {
		return PaletteSnapshot{
			AppBg:     "#0b0f19",
			Surface:   "#111827",
			Border:    "#334155",
			Primary:   "#3b82f6",
			Danger:    "#ef4444",
			Accent:    "#10b981",
			Text:      "#f1f5f9",
			TextMuted: "#94a3b8",
		}
	}
	return PaletteSnapshot{
		AppBg:     ColorBg,
		Surface:   ColorSurface,
		Border:    ColorBorder,
		Primary:   ColorPrimary,
		Danger:    ColorDanger,
		Accent:    ColorAccent,
		Text:      ColorText,
		TextMuted: ColorTextMuted,
	}
}

// CurrentPalette returns colors for the current mode.
func CurrentPalette() PaletteSnapshot { return Palette(darkMode) }

// style names used with Style("shutter.TButton") etc.
const (
	StyleShutterButton = "shutter.TButton"
	StyleSaveButton    = "save.TButton"
	StyleErrorLabel    = "error.TLabel"
	StyleNoticeLabel   = "notice.TLabel"
	StyleStatusLabel   = "status.TLabel"
)

// internal flag for current mode
var darkMode bool

// InitStyles (re)applies styles for the current darkMode value.
func InitStyles() { applyStyles(darkMode) }

// SetDark switches dark mode and reapplies styles. Returns new mode value.
func SetDark(dark bool) bool {
	darkMode = dark
	applyStyles(darkMode)
	return darkMode
}

// IsDark reports current mode.
func IsDark() bool { return darkMode }

func applyStyles(dark bool) {
	p := Palette(dark)
	_ = tk.ActivateTheme("azure light") // baseline metrics
	tk.App.Configure(tk.Background(p.AppBg))

	tk.StyleConfigure(StyleShutterButton,
		tk.Background(p.Primary),
		tk.Foreground("white"),
		tk.Padding("6p 4p"),
		tk.Borderwidth(1),
		tk.Relief("ridge"),
	)
	tk.StyleConfigure(StyleSaveButton,
		tk.Background(p.Accent),
		tk.Foreground("white"),
		tk.Padding("4p 3p"),
		tk.Borderwidth(1),
		tk.Relief("ridge"),
	)
	tk.StyleConfigure(StyleErrorLabel,
		tk.Foreground("white"),
		tk.Background(p.Danger),
		tk.Padding("6p 4p"),
		tk.Borderwidth(1),
		tk.Relief("groove"),
	)
	tk.StyleConfigure(StyleNoticeLabel,
		tk.Foreground(p.Text),
		tk.Background(p.Surface),
		tk.Padding("4p 2p"),
	)
	tk.StyleConfigure(StyleStatusLabel,
		tk.Foreground(p.TextMuted),
		tk.Background(p.AppBg),
		tk.Padding("2p 1p"),
	)
}

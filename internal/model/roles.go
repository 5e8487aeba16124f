package model

import (
	"fmt"
	"strings"
)

// Role is the enumerated function of an accessible object, numbered as on the
// AT-SPI bus.
type Role uint32

const (
	RoleInvalid Role = iota
	RoleAcceleratorLabel
	RoleAlert
	RoleAnimation
	RoleArrow
	RoleCalendar
	RoleCanvas
	RoleCheckBox
	RoleCheckMenuItem
	RoleColorChooser
	RoleColumnHeader
	RoleComboBox
	RoleDateEditor
	RoleDesktopIcon
	RoleDesktopFrame
	RoleDial
	RoleDialog
	RoleDirectoryPane
	RoleDrawingArea
	RoleFileChooser
	RoleFiller
	RoleFocusTraversable
	RoleFontChooser
	RoleFrame
	RoleGlassPane
	RoleHtmlContainer
	RoleIcon
	RoleImage
	RoleInternalFrame
	RoleLabel
	RoleLayeredPane
	RoleList
	RoleListItem
	RoleMenu
	RoleMenuBar
	RoleMenuItem
	RoleOptionPane
	RolePageTab
	RolePageTabList
	RolePanel
	RolePasswordText
	RolePopupMenu
	RoleProgressBar
	RolePushButton
	RoleRadioButton
	RoleRadioMenuItem
	RoleRootPane
	RoleRowHeader
	RoleScrollBar
	RoleScrollPane
	RoleSeparator
	RoleSlider
	RoleSpinButton
	RoleSplitPane
	RoleStatusBar
	RoleTable
	RoleTableCell
	RoleTableColumnHeader
	RoleTableRowHeader
	RoleTearoffMenuItem
	RoleTerminal
	RoleText
	RoleToggleButton
	RoleToolBar
	RoleToolTip
	RoleTree
	RoleTreeTable
	RoleUnknown
	RoleViewport
	RoleWindow
	RoleExtended
	RoleHeader
	RoleFooter
	RoleParagraph
	RoleRuler
	RoleApplication
	RoleAutocomplete
	RoleEditbar
	RoleEmbedded
	RoleEntry
	RoleChart
	RoleCaption
	RoleDocumentFrame
	RoleHeading
	RolePage
	RoleSection
	RoleRedundantObject
	RoleForm
	RoleLink
	RoleInputMethodWindow
	RoleTableRow
	RoleTreeItem
	RoleDocumentSpreadsheet
	RoleDocumentPresentation
	RoleDocumentText
	RoleDocumentWeb
	RoleDocumentEmail
	RoleComment
	RoleListBox
	RoleGrouping
	RoleImageMap
	RoleNotification
	RoleInfoBar
	RoleLevelBar
	RoleTitleBar
	RoleBlockQuote
	RoleAudio
	RoleVideo
	RoleDefinition
	RoleArticle
	RoleLandmark
	RoleLog
	RoleMarquee
	RoleMath
	RoleRating
	RoleTimer
	RoleStatic
	RoleMathFraction
	RoleMathRoot
	RoleSubscript
	RoleSuperscript
	RoleDescriptionList
	RoleDescriptionTerm
	RoleDescriptionValue
	RoleFootnote
	RoleContentDeletion
	RoleContentInsertion
	RoleMark
	RoleSuggestion
	RolePushButtonMenu

	roleLastDefined
)

var roleNames = [...]string{
	"invalid",
	"accelerator label",
	"alert",
	"animation",
	"arrow",
	"calendar",
	"canvas",
	"check box",
	"check menu item",
	"color chooser",
	"column header",
	"combo box",
	"date editor",
	"desktop icon",
	"desktop frame",
	"dial",
	"dialog",
	"directory pane",
	"drawing area",
	"file chooser",
	"filler",
	"focus traversable",
	"font chooser",
	"frame",
	"glass pane",
	"html container",
	"icon",
	"image",
	"internal frame",
	"label",
	"layered pane",
	"list",
	"list item",
	"menu",
	"menu bar",
	"menu item",
	"option pane",
	"page tab",
	"page tab list",
	"panel",
	"password text",
	"popup menu",
	"progress bar",
	"push button",
	"radio button",
	"radio menu item",
	"root pane",
	"row header",
	"scroll bar",
	"scroll pane",
	"separator",
	"slider",
	"spin button",
	"split pane",
	"status bar",
	"table",
	"table cell",
	"table column header",
	"table row header",
	"tearoff menu item",
	"terminal",
	"text",
	"toggle button",
	"tool bar",
	"tool tip",
	"tree",
	"tree table",
	"unknown",
	"viewport",
	"window",
	"extended",
	"header",
	"footer",
	"paragraph",
	"ruler",
	"application",
	"autocomplete",
	"editbar",
	"embedded",
	"entry",
	"chart",
	"caption",
	"document frame",
	"heading",
	"page",
	"section",
	"redundant object",
	"form",
	"link",
	"input method window",
	"table row",
	"tree item",
	"document spreadsheet",
	"document presentation",
	"document text",
	"document web",
	"document email",
	"comment",
	"list box",
	"grouping",
	"image map",
	"notification",
	"info bar",
	"level bar",
	"title bar",
	"block quote",
	"audio",
	"video",
	"definition",
	"article",
	"landmark",
	"log",
	"marquee",
	"math",
	"rating",
	"timer",
	"static",
	"math fraction",
	"math root",
	"subscript",
	"superscript",
	"description list",
	"description term",
	"description value",
	"footnote",
	"content deletion",
	"content insertion",
	"mark",
	"suggestion",
	"push button menu",
}

// String returns the role's display name, e.g. "push button".
func (r Role) String() string {
	if r < roleLastDefined {
		return roleNames[r]
	}
	return roleNames[RoleUnknown]
}

// Valid reports whether r is a defined role.
func (r Role) Valid() bool {
	return r < roleLastDefined
}

// ParseRole converts a display name ("push button", "push_button" or
// "push-button") back to a Role.
func ParseRole(s string) (Role, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("_", " ", "-", " ").Replace(s)
	for i, n := range roleNames {
		if n == s {
			return Role(i), true
		}
	}
	return RoleInvalid, false
}

// RoleCodes maps roles to compact codes for agent-oriented output.
var RoleCodes = map[Role]string{
	RolePushButton:     "btn",
	RolePushButtonMenu: "btn",
	RoleToggleButton:   "toggle",
	RoleLabel:          "txt",
	RoleStatic:         "txt",
	RoleParagraph:      "txt",
	RoleHeading:        "txt",
	RoleLink:           "lnk",
	RoleImage:          "img",
	RoleIcon:           "img",
	RoleEntry:          "input",
	RoleText:           "input",
	RolePasswordText:   "input",
	RoleSpinButton:     "input",
	RoleCheckBox:       "chk",
	RoleRadioButton:    "radio",
	RoleMenu:           "menu",
	RoleMenuBar:        "menu",
	RolePopupMenu:      "menu",
	RoleMenuItem:       "menuitem",
	RoleCheckMenuItem:  "menuitem",
	RoleRadioMenuItem:  "menuitem",
	RolePageTabList:    "tab",
	RolePageTab:        "tab",
	RoleList:           "list",
	RoleListBox:        "list",
	RoleTable:          "list",
	RoleTree:           "list",
	RoleTreeTable:      "list",
	RoleTableRow:       "row",
	RoleListItem:       "row",
	RoleTreeItem:       "row",
	RoleTableCell:      "cell",
	RolePanel:          "group",
	RoleFiller:         "group",
	RoleGrouping:       "group",
	RoleSection:        "group",
	RoleScrollPane:     "scroll",
	RoleToolBar:        "toolbar",
	RoleDocumentWeb:    "web",
	RoleFrame:          "window",
	RoleWindow:         "window",
	RoleDialog:         "window",
	RoleApplication:    "app",
}

// Code returns the compact code for r, or "other".
func (r Role) Code() string {
	if c, ok := RoleCodes[r]; ok {
		return c
	}
	return "other"
}

// MatchesRole reports whether r matches filter, which may be a display name
// ("push button") or a compact code ("btn").
func (r Role) MatchesRole(filter string) bool {
	if filter == r.Code() {
		return true
	}
	if parsed, ok := ParseRole(filter); ok {
		return parsed == r
	}
	return false
}

// MarshalText encodes the role as its display name.
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText accepts any spelling ParseRole does.
func (r *Role) UnmarshalText(b []byte) error {
	role, ok := ParseRole(string(b))
	if !ok {
		return fmt.Errorf("unknown role %q", b)
	}
	*r = role
	return nil
}

package reply

import "strings"

// Bubble is the Flex Message container sent to the chat platform.
type Bubble struct {
	Type   string     `json:"type"`
	Hero   *Component `json:"hero,omitempty"`
	Body   *Component `json:"body,omitempty"`
	Footer *Component `json:"footer,omitempty"`
}

// Component is any Flex element: box, text, image, icon, separator or button.
type Component struct {
	Type            string      `json:"type"`
	Layout          string      `json:"layout,omitempty"`
	Text            string      `json:"text,omitempty"`
	URL             string      `json:"url,omitempty"`
	Size            string      `json:"size,omitempty"`
	AspectMode      string      `json:"aspectMode,omitempty"`
	BackgroundColor string      `json:"backgroundColor,omitempty"`
	Weight          string      `json:"weight,omitempty"`
	Style           string      `json:"style,omitempty"`
	Position        string      `json:"position,omitempty"`
	Align           string      `json:"align,omitempty"`
	Gravity         string      `json:"gravity,omitempty"`
	Color           string      `json:"color,omitempty"`
	Margin          string      `json:"margin,omitempty"`
	Spacing         string      `json:"spacing,omitempty"`
	Height          string      `json:"height,omitempty"`
	Wrap            bool        `json:"wrap,omitempty"`
	Flex            *int        `json:"flex,omitempty"`
	Action          *Action     `json:"action,omitempty"`
	Contents        []Component `json:"contents,omitempty"`
}

// Action is a Flex tap action
type Action struct {
	Type  string `json:"type"`
	Label string `json:"label,omitempty"`
	URI   string `json:"uri"`
}

func flex(n int) *int {
	return &n
}

func uriAction(label, uri string) *Action {
	return &Action{Type: "uri", Label: label, URI: uri}
}

func box(layout string, contents ...Component) Component {
	return Component{Type: "box", Layout: layout, Contents: contents}
}

// orDash stands in for empty values; the platform rejects text components
// without text.
func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func text(s string) Component {
	return Component{Type: "text", Text: s}
}

// infoRow is a "Label  value" baseline row of the card body.
func infoRow(label string, value Component) Component {
	row := box("baseline",
		Component{Type: "text", Text: label, Color: "#aaaaaa", Size: "sm", Flex: flex(1)},
		value,
	)
	row.Spacing = "sm"
	return row
}

func linkButton(label, uri string) Component {
	return Component{
		Type:   "button",
		Style:  "secondary",
		Height: "sm",
		Action: uriAction(label, uri),
	}
}

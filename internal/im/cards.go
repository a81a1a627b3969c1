package im

// Header colors used by notification cards.
const (
	TemplateBlue   = "blue"
	TemplateGreen  = "green"
	TemplateOrange = "orange"
	TemplateRed    = "red"
)

// Card is an interactive message card.
type Card struct {
	Config   CardConfig `json:"config"`
	Header   CardHeader `json:"header"`
	Elements []Element  `json:"elements"`
}

// CardConfig holds card-level display options.
type CardConfig struct {
	WideScreenMode bool `json:"wide_screen_mode"`
}

// CardHeader is the colored title bar of a card.
type CardHeader struct {
	Title    Text   `json:"title"`
	Template string `json:"template"`
}

// Text is a text node; Tag is plain_text or lark_md.
type Text struct {
	Tag     string `json:"tag"`
	Content string `json:"content"`
}

// Element is one block of the card body: a div, an hr or an action row.
type Element struct {
	Tag     string   `json:"tag"`
	Text    *Text    `json:"text,omitempty"`
	Actions []Action `json:"actions,omitempty"`
}

// Action is a button in an action row.
type Action struct {
	Tag  string `json:"tag"`
	Text Text   `json:"text"`
	Type string `json:"type"`
	URL  string `json:"url,omitempty"`
}

// NewCard returns a wide card with a title and header color.
func NewCard(title, template string) *Card {
	return &Card{
		Config: CardConfig{WideScreenMode: true},
		Header: CardHeader{
			Title:    Text{Tag: "plain_text", Content: title},
			Template: template,
		},
		Elements: []Element{},
	}
}

// Markdown appends a lark_md text block.
func (c *Card) Markdown(content string) *Card {
	c.Elements = append(c.Elements, Element{Tag: "div", Text: &Text{Tag: "lark_md", Content: content}})
	return c
}

// Divider appends a horizontal rule.
func (c *Card) Divider() *Card {
	c.Elements = append(c.Elements, Element{Tag: "hr"})
	return c
}

// Button appends an action row with a single primary link button.
// An empty url adds nothing.
func (c *Card) Button(label, url string) *Card {
	if url == "" {
		return c
	}
	c.Elements = append(c.Elements, Element{
		Tag: "action",
		Actions: []Action{{
			Tag:  "button",
			Text: Text{Tag: "plain_text", Content: label},
			Type: "primary",
			URL:  url,
		}},
	})
	return c
}

// Package process talks to message-driven processes. Requests are tagged
// messages; replies are decoded into a closed set of response variants.
package process

import "strings"

// Tag is a name/value pair attached to a message.
type Tag struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Message is an outgoing request to a process.
type Message struct {
	Target string
	Action string
	Data   string
	Tags   []Tag
}

// AllTags returns the message tags with Action first.
func (m Message) AllTags() []Tag {
	tags := make([]Tag, 0, len(m.Tags)+1)
	if m.Action != "" {
		tags = append(tags, Tag{Name: "Action", Value: m.Action})
	}
	return append(tags, m.Tags...)
}

// Lookup returns the value of the first tag with the given name.
// Names compare case-insensitively.
func Lookup(tags []Tag, name string) (string, bool) {
	for _, tag := range tags {
		if strings.EqualFold(tag.Name, name) {
			return tag.Value, true
		}
	}
	return "", false
}

// Value is Lookup without the presence flag.
func Value(tags []Tag, name string) string {
	v, _ := Lookup(tags, name)
	return v
}

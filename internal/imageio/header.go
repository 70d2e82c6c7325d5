package imageio

import "strings"

// Card is one header keyword with its value and comment.
type Card struct {
	Name    string
	Value   any
	Comment string
}

// Header is an ordered set of cards keyed by keyword name.
type Header struct {
	cards []Card
	index map[string]int
}

// NewHeader returns an empty header.
func NewHeader() *Header {
	return &Header{index: make(map[string]int)}
}

// Set stores a card, replacing any existing card with the same name.
func (h *Header) Set(name string, value any, comment string) {
	name = strings.ToUpper(strings.TrimSpace(name))
	if name == "" {
		return
	}
	if i, ok := h.index[name]; ok {
		h.cards[i].Value = value
		h.cards[i].Comment = comment
		return
	}
	h.index[name] = len(h.cards)
	h.cards = append(h.cards, Card{Name: name, Value: value, Comment: comment})
}

// Get returns the card for name, if present.
func (h *Header) Get(name string) (Card, bool) {
	if h == nil {
		return Card{}, false
	}
	i, ok := h.index[strings.ToUpper(strings.TrimSpace(name))]
	if !ok {
		return Card{}, false
	}
	return h.cards[i], true
}

// String returns the string value of a card, if present.
func (h *Header) String(name string) (string, bool) {
	card, ok := h.Get(name)
	if !ok {
		return "", false
	}
	if s, ok := card.Value.(string); ok {
		return strings.TrimSpace(s), true
	}
	return "", false
}

// Int returns the integer value of a card, if present.
func (h *Header) Int(name string) (int, bool) {
	card, ok := h.Get(name)
	if !ok {
		return 0, false
	}
	switch v := card.Value.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	}
	return 0, false
}

// Bool returns the boolean value of a card, if present.
func (h *Header) Bool(name string) (bool, bool) {
	card, ok := h.Get(name)
	if !ok {
		return false, false
	}
	if b, ok := card.Value.(bool); ok {
		return b, true
	}
	return false, false
}

// Cards returns the cards in insertion order.
func (h *Header) Cards() []Card {
	if h == nil {
		return nil
	}
	return h.cards
}

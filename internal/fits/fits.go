// Package fits implements a minimal reader and writer for FITS primary HDU
// images, the on-disk format of raw and calibrated CCD frames.
//
// Only what the calibration pipeline needs is supported: a single primary
// HDU with a 2D image, header cards with logical, integer, float, and string
// values, and the BZERO/BSCALE linear scaling applied by common acquisition
// software. Extensions are not read.
package fits

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	blockSize = 2880
	cardSize  = 80
)

// Card is a single header keyword record.
type Card struct {
	Keyword string
	Value   string
	Comment string
}

// Logical builds a FITS logical card.
func Logical(keyword string, v bool) Card {
	value := "F"
	if v {
		value = "T"
	}
	return Card{Keyword: keyword, Value: value}
}

// IntCard builds an integer-valued card.
func IntCard(keyword string, v int) Card {
	return Card{Keyword: keyword, Value: strconv.Itoa(v)}
}

// FloatCard builds a float-valued card.
func FloatCard(keyword string, v float64) Card {
	return Card{Keyword: keyword, Value: strconv.FormatFloat(v, 'G', -1, 64)}
}

// Header is an ordered collection of cards.
type Header struct {
	cards []Card
}

// Append adds a card to the header.
func (h *Header) Append(c Card) {
	h.cards = append(h.cards, c)
}

// Get returns the raw value of the first card with the given keyword.
func (h *Header) Get(keyword string) (string, bool) {
	for _, c := range h.cards {
		if c.Keyword == keyword {
			return c.Value, true
		}
	}
	return "", false
}

// Float parses the named card as a float64.
func (h *Header) Float(keyword string) (float64, error) {
	raw, ok := h.Get(keyword)
	if !ok {
		return 0, fmt.Errorf("fits: missing header card %s", keyword)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("fits: card %s: %w", keyword, err)
	}
	return v, nil
}

// Int parses the named card as an int. Integral float values are accepted
// since some acquisition software writes integer cards in float form.
func (h *Header) Int(keyword string) (int, error) {
	v, err := h.Float(keyword)
	if err != nil {
		return 0, err
	}
	i := int(v)
	if float64(i) != v {
		return 0, fmt.Errorf("fits: card %s: value %v is not an integer", keyword, v)
	}
	return i, nil
}

// FloatOr parses the named card as a float64, returning def when absent.
func (h *Header) FloatOr(keyword string, def float64) (float64, error) {
	if _, ok := h.Get(keyword); !ok {
		return def, nil
	}
	return h.Float(keyword)
}

// Has reports whether the header carries the given keyword.
func (h *Header) Has(keyword string) bool {
	_, ok := h.Get(keyword)
	return ok
}
